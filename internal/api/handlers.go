package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/alexanderramin/unload/internal/domain"
	"github.com/alexanderramin/unload/internal/service"
	"github.com/alexanderramin/unload/internal/transcribe"
	"github.com/gofiber/fiber/v2"
)

type processRequest struct {
	Content      string             `json:"content"`
	Source       domain.Source      `json:"source"`
	Mode         domain.CaptureMode `json:"mode"`
	VoiceFileURL *string            `json:"voice_file_url"`
}

type processResponse struct {
	Success        bool   `json:"success"`
	ThoughtDumpID  string `json:"thought_dump_id"`
	ExtractedCount int    `json:"extracted_count"`
}

func (s *server) process(c *fiber.Ctx) error {
	var req processRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if req.Content == "" {
		return NewInvalidRequest("Content is required")
	}
	if req.Mode == "" {
		req.Mode = domain.ModeFocus
	}

	res, err := s.deps.Capture.Process(c.UserContext(), service.ProcessRequest{
		UserID:       userID(c),
		Content:      req.Content,
		Source:       req.Source,
		Mode:         req.Mode,
		VoiceFileURL: req.VoiceFileURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(processResponse{
		Success:        true,
		ThoughtDumpID:  res.ThoughtDumpID,
		ExtractedCount: res.ExtractedCount,
	})
}

func (s *server) transcribe(c *fiber.Ctx) error {
	if s.deps.Transcriber == nil {
		return NewUnavailable("transcription is not configured")
	}
	fh, err := c.FormFile("audio")
	if err != nil {
		return NewInvalidRequest("No audio file provided")
	}
	if fh.Size > s.deps.MaxVoiceBytes {
		return fmt.Errorf("%w: %d bytes", transcribe.ErrTooLarge, fh.Size)
	}
	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("opening upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, s.deps.MaxVoiceBytes+1))
	if err != nil {
		return fmt.Errorf("reading upload: %w", err)
	}

	audio := transcribe.Audio{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}
	var ref string
	if s.deps.Voice != nil && len(data) > 0 {
		if ref, err = s.deps.Voice.Save(userID(c), audio); err != nil {
			return err
		}
	}

	tr, err := s.deps.Transcriber.Transcribe(c.UserContext(), audio)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"transcription": tr.Text, "audio_url": ref})
}

func (s *server) listItems(c *fiber.Ctx) error {
	items, err := s.deps.Items.List(c.UserContext(), userID(c), c.Query("status"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"items": items})
}

// patchRequest keeps deadline_at raw so an absent key (no change) and an
// explicit null (clear) stay distinguishable.
type patchRequest struct {
	Action      *domain.Action   `json:"action"`
	ParkedUntil *time.Time       `json:"parked_until"`
	Priority    *domain.Priority `json:"priority"`
	DeadlineAt  json.RawMessage  `json:"deadline_at"`
}

func (r patchRequest) toPatch() (service.ItemPatch, error) {
	p := service.ItemPatch{Action: r.Action, ParkedUntil: r.ParkedUntil, Priority: r.Priority}
	if len(r.DeadlineAt) == 0 {
		return p, nil
	}
	p.DeadlineSet = true
	if bytes.Equal(bytes.TrimSpace(r.DeadlineAt), []byte("null")) {
		return p, nil
	}
	var t time.Time
	if err := json.Unmarshal(r.DeadlineAt, &t); err != nil {
		return p, NewInvalidRequest("deadline_at must be an RFC 3339 timestamp or null")
	}
	p.Deadline = &t
	return p, nil
}

func (s *server) patchItem(c *fiber.Ctx) error {
	var req patchRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if req.Action == nil && req.Priority == nil && len(req.DeadlineAt) == 0 {
		return NewInvalidRequest("Action, priority, or deadline_at required")
	}
	patch, err := req.toPatch()
	if err != nil {
		return err
	}

	item, err := s.deps.Items.Patch(c.UserContext(), userID(c), c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(item)
}

func (s *server) deleteItem(c *fiber.Ctx) error {
	if err := s.deps.Items.Delete(c.UserContext(), userID(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// clarityResponse flattens the record and adds the resolved focus items.
type clarityResponse struct {
	*domain.DailyClarity
	FocusItemsDetails []*domain.Item `json:"focus_items_details"`
}

func clarityJSON(c *fiber.Ctx, view *service.ClarityView) error {
	if view.NeedsGeneration || view.Clarity == nil {
		return c.JSON(fiber.Map{"needs_generation": true})
	}
	return c.JSON(clarityResponse{DailyClarity: view.Clarity, FocusItemsDetails: view.FocusItemDetails})
}

func (s *server) getClarity(c *fiber.Ctx) error {
	view, err := s.deps.Clarity.Today(c.UserContext(), userID(c))
	if err != nil {
		return err
	}
	return clarityJSON(c, view)
}

func (s *server) generateClarity(c *fiber.Ctx) error {
	view, err := s.deps.Clarity.Generate(c.UserContext(), userID(c))
	if err != nil {
		return err
	}
	return clarityJSON(c, view)
}

func (s *server) resetClarity(c *fiber.Ctx) error {
	if _, err := s.deps.Clarity.ResetToday(c.UserContext(), userID(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func bindJSON(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return NewInvalidRequest("request body is required")
	}
	if err := json.Unmarshal(c.Body(), out); err != nil {
		return NewInvalidRequest("Invalid JSON body")
	}
	return nil
}
