package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/unload/internal/db"
	"github.com/alexanderramin/unload/internal/domain"
	"github.com/alexanderramin/unload/internal/intelligence"
	"github.com/alexanderramin/unload/internal/repository"
	"github.com/google/uuid"
)

// recentContextLimit caps how many active titles are sent as dedup context.
const recentContextLimit = 50

type captureService struct {
	dumps     repository.ThoughtDumpRepo
	items     repository.ItemRepo
	uow       db.UnitOfWork
	extractor intelligence.ExtractionService
	cfg       Config
	observer  UseCaseObserver
}

func NewCaptureService(
	dumps repository.ThoughtDumpRepo,
	items repository.ItemRepo,
	uow db.UnitOfWork,
	extractor intelligence.ExtractionService,
	cfg Config,
	observers ...UseCaseObserver,
) CaptureService {
	return &captureService{
		dumps:     dumps,
		items:     items,
		uow:       uow,
		extractor: extractor,
		cfg:       cfg.withDefaults(),
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *captureService) CreateDump(ctx context.Context, req DumpRequest) (*domain.ThoughtDump, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if !req.Mode.Valid() {
		return nil, fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidInput, req.Mode)
	}
	if req.Source == "" {
		req.Source = domain.SourceText
	}
	if !req.Source.Valid() {
		return nil, fmt.Errorf("%w: unknown source %q", domain.ErrInvalidInput, req.Source)
	}
	if err := intelligence.ValidateContent(req.Content, s.cfg.MaxDumpChars); err != nil {
		return nil, err
	}

	d := &domain.ThoughtDump{
		ID:               uuid.New().String(),
		UserID:           req.UserID,
		Content:          req.Content,
		Source:           req.Source,
		ProcessingStatus: domain.ProcessingInProgress,
		Metadata:         domain.DumpMetadata{Mode: req.Mode},
		CreatedAt:        s.cfg.now(),
	}
	if req.Source == domain.SourceVoice {
		ts := domain.TranscriptionCompleted
		d.TranscriptionStatus = &ts
		d.VoiceFileURL = req.VoiceFileURL
	}

	if err := s.dumps.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *captureService) MarkDumpCompleted(ctx context.Context, userID, dumpID string, extracted int) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return completeDump(ctx, repository.NewSQLiteThoughtDumpRepo(tx), userID, dumpID, extracted)
	})
}

func (s *captureService) MarkDumpFailed(ctx context.Context, userID, dumpID, errText string) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		dumps := repository.NewSQLiteThoughtDumpRepo(tx)
		d, err := dumps.GetByID(ctx, userID, dumpID)
		if err != nil {
			return err
		}
		if d.ProcessingStatus == domain.ProcessingFailed {
			return nil
		}
		if err := d.Fail(errText); err != nil {
			return err
		}
		return dumps.UpdateStatus(ctx, d)
	})
}

func completeDump(ctx context.Context, dumps repository.ThoughtDumpRepo, userID, dumpID string, extracted int) error {
	d, err := dumps.GetByID(ctx, userID, dumpID)
	if err != nil {
		return err
	}
	if d.ProcessingStatus == domain.ProcessingCompleted {
		return nil
	}
	if err := d.Complete(extracted); err != nil {
		return err
	}
	return dumps.UpdateStatus(ctx, d)
}

func (s *captureService) InsertItems(ctx context.Context, items []domain.Item) error {
	if len(items) == 0 {
		return nil
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return insertItems(ctx, repository.NewSQLiteItemRepo(tx), items)
	})
}

func insertItems(ctx context.Context, repo repository.ItemRepo, items []domain.Item) error {
	for i := range items {
		if strings.TrimSpace(items[i].Title) == "" {
			return fmt.Errorf("%w: item %d has an empty title", domain.ErrInvalidInput, i)
		}
		if items[i].ID == "" {
			items[i].ID = uuid.New().String()
		}
		if err := repo.Create(ctx, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *captureService) Process(ctx context.Context, req ProcessRequest) (result *ProcessResult, err error) {
	start := time.Now()
	fields := map[string]any{"mode": string(req.Mode), "source": string(req.Source)}
	defer func() {
		if result != nil {
			fields["extracted_count"] = result.ExtractedCount
		}
		observe(ctx, s.observer, "capture.process", start, err, fields)
	}()

	dump, err := s.CreateDump(ctx, DumpRequest(req))
	if err != nil {
		return nil, err
	}
	fields["thought_dump_id"] = dump.ID

	var recent []string
	if s.cfg.DedupAgainstActive {
		recent, err = s.activeTitles(ctx, req.UserID)
		if err != nil {
			return nil, s.fail(ctx, dump, err)
		}
	}

	extracted, err := s.extractor.Extract(ctx, intelligence.ExtractionRequest{
		Content:       req.Content,
		Mode:          req.Mode,
		RecentContext: recent,
	})
	if err != nil {
		return nil, s.fail(ctx, dump, fmt.Errorf("extracting items: %w", err))
	}

	items := intelligence.Normalize(extracted, req.UserID, dump.ID, s.cfg.now(), s.cfg.Location)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := insertItems(ctx, repository.NewSQLiteItemRepo(tx), items); err != nil {
			return err
		}
		return completeDump(ctx, repository.NewSQLiteThoughtDumpRepo(tx), req.UserID, dump.ID, len(items))
	})
	if err != nil {
		return nil, s.fail(ctx, dump, fmt.Errorf("saving items: %w", err))
	}

	return &ProcessResult{ThoughtDumpID: dump.ID, ExtractedCount: len(items), Items: items}, nil
}

// fail records cause on the dump and returns cause. A failure to record is
// folded into the returned error without hiding cause.
func (s *captureService) fail(ctx context.Context, dump *domain.ThoughtDump, cause error) error {
	if err := s.MarkDumpFailed(context.WithoutCancel(ctx), dump.UserID, dump.ID, cause.Error()); err != nil {
		return fmt.Errorf("%w (marking dump failed: %v)", cause, err)
	}
	return cause
}

func (s *captureService) activeTitles(ctx context.Context, userID string) ([]string, error) {
	active, err := s.items.ListByUser(ctx, userID, domain.StatusActive)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, min(len(active), recentContextLimit))
	for _, it := range active {
		if len(titles) == recentContextLimit {
			break
		}
		titles = append(titles, it.Title)
	}
	return titles, nil
}
