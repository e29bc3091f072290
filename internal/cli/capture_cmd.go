package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/unload/internal/cli/formatter"
	"github.com/alexanderramin/unload/internal/domain"
	"github.com/alexanderramin/unload/internal/service"
	"github.com/alexanderramin/unload/internal/transcribe"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newCaptureCmd(app *App) *cobra.Command {
	var mode string
	var audioPath string

	cmd := &cobra.Command{
		Use:   "capture [text...]",
		Short: "Capture a thought dump and extract items from it",
		Long: `Capture a thought dump and extract items from it.

Text comes from the arguments, from --audio (transcribed), from stdin, or
from an interactive form when stdin is a terminal.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			req := service.ProcessRequest{
				UserID: app.UserID,
				Mode:   domain.CaptureMode(mode),
				Source: domain.SourceText,
			}

			switch {
			case audioPath != "":
				text, ref, err := transcribeFile(ctx, app, audioPath)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, formatter.Dim("Heard: ")+text)
				req.Content, req.Source = text, domain.SourceVoice
				if ref != "" {
					req.VoiceFileURL = &ref
				}
			case len(args) > 0:
				req.Content = strings.Join(args, " ")
			case app.interactive():
				if err := captureForm(&req.Content, &mode).Run(); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						return nil
					}
					return err
				}
				req.Mode = domain.CaptureMode(mode)
			default:
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				req.Content = strings.TrimSpace(string(data))
			}

			stop := func() {}
			if app.interactive() {
				stop = formatter.StartSpinner(cmd.ErrOrStderr(), "Sorting your thoughts…")
			}
			res, err := app.Capture.Process(ctx, req)
			stop()
			if err != nil {
				return err
			}
			fmt.Fprint(out, formatter.FormatProcessResult(res, app.now(), app.loc()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", string(domain.ModeFocus), "Extraction mode: focus or organizer")
	cmd.Flags().StringVar(&audioPath, "audio", "", "Transcribe this recording and capture the text")
	return cmd
}

// captureForm asks for the dump and the mode.
func captureForm(content, mode *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("What's on your mind?").
				Description("Everything. Unsorted is fine.").
				CharLimit(0).
				Value(content).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("write something first")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Mode").
				Options(
					huh.NewOption("Focus: top three and a bench", string(domain.ModeFocus)),
					huh.NewOption("Organizer: today and upcoming", string(domain.ModeOrganizer)),
				).
				Value(mode),
		),
	).WithTheme(unloadHuhTheme()).WithShowHelp(false)
}

func transcribeFile(ctx context.Context, app *App, path string) (text, ref string, err error) {
	if app.Transcriber == nil {
		return "", "", errors.New("transcription is not configured (set transcription.api_key)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("reading audio: %w", err)
	}
	audio := transcribe.Audio{Filename: filepath.Base(path), Data: data}
	if app.Voice != nil && len(data) > 0 {
		if ref, err = app.Voice.Save(app.UserID, audio); err != nil {
			return "", "", err
		}
	}
	tr, err := app.Transcriber.Transcribe(ctx, audio)
	if err != nil {
		return "", "", err
	}
	return tr.Text, ref, nil
}
