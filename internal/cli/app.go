package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alexanderramin/unload/internal/auth"
	"github.com/alexanderramin/unload/internal/domain"
	"github.com/alexanderramin/unload/internal/service"
	"github.com/alexanderramin/unload/internal/transcribe"
)

// App holds the services used by CLI commands.
type App struct {
	Capture service.CaptureService
	Items   service.ItemService
	Clarity service.ClarityService
	Noise   service.NoiseService

	// Transcriber and Voice back "capture --audio". Either may be nil.
	Transcriber transcribe.Transcriber
	Voice       *transcribe.Store
	// Verifier signs tokens for "unload token"; nil when no secret is set.
	Verifier *auth.Verifier

	// UserID is the default for --user.
	UserID   string
	Location *time.Location
	Now      func() time.Time
	Logger   *slog.Logger

	// IsInteractive reports whether stdin is a terminal.
	IsInteractive func() bool
	// Serve runs the HTTP API until ctx is done.
	Serve func(ctx context.Context) error
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) loc() *time.Location {
	if a.Location != nil {
		return a.Location
	}
	return time.UTC
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// resolveItemID accepts a full id or a unique prefix of one of the user's
// items, as shown in tables.
func resolveItemID(ctx context.Context, app *App, userID, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("%w: item id is required", domain.ErrInvalidInput)
	}
	items, err := app.Items.List(ctx, userID, service.StatusAll)
	if err != nil {
		return "", err
	}
	var match string
	for _, it := range items {
		if it.ID == input {
			return it.ID, nil
		}
		if strings.HasPrefix(it.ID, input) {
			if match != "" {
				return "", fmt.Errorf("%w: %q matches more than one item", domain.ErrInvalidInput, input)
			}
			match = it.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("no item matching %q", input)
	}
	return match, nil
}
