package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/unload/internal/service"
	"github.com/go-co-op/gocron/v2"
	"golang.org/x/time/rate"
)

// Outcomes reported per user by a job run.
const (
	OutcomeGenerated = "generated"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// UserLister finds users worth pre-generating clarity for.
type UserLister interface {
	ListUsersWithActiveItems(ctx context.Context) ([]string, error)
}

// ClarityJob pre-generates today's clarity record for every user with
// active items, so the morning request is served from storage.
type ClarityJob struct {
	users     UserLister
	clarity   service.ClarityService
	limiter   *rate.Limiter
	logger    *slog.Logger
	onOutcome func(string)
}

// NewClarityJob throttles outbound generation to perMinute calls.
// onOutcome may be nil.
func NewClarityJob(users UserLister, clarity service.ClarityService, perMinute int, logger *slog.Logger, onOutcome func(string)) *ClarityJob {
	if perMinute <= 0 {
		perMinute = 30
	}
	if logger == nil {
		logger = slog.Default()
	}
	if onOutcome == nil {
		onOutcome = func(string) {}
	}
	return &ClarityJob{
		users:     users,
		clarity:   clarity,
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
		logger:    logger,
		onOutcome: onOutcome,
	}
}

// RunSummary counts what one run did.
type RunSummary struct {
	Generated int
	Skipped   int
	Failed    int
}

// Run walks users sequentially. Users that already have today's record are
// skipped; a failure for one user does not stop the others.
func (j *ClarityJob) Run(ctx context.Context) (RunSummary, error) {
	var sum RunSummary
	users, err := j.users.ListUsersWithActiveItems(ctx)
	if err != nil {
		return sum, fmt.Errorf("listing users: %w", err)
	}

	for _, userID := range users {
		view, err := j.clarity.Today(ctx, userID)
		if err != nil {
			j.record(&sum, OutcomeFailed)
			j.logger.ErrorContext(ctx, "clarity job lookup failed", "user_id", userID, "error", err)
			continue
		}
		if !view.NeedsGeneration {
			j.record(&sum, OutcomeSkipped)
			continue
		}
		if err := j.limiter.Wait(ctx); err != nil {
			return sum, err
		}
		if _, err := j.clarity.Generate(ctx, userID); err != nil {
			j.record(&sum, OutcomeFailed)
			j.logger.ErrorContext(ctx, "clarity job generation failed", "user_id", userID, "error", err)
			continue
		}
		j.record(&sum, OutcomeGenerated)
	}

	j.logger.InfoContext(ctx, "clarity job finished",
		"users", len(users), "generated", sum.Generated, "skipped", sum.Skipped, "failed", sum.Failed)
	return sum, nil
}

func (j *ClarityJob) record(sum *RunSummary, outcome string) {
	switch outcome {
	case OutcomeGenerated:
		sum.Generated++
	case OutcomeSkipped:
		sum.Skipped++
	case OutcomeFailed:
		sum.Failed++
	}
	j.onOutcome(outcome)
}

// Scheduler runs the clarity job on a cron schedule.
type Scheduler struct {
	s gocron.Scheduler
}

// Schedule registers job on a five-field cron expression evaluated in loc.
func Schedule(job *ClarityJob, cronExpr string, loc *time.Location) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
			defer cancel()
			if _, err := job.Run(ctx); err != nil {
				job.logger.Error("clarity job run failed", "error", err)
			}
		}),
		gocron.WithName("daily-clarity"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("scheduling clarity job: %w", err)
	}
	return &Scheduler{s: s}, nil
}

func (s *Scheduler) Start() { s.s.Start() }

func (s *Scheduler) Stop() error { return s.s.Shutdown() }
