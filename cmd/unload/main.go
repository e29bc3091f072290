package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alexanderramin/unload/internal/api"
	"github.com/alexanderramin/unload/internal/auth"
	"github.com/alexanderramin/unload/internal/cli"
	"github.com/alexanderramin/unload/internal/config"
	"github.com/alexanderramin/unload/internal/db"
	"github.com/alexanderramin/unload/internal/intelligence"
	"github.com/alexanderramin/unload/internal/jobs"
	"github.com/alexanderramin/unload/internal/llm"
	"github.com/alexanderramin/unload/internal/logging"
	"github.com/alexanderramin/unload/internal/metrics"
	"github.com/alexanderramin/unload/internal/repository"
	"github.com/alexanderramin/unload/internal/service"
	"github.com/alexanderramin/unload/internal/transcribe"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// unconfiguredClient stands in when no model provider is set up, so the
// commands that never call the model keep working.
type unconfiguredClient struct{ err error }

func (c unconfiguredClient) Generate(context.Context, llm.GenerateRequest) (*llm.GenerateResponse, error) {
	return nil, c.err
}

func (c unconfiguredClient) Available(context.Context) bool { return false }

func run() error {
	// A missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("UNLOAD_CONFIG"))
	if err != nil {
		return err
	}
	logger := logging.Init(cfg.Env, os.Stderr)

	svcCfg, err := cfg.ServiceConfig()
	if err != nil {
		return err
	}

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	var llmObserver llm.Observer = m
	llmCfg := cfg.LLMConfig()
	if llmCfg.LogCalls {
		llmObserver = llm.MultiObserver{m, llm.NewSlogObserver(logger)}
	}
	client, err := llm.NewClient(llmCfg, llmObserver)
	if err != nil {
		logger.Warn("model provider not configured; capture and clarity will fail", "error", err)
		client = unconfiguredClient{err: err}
	}

	// Wire repositories
	dumpRepo := repository.NewSQLiteThoughtDumpRepo(database)
	itemRepo := repository.NewSQLiteItemRepo(database)
	clarityRepo := repository.NewSQLiteDailyClarityRepo(database)
	noiseRepo := repository.NewSQLiteNoiseLogRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	// Wire services
	observers := []service.UseCaseObserver{m, service.NewSlogUseCaseObserver(logger)}
	noiseSvc := service.NewNoiseService(noiseRepo, svcCfg)
	captureSvc := service.NewCaptureService(dumpRepo, itemRepo, uow,
		intelligence.NewExtractionService(client, cfg.MaxDumpChars), svcCfg, observers...)
	itemSvc := service.NewItemService(itemRepo, uow, svcCfg, observers...)
	claritySvc := service.NewClarityService(itemRepo, clarityRepo, noiseSvc,
		intelligence.NewClarityService(client), service.NewClarityCache(), svcCfg, observers...)

	var verifier *auth.Verifier
	if cfg.Auth.JWTSecret != "" {
		if verifier, err = auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer); err != nil {
			return err
		}
	}

	var transcriber transcribe.Transcriber
	if cfg.Transcription.APIKey != "" {
		transcriber = transcribe.NewClient(cfg.TranscribeConfig(), logger)
	}
	voice := transcribe.NewStore(cfg.VoiceDir)

	app := &cli.App{
		Capture:     captureSvc,
		Items:       itemSvc,
		Clarity:     claritySvc,
		Noise:       noiseSvc,
		Transcriber: transcriber,
		Voice:       voice,
		Verifier:    verifier,
		UserID:      cfg.User,
		Location:    svcCfg.Location,
		Logger:      logger,
	}

	// Detect interactive terminal for forms, spinners and the board.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	app.Serve = func(ctx context.Context) error {
		if verifier == nil && cfg.Production() {
			return errors.New("auth.jwt_secret is required in production")
		}
		deps := api.Deps{
			Capture:       captureSvc,
			Items:         itemSvc,
			Clarity:       claritySvc,
			Transcriber:   transcriber,
			Voice:         voice,
			Verifier:      verifier,
			Registry:      registry,
			Logger:        logger,
			Limits:        api.DefaultLimits(),
			MaxVoiceBytes: cfg.MaxVoiceBytes,
			AccessLog:     !cfg.Production(),
		}
		if verifier == nil {
			deps.DevUser = cfg.User
			logger.Warn("no JWT secret set; every request runs as the default user", "user_id", cfg.User)
		}
		server := api.New(deps)

		if cfg.Jobs.ClarityEnabled {
			job := jobs.NewClarityJob(itemRepo, claritySvc, cfg.Jobs.ClarityPerMinute, logger, m.JobOutcome)
			sched, err := jobs.Schedule(job, cfg.Jobs.ClarityCron, svcCfg.Location)
			if err != nil {
				return err
			}
			sched.Start()
			defer func() {
				if err := sched.Stop(); err != nil {
					logger.Warn("stopping scheduler", "error", err)
				}
			}()
			logger.Info("daily clarity job scheduled", "cron", cfg.Jobs.ClarityCron)
		}

		errc := make(chan error, 1)
		go func() {
			logger.Info("listening", slog.String("addr", cfg.ListenAddr))
			errc <- server.Listen(cfg.ListenAddr)
		}()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			logger.Info("shutting down")
			return server.ShutdownWithContext(shutdownCtx)
		}
	}

	// Execute root command
	return cli.NewRootCmd(app).Execute()
}
