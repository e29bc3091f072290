// Package api exposes the capture, item and clarity use cases over HTTP.
package api

import (
	"log/slog"
	"time"

	"github.com/alexanderramin/unload/internal/auth"
	"github.com/alexanderramin/unload/internal/service"
	"github.com/alexanderramin/unload/internal/transcribe"
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
)

// BodyLimit covers a maximum-size voice upload plus multipart overhead.
const BodyLimit = 12 << 20

const localUserID = "user_id"

// Limits are per-user request budgets per window.
type Limits struct {
	ProcessPerMinute    int
	TranscribePerMinute int
}

func DefaultLimits() Limits {
	return Limits{ProcessPerMinute: 20, TranscribePerMinute: 10}
}

// Deps is everything the handlers call into.
type Deps struct {
	Capture     service.CaptureService
	Items       service.ItemService
	Clarity     service.ClarityService
	Transcriber transcribe.Transcriber // nil disables /api/transcribe
	Voice       *transcribe.Store      // nil skips storing recordings
	Verifier    *auth.Verifier
	// DevUser authenticates every request as this user when Verifier is
	// nil. Only set outside production.
	DevUser       string
	Registry      *prometheus.Registry
	Logger        *slog.Logger
	Limits        Limits
	MaxVoiceBytes int64
	// AccessLog toggles fiber's request logger.
	AccessLog bool
}

type server struct {
	deps   Deps
	logger *slog.Logger
}

// New builds the fiber app with middleware and routes.
func New(deps Deps) *fiber.App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Limits == (Limits{}) {
		deps.Limits = DefaultLimits()
	}
	if deps.MaxVoiceBytes <= 0 {
		deps.MaxVoiceBytes = transcribe.MaxVoiceBytes
	}
	s := &server{deps: deps, logger: deps.Logger}

	app := fiber.New(fiber.Config{
		AppName:               "unload",
		BodyLimit:             BodyLimit,
		ErrorHandler:          errorHandler(deps.Logger),
		DisableStartupMessage: true,
		ReadTimeout:           2 * time.Minute,
	})

	app.Use(recover.New())
	if deps.AccessLog {
		app.Use(logger.New())
	}
	if deps.Registry != nil {
		prom := fiberprometheus.NewWithRegistry(deps.Registry, "unload", "unload", "http", nil)
		prom.RegisterAt(app, "/metrics")
		app.Use(prom.Middleware)
	}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", s.authenticate)
	api.Post("/process", s.userLimiter("process", deps.Limits.ProcessPerMinute), s.process)
	api.Post("/transcribe", s.userLimiter("transcribe", deps.Limits.TranscribePerMinute), s.transcribe)
	api.Get("/items", s.listItems)
	api.Patch("/items/:id", s.patchItem)
	api.Delete("/items/:id", s.deleteItem)
	api.Get("/clarity", s.getClarity)
	api.Post("/clarity", s.generateClarity)
	api.Post("/clarity/reset", s.resetClarity)

	return app
}

// authenticate resolves the bearer token to a user id stored in locals.
func (s *server) authenticate(c *fiber.Ctx) error {
	if s.deps.Verifier == nil {
		if s.deps.DevUser == "" {
			return NewUnauthorized()
		}
		c.Locals(localUserID, s.deps.DevUser)
		return c.Next()
	}

	token, err := auth.ExtractToken(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return NewUnauthorized()
	}
	userID, err := s.deps.Verifier.Verify(token)
	if err != nil {
		s.logger.DebugContext(c.UserContext(), "token rejected", "path", c.Path(), "error", err)
		return NewUnauthorized()
	}
	c.Locals(localUserID, userID)
	return c.Next()
}

func (s *server) userLimiter(name string, perMinute int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return name + ":" + userID(c)
		},
		LimitReached: func(c *fiber.Ctx) error {
			s.logger.WarnContext(c.UserContext(), "rate limit reached", "limit", name, "user_id", userID(c))
			return c.Status(fiber.StatusTooManyRequests).JSON(errorBody{
				Error: "Too many requests. Please wait a moment.",
				Code:  CodeTooManyRequests,
			})
		},
	})
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals(localUserID).(string)
	return id
}
