package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/alexanderramin/unload/internal/db"
	"github.com/alexanderramin/unload/internal/domain"
	"github.com/alexanderramin/unload/internal/intelligence"
	"github.com/alexanderramin/unload/internal/llm"
	"github.com/alexanderramin/unload/internal/repository"
	"github.com/alexanderramin/unload/internal/testutil"
	"github.com/stretchr/testify/require"
)

type mockLLMClient struct {
	response string
	err      error
	calls    int
	last     llm.GenerateRequest
}

func (m *mockLLMClient) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	m.calls++
	m.last = req
	if m.err != nil {
		return nil, m.err
	}
	return &llm.GenerateResponse{Text: m.response, Model: "claude-test"}, nil
}

func (m *mockLLMClient) Available(context.Context) bool { return m.err == nil }

type fixture struct {
	db      *sql.DB
	uow     db.UnitOfWork
	dumps   *repository.SQLiteThoughtDumpRepo
	items   *repository.SQLiteItemRepo
	clarity *repository.SQLiteDailyClarityRepo
	noise   *repository.SQLiteNoiseLogRepo
	llm     *mockLLMClient
	cfg     Config
	now     time.Time

	capture   CaptureService
	itemSvc   ItemService
	claritySv ClarityService
	noiseSvc  NoiseService
}

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	f := &fixture{
		db:      database,
		uow:     testutil.NewTestUoW(database),
		dumps:   repository.NewSQLiteThoughtDumpRepo(database),
		items:   repository.NewSQLiteItemRepo(database),
		clarity: repository.NewSQLiteDailyClarityRepo(database),
		noise:   repository.NewSQLiteNoiseLogRepo(database),
		llm:     &mockLLMClient{},
		now:     now,
		cfg: Config{
			Location: newYork(t),
			Now:      func() time.Time { return now },
		},
	}
	f.rebuild(f.uow)
	return f
}

// rebuild recreates the services, e.g. after swapping the unit of work.
func (f *fixture) rebuild(uow db.UnitOfWork) {
	f.capture = NewCaptureService(f.dumps, f.items, uow, intelligence.NewExtractionService(f.llm, f.cfg.MaxDumpChars), f.cfg)
	f.itemSvc = NewItemService(f.items, uow, f.cfg)
	f.noiseSvc = NewNoiseService(f.noise, f.cfg)
	f.claritySv = NewClarityService(f.items, f.clarity, f.noiseSvc, intelligence.NewClarityService(f.llm), NewClarityCache(), f.cfg)
}

func (f *fixture) seed(t *testing.T, it *domain.Item) *domain.Item {
	t.Helper()
	require.NoError(t, f.items.Create(context.Background(), it))
	return it
}
