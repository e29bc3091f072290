package service

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/unload/internal/domain"
	"github.com/alexanderramin/unload/internal/intelligence"
	"github.com/alexanderramin/unload/internal/repository"
	"github.com/patrickmn/go-cache"
)

type clarityService struct {
	items    repository.ItemRepo
	clarity  repository.DailyClarityRepo
	noise    NoiseService
	planner  intelligence.ClarityService
	cache    *cache.Cache
	cfg      Config
	observer UseCaseObserver
}

// NewClarityService wires the clarity use cases. records caches today's
// record per user; pass nil to disable caching.
func NewClarityService(
	items repository.ItemRepo,
	clarity repository.DailyClarityRepo,
	noise NoiseService,
	planner intelligence.ClarityService,
	records *cache.Cache,
	cfg Config,
	observers ...UseCaseObserver,
) ClarityService {
	return &clarityService{
		items:    items,
		clarity:  clarity,
		noise:    noise,
		planner:  planner,
		cache:    records,
		cfg:      cfg.withDefaults(),
		observer: useCaseObserverOrNoop(observers),
	}
}

// NewClarityCache returns the cache used for clarity records. Entries for a
// date simply stop being read once the date changes. A hit is only served
// while the stored row's updated_at still matches, so writes from another
// process sharing the database show up on the next read.
func NewClarityCache() *cache.Cache {
	return cache.New(5*time.Minute, 10*time.Minute)
}

func cacheKey(userID, date string) string {
	return userID + ":" + date
}

func (s *clarityService) today() string {
	return domain.ClarityDate(s.cfg.now(), s.cfg.Location)
}

func (s *clarityService) Today(ctx context.Context, userID string) (*ClarityView, error) {
	date := s.today()
	if s.cache != nil {
		key := cacheKey(userID, date)
		if v, ok := s.cache.Get(key); ok {
			c := *v.(*domain.DailyClarity)
			stamp, err := s.clarity.UpdatedAt(ctx, userID, date)
			if err == nil && sameInstant(stamp, c.UpdatedAt) {
				return s.view(ctx, &c)
			}
			s.cache.Delete(key)
		}
	}

	c, err := s.clarity.Get(ctx, userID, date)
	if errors.Is(err, repository.ErrNotFound) {
		return &ClarityView{NeedsGeneration: true, FocusItemDetails: []*domain.Item{}}, nil
	}
	if err != nil {
		return nil, err
	}
	s.remember(c)
	return s.view(ctx, c)
}

func (s *clarityService) Generate(ctx context.Context, userID string) (view *ClarityView, err error) {
	start := time.Now()
	fields := map[string]any{"user_id": userID}
	defer func() {
		observe(ctx, s.observer, "clarity.generate", start, err, fields)
	}()

	active, err := s.items.ListByUser(ctx, userID, domain.StatusActive)
	if err != nil {
		return nil, err
	}
	fields["active_count"] = len(active)

	in := intelligence.ClarityInput{Items: make([]intelligence.ClarityItem, 0, len(active))}
	for _, it := range active {
		in.Items = append(in.Items, intelligence.ClarityItemFrom(it))
	}
	if len(active) > 0 {
		in.EmotionalTags, err = s.noise.RecentTags(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	plan, err := s.planner.Plan(ctx, in)
	if err != nil {
		return nil, err
	}

	now := s.cfg.now()
	var c *domain.DailyClarity
	if plan.Calm {
		c = domain.NeutralClarity(userID, s.today(), domain.CalmMessage, domain.ClarityCalm, now)
	} else {
		c = &domain.DailyClarity{
			UserID:             userID,
			ClarityDate:        s.today(),
			MorningMessage:     plan.MorningMessage,
			FocusItems:         plan.FocusItems,
			ParkedSuggestions:  plan.ParkedSuggestions,
			DroppedSuggestions: plan.DroppedSuggestions,
			EmotionalContext:   plan.EmotionalContext,
			Metadata: domain.ClarityMetadata{
				Source:      domain.ClarityGenerated,
				ActiveCount: len(active),
				Model:       plan.Model,
			},
			CreatedAt: now,
		}
	}
	fields["source"] = string(c.Metadata.Source)

	if err := s.clarity.Upsert(ctx, c); err != nil {
		return nil, err
	}
	s.remember(c)
	return s.view(ctx, c)
}

func (s *clarityService) ResetToday(ctx context.Context, userID string) (*domain.DailyClarity, error) {
	c := domain.NeutralClarity(userID, s.today(), domain.ResetMessage, domain.ClarityReset, s.cfg.now())
	if err := s.clarity.Upsert(ctx, c); err != nil {
		return nil, err
	}
	s.remember(c)
	return c, nil
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func (s *clarityService) remember(c *domain.DailyClarity) {
	if s.cache != nil {
		cp := *c
		s.cache.Set(cacheKey(c.UserID, c.ClarityDate), &cp, cache.DefaultExpiration)
	}
}

// view resolves the focus ids against the owner's items. Ids that no
// longer exist are skipped.
func (s *clarityService) view(ctx context.Context, c *domain.DailyClarity) (*ClarityView, error) {
	details := []*domain.Item{}
	if len(c.FocusItems) > 0 {
		found, err := s.items.ListByIDs(ctx, c.UserID, c.FocusItems)
		if err != nil {
			return nil, err
		}
		details = append(details, found...)
	}
	return &ClarityView{Clarity: c, FocusItemDetails: details}, nil
}
