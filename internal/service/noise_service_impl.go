package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/unload/internal/domain"
	"github.com/alexanderramin/unload/internal/repository"
	"github.com/google/uuid"
)

const (
	noiseWindow = 7 * 24 * time.Hour
	noiseLimit  = 10
)

type noiseService struct {
	noise repository.NoiseLogRepo
	cfg   Config
}

func NewNoiseService(noise repository.NoiseLogRepo, cfg Config) NoiseService {
	return &noiseService{noise: noise, cfg: cfg.withDefaults()}
}

func (s *noiseService) Record(ctx context.Context, userID, content string, tags []string) (*domain.NoiseEntry, error) {
	if strings.TrimSpace(content) == "" && len(tags) == 0 {
		return nil, fmt.Errorf("%w: content or tags required", domain.ErrInvalidInput)
	}
	n := &domain.NoiseEntry{
		ID:            uuid.New().String(),
		UserID:        userID,
		Content:       strings.TrimSpace(content),
		EmotionalTags: dedupTags(tags),
		CreatedAt:     s.cfg.now(),
	}
	if err := s.noise.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// RecentTags flattens the tags of the last ten entries from the past week,
// newest first, keeping the first occurrence of each.
func (s *noiseService) RecentTags(ctx context.Context, userID string) ([]string, error) {
	entries, err := s.noise.ListSince(ctx, userID, s.cfg.now().Add(-noiseWindow), noiseLimit)
	if err != nil {
		return nil, err
	}
	var all []string
	for _, e := range entries {
		all = append(all, e.EmotionalTags...)
	}
	return dedupTags(all), nil
}

func dedupTags(tags []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
