package app

import (
	"context"
	"fmt"
	"time"

	"bank_reviews/internal/analysis"
	"bank_reviews/internal/domain"
)

// QueryService serves the report reads behind a read-through cache.
type QueryService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.ReviewRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) Banks(ctx context.Context) ([]domain.BankSummary, error) {
	key := "banks"
	var out []domain.BankSummary
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	bs, err := s.repo.ListBanks(ctx)
	if err != nil {
		return nil, err
	}
	// copy to avoid aliasing the repo's backing array in the cached value
	cp := append([]domain.BankSummary(nil), bs...)
	_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	return cp, nil
}

func (s *QueryService) Reviews(ctx context.Context, bankID int64, limit int) ([]domain.Review, error) {
	key := fmt.Sprintf("reviews:%d:%d", bankID, limit)
	var out []domain.Review
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	rs, err := s.repo.ListReviews(ctx, bankID, limit)
	if err != nil {
		return nil, err
	}
	// copy to avoid aliasing the repo's backing array in the cached value
	cp := append([]domain.Review(nil), rs...)
	_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	return cp, nil
}

// Keywords recomputes TF-IDF on demand; the diagnostic never touches the
// stored theme column.
func (s *QueryService) Keywords(ctx context.Context, bankID int64, k int) ([]string, error) {
	key := fmt.Sprintf("keywords:%d:%d", bankID, k)
	var out []string
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	texts, err := s.repo.ReviewTexts(ctx, bankID)
	if err != nil {
		return nil, err
	}
	kws := analysis.TopKeywords(texts, k)
	_ = s.cache.Set(ctx, key, kws, int(s.cacheTTL.Seconds()))
	return kws, nil
}

func (s *QueryService) SentimentStats(ctx context.Context) ([]domain.SentimentCount, error) {
	key := "stats:sentiment"
	var out []domain.SentimentCount
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	cs, err := s.repo.SentimentBreakdown(ctx)
	if err != nil {
		return nil, err
	}
	// copy to avoid aliasing the repo's backing array in the cached value
	cp := append([]domain.SentimentCount(nil), cs...)
	_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	return cp, nil
}

func (s *QueryService) ThemeStats(ctx context.Context, label string) ([]domain.ThemeCount, error) {
	key := "stats:themes:" + label
	var out []domain.ThemeCount
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	cs, err := s.repo.ThemeBreakdown(ctx, label)
	if err != nil {
		return nil, err
	}
	// copy to avoid aliasing the repo's backing array in the cached value
	cp := append([]domain.ThemeCount(nil), cs...)
	_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	return cp, nil
}
