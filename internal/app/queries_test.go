package app_test

import (
	"context"
	"testing"
	"time"

	"bank_reviews/internal/app"
	"bank_reviews/internal/domain"
)

// ---- fakes ----

type statsRepo struct {
	fakeRepo
	banks     []domain.BankSummary
	sentiment []domain.SentimentCount
	themes    []domain.ThemeCount
	texts     []string
}

func (f *statsRepo) ListBanks(ctx context.Context) ([]domain.BankSummary, error) {
	return f.banks, nil
}
func (f *statsRepo) SentimentBreakdown(ctx context.Context) ([]domain.SentimentCount, error) {
	return f.sentiment, nil
}
func (f *statsRepo) ThemeBreakdown(ctx context.Context, label string) ([]domain.ThemeCount, error) {
	return f.themes, nil
}
func (f *statsRepo) ReviewTexts(ctx context.Context, bankID int64) ([]string, error) {
	return f.texts, nil
}

type fakeCache struct {
	store map[string]any
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *[]domain.BankSummary:
		*d = v.([]domain.BankSummary)
	case *[]domain.SentimentCount:
		*d = v.([]domain.SentimentCount)
	case *[]domain.ThemeCount:
		*d = v.([]domain.ThemeCount)
	case *[]string:
		*d = v.([]string)
	}
	return true, nil
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error { return nil }

// ---- tests ----

func TestBanks_CacheMissThenHit(t *testing.T) {
	avg := 3.4
	repo := &statsRepo{banks: []domain.BankSummary{{ID: 1, Name: "CBE", Reviews: 12, AvgRating: &avg}}}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, 10*time.Minute)

	bs, err := q.Banks(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(bs) != 1 || bs[0].Name != "CBE" {
		t.Fatalf("unexpected banks: %+v", bs)
	}

	// Mutate repo to prove the second read is served from cache
	repo.banks[0].Name = "SHOULD NOT SEE THIS"
	bs2, _ := q.Banks(context.Background())
	if bs2[0].Name != "CBE" {
		t.Fatalf("expected cached name, got %s", bs2[0].Name)
	}
}

func TestSentimentStats_Cached(t *testing.T) {
	repo := &statsRepo{sentiment: []domain.SentimentCount{{Bank: "BOA", Label: "POSITIVE", Count: 3}}}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, 10*time.Minute)

	out, err := q.SentimentStats(context.Background())
	if err != nil || len(out) != 1 {
		t.Fatalf("out=%v err=%v", out, err)
	}
	repo.sentiment[0].Count = 99
	out2, _ := q.SentimentStats(context.Background())
	if out2[0].Count != 3 {
		t.Fatalf("expected cached count 3, got %d", out2[0].Count)
	}
}

func TestThemeStats_CachedValueDoesNotAliasRepo(t *testing.T) {
	repo := &statsRepo{themes: []domain.ThemeCount{{Theme: "Login/Access", Count: 5}}}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, 10*time.Minute)

	out, err := q.ThemeStats(context.Background(), "NEGATIVE")
	if err != nil || len(out) != 1 {
		t.Fatalf("out=%v err=%v", out, err)
	}
	// Mutate the repo's backing array; the cached value must not see it
	repo.themes[0].Count = 42
	out2, _ := q.ThemeStats(context.Background(), "NEGATIVE")
	if out2[0].Count != 5 {
		t.Fatalf("expected cached count 5, got %d", out2[0].Count)
	}
}

func TestKeywords_SmallGroupEmptyNotError(t *testing.T) {
	repo := &statsRepo{texts: []string{"slow", "crash", "nice"}}
	q := app.NewQueryService(repo, &fakeCache{}, time.Minute)

	kws, err := q.Keywords(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("keyword degeneracy must not error: %v", err)
	}
	if len(kws) != 0 {
		t.Fatalf("expected empty keywords for 3 texts, got %v", kws)
	}
}
