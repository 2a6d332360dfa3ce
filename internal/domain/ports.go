package domain

import "context"

type ReviewRepository interface {
	// Write paths
	EnsureSchema(ctx context.Context) error
	ResolveBanks(ctx context.Context, names []string) (map[string]int64, error)
	InsertReviews(ctx context.Context, rs []Review) error

	// Read paths
	ListBanks(ctx context.Context) ([]BankSummary, error)
	ListReviews(ctx context.Context, bankID int64, limit int) ([]Review, error)
	ReviewTexts(ctx context.Context, bankID int64) ([]string, error)
	SentimentBreakdown(ctx context.Context) ([]SentimentCount, error)
	ThemeBreakdown(ctx context.Context, label string) ([]ThemeCount, error)
}

type SentimentScorer interface {
	Score(ctx context.Context, text string) (SentimentResult, error)
}

type ReviewSource interface {
	FetchReviews(ctx context.Context, bank, appID string, count int) ([]RawReview, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Read models

type BankSummary struct {
	ID        int64
	Name      string
	Reviews   int64
	AvgRating *float64 // nil when the bank has no reviews yet
}

type SentimentCount struct {
	Bank  string
	Label string
	Count int64
}

type ThemeCount struct {
	Theme string
	Count int64
}
