package domain

import "time"

// RawReview is one row as it arrives from the source (collector or input
// file), before classification. Optional columns may be precomputed upstream.
type RawReview struct {
	Bank      string
	Text      string
	Rating    int
	Date      time.Time // calendar date, time-of-day dropped
	Sentiment *SentimentResult
	Theme     *string
	Source    *string
}

// SentimentResult is the scorer contract: a categorical label plus a
// confidence in [0,1].
type SentimentResult struct {
	Label string
	Score float64
}

// Review is the canonical persisted record. BankID is resolved by the
// storage layer before insertion; rows are inserted once and never updated.
type Review struct {
	ID             int64
	BankID         int64
	Bank           string
	Text           string
	Rating         int
	Date           time.Time
	SentimentLabel string
	SentimentScore float64
	Theme          string
	Source         string
}
