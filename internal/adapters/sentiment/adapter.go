package sentiment

import (
	"context"

	"github.com/rs/zerolog/log"

	"bank_reviews/internal/adapters/observability"
	"bank_reviews/internal/domain"
)

// maxScoreLen is the truncation bound applied before delegating; longer
// inputs are rejected or mishandled by the model.
const maxScoreLen = 512

// FallbackResult is reported whenever the scorer fails. One failing review
// must not halt the rest of the batch.
var FallbackResult = domain.SentimentResult{Label: "NEUTRAL", Score: 0.0}

// Adapter wraps a scorer behind the stable (text -> label, score) contract:
// it truncates input and maps every scorer error to FallbackResult. Stateless
// across calls.
type Adapter struct {
	scorer domain.SentimentScorer
}

func NewAdapter(s domain.SentimentScorer) *Adapter { return &Adapter{scorer: s} }

// Score never returns an error; failure is an explicit branch that logs,
// counts, and reports neutral.
func (a *Adapter) Score(ctx context.Context, text string) domain.SentimentResult {
	res, err := a.scorer.Score(ctx, Truncate(text))
	if err != nil {
		observability.ObserveSentimentFallback()
		log.Debug().Err(err).Msg("sentiment scoring failed, reporting NEUTRAL")
		return FallbackResult
	}
	return res
}

// Truncate bounds text to maxScoreLen runes so multi-byte characters are
// never split.
func Truncate(text string) string {
	r := []rune(text)
	if len(r) <= maxScoreLen {
		return text
	}
	return string(r[:maxScoreLen])
}
