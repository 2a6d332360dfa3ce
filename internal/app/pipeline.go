package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"bank_reviews/internal/adapters/observability"
	"bank_reviews/internal/analysis"
	"bank_reviews/internal/csvio"
	"bank_reviews/internal/domain"
)

// SentimentAdapter is the already-fallback-wrapped scorer: it cannot fail,
// only report NEUTRAL.
type SentimentAdapter interface {
	Score(ctx context.Context, text string) domain.SentimentResult
}

// PipelineOptions tune one batch run.
type PipelineOptions struct {
	InputCSV  string
	OutputCSV string
	SourceTag string
	KeywordsK int
	Migrate   bool
}

// Pipeline is the batch classification and load service. Stages run
// synchronously, each consuming its whole input before the next starts.
type Pipeline struct {
	scorer     SentimentAdapter
	classifier *analysis.ThemeClassifier
	repo       domain.ReviewRepository
	opts       PipelineOptions
}

func NewPipeline(s SentimentAdapter, c *analysis.ThemeClassifier, r domain.ReviewRepository, opts PipelineOptions) *Pipeline {
	return &Pipeline{scorer: s, classifier: c, repo: r, opts: opts}
}

// Run executes the full batch: read, dedupe, classify, checkpoint, report
// keywords, persist. A missing input file halts before any processing; only
// persistence errors abort after that.
func (p *Pipeline) Run(ctx context.Context) error {
	raws, err := csvio.ReadReviews(p.opts.InputCSV)
	if err != nil {
		return fmt.Errorf("read input %s: %w", p.opts.InputCSV, err)
	}

	raws, removed := Dedupe(raws)
	observability.DuplicatesRemoved.Add(float64(removed))
	log.Info().Int("rows", len(raws)).Int("duplicates_removed", removed).Msg("input loaded")

	records := p.Analyze(ctx, raws)

	if p.opts.OutputCSV != "" {
		if err := csvio.WriteAnalyzed(p.opts.OutputCSV, records); err != nil {
			return fmt.Errorf("write checkpoint %s: %w", p.opts.OutputCSV, err)
		}
		log.Info().Str("file", p.opts.OutputCSV).Msg("checkpoint written")
	}

	p.reportKeywords(records)

	if err := p.Persist(ctx, records); err != nil {
		return err
	}
	log.Info().Int("reviews", len(records)).Msg("batch persisted")
	return nil
}

// Analyze attaches sentiment and theme to every row and builds the canonical
// records. Classification failures never drop a row; the adapter's fallback
// value stands in.
func (p *Pipeline) Analyze(ctx context.Context, raws []domain.RawReview) []domain.Review {
	out := make([]domain.Review, 0, len(raws))
	for _, raw := range raws {
		res := domain.SentimentResult{}
		if raw.Sentiment != nil {
			res = *raw.Sentiment
		} else {
			res = p.scorer.Score(ctx, raw.Text)
		}

		theme := ""
		if raw.Theme != nil {
			theme = *raw.Theme
		} else {
			theme = p.classifier.Classify(raw.Text)
		}

		out = append(out, buildRecord(raw, res, theme, p.opts.SourceTag))
		observability.ReviewsProcessed.Inc()
	}
	return out
}

// Persist resolves banks first (own commit), then bulk-inserts reviews.
// Errors here are fatal for the batch.
func (p *Pipeline) Persist(ctx context.Context, records []domain.Review) error {
	if len(records) == 0 {
		return nil
	}
	if p.opts.Migrate {
		if err := p.repo.EnsureSchema(ctx); err != nil {
			return err
		}
	}

	var names []string
	seen := map[string]struct{}{}
	for _, r := range records {
		if _, ok := seen[r.Bank]; !ok {
			seen[r.Bank] = struct{}{}
			names = append(names, r.Bank)
		}
	}

	ids, err := p.repo.ResolveBanks(ctx, names)
	if err != nil {
		return fmt.Errorf("resolve banks: %w", err)
	}
	observability.BanksResolved.Add(float64(len(ids)))
	log.Info().Int("banks", len(ids)).Msg("banks resolved")

	for i := range records {
		id, ok := ids[records[i].Bank]
		if !ok {
			// resolution runs before insertion; a missing mapping is a bug
			return fmt.Errorf("no bank_id resolved for %q", records[i].Bank)
		}
		records[i].BankID = id
	}

	if err := p.repo.InsertReviews(ctx, records); err != nil {
		return fmt.Errorf("insert reviews: %w", err)
	}
	observability.ReviewsInserted.Add(float64(len(records)))
	return nil
}

func (p *Pipeline) reportKeywords(records []domain.Review) {
	groups := map[string][]string{}
	for _, r := range records {
		groups[r.Bank] = append(groups[r.Bank], r.Text)
	}
	for bank, texts := range groups {
		kws := analysis.TopKeywords(texts, p.opts.KeywordsK)
		if len(kws) == 0 {
			continue // small group or empty vocabulary; reporting aid only
		}
		log.Info().Str("bank", bank).Strs("keywords", kws).Msg("top keywords")
	}
}

// Dedupe drops exact duplicate rows (same bank, text, rating and date),
// keeping first occurrence. Idempotence across runs is the caller's concern;
// this only cleans one batch.
func Dedupe(raws []domain.RawReview) ([]domain.RawReview, int) {
	type key struct {
		bank, text string
		rating     int
		date       int64
	}
	seen := map[key]struct{}{}
	out := raws[:0]
	for _, r := range raws {
		k := key{r.Bank, r.Text, r.Rating, r.Date.Unix()}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out, len(raws) - len(out)
}

// buildRecord is pure assembly: raw fields + classification results +
// provenance tag into one Review.
func buildRecord(raw domain.RawReview, res domain.SentimentResult, theme, sourceTag string) domain.Review {
	if theme == "" {
		theme = analysis.GeneralTheme
	}
	source := sourceTag
	if raw.Source != nil && *raw.Source != "" {
		source = *raw.Source
	}
	return domain.Review{
		Bank:           raw.Bank,
		Text:           raw.Text,
		Rating:         raw.Rating,
		Date:           raw.Date,
		SentimentLabel: res.Label,
		SentimentScore: res.Score,
		Theme:          theme,
		Source:         source,
	}
}
