package main

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"bank_reviews/internal/adapters/observability"
	"bank_reviews/internal/adapters/playstore"
	"bank_reviews/internal/app"
	"bank_reviews/internal/csvio"
	"bank_reviews/internal/domain"
	"bank_reviews/internal/shared"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("base", cfg.PlayBase).
		Int("workers", cfg.Workers).
		Int("reviews", cfg.ReviewCount).
		Msg("collector starting")

	client, err := playstore.New(cfg.PlayBase, cfg.PlayRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize play store client")
	}

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup
	var mu sync.Mutex
	var all []domain.RawReview

	for bank, appID := range shared.Apps {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(bank, appID string) {
			defer wg.Done()
			defer sem.Release(1)

			rs, err := client.FetchReviews(ctx, bank, appID, cfg.ReviewCount)
			if err != nil {
				log.Warn().Str("bank", bank).Err(err).Msg("fetch failed")
				return
			}
			mu.Lock()
			all = append(all, rs...)
			mu.Unlock()
			log.Info().Str("bank", bank).Int("reviews", len(rs)).Msg("fetch ok")
		}(bank, appID)
	}
	wg.Wait()

	if len(all) == 0 {
		log.Fatal().Msg("no reviews collected")
	}

	deduped, removed := app.Dedupe(all)
	log.Info().Int("duplicates_removed", removed).Msg("raw batch cleaned")

	records := make([]domain.Review, 0, len(deduped))
	for _, r := range deduped {
		records = append(records, domain.Review{
			Bank: r.Bank, Text: r.Text, Rating: r.Rating, Date: r.Date, Source: cfg.SourceTag,
		})
	}
	if err := csvio.WriteAnalyzed(cfg.InputCSV, records); err != nil {
		log.Fatal().Err(err).Msg("write raw csv failed")
	}
	log.Info().Str("file", cfg.InputCSV).Int("reviews", len(records)).Msg("collection completed")
}
