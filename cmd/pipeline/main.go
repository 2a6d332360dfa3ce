package main

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"bank_reviews/internal/adapters/observability"
	"bank_reviews/internal/adapters/sentiment"
	"bank_reviews/internal/analysis"
	"bank_reviews/internal/app"
	"bank_reviews/internal/shared"
	mysqlrepo "bank_reviews/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)
	observability.Serve()

	log.Info().
		Str("input", cfg.InputCSV).
		Str("output", cfg.OutputCSV).
		Str("scorer", cfg.ScorerBase).
		Msg("pipeline starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	scorer, err := sentiment.NewClient(cfg.ScorerBase, cfg.ScorerRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize scorer client")
	}
	adapter := sentiment.NewAdapter(scorer)
	classifier := analysis.NewThemeClassifier(analysis.DefaultThemes())

	p := app.NewPipeline(adapter, classifier, repo, app.PipelineOptions{
		InputCSV:  cfg.InputCSV,
		OutputCSV: cfg.OutputCSV,
		SourceTag: cfg.SourceTag,
		KeywordsK: cfg.KeywordsK,
		Migrate:   cfg.Migrate,
	})

	if err := p.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("pipeline failed")
	}
	log.Info().Msg("pipeline completed")
}
