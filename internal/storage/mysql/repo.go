package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"bank_reviews/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// EnsureSchema creates the tables when absent. Safe to run on every start;
// kept separate from data loading so tests can assert against the schema on
// its own.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{createBanksSQL, createReviewsSQL} {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// ResolveBanks maps every distinct name to its bank_id, inserting missing
// banks on the way. Insert-then-select because the conflict no-op path does
// not return the existing id. Commits as its own unit before any review
// insertion starts.
func (r *Repo) ResolveBanks(ctx context.Context, names []string) (map[string]int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	ids := make(map[string]int64, len(names))
	for _, name := range names {
		if _, dup := ids[name]; dup {
			continue
		}
		if _, err := tx.ExecContext(ctx, insertBankSQL, name); err != nil {
			return nil, fmt.Errorf("insert bank %q: %w", name, err)
		}
		var id int64
		if err := tx.QueryRowContext(ctx, selectBankIDSQL, name).Scan(&id); err != nil {
			return nil, fmt.Errorf("select bank %q: %w", name, err)
		}
		ids[name] = id
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

// InsertReviews bulk-inserts the batch in one transaction, committed once at
// the end rather than per-row. Every row must already carry a resolved
// bank_id; a zero id is a caller bug, not a recoverable condition.
func (r *Repo) InsertReviews(ctx context.Context, rs []domain.Review) error {
	if len(rs) == 0 {
		return nil
	}
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*8)
	for _, rv := range rs {
		if rv.BankID == 0 {
			return fmt.Errorf("review for %q has no resolved bank_id", rv.Bank)
		}
		values = append(values, "(?,?,?,?,?,?,?,?)")
		args = append(args,
			rv.BankID,
			rv.Text,
			rv.Rating,
			rv.Date,
			rv.SentimentLabel,
			rv.SentimentScore,
			rv.Theme,
			rv.Source,
		)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	sqlStr := insertReviewsPrefix + strings.Join(values, ",")
	if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("insert reviews: %w", err)
	}
	return tx.Commit()
}

func (r *Repo) ListBanks(ctx context.Context) ([]domain.BankSummary, error) {
	rows, err := r.db.QueryContext(ctx, listBanksSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BankSummary
	for rows.Next() {
		var b domain.BankSummary
		var avg sql.NullFloat64
		if err := rows.Scan(&b.ID, &b.Name, &b.Reviews, &avg); err != nil {
			return nil, err
		}
		if avg.Valid {
			a := avg.Float64
			b.AvgRating = &a
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) ListReviews(ctx context.Context, bankID int64, limit int) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, listReviewsSQL, bankID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var rv domain.Review
		var rating sql.NullInt64
		var date sql.NullTime
		var label, theme, source sql.NullString
		var score sql.NullFloat64
		if err := rows.Scan(&rv.ID, &rv.BankID, &rv.Text, &rating, &date, &label, &score, &theme, &source); err != nil {
			return nil, err
		}
		if rating.Valid {
			rv.Rating = int(rating.Int64)
		}
		if date.Valid {
			rv.Date = date.Time
		}
		rv.SentimentLabel = label.String
		rv.SentimentScore = score.Float64
		rv.Theme = theme.String
		rv.Source = source.String
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *Repo) ReviewTexts(ctx context.Context, bankID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, reviewTextsSQL, bankID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) SentimentBreakdown(ctx context.Context) ([]domain.SentimentCount, error) {
	rows, err := r.db.QueryContext(ctx, sentimentBreakdownSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SentimentCount
	for rows.Next() {
		var c domain.SentimentCount
		var label sql.NullString
		if err := rows.Scan(&c.Bank, &label, &c.Count); err != nil {
			return nil, err
		}
		c.Label = label.String
		out = append(out, c)
	}
	return out, rows.Err()
}

// ThemeBreakdown counts reviews per theme, optionally restricted to one
// sentiment label (empty label = all reviews).
func (r *Repo) ThemeBreakdown(ctx context.Context, label string) ([]domain.ThemeCount, error) {
	var rows *sql.Rows
	var err error
	if label == "" {
		rows, err = r.db.QueryContext(ctx, themeBreakdownSQL)
	} else {
		rows, err = r.db.QueryContext(ctx, themeBreakdownByLabelSQL, label)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ThemeCount
	for rows.Next() {
		var c domain.ThemeCount
		var theme sql.NullString
		if err := rows.Scan(&theme, &c.Count); err != nil {
			return nil, err
		}
		c.Theme = theme.String
		out = append(out, c)
	}
	return out, rows.Err()
}
