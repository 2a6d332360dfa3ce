package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"bank_reviews/internal/domain"
)

const dateLayout = "2006-01-02"

var requiredColumns = []string{"bank", "review_text", "rating", "review_date"}

// ReadReviews loads a review batch from a CSV file. The header must name the
// required columns; sentiment_label/sentiment_score/theme/source are optional
// and pass through as precomputed values when present and non-empty.
func ReadReviews(path string) ([]domain.RawReview, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("empty csv")
	}

	col := map[string]int{}
	for i, h := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := col[c]; !ok {
			return nil, fmt.Errorf("csv missing required column %q", c)
		}
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := make([]domain.RawReview, 0, len(rows)-1)
	for n, row := range rows[1:] {
		rv := domain.RawReview{
			Bank: field(row, "bank"),
			Text: field(row, "review_text"),
		}
		if rv.Bank == "" || rv.Text == "" {
			return nil, fmt.Errorf("row %d: bank and review_text are required", n+2)
		}
		rv.Rating = parseIntFlexible(field(row, "rating"))
		d, err := parseDate(field(row, "review_date"))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		rv.Date = d

		if lbl := field(row, "sentiment_label"); lbl != "" {
			score, _ := strconv.ParseFloat(strings.ReplaceAll(field(row, "sentiment_score"), ",", "."), 64)
			rv.Sentiment = &domain.SentimentResult{Label: lbl, Score: score}
		}
		if th := field(row, "theme"); th != "" {
			rv.Theme = &th
		}
		if src := field(row, "source"); src != "" {
			rv.Source = &src
		}
		out = append(out, rv)
	}
	return out, nil
}

// WriteAnalyzed writes the classified batch as the checkpoint file consumed
// by the database load step (input shape plus computed columns).
func WriteAnalyzed(path string, rs []domain.Review) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"bank", "review_text", "rating", "review_date", "sentiment_label", "sentiment_score", "theme", "source"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, rv := range rs {
		rec := []string{
			rv.Bank,
			rv.Text,
			strconv.Itoa(rv.Rating),
			rv.Date.Format(dateLayout),
			rv.SentimentLabel,
			strconv.FormatFloat(rv.SentimentScore, 'f', -1, 64),
			rv.Theme,
			rv.Source,
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// parseIntFlexible tolerates "4", "4.0" and blanks; out-of-range ratings pass
// through untouched.
func parseIntFlexible(s string) int {
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
		return int(f)
	}
	return 0
}

// parseDate accepts a bare date or a timestamp and keeps the calendar date.
func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{dateLayout, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable review_date %q", s)
}
