package playstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"bank_reviews/internal/domain"
)

// Client pulls app reviews from the Play Store proxy. Reviews come back
// newest-first for the configured language/country.
type Client struct {
	base    string
	hc      *http.Client
	rl      *rate.Limiter
	lang    string
	country string
}

var ErrNotFound = errors.New("playstore: app not found")

func New(base string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("play store base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base:    strings.TrimRight(base, "/"),
		hc:      &http.Client{Timeout: 30 * time.Second},
		rl:      rate.NewLimiter(rate.Limit(rps), rps),
		lang:    "en",
		country: "et",
	}, nil
}

type reviewPayload struct {
	Content string    `json:"content"`
	Score   int       `json:"score"`
	At      time.Time `json:"at"`
}

// FetchReviews returns up to count reviews for the app, tagged with the bank
// name so batches from several apps stay distinguishable.
func (c *Client) FetchReviews(ctx context.Context, bank, appID string, count int) ([]domain.RawReview, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("lang", c.lang)
	q.Set("country", c.country)
	q.Set("sort", "newest")
	q.Set("count", fmt.Sprint(count))
	u := fmt.Sprintf("%s/apps/%s/reviews?%s", c.base, url.PathEscape(appID), q.Encode())

	var payload []reviewPayload
	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "bank-reviews/1.0")

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoffDelay(i)) {
				continue
			}
			return nil, lastErr
		}

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(&payload)
			resp.Body.Close()
			if err != nil {
				return nil, err
			}
			return c.mapReviews(bank, payload), nil

		case http.StatusNotFound:
			resp.Body.Close()
			return nil, ErrNotFound

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			resp.Body.Close()
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, backoffDelay(i)) {
				continue
			}
			return nil, lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return nil, lastErr
}

func (c *Client) mapReviews(bank string, payload []reviewPayload) []domain.RawReview {
	out := make([]domain.RawReview, 0, len(payload))
	for _, p := range payload {
		if strings.TrimSpace(p.Content) == "" {
			continue
		}
		at := p.At
		out = append(out, domain.RawReview{
			Bank:   bank,
			Text:   p.Content,
			Rating: p.Score,
			Date:   time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC),
		})
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func backoffDelay(i int) time.Duration {
	return time.Duration(1<<i) * 200 * time.Millisecond
}
