package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	redisad "bank_reviews/internal/adapters/redis"
	"bank_reviews/internal/domain"
)

func TestCache_Roundtrip(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	// miss before set
	var out []domain.SentimentCount
	ok, err := c.Get(ctx, "stats:sentiment", &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected miss on empty cache")
	}

	in := []domain.SentimentCount{{Bank: "CBE", Label: "NEGATIVE", Count: 7}}
	if err := c.Set(ctx, "stats:sentiment", in, 60); err != nil {
		t.Fatalf("Set: %v", err)
	}

	ok, err = c.Get(ctx, "stats:sentiment", &out)
	if err != nil || !ok {
		t.Fatalf("Get after Set: ok=%v err=%v", ok, err)
	}
	if len(out) != 1 || out[0].Bank != "CBE" || out[0].Count != 7 {
		t.Fatalf("unexpected value: %+v", out)
	}

	if err := c.Del(ctx, "stats:sentiment"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if ok, _ := c.Get(ctx, "stats:sentiment", &out); ok {
		t.Fatal("expected miss after Del")
	}
}
