//go:build integration

package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"
)

// Run with: REDIS_URL=redis://localhost:6379/0 go test -v -tags=integration ./internal/database/redis/...
func TestJSONRoundTrip(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("Skipping: Set REDIS_URL")
	}

	client, err := NewClientFromURL(url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	key := fmt.Sprintf("it:%d", time.Now().UnixNano())
	t.Cleanup(func() { _ = client.Delete(ctx, key) })

	type doc struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	if err := client.SetJSON(ctx, key, doc{Name: "rate", Count: 2}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got doc
	if err := client.GetJSON(ctx, key, &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "rate" || got.Count != 2 {
		t.Errorf("unexpected document %+v", got)
	}

	ttl, err := client.TTL(ctx, key).Result()
	if err != nil || ttl <= 0 || ttl > time.Minute {
		t.Errorf("expected ttl up to a minute, got %v (%v)", ttl, err)
	}

	if err := client.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := client.GetJSON(ctx, key, &got); !errors.Is(err, ErrMiss) {
		t.Errorf("expected ErrMiss after delete, got %v", err)
	}
	if err := client.HealthCheck(ctx); err != nil {
		t.Errorf("health check: %v", err)
	}
}
