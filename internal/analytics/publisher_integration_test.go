//go:build integration

package analytics

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/partygames/waitlist/internal/metrics"
	"github.com/partygames/waitlist/internal/testutil"
)

func TestIntegrationPublisher_Publish(t *testing.T) {
	ctx := context.Background()
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	client := redis.NewClient(opt)
	t.Cleanup(func() { _ = client.Close() })

	if err := testutil.FlushRedis(ctx, client); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	recorder := metrics.NewInMemory()
	pub := NewPublisher(client, slog.New(slog.NewTextHandler(io.Discard, nil)), recorder)

	event := SubscriptionSucceeded("party.games", time.Now())
	if _, err := pub.Publish(ctx, event); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	msgs, err := client.XRange(ctx, StreamKey, "-", "+").Result()
	if err != nil {
		t.Fatalf("xrange: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 stream entry, got %d", len(msgs))
	}

	var got Event
	if err := json.Unmarshal([]byte(msgs[0].Values["payload"].(string)), &got); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got.ID != event.ID || got.EmailDomain != "party.games" {
		t.Errorf("unexpected payload: %+v", got)
	}

	pub.PublishAsync(SubscriptionFailed("Email already subscribed", time.Now()))

	deadline := time.Now().Add(2 * time.Second)
	for recorder.Snapshot().AnalyticsEventsPublished == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if recorder.Snapshot().AnalyticsEventsPublished != 1 {
		t.Error("expected async publish to be recorded")
	}
}
