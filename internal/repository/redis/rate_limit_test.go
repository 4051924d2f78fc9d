package redis

import (
	"context"
	"testing"
	"time"
)

func TestRateLimitRepository_CountWithinWindow(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewRateLimitRepository(client, SlidingWindowConfig{KeyPrefix: "wshop:rate-limit", TTL: 2 * time.Minute})

	ctx := context.Background()
	now := time.Date(2025, 10, 12, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if err := repo.RecordAttempt(ctx, "sync_pull:1", now.Add(time.Duration(-i*10)*time.Second)); err != nil {
			t.Fatalf("RecordAttempt returned error: %v", err)
		}
	}
	// Outside the one-minute window.
	if err := repo.RecordAttempt(ctx, "sync_pull:1", now.Add(-5*time.Minute)); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}

	count, err := repo.CountAttempts(ctx, "sync_pull:1", time.Minute, now)
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 attempts inside the window, got %d", count)
	}
}

func TestRateLimitRepository_TrimWindowDropsStaleAttempts(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewRateLimitRepository(client, SlidingWindowConfig{KeyPrefix: "wshop:rate-limit", TTL: 2 * time.Minute})

	ctx := context.Background()
	now := time.Date(2025, 10, 12, 10, 0, 0, 0, time.UTC)

	if err := repo.RecordAttempt(ctx, "sync_pull:2", now.Add(-10*time.Minute)); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}
	if err := repo.RecordAttempt(ctx, "sync_pull:2", now.Add(-10*time.Second)); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}

	if err := repo.TrimWindow(ctx, "sync_pull:2", time.Minute, now); err != nil {
		t.Fatalf("TrimWindow returned error: %v", err)
	}

	count, err := repo.CountAttempts(ctx, "sync_pull:2", time.Hour, now)
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected stale attempt to be trimmed, got %d remaining", count)
	}
}

func TestRateLimitRepository_OldestAttempt(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewRateLimitRepository(client, SlidingWindowConfig{KeyPrefix: "wshop:rate-limit", TTL: 2 * time.Minute})

	ctx := context.Background()
	now := time.Date(2025, 10, 12, 10, 0, 0, 0, time.UTC)

	if _, found, err := repo.OldestAttempt(ctx, "sync_pull:3", time.Minute, now); err != nil || found {
		t.Fatalf("expected no attempts, got found=%v err=%v", found, err)
	}

	oldest := now.Add(-40 * time.Second)
	if err := repo.RecordAttempt(ctx, "sync_pull:3", oldest); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}
	if err := repo.RecordAttempt(ctx, "sync_pull:3", now.Add(-5*time.Second)); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}

	got, found, err := repo.OldestAttempt(ctx, "sync_pull:3", time.Minute, now)
	if err != nil {
		t.Fatalf("OldestAttempt returned error: %v", err)
	}
	if !found {
		t.Fatal("expected an attempt inside the window")
	}
	// Scores round-trip through float64, so compare with a coarse margin.
	if diff := got.Sub(oldest); diff < -time.Millisecond || diff > time.Millisecond {
		t.Fatalf("expected oldest near %v, got %v", oldest, got)
	}
}
