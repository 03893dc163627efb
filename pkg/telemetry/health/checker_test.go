package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestReadiness_Gates tests the three readiness conditions
func TestReadiness_Gates(t *testing.T) {
	rules := 0
	checker := New(func() int { return rules }, time.Second)
	ctx := context.Background()

	// Before warmup: not ready even with no failing checks.
	if status := checker.Readiness(ctx); status.Status != "not_ready" {
		t.Errorf("pre-warmup status = %q", status.Status)
	}

	// Warmup done but zero rules: still not ready.
	checker.MarkWarmupComplete()
	if status := checker.Readiness(ctx); status.Status != "not_ready" {
		t.Errorf("zero-rule status = %q", status.Status)
	}

	// Rules compiled: ready.
	rules = 212
	status := checker.Readiness(ctx)
	if status.Status != "ready" {
		t.Errorf("status = %q, want ready", status.Status)
	}
	if status.RuleCount != 212 || !status.WarmupComplete {
		t.Errorf("status = %+v", status)
	}

	// A failing dependency flips readiness.
	checker.RegisterCheck("cache", func(ctx context.Context) error {
		return errors.New("connection refused")
	})
	status = checker.Readiness(ctx)
	if status.Status != "not_ready" {
		t.Errorf("status with failing check = %q", status.Status)
	}
	if result := status.Checks["cache"]; result.Status != "unhealthy" || result.Message == "" {
		t.Errorf("cache check = %+v", result)
	}

	// Recovery restores readiness; replacement by name works.
	checker.RegisterCheck("cache", func(ctx context.Context) error { return nil })
	if status := checker.Readiness(ctx); status.Status != "ready" {
		t.Errorf("status after recovery = %q", status.Status)
	}
}

// TestReadiness_CheckTimeout tests that a hung check reads as unhealthy
func TestReadiness_CheckTimeout(t *testing.T) {
	checker := New(func() int { return 1 }, 20*time.Millisecond)
	checker.MarkWarmupComplete()
	checker.RegisterCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(5 * time.Millisecond)
		return ctx.Err()
	})

	status := checker.Readiness(context.Background())
	if status.Status != "not_ready" {
		t.Errorf("status = %q, want not_ready", status.Status)
	}
}

// TestLiveness tests that liveness never touches dependencies
func TestLiveness(t *testing.T) {
	checker := New(nil, 0)
	checker.RegisterCheck("broken", func(ctx context.Context) error {
		return errors.New("down")
	})

	if status := checker.Liveness(context.Background()); status.Status != "ok" {
		t.Errorf("liveness = %+v", status)
	}
}
