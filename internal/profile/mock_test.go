package profile

import (
	"context"
	"testing"
	"time"
)

func newTestMock() *Mock {
	m := NewMock()
	m.MinDelay = 0
	m.MaxDelay = 0
	return m
}

func TestMockDeterministicFields(t *testing.T) {
	m := newTestMock()
	ctx := context.Background()

	a, err := m.Fetch(ctx, "1234567890", "ind")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	b, err := m.Fetch(ctx, "1234567890", "ind")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if a.Nickname != b.Nickname || a.Level != b.Level || a.Rank != b.Rank {
		t.Fatalf("mock fields not stable for same uid: %+v vs %+v", a, b)
	}
	if a.Nickname != "FF_Player_7890" {
		t.Fatalf("nickname = %q, want FF_Player_7890", a.Nickname)
	}
	if a.Region != "IND" {
		t.Fatalf("region = %q, want IND", a.Region)
	}
	if a.Level < 25 || a.Level > 100 {
		t.Fatalf("level %d out of band", a.Level)
	}
}

func TestMockNeverErrors(t *testing.T) {
	m := newTestMock()
	for _, uid := range []string{"00000000", "99999999", "123456789012"} {
		if _, err := m.Fetch(context.Background(), uid, "SA"); err != nil {
			t.Fatalf("mock errored for %q: %v", uid, err)
		}
	}
}

func TestMockHonorsCancellation(t *testing.T) {
	m := NewMock()
	m.MinDelay = 10 * time.Second
	m.MaxDelay = 10 * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if _, err := m.Fetch(ctx, "12345678", "ETHIOPIA"); err == nil {
		t.Fatalf("expected context error")
	}
	if time.Since(start) > time.Second {
		t.Fatalf("fetch did not return promptly on cancellation")
	}
}
