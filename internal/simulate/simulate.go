// Package simulate models delivery of a requested action (like, visit,
// friend request) to a game account. No real side effect happens on the
// game side; the simulator validates the target, waits a realistic
// amount of time and reports an outcome.
package simulate

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/Yichu-bro/Myfaff/internal/uid"
)

var (
	// ErrInvalidUID is returned immediately, without the artificial delay.
	ErrInvalidUID = errors.New("invalid uid")
	// ErrTargetBusy emulates a busy or offline target account.
	ErrTargetBusy = errors.New("target busy")
)

type Result struct {
	Action  string
	UID     string
	Message string
}

type Simulator struct {
	MinDelay   time.Duration
	MaxDelay   time.Duration
	FailurePct int64 // 0..100, chance a well-formed request still fails

	mu  sync.Mutex
	rng *rand.Rand
}

func New(failurePct int64) *Simulator {
	if failurePct < 0 {
		failurePct = 0
	}
	if failurePct > 100 {
		failurePct = 100
	}
	return &Simulator{
		MinDelay:   1500 * time.Millisecond,
		MaxDelay:   3 * time.Second,
		FailurePct: failurePct,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Execute waits out the artificial delay and resolves the request.
// A malformed UID fails up front with no delay.
func (s *Simulator) Execute(ctx context.Context, targetUID, action string) (Result, error) {
	if !uid.Valid(targetUID) {
		return Result{}, ErrInvalidUID
	}

	if err := sleepCtx(ctx, s.delay()); err != nil {
		return Result{}, err
	}

	if s.FailurePct > 0 {
		s.mu.Lock()
		roll := s.rng.Int63n(100)
		s.mu.Unlock()
		if roll < s.FailurePct {
			return Result{}, ErrTargetBusy
		}
	}

	action = strings.ToUpper(strings.TrimSpace(action))
	if action == "" {
		action = "LIKE"
	}
	return Result{
		Action:  action,
		UID:     targetUID,
		Message: action + " Request Sent!",
	}, nil
}

func (s *Simulator) delay() time.Duration {
	if s.MaxDelay <= s.MinDelay {
		return s.MinDelay
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.MinDelay + time.Duration(s.rng.Int63n(int64(s.MaxDelay-s.MinDelay)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
