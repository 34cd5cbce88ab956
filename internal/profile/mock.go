package profile

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
)

const defaultAvatarURL = "https://cdn-icons-png.flaticon.com/512/147/147142.png"

var rankTable = []string{
	"Bronze III", "Silver II", "Gold IV", "Platinum I",
	"Diamond II", "Heroic", "Grand Master",
}

// Mock fabricates a profile from the UID itself so repeated checks of the
// same account look consistent to the webapp. Only the likes counter
// carries random jitter. An artificial delay emulates upstream latency.
type Mock struct {
	MinDelay time.Duration
	MaxDelay time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

func NewMock() *Mock {
	return &Mock{
		MinDelay: 1500 * time.Millisecond,
		MaxDelay: 3 * time.Second,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (m *Mock) Fetch(ctx context.Context, uid, region string) (Profile, error) {
	if err := sleepCtx(ctx, m.delay()); err != nil {
		return Profile{}, err
	}

	tail := uid
	if len(tail) > 4 {
		tail = tail[len(tail)-4:]
	}
	n, _ := strconv.ParseInt(tail, 10, 64)

	m.mu.Lock()
	jitter := m.rng.Int63n(25)
	m.mu.Unlock()

	return Profile{
		Nickname:  "FF_Player_" + tail,
		UID:       uid,
		Region:    strings.ToUpper(strings.TrimSpace(region)),
		Level:     25 + n%76,
		Rank:      rankTable[n%int64(len(rankTable))],
		Likes:     (n*37)%5000 + jitter,
		Bio:       "Verified UID",
		AvatarURL: defaultAvatarURL,
	}, nil
}

func (m *Mock) delay() time.Duration {
	if m.MaxDelay <= m.MinDelay {
		return m.MinDelay
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.MinDelay + time.Duration(m.rng.Int63n(int64(m.MaxDelay-m.MinDelay)))
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
