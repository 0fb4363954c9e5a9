package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"cricket-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// SlotLoader fetches the live quiz slot for a format from a backing store.
type SlotLoader interface {
	LoadLiveSlot(ctx context.Context, format string) (domain.QuizSlot, error)
}

// SlotRepository caches live slots with TTL to avoid repeated DB hits.
type SlotRepository struct {
	loader SlotLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedSlot
}

type cachedSlot struct {
	slot      domain.QuizSlot
	expiresAt time.Time
}

func NewSlotRepository(loader SlotLoader, ttl time.Duration) *SlotRepository {
	return &SlotRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedSlot),
	}
}

func (r *SlotRepository) LiveSlot(ctx context.Context, format string) (domain.QuizSlot, error) {
	if slot, ok := r.cached(format, r.clock()); ok {
		return slot, nil
	}

	result, err, _ := r.sf.Do(format, func() (interface{}, error) {
		now := r.clock()
		if slot, ok := r.cached(format, now); ok {
			return slot, nil
		}

		slot, err := r.loader.LoadLiveSlot(ctx, format)
		if err != nil {
			return domain.QuizSlot{}, err
		}

		r.mu.Lock()
		r.cache[format] = cachedSlot{
			slot:      slot,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return slot, nil
	})
	if err != nil {
		return domain.QuizSlot{}, err
	}
	return result.(domain.QuizSlot), nil
}

func (r *SlotRepository) cached(format string, now time.Time) (domain.QuizSlot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[format]
	if !ok || !entry.expiresAt.After(now) {
		return domain.QuizSlot{}, false
	}
	return entry.slot, true
}

func (r *SlotRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticSlotLoader serves slots from a map keyed by format (useful for tests/demos).
type StaticSlotLoader struct {
	slots map[string]domain.QuizSlot
}

func NewStaticSlotLoader(slots map[string]domain.QuizSlot) *StaticSlotLoader {
	return &StaticSlotLoader{slots: slots}
}

func (l *StaticSlotLoader) LoadLiveSlot(_ context.Context, format string) (domain.QuizSlot, error) {
	if slot, ok := l.slots[format]; ok && slot.Status == domain.SlotLive {
		return slot, nil
	}
	return domain.QuizSlot{}, domain.ErrSlotNotFound
}
