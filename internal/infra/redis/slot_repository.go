package redis

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"cricket-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// SlotLoader fetches the live quiz slot for a format from a backing store.
type SlotLoader interface {
	LoadLiveSlot(ctx context.Context, format string) (domain.QuizSlot, error)
}

// SlotRepository caches live slots in Redis as JSON and falls back to a loader on cache miss.
// Slots are stored as: SET quiz:slot:{format} <json> EX ttl
type SlotRepository struct {
	client *redis.Client
	loader SlotLoader
	ttl    time.Duration
	sf     singleflight.Group
	jitter *jitter
}

func NewSlotRepository(client *redis.Client, loader SlotLoader, ttl time.Duration) *SlotRepository {
	return &SlotRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		jitter: newJitter(),
	}
}

func (r *SlotRepository) LiveSlot(ctx context.Context, format string) (domain.QuizSlot, error) {
	key := r.key(format)
	if slot, ok := r.cached(ctx, key); ok {
		return slot, nil
	}

	result, err, _ := r.sf.Do(format, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if slot, ok := r.cached(ctx, key); ok {
			return slot, nil
		}

		slot, err := r.loader.LoadLiveSlot(ctx, format)
		if err != nil {
			return domain.QuizSlot{}, err
		}

		if data, err := json.Marshal(slot); err == nil {
			if err := r.client.Set(ctx, key, data, r.jitter.ttl(r.ttl)).Err(); err != nil {
				log.Printf("[redis] cache slot %s: %v", format, err)
			}
		}
		return slot, nil
	})
	if err != nil {
		return domain.QuizSlot{}, err
	}
	return result.(domain.QuizSlot), nil
}

// Invalidate drops the cached slot for format.
func (r *SlotRepository) Invalidate(ctx context.Context, format string) error {
	return r.client.Del(ctx, r.key(format)).Err()
}

func (r *SlotRepository) cached(ctx context.Context, key string) (domain.QuizSlot, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.QuizSlot{}, false
	}
	var slot domain.QuizSlot
	if err := json.Unmarshal(raw, &slot); err != nil {
		return domain.QuizSlot{}, false
	}
	return slot, true
}

func (r *SlotRepository) key(format string) string {
	return "quiz:slot:" + format
}
