package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"cricket-quiz-service/internal/ads"
	"cricket-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const noAdMarker = "none"

// AdRepository is a read-through Redis cache in front of an ad store.
// Active ads are stored as: SET ads:slot:{slot} <json> EX ttl
// A slot with no active ad is cached as the "none" marker.
type AdRepository struct {
	client *redis.Client
	source ads.Repository
	ttl    time.Duration
	sf     singleflight.Group
	jitter *jitter
}

func NewAdRepository(client *redis.Client, source ads.Repository, ttl time.Duration) *AdRepository {
	return &AdRepository{
		client: client,
		source: source,
		ttl:    ttl,
		jitter: newJitter(),
	}
}

func (r *AdRepository) ActiveAdForSlot(ctx context.Context, slot domain.AdSlot) (domain.AdRecord, error) {
	key := r.key(slot)
	if ad, hit, err := r.cached(ctx, key); hit {
		return ad, err
	}

	result, err, _ := r.sf.Do(string(slot), func() (interface{}, error) {
		if ad, hit, err := r.cached(ctx, key); hit {
			return ad, err
		}

		ad, err := r.source.ActiveAdForSlot(ctx, slot)
		switch {
		case errors.Is(err, domain.ErrAdNotFound):
			r.store(ctx, key, noAdMarker)
			return domain.AdRecord{}, err
		case err != nil:
			return domain.AdRecord{}, err
		}
		if data, err := json.Marshal(ad); err == nil {
			r.store(ctx, key, string(data))
		}
		return ad, nil
	})
	if err != nil {
		return domain.AdRecord{}, err
	}
	return result.(domain.AdRecord), nil
}

// Invalidate drops the cached ad for slot.
func (r *AdRepository) Invalidate(ctx context.Context, slot domain.AdSlot) error {
	return r.client.Del(ctx, r.key(slot)).Err()
}

// cached reports a cache hit; a cached miss is a hit carrying ErrAdNotFound.
func (r *AdRepository) cached(ctx context.Context, key string) (domain.AdRecord, bool, error) {
	raw, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return domain.AdRecord{}, false, nil
	}
	if raw == noAdMarker {
		return domain.AdRecord{}, true, domain.ErrAdNotFound
	}
	var ad domain.AdRecord
	if err := json.Unmarshal([]byte(raw), &ad); err != nil {
		return domain.AdRecord{}, false, nil
	}
	return ad, true, nil
}

func (r *AdRepository) store(ctx context.Context, key, value string) {
	if err := r.client.Set(ctx, key, value, r.jitter.ttl(r.ttl)).Err(); err != nil {
		log.Printf("[redis] cache %s: %v", key, err)
	}
}

func (r *AdRepository) key(slot domain.AdSlot) string {
	return "ads:slot:" + string(slot)
}
