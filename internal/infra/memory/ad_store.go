package memory

import (
	"context"
	"sort"
	"sync"

	"cricket-quiz-service/internal/domain"
)

// AdStore keeps ad records in memory.
type AdStore struct {
	mu  sync.RWMutex
	ads map[string]domain.AdRecord
}

func NewAdStore(ads ...domain.AdRecord) *AdStore {
	s := &AdStore{ads: make(map[string]domain.AdRecord)}
	for _, ad := range ads {
		s.ads[ad.ID] = ad
	}
	return s
}

// Upsert adds or replaces an ad.
func (s *AdStore) Upsert(ad domain.AdRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ads[ad.ID] = ad
}

// ActiveAdForSlot returns the highest revenue active ad for slot.
func (s *AdStore) ActiveAdForSlot(_ context.Context, slot domain.AdSlot) (domain.AdRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var candidates []domain.AdRecord
	for _, ad := range s.ads {
		if ad.AdSlot == slot && ad.IsActive {
			candidates = append(candidates, ad)
		}
	}
	if len(candidates) == 0 {
		return domain.AdRecord{}, domain.ErrAdNotFound
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Revenue != candidates[j].Revenue {
			return candidates[i].Revenue > candidates[j].Revenue
		}
		return candidates[i].ID < candidates[j].ID
	})
	return candidates[0], nil
}
