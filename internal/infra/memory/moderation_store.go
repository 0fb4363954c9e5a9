package memory

import (
	"context"
	"sync"

	"cricket-quiz-service/internal/domain"
)

// ModerationStore keeps reports and contributions in memory.
type ModerationStore struct {
	mu            sync.RWMutex
	reports       []domain.Report
	contributions []domain.Contribution
}

func NewModerationStore() *ModerationStore {
	return &ModerationStore{}
}

func (s *ModerationStore) CreateReport(_ context.Context, report domain.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
	return nil
}

func (s *ModerationStore) CreateContribution(_ context.Context, c domain.Contribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contributions = append(s.contributions, c)
	return nil
}

// Reports returns a copy of the stored reports.
func (s *ModerationStore) Reports() []domain.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Report(nil), s.reports...)
}

// Contributions returns a copy of the stored contributions.
func (s *ModerationStore) Contributions() []domain.Contribution {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Contribution(nil), s.contributions...)
}
