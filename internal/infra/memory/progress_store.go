package memory

import (
	"context"
	"sync"

	"iam-academy-service/internal/domain"
)

// ProgressStore is an in-memory implementation of app.ProgressStore.
// Useful for tests and zero-infrastructure deployments; progress does not
// survive a restart.
type ProgressStore struct {
	mu       sync.RWMutex
	attempts map[string][]domain.AttemptRecord
	badges   map[string][]string
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{
		attempts: make(map[string][]domain.AttemptRecord),
		badges:   make(map[string][]string),
	}
}

func (s *ProgressStore) GetProgress(_ context.Context, moduleID string) (domain.ModuleProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	progress := domain.ModuleProgress{ModuleID: moduleID}
	if attempts, ok := s.attempts[moduleID]; ok {
		progress.Attempts = append([]domain.AttemptRecord(nil), attempts...)
	}
	if badges, ok := s.badges[moduleID]; ok {
		progress.Badges = append([]string(nil), badges...)
	}
	return progress, nil
}

func (s *ProgressStore) RecordAttempt(_ context.Context, moduleID string, attempt domain.AttemptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[moduleID] = append(s.attempts[moduleID], attempt)
	return nil
}

func (s *ProgressStore) AwardBadge(_ context.Context, moduleID, badgeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.badges[moduleID] {
		if b == badgeID {
			return nil
		}
	}
	s.badges[moduleID] = append(s.badges[moduleID], badgeID)
	return nil
}
