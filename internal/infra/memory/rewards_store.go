package memory

import (
	"context"
	"sync"

	"edugames-service/internal/domain"
)

// RewardsStore is an in-memory implementation of app.RewardsRepository.
// Completions carrying an idempotency key are credited at most once; a
// replayed key returns the original award.
type RewardsStore struct {
	mu     sync.Mutex
	totals map[string]int
	seen   map[string]domain.CompletionResult
}

func NewRewardsStore() *RewardsStore {
	return &RewardsStore{
		totals: make(map[string]int),
		seen:   make(map[string]domain.CompletionResult),
	}
}

func (s *RewardsStore) RecordCompletion(_ context.Context, completion domain.Completion) (domain.CompletionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if completion.IdempotencyKey != "" {
		if result, ok := s.seen[completion.IdempotencyKey]; ok {
			return result, nil
		}
	}

	s.totals[completion.UserID] += completion.Points
	result := domain.CompletionResult{
		PointsEarned: completion.Points,
		TotalPoints:  s.totals[completion.UserID],
	}
	if completion.IdempotencyKey != "" {
		s.seen[completion.IdempotencyKey] = result
	}
	return result, nil
}

func (s *RewardsStore) TotalPoints(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals[userID], nil
}
