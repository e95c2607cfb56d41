package redis

import (
	"context"
	"encoding/json"
	"time"

	"edugames-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RewardsStore is a Redis implementation of app.RewardsRepository. Points
// live in one counter per user; idempotency keys are claimed with SET NX
// so a retried completion report can never double-credit.
type RewardsStore struct {
	client *redis.Client
	keyTTL time.Duration
}

func NewRewardsStore(client *redis.Client, keyTTL time.Duration) *RewardsStore {
	return &RewardsStore{client: client, keyTTL: keyTTL}
}

func (s *RewardsStore) RecordCompletion(ctx context.Context, completion domain.Completion) (domain.CompletionResult, error) {
	if completion.IdempotencyKey != "" {
		claimed, err := s.client.SetNX(ctx, s.claimKey(completion.IdempotencyKey), "pending", s.keyTTL).Result()
		if err != nil {
			return domain.CompletionResult{}, err
		}
		if !claimed {
			return s.replay(ctx, completion)
		}
	}

	total, err := s.client.IncrBy(ctx, s.pointsKey(completion.UserID), int64(completion.Points)).Result()
	if err != nil {
		return domain.CompletionResult{}, err
	}
	result := domain.CompletionResult{
		PointsEarned: completion.Points,
		TotalPoints:  int(total),
	}

	if completion.IdempotencyKey != "" {
		if data, err := json.Marshal(result); err == nil {
			_ = s.client.Set(ctx, s.claimKey(completion.IdempotencyKey), data, s.keyTTL).Err()
		}
	}
	return result, nil
}

// replay returns the stored result for an already-claimed key. If the
// original writer has claimed but not yet stored its result, fall back to
// a zero award with the current total so the retry still cannot credit.
func (s *RewardsStore) replay(ctx context.Context, completion domain.Completion) (domain.CompletionResult, error) {
	data, err := s.client.Get(ctx, s.claimKey(completion.IdempotencyKey)).Bytes()
	if err == nil && len(data) > 0 && data[0] == '{' {
		var result domain.CompletionResult
		if jsonErr := json.Unmarshal(data, &result); jsonErr == nil {
			return result, nil
		}
	}
	total, err := s.TotalPoints(ctx, completion.UserID)
	if err != nil {
		return domain.CompletionResult{}, err
	}
	return domain.CompletionResult{PointsEarned: 0, TotalPoints: total}, nil
}

func (s *RewardsStore) TotalPoints(ctx context.Context, userID string) (int, error) {
	total, err := s.client.Get(ctx, s.pointsKey(userID)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *RewardsStore) pointsKey(userID string) string {
	return "rewards:points:" + userID
}

func (s *RewardsStore) claimKey(key string) string {
	return "rewards:completion:" + key
}
