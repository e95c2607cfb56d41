package postgres

import (
	"context"
	"fmt"

	"edugames-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// RewardsRepository persists completions and accumulates reward points.
// The completions table carries a unique idempotency key, so a retried
// report inserts nothing and the stored row is replayed instead.
type RewardsRepository struct {
	pool *pgxpool.Pool
}

func NewRewardsRepository(pool *pgxpool.Pool) *RewardsRepository {
	return &RewardsRepository{pool: pool}
}

func (r *RewardsRepository) RecordCompletion(ctx context.Context, completion domain.Completion) (domain.CompletionResult, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO completions (idempotency_key, game_id, user_id, score, points, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (idempotency_key) DO NOTHING`,
		completion.IdempotencyKey, completion.GameID, completion.UserID,
		completion.Score, completion.Points, completion.CompletedAt)
	if err != nil {
		return domain.CompletionResult{}, fmt.Errorf("record completion: %w", err)
	}

	earned := completion.Points
	if tag.RowsAffected() == 0 {
		// replay: report the originally credited points, award nothing new
		err := r.pool.QueryRow(ctx,
			`SELECT points FROM completions WHERE idempotency_key=$1`,
			completion.IdempotencyKey).Scan(&earned)
		if err != nil {
			return domain.CompletionResult{}, fmt.Errorf("replay completion: %w", err)
		}
	}

	total, err := r.TotalPoints(ctx, completion.UserID)
	if err != nil {
		return domain.CompletionResult{}, err
	}
	return domain.CompletionResult{PointsEarned: earned, TotalPoints: total}, nil
}

func (r *RewardsRepository) TotalPoints(ctx context.Context, userID string) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(points), 0) FROM completions WHERE user_id=$1`,
		userID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total points: %w", err)
	}
	return total, nil
}
