package app

import (
	"context"
	"fmt"
	"time"

	"edugames-service/internal/domain"
	"edugames-service/internal/engine"
)

// SessionRepository abstracts how live play sessions are stored (in-memory,
// Redis-marked, etc).
type SessionRepository interface {
	Put(session *PlaySession)
	Get(id string) (*PlaySession, bool)
	Delete(id string)
}

// GameRepository loads game content (from cache/backing store).
type GameRepository interface {
	GetGame(ctx context.Context, gameID string) (domain.Game, error)
	ListGames(ctx context.Context) ([]domain.Game, error)
}

// RewardsRepository credits reward points for completed sessions. Records
// are idempotent on the completion's IdempotencyKey: replaying a key
// returns the originally-awarded result without crediting twice.
type RewardsRepository interface {
	RecordCompletion(ctx context.Context, completion domain.Completion) (domain.CompletionResult, error)
	TotalPoints(ctx context.Context, userID string) (int, error)
}

// GameService contains the game-play use cases: serving content, running
// engine sessions and converting scores into reward points.
type GameService struct {
	games    GameRepository
	rewards  RewardsRepository
	sessions SessionRepository
	sched    engine.Scheduler
	now      func() time.Time
}

func NewGameService(games GameRepository, rewards RewardsRepository, sessions SessionRepository) *GameService {
	return &GameService{
		games:    games,
		rewards:  rewards,
		sessions: sessions,
		sched:    engine.NewScheduler(),
		now:      time.Now,
	}
}

// NewGameServiceWithScheduler is test-only for deterministic engine timing.
func NewGameServiceWithScheduler(games GameRepository, rewards RewardsRepository, sessions SessionRepository, sched engine.Scheduler) *GameService {
	s := NewGameService(games, rewards, sessions)
	s.sched = sched
	return s
}

// GetGame serves one catalog entry.
func (s *GameService) GetGame(ctx context.Context, gameID string) (domain.Game, error) {
	return s.games.GetGame(ctx, gameID)
}

// ListGames serves the catalog for the host's game menu.
func (s *GameService) ListGames(ctx context.Context) ([]domain.Game, error) {
	return s.games.ListGames(ctx)
}

// StartSession loads the game, builds its engine and starts playing. The
// returned session emits events until completion or Close.
func (s *GameService) StartSession(ctx context.Context, gameID, userID string) (*PlaySession, error) {
	game, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := game.Config.Validate(); err != nil {
		return nil, err
	}
	session, err := newPlaySession(game, userID, s.sched)
	if err != nil {
		return nil, err
	}
	s.sessions.Put(session)
	session.Start()
	return session, nil
}

// Session looks up a live play session.
func (s *GameService) Session(id string) (*PlaySession, error) {
	session, ok := s.sessions.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// EndSession tears a session down without reporting a score, for
// navigate-away and disconnects.
func (s *GameService) EndSession(id string) {
	if session, ok := s.sessions.Get(id); ok {
		session.Close()
	}
	s.sessions.Delete(id)
}

// CompleteGame converts a 0-100 score into reward points and records the
// completion. The idempotency key guards the host's retry path: a replayed
// key returns the original award instead of crediting again.
func (s *GameService) CompleteGame(ctx context.Context, gameID, userID string, score int, idempotencyKey string) (domain.CompletionResult, error) {
	if score < 0 || score > 100 {
		return domain.CompletionResult{}, domain.ErrInvalidScore
	}
	game, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return domain.CompletionResult{}, err
	}

	points := domain.PointsEarned(score, game.PointsReward)
	result, err := s.rewards.RecordCompletion(ctx, domain.Completion{
		GameID:         gameID,
		UserID:         userID,
		Score:          score,
		Points:         points,
		IdempotencyKey: idempotencyKey,
		CompletedAt:    s.now(),
	})
	if err != nil {
		return domain.CompletionResult{}, err
	}
	if result.Message == "" {
		result.Message = fmt.Sprintf("You earned %d points!", result.PointsEarned)
	}
	return result, nil
}

// TotalPoints reports a user's accumulated reward points.
func (s *GameService) TotalPoints(ctx context.Context, userID string) (int, error) {
	return s.rewards.TotalPoints(ctx, userID)
}
