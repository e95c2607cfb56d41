package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"edugames-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// GameLoader fetches game content from a backing store (e.g., Postgres).
type GameLoader interface {
	LoadGame(ctx context.Context, gameID string) (domain.Game, error)
	LoadAll(ctx context.Context) ([]domain.Game, error)
}

// GameRepository caches full game documents in Redis (one JSON value per
// game) and falls back to a loader on cache miss.
type GameRepository struct {
	client *redis.Client
	loader GameLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewGameRepository(client *redis.Client, loader GameLoader, ttl time.Duration) *GameRepository {
	return &GameRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *GameRepository) GetGame(ctx context.Context, gameID string) (domain.Game, error) {
	key := r.gameKey(gameID)

	if game, ok := r.cached(ctx, key); ok {
		return game, nil
	}

	result, err, _ := r.sf.Do(gameID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if game, ok := r.cached(ctx, key); ok {
			return game, nil
		}

		game, err := r.loader.LoadGame(ctx, gameID)
		if err != nil {
			return domain.Game{}, err
		}

		if data, err := json.Marshal(game); err == nil {
			// best-effort fill; a cache write failure is not a load failure
			_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()
		}
		return game, nil
	})
	if err != nil {
		return domain.Game{}, err
	}
	return result.(domain.Game), nil
}

// ListGames bypasses the cache; the catalog listing is rare and must not
// go stale piecemeal.
func (r *GameRepository) ListGames(ctx context.Context) ([]domain.Game, error) {
	return r.loader.LoadAll(ctx)
}

func (r *GameRepository) cached(ctx context.Context, key string) (domain.Game, bool) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil || len(data) == 0 {
		return domain.Game{}, false
	}
	var game domain.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return domain.Game{}, false
	}
	return game, true
}

func (r *GameRepository) gameKey(gameID string) string {
	return "game:" + gameID + ":doc"
}

func (r *GameRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
