package memory

import (
	"context"
	"testing"
	"time"

	"edugames-service/internal/domain"
)

func TestGameRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		GameLoader: NewStaticGameLoader(map[string]domain.Game{
			"game-1": sampleGame(),
		}),
	}
	repo := NewGameRepository(loader, time.Minute)

	if _, err := repo.GetGame(context.Background(), "game-1"); err != nil {
		t.Fatalf("get game: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetGame(context.Background(), "game-1"); err != nil {
		t.Fatalf("get game 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestGameRepositoryUnknownGame(t *testing.T) {
	repo := NewGameRepository(NewStaticGameLoader(nil), time.Minute)
	if _, err := repo.GetGame(context.Background(), "missing"); err != domain.ErrGameNotFound {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

type countingLoader struct {
	GameLoader
	calls int
}

func (l *countingLoader) LoadGame(ctx context.Context, gameID string) (domain.Game, error) {
	l.calls++
	return l.GameLoader.LoadGame(ctx, gameID)
}

func sampleGame() domain.Game {
	return domain.Game{
		ID:           "game-1",
		Title:        "Animal Quiz",
		Type:         domain.GameQuiz,
		PointsReward: 50,
		Config: domain.GameConfig{
			Type: domain.GameQuiz,
			Quiz: &domain.QuizConfig{
				Questions: []domain.QuizQuestion{
					{
						ID:           "q1",
						Question:     "Which animal says moo?",
						Options:      []string{"Cow", "Cat", "Dog"},
						CorrectIndex: 0,
					},
				},
			},
		},
	}
}
