package domain

import "time"

// GameType tags a GameConfig variant.
type GameType string

const (
	GamePuzzle   GameType = "puzzle"
	GameMatch    GameType = "match"
	GameQuiz     GameType = "quiz"
	GameTimeline GameType = "timeline"
	GameWhack    GameType = "whack"
)

// Game is one playable entry in the catalog. Config must carry the variant
// matching Type.
type Game struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Type         GameType   `json:"type"`
	Config       GameConfig `json:"config"`
	PointsReward int        `json:"pointsReward"`
}

// Completion records one finished play-through for reward crediting.
type Completion struct {
	GameID         string    `json:"gameId"`
	UserID         string    `json:"userId"`
	Score          int       `json:"score"` // 0-100
	Points         int       `json:"points"`
	IdempotencyKey string    `json:"idempotencyKey"`
	CompletedAt    time.Time `json:"completedAt"`
}

// CompletionResult is what the host shows after reporting a completion.
type CompletionResult struct {
	PointsEarned int    `json:"pointsEarned"`
	TotalPoints  int    `json:"totalPoints"`
	Message      string `json:"message"`
}

// PointsEarned converts a 0-100 score into reward points for a game,
// rounding half away from zero.
func PointsEarned(score, pointsReward int) int {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return (score*pointsReward + 50) / 100
}
