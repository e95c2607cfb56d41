package domain

// GameConfig is a closed tagged union over the five game variants. Exactly
// one variant pointer is set, and it must agree with Type.
type GameConfig struct {
	Type     GameType        `json:"type"`
	Puzzle   *PuzzleConfig   `json:"puzzle,omitempty"`
	Match    *MatchConfig    `json:"match,omitempty"`
	Quiz     *QuizConfig     `json:"quiz,omitempty"`
	Timeline *TimelineConfig `json:"timeline,omitempty"`
	Whack    *WhackConfig    `json:"whack,omitempty"`
}

// Validate checks that the tag matches the populated variant and that the
// variant carries playable content.
func (c GameConfig) Validate() error {
	switch c.Type {
	case GamePuzzle:
		if c.Puzzle == nil {
			return ErrInvalidConfig
		}
		if c.Puzzle.ImageURL == "" {
			return ErrNoContent
		}
	case GameMatch:
		if c.Match == nil {
			return ErrInvalidConfig
		}
		if len(c.Match.Pairs) == 0 {
			return ErrNoContent
		}
	case GameQuiz:
		if c.Quiz == nil {
			return ErrInvalidConfig
		}
		if len(c.Quiz.Questions) == 0 {
			return ErrNoContent
		}
		for _, q := range c.Quiz.Questions {
			if len(q.Options) == 0 || q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
				return ErrInvalidConfig
			}
		}
	case GameTimeline:
		if c.Timeline == nil {
			return ErrInvalidConfig
		}
		if len(c.Timeline.Events) == 0 {
			return ErrNoContent
		}
	case GameWhack:
		if c.Whack == nil {
			return ErrInvalidConfig
		}
		if c.Whack.TargetImage == "" {
			return ErrNoContent
		}
	default:
		return ErrUnknownGameType
	}
	return nil
}

// PuzzleConfig describes a grid-swap picture puzzle.
type PuzzleConfig struct {
	ImageURL   string `json:"imageUrl"`
	GridSize   int    `json:"gridSize"` // defaults to 3 if zero
	HintText   string `json:"hintText,omitempty"`
	WinMessage string `json:"winMessage,omitempty"`
}

// MatchPair is one front/back pair for the memory game.
type MatchPair struct {
	ID    string `json:"id"`
	Front string `json:"front"`
	Back  string `json:"back"`
}

// MatchConfig describes a memory pair-matching game.
type MatchConfig struct {
	Pairs      []MatchPair `json:"pairs"`
	WinMessage string      `json:"winMessage,omitempty"`
}

// QuizQuestion is one multiple-choice question.
type QuizQuestion struct {
	ID           string   `json:"id"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation,omitempty"`
}

// QuizConfig describes a sequential multiple-choice quiz. PassingScore
// defaults to ceil(0.6 × question count) when zero.
type QuizConfig struct {
	Questions    []QuizQuestion `json:"questions"`
	PassingScore int            `json:"passingScore,omitempty"`
	WinMessage   string         `json:"winMessage,omitempty"`
}

// TimelineEvent is one entry to place in chronological order. Order is
// 1-based: the event belongs at position Order-1.
type TimelineEvent struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Order       int    `json:"order"`
}

// TimelineConfig describes a drag-to-reorder sequencing game.
type TimelineConfig struct {
	Events     []TimelineEvent `json:"events"`
	WinMessage string          `json:"winMessage,omitempty"`
}

// WhackConfig describes the timed reflex tapping game. DurationSeconds
// defaults to 30 when zero.
type WhackConfig struct {
	TargetImage      string   `json:"targetImage"`
	TargetLabel      string   `json:"targetLabel"`
	DistractorImages []string `json:"distractorImages"`
	DistractorLabels []string `json:"distractorLabels"`
	BackgroundImage  string   `json:"backgroundImage,omitempty"`
	DurationSeconds  int      `json:"duration"`
	WinMessage       string   `json:"winMessage,omitempty"`
}
