package engine

import "edugames-service/internal/domain"

// Engine is what every game session exposes to its host. Game-specific
// input methods live on the concrete types; hosts that need uniform input
// dispatch go through Apply.
type Engine interface {
	// Start transitions Idle -> Playing and acquires the session clock.
	Start()
	// Reset is "play again": raw metrics and elapsed time return to their
	// initial values and the session re-enters Playing.
	Reset()
	// Close releases every timer without firing the completion callback.
	Close()
	// Apply dispatches one player input event; unrecognized or ill-timed
	// input is silently ignored.
	Apply(in Input)
	State() State
	Elapsed() int
	FinalScore() (int, bool)
	Snapshot() any
}

// Input is a uniform player input event for transport layers. Action
// selects the game-specific operation; the remaining fields carry its
// arguments.
type Input struct {
	Action string `json:"action"`
	Index  int    `json:"index,omitempty"`  // puzzle select, match flip, whack tap
	From   int    `json:"from,omitempty"`   // timeline move
	To     int    `json:"to,omitempty"`     // timeline move
	Option int    `json:"option,omitempty"` // quiz answer
}

// Input action names.
const (
	ActionSelect  = "select"
	ActionFlip    = "flip"
	ActionAnswer  = "answer"
	ActionAdvance = "advance"
	ActionMove    = "move"
	ActionCheck   = "check"
	ActionTap     = "tap"
)

// New builds the engine for the config's tagged variant. Construction
// fails with domain.ErrNoContent for empty content and the session never
// enters Playing.
func New(cfg domain.GameConfig, opts Options) (Engine, error) {
	switch cfg.Type {
	case domain.GamePuzzle:
		return NewPuzzle(cfg.Puzzle, opts)
	case domain.GameMatch:
		return NewMatch(cfg.Match, opts)
	case domain.GameQuiz:
		return NewQuiz(cfg.Quiz, opts)
	case domain.GameTimeline:
		return NewTimeline(cfg.Timeline, opts)
	case domain.GameWhack:
		return NewWhack(cfg.Whack, opts)
	default:
		return nil, domain.ErrUnknownGameType
	}
}

func (p *Puzzle) Apply(in Input) {
	if in.Action == ActionSelect {
		p.Select(in.Index)
	}
}

func (m *Match) Apply(in Input) {
	if in.Action == ActionFlip {
		m.Flip(in.Index)
	}
}

func (q *Quiz) Apply(in Input) {
	switch in.Action {
	case ActionAnswer:
		q.Answer(in.Option)
	case ActionAdvance:
		q.Advance()
	}
}

func (t *Timeline) Apply(in Input) {
	switch in.Action {
	case ActionMove:
		t.Move(in.From, in.To)
	case ActionCheck:
		t.Check()
	}
}

func (w *Whack) Apply(in Input) {
	if in.Action == ActionTap {
		w.Tap(in.Index)
	}
}
