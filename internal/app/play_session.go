package app

import (
	"sync"

	"edugames-service/internal/domain"
	"edugames-service/internal/engine"

	"github.com/google/uuid"
)

// EventType labels one outward notification from a play session.
type EventType string

const (
	// EventTime carries a positive elapsed-seconds delta.
	EventTime EventType = "time"
	// EventCompleted carries the final score; sent exactly once.
	EventCompleted EventType = "completed"
)

// Event is one engine-to-host notification.
type Event struct {
	Type  EventType `json:"type"`
	Delta int       `json:"delta,omitempty"`
	Score int       `json:"score,omitempty"`
}

// PlaySession binds one engine instance to one player for the lifetime of
// a play-through. Engine callbacks are fanned out on the Events channel;
// slow consumers drop the oldest update rather than block the engine.
type PlaySession struct {
	ID     string
	UserID string
	Game   domain.Game

	engine engine.Engine

	mu     sync.Mutex
	events chan Event
	closed bool
}

// NewPlaySession is exported for infrastructure layers and tests that need
// to seed sessions directly.
func NewPlaySession(game domain.Game, userID string, sched engine.Scheduler) (*PlaySession, error) {
	return newPlaySession(game, userID, sched)
}

func newPlaySession(game domain.Game, userID string, sched engine.Scheduler) (*PlaySession, error) {
	session := &PlaySession{
		ID:     uuid.NewString(),
		UserID: userID,
		Game:   game,
		events: make(chan Event, 16),
	}
	eng, err := engine.New(game.Config, engine.Options{
		Scheduler:    sched,
		PointsReward: game.PointsReward,
		Callbacks: engine.Callbacks{
			OnComplete:   func(score int) { session.emit(Event{Type: EventCompleted, Score: score}) },
			OnTimeUpdate: func(delta int) { session.emit(Event{Type: EventTime, Delta: delta}) },
		},
	})
	if err != nil {
		return nil, err
	}
	session.engine = eng
	return session, nil
}

// Start begins play.
func (s *PlaySession) Start() { s.engine.Start() }

// Apply dispatches one player input to the engine.
func (s *PlaySession) Apply(in engine.Input) { s.engine.Apply(in) }

// Reset is "play again".
func (s *PlaySession) Reset() { s.engine.Reset() }

// Snapshot returns the engine's render-ready view.
func (s *PlaySession) Snapshot() any { return s.engine.Snapshot() }

// FinalScore returns the latched score once the session completed.
func (s *PlaySession) FinalScore() (int, bool) { return s.engine.FinalScore() }

// State reports the engine lifecycle state.
func (s *PlaySession) State() engine.State { return s.engine.State() }

// Events is the outward notification stream. It is closed by Close.
func (s *PlaySession) Events() <-chan Event { return s.events }

// Close releases every engine timer without firing completion, then closes
// the event stream. Safe to call more than once.
func (s *PlaySession) Close() {
	s.engine.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
}

func (s *PlaySession) emit(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- ev:
	default:
		// Drop the oldest update so the engine never blocks on a slow
		// consumer.
		select {
		case <-s.events:
		default:
		}
		s.events <- ev
	}
}
