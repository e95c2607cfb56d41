package engine

import (
	"strconv"
	"time"

	"edugames-service/internal/domain"
)

// CardRole distinguishes the two halves of a pair; a match requires one of
// each, so flipping a card's twin copy of the same half never matches.
type CardRole int

const (
	RoleFront CardRole = iota
	RoleBack
)

// Card is one face-down tile on the memory board.
type Card struct {
	ID      string   `json:"id"`
	PairID  string   `json:"pairId"`
	Content string   `json:"content"`
	Role    CardRole `json:"role"`
	FaceUp  bool     `json:"faceUp"`
	Matched bool     `json:"matched"`
}

// Match is the card-flip pair-matching game. The Checking sub-state is the
// single-flight guard: while a just-flipped pair is being evaluated, no
// third card can be flipped.
type Match struct {
	session
	cfg       domain.MatchConfig
	cards     []Card
	faceUp    []int // indexes of unmatched face-up cards, at most two
	moves     int   // pair-attempts, one per second flip
	matches   int
	pairCount int

	cancelResolve CancelFunc
}

// MatchSnapshot is the render-ready view of a memory session. Only visible
// card content is included; face-down cards carry their ID alone.
type MatchSnapshot struct {
	State      string `json:"state"`
	Cards      []Card `json:"cards"`
	Moves      int    `json:"moves"`
	Matches    int    `json:"matches"`
	Pairs      int    `json:"pairs"`
	Elapsed    int    `json:"elapsed"`
	FinalScore int    `json:"finalScore,omitempty"`
}

// NewMatch deals 2×pairs cards, shuffled, in Idle state.
func NewMatch(cfg *domain.MatchConfig, opts Options) (*Match, error) {
	if cfg == nil {
		return nil, domain.ErrInvalidConfig
	}
	if len(cfg.Pairs) == 0 {
		return nil, domain.ErrNoContent
	}
	m := &Match{
		session:   newSession(opts),
		cfg:       *cfg,
		pairCount: len(cfg.Pairs),
	}
	m.deal()
	return m, nil
}

func (m *Match) deal() {
	cards := make([]Card, 0, 2*len(m.cfg.Pairs))
	for _, pair := range m.cfg.Pairs {
		cards = append(cards,
			Card{ID: pair.ID + "-f", PairID: pair.ID, Content: pair.Front, Role: RoleFront},
			Card{ID: pair.ID + "-b", PairID: pair.ID, Content: pair.Back, Role: RoleBack},
		)
	}
	Shuffle(m.rnd, cards)
	// Re-key by board position so duplicate pair IDs stay addressable.
	for i := range cards {
		cards[i].ID = strconv.Itoa(i)
	}
	m.cards = cards
	m.faceUp = nil
}

// Start begins the session and the clock.
func (m *Match) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.begin()
}

// Flip turns the card at idx face up. Rejected while Checking, when two
// cards are already up, and for matched or already face-up cards. The
// second flip of a pair counts one move and schedules evaluation.
func (m *Match) Flip(idx int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StatePlaying || idx < 0 || idx >= len(m.cards) {
		return
	}
	card := &m.cards[idx]
	if card.Matched || card.FaceUp || len(m.faceUp) >= 2 {
		return
	}
	card.FaceUp = true
	m.faceUp = append(m.faceUp, idx)
	m.audio.PlayCue(CueClick)
	if len(m.faceUp) < 2 {
		return
	}

	m.moves++
	m.state = StateChecking
	first, second := &m.cards[m.faceUp[0]], &m.cards[m.faceUp[1]]
	if first.PairID == second.PairID && first.Role != second.Role {
		m.scheduleResolveLocked(m.timing.MatchConfirm, m.confirmPair)
	} else {
		m.scheduleResolveLocked(m.timing.MatchFlipBack, m.flipBack)
	}
}

func (m *Match) scheduleResolveLocked(d time.Duration, fn func()) {
	if d <= 0 {
		fn()
		return
	}
	m.cancelResolve = m.sched.After(d, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.state != StateChecking {
			return
		}
		fn()
	})
}

// confirmPair runs with mu held, in Checking.
func (m *Match) confirmPair() {
	for _, idx := range m.faceUp {
		m.cards[idx].Matched = true
	}
	m.faceUp = nil
	m.matches++
	m.audio.PlayCue(CueCorrect)
	if m.matches == m.pairCount {
		m.complete(MatchScore(m.moves, m.pairCount, m.elapsed))
		return
	}
	m.state = StatePlaying
}

// flipBack runs with mu held, in Checking.
func (m *Match) flipBack() {
	for _, idx := range m.faceUp {
		m.cards[idx].FaceUp = false
	}
	m.faceUp = nil
	m.audio.PlayCue(CueError)
	m.state = StatePlaying
}

// Reset redeals a fresh shuffled board and rearms the session.
func (m *Match) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelTimersLocked()
	m.deal()
	m.moves = 0
	m.matches = 0
	m.rearm()
}

// Close tears the session down without reporting a score.
func (m *Match) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelTimersLocked()
	m.shutdown()
}

func (m *Match) cancelTimersLocked() {
	if m.cancelResolve != nil {
		m.cancelResolve()
		m.cancelResolve = nil
	}
}

// Moves reports pair-attempts; Matches reports locked-in pairs.
func (m *Match) Moves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.moves
}

func (m *Match) Matches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matches
}

// Snapshot returns the current view of the board, hiding face-down content.
func (m *Match) Snapshot() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	cards := make([]Card, len(m.cards))
	for i, c := range m.cards {
		view := Card{ID: c.ID, FaceUp: c.FaceUp, Matched: c.Matched}
		if c.FaceUp || c.Matched {
			view.PairID = c.PairID
			view.Content = c.Content
			view.Role = c.Role
		}
		cards[i] = view
	}
	snap := MatchSnapshot{
		State:   m.state.String(),
		Cards:   cards,
		Moves:   m.moves,
		Matches: m.matches,
		Pairs:   m.pairCount,
		Elapsed: m.elapsed,
	}
	if m.state == StateCompleted {
		snap.FinalScore = m.finalScore
	}
	return snap
}
