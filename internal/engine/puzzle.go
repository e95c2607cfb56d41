package engine

import "edugames-service/internal/domain"

// Puzzle is the grid-swap picture puzzle. Pieces sit on gridSize² slots;
// selecting two slots swaps their pieces. The board is solved when every
// slot holds the piece whose home it is.
type Puzzle struct {
	session
	cfg      domain.PuzzleConfig
	gridSize int
	// positions[slot] = index of the piece currently in that slot. The
	// solved board is the identity permutation.
	positions []int
	selected  int // slot awaiting its swap partner, -1 when none
	moves     int

	cancelCelebration CancelFunc
}

// PuzzleSnapshot is the render-ready view of a puzzle session.
type PuzzleSnapshot struct {
	State      string `json:"state"`
	GridSize   int    `json:"gridSize"`
	ImageURL   string `json:"imageUrl"`
	HintText   string `json:"hintText,omitempty"`
	Positions  []int  `json:"positions"`
	Selected   int    `json:"selected"`
	Moves      int    `json:"moves"`
	Elapsed    int    `json:"elapsed"`
	FinalScore int    `json:"finalScore,omitempty"`
}

// NewPuzzle validates the config and builds a shuffled board in Idle state.
func NewPuzzle(cfg *domain.PuzzleConfig, opts Options) (*Puzzle, error) {
	if cfg == nil {
		return nil, domain.ErrInvalidConfig
	}
	if cfg.ImageURL == "" {
		return nil, domain.ErrNoContent
	}
	size := cfg.GridSize
	if size <= 0 {
		size = 3
	}
	p := &Puzzle{
		session:  newSession(opts),
		cfg:      *cfg,
		gridSize: size,
		selected: -1,
	}
	p.positions = ShuffledIndexes(p.rnd, size*size)
	return p, nil
}

// Start begins the session and the clock.
func (p *Puzzle) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.begin()
}

// Select handles the click-click swap pattern. The first selection marks a
// slot; the second swaps the two pieces and counts one move. Selecting the
// marked slot again clears the mark. Input outside Playing is ignored.
func (p *Puzzle) Select(slot int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StatePlaying || slot < 0 || slot >= len(p.positions) {
		return
	}
	switch {
	case p.selected == -1:
		p.selected = slot
		p.audio.PlayCue(CueClick)
	case p.selected == slot:
		p.selected = -1
		p.audio.PlayCue(CueClick)
	default:
		p.positions[p.selected], p.positions[slot] = p.positions[slot], p.positions[p.selected]
		p.selected = -1
		p.moves++
		p.audio.PlayCue(CueMove)
		if p.solvedLocked() {
			p.winLocked()
		}
	}
}

func (p *Puzzle) solvedLocked() bool {
	for slot, piece := range p.positions {
		if slot != piece {
			return false
		}
	}
	return true
}

// winLocked freezes the board for the celebration window, then completes.
// The score reflects the moment the board was solved; celebration time is
// not penalized.
func (p *Puzzle) winLocked() {
	p.state = StateChecking
	p.stopClockLocked()
	p.audio.PlayCue(CueCorrect)
	score := PuzzleScore(p.moves, len(p.positions), p.elapsed)
	if p.timing.Celebration <= 0 {
		p.complete(score)
		return
	}
	p.cancelCelebration = p.sched.After(p.timing.Celebration, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.state != StateChecking {
			return
		}
		p.complete(score)
	})
}

// Reset reshuffles the board and rearms the session for another round.
func (p *Puzzle) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelTimersLocked()
	p.positions = ShuffledIndexes(p.rnd, p.gridSize*p.gridSize)
	p.selected = -1
	p.moves = 0
	p.rearm()
}

// Close tears the session down without reporting a score.
func (p *Puzzle) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelTimersLocked()
	p.shutdown()
}

func (p *Puzzle) cancelTimersLocked() {
	if p.cancelCelebration != nil {
		p.cancelCelebration()
		p.cancelCelebration = nil
	}
}

// Moves reports how many swaps have been made this session.
func (p *Puzzle) Moves() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.moves
}

// Snapshot returns the current view of the board.
func (p *Puzzle) Snapshot() any {
	p.mu.Lock()
	defer p.mu.Unlock()
	positions := make([]int, len(p.positions))
	copy(positions, p.positions)
	snap := PuzzleSnapshot{
		State:     p.state.String(),
		GridSize:  p.gridSize,
		ImageURL:  p.cfg.ImageURL,
		HintText:  p.cfg.HintText,
		Positions: positions,
		Selected:  p.selected,
		Moves:     p.moves,
		Elapsed:   p.elapsed,
	}
	if p.state == StateCompleted {
		snap.FinalScore = p.finalScore
	}
	return snap
}
