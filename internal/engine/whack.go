package engine

import "edugames-service/internal/domain"

const whackCells = 9 // fixed 3×3 grid

// targetChance is the probability a spawn is the target rather than a
// distractor.
const targetChance = 0.65

// Mole is one live entity on the whack grid.
type Mole struct {
	ID     int64  `json:"id"`
	Cell   int    `json:"cell"`
	Target bool   `json:"target"`
	Image  string `json:"image"`
	Label  string `json:"label"`

	cancelDespawn CancelFunc
}

// Whack is the timed reflex game. A recurring spawner places at most one
// mole per cell, each removed after a fixed lifetime if untapped. The
// session ends unconditionally when the countdown reaches the configured
// duration; no player action finishes it early.
//
// Two tallies coexist on purpose: the live Points display (+10 per hit,
// −5 per miss, floored at zero) and the accuracy-based final score that is
// actually reported outward.
type Whack struct {
	session
	cfg      domain.WhackConfig
	duration int
	grid     [whackCells]*Mole
	hits     int
	misses   int
	points   int
	nextID   int64

	stopSpawner CancelFunc
}

// WhackSnapshot is the render-ready view of a whack session.
type WhackSnapshot struct {
	State      string  `json:"state"`
	Moles      []*Mole `json:"moles"`
	Hits       int     `json:"hits"`
	Misses     int     `json:"misses"`
	Points     int     `json:"points"`
	Remaining  int     `json:"remaining"`
	Duration   int     `json:"duration"`
	Elapsed    int     `json:"elapsed"`
	FinalScore int     `json:"finalScore,omitempty"`
}

// NewWhack validates the config and builds the game in Idle state.
func NewWhack(cfg *domain.WhackConfig, opts Options) (*Whack, error) {
	if cfg == nil {
		return nil, domain.ErrInvalidConfig
	}
	if cfg.TargetImage == "" {
		return nil, domain.ErrNoContent
	}
	duration := cfg.DurationSeconds
	if duration <= 0 {
		duration = 30
	}
	w := &Whack{
		session:  newSession(opts),
		cfg:      *cfg,
		duration: duration,
	}
	w.onTick = w.countdownLocked
	return w, nil
}

// Start begins the session, the clock countdown and the spawner.
func (w *Whack) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateIdle {
		return
	}
	w.begin()
	w.stopSpawner = w.sched.Every(w.timing.WhackSpawn, w.spawn)
}

// countdownLocked runs on every clock tick with mu held.
func (w *Whack) countdownLocked() {
	if w.elapsed >= w.duration {
		w.finishLocked()
	}
}

// finishLocked ends the round: all timers released, board cleared, score
// reported. The hit/miss counters already reflect every tap processed
// before time ran out.
func (w *Whack) finishLocked() {
	w.releaseTimersLocked()
	w.complete(WhackScore(w.hits, w.misses))
}

// spawn runs off the spawner schedule. It picks a random cell and replaces
// whatever lives there, then arms the new mole's despawn timer.
func (w *Whack) spawn() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StatePlaying {
		return
	}
	cell := w.rnd.Intn(whackCells)
	if old := w.grid[cell]; old != nil {
		old.cancelDespawn()
	}

	w.nextID++
	mole := &Mole{ID: w.nextID, Cell: cell}
	if len(w.cfg.DistractorImages) == 0 || w.rnd.Float64() < targetChance {
		mole.Target = true
		mole.Image = w.cfg.TargetImage
		mole.Label = w.cfg.TargetLabel
	} else {
		i := w.rnd.Intn(len(w.cfg.DistractorImages))
		mole.Image = w.cfg.DistractorImages[i]
		if i < len(w.cfg.DistractorLabels) {
			mole.Label = w.cfg.DistractorLabels[i]
		}
	}
	id := mole.ID
	mole.cancelDespawn = w.sched.After(w.timing.WhackMoleLife, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if m := w.grid[cell]; m != nil && m.ID == id {
			w.grid[cell] = nil
		}
	})
	w.grid[cell] = mole
}

// Tap handles a tap on a cell. Hitting a target or a distractor updates
// both tallies; tapping an empty cell is ignored.
func (w *Whack) Tap(cell int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StatePlaying || cell < 0 || cell >= whackCells {
		return
	}
	mole := w.grid[cell]
	if mole == nil {
		return
	}
	mole.cancelDespawn()
	w.grid[cell] = nil
	if mole.Target {
		w.hits++
		w.points += 10
		w.audio.PlayCue(CueCorrect)
	} else {
		w.misses++
		w.points -= 5
		if w.points < 0 {
			w.points = 0
		}
		w.audio.PlayCue(CueError)
	}
}

// Reset clears the board and counters and rearms the session, spawner
// included.
func (w *Whack) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.releaseTimersLocked()
	w.hits = 0
	w.misses = 0
	w.points = 0
	w.rearm()
	w.stopSpawner = w.sched.Every(w.timing.WhackSpawn, w.spawn)
}

// Close tears the session down without reporting a score.
func (w *Whack) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.releaseTimersLocked()
	w.shutdown()
}

func (w *Whack) releaseTimersLocked() {
	if w.stopSpawner != nil {
		w.stopSpawner()
		w.stopSpawner = nil
	}
	for i, mole := range w.grid {
		if mole != nil {
			mole.cancelDespawn()
			w.grid[i] = nil
		}
	}
}

// Hits, Misses and Points expose the raw tallies for display.
func (w *Whack) Hits() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.hits
}

func (w *Whack) Misses() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.misses
}

func (w *Whack) Points() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.points
}

// Snapshot returns the live board.
func (w *Whack) Snapshot() any {
	w.mu.Lock()
	defer w.mu.Unlock()
	moles := make([]*Mole, 0, whackCells)
	for _, mole := range w.grid {
		if mole != nil {
			m := *mole
			m.cancelDespawn = nil
			moles = append(moles, &m)
		}
	}
	remaining := w.duration - w.elapsed
	if remaining < 0 {
		remaining = 0
	}
	snap := WhackSnapshot{
		State:     w.state.String(),
		Moles:     moles,
		Hits:      w.hits,
		Misses:    w.misses,
		Points:    w.points,
		Remaining: remaining,
		Duration:  w.duration,
		Elapsed:   w.elapsed,
	}
	if w.state == StateCompleted {
		snap.FinalScore = w.finalScore
	}
	return snap
}
