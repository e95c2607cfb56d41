package engine

import "edugames-service/internal/domain"

// Timeline is the drag-to-reorder sequencing game. Events are dealt in a
// random order; the player rearranges them and submits a check. Only a
// fully-correct submission completes the session, so interim percentages
// never reach the host.
type Timeline struct {
	session
	cfg      domain.TimelineConfig
	events   []domain.TimelineEvent // current display order
	attempts int
	// lastCorrect/lastChecked hold the most recent interim result for
	// display between attempts.
	lastCorrect int
	lastChecked bool
}

// TimelineSnapshot is the render-ready view of a timeline session. Event
// Order values are withheld so clients cannot read the answer.
type TimelineSnapshot struct {
	State       string          `json:"state"`
	Events      []TimelineEntry `json:"events"`
	Attempts    int             `json:"attempts"`
	LastChecked bool            `json:"lastChecked"`
	LastCorrect int             `json:"lastCorrect"`
	Total       int             `json:"total"`
	Elapsed     int             `json:"elapsed"`
	FinalScore  int             `json:"finalScore,omitempty"`
}

// TimelineEntry is one event as shown to the player.
type TimelineEntry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// NewTimeline validates content and deals the events in shuffled order.
func NewTimeline(cfg *domain.TimelineConfig, opts Options) (*Timeline, error) {
	if cfg == nil {
		return nil, domain.ErrInvalidConfig
	}
	if len(cfg.Events) == 0 {
		return nil, domain.ErrNoContent
	}
	t := &Timeline{
		session: newSession(opts),
		cfg:     *cfg,
	}
	t.deal()
	return t, nil
}

func (t *Timeline) deal() {
	events := make([]domain.TimelineEvent, len(t.cfg.Events))
	copy(events, t.cfg.Events)
	Shuffle(t.rnd, events)
	t.events = events
	t.lastChecked = false
	t.lastCorrect = 0
}

// Start begins the session and the clock.
func (t *Timeline) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.begin()
}

// Move takes the event at position from and re-inserts it at position to,
// shifting the others — the drag-and-drop reorder.
func (t *Timeline) Move(from, to int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StatePlaying {
		return
	}
	n := len(t.events)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return
	}
	ev := t.events[from]
	t.events = append(t.events[:from], t.events[from+1:]...)
	rest := append([]domain.TimelineEvent{ev}, t.events[to:]...)
	t.events = append(t.events[:to], rest...)
	t.audio.PlayCue(CueMove)
}

// Check evaluates the submitted order and counts one attempt. A fully
// correct board completes the session; otherwise it is released for
// another attempt and the interim result is returned for display only.
func (t *Timeline) Check() (correct, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	total = len(t.events)
	if t.state != StatePlaying {
		return t.lastCorrect, total
	}
	t.attempts++
	for pos, ev := range t.events {
		if ev.Order == pos+1 {
			correct++
		}
	}
	t.lastCorrect = correct
	t.lastChecked = true
	if correct == total {
		t.audio.PlayCue(CueCorrect)
		t.complete(TimelineScore(t.attempts, t.elapsed))
	} else {
		t.audio.PlayCue(CueError)
	}
	return correct, total
}

// Reset reshuffles the events and rearms the session.
func (t *Timeline) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deal()
	t.attempts = 0
	t.rearm()
}

// Close tears the session down without reporting a score.
func (t *Timeline) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.shutdown()
}

// Attempts reports how many checks have been submitted this session.
func (t *Timeline) Attempts() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.attempts
}

// Snapshot returns the current board order.
func (t *Timeline) Snapshot() any {
	t.mu.Lock()
	defer t.mu.Unlock()
	entries := make([]TimelineEntry, len(t.events))
	for i, ev := range t.events {
		entries[i] = TimelineEntry{ID: ev.ID, Title: ev.Title, Description: ev.Description, Image: ev.Image}
	}
	snap := TimelineSnapshot{
		State:       t.state.String(),
		Events:      entries,
		Attempts:    t.attempts,
		LastChecked: t.lastChecked,
		LastCorrect: t.lastCorrect,
		Total:       len(t.events),
		Elapsed:     t.elapsed,
	}
	if t.state == StateCompleted {
		snap.FinalScore = t.finalScore
	}
	return snap
}
