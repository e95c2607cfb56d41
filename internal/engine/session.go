package engine

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

// State is the shared session lifecycle. Checking is a transient sub-state
// used by engines that must evaluate a just-made move before accepting new
// input; Completed is terminal until Reset.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StateChecking
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StateChecking:
		return "checking"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Callbacks is the engine-to-host contract. OnComplete fires exactly once
// per session with the final 0-100 score. OnTimeUpdate carries a positive
// delta in seconds, not a running total.
//
// Callbacks are invoked with the session lock held; they must not call back
// into the engine.
type Callbacks struct {
	OnComplete   func(score int)
	OnTimeUpdate func(deltaSeconds int)
}

// Timing groups the timer intervals engines acquire. Zero durations for the
// delay fields make the corresponding step immediate, which is how tests
// and headless hosts run without a visual layer.
type Timing struct {
	ClockInterval time.Duration // session clock tick, 1s
	Celebration   time.Duration // puzzle win acknowledgment before Completed
	MatchConfirm  time.Duration // delay before a matched pair locks in
	MatchFlipBack time.Duration // delay before a failed pair flips back
	WhackSpawn    time.Duration // mole spawn interval
	WhackMoleLife time.Duration // untapped mole lifetime
}

// DefaultTiming returns the production intervals.
func DefaultTiming() Timing {
	return Timing{
		ClockInterval: time.Second,
		Celebration:   3 * time.Second,
		MatchConfirm:  600 * time.Millisecond,
		MatchFlipBack: 1200 * time.Millisecond,
		WhackSpawn:    1400 * time.Millisecond,
		WhackMoleLife: 2200 * time.Millisecond,
	}
}

// Options configures an engine. Zero-value fields fall back to production
// defaults (time-seeded rand, wall-clock scheduler, silent audio).
type Options struct {
	Rand      *rand.Rand
	Scheduler Scheduler
	Audio     AudioPort
	Callbacks Callbacks
	Timing    *Timing

	BackgroundMusicURL string
	SoundEffects       bool
	PointsReward       int // display-only "up to N points"; never enters score math
}

func (o Options) normalized() Options {
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.Scheduler == nil {
		o.Scheduler = NewScheduler()
	}
	if o.Audio == nil || !o.SoundEffects {
		o.Audio = NopAudio{}
	}
	if o.Timing == nil {
		t := DefaultTiming()
		o.Timing = &t
	}
	// The two recurring schedules must have positive intervals; the
	// one-shot delays may be zero to run immediately.
	if o.Timing.ClockInterval <= 0 || o.Timing.WhackSpawn <= 0 {
		t := *o.Timing
		if t.ClockInterval <= 0 {
			t.ClockInterval = time.Second
		}
		if t.WhackSpawn <= 0 {
			t.WhackSpawn = DefaultTiming().WhackSpawn
		}
		o.Timing = &t
	}
	return o
}

// gate is the completion latch: Fire reports true for exactly one caller
// per armed cycle, no matter how often the win condition is re-evaluated.
type gate struct {
	fired atomic.Bool
}

func (g *gate) fire() bool { return g.fired.CompareAndSwap(false, true) }
func (g *gate) reset()     { g.fired.Store(false) }

// session carries the lifecycle shared by all five engines: state, elapsed
// time, the 1 Hz clock and the completion gate. Engines embed it and call
// its helpers with mu held.
type session struct {
	mu         sync.Mutex
	state      State
	elapsed    int
	rnd        *rand.Rand
	sched      Scheduler
	audio      AudioPort
	callbacks  Callbacks
	timing     Timing
	gate       gate
	stopClock  CancelFunc
	finalScore int

	musicURL string
	// onTick, when set, runs with mu held after each elapsed increment.
	// WhackAMole uses it for its countdown.
	onTick func()
}

func newSession(opts Options) session {
	opts = opts.normalized()
	return session{
		state:      StateIdle,
		rnd:        opts.Rand,
		sched:      opts.Scheduler,
		audio:      opts.Audio,
		callbacks:  opts.Callbacks,
		timing:     *opts.Timing,
		musicURL:   opts.BackgroundMusicURL,
		finalScore: -1,
	}
}

// begin transitions Idle -> Playing and acquires the session clock. Caller
// holds mu.
func (s *session) begin() {
	if s.state != StateIdle {
		return
	}
	s.state = StatePlaying
	s.elapsed = 0
	if s.musicURL != "" {
		s.audio.StartMusic(s.musicURL)
	}
	s.startClockLocked()
}

func (s *session) startClockLocked() {
	s.stopClockLocked()
	s.stopClock = s.sched.Every(s.timing.ClockInterval, s.tick)
}

func (s *session) stopClockLocked() {
	if s.stopClock != nil {
		s.stopClock()
		s.stopClock = nil
	}
}

// tick runs off the scheduler. A tick observed outside Playing/Checking is
// a no-op, so elapsed is frozen the instant a session completes.
func (s *session) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying && s.state != StateChecking {
		return
	}
	s.elapsed++
	if s.callbacks.OnTimeUpdate != nil {
		s.callbacks.OnTimeUpdate(1)
	}
	if s.onTick != nil {
		s.onTick()
	}
}

// complete latches the final score and fires OnComplete exactly once.
// Metric updates for the triggering input must already be applied. Caller
// holds mu.
func (s *session) complete(score int) {
	if !s.gate.fire() {
		return
	}
	s.stopClockLocked()
	s.state = StateCompleted
	s.finalScore = score
	if s.musicURL != "" {
		s.audio.StopMusic()
	}
	if s.callbacks.OnComplete != nil {
		s.callbacks.OnComplete(score)
	}
}

// rearm returns the session to a fresh Playing state for "play again".
// Caller holds mu and has already restored its own entities and metrics.
func (s *session) rearm() {
	s.gate.reset()
	s.elapsed = 0
	s.finalScore = -1
	s.state = StatePlaying
	if s.musicURL != "" {
		s.audio.StartMusic(s.musicURL)
	}
	s.startClockLocked()
}

// shutdown stops the clock without firing any callback. Caller holds mu.
func (s *session) shutdown() {
	s.stopClockLocked()
	if s.musicURL != "" {
		s.audio.StopMusic()
	}
	s.state = StateIdle
}

// State reports the current lifecycle state.
func (s *session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Elapsed reports whole seconds spent in Playing/Checking this session.
func (s *session) Elapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

// FinalScore returns the latched score and whether the session completed.
func (s *session) FinalScore() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCompleted {
		return 0, false
	}
	return s.finalScore, true
}
