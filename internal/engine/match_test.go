package engine_test

import (
	"math/rand"
	"testing"
	"time"

	"edugames-service/internal/domain"
	"edugames-service/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matchConfig(pairs int) *domain.MatchConfig {
	cfg := &domain.MatchConfig{}
	names := []string{"whale", "lion", "owl", "frog", "bear"}
	for i := 0; i < pairs; i++ {
		cfg.Pairs = append(cfg.Pairs, domain.MatchPair{
			ID:    names[i%len(names)],
			Front: names[i%len(names)] + " picture",
			Back:  names[i%len(names)] + " word",
		})
	}
	return cfg
}

func newTestMatch(t *testing.T, pairs int, spy *completionSpy, timing *engine.Timing) (*engine.Match, *engine.ManualScheduler) {
	t.Helper()
	sched := engine.NewManualScheduler()
	m, err := engine.NewMatch(matchConfig(pairs), engine.Options{
		Rand:      rand.New(rand.NewSource(11)),
		Scheduler: sched,
		Callbacks: spy.callbacks(),
		Timing:    timing,
	})
	require.NoError(t, err)
	return m, sched
}

// solveMatch clears the board by probing: flip the first unmatched card,
// then try each other card until the pair locks in. Requires zero resolve
// delays so evaluation is synchronous.
func solveMatch(t *testing.T, m *engine.Match) {
	t.Helper()
	for guard := 0; guard < 200; guard++ {
		snap := m.Snapshot().(engine.MatchSnapshot)
		if snap.Matches == snap.Pairs {
			return
		}
		first := -1
		for i, c := range snap.Cards {
			if !c.Matched {
				first = i
				break
			}
		}
		for j := first + 1; j < len(snap.Cards); j++ {
			if snap.Cards[j].Matched {
				continue
			}
			m.Flip(first)
			m.Flip(j)
			if m.Snapshot().(engine.MatchSnapshot).Cards[first].Matched {
				break
			}
		}
	}
	t.Fatal("board not solved within probe budget")
}

func TestMatchRequiresPairs(t *testing.T) {
	_, err := engine.NewMatch(&domain.MatchConfig{}, engine.Options{})
	require.ErrorIs(t, err, domain.ErrNoContent)
}

func TestMatchDealsTwoCardsPerPair(t *testing.T) {
	m, _ := newTestMatch(t, 3, &completionSpy{}, nil)
	snap := m.Snapshot().(engine.MatchSnapshot)
	require.Len(t, snap.Cards, 6)
	for _, c := range snap.Cards {
		assert.False(t, c.FaceUp)
		assert.False(t, c.Matched)
		assert.Empty(t, c.Content, "face-down content is hidden")
	}
}

func TestMatchSolveCompletesOnce(t *testing.T) {
	spy := &completionSpy{}
	timing := engine.Timing{ClockInterval: time.Second}
	m, _ := newTestMatch(t, 3, spy, &timing)

	m.Start()
	solveMatch(t, m)

	require.Equal(t, engine.StateCompleted, m.State())
	require.Len(t, spy.scores, 1)
	assert.Equal(t, engine.MatchScore(m.Moves(), 3, 0), spy.scores[0])
	assert.Equal(t, 3, m.Matches())

	// Extra input after completion changes nothing.
	m.Flip(0)
	require.Len(t, spy.scores, 1)
}

func TestMatchCheckingBlocksThirdFlip(t *testing.T) {
	timing := engine.Timing{
		ClockInterval: time.Second,
		MatchConfirm:  600 * time.Millisecond,
		MatchFlipBack: 1200 * time.Millisecond,
	}
	m, sched := newTestMatch(t, 2, &completionSpy{}, &timing)
	m.Start()

	m.Flip(0)
	m.Flip(1)
	require.Equal(t, engine.StateChecking, m.State())
	assert.Equal(t, 1, m.Moves(), "one move per pair-attempt, not per flip")

	m.Flip(2)
	snap := m.Snapshot().(engine.MatchSnapshot)
	assert.False(t, snap.Cards[2].FaceUp, "third flip rejected while checking")

	sched.Advance(2 * time.Second)
	assert.Equal(t, engine.StatePlaying, m.State())
	assert.Equal(t, 1, m.Moves())
}

func TestMatchMismatchFlipsBack(t *testing.T) {
	timing := engine.Timing{ClockInterval: time.Second}
	m, _ := newTestMatch(t, 3, &completionSpy{}, &timing)
	m.Start()

	// Probe pairs until a mismatch happens. A shuffle can get lucky and
	// pair every probe, so reshuffle via Reset a bounded number of times.
	for round := 0; round < 20; round++ {
		snap := m.Snapshot().(engine.MatchSnapshot)
		for j := 1; j < len(snap.Cards); j++ {
			if snap.Cards[0].Matched || snap.Cards[j].Matched {
				continue
			}
			m.Flip(0)
			m.Flip(j)
			after := m.Snapshot().(engine.MatchSnapshot)
			if !after.Cards[0].Matched {
				assert.False(t, after.Cards[0].FaceUp, "mismatch flips both back")
				assert.False(t, after.Cards[j].FaceUp)
				return
			}
			break // card 0 is matched; probing it further is a no-op
		}
		m.Reset()
	}
	t.Fatal("no mismatch observed across reshuffles")
}

func TestMatchIgnoresMatchedAndFaceUpCards(t *testing.T) {
	timing := engine.Timing{ClockInterval: time.Second}
	m, _ := newTestMatch(t, 2, &completionSpy{}, &timing)
	m.Start()

	m.Flip(0)
	m.Flip(0) // same card again: ignored, still a single face-up card
	snap := m.Snapshot().(engine.MatchSnapshot)
	require.True(t, snap.Cards[0].FaceUp)
	assert.Equal(t, 0, m.Moves())
}

func TestMatchResetRedeals(t *testing.T) {
	spy := &completionSpy{}
	timing := engine.Timing{ClockInterval: time.Second}
	m, sched := newTestMatch(t, 2, spy, &timing)

	m.Start()
	sched.Advance(4 * time.Second)
	solveMatch(t, m)
	require.Len(t, spy.scores, 1)

	m.Reset()
	assert.Equal(t, engine.StatePlaying, m.State())
	assert.Equal(t, 0, m.Elapsed())
	assert.Equal(t, 0, m.Moves())
	assert.Equal(t, 0, m.Matches())

	solveMatch(t, m)
	require.Len(t, spy.scores, 2)
}
