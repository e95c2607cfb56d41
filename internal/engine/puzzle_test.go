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

func newTestPuzzle(t *testing.T, spy *completionSpy, timing *engine.Timing) (*engine.Puzzle, *engine.ManualScheduler) {
	t.Helper()
	sched := engine.NewManualScheduler()
	p, err := engine.NewPuzzle(&domain.PuzzleConfig{ImageURL: "img/whale.png"}, engine.Options{
		Rand:      rand.New(rand.NewSource(42)),
		Scheduler: sched,
		Callbacks: spy.callbacks(),
		Timing:    timing,
	})
	require.NoError(t, err)
	return p, sched
}

// solvePuzzle sorts the board with click-click swaps: for each slot, find
// the slot holding its home piece and swap the two.
func solvePuzzle(p *engine.Puzzle) {
	snap := p.Snapshot().(engine.PuzzleSnapshot)
	positions := snap.Positions
	for slot := 0; slot < len(positions); slot++ {
		if positions[slot] == slot {
			continue
		}
		other := -1
		for j := slot + 1; j < len(positions); j++ {
			if positions[j] == slot {
				other = j
				break
			}
		}
		p.Select(slot)
		p.Select(other)
		positions[slot], positions[other] = positions[other], positions[slot]
	}
}

func TestPuzzleRequiresImage(t *testing.T) {
	_, err := engine.NewPuzzle(&domain.PuzzleConfig{}, engine.Options{})
	require.ErrorIs(t, err, domain.ErrNoContent)
}

func TestPuzzleInitialBoardIsPermutation(t *testing.T) {
	p, _ := newTestPuzzle(t, &completionSpy{}, nil)
	snap := p.Snapshot().(engine.PuzzleSnapshot)

	require.Equal(t, 3, snap.GridSize, "grid size defaults to 3")
	require.Len(t, snap.Positions, 9)
	seen := make([]bool, 9)
	for _, piece := range snap.Positions {
		require.False(t, seen[piece])
		seen[piece] = true
	}
}

func TestPuzzleSolveCompletesAfterCelebration(t *testing.T) {
	spy := &completionSpy{}
	timing := engine.Timing{ClockInterval: time.Second, Celebration: 3 * time.Second}
	p, sched := newTestPuzzle(t, spy, &timing)

	p.Start()
	sched.Advance(10 * time.Second)
	solvePuzzle(p)

	require.Equal(t, engine.StateChecking, p.State(), "celebration holds the board")
	assert.Empty(t, spy.scores)

	// Input during the celebration window is ignored.
	movesBefore := p.Moves()
	p.Select(0)
	p.Select(1)
	assert.Equal(t, movesBefore, p.Moves())

	sched.Advance(3 * time.Second)
	require.Equal(t, engine.StateCompleted, p.State())
	require.Len(t, spy.scores, 1)
	assert.Equal(t, engine.PuzzleScore(movesBefore, 9, 10), spy.scores[0])
}

func TestPuzzleCelebrationTimeIsNotPenalized(t *testing.T) {
	spy := &completionSpy{}
	timing := engine.Timing{ClockInterval: time.Second, Celebration: 40 * time.Second}
	p, sched := newTestPuzzle(t, spy, &timing)

	p.Start()
	solvePuzzle(p)
	moves := p.Moves()
	sched.Advance(40 * time.Second)

	require.Len(t, spy.scores, 1)
	assert.Equal(t, engine.PuzzleScore(moves, 9, 0), spy.scores[0],
		"score reflects the moment the board was solved")
	assert.Equal(t, 0, p.Elapsed())
}

func TestPuzzleZeroCelebrationCompletesImmediately(t *testing.T) {
	spy := &completionSpy{}
	timing := engine.Timing{ClockInterval: time.Second}
	p, _ := newTestPuzzle(t, spy, &timing)

	p.Start()
	solvePuzzle(p)
	require.Equal(t, engine.StateCompleted, p.State())
	require.Len(t, spy.scores, 1)
}

func TestPuzzleDeselect(t *testing.T) {
	timing := engine.Timing{ClockInterval: time.Second}
	p, _ := newTestPuzzle(t, &completionSpy{}, &timing)
	p.Start()

	p.Select(4)
	snap := p.Snapshot().(engine.PuzzleSnapshot)
	require.Equal(t, 4, snap.Selected)

	p.Select(4)
	snap = p.Snapshot().(engine.PuzzleSnapshot)
	require.Equal(t, -1, snap.Selected)
	assert.Equal(t, 0, p.Moves(), "deselect is not a move")
}

func TestPuzzleResetReshufflesAndRearms(t *testing.T) {
	spy := &completionSpy{}
	timing := engine.Timing{ClockInterval: time.Second}
	p, sched := newTestPuzzle(t, spy, &timing)

	p.Start()
	sched.Advance(7 * time.Second)
	solvePuzzle(p)
	require.Len(t, spy.scores, 1)

	p.Reset()
	assert.Equal(t, engine.StatePlaying, p.State())
	assert.Equal(t, 0, p.Elapsed())
	assert.Equal(t, 0, p.Moves())

	solvePuzzle(p)
	require.Len(t, spy.scores, 2, "a reset session completes again")
}

func TestPuzzleCloseDuringCelebrationDoesNotComplete(t *testing.T) {
	spy := &completionSpy{}
	timing := engine.Timing{ClockInterval: time.Second, Celebration: 3 * time.Second}
	p, sched := newTestPuzzle(t, spy, &timing)

	p.Start()
	solvePuzzle(p)
	require.Equal(t, engine.StateChecking, p.State())

	p.Close()
	sched.Advance(5 * time.Second)
	assert.Empty(t, spy.scores)
}
