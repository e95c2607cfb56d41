package engine

// Scoring formulas. Each converts a session's raw metrics into the game's
// declared range: 10-100 for the four skill games, 0-100 for whack-a-mole.

func clamp(lo, hi, v int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PuzzleScore penalizes moves beyond one per piece and every full 15s.
func PuzzleScore(moves, pieces, elapsedSeconds int) int {
	excess := moves - pieces
	if excess < 0 {
		excess = 0
	}
	return clamp(10, 100, 100-excess*3-(elapsedSeconds/15)*2)
}

// MatchScore penalizes pair-attempts beyond two per pair and every full 20s.
func MatchScore(moves, pairs, elapsedSeconds int) int {
	excess := moves - pairs*2
	if excess < 0 {
		excess = 0
	}
	return clamp(10, 100, 100-excess*5-(elapsedSeconds/20)*2)
}

// QuizScore is the rounded percentage of correct answers.
func QuizScore(correct, total int) int {
	if total <= 0 {
		return 10
	}
	return clamp(10, 100, (correct*100+total/2)/total)
}

// TimelineScore penalizes each check attempt and every full 20s.
func TimelineScore(attempts, elapsedSeconds int) int {
	return clamp(10, 100, 100-attempts*10-(elapsedSeconds/20)*5)
}

// WhackScore is rounded tap accuracy, guarded against zero taps.
func WhackScore(hits, misses int) int {
	taps := hits + misses
	if taps < 1 {
		taps = 1
	}
	return clamp(0, 100, (hits*100+taps/2)/taps)
}

// QuizPassingScore returns the configured threshold or the default
// ceil(0.6 × total). Used only for the win/fail message.
func QuizPassingScore(configured, total int) int {
	if configured > 0 {
		return configured
	}
	return (total*6 + 9) / 10
}
