package engine

import "edugames-service/internal/domain"

// Quiz presents questions sequentially. Each question takes exactly one
// answer, revealed immediately; advancing past the last question completes
// the session.
type Quiz struct {
	session
	cfg     domain.QuizConfig
	index   int
	answers []int // selected option per question, -1 while unanswered
	correct int
	passing int
}

// QuizSnapshot is the render-ready view of a quiz session. The correct
// index and explanation are only revealed once the question is answered.
type QuizSnapshot struct {
	State        string   `json:"state"`
	Index        int      `json:"index"`
	Total        int      `json:"total"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	Answered     bool     `json:"answered"`
	Selected     int      `json:"selected"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation,omitempty"`
	CorrectCount int      `json:"correctCount"`
	Passing      int      `json:"passing"`
	Passed       bool     `json:"passed"`
	Elapsed      int      `json:"elapsed"`
	FinalScore   int      `json:"finalScore,omitempty"`
}

// NewQuiz validates content and builds the runner in Idle state. An empty
// question list is a content error: the session must never start.
func NewQuiz(cfg *domain.QuizConfig, opts Options) (*Quiz, error) {
	if cfg == nil {
		return nil, domain.ErrInvalidConfig
	}
	if len(cfg.Questions) == 0 {
		return nil, domain.ErrNoContent
	}
	for _, q := range cfg.Questions {
		if len(q.Options) == 0 || q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return nil, domain.ErrInvalidConfig
		}
	}
	answers := make([]int, len(cfg.Questions))
	for i := range answers {
		answers[i] = -1
	}
	return &Quiz{
		session: newSession(opts),
		cfg:     *cfg,
		answers: answers,
		passing: QuizPassingScore(cfg.PassingScore, len(cfg.Questions)),
	}, nil
}

// Start begins the session and the clock.
func (q *Quiz) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.begin()
}

// Answer selects an option for the current question. Re-answering an
// already-answered question is a no-op.
func (q *Quiz) Answer(option int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.state != StatePlaying || q.index >= len(q.cfg.Questions) {
		return
	}
	question := q.cfg.Questions[q.index]
	if q.answers[q.index] != -1 || option < 0 || option >= len(question.Options) {
		return
	}
	q.answers[q.index] = option
	if option == question.CorrectIndex {
		q.correct++
		q.audio.PlayCue(CueCorrect)
	} else {
		q.audio.PlayCue(CueError)
	}
}

// Advance moves to the next question once the current one is answered.
// Advancing past the last question completes the session; the correct
// count is final before the win check runs.
func (q *Quiz) Advance() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.state != StatePlaying || q.answers[q.index] == -1 {
		return
	}
	if q.index < len(q.cfg.Questions)-1 {
		q.index++
		return
	}
	q.complete(QuizScore(q.correct, len(q.cfg.Questions)))
}

// Reset clears all answers and rearms the session.
func (q *Quiz) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.answers {
		q.answers[i] = -1
	}
	q.index = 0
	q.correct = 0
	q.rearm()
}

// Close tears the session down without reporting a score.
func (q *Quiz) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.shutdown()
}

// CorrectCount reports answers that matched so far.
func (q *Quiz) CorrectCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.correct
}

// Passed reports whether the session met the passing threshold. Only
// meaningful once Completed; used for the win/fail message, not the score.
func (q *Quiz) Passed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.correct >= q.passing
}

// Snapshot returns the current question view.
func (q *Quiz) Snapshot() any {
	q.mu.Lock()
	defer q.mu.Unlock()
	idx := q.index
	question := q.cfg.Questions[idx]
	answered := q.answers[idx] != -1
	snap := QuizSnapshot{
		State:        q.state.String(),
		Index:        idx,
		Total:        len(q.cfg.Questions),
		Question:     question.Question,
		Options:      question.Options,
		Answered:     answered,
		Selected:     q.answers[idx],
		CorrectIndex: -1,
		CorrectCount: q.correct,
		Passing:      q.passing,
		Passed:       q.correct >= q.passing,
		Elapsed:      q.elapsed,
	}
	if answered {
		snap.CorrectIndex = question.CorrectIndex
		snap.Explanation = question.Explanation
	}
	if q.state == StateCompleted {
		snap.FinalScore = q.finalScore
	}
	return snap
}
