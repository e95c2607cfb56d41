package engine_test

import (
	"math/rand"
	"testing"

	"edugames-service/internal/domain"
	"edugames-service/internal/engine"

	"github.com/stretchr/testify/require"
)

type recordingAudio struct {
	cues    []engine.SoundCue
	playing bool
	started int
	stopped int
}

func (r *recordingAudio) PlayCue(cue engine.SoundCue) { r.cues = append(r.cues, cue) }

func (r *recordingAudio) StartMusic(string) {
	r.playing = true
	r.started++
}

func (r *recordingAudio) StopMusic() {
	r.playing = false
	r.stopped++
}

func TestQuizPlaysFeedbackCues(t *testing.T) {
	audio := &recordingAudio{}
	quiz, err := engine.NewQuiz(&domain.QuizConfig{
		Questions: []domain.QuizQuestion{
			{Question: "1+1?", Options: []string{"2", "3"}, CorrectIndex: 0},
			{Question: "2+2?", Options: []string{"3", "4"}, CorrectIndex: 1},
		},
	}, engine.Options{
		Rand:         rand.New(rand.NewSource(1)),
		Scheduler:    engine.NewManualScheduler(),
		Audio:        audio,
		SoundEffects: true,
	})
	require.NoError(t, err)
	defer quiz.Close()
	quiz.Start()

	quiz.Answer(0) // correct
	quiz.Advance()
	quiz.Answer(0) // wrong
	require.Equal(t, []engine.SoundCue{engine.CueCorrect, engine.CueError}, audio.cues)
}

func TestMusicFollowsSessionLifecycle(t *testing.T) {
	audio := &recordingAudio{}
	quiz, err := engine.NewQuiz(&domain.QuizConfig{
		Questions: []domain.QuizQuestion{
			{Question: "1+1?", Options: []string{"2", "3"}, CorrectIndex: 0},
		},
	}, engine.Options{
		Rand:               rand.New(rand.NewSource(1)),
		Scheduler:          engine.NewManualScheduler(),
		Audio:              audio,
		SoundEffects:       true,
		BackgroundMusicURL: "/assets/music/playtime.mp3",
	})
	require.NoError(t, err)
	defer quiz.Close()

	quiz.Start()
	require.True(t, audio.playing)

	quiz.Answer(0)
	quiz.Advance()
	require.False(t, audio.playing, "music should stop on completion")
	require.Equal(t, 1, audio.stopped)

	quiz.Reset()
	require.True(t, audio.playing, "play again restarts the music")
}

func TestSoundEffectsOffSilencesCues(t *testing.T) {
	audio := &recordingAudio{}
	quiz, err := engine.NewQuiz(&domain.QuizConfig{
		Questions: []domain.QuizQuestion{
			{Question: "1+1?", Options: []string{"2", "3"}, CorrectIndex: 0},
		},
	}, engine.Options{
		Rand:      rand.New(rand.NewSource(1)),
		Scheduler: engine.NewManualScheduler(),
		Audio:     audio,
		// SoundEffects left false: the engine must stay silent.
	})
	require.NoError(t, err)
	defer quiz.Close()
	quiz.Start()

	quiz.Answer(0)
	require.Empty(t, audio.cues)
}
