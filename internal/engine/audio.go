package engine

// SoundCue identifies a feedback sound the engine asks its host to play.
type SoundCue int

const (
	CueClick SoundCue = iota
	CueCorrect
	CueError
	CueMove
)

// AudioPort is the injected audio-feedback capability. Engines call it for
// cues and optional looping background music; they own none of its
// implementation and tolerate a silent one.
type AudioPort interface {
	PlayCue(cue SoundCue)
	StartMusic(url string)
	StopMusic()
}

// NopAudio ignores every cue. Used when sound effects are disabled or the
// host provides no audio layer.
type NopAudio struct{}

func (NopAudio) PlayCue(SoundCue)  {}
func (NopAudio) StartMusic(string) {}
func (NopAudio) StopMusic()        {}
