package domain

import "errors"

var (
	// ErrGameNotFound indicates the game content could not be loaded.
	ErrGameNotFound = errors.New("game not found")
	// ErrSessionNotFound is returned when a play session ID is unknown.
	ErrSessionNotFound = errors.New("play session not found")
	// ErrNoContent is returned when a game config has nothing to play
	// (zero questions, pairs, or events). The session never starts.
	ErrNoContent = errors.New("game content unavailable")
	// ErrInvalidConfig indicates a config whose variant does not match its
	// type tag or is internally inconsistent.
	ErrInvalidConfig = errors.New("invalid game config")
	// ErrUnknownGameType indicates an unrecognized game type tag.
	ErrUnknownGameType = errors.New("unknown game type")
	// ErrInvalidScore is returned for completion reports outside 0-100.
	ErrInvalidScore = errors.New("score out of range")
)
