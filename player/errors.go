package player

import "errors"

var (
	// ErrNotFound means resolution of a request yielded nothing playable.
	ErrNotFound = errors.New("no results found for that request")
	// ErrNoActiveSession means a command needs a session that does not exist.
	ErrNoActiveSession = errors.New("no active music session in this server")
	// ErrNothingPlaying means a command needs a currently playing track.
	ErrNothingPlaying = errors.New("nothing is playing right now")
	// ErrNothingToRestore means deskip was called with no pending skip history.
	ErrNothingToRestore = errors.New("nothing to restore")
)
