package player

import (
	"context"
	"time"

	"Aria/track"
)

// EndReason explains why a track stopped playing.
type EndReason int

const (
	// ReasonFinished means the track played to its natural end.
	ReasonFinished EndReason = iota
	// ReasonStopped means playback was stopped on request (skip, stop, deskip).
	ReasonStopped
	// ReasonReplaced means the track was displaced by another play call.
	ReasonReplaced
)

// EventType tags a backend lifecycle event.
type EventType int

const (
	// EventTrackStarted fires once a track is audibly playing.
	EventTrackStarted EventType = iota
	// EventTrackEnded fires exactly once per started track.
	EventTrackEnded
)

// Event is one track-lifecycle notification from the audio backend.
type Event struct {
	Type   EventType
	Track  track.Track
	Reason EndReason
}

// Backend is the audio transport a session delegates playback to. Stop always
// yields exactly one ended event for the active track; Play returns once
// streaming has been handed off, never blocking on event delivery.
type Backend interface {
	Play(t track.Track) error
	Stop() error
	Seek(position time.Duration) error
	Position() time.Duration
	Events() <-chan Event
	Close()
}

// Resolver turns a user request (URL, playlist URL or search text) into an
// ordered batch of tracks. playlistTitle is empty unless the request resolved
// to a playlist. An empty result is reported as ErrNotFound.
type Resolver interface {
	Resolve(ctx context.Context, request string) (tracks []track.Track, playlistTitle string, err error)
}
