package views

import "errors"

var (
	// ErrUnauthorized is returned when the actor is on the deny list.
	ErrUnauthorized = errors.New("you are not allowed to use this bot")
	// ErrWrongChannel is returned when the actor is outside the session's voice channel.
	ErrWrongChannel = errors.New("you must be in the voice channel to perform that action")
)

// Gate guards a view's interactions. Deny-list failures take precedence over
// channel-membership failures; the bot owner always passes the deny list.
type Gate struct {
	RequesterID string                   // user the view was created for
	IsOwner     func(userID string) bool // anti-lockout
	IsBanned    func(userID string) bool
	InChannel   func(userID string) bool // session voice channel membership
}

// Authorize decides whether the actor may interact with the gated view.
// The returned error text is the exact denial surfaced to the actor.
func (g *Gate) Authorize(userID string) error {
	if g.IsBanned != nil && g.IsBanned(userID) {
		if g.IsOwner == nil || !g.IsOwner(userID) {
			return ErrUnauthorized
		}
	}
	if userID == g.RequesterID {
		return nil
	}
	if g.InChannel != nil && !g.InChannel(userID) {
		return ErrWrongChannel
	}
	return nil
}
