package views

import (
	"sync"
	"time"

	"github.com/Strum355/log"
	"github.com/bwmarrin/discordgo"
)

// RenderFunc builds the embed and components for a view. When disabled is
// true every interactive element must be rendered inert.
type RenderFunc func(disabled bool) (*discordgo.MessageEmbed, []discordgo.MessageComponent)

// Expiry is the shared self-disabling behaviour of interactive panels. A view
// embeds one Expiry, binds it to the messages it is shown in, and is
// guaranteed that once Expire has run no further interaction is accepted and
// every bound message shows disabled controls.
type Expiry struct {
	mu       sync.Mutex
	poster   Poster
	render   RenderFunc
	messages []MessageRef
	timer    *time.Timer
	disabled bool
	owner    *Set
}

// NewExpiry creates the expiry helper. A zero timeout means no auto-expiry.
// If owner is non-nil the view registers itself into it and deregisters
// exactly once upon expiry.
func NewExpiry(poster Poster, render RenderFunc, timeout time.Duration, owner *Set) *Expiry {
	e := &Expiry{
		poster: poster,
		render: render,
		owner:  owner,
	}
	if owner != nil {
		owner.add(e)
	}
	if timeout > 0 {
		e.timer = time.AfterFunc(timeout, e.Expire)
	}
	return e
}

// PostTo posts the view to a channel and binds the resulting message.
func (e *Expiry) PostTo(channelID string) (MessageRef, error) {
	e.mu.Lock()
	if e.disabled {
		e.mu.Unlock()
		return MessageRef{}, nil
	}
	embed, components := e.render(false)
	e.mu.Unlock()

	ref, err := e.poster.Post(channelID, embed, components)
	if err != nil {
		return MessageRef{}, err
	}
	e.Bind(ref)
	return ref, nil
}

// Bind attaches an already-posted message to the view. A view may be shown
// in more than one place.
func (e *Expiry) Bind(ref MessageRef) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.messages = append(e.messages, ref)
}

// Refresh pushes the current render to every bound message.
func (e *Expiry) Refresh() {
	e.mu.Lock()
	if e.disabled {
		e.mu.Unlock()
		return
	}
	embed, components := e.render(false)
	messages := append([]MessageRef{}, e.messages...)
	e.mu.Unlock()

	for _, ref := range messages {
		if err := e.poster.Edit(ref, embed, components); err != nil {
			log.WithError(err).Error("Failed to refresh view message")
		}
	}
}

// Render returns the view's current embed and components, for callers that
// post the view through their own reply primitive before binding the result.
func (e *Expiry) Render() (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.render(e.disabled)
}

// Disabled reports whether the view has expired.
func (e *Expiry) Disabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.disabled
}

// Expire disables the view. It is idempotent: interactive elements are
// disabled, every bound message is updated in reverse post order, the timer
// is stopped and the view deregisters from its owning set once.
func (e *Expiry) Expire() {
	e.mu.Lock()
	if e.disabled {
		e.mu.Unlock()
		return
	}
	e.disabled = true
	if e.timer != nil {
		e.timer.Stop()
	}
	embed, components := e.render(true)
	messages := append([]MessageRef{}, e.messages...)
	owner := e.owner
	e.mu.Unlock()

	// Most recent message first, matching user-visible ordering
	for i := len(messages) - 1; i >= 0; i-- {
		if err := e.poster.Edit(messages[i], embed, components); err != nil {
			log.WithError(err).Error("Failed to disable view message")
		}
	}

	if owner != nil {
		owner.remove(e)
	}
}

// Set is a collection of live views owned by one session.
type Set struct {
	mu    sync.Mutex
	views map[*Expiry]struct{}
}

// NewSet creates an empty view set.
func NewSet() *Set {
	return &Set{views: make(map[*Expiry]struct{})}
}

func (s *Set) add(e *Expiry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views[e] = struct{}{}
}

func (s *Set) remove(e *Expiry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.views, e)
}

// Len returns the number of live views in the set.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}

// ExpireAll expires every view in the set.
func (s *Set) ExpireAll() {
	s.mu.Lock()
	views := make([]*Expiry, 0, len(s.views))
	for e := range s.views {
		views = append(views, e)
	}
	s.mu.Unlock()

	for _, e := range views {
		e.Expire()
	}
}
