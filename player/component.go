package player

import (
	"errors"
	"fmt"

	"Aria/views"
)

// ErrViewExpired means the interacted panel is no longer live.
var ErrViewExpired = errors.New("this panel has expired")

// HandleComponent routes a button interaction to the owning view. The
// returned string is the ephemeral acknowledgement shown to the actor; a
// denial from the gate comes back as the error to surface.
func (s *Session) HandleComponent(kind string, parts []string, actorID string) (string, error) {
	switch kind {
	case "status":
		return s.handleStatusButton(parts, actorID)
	case "undo":
		return s.handleUndoButton(parts, actorID)
	case "queue":
		return s.handleQueueButton(parts, actorID)
	default:
		return "", fmt.Errorf("unknown component kind %q", kind)
	}
}

func (s *Session) handleStatusButton(parts []string, actorID string) (string, error) {
	if len(parts) < 1 {
		return "", ErrViewExpired
	}
	if err := s.newGate("").Authorize(actorID); err != nil {
		return "", err
	}

	switch parts[0] {
	case views.StatusSkipID:
		if err := s.Skip(1); err != nil {
			return "", err
		}
		return "⏭️ Skipped", nil
	case views.StatusRestartID:
		if err := s.Restart(); err != nil {
			return "", err
		}
		return "⏮️ Restarted", nil
	case views.StatusLoopID:
		if s.Loop() {
			return "🔁 Loop enabled", nil
		}
		return "🔁 Loop disabled", nil
	default:
		return "", ErrViewExpired
	}
}

func (s *Session) handleUndoButton(parts []string, actorID string) (string, error) {
	if len(parts) < 1 {
		return "", ErrViewExpired
	}

	s.mu.Lock()
	view, ok := s.undoPanels[parts[0]]
	s.mu.Unlock()
	if !ok || view.Disabled() {
		return "", ErrViewExpired
	}

	if err := view.Gate.Authorize(actorID); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.queue.Undo(view.Action)
	delete(s.undoPanels, view.ID)
	s.mu.Unlock()

	view.Expire()
	return fmt.Sprintf("↩️ Removed %d track(s) from the queue", len(view.Action.Tracks)), nil
}

func (s *Session) handleQueueButton(parts []string, actorID string) (string, error) {
	if len(parts) < 2 {
		return "", ErrViewExpired
	}

	s.mu.Lock()
	view, ok := s.queuePanels[parts[0]]
	s.mu.Unlock()
	if !ok || view.Disabled() {
		return "", ErrViewExpired
	}

	if err := view.Gate.Authorize(actorID); err != nil {
		return "", err
	}

	view.Turn(parts[1])
	return "", nil
}
