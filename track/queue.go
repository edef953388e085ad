package track

import "errors"

// ErrOutOfRange is returned when a position or count exceeds the queue bounds.
var ErrOutOfRange = errors.New("queue position out of range")

// Queue is an ordered list of pending tracks, front first. Positions exposed
// to callers are 1-based; the currently playing track is never in the queue.
type Queue struct {
	items []Track
}

// PushBack appends a batch to the back of the queue, preserving order.
// Returns the 1-based position of the last inserted track.
func (q *Queue) PushBack(tracks []Track) int {
	q.items = append(q.items, tracks...)
	return len(q.items)
}

// PushFront prepends a batch to the front of the queue, preserving order.
// Always returns 1, the position of the first inserted track.
func (q *Queue) PushFront(tracks []Track) int {
	q.items = append(append([]Track{}, tracks...), q.items...)
	return 1
}

// PopFront removes and returns the first n tracks. If n exceeds the queue
// length nothing is removed and ErrOutOfRange is returned.
func (q *Queue) PopFront(n int) ([]Track, error) {
	if n < 1 || n > len(q.items) {
		return nil, ErrOutOfRange
	}
	popped := make([]Track, n)
	copy(popped, q.items[:n])
	q.items = q.items[n:]
	return popped, nil
}

// RemoveAt removes the track at the given 1-based position.
func (q *Queue) RemoveAt(position int) (Track, error) {
	if position < 1 || position > len(q.items) {
		return Track{}, ErrOutOfRange
	}
	removed := q.items[position-1]
	q.items = append(q.items[:position-1], q.items[position:]...)
	return removed, nil
}

// RemoveExact removes each given track by identity if still present. Tracks
// already gone are ignored, so undoing an insert stays safe against playback
// having consumed part of the batch in the meantime.
func (q *Queue) RemoveExact(tracks []Track) {
	for _, t := range tracks {
		for i, item := range q.items {
			if item.ID == t.ID {
				q.items = append(q.items[:i], q.items[i+1:]...)
				break
			}
		}
	}
}

// Clear removes every queued track.
func (q *Queue) Clear() {
	q.items = nil
}

// Snapshot returns a read-only copy of the queue for display.
func (q *Queue) Snapshot() []Track {
	snapshot := make([]Track, len(q.items))
	copy(snapshot, q.items)
	return snapshot
}

// IsEmpty reports whether the queue has no pending tracks.
func (q *Queue) IsEmpty() bool {
	return len(q.items) == 0
}

// Len returns the number of pending tracks.
func (q *Queue) Len() int {
	return len(q.items)
}
