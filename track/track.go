package track

import "time"

// Track describes one playable item. It is immutable once created; the
// requester is stamped exactly once when the track is queued.
type Track struct {
	ID         string        // Source video ID, used as identity for removal
	Title      string        // Display title
	URL        string        // Source URI
	Duration   time.Duration // Full track length
	ArtworkURL string        // Thumbnail, may be empty
	Requester  string        // User ID of whoever queued it
}

// WithRequester returns a copy of the track stamped with the requesting user.
func (t Track) WithRequester(userID string) Track {
	t.Requester = userID
	return t
}
