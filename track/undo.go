package track

// UndoKind tags what an UndoAction reverses.
type UndoKind int

const (
	// UndoRemoveExact reverses a single-track insert.
	UndoRemoveExact UndoKind = iota
	// UndoRemoveBatch reverses a playlist insert as one unit.
	UndoRemoveBatch
)

// UndoAction is the recorded reversal of a queue insert. Keeping it as a
// value interpreted by the queue avoids closures capturing queue state.
type UndoAction struct {
	Kind   UndoKind
	Tracks []Track
}

// Undo applies the action, removing the recorded tracks by identity. Tracks
// that playback has already consumed are skipped.
func (q *Queue) Undo(action UndoAction) {
	q.RemoveExact(action.Tracks)
}
