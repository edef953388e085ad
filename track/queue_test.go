package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func tracks(ids ...string) []Track {
	ts := make([]Track, len(ids))
	for i, id := range ids {
		ts[i] = Track{ID: id, Title: "title-" + id}
	}
	return ts
}

func queueIDs(q *Queue) []string {
	snapshot := q.Snapshot()
	ids := make([]string, len(snapshot))
	for i, t := range snapshot {
		ids[i] = t.ID
	}
	return ids
}

func TestQueue_PushBackReportsLastPosition(t *testing.T) {
	q := &Queue{}

	pos := q.PushBack(tracks("a", "b"))
	assert.Equal(t, 2, pos)

	pos = q.PushBack(tracks("c"))
	assert.Equal(t, 3, pos)

	assert.Equal(t, []string{"a", "b", "c"}, queueIDs(q))
}

func TestQueue_PushFrontPreservesBatchOrder(t *testing.T) {
	q := &Queue{}
	q.PushBack(tracks("x", "y"))

	pos := q.PushFront(tracks("a", "b", "c"))

	assert.Equal(t, 1, pos)
	assert.Equal(t, []string{"a", "b", "c", "x", "y"}, queueIDs(q))
}

func TestQueue_PopFront(t *testing.T) {
	q := &Queue{}
	q.PushBack(tracks("a", "b", "c"))

	popped, err := q.PopFront(2)

	assert.NoError(t, err)
	assert.Equal(t, "a", popped[0].ID)
	assert.Equal(t, "b", popped[1].ID)
	assert.Equal(t, []string{"c"}, queueIDs(q))
}

func TestQueue_PopFrontOutOfRangeLeavesQueueUnchanged(t *testing.T) {
	q := &Queue{}
	q.PushBack(tracks("a", "b"))

	popped, err := q.PopFront(3)

	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Nil(t, popped)
	assert.Equal(t, []string{"a", "b"}, queueIDs(q))
}

func TestQueue_RemoveAt(t *testing.T) {
	q := &Queue{}
	q.PushBack(tracks("a", "b", "c"))

	removed, err := q.RemoveAt(2)

	assert.NoError(t, err)
	assert.Equal(t, "b", removed.ID)
	assert.Equal(t, []string{"a", "c"}, queueIDs(q))
}

func TestQueue_RemoveAtOutOfRange(t *testing.T) {
	q := &Queue{}
	q.PushBack(tracks("a"))

	_, err := q.RemoveAt(0)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = q.RemoveAt(2)
	assert.ErrorIs(t, err, ErrOutOfRange)

	assert.Equal(t, []string{"a"}, queueIDs(q))
}

func TestQueue_RemoveExact(t *testing.T) {
	q := &Queue{}
	q.PushBack(tracks("a", "b", "c"))

	q.RemoveExact(tracks("b", "c"))

	assert.Equal(t, []string{"a"}, queueIDs(q))
}

func TestQueue_RemoveExactIgnoresMissingTracks(t *testing.T) {
	q := &Queue{}
	q.PushBack(tracks("a", "b"))

	q.RemoveExact(tracks("b", "gone", "also-gone"))

	assert.Equal(t, []string{"a"}, queueIDs(q))
}

func TestQueue_RemoveExactRemovesSingleOccurrence(t *testing.T) {
	q := &Queue{}
	q.PushBack(tracks("a", "a", "b"))

	q.RemoveExact(tracks("a"))

	assert.Equal(t, []string{"a", "b"}, queueIDs(q))
}

func TestQueue_Clear(t *testing.T) {
	q := &Queue{}
	q.PushBack(tracks("a", "b"))

	q.Clear()

	assert.True(t, q.IsEmpty())
	assert.Equal(t, 0, q.Len())
}

func TestQueue_SnapshotIsACopy(t *testing.T) {
	q := &Queue{}
	q.PushBack(tracks("a", "b"))

	snapshot := q.Snapshot()
	snapshot[0].ID = "mutated"

	assert.Equal(t, []string{"a", "b"}, queueIDs(q))
}

func TestQueue_MixedPushesNeverReorderWithinBatch(t *testing.T) {
	q := &Queue{}
	q.PushBack(tracks("b1", "b2"))
	q.PushFront(tracks("f1", "f2"))
	q.PushBack(tracks("b3"))

	assert.Equal(t, []string{"f1", "f2", "b1", "b2", "b3"}, queueIDs(q))

	popped, err := q.PopFront(3)
	assert.NoError(t, err)
	assert.Equal(t, "f1", popped[0].ID)
	assert.Equal(t, "f2", popped[1].ID)
	assert.Equal(t, "b1", popped[2].ID)
}
