package player

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"Aria/track"
	"Aria/utils"
	"Aria/views"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	viper.Set("queue.pagesize", 5)
	viper.Set("views.undo.timeout", 30)
	viper.Set("views.queue.timeout", 60)
	viper.Set("theme", 0xB299E3)
}

type fakeBackend struct {
	mu     sync.Mutex
	events chan Event
	played []track.Track
	stops  int
	seeks  []time.Duration
	pos    time.Duration
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{events: make(chan Event, 16)}
}

func (b *fakeBackend) Play(t track.Track) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.played = append(b.played, t)
	return nil
}

func (b *fakeBackend) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stops++
	return nil
}

func (b *fakeBackend) Seek(position time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seeks = append(b.seeks, position)
	return nil
}

func (b *fakeBackend) Position() time.Duration { return b.pos }
func (b *fakeBackend) Events() <-chan Event    { return b.events }
func (b *fakeBackend) Close()                  {}

func (b *fakeBackend) playedTitles() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	titles := make([]string, len(b.played))
	for i, t := range b.played {
		titles[i] = t.ID
	}
	return titles
}

func (b *fakeBackend) stopCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stops
}

type fakeResolver struct {
	tracks    map[string][]track.Track
	playlists map[string]string
}

func (r *fakeResolver) Resolve(_ context.Context, request string) ([]track.Track, string, error) {
	ts, ok := r.tracks[request]
	if !ok || len(ts) == 0 {
		return nil, "", ErrNotFound
	}
	return append([]track.Track{}, ts...), r.playlists[request], nil
}

type fakePoster struct {
	mu    sync.Mutex
	seq   int
	posts []views.MessageRef
	edits []views.MessageRef
}

func (p *fakePoster) Post(channelID string, _ *discordgo.MessageEmbed, _ []discordgo.MessageComponent) (views.MessageRef, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	ref := views.MessageRef{ChannelID: channelID, MessageID: fmt.Sprintf("msg-%d", p.seq)}
	p.posts = append(p.posts, ref)
	return ref, nil
}

func (p *fakePoster) Edit(ref views.MessageRef, _ *discordgo.MessageEmbed, _ []discordgo.MessageComponent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.edits = append(p.edits, ref)
	return nil
}

func (p *fakePoster) postCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.posts)
}

func (p *fakePoster) editCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.edits)
}

func song(id string) track.Track {
	return track.Track{ID: id, Title: "title-" + id, URL: "https://example.test/" + id, Duration: 3 * time.Minute}
}

func newTestSession(resolver *fakeResolver) (*Session, *fakeBackend, *fakePoster) {
	backend := newFakeBackend()
	poster := &fakePoster{}
	s := NewSession("guild-1", Deps{
		Backend:   backend,
		Resolver:  resolver,
		Poster:    poster,
		IsBanned:  func(string) bool { return false },
		IsOwner:   func(string) bool { return false },
		InChannel: func(string) bool { return true },
	})
	return s, backend, poster
}

// endCurrent simulates the backend delivering the ended event for whatever is
// playing, the way a stop or natural finish would.
func endCurrent(s *Session, reason EndReason) {
	current := s.Current()
	if current != nil {
		s.HandleTrackEnded(*current, reason)
	}
}

func TestSession_PlayAddIdleStartsImmediately(t *testing.T) {
	resolver := &fakeResolver{tracks: map[string][]track.Track{"songA": {song("A")}}}
	s, backend, _ := newTestSession(resolver)

	announcement, undo, err := s.PlayAdd(context.Background(), "songA", "userX", false)

	assert.NoError(t, err)
	assert.Empty(t, announcement)
	assert.Nil(t, undo)
	require.NotNil(t, s.Current())
	assert.Equal(t, "A", s.Current().ID)
	assert.Equal(t, "userX", s.Current().Requester)
	assert.Equal(t, 0, s.QueueLen())
	assert.Equal(t, []string{"A"}, backend.playedTitles())
}

func TestSession_PlayAddWhilePlayingAnnouncesAndOffersUndo(t *testing.T) {
	resolver := &fakeResolver{tracks: map[string][]track.Track{
		"songA": {song("A")},
		"songB": {song("B")},
	}}
	s, _, _ := newTestSession(resolver)

	_, _, err := s.PlayAdd(context.Background(), "songA", "userX", false)
	require.NoError(t, err)

	announcement, undo, err := s.PlayAdd(context.Background(), "songB", "userY", false)

	assert.NoError(t, err)
	assert.Contains(t, announcement, "position 1")
	require.NotNil(t, undo)
	assert.Equal(t, track.UndoRemoveExact, undo.Action.Kind)
	assert.Equal(t, 1, s.QueueLen())
}

func TestSession_PlayAddPlaylistIsOneUndoUnit(t *testing.T) {
	resolver := &fakeResolver{
		tracks:    map[string][]track.Track{"songA": {song("A")}, "mix": {song("p1"), song("p2"), song("p3")}},
		playlists: map[string]string{"mix": "Mix Tape"},
	}
	s, _, _ := newTestSession(resolver)

	_, _, err := s.PlayAdd(context.Background(), "songA", "userX", false)
	require.NoError(t, err)

	announcement, undo, err := s.PlayAdd(context.Background(), "mix", "userY", false)

	assert.NoError(t, err)
	assert.Contains(t, announcement, "Mix Tape")
	require.NotNil(t, undo)
	assert.Equal(t, track.UndoRemoveBatch, undo.Action.Kind)
	assert.Len(t, undo.Action.Tracks, 3)

	_, err = s.HandleComponent("undo", []string{undo.ID}, "userY")
	assert.NoError(t, err)
	assert.Equal(t, 0, s.QueueLen())
	assert.True(t, undo.Disabled())
}

func TestSession_PlayAddNotFound(t *testing.T) {
	resolver := &fakeResolver{tracks: map[string][]track.Track{}}
	s, _, _ := newTestSession(resolver)

	_, _, err := s.PlayAdd(context.Background(), "missing", "userX", false)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, s.Current())
}

func TestSession_PlayNowDisplacesThroughEndedHandler(t *testing.T) {
	resolver := &fakeResolver{tracks: map[string][]track.Track{
		"songA": {song("A")},
		"songB": {song("B")},
	}}
	s, backend, _ := newTestSession(resolver)

	_, _, err := s.PlayAdd(context.Background(), "songA", "userX", false)
	require.NoError(t, err)

	announcement, err := s.PlayNow(context.Background(), "songB", "userY", true)
	require.NoError(t, err)
	assert.Contains(t, announcement, "saved")

	// PlayNow never starts playback itself; it waits for the ended event
	assert.Equal(t, []string{"A"}, backend.playedTitles())
	assert.Equal(t, 1, backend.stopCount())

	endCurrent(s, ReasonStopped)

	require.NotNil(t, s.Current())
	assert.Equal(t, "B", s.Current().ID)
	// Saved current sits right behind the new request
	assert.Equal(t, 1, s.QueueLen())
}

func TestSession_SkipDeskipRoundTrip(t *testing.T) {
	for _, count := range []int{1, 2, 3} {
		resolver := &fakeResolver{tracks: map[string][]track.Track{
			"current": {song("C")},
			"q1":      {song("q1")},
			"q2":      {song("q2")},
			"q3":      {song("q3")},
		}}
		s, _, _ := newTestSession(resolver)

		_, _, err := s.PlayAdd(context.Background(), "current", "userX", false)
		require.NoError(t, err)
		for _, req := range []string{"q1", "q2", "q3"} {
			_, _, err = s.PlayAdd(context.Background(), req, "userX", false)
			require.NoError(t, err)
		}

		preCurrent := s.Current().ID
		preLen := s.QueueLen()

		require.NoError(t, s.Skip(count))
		endCurrent(s, ReasonStopped)

		require.NoError(t, s.Deskip())
		endCurrent(s, ReasonStopped)

		assert.Equal(t, preCurrent, s.Current().ID, "count=%d", count)
		assert.Equal(t, preLen, s.QueueLen(), "count=%d", count)
	}
}

func TestSession_SkipCountBeyondQueueFailsWithoutMutation(t *testing.T) {
	resolver := &fakeResolver{tracks: map[string][]track.Track{
		"current": {song("C")},
		"q1":      {song("q1")},
	}}
	s, backend, _ := newTestSession(resolver)

	_, _, err := s.PlayAdd(context.Background(), "current", "userX", false)
	require.NoError(t, err)
	_, _, err = s.PlayAdd(context.Background(), "q1", "userX", false)
	require.NoError(t, err)

	err = s.Skip(5)

	assert.ErrorIs(t, err, track.ErrOutOfRange)
	assert.Equal(t, 1, s.QueueLen())
	assert.Equal(t, 0, backend.stopCount())
}

func TestSession_DeskipWithoutSkipIsNoOp(t *testing.T) {
	resolver := &fakeResolver{tracks: map[string][]track.Track{"songA": {song("A")}}}
	s, backend, _ := newTestSession(resolver)

	_, _, err := s.PlayAdd(context.Background(), "songA", "userX", false)
	require.NoError(t, err)

	err = s.Deskip()

	assert.ErrorIs(t, err, ErrNothingToRestore)
	assert.Equal(t, 0, backend.stopCount())
}

func TestSession_NaturalFinishClearsSkipHistory(t *testing.T) {
	resolver := &fakeResolver{tracks: map[string][]track.Track{
		"songA": {song("A")},
		"songB": {song("B")},
	}}
	s, _, _ := newTestSession(resolver)

	_, _, err := s.PlayAdd(context.Background(), "songA", "userX", false)
	require.NoError(t, err)
	_, _, err = s.PlayAdd(context.Background(), "songB", "userX", false)
	require.NoError(t, err)

	require.NoError(t, s.Skip(1))
	// The pre-skip track finishes naturally before the stop lands
	endCurrent(s, ReasonFinished)

	err = s.Deskip()
	assert.ErrorIs(t, err, ErrNothingToRestore)
}

func TestSession_LoopReplaysWithoutStatusRefresh(t *testing.T) {
	resolver := &fakeResolver{tracks: map[string][]track.Track{"songA": {song("A")}}}
	s, backend, poster := newTestSession(resolver)
	s.BindSpawn("channel-1")

	_, _, err := s.PlayAdd(context.Background(), "songA", "userX", false)
	require.NoError(t, err)
	s.HandleTrackStarted(*s.Current())
	postsBefore := poster.postCount()

	assert.True(t, s.Loop())

	endCurrent(s, ReasonFinished)
	assert.Equal(t, []string{"A", "A"}, backend.playedTitles())

	s.HandleTrackStarted(*s.Current())
	assert.Equal(t, postsBefore, poster.postCount(), "loop iteration must not repost the panel")
}

func TestSession_QueueExhaustionGoesIdleAndDrainsViews(t *testing.T) {
	resolver := &fakeResolver{tracks: map[string][]track.Track{
		"songA": {song("A")},
		"songB": {song("B")},
	}}
	s, _, _ := newTestSession(resolver)
	s.BindSpawn("channel-1")

	_, _, err := s.PlayAdd(context.Background(), "songA", "userX", false)
	require.NoError(t, err)
	_, undo, err := s.PlayAdd(context.Background(), "songB", "userY", false)
	require.NoError(t, err)
	require.NotNil(t, undo)

	endCurrent(s, ReasonFinished) // A ends, B starts
	require.Equal(t, "B", s.Current().ID)

	endCurrent(s, ReasonFinished) // queue empty

	assert.Nil(t, s.Current())
	assert.True(t, undo.Disabled(), "owned views must be expired on idle")
	assert.Equal(t, 0, s.misc.Len())
}

func TestSession_Seek(t *testing.T) {
	resolver := &fakeResolver{tracks: map[string][]track.Track{"songA": {song("A")}}}
	s, backend, _ := newTestSession(resolver)

	_, _, err := s.PlayAdd(context.Background(), "songA", "userX", false)
	require.NoError(t, err)

	assert.NoError(t, s.Seek("1:30"))
	assert.Equal(t, []time.Duration{90 * time.Second}, backend.seeks)

	// Zero is always legal
	assert.NoError(t, s.Seek("0"))

	// Beyond the track duration is not
	err = s.Seek("59:59")
	assert.ErrorIs(t, err, utils.ErrInvalidTimestamp)

	err = s.Seek("not-a-time")
	assert.ErrorIs(t, err, utils.ErrInvalidTimestamp)
}

func TestSession_SeekNothingPlaying(t *testing.T) {
	resolver := &fakeResolver{tracks: map[string][]track.Track{}}
	s, _, _ := newTestSession(resolver)

	err := s.Seek("0")
	assert.ErrorIs(t, err, ErrNothingPlaying)
}

func TestSession_RestartSeeksToZero(t *testing.T) {
	resolver := &fakeResolver{tracks: map[string][]track.Track{"songA": {song("A")}}}
	s, backend, _ := newTestSession(resolver)

	_, _, err := s.PlayAdd(context.Background(), "songA", "userX", false)
	require.NoError(t, err)

	assert.NoError(t, s.Restart())
	assert.Equal(t, []time.Duration{0}, backend.seeks)
}

func TestSession_ReplayOnlyWhenIdleAndUnbound(t *testing.T) {
	resolver := &fakeResolver{tracks: map[string][]track.Track{"songA": {song("A")}}}
	s, backend, _ := newTestSession(resolver)

	// Nothing has played yet
	assert.False(t, s.Replay("channel-1"))

	_, _, err := s.PlayAdd(context.Background(), "songA", "userX", false)
	require.NoError(t, err)

	// Still playing, replay refuses
	assert.False(t, s.Replay("channel-1"))

	endCurrent(s, ReasonFinished)
	require.Nil(t, s.Current())

	assert.True(t, s.Replay("channel-1"))
	assert.Equal(t, []string{"A", "A"}, backend.playedTitles())
	assert.Equal(t, "A", s.Current().ID)
}

func TestSession_RemovePropagatesOutOfRange(t *testing.T) {
	resolver := &fakeResolver{tracks: map[string][]track.Track{"songA": {song("A")}}}
	s, _, _ := newTestSession(resolver)

	_, _, err := s.PlayAdd(context.Background(), "songA", "userX", false)
	require.NoError(t, err)

	_, err = s.Remove(1)
	assert.ErrorIs(t, err, track.ErrOutOfRange)
}

func TestSession_ShowQueueSinglePage(t *testing.T) {
	resolver := &fakeResolver{tracks: map[string][]track.Track{
		"songA": {song("A")},
		"songB": {song("B")},
	}}
	s, _, _ := newTestSession(resolver)

	_, _, err := s.PlayAdd(context.Background(), "songA", "userX", false)
	require.NoError(t, err)
	_, _, err = s.PlayAdd(context.Background(), "songB", "userX", false)
	require.NoError(t, err)

	snapshot, view := s.ShowQueue("userX")

	assert.Nil(t, view)
	require.Len(t, snapshot, 1)
	assert.Equal(t, "B", snapshot[0].ID)
}

func TestSession_ShowQueuePaginatesLargeQueues(t *testing.T) {
	resolver := &fakeResolver{tracks: map[string][]track.Track{"seed": {song("seed")}}}
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("t%d", i)
		resolver.tracks[id] = []track.Track{song(id)}
	}
	s, _, _ := newTestSession(resolver)

	_, _, err := s.PlayAdd(context.Background(), "seed", "userX", false)
	require.NoError(t, err)
	for i := 0; i < 8; i++ {
		_, _, err = s.PlayAdd(context.Background(), fmt.Sprintf("t%d", i), "userX", false)
		require.NoError(t, err)
	}

	snapshot, view := s.ShowQueue("userX")

	assert.Nil(t, snapshot)
	require.NotNil(t, view)
	assert.Equal(t, 2, view.PageCount())
}

func TestSession_GateDeniesBannedActor(t *testing.T) {
	resolver := &fakeResolver{tracks: map[string][]track.Track{
		"songA": {song("A")},
		"songB": {song("B")},
	}}
	backend := newFakeBackend()
	poster := &fakePoster{}
	s := NewSession("guild-1", Deps{
		Backend:   backend,
		Resolver:  resolver,
		Poster:    poster,
		IsBanned:  func(id string) bool { return id == "banned-user" },
		IsOwner:   func(string) bool { return false },
		InChannel: func(string) bool { return true },
	})

	_, _, err := s.PlayAdd(context.Background(), "songA", "userX", false)
	require.NoError(t, err)
	_, undo, err := s.PlayAdd(context.Background(), "songB", "userY", false)
	require.NoError(t, err)

	_, err = s.HandleComponent("undo", []string{undo.ID}, "banned-user")
	assert.ErrorIs(t, err, views.ErrUnauthorized)
	assert.Equal(t, 1, s.QueueLen(), "denied interaction must not mutate the queue")
}
