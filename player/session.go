package player

import (
	"context"
	"fmt"
	"sync"
	"time"

	"Aria/track"
	"Aria/utils"
	"Aria/views"

	"github.com/Strum355/log"
	"github.com/spf13/viper"
)

// Deps are the collaborators a session needs. The membership and permission
// checks back the gates on interactive panels.
type Deps struct {
	Backend   Backend
	Resolver  Resolver
	Poster    views.Poster
	IsBanned  func(userID string) bool
	IsOwner   func(userID string) bool
	InChannel func(userID string) bool
	// OnIdle is called after the session transitions to idle with an empty
	// queue, once every owned view has been expired. May be nil.
	OnIdle func()
}

// Session is the per-guild playback state machine. Chat commands mutate it
// from one side, backend lifecycle events from the other; the mutex keeps the
// two strictly serialized, skip/deskip included.
type Session struct {
	GuildID string

	deps Deps

	mu          sync.Mutex
	queue       track.Queue
	current     *track.Track
	skipHistory []track.Track
	loop        bool
	lastTrack   *track.Track
	spawnID     string // channel status messages are posted to; empty when idle

	statusView  *views.StatusView
	misc        *views.Set
	undoPanels  map[string]*views.UndoView
	queuePanels map[string]*views.QueueListView

	destroyed bool
}

// NewSession creates an idle session and starts consuming backend events.
func NewSession(guildID string, deps Deps) *Session {
	s := &Session{
		GuildID:     guildID,
		deps:        deps,
		misc:        views.NewSet(),
		undoPanels:  make(map[string]*views.UndoView),
		queuePanels: make(map[string]*views.QueueListView),
	}
	go s.run()
	return s
}

// run is the single consumer of backend lifecycle events for this session.
func (s *Session) run() {
	for ev := range s.deps.Backend.Events() {
		switch ev.Type {
		case EventTrackStarted:
			s.HandleTrackStarted(ev.Track)
		case EventTrackEnded:
			s.HandleTrackEnded(ev.Track, ev.Reason)
		}
	}
}

// Destroy tears the session down: every live view is expired before the
// session is released. Safe to call once the voice connection is gone.
func (s *Session) Destroy() {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.destroyed = true
	status := s.statusView
	s.statusView = nil
	s.current = nil
	s.spawnID = ""
	s.queue.Clear()
	s.undoPanels = make(map[string]*views.UndoView)
	s.queuePanels = make(map[string]*views.QueueListView)
	s.mu.Unlock()

	if status != nil {
		status.Expire()
	}
	s.misc.ExpireAll()
	s.deps.Backend.Close()
	log.WithFields(log.Fields{"guild_id": s.GuildID}).Info("Session destroyed")
}

// PlayAdd resolves a request and queues it. When the session is idle the new
// front of the queue starts playing immediately and nothing is announced (the
// start event publishes the now-playing panel); when already playing it
// returns the announcement plus an undo panel that removes exactly the
// inserted tracks.
func (s *Session) PlayAdd(ctx context.Context, request, requesterID string, queueTop bool) (string, *views.UndoView, error) {
	tracks, playlistTitle, err := s.deps.Resolver.Resolve(ctx, request)
	if err != nil {
		return "", nil, err
	}
	if len(tracks) == 0 {
		return "", nil, ErrNotFound
	}
	for i := range tracks {
		tracks[i] = tracks[i].WithRequester(requesterID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	playing := s.current != nil

	var position int
	if queueTop {
		position = s.queue.PushFront(tracks)
	} else {
		position = s.queue.PushBack(tracks)
	}

	if !playing {
		s.startFront()
		return "", nil, nil
	}

	var announcement string
	kind := track.UndoRemoveExact
	if playlistTitle != "" || len(tracks) > 1 {
		kind = track.UndoRemoveBatch
		announcement = fmt.Sprintf("🎶 Queued playlist **%s** (%d tracks) at position %d", playlistTitle, len(tracks), position)
	} else {
		announcement = fmt.Sprintf("🎶 Queued **%s** (`%s`) at position %d", tracks[0].Title, utils.FormatDuration(tracks[0].Duration), position)
	}

	undo := views.NewUndoView(
		s.deps.Poster,
		s.GuildID,
		announcement,
		track.UndoAction{Kind: kind, Tracks: tracks},
		s.newGate(requesterID),
		s.misc,
		viewTimeout("views.undo.timeout"),
	)
	s.undoPanels[undo.ID] = undo

	return announcement, undo, nil
}

// PlayNow pushes a request to the very front of the queue and displaces the
// current track. Advancing happens entirely in the ended-event handler so a
// stop can never race a fresh play call.
func (s *Session) PlayNow(ctx context.Context, request, requesterID string, saveCurrent bool) (string, error) {
	tracks, playlistTitle, err := s.deps.Resolver.Resolve(ctx, request)
	if err != nil {
		return "", err
	}
	if len(tracks) == 0 {
		return "", ErrNotFound
	}
	for i := range tracks {
		tracks[i] = tracks[i].WithRequester(requesterID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	title := playlistTitle
	if title == "" {
		title = tracks[0].Title
	}
	announcement := fmt.Sprintf("▶️ Playing **%s** now", title)

	if saveCurrent && s.current != nil {
		s.queue.PushFront([]track.Track{*s.current})
		announcement += " (current track saved to the queue)"
	}
	s.queue.PushFront(tracks)

	if s.current != nil {
		if err := s.deps.Backend.Stop(); err != nil {
			return "", err
		}
		return announcement, nil
	}

	s.startFront()
	return announcement, nil
}

// Remove drops the track at the given 1-based queue position.
func (s *Session) Remove(position int) (track.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.RemoveAt(position)
}

// Skip ends the current track and count-1 further queued tracks, recording
// all of them as the restorable skip history. Loop is disabled; a previous
// uncommitted skip history is overwritten.
func (s *Session) Skip(count int) error {
	if count < 1 {
		count = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ErrNothingPlaying
	}

	captured := []track.Track{*s.current}
	if count > 1 {
		extra, err := s.queue.PopFront(count - 1)
		if err != nil {
			return err
		}
		captured = append(captured, extra...)
	}

	s.setLoop(false)
	s.skipHistory = captured
	return s.deps.Backend.Stop()
}

// Deskip restores the most recent skip: the skipped tracks plus whatever is
// playing now go back onto the queue front in chronological order, so a skip
// followed by a deskip is an exact round trip.
func (s *Session) Deskip() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.skipHistory) == 0 {
		return ErrNothingToRestore
	}

	s.setLoop(false)
	restore := append([]track.Track{}, s.skipHistory...)
	if s.current != nil {
		restore = append(restore, *s.current)
	}
	s.queue.PushFront(restore)
	s.skipHistory = nil

	if s.current != nil {
		return s.deps.Backend.Stop()
	}
	s.startFront()
	return nil
}

// Seek moves playback to a "ss", "mm:ss" or "h:mm:ss" position. Zero is
// always legal; anything past the track's duration is rejected.
func (s *Session) Seek(timeText string) error {
	target, err := utils.ParseTimestamp(timeText)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ErrNothingPlaying
	}
	if target != 0 && target > s.current.Duration {
		return utils.ErrInvalidTimestamp
	}
	return s.deps.Backend.Seek(target)
}

// Restart rewinds the current track to its beginning.
func (s *Session) Restart() error {
	return s.Seek("0")
}

// Replay starts the most recently finished track again. Only effective when
// the session is idle and unbound; the spawn context is rebound to the
// invoking channel. Returns false when there is nothing to replay.
func (s *Session) Replay(channelID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil || s.spawnID != "" || s.lastTrack == nil {
		return false
	}
	s.spawnID = channelID
	t := *s.lastTrack
	s.current = &t
	if err := s.deps.Backend.Play(t); err != nil {
		log.WithError(err).WithFields(log.Fields{"guild_id": s.GuildID}).Error("Failed to replay track")
		s.current = nil
		return false
	}
	return true
}

// Loop toggles loop mode and returns the new state.
func (s *Session) Loop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLoop(!s.loop)
	return s.loop
}

func (s *Session) setLoop(loop bool) {
	if s.loop == loop {
		return
	}
	s.loop = loop
	if s.statusView != nil && !s.statusView.Disabled() {
		s.statusView.SetLoop(loop)
	}
}

// Status publishes the now-playing panel to the given channel, reusing the
// live panel when one exists.
func (s *Session) Status(channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ErrNothingPlaying
	}

	if s.statusView != nil && !s.statusView.Disabled() {
		_, err := s.statusView.PostTo(channelID)
		return err
	}

	remaining := s.current.Duration - s.deps.Backend.Position()
	if remaining < 0 {
		remaining = 0
	}
	s.statusView = views.NewStatusView(s.deps.Poster, s.GuildID, *s.current, s.loop, remaining)
	_, err := s.statusView.PostTo(channelID)
	return err
}

// ShowQueue returns the pending queue for display. A snapshot that fits on
// one page comes back as a plain listing; larger queues get a paginated panel
// gated to the requester and in-channel members.
func (s *Session) ShowQueue(requesterID string) ([]track.Track, *views.QueueListView) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.queue.Snapshot()
	if len(snapshot) <= viper.GetInt("queue.pagesize") {
		return snapshot, nil
	}

	view := views.NewQueueListView(
		s.deps.Poster,
		s.GuildID,
		snapshot,
		s.newGate(requesterID),
		s.misc,
		viewTimeout("views.queue.timeout"),
	)
	s.queuePanels[view.ID] = view
	return nil, view
}

// Current returns the currently playing track, if any.
func (s *Session) Current() *track.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	t := *s.current
	return &t
}

// QueueLen returns the number of pending tracks.
func (s *Session) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// HandleTrackStarted publishes the now-playing panel for a freshly started
// track. Refreshes are suppressed while looping so every iteration does not
// repost the same panel.
func (s *Session) HandleTrackStarted(t track.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loop || s.spawnID == "" {
		return
	}

	if s.statusView != nil {
		s.statusView.Expire()
	}
	s.statusView = views.NewStatusView(s.deps.Poster, s.GuildID, t, s.loop, t.Duration)
	if _, err := s.statusView.PostTo(s.spawnID); err != nil {
		log.WithError(err).WithFields(log.Fields{"guild_id": s.GuildID}).Error("Failed to post now-playing panel")
	}
}

// HandleTrackEnded advances the state machine when a track stops: replay it
// when looping, pop the next queued track, or go idle and drain every view.
func (s *Session) HandleTrackEnded(t track.Track, reason EndReason) {
	s.mu.Lock()

	s.lastTrack = &t
	if reason == ReasonFinished {
		// A natural finish invalidates any pending undo-skip
		s.skipHistory = nil
	}

	if s.loop {
		s.current = &t
		if err := s.deps.Backend.Play(t); err != nil {
			log.WithError(err).WithFields(log.Fields{"guild_id": s.GuildID}).Error("Failed to loop track")
			s.setLoop(false)
		} else {
			s.mu.Unlock()
			return
		}
	}

	if s.statusView != nil {
		s.statusView.Expire()
		s.statusView = nil
	}

	if !s.queue.IsEmpty() {
		s.startFront()
		s.mu.Unlock()
		return
	}

	s.current = nil
	s.spawnID = ""
	s.undoPanels = make(map[string]*views.UndoView)
	s.queuePanels = make(map[string]*views.QueueListView)
	onIdle := s.deps.OnIdle
	s.mu.Unlock()

	// Nothing is playing, so nothing is left to interact with
	s.misc.ExpireAll()
	if onIdle != nil {
		onIdle()
	}
}

// startFront pops the queue front and begins playing it. Caller holds the mutex.
func (s *Session) startFront() {
	popped, err := s.queue.PopFront(1)
	if err != nil {
		return
	}
	t := popped[0]
	s.current = &t
	if err := s.deps.Backend.Play(t); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"guild_id": s.GuildID,
			"track":    t.Title,
		}).Error("Failed to start playback")
		s.current = nil
	}
}

// BindSpawn sets the channel status messages are posted to.
func (s *Session) BindSpawn(channelID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spawnID = channelID
}

func (s *Session) newGate(requesterID string) *views.Gate {
	return &views.Gate{
		RequesterID: requesterID,
		IsOwner:     s.deps.IsOwner,
		IsBanned:    s.deps.IsBanned,
		InChannel:   s.deps.InChannel,
	}
}

func viewTimeout(key string) time.Duration {
	return time.Duration(viper.GetInt(key)) * time.Second
}
