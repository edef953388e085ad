package views

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"Aria/track"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	viper.Set("queue.pagesize", 3)
	viper.Set("theme", 0xB299E3)
}

type recordingPoster struct {
	mu    sync.Mutex
	seq   int
	edits []MessageRef
}

func (p *recordingPoster) Post(channelID string, _ *discordgo.MessageEmbed, _ []discordgo.MessageComponent) (MessageRef, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	return MessageRef{ChannelID: channelID, MessageID: fmt.Sprintf("msg-%d", p.seq)}, nil
}

func (p *recordingPoster) Edit(ref MessageRef, _ *discordgo.MessageEmbed, _ []discordgo.MessageComponent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.edits = append(p.edits, ref)
	return nil
}

func (p *recordingPoster) editedIDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, len(p.edits))
	for i, ref := range p.edits {
		ids[i] = ref.MessageID
	}
	return ids
}

func emptyRender(disabled bool) (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	return &discordgo.MessageEmbed{Description: "test"}, nil
}

func TestExpiry_ExpireIsIdempotent(t *testing.T) {
	poster := &recordingPoster{}
	set := NewSet()
	e := NewExpiry(poster, emptyRender, 0, set)
	e.Bind(MessageRef{ChannelID: "c", MessageID: "m1"})

	assert.Equal(t, 1, set.Len())

	e.Expire()
	e.Expire()

	assert.True(t, e.Disabled())
	assert.Len(t, poster.edits, 1, "a second expire must not edit again")
	assert.Equal(t, 0, set.Len(), "deregistration happens exactly once")
}

func TestExpiry_ExpireEditsInReversePostOrder(t *testing.T) {
	poster := &recordingPoster{}
	e := NewExpiry(poster, emptyRender, 0, nil)
	e.Bind(MessageRef{ChannelID: "c", MessageID: "first"})
	e.Bind(MessageRef{ChannelID: "c", MessageID: "second"})
	e.Bind(MessageRef{ChannelID: "c", MessageID: "third"})

	e.Expire()

	assert.Equal(t, []string{"third", "second", "first"}, poster.editedIDs())
}

func TestExpiry_TimerTriggersExpire(t *testing.T) {
	poster := &recordingPoster{}
	set := NewSet()
	e := NewExpiry(poster, emptyRender, 20*time.Millisecond, set)
	e.Bind(MessageRef{ChannelID: "c", MessageID: "m1"})

	assert.Eventually(t, e.Disabled, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, set.Len())
}

func TestExpiry_PostToBindsMessage(t *testing.T) {
	poster := &recordingPoster{}
	e := NewExpiry(poster, emptyRender, 0, nil)

	ref, err := e.PostTo("channel-1")
	require.NoError(t, err)
	assert.Equal(t, "channel-1", ref.ChannelID)

	_, err = e.PostTo("channel-2")
	require.NoError(t, err)

	e.Expire()
	assert.Len(t, poster.edits, 2, "both bound messages get the disabled render")
}

func TestExpiry_RefreshSkipsDisabledView(t *testing.T) {
	poster := &recordingPoster{}
	e := NewExpiry(poster, emptyRender, 0, nil)
	e.Bind(MessageRef{ChannelID: "c", MessageID: "m1"})

	e.Expire()
	editsAfterExpire := len(poster.edits)

	e.Refresh()
	assert.Len(t, poster.edits, editsAfterExpire)
}

func TestSet_ExpireAll(t *testing.T) {
	poster := &recordingPoster{}
	set := NewSet()
	a := NewExpiry(poster, emptyRender, 0, set)
	b := NewExpiry(poster, emptyRender, 0, set)

	set.ExpireAll()

	assert.True(t, a.Disabled())
	assert.True(t, b.Disabled())
	assert.Equal(t, 0, set.Len())
}

func TestGate_BanTakesPrecedenceOverChannel(t *testing.T) {
	gate := &Gate{
		RequesterID: "requester",
		IsOwner:     func(string) bool { return false },
		IsBanned:    func(id string) bool { return id == "banned" },
		InChannel:   func(string) bool { return false },
	}

	err := gate.Authorize("banned")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestGate_OwnerBypassesBanList(t *testing.T) {
	gate := &Gate{
		IsOwner:   func(id string) bool { return id == "owner" },
		IsBanned:  func(string) bool { return true },
		InChannel: func(string) bool { return true },
	}

	assert.NoError(t, gate.Authorize("owner"))
	assert.ErrorIs(t, gate.Authorize("someone"), ErrUnauthorized)
}

func TestGate_RequesterBypassesChannelCheck(t *testing.T) {
	gate := &Gate{
		RequesterID: "requester",
		IsBanned:    func(string) bool { return false },
		InChannel:   func(string) bool { return false },
	}

	assert.NoError(t, gate.Authorize("requester"))
	assert.ErrorIs(t, gate.Authorize("someone-else"), ErrWrongChannel)
}

func TestQueueListView_Paging(t *testing.T) {
	poster := &recordingPoster{}
	tracks := make([]track.Track, 7)
	for i := range tracks {
		tracks[i] = track.Track{ID: fmt.Sprintf("t%d", i), Title: fmt.Sprintf("Track %d", i)}
	}

	v := NewQueueListView(poster, "guild-1", tracks, &Gate{}, nil, 0)

	assert.Equal(t, 3, v.PageCount())

	v.Turn(QueueNextID)
	v.Turn(QueueNextID)
	v.Turn(QueueNextID) // clamped at the last page
	v.Turn(QueuePrevID)

	embed, _ := v.Render()
	assert.Contains(t, embed.Footer.Text, "2/3")
}

func TestUndoView_CarriesAction(t *testing.T) {
	poster := &recordingPoster{}
	action := track.UndoAction{
		Kind:   track.UndoRemoveBatch,
		Tracks: []track.Track{{ID: "a"}, {ID: "b"}},
	}

	v := NewUndoView(poster, "guild-1", "Queued playlist", action, &Gate{}, nil, 0)

	assert.Equal(t, track.UndoRemoveBatch, v.Action.Kind)
	assert.Len(t, v.Action.Tracks, 2)

	_, components := v.Render()
	require.Len(t, components, 1)
}

func TestComponentID_RoundTrip(t *testing.T) {
	id := ComponentID("queue", "guild-1", "42", QueueNextID)

	kind, guildID, parts, ok := ParseComponentID(id)

	assert.True(t, ok)
	assert.Equal(t, "queue", kind)
	assert.Equal(t, "guild-1", guildID)
	assert.Equal(t, []string{"42", QueueNextID}, parts)
}
