package views

import (
	"fmt"
	"sync"
	"time"

	"Aria/track"
	"Aria/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
)

// Component arguments carried by the queue list's pager buttons.
const (
	QueuePrevID = "prev"
	QueueNextID = "next"
)

// QueueListView is a paginated listing of the pending queue, gated to the
// requester and members of the session's voice channel.
type QueueListView struct {
	*Expiry

	ID   string
	Gate *Gate

	guildID  string
	pageSize int

	mu     sync.Mutex
	tracks []track.Track
	page   int
}

// NewQueueListView builds a pager over a queue snapshot.
func NewQueueListView(poster Poster, guildID string, tracks []track.Track, gate *Gate, owner *Set, timeout time.Duration) *QueueListView {
	pageSize := viper.GetInt("queue.pagesize")
	v := &QueueListView{
		ID:       NextViewID(),
		Gate:     gate,
		guildID:  guildID,
		pageSize: pageSize,
		tracks:   tracks,
	}
	v.Expiry = NewExpiry(poster, v.render, timeout, owner)
	return v
}

// PageCount returns how many pages the snapshot spans.
func (v *QueueListView) PageCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pageCount()
}

func (v *QueueListView) pageCount() int {
	if len(v.tracks) == 0 {
		return 1
	}
	return (len(v.tracks) + v.pageSize - 1) / v.pageSize
}

// Turn flips to the previous or next page and refreshes the panel.
func (v *QueueListView) Turn(direction string) {
	v.mu.Lock()
	switch direction {
	case QueuePrevID:
		if v.page > 0 {
			v.page--
		}
	case QueueNextID:
		if v.page < v.pageCount()-1 {
			v.page++
		}
	}
	v.mu.Unlock()
	v.Refresh()
}

func (v *QueueListView) render(disabled bool) (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	v.mu.Lock()
	page := v.page
	pages := v.pageCount()
	start := page * v.pageSize
	end := start + v.pageSize
	if end > len(v.tracks) {
		end = len(v.tracks)
	}
	listing := ""
	for i := start; i < end; i++ {
		t := v.tracks[i]
		listing += fmt.Sprintf("%d. `%s` (%s) — <@%s>\n", i+1, t.Title, utils.FormatDuration(t.Duration), t.Requester)
	}
	if listing == "" {
		listing = "The queue is empty 😶"
	}
	v.mu.Unlock()

	embed := &discordgo.MessageEmbed{
		Title:       "🎶 Queue",
		Description: listing,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Page %d/%d", page+1, pages)},
		Color:       viper.GetInt("theme"),
	}

	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "◀",
					Style:    discordgo.SecondaryButton,
					CustomID: ComponentID("queue", v.guildID, v.ID, QueuePrevID),
					Disabled: disabled || page == 0,
				},
				discordgo.Button{
					Label:    "▶",
					Style:    discordgo.SecondaryButton,
					CustomID: ComponentID("queue", v.guildID, v.ID, QueueNextID),
					Disabled: disabled || page >= pages-1,
				},
			},
		},
	}

	return embed, components
}
