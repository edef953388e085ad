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

// Component custom IDs carried by the status view's buttons.
const (
	StatusRestartID = "restart"
	StatusSkipID    = "skip"
	StatusLoopID    = "loop"
)

// StatusView is the now-playing panel for a session's current track.
type StatusView struct {
	*Expiry

	guildID string

	mu    sync.Mutex
	track track.Track
	loop  bool
}

// NewStatusView builds the now-playing panel. The timeout is normally the
// remaining duration of the track so the panel dies with the song.
func NewStatusView(poster Poster, guildID string, t track.Track, loop bool, timeout time.Duration) *StatusView {
	v := &StatusView{
		guildID: guildID,
		track:   t,
		loop:    loop,
	}
	v.Expiry = NewExpiry(poster, v.render, timeout, nil)
	return v
}

// SetLoop updates the loop indicator and refreshes every bound message.
func (v *StatusView) SetLoop(loop bool) {
	v.mu.Lock()
	v.loop = loop
	v.mu.Unlock()
	v.Refresh()
}

func (v *StatusView) render(disabled bool) (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	v.mu.Lock()
	t := v.track
	loop := v.loop
	v.mu.Unlock()

	footer := fmt.Sprintf("Duration: %s", utils.FormatDuration(t.Duration))
	if loop {
		footer += " • 🔁 Loop enabled"
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🎵 Now Playing: %s", t.Title),
		URL:         t.URL,
		Description: fmt.Sprintf("Requested by <@%s>", t.Requester),
		Footer:      &discordgo.MessageEmbedFooter{Text: footer},
		Color:       viper.GetInt("theme"),
	}
	if t.ArtworkURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: t.ArtworkURL}
	}

	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Restart",
					Style:    discordgo.SecondaryButton,
					CustomID: ComponentID("status", v.guildID, StatusRestartID),
					Disabled: disabled,
				},
				discordgo.Button{
					Label:    "Skip",
					Style:    discordgo.SecondaryButton,
					CustomID: ComponentID("status", v.guildID, StatusSkipID),
					Disabled: disabled,
				},
				discordgo.Button{
					Label:    "Loop",
					Style:    discordgo.SecondaryButton,
					CustomID: ComponentID("status", v.guildID, StatusLoopID),
					Disabled: disabled,
				},
			},
		},
	}

	return embed, components
}
