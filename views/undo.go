package views

import (
	"time"

	"Aria/track"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
)

// UndoView is the single-button panel offered after a queue insert. Pressing
// the button removes exactly the inserted tracks, then the view expires.
type UndoView struct {
	*Expiry

	ID     string
	Gate   *Gate
	Action track.UndoAction

	guildID      string
	announcement string
}

// NewUndoView builds the undo panel for one insert announcement.
func NewUndoView(poster Poster, guildID, announcement string, action track.UndoAction, gate *Gate, owner *Set, timeout time.Duration) *UndoView {
	v := &UndoView{
		ID:           NextViewID(),
		Gate:         gate,
		Action:       action,
		guildID:      guildID,
		announcement: announcement,
	}
	v.Expiry = NewExpiry(poster, v.render, timeout, owner)
	return v
}

func (v *UndoView) render(disabled bool) (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	embed := &discordgo.MessageEmbed{
		Description: v.announcement,
		Color:       viper.GetInt("theme"),
	}

	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Undo",
					Style:    discordgo.DangerButton,
					CustomID: ComponentID("undo", v.guildID, v.ID),
					Disabled: disabled,
				},
			},
		},
	}

	return embed, components
}
