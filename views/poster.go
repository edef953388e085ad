package views

import (
	"github.com/bwmarrin/discordgo"
)

// MessageRef identifies one posted message hosting a view.
type MessageRef struct {
	ChannelID string
	MessageID string
}

// Poster posts and edits the messages an interactive view is bound to.
type Poster interface {
	Post(channelID string, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) (MessageRef, error)
	Edit(ref MessageRef, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error
}

// DiscordPoster implements Poster on top of a discordgo session.
type DiscordPoster struct {
	Session *discordgo.Session
}

func (p *DiscordPoster) Post(channelID string, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) (MessageRef, error) {
	msg, err := p.Session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	})
	if err != nil {
		return MessageRef{}, err
	}
	return MessageRef{ChannelID: channelID, MessageID: msg.ID}, nil
}

func (p *DiscordPoster) Edit(ref MessageRef, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	_, err := p.Session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    ref.ChannelID,
		ID:         ref.MessageID,
		Embeds:     &[]*discordgo.MessageEmbed{embed},
		Components: &components,
	})
	return err
}
