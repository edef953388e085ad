package commands

import (
	"errors"

	"Aria/permissions"

	"github.com/bwmarrin/discordgo"
)

// connectVoiceChannel connects the bot to the given voice channel, reusing an
// existing connection when it already sits in that channel.
func connectVoiceChannel(s *discordgo.Session, guildID, channelID string) (*discordgo.VoiceConnection, error) {
	if vc, ok := s.VoiceConnections[guildID]; ok && vc != nil {
		if vc.ChannelID == channelID {
			return vc, nil
		}
		return nil, errors.New("already connected to a different voice channel")
	}

	vc, err := s.ChannelVoiceJoin(guildID, channelID, false, false)
	if err != nil {
		return nil, err
	}

	return vc, nil
}

// checkUserVoiceChannel checks whether user is in the same voice channel as bot
func checkUserVoiceChannel(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	// Get user's current voice channel
	vs, err := s.State.VoiceState(i.GuildID, i.Member.User.ID)
	if err != nil || vs == nil || vs.ChannelID == "" {
		respondEphemeral(s, i, "Join a voice channel first 😉")
		return false
	}

	// Check if bot is already in a different voice channel
	if vc, ok := s.VoiceConnections[i.GuildID]; ok && vc != nil && vc.ChannelID != vs.ChannelID {
		respondEphemeral(s, i, "I'm already in another voice channel 😅")
		return false
	}

	return true
}

// checkNotBanned enforces the deny list on commands. The bot owner always
// passes.
func checkNotBanned(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	userID := i.Member.User.ID
	if permissions.IsOwner(userID) {
		return true
	}
	if Bans.IsBanned(userID) {
		respondEphemeral(s, i, "You are banned from using this bot")
		return false
	}
	return true
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
		},
	})
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:   discordgo.MessageFlagsEphemeral,
			Content: content,
		},
	})
}

func deferResponse(s *discordgo.Session, i *discordgo.InteractionCreate, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: data,
	})
}

func followUp(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
	})
}

// commandOptions indexes a command's options by name.
func commandOptions(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := map[string]*discordgo.ApplicationCommandInteractionDataOption{}
	for _, opt := range i.ApplicationCommandData().Options {
		options[opt.Name] = opt
	}
	return options
}
