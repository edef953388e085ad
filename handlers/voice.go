package handlers

import (
	"context"
	"errors"

	"Aria/commands"
	"Aria/favorites"

	"github.com/Strum355/log"
	"github.com/bwmarrin/discordgo"
)

// VoiceHandler tracks voice channel membership: it plays a user's favorite
// song when they join the bot's channel, and tears the session down when the
// bot is disconnected or left alone.
func VoiceHandler(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if v.UserID == s.State.User.ID {
		if v.ChannelID == "" {
			// Bot was disconnected, kicked or moved out
			commands.Sessions.Remove(v.GuildID)
		}
		return
	}

	if userLeftBotChannel(s, v) && botAloneInChannel(s, v.GuildID) {
		log.WithFields(log.Fields{"guild_id": v.GuildID}).Info("Voice channel emptied, leaving")
		commands.Sessions.Remove(v.GuildID)
		if vc, ok := s.VoiceConnections[v.GuildID]; ok && vc != nil {
			vc.Disconnect()
		}
		return
	}

	playFavoriteOnJoin(s, v)
}

// userLeftBotChannel reports whether this update is a user leaving the
// channel the bot is connected to.
func userLeftBotChannel(s *discordgo.Session, v *discordgo.VoiceStateUpdate) bool {
	if v.BeforeUpdate == nil || v.BeforeUpdate.ChannelID == "" {
		return false
	}
	if v.ChannelID == v.BeforeUpdate.ChannelID {
		return false
	}
	vc, ok := s.VoiceConnections[v.GuildID]
	return ok && vc != nil && vc.ChannelID == v.BeforeUpdate.ChannelID
}

// botAloneInChannel reports whether no human remains in the bot's channel.
func botAloneInChannel(s *discordgo.Session, guildID string) bool {
	vc, ok := s.VoiceConnections[guildID]
	if !ok || vc == nil {
		return false
	}
	guild, err := s.State.Guild(guildID)
	if err != nil {
		return false
	}
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID == vc.ChannelID && vs.UserID != s.State.User.ID {
			return false
		}
	}
	return true
}

// playFavoriteOnJoin automatically plays someone's favorite song when they
// join the call.
func playFavoriteOnJoin(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if v.ChannelID == "" {
		return
	}
	if v.BeforeUpdate != nil && v.BeforeUpdate.ChannelID == v.ChannelID {
		// Mute, deafen or stream toggles arrive as state updates too
		return
	}
	if vc, ok := s.VoiceConnections[v.GuildID]; ok && vc != nil && vc.ChannelID != v.ChannelID {
		// Bot is busy in a different channel
		return
	}

	favorite, err := commands.Favorites.Get(v.UserID)
	if err != nil {
		if !errors.Is(err, favorites.ErrNoFavorite) {
			log.WithError(err).Error("Failed to look up favorite song")
		}
		return
	}

	sess, err := commands.SessionForChannel(s, v.GuildID, v.ChannelID)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"guild_id": v.GuildID}).Error("Failed to join voice channel for favorite song")
		return
	}

	if current := sess.Current(); current != nil {
		if current.URL == favorite {
			return
		}
		if _, err := sess.PlayNow(context.Background(), favorite, v.UserID, true); err != nil {
			log.WithError(err).Error("Failed to play favorite song")
		}
		return
	}

	if _, err := sess.PlayNow(context.Background(), favorite, v.UserID, false); err != nil {
		log.WithError(err).Error("Failed to play favorite song")
	}
}
