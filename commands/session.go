package commands

import (
	"errors"

	"Aria/audio"
	"Aria/db_client"
	"Aria/favorites"
	"Aria/permissions"
	"Aria/player"
	"Aria/redis_client"
	"Aria/views"
	"Aria/yt"

	"github.com/bwmarrin/discordgo"
)

var (
	// Sessions holds the at-most-one playback session per guild.
	Sessions = player.NewRegistry()

	Bans      *permissions.Store
	Favorites *favorites.Store

	resolver *yt.Manager
)

// InitStores wires the command layer to its backing services. Must run after
// the database connection is established.
func InitStores() {
	Bans = permissions.NewStore(db_client.DB)
	Favorites = favorites.NewStore(db_client.DB)
	resolver = yt.NewManager(redis_client.RDB)
}

// EnsureSession returns the guild's playback session, joining the invoking
// user's voice channel and creating the session if needed.
func EnsureSession(s *discordgo.Session, guildID, userID string) (*player.Session, error) {
	vcState, err := s.State.VoiceState(guildID, userID)
	if err != nil || vcState == nil || vcState.ChannelID == "" {
		return nil, errors.New("user is not in a voice channel")
	}
	return SessionForChannel(s, guildID, vcState.ChannelID)
}

// SessionForChannel returns the guild's playback session, joining the given
// voice channel and creating the session if needed.
func SessionForChannel(s *discordgo.Session, guildID, channelID string) (*player.Session, error) {
	return Sessions.GetOrCreate(guildID, func() (*player.Session, error) {
		vc, err := connectVoiceChannel(s, guildID, channelID)
		if err != nil {
			return nil, err
		}
		deps := player.Deps{
			Backend:  audio.New(vc, resolver),
			Resolver: resolver,
			Poster:   &views.DiscordPoster{Session: s},
			IsBanned: Bans.IsBanned,
			IsOwner:  permissions.IsOwner,
			InChannel: func(userID string) bool {
				return userInSessionChannel(s, guildID, userID)
			},
		}
		return player.NewSession(guildID, deps), nil
	})
}

// userInSessionChannel reports whether a user shares the bot's voice channel.
func userInSessionChannel(s *discordgo.Session, guildID, userID string) bool {
	vc, ok := s.VoiceConnections[guildID]
	if !ok || vc == nil {
		return false
	}
	vs, err := s.State.VoiceState(guildID, userID)
	return err == nil && vs != nil && vs.ChannelID == vc.ChannelID
}
