package handlers

import (
	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
)

// HelpEmbedding creates the embedding for the help menu
func HelpEmbedding(s *discordgo.Session, m *discordgo.MessageCreate) {
	botAvatarURL := s.State.User.AvatarURL("64")
	helpEmbed := &discordgo.MessageEmbed{
		Title: "Aria Help",
		Color: viper.GetInt("theme"),
		Thumbnail: &discordgo.MessageEmbedThumbnail{
			URL: botAvatarURL,
		},
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "Playback",
				Value: "`/play` `/playtop` `/playnow` queue songs or playlists\n" +
					"`/skip` `/deskip` skip songs and bring them back\n" +
					"`/seek` `/restart` `/replay` `/loop` control the current song",
			},
			{
				Name: "Queue",
				Value: "`/queue` show what's coming up\n" +
					"`/np` show what's playing\n" +
					"`/remove` drop a song by position\n" +
					"`/stop` stop and leave voice chat",
			},
			{
				Name:  "Favorites",
				Value: "`/favorite add|remove|list` — favorites play automatically when you join a call",
			},
		},
	}
	s.ChannelMessageSendEmbed(m.ChannelID, helpEmbed)
}
