package commands

import (
	"context"
	"errors"

	"Aria/views"

	"github.com/Strum355/log"
	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
)

// RegisterSlashCommands adds all slash commands to the session.
func RegisterSlashCommands(s *discordgo.Session) {
	commands.Add(
		&discordgo.ApplicationCommand{
			Name:        "play",
			Description: "Queue a song or playlist from a Youtube URL or search.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "query",
					Description: "Youtube link, playlist link or search text",
					Required:    true,
				},
			},
		},
		playMusic,
	)

	commands.Add(
		&discordgo.ApplicationCommand{
			Name:        "playtop",
			Description: "Queue a song or playlist at the front of the queue.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "query",
					Description: "Youtube link, playlist link or search text",
					Required:    true,
				},
			},
		},
		playTopMusic,
	)

	commands.Add(
		&discordgo.ApplicationCommand{
			Name:        "playnow",
			Description: "Play a song immediately, displacing the current one.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "query",
					Description: "Youtube link, playlist link or search text",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "save",
					Description: "Put the displaced song back at the front of the queue",
				},
			},
		},
		playNowMusic,
	)

	commands.Add(
		&discordgo.ApplicationCommand{
			Name:        "skip",
			Description: "Skip the current song, and optionally more after it.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "count",
					Description: "How many songs to skip (default 1)",
				},
			},
		},
		skipMusic,
	)

	commands.Add(
		&discordgo.ApplicationCommand{
			Name:        "deskip",
			Description: "Restore the most recently skipped songs.",
		},
		deskipMusic,
	)

	commands.Add(
		&discordgo.ApplicationCommand{
			Name:        "remove",
			Description: "Remove a song from the queue by position.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "position",
					Description: "Queue position, starting at 1",
					Required:    true,
				},
			},
		},
		removeTrack,
	)

	commands.Add(
		&discordgo.ApplicationCommand{
			Name:        "seek",
			Description: "Jump to a position in the current song.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "timestamp",
					Description: "Position as ss, mm:ss or h:mm:ss",
					Required:    true,
				},
			},
		},
		seekMusic,
	)

	commands.Add(
		&discordgo.ApplicationCommand{
			Name:        "restart",
			Description: "Restart the current song from the beginning.",
		},
		restartMusic,
	)

	commands.Add(
		&discordgo.ApplicationCommand{
			Name:        "replay",
			Description: "Play the last finished song again.",
		},
		replayMusic,
	)

	commands.Add(
		&discordgo.ApplicationCommand{
			Name:        "loop",
			Description: "Toggle looping of the current song.",
		},
		loopMusic,
	)

	commands.Add(
		&discordgo.ApplicationCommand{
			Name:        "np",
			Description: "Show the song that's now playing.",
		},
		nowPlaying,
	)

	commands.Add(
		&discordgo.ApplicationCommand{
			Name:        "queue",
			Description: "Show the current song queue.",
		},
		showQueue,
	)

	commands.Add(
		&discordgo.ApplicationCommand{
			Name:        "stop",
			Description: "Stop playback, clear the queue and leave voice chat.",
		},
		stopMusic,
	)

	commands.Add(
		&discordgo.ApplicationCommand{
			Name:        "ban",
			Description: "Ban a user from using the bot. Owner only.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to ban",
					Required:    true,
				},
			},
		},
		banUser,
	)

	commands.Add(
		&discordgo.ApplicationCommand{
			Name:        "unban",
			Description: "Lift a user's bot ban. Owner only.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to unban",
					Required:    true,
				},
			},
		},
		unbanUser,
	)

	commands.Add(
		&discordgo.ApplicationCommand{
			Name:        "favorite",
			Description: "Manage favorite songs, played automatically on voice join.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Set a user's favorite song",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "Whose favorite to set",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "query",
							Description: "Youtube link or search text",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove a user's favorite song",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "Whose favorite to remove",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List everyone's favorite songs",
				},
			},
		},
		favoriteSong,
	)

	if err := commands.Register(s); err != nil {
		log.WithError(err).Error("Failed to register slash commands")
	}
}

type CommandHandler func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError

type Commands struct {
	commands []*discordgo.ApplicationCommand
	handlers map[string]CommandHandler
}

var (
	commands = &Commands{}
)

// Adds command to the slash commands.
func (c *Commands) Add(com *discordgo.ApplicationCommand, handler CommandHandler) {
	c.commands = append(c.commands, com)
	if c.handlers == nil {
		c.handlers = map[string]CommandHandler{}
	}
	c.handlers[com.Name] = handler
}

// Register all slash commands and component commands
func (c *Commands) Register(s *discordgo.Session) error {
	// Handles all interactions and routes them to the correct command handler
	s.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			callCommandHandler(s, i)
		case discordgo.InteractionMessageComponent:
			callComponentHandler(s, i)
		}
	})

	// Registers slash commands
	if _, err := s.ApplicationCommandBulkOverwrite(viper.GetString("discord.app.id"), "", c.commands); err != nil {
		log.WithError(err).Error("Failed to create commands")
		return err
	}
	return nil
}

// Cannot be an interaction through DMs
func checkDirectMessage(i *discordgo.InteractionCreate) (*discordgo.User, *interactionError) {
	if i.GuildID == "" {
		return nil, &interactionError{
			errors.New("command invoked outside of valid guild"),
			"This command is only available in a valid server",
		}
	}
	return i.Member.User, nil
}

// Component or button based interactions
func callComponentHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	m := i.MessageComponentData()
	kind, guildID, parts, ok := views.ParseComponentID(m.CustomID)
	if !ok {
		iErr := &interactionError{
			errors.New("unroutable custom_id on component of message " + i.Message.ID),
			"Couldn't handle component, invalid custom_id",
		}
		iErr.Handle(s, i)
		return
	}

	ctx = context.WithValue(ctx, log.Key, log.Fields{
		"user_id":          i.Member.User.ID,
		"channel_id":       i.ChannelID,
		"guild_id":         guildID,
		"user":             i.Member.User.Username,
		"interaction_type": "component",
		"command":          kind,
	})
	log.WithContext(ctx).Info("Invoking component command")

	sess, err := Sessions.Get(guildID)
	if err != nil {
		respondEphemeral(s, i, "This panel has expired")
		return
	}

	reply, err := sess.HandleComponent(kind, parts, i.Member.User.ID)
	if err != nil {
		respondEphemeral(s, i, gateMessage(err))
		return
	}
	if reply == "" {
		// The view already refreshed its message; just acknowledge.
		s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredMessageUpdate,
		})
		return
	}
	respondEphemeral(s, i, reply)
}

// Text or slash command interactions
func callCommandHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var iError *interactionError
	ctx := context.Background()
	commandAuthor, iError := checkDirectMessage(i)
	if iError != nil {
		iError.Handle(s, i)
		return
	}

	commandName := i.ApplicationCommandData().Name

	channel, err := s.Channel(i.ChannelID)
	if err != nil {
		iError = &interactionError{err, "Couldn't query channel"}
		iError.Handle(s, i)
		return
	}

	if handler, ok := commands.handlers[commandName]; ok {
		ctx := context.WithValue(ctx, log.Key, log.Fields{
			"author_id":        commandAuthor.ID,
			"channel_id":       i.ChannelID,
			"guild_id":         i.GuildID,
			"user":             commandAuthor.Username,
			"channel_name":     channel.Name,
			"interaction_type": "application",
			"command":          commandName,
		})
		log.WithContext(ctx).Info("Invoking application command")
		iError = handler(ctx, s, i)
		if iError != nil {
			iError.Handle(s, i)
		}
	}
}
