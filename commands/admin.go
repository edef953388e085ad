package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"Aria/favorites"
	"Aria/permissions"

	"github.com/Strum355/log"
	"github.com/bwmarrin/discordgo"
)

// checkOwner restricts a command to the configured bot owner.
func checkOwner(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if !permissions.IsOwner(i.Member.User.ID) {
		respondEphemeral(s, i, "Only the bot owner can do that")
		return false
	}
	return true
}

func banUser(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	if !checkOwner(s, i) {
		return nil
	}

	target := commandOptions(i)["user"].UserValue(s)
	if err := Bans.Ban(target.ID); err != nil {
		if errors.Is(err, permissions.ErrAlreadyBanned) {
			respondEphemeral(s, i, "User is already banned")
			return nil
		}
		return &interactionError{err, "Couldn't update the ban list"}
	}
	respond(s, i, fmt.Sprintf("🔨 Banned %s from using the bot", target.Mention()))
	return nil
}

func unbanUser(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	if !checkOwner(s, i) {
		return nil
	}

	target := commandOptions(i)["user"].UserValue(s)
	if err := Bans.Unban(target.ID); err != nil {
		if errors.Is(err, permissions.ErrNotBanned) {
			respondEphemeral(s, i, "User is not banned")
			return nil
		}
		return &interactionError{err, "Couldn't update the ban list"}
	}
	respond(s, i, fmt.Sprintf("🤝 Unbanned %s", target.Mention()))
	return nil
}

func favoriteSong(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	if !checkNotBanned(s, i) {
		return nil
	}

	sub := i.ApplicationCommandData().Options[0]
	switch sub.Name {
	case "add":
		return favoriteAdd(ctx, s, i, sub)
	case "remove":
		return favoriteRemove(ctx, s, i, sub)
	case "list":
		return favoriteList(ctx, s, i)
	default:
		return &interactionError{
			errors.New("unknown favorite subcommand " + sub.Name),
			"Unknown subcommand",
		}
	}
}

func favoriteAdd(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) *interactionError {
	if err := deferResponse(s, i, false); err != nil {
		return &interactionError{err, "Couldn't acknowledge the command"}
	}

	var target *discordgo.User
	var query string
	for _, opt := range sub.Options {
		switch opt.Name {
		case "user":
			target = opt.UserValue(s)
		case "query":
			query = opt.StringValue()
		}
	}

	tracks, _, err := resolver.Resolve(ctx, query)
	if err != nil || len(tracks) == 0 {
		followUp(s, i, "Couldn't find a song for that request")
		return nil
	}
	url := tracks[0].URL

	previous, err := Favorites.Set(target.ID, url)
	if err != nil {
		log.WithContext(ctx).WithError(err).Error("Failed to store favorite song")
		followUp(s, i, "Couldn't save the favorite song")
		return nil
	}

	if previous != "" {
		followUp(s, i, fmt.Sprintf("Updated %s's favorite song from <%s> to <%s>", target.Username, previous, url))
	} else {
		followUp(s, i, fmt.Sprintf("Added <%s> as %s's favorite song", url, target.Username))
	}
	return nil
}

func favoriteRemove(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) *interactionError {
	target := sub.Options[0].UserValue(s)
	if err := Favorites.Remove(target.ID); err != nil {
		if errors.Is(err, favorites.ErrNoFavorite) {
			respondEphemeral(s, i, "User did not have a favorite song")
			return nil
		}
		return &interactionError{err, "Couldn't remove the favorite song"}
	}
	respond(s, i, fmt.Sprintf("Removed %s's favorite song", target.Username))
	return nil
}

func favoriteList(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	all, err := Favorites.All()
	if err != nil {
		return &interactionError{err, "Couldn't list favorite songs"}
	}
	if len(all) == 0 {
		respondEphemeral(s, i, "Nobody has a favorite song")
		return nil
	}

	lines := make([]string, 0, len(all))
	for _, entry := range all {
		lines = append(lines, fmt.Sprintf("<@%s> : <%s>", entry.UserID, entry.URL))
	}
	respond(s, i, strings.Join(lines, "\n"))
	return nil
}
