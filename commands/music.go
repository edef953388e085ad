package commands

import (
	"context"
	"errors"
	"fmt"

	"Aria/player"
	"Aria/track"
	"Aria/utils"
	"Aria/views"

	"github.com/Strum355/log"
	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
)

// gateMessage maps a session error to the reply shown to the actor.
func gateMessage(err error) string {
	switch {
	case errors.Is(err, views.ErrUnauthorized):
		return "You are banned from using this bot"
	case errors.Is(err, views.ErrWrongChannel):
		return "You must be in the voice channel to perform that action"
	case errors.Is(err, player.ErrViewExpired):
		return "This panel has expired"
	case errors.Is(err, player.ErrNothingPlaying):
		return "Nothing is playing right now"
	case errors.Is(err, player.ErrNothingToRestore):
		return "There are no skipped songs to restore"
	case errors.Is(err, player.ErrNotFound):
		return "Couldn't find anything for that request"
	case errors.Is(err, track.ErrOutOfRange):
		return "The queue doesn't reach that far"
	case errors.Is(err, utils.ErrInvalidTimestamp):
		return "That's not a valid timestamp for this song"
	default:
		return "Something went wrong handling that request"
	}
}

func playMusic(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	return queueTracks(ctx, s, i, false)
}

func playTopMusic(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	return queueTracks(ctx, s, i, true)
}

// queueTracks resolves the query and appends it to the queue, at the back or
// the front. The public announcement travels on the undo panel; the invoker
// only gets an ephemeral acknowledgement.
func queueTracks(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, queueTop bool) *interactionError {
	if !checkNotBanned(s, i) || !checkUserVoiceChannel(s, i) {
		return nil
	}
	if err := deferResponse(s, i, true); err != nil {
		return &interactionError{err, "Couldn't acknowledge the command"}
	}

	sess, err := EnsureSession(s, i.GuildID, i.Member.User.ID)
	if err != nil {
		followUp(s, i, "Couldn't join your voice channel")
		return nil
	}

	if sess.Current() == nil {
		sess.BindSpawn(i.ChannelID)
	}

	query := commandOptions(i)["query"].StringValue()
	announcement, undo, err := sess.PlayAdd(ctx, query, i.Member.User.ID, queueTop)
	if err != nil {
		log.WithContext(ctx).WithError(err).Error("Failed to queue request")
		followUp(s, i, gateMessage(err))
		return nil
	}

	if announcement == "" {
		followUp(s, i, "▶️ Starting playback")
		return nil
	}

	if _, err := undo.PostTo(i.ChannelID); err != nil {
		log.WithContext(ctx).WithError(err).Error("Failed to post undo panel")
		followUp(s, i, announcement)
		return nil
	}
	followUp(s, i, "✅ Added to the queue")
	return nil
}

func playNowMusic(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	if !checkNotBanned(s, i) || !checkUserVoiceChannel(s, i) {
		return nil
	}
	if err := deferResponse(s, i, false); err != nil {
		return &interactionError{err, "Couldn't acknowledge the command"}
	}

	sess, err := EnsureSession(s, i.GuildID, i.Member.User.ID)
	if err != nil {
		followUp(s, i, "Couldn't join your voice channel")
		return nil
	}

	if sess.Current() == nil {
		sess.BindSpawn(i.ChannelID)
	}

	options := commandOptions(i)
	saveCurrent := false
	if opt, ok := options["save"]; ok {
		saveCurrent = opt.BoolValue()
	}

	announcement, err := sess.PlayNow(ctx, options["query"].StringValue(), i.Member.User.ID, saveCurrent)
	if err != nil {
		log.WithContext(ctx).WithError(err).Error("Failed to play request")
		followUp(s, i, gateMessage(err))
		return nil
	}
	followUp(s, i, announcement)
	return nil
}

func skipMusic(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	if !checkNotBanned(s, i) {
		return nil
	}
	sess, err := Sessions.Get(i.GuildID)
	if err != nil {
		respondEphemeral(s, i, "Nothing is playing right now")
		return nil
	}

	count := 1
	if opt, ok := commandOptions(i)["count"]; ok {
		count = int(opt.IntValue())
	}

	if err := sess.Skip(count); err != nil {
		respondEphemeral(s, i, gateMessage(err))
		return nil
	}
	if count > 1 {
		respond(s, i, fmt.Sprintf("⏭️ Skipped %d songs", count))
	} else {
		respond(s, i, "⏭️ Skipped")
	}
	return nil
}

func deskipMusic(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	if !checkNotBanned(s, i) {
		return nil
	}
	sess, err := Sessions.Get(i.GuildID)
	if err != nil {
		respondEphemeral(s, i, "Nothing is playing right now")
		return nil
	}

	if err := sess.Deskip(); err != nil {
		respondEphemeral(s, i, gateMessage(err))
		return nil
	}
	respond(s, i, "↩️ Restored the skipped songs")
	return nil
}

func removeTrack(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	if !checkNotBanned(s, i) {
		return nil
	}
	sess, err := Sessions.Get(i.GuildID)
	if err != nil {
		respondEphemeral(s, i, "Nothing is playing right now")
		return nil
	}

	position := int(commandOptions(i)["position"].IntValue())
	removed, err := sess.Remove(position)
	if err != nil {
		respondEphemeral(s, i, gateMessage(err))
		return nil
	}
	respond(s, i, fmt.Sprintf("🗑️ Removed **%s** from the queue", removed.Title))
	return nil
}

func seekMusic(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	if !checkNotBanned(s, i) {
		return nil
	}
	sess, err := Sessions.Get(i.GuildID)
	if err != nil {
		respondEphemeral(s, i, "Nothing is playing right now")
		return nil
	}

	timestamp := commandOptions(i)["timestamp"].StringValue()
	if err := sess.Seek(timestamp); err != nil {
		respondEphemeral(s, i, gateMessage(err))
		return nil
	}
	respond(s, i, fmt.Sprintf("⏩ Jumped to `%s`", timestamp))
	return nil
}

func restartMusic(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	if !checkNotBanned(s, i) {
		return nil
	}
	sess, err := Sessions.Get(i.GuildID)
	if err != nil {
		respondEphemeral(s, i, "Nothing is playing right now")
		return nil
	}

	if err := sess.Restart(); err != nil {
		respondEphemeral(s, i, gateMessage(err))
		return nil
	}
	respond(s, i, "⏮️ Restarted the current song")
	return nil
}

func replayMusic(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	if !checkNotBanned(s, i) {
		return nil
	}
	sess, err := Sessions.Get(i.GuildID)
	if err != nil {
		respondEphemeral(s, i, "Nothing has been played yet")
		return nil
	}

	if !sess.Replay(i.ChannelID) {
		respondEphemeral(s, i, "Replay only works when nothing is playing and there is a song to bring back")
		return nil
	}
	respond(s, i, "🔂 Replaying the last song")
	return nil
}

func loopMusic(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	if !checkNotBanned(s, i) {
		return nil
	}
	sess, err := Sessions.Get(i.GuildID)
	if err != nil {
		respondEphemeral(s, i, "Nothing is playing right now")
		return nil
	}

	if sess.Loop() {
		respond(s, i, "🔁 Loop enabled")
	} else {
		respond(s, i, "🔁 Loop disabled")
	}
	return nil
}

func nowPlaying(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	sess, err := Sessions.Get(i.GuildID)
	if err != nil {
		respondEphemeral(s, i, "Nothing is playing right now")
		return nil
	}

	if err := sess.Status(i.ChannelID); err != nil {
		respondEphemeral(s, i, gateMessage(err))
		return nil
	}
	respondEphemeral(s, i, "📻 Posted the now-playing panel")
	return nil
}

func showQueue(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	sess, err := Sessions.Get(i.GuildID)
	if err != nil {
		respondEphemeral(s, i, "The queue is empty")
		return nil
	}

	snapshot, view := sess.ShowQueue(i.Member.User.ID)
	if view != nil {
		if _, err := view.PostTo(i.ChannelID); err != nil {
			log.WithContext(ctx).WithError(err).Error("Failed to post queue panel")
			respondEphemeral(s, i, "Couldn't post the queue")
			return nil
		}
		respondEphemeral(s, i, "📜 Posted the queue")
		return nil
	}

	if len(snapshot) == 0 {
		respondEphemeral(s, i, "The queue is empty")
		return nil
	}

	embed := &discordgo.MessageEmbed{
		Title: "Queue",
		Color: viper.GetInt("theme"),
	}
	for idx, t := range snapshot {
		embed.Description += fmt.Sprintf("`%d.` **%s** (`%s`)\n", idx+1, t.Title, utils.FormatDuration(t.Duration))
	}
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
	return nil
}

func stopMusic(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	if !checkNotBanned(s, i) {
		return nil
	}
	if _, err := Sessions.Get(i.GuildID); err != nil {
		respondEphemeral(s, i, "Nothing is playing right now")
		return nil
	}

	Sessions.Remove(i.GuildID)
	if vc, ok := s.VoiceConnections[i.GuildID]; ok && vc != nil {
		vc.Disconnect()
	}
	respond(s, i, "👋 Stopped playback and cleared the queue")
	return nil
}
