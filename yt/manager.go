package yt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"Aria/player"
	"Aria/redis_client"
	"Aria/track"
	"Aria/utils"

	"github.com/Strum355/log"
	"github.com/kkdai/youtube/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// Manager resolves user requests (URLs, playlist URLs, search text) into
// tracks, caching metadata in Redis. It implements the session's Resolver.
type Manager struct {
	redis        *redis.Client
	cacheYoutube time.Duration
	cacheAudio   time.Duration
}

// NewManager creates a Manager with Redis cache.
func NewManager(rdb *redis.Client) *Manager {
	return &Manager{
		redis:        rdb,
		cacheYoutube: time.Duration(viper.GetInt("cache.youtube")) * time.Second,
		cacheAudio:   time.Duration(viper.GetInt("cache.audio")) * time.Second,
	}
}

// Resolve turns a request into an ordered batch of tracks. Playlist URLs
// resolve as one batch with the playlist's title; anything else resolves to a
// single track, by ID for URLs or through search for free text.
func (m *Manager) Resolve(ctx context.Context, request string) ([]track.Track, string, error) {
	request = strings.TrimSpace(request)
	if request == "" {
		return nil, "", player.ErrNotFound
	}

	if strings.Contains(request, "list=") {
		return m.resolvePlaylist(request)
	}

	if videoID, err := youtube.ExtractVideoID(request); err == nil {
		t, err := m.GetTrackMetadata(videoID)
		if err != nil {
			return nil, "", player.ErrNotFound
		}
		return []track.Track{t}, "", nil
	}

	t, err := searchVideo(request)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"request": request}).Info("Search yielded no results")
		return nil, "", player.ErrNotFound
	}
	return []track.Track{t}, "", nil
}

// GetTrackMetadata fetches metadata for a videoID, trying Redis first.
func (m *Manager) GetTrackMetadata(videoID string) (track.Track, error) {
	cached, err := m.redis.Get(redis_client.Ctx, "ytmeta:"+videoID).Result()
	if err == nil && cached != "" {
		var t track.Track
		if json.Unmarshal([]byte(cached), &t) == nil {
			return t, nil
		}
	}

	t, err := FetchVideoMetadata(videoID)
	if err != nil {
		return track.Track{}, err
	}

	data, _ := json.Marshal(t)
	m.redis.Set(redis_client.Ctx, "ytmeta:"+videoID, data, m.cacheYoutube)

	return t, nil
}

// EnsureAudio caches and downloads the audio for a videoID if missing.
func (m *Manager) EnsureAudio(videoID string) (string, error) {
	m.redis.Set(redis_client.Ctx, "ytvideo:"+videoID, true, m.cacheAudio)
	filename := utils.GetAudioFile(videoID)

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		os.MkdirAll("cache", 0755)
		if err := DownloadAudioFile(videoID); err != nil {
			return "", err
		}
	}
	return filename, nil
}

// playlistEntry is the subset of yt-dlp flat-playlist JSON the resolver needs.
type playlistEntry struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Duration      float64 `json:"duration"`
	PlaylistTitle string  `json:"playlist_title"`
}

// resolvePlaylist returns all tracks of a playlist URL as one ordered batch.
func (m *Manager) resolvePlaylist(playlistURL string) ([]track.Track, string, error) {
	cmd := exec.Command("yt-dlp", "-j", "--flat-playlist", playlistURL)
	out, err := cmd.Output()
	if err != nil {
		return nil, "", player.ErrNotFound
	}

	var tracks []track.Track
	playlistTitle := "playlist"

	for _, line := range bytes.Split(out, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var entry playlistEntry
		if err := json.Unmarshal(line, &entry); err != nil || entry.ID == "" {
			continue
		}
		if entry.PlaylistTitle != "" {
			playlistTitle = entry.PlaylistTitle
		}
		tracks = append(tracks, track.Track{
			ID:       entry.ID,
			Title:    entry.Title,
			URL:      fmt.Sprintf("https://www.youtube.com/watch?v=%s", entry.ID),
			Duration: time.Duration(entry.Duration) * time.Second,
		})
	}

	if len(tracks) == 0 {
		return nil, "", player.ErrNotFound
	}
	return tracks, playlistTitle, nil
}
