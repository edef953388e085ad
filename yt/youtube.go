package yt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"Aria/track"
	"Aria/utils"

	"github.com/kkdai/youtube/v2"
)

// FetchVideoMetadata fetches basic metadata for a given videoID.
func FetchVideoMetadata(videoID string) (track.Track, error) {
	client := youtube.Client{}
	video, err := client.GetVideo(videoID)
	if err != nil {
		return track.Track{}, err
	}
	return videoToTrack(video), nil
}

func videoToTrack(video *youtube.Video) track.Track {
	artwork := ""
	if len(video.Thumbnails) > 0 {
		artwork = video.Thumbnails[0].URL
	}
	return track.Track{
		ID:         video.ID,
		Title:      video.Title,
		URL:        fmt.Sprintf("https://www.youtube.com/watch?v=%s", video.ID),
		Duration:   video.Duration,
		ArtworkURL: artwork,
	}
}

// DownloadAudioFile downloads the audio for a given videoID into the cache,
// preferring a direct client stream with yt-dlp as the fallback.
func DownloadAudioFile(videoID string) error {
	filename := utils.GetAudioFile(videoID)

	err := youTubeDownload(videoID, filename)
	if err == nil {
		return nil
	}

	cmd := exec.Command("yt-dlp",
		"-f", "bestaudio[ext=opus]/bestaudio",
		"-o", filename,
		"https://www.youtube.com/watch?v="+videoID,
	)
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return errors.New(stderr.String())
	}
	return nil
}

// youTubeDownload streams audio for a given videoID directly to a file using
// the YouTube client.
func youTubeDownload(videoID, filename string) error {
	client := youtube.Client{}
	video, err := client.GetVideo("https://www.youtube.com/watch?v=" + videoID)
	if err != nil {
		return err
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return errors.New("no audio formats available")
	}

	stream, _, err := client.GetStream(video, &formats[0])
	if err != nil {
		return err
	}
	defer stream.Close()

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := io.Copy(file, stream); err != nil {
		os.Remove(filename)
		return err
	}
	return nil
}

// searchEntry is the subset of yt-dlp JSON output a search result needs.
type searchEntry struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Duration  float64 `json:"duration"`
	Thumbnail string  `json:"thumbnail"`
}

// searchVideo resolves a free-text query to the best matching video.
func searchVideo(query string) (track.Track, error) {
	cmd := exec.Command("yt-dlp", "-j", "--no-playlist", "ytsearch1:"+query)
	out, err := cmd.Output()
	if err != nil {
		return track.Track{}, err
	}

	var entry searchEntry
	if err := json.Unmarshal(out, &entry); err != nil || entry.ID == "" {
		return track.Track{}, errors.New("no search results")
	}

	return track.Track{
		ID:         entry.ID,
		Title:      entry.Title,
		URL:        fmt.Sprintf("https://www.youtube.com/watch?v=%s", entry.ID),
		Duration:   time.Duration(entry.Duration) * time.Second,
		ArtworkURL: entry.Thumbnail,
	}, nil
}
