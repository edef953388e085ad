package utils

import (
	"fmt"
	"strings"
)

// GetAudioFile returns the cache path for a downloaded track's audio.
func GetAudioFile(trackID string) string {
	return fmt.Sprintf("cache/%s.opus", trackID)
}

// GetAudioID returns the track ID encoded in a cache path.
func GetAudioID(filepath string) string {
	return strings.TrimSuffix(strings.TrimPrefix(filepath, "cache/"), ".opus")
}
