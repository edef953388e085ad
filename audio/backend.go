package audio

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"Aria/player"
	"Aria/track"

	"github.com/Strum355/log"
	"github.com/bwmarrin/discordgo"
	"layeh.com/gopus"
)

const (
	sampleRate       = 48000
	channels         = 2
	frameSize        = 960 // samples per channel per opus frame (20ms)
	maxOpusFrameSize = 4000
)

// Downloader fetches a track's audio into the local cache and returns the
// file path. Satisfied by yt.Manager.
type Downloader interface {
	EnsureAudio(trackID string) (string, error)
}

// activeStream is the control block for one running stream loop. reason and
// emitEnded are written under the backend mutex before stop is closed and
// read under the same mutex after the loop exits.
type activeStream struct {
	track     track.Track
	stop      chan struct{}
	stopped   bool
	reason    player.EndReason
	emitEnded bool
	position  time.Duration
}

// Backend streams cached audio files through ffmpeg and a gopus encoder into
// one guild's voice connection, emitting track lifecycle events. It
// implements player.Backend.
type Backend struct {
	vc         *discordgo.VoiceConnection
	downloader Downloader
	events     chan player.Event

	mu      sync.Mutex
	active  *activeStream
	closed  bool
	streams sync.WaitGroup
}

// New creates a backend bound to one voice connection.
func New(vc *discordgo.VoiceConnection, downloader Downloader) *Backend {
	return &Backend{
		vc:         vc,
		downloader: downloader,
		events:     make(chan player.Event, 16),
	}
}

// Events returns the lifecycle event channel. Closed by Close.
func (b *Backend) Events() <-chan player.Event {
	return b.events
}

// Play begins streaming a track from its start.
func (b *Backend) Play(t track.Track) error {
	filename, err := b.downloader.EnsureAudio(t.ID)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return errors.New("backend is closed")
	}
	b.stopLocked(player.ReasonReplaced, true)
	b.startLocked(t, filename, 0, true)
	return nil
}

// Stop ends the current track. The stream loop emits exactly one ended event
// with reason STOPPED; stopping an idle backend is a no-op.
func (b *Backend) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopLocked(player.ReasonStopped, true)
	return nil
}

// Seek restarts the stream at the given position without emitting lifecycle
// events; as far as the session is concerned the same track keeps playing.
func (b *Backend) Seek(position time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active == nil {
		return errors.New("nothing is playing")
	}
	t := b.active.track

	filename, err := b.downloader.EnsureAudio(t.ID)
	if err != nil {
		return err
	}

	b.stopLocked(player.ReasonReplaced, false)
	b.startLocked(t, filename, position, false)
	return nil
}

// Position returns the playback position within the current track.
func (b *Backend) Position() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active == nil {
		return 0
	}
	return b.active.position
}

// Close stops streaming without emitting further events and closes the event
// channel once every stream goroutine has drained.
func (b *Backend) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.stopLocked(player.ReasonStopped, false)
	b.mu.Unlock()

	b.streams.Wait()
	close(b.events)
}

// stopLocked signals the active stream loop to exit. Caller holds the mutex.
func (b *Backend) stopLocked(reason player.EndReason, emitEnded bool) {
	if b.active == nil || b.active.stopped {
		return
	}
	b.active.reason = reason
	b.active.emitEnded = emitEnded
	b.active.stopped = true
	close(b.active.stop)
	b.active = nil
}

// startLocked launches the stream loop for a track. Caller holds the mutex.
func (b *Backend) startLocked(t track.Track, filename string, offset time.Duration, emitStarted bool) {
	stream := &activeStream{
		track:     t,
		stop:      make(chan struct{}),
		reason:    player.ReasonFinished,
		emitEnded: true,
		position:  offset,
	}
	b.active = stream

	b.streams.Add(1)
	go func() {
		defer b.streams.Done()

		if emitStarted {
			b.events <- player.Event{Type: player.EventTrackStarted, Track: t}
		}

		if err := b.streamFile(filename, stream); err != nil {
			log.WithError(err).WithFields(log.Fields{"track": t.Title}).Error("Playback stream error")
		}

		b.mu.Lock()
		reason := stream.reason
		emit := stream.emitEnded
		if b.active == stream {
			b.active = nil
		}
		b.mu.Unlock()

		if emit {
			b.events <- player.Event{Type: player.EventTrackEnded, Track: t, Reason: reason}
		}
	}()
}

// streamFile pipes the file through ffmpeg into the opus encoder and the
// voice connection until EOF or a stop signal.
func (b *Backend) streamFile(filename string, stream *activeStream) error {
	if !b.vc.Ready {
		for i := 0; i < 20; i++ {
			time.Sleep(250 * time.Millisecond)
			if b.vc.Ready {
				break
			}
		}
		if !b.vc.Ready {
			return fmt.Errorf("voice connection never became ready")
		}
	}

	b.vc.Speaking(true)
	defer b.vc.Speaking(false)

	args := []string{}
	if stream.position > 0 {
		args = append(args, "-ss", fmt.Sprintf("%.3f", stream.position.Seconds()))
	}
	args = append(args,
		"-i", filename,
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", fmt.Sprintf("%d", channels),
		"pipe:1",
	)
	cmd := exec.Command("ffmpeg", args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	defer func() {
		cmd.Process.Kill()
		cmd.Wait()
	}()

	encoder, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		return err
	}

	pcmBuffer := make([]byte, frameSize*channels*2)
	pcmCache := []int16{}
	const frameDuration = 20 * time.Millisecond

	for {
		select {
		case <-stream.stop:
			return nil
		default:
		}

		n, err := stdout.Read(pcmBuffer)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		for i := 0; i+1 < n; i += 2 {
			sample := int16(pcmBuffer[i]) | int16(pcmBuffer[i+1])<<8
			pcmCache = append(pcmCache, sample)
		}

		for len(pcmCache) >= frameSize*channels {
			frame := pcmCache[:frameSize*channels]
			pcmCache = pcmCache[frameSize*channels:]

			opusFrame, err := encoder.Encode(frame, frameSize, maxOpusFrameSize)
			if err != nil {
				return err
			}
			if len(opusFrame) == 0 {
				continue
			}

			select {
			case b.vc.OpusSend <- opusFrame:
				b.mu.Lock()
				stream.position += frameDuration
				b.mu.Unlock()
			case <-time.After(100 * time.Millisecond):
				return fmt.Errorf("timeout sending opus frame")
			case <-stream.stop:
				return nil
			}
		}
	}
}
