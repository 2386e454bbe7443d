// Package audio turns audio files and live microphone input into the
// mono float64 PCM streams the fingerprinting pipeline consumes.
package audio

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
)

// Clip is a decoded audio file: mono samples in [-1, 1] and the sample
// rate they were decoded at.
type Clip struct {
	PCM        []float64
	SampleRate int
	Duration   time.Duration
}

// DecodeFile reads path and decodes it to mono PCM, dispatching on file
// extension. Stereo sources are downmixed by averaging channels.
func DecodeFile(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audio: open %s: %w", path, err)
	}
	defer f.Close()

	var streamer beep.StreamSeekCloser
	var format beep.Format

	switch ext := strings.ToLower(extOf(path)); ext {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	default:
		return nil, fmt.Errorf("audio: unsupported file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("audio: decode %s: %w", path, err)
	}
	defer streamer.Close()

	pcm := downmix(streamer)
	sampleRate := int(format.SampleRate)

	return &Clip{
		PCM:        pcm,
		SampleRate: sampleRate,
		Duration:   time.Duration(len(pcm)) * time.Second / time.Duration(sampleRate),
	}, nil
}

// downmix drains streamer into a mono slice, averaging the two channels
// of each frame (a no-op average when the source is already mono, since
// beep presents mono sources as equal left/right samples).
func downmix(streamer beep.Streamer) []float64 {
	buf := make([][2]float64, 4096)
	var pcm []float64
	for {
		n, ok := streamer.Stream(buf)
		for i := 0; i < n; i++ {
			pcm = append(pcm, (buf[i][0]+buf[i][1])/2)
		}
		if !ok {
			break
		}
	}
	return pcm
}

func extOf(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return ""
	}
	return path[i:]
}
