package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// framesPerBuffer is the portaudio callback chunk size.
const framesPerBuffer = 1024

// maxBufferSeconds bounds how much trailing audio Recorder retains.
const maxBufferSeconds = 10

// Recorder accumulates live microphone input into a ring buffer. It
// samples at a caller-chosen rate and hands fresh windows of audio to a
// caller-supplied callback, keeping this package independent of the
// matching logic that consumes those windows.
type Recorder struct {
	stream      *portaudio.Stream
	sampleRate  int
	buffer      []float64
	isRecording bool

	// onSegment is called after every audio callback once the buffer
	// holds at least windowFrames samples, with a copy of the most recent
	// windowFrames samples. Each call runs on a new goroutine, so the
	// audio thread never waits for it.
	onSegment    func(segment []float64)
	windowFrames int
}

// NewRecorder initializes PortAudio and returns a Recorder sampling at
// sampleRate Hz. windowSeconds controls how much trailing audio is
// handed to onSegment each time it fires.
func NewRecorder(sampleRate int, windowSeconds float64, onSegment func(segment []float64)) (*Recorder, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("audio: initialize portaudio: %w", err)
	}
	return &Recorder{
		sampleRate:   sampleRate,
		windowFrames: int(float64(sampleRate) * windowSeconds),
		onSegment:    onSegment,
	}, nil
}

// Start opens the default input device and begins recording.
func (r *Recorder) Start() error {
	if r.isRecording {
		return fmt.Errorf("audio: recording already in progress")
	}

	device, err := portaudio.DefaultInputDevice()
	if err != nil {
		return fmt.Errorf("audio: default input device: %w", err)
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: 1,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      float64(r.sampleRate),
		FramesPerBuffer: framesPerBuffer,
	}

	stream, err := portaudio.OpenStream(params, r.callback)
	if err != nil {
		return fmt.Errorf("audio: open stream: %w", err)
	}
	r.stream = stream
	r.isRecording = true

	if err := r.stream.Start(); err != nil {
		return fmt.Errorf("audio: start stream: %w", err)
	}
	return nil
}

func (r *Recorder) callback(in []float32) {
	if len(in) == 0 {
		return
	}

	for _, s := range in {
		r.buffer = append(r.buffer, float64(s))
	}

	maxSamples := r.sampleRate * maxBufferSeconds
	if len(r.buffer) > maxSamples {
		drop := len(r.buffer) - maxSamples
		copy(r.buffer, r.buffer[drop:])
		r.buffer = r.buffer[:maxSamples]
	}

	if r.onSegment != nil && len(r.buffer) >= r.windowFrames {
		segment := make([]float64, r.windowFrames)
		copy(segment, r.buffer[len(r.buffer)-r.windowFrames:])
		go r.onSegment(segment)
	}
}

// Stop halts recording and closes the stream.
func (r *Recorder) Stop() error {
	if !r.isRecording {
		return fmt.Errorf("audio: no recording in progress")
	}
	r.isRecording = false

	if r.stream == nil {
		return nil
	}
	if err := r.stream.Stop(); err != nil {
		return fmt.Errorf("audio: stop stream: %w", err)
	}
	return r.stream.Close()
}

// Close stops recording if active and releases PortAudio resources.
func (r *Recorder) Close() error {
	if r.isRecording {
		r.Stop()
	}
	return portaudio.Terminate()
}
