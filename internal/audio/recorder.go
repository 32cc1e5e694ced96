// Package audio records the sound output of the machine. The buzzer sounds a
// square wave while the sound timer is nonzero.
package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Output format of recordings.
const (
	SampleRate = 44100
	BitDepth   = 16
	Channels   = 1

	// ToneFrequency is the buzzer pitch in Hz.
	ToneFrequency = 440
	amplitude     = 0x2000

	wavFormatPCM = 1
)

// ErrClosed is returned when writing to a closed recorder.
var ErrClosed = errors.New("recorder closed")

// Recorder writes the buzzer output as a mono PCM WAV stream. Every frame
// appends the samples of one timer period, a tone while the buzzer sounds and
// silence otherwise.
type Recorder struct {
	closer          io.Closer
	encoder         *wav.Encoder
	buf             *audio.IntBuffer
	samplesPerFrame int
	halfPeriod      int
	phase           int
	frames          int
	closed          bool
}

// Create creates the file and returns a recorder writing to it, frameRate is
// the number of frames per second.
func Create(path string, frameRate int) (*Recorder, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating file %s: %w", path, err)
	}
	r, err := New(file, frameRate)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	r.closer = file
	return r, nil
}

// New returns a recorder writing to the given stream. The stream is not
// closed by the recorder.
func New(w io.WriteSeeker, frameRate int) (*Recorder, error) {
	if frameRate <= 0 || frameRate > SampleRate {
		return nil, fmt.Errorf("invalid frame rate %d", frameRate)
	}

	samples := SampleRate / frameRate
	return &Recorder{
		encoder: wav.NewEncoder(w, SampleRate, BitDepth, Channels, wavFormatPCM),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: Channels, SampleRate: SampleRate},
			Data:           make([]int, samples),
			SourceBitDepth: BitDepth,
		},
		samplesPerFrame: samples,
		halfPeriod:      SampleRate / ToneFrequency / 2,
	}, nil
}

// Frame appends one frame of audio, sounding the buzzer if active is set.
func (r *Recorder) Frame(active bool) error {
	if r.closed {
		return ErrClosed
	}

	for i := range r.buf.Data {
		if !active {
			r.buf.Data[i] = 0
			continue
		}
		if (r.phase/r.halfPeriod)%2 == 0 {
			r.buf.Data[i] = amplitude
		} else {
			r.buf.Data[i] = -amplitude
		}
		r.phase++
	}
	if !active {
		r.phase = 0
	}

	if err := r.encoder.Write(r.buf); err != nil {
		return fmt.Errorf("writing audio frame: %w", err)
	}
	r.frames++
	return nil
}

// Frames returns the number of frames recorded.
func (r *Recorder) Frames() int {
	return r.frames
}

// Close finishes the WAV header and closes the file if the recorder created
// it.
func (r *Recorder) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	if err := r.encoder.Close(); err != nil {
		return fmt.Errorf("finishing wav stream: %w", err)
	}
	if r.closer != nil {
		if err := r.closer.Close(); err != nil {
			return fmt.Errorf("closing file: %w", err)
		}
	}
	return nil
}
