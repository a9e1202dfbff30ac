// Package audio plays the short cue that confirms a selection.
package audio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"go.uber.org/zap"
)

// DefaultSampleRate is the default sample rate for audio playback.
const DefaultSampleRate = beep.SampleRate(44100)

// ErrNotInitialized is returned when playing before Init.
var ErrNotInitialized = errors.New("audio not initialized")

// Player holds the decoded cue and plays it through a mixer so overlapping
// cues do not cut each other off.
type Player struct {
	mu sync.Mutex

	initialized bool
	sampleRate  beep.SampleRate
	mixer       *beep.Mixer
	cue         *beep.Buffer
	volume      float64 // 0-1

	log *zap.Logger
}

// New creates a player with the built-in chime as its cue.
func New(log *zap.Logger) *Player {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Player{
		sampleRate: DefaultSampleRate,
		mixer:      &beep.Mixer{},
		volume:     1,
		log:        log,
	}
	p.cue = bufferOf(chime(p.sampleRate), p.sampleRate)
	return p
}

// Init opens the audio device.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		return nil
	}
	if err := speaker.Init(p.sampleRate, p.sampleRate.N(time.Second/30)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Close releases the audio device.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	p.initialized = false
}

// LoadCueFile replaces the cue with a WAV file.
func (p *Player) LoadCueFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open cue: %w", err)
	}
	defer f.Close()
	return p.LoadCue(f)
}

// LoadCue replaces the cue with WAV data, resampled to the output rate.
func (p *Player) LoadCue(r io.Reader) error {
	streamer, format, err := wav.Decode(r)
	if err != nil {
		return fmt.Errorf("decode wav: %w", err)
	}
	defer streamer.Close()

	var s beep.Streamer = streamer
	if format.SampleRate != p.sampleRate {
		s = beep.Resample(4, format.SampleRate, p.sampleRate, streamer)
	}
	buf := bufferOf(s, p.sampleRate)
	if buf.Len() == 0 {
		return errors.New("decode wav: no samples")
	}

	p.mu.Lock()
	p.cue = buf
	p.mu.Unlock()
	p.log.Debug("selection cue loaded", zap.Duration("length", p.sampleRate.D(buf.Len())))
	return nil
}

// PlayCue starts the cue at the current volume.
func (p *Player) PlayCue() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return ErrNotInitialized
	}
	if p.volume <= 0 {
		return nil
	}
	speaker.Lock()
	p.mixer.Add(&effects.Volume{
		Streamer: p.cue.Streamer(0, p.cue.Len()),
		Base:     2,
		Volume:   volumeToDb(p.volume) / 6.0206, // dB to powers of two
	})
	speaker.Unlock()
	return nil
}

// SetVolume sets the cue volume (0.0 to 1.0).
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = clamp(v, 0, 1)
}

// Volume returns the cue volume.
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// CueLength returns the cue duration.
func (p *Player) CueLength() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sampleRate.D(p.cue.Len())
}

func bufferOf(s beep.Streamer, sr beep.SampleRate) *beep.Buffer {
	buf := beep.NewBuffer(beep.Format{SampleRate: sr, NumChannels: 2, Precision: 2})
	buf.Append(s)
	return buf
}

// chime is a two-partial ping with an exponential decay.
func chime(sr beep.SampleRate) beep.Streamer {
	const (
		length = 180 * time.Millisecond
		f1     = 880.0
		f2     = 1320.0
		decay  = 18.0
	)
	total := sr.N(length)
	i := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if i >= total {
			return 0, false
		}
		n := 0
		for ; n < len(samples) && i < total; n++ {
			t := float64(i) / float64(sr)
			v := (0.6*math.Sin(2*math.Pi*f1*t) + 0.3*math.Sin(2*math.Pi*f2*t)) * math.Exp(-decay*t)
			samples[n] = [2]float64{v, v}
			i++
		}
		return n, true
	})
}

// volumeToDb converts a 0-1 volume to decibels: 1 is 0 dB, 0.5 about -6 dB.
func volumeToDb(vol float64) float64 {
	if vol <= 0 {
		return -100
	}
	return 20 * math.Log10(vol)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
