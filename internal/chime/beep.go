// Package chime synthesizes and plays the short beep rung when a phase ends.
package chime

import (
	"encoding/binary"
	"math"
	"time"
)

// Audio parameters of the synthesized beep.
const (
	SampleRate   = 44100
	ChannelCount = 1
	BitDepth     = 16
)

// Tone describes one beep: a square wave whose gain ramps exponentially
// from StartGain to EndGain over Length.
type Tone struct {
	Frequency float64
	Length    time.Duration
	StartGain float64
	EndGain   float64
}

// DefaultTone is the 1800 Hz, 50 ms click used for phase changes.
var DefaultTone = Tone{
	Frequency: 1800,
	Length:    50 * time.Millisecond,
	StartGain: 0.15,
	EndGain:   0.001,
}

// Synthesize renders the tone as mono signed 16-bit little-endian PCM.
func (t Tone) Synthesize(sampleRate int) []byte {
	n := int(math.Round(float64(sampleRate) * t.Length.Seconds()))
	if n <= 0 || t.StartGain <= 0 || t.EndGain <= 0 {
		return nil
	}

	pcm := make([]byte, n*2)
	ratio := t.EndGain / t.StartGain
	for i := 0; i < n; i++ {
		progress := float64(i) / float64(n)
		gain := t.StartGain * math.Pow(ratio, progress)

		// Square wave: high for the first half of each cycle.
		phase := math.Mod(float64(i)*t.Frequency/float64(sampleRate), 1)
		sign := 1.0
		if phase >= 0.5 {
			sign = -1.0
		}

		sample := int16(sign * gain * math.MaxInt16)
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(sample))
	}
	return pcm
}
