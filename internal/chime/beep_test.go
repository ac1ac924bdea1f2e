package chime

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/hammamikhairi/pomotech/internal/logger"
)

func sampleAt(pcm []byte, i int) int16 {
	return int16(binary.LittleEndian.Uint16(pcm[i*2:]))
}

func TestDefaultToneShape(t *testing.T) {
	pcm := DefaultTone.Synthesize(SampleRate)

	wantSamples := SampleRate / 20 // 50 ms
	if len(pcm) != wantSamples*2 {
		t.Fatalf("expected %d bytes, got %d", wantSamples*2, len(pcm))
	}

	first := sampleAt(pcm, 0)
	startGain := 0.15
	wantFirst := int16(startGain * math.MaxInt16)
	if first != wantFirst {
		t.Fatalf("expected first sample %d, got %d", wantFirst, first)
	}

	last := sampleAt(pcm, wantSamples-1)
	limit := 0.0012 * math.MaxInt16
	if float64(abs(int(last))) > limit {
		t.Fatalf("expected the tone to decay near 0.001 gain, last sample %d", last)
	}
}

func TestToneIsSquareAtFrequency(t *testing.T) {
	tone := Tone{Frequency: 1000, Length: 10 * time.Millisecond, StartGain: 0.5, EndGain: 0.5}
	pcm := tone.Synthesize(8000)

	gain := 0.5
	want := int(gain * math.MaxInt16)

	// 8 samples per cycle: 4 high, 4 low.
	for i := 0; i < 16; i++ {
		s := sampleAt(pcm, i)
		high := i%8 < 4
		if high && s <= 0 || !high && s >= 0 {
			t.Fatalf("sample %d has wrong sign: %d", i, s)
		}
		if abs(int(s)) != want {
			t.Fatalf("sample %d: constant gain expected, got %d", i, s)
		}
	}
}

func TestSynthesizeDegenerate(t *testing.T) {
	if pcm := (Tone{Frequency: 440}).Synthesize(SampleRate); pcm != nil {
		t.Fatalf("zero-length tone produced %d bytes", len(pcm))
	}
	if pcm := (Tone{Frequency: 440, Length: time.Second}).Synthesize(SampleRate); pcm != nil {
		t.Fatal("zero-gain tone should produce nothing")
	}
}

func TestSilentRinger(t *testing.T) {
	var r Ringer = NewSilent(logger.New(logger.LevelOff, nil))
	if err := r.Ring(); err != nil {
		t.Fatalf("silent ring: %v", err)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
