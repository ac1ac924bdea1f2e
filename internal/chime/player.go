package chime

import (
	"bytes"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/hammamikhairi/pomotech/internal/logger"
)

// Ringer rings the phase-change chime.
type Ringer interface {
	Ring() error
}

// Player handles playback of PCM data via oto.
type Player struct {
	ctx  *oto.Context
	log  *logger.Logger
	tone []byte // pre-rendered DefaultTone

	mu     sync.Mutex
	active *oto.Player // currently playing, nil when idle
}

// NewPlayer creates an audio player. Initializes the system audio context.
// Returns an error if the audio device is unavailable. oto allows one
// context per process, so create a single Player.
func NewPlayer(log *logger.Logger) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-readyChan

	log.Debug("audio player initialized (rate=%d, channels=%d)", SampleRate, ChannelCount)
	return &Player{ctx: ctx, log: log, tone: DefaultTone.Synthesize(SampleRate)}, nil
}

// Ring plays the default tone. Blocks until it has finished.
func (p *Player) Ring() error {
	return p.Play(p.tone)
}

// Play plays raw PCM synchronously. Blocks until playback finishes or Stop
// is called. A new Play interrupts the previous one.
func (p *Player) Play(pcm []byte) error {
	player := p.ctx.NewPlayer(bytes.NewReader(pcm))

	p.mu.Lock()
	if p.active != nil {
		p.active.Pause()
	}
	p.active = player
	p.mu.Unlock()

	player.Play()
	p.log.Debug("audio player: playing %d bytes of PCM", len(pcm))

	for player.IsPlaying() {
		time.Sleep(5 * time.Millisecond)
	}

	p.mu.Lock()
	if p.active == player {
		p.active = nil
	}
	p.mu.Unlock()

	return player.Close()
}

// Stop interrupts the currently playing audio, if any. Safe to call
// concurrently and when nothing is playing.
func (p *Player) Stop() {
	p.mu.Lock()
	active := p.active
	p.mu.Unlock()

	if active != nil {
		active.Pause()
		p.log.Debug("audio player: interrupted")
	}
}

// Silent is a Ringer that only logs. Used when sound is disabled or the
// audio device cannot be opened.
type Silent struct {
	log *logger.Logger
}

// NewSilent creates a silent ringer.
func NewSilent(log *logger.Logger) *Silent {
	return &Silent{log: log}
}

// Ring does nothing.
func (s *Silent) Ring() error {
	s.log.Debug("chime (silent)")
	return nil
}
