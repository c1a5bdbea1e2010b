package haptic

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/hammamikhairi/deepwork/internal/domain"
	"github.com/hammamikhairi/deepwork/internal/logger"
)

// Compile-time interface check.
var _ domain.Haptics = (*Tone)(nil)

// Tone plays a synthesised pulse pattern on the default audio device.
type Tone struct {
	ctx *oto.Context
	log *logger.Logger
	pcm []byte

	mu     sync.Mutex
	active *oto.Player // currently playing, nil when idle
}

// NewTone initialises the system audio context and pre-renders pattern.
// Returns an error wrapping domain.ErrNoAudio if the device is unavailable.
func NewTone(pattern Pattern, log *logger.Logger) (*Tone, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNoAudio, err)
	}
	<-readyChan

	log.Debug("tone player initialized (rate=%d, pattern=%v)", SampleRate, pattern)
	return &Tone{
		ctx: ctx,
		log: log,
		pcm: synthesize(pattern, SampleRate, toneHz),
	}, nil
}

// Buzz plays the pattern once. Blocks until playback finishes or ctx is
// done, whichever comes first.
func (t *Tone) Buzz(ctx context.Context) error {
	player := t.ctx.NewPlayer(bytes.NewReader(t.pcm))

	t.mu.Lock()
	if t.active != nil {
		// A boundary fired while the previous buzz is still going.
		t.active.Pause()
	}
	t.active = player
	t.mu.Unlock()

	player.Play()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			t.release(player)
			return ctx.Err()
		case <-ticker.C:
		}
	}

	t.release(player)
	return nil
}

func (t *Tone) release(player *oto.Player) {
	t.mu.Lock()
	if t.active == player {
		t.active = nil
	}
	t.mu.Unlock()
	if err := player.Close(); err != nil {
		t.log.Debug("closing player: %v", err)
	}
}
