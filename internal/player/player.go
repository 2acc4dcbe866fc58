// Package player drives the preview clock and keeps it looping inside
// the committed selection.
package player

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrPlaybackRejected is returned when the underlying player refuses to
// start (the autoplay-rejection analogue). The widget stays paused and
// waits for an explicit user play.
var ErrPlaybackRejected = errors.New("playback rejected")

// PlaybackError wraps a player start failure.
type PlaybackError struct {
	Err error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("playback: %v", e.Err)
}

func (e *PlaybackError) Unwrap() error {
	return e.Err
}

// Player abstracts the preview media element. The Synchronizer is its
// single owner; other components command playback only through the
// Synchronizer.
type Player interface {
	// Play starts the clock from the current position.
	Play() error
	// Pause stops the clock, keeping the position.
	Pause()
	// Seek moves the position, playing or not.
	Seek(seconds float64)
	// CurrentTime reports the position in seconds.
	CurrentTime() float64
	// SetMuted toggles audio without affecting timing.
	SetMuted(muted bool)
	// Muted reports the audio toggle.
	Muted() bool
}

// ClockPlayer is a wall-clock backed Player used for preview timing
// when no decoding pipeline is attached. The clock source is injectable
// for tests.
type ClockPlayer struct {
	mu       sync.Mutex
	now      func() time.Time
	position float64
	playing  bool
	since    time.Time
	muted    bool
}

// NewClockPlayer returns a paused player at position zero.
func NewClockPlayer(now func() time.Time) *ClockPlayer {
	if now == nil {
		now = time.Now
	}
	return &ClockPlayer{now: now}
}

func (p *ClockPlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		p.playing = true
		p.since = p.now()
	}
	return nil
}

func (p *ClockPlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		p.position += p.now().Sub(p.since).Seconds()
		p.playing = false
	}
}

func (p *ClockPlayer) Seek(seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position = seconds
	if p.playing {
		p.since = p.now()
	}
}

func (p *ClockPlayer) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		return p.position + p.now().Sub(p.since).Seconds()
	}
	return p.position
}

func (p *ClockPlayer) SetMuted(muted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = muted
}

func (p *ClockPlayer) Muted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}
