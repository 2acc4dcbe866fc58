package player

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances only when told to.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestSync(t *testing.T) (*Synchronizer, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Unix(1000, 0)}
	s := NewSynchronizer(NewClockPlayer(clock.now))
	s.SetSourceDuration(30)
	s.SetLoop(4, 6) // window [4, 10)
	return s, clock
}

func TestPlaySnapsIntoWindow(t *testing.T) {
	s, _ := newTestSync(t)
	s.SeekTo(20)
	require.NoError(t, s.Play())
	assert.InDelta(t, 4.0, s.Tick(), 1e-9)
}

func TestPlayInsideWindowKeepsPosition(t *testing.T) {
	s, clock := newTestSync(t)
	s.SeekTo(5)
	require.NoError(t, s.Play())
	clock.advance(2 * time.Second)
	assert.InDelta(t, 7.0, s.Tick(), 1e-9)
}

func TestTickLoopsAtWindowEnd(t *testing.T) {
	s, clock := newTestSync(t)
	s.SeekTo(4)
	require.NoError(t, s.Play())

	clock.advance(5 * time.Second)
	assert.InDelta(t, 9.0, s.Tick(), 1e-9)

	// Cross the end; the clock must wrap back to the loop start.
	clock.advance(1500 * time.Millisecond)
	assert.InDelta(t, 4.0, s.Tick(), 1e-9)

	clock.advance(1 * time.Second)
	assert.InDelta(t, 5.0, s.Tick(), 1e-9)
}

func TestPauseFreezesPlayhead(t *testing.T) {
	s, clock := newTestSync(t)
	s.SeekTo(4)
	require.NoError(t, s.Play())
	clock.advance(2 * time.Second)
	s.Tick()
	s.Pause()

	clock.advance(10 * time.Second)
	assert.InDelta(t, 6.0, s.Tick(), 1e-9)
	assert.False(t, s.Playing())
}

func TestSeekToClampsToSource(t *testing.T) {
	s, _ := newTestSync(t)
	s.SeekTo(99)
	assert.InDelta(t, 30.0, s.Playhead(), 1e-9)
	s.SeekTo(-1)
	assert.InDelta(t, 0.0, s.Playhead(), 1e-9)
}

// rejectingPlayer refuses to start, like a browser denying autoplay.
type rejectingPlayer struct {
	*ClockPlayer
}

func (p *rejectingPlayer) Play() error {
	return errors.New("denied")
}

func TestPlayRejectionLeavesPaused(t *testing.T) {
	p := &rejectingPlayer{ClockPlayer: NewClockPlayer(nil)}
	s := NewSynchronizer(p)
	s.SetLoop(0, 5)

	err := s.Play()
	var perr *PlaybackError
	require.ErrorAs(t, err, &perr)
	assert.False(t, s.Playing())
}

func TestMuteIsOrthogonal(t *testing.T) {
	s, clock := newTestSync(t)
	s.SeekTo(5)
	require.NoError(t, s.Play())
	s.SetMuted(true)
	clock.advance(time.Second)
	assert.InDelta(t, 6.0, s.Tick(), 1e-9)
	assert.True(t, s.Muted())
}
