package player

import "sync"

// Synchronizer owns the preview Player and keeps its clock looping
// inside the selection window. Tick is expected once per rendered
// frame; the frame-tick poll is deliberately kept behind this type so a
// native time-update callback could replace it without touching
// callers.
type Synchronizer struct {
	mu sync.Mutex

	player         Player
	sourceDuration float64
	loopStart      float64
	loopEnd        float64
	playhead       float64
	playing        bool
}

// NewSynchronizer wraps the player. The loop window is degenerate until
// SetLoop is called.
func NewSynchronizer(p Player) *Synchronizer {
	return &Synchronizer{player: p}
}

// SetSourceDuration installs the probed duration used to clamp seeks.
func (s *Synchronizer) SetSourceDuration(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sourceDuration = seconds
}

// SetLoop moves the loop window to the given selection. The playhead is
// left alone; it snaps at the next Tick or Play.
func (s *Synchronizer) SetLoop(startOffset, duration float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loopStart = startOffset
	s.loopEnd = startOffset + duration
}

// Play starts playback. Starting from outside the loop window snaps the
// position to the loop start first. A refusal from the player surfaces
// as *PlaybackError and leaves the synchronizer paused.
func (s *Synchronizer) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos := s.player.CurrentTime()
	if pos < s.loopStart || pos >= s.loopEnd {
		s.player.Seek(s.loopStart)
		s.playhead = s.loopStart
	}
	if err := s.player.Play(); err != nil {
		s.playing = false
		return &PlaybackError{Err: err}
	}
	s.playing = true
	return nil
}

// Pause stops playback, keeping the position.
func (s *Synchronizer) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player.Pause()
	s.playing = false
}

// Toggle flips between playing and paused.
func (s *Synchronizer) Toggle() error {
	if s.Playing() {
		s.Pause()
		return nil
	}
	return s.Play()
}

// SeekTo repositions the playhead, clamped to the source bounds. Used
// for bare taps and for drag commits.
func (s *Synchronizer) SeekTo(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seconds < 0 {
		seconds = 0
	}
	if s.sourceDuration > 0 && seconds > s.sourceDuration {
		seconds = s.sourceDuration
	}
	s.player.Seek(seconds)
	s.playhead = seconds
}

// Tick reads the player clock, loops it back to the window start when
// the window end has been reached or passed, and returns the published
// playhead.
func (s *Synchronizer) Tick() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing {
		return s.playhead
	}
	pos := s.player.CurrentTime()
	if pos >= s.loopEnd {
		s.player.Seek(s.loopStart)
		pos = s.loopStart
	}
	s.playhead = pos
	return s.playhead
}

// Playhead returns the last published position without advancing it.
func (s *Synchronizer) Playhead() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playhead
}

// Playing reports whether the loop is running.
func (s *Synchronizer) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// SetMuted toggles audio. Orthogonal to selection and timing.
func (s *Synchronizer) SetMuted(muted bool) {
	s.player.SetMuted(muted)
}

// Muted reports the audio toggle.
func (s *Synchronizer) Muted() bool {
	return s.player.Muted()
}
