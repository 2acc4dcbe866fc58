//go:build !linux

package mpris

import (
	"errors"

	"cliptrim/internal/logging"
)

// Transport is the slice of the playback synchronizer exported on the
// bus.
type Transport interface {
	Play() error
	Pause()
	Toggle() error
	Playing() bool
}

// Service is a no-op on platforms without a session bus.
type Service struct{}

// Start reports that no media-key integration exists on this platform.
func Start(transport Transport, log *logging.Logger) (*Service, error) {
	return nil, errors.New("mpris unsupported on this platform")
}

// Close is a no-op.
func (s *Service) Close() error { return nil }
