//go:build linux

// Package mpris exposes the preview transport on the session bus so
// desktop media keys can drive the trimmer's play/pause.
package mpris

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"cliptrim/internal/logging"
)

const (
	busName         = "org.mpris.MediaPlayer2.cliptrim"
	objectPath      = "/org/mpris/MediaPlayer2"
	playerInterface = "org.mpris.MediaPlayer2.Player"
)

// Transport is the slice of the playback synchronizer exported on the
// bus.
type Transport interface {
	Play() error
	Pause()
	Toggle() error
	Playing() bool
}

type handler struct {
	transport Transport
	log       *logging.Logger
}

func (h *handler) Play() *dbus.Error {
	if err := h.transport.Play(); err != nil {
		h.log.Warn("mpris play refused", "error", err)
	}
	return nil
}

func (h *handler) Pause() *dbus.Error {
	h.transport.Pause()
	return nil
}

func (h *handler) PlayPause() *dbus.Error {
	if err := h.transport.Toggle(); err != nil {
		h.log.Warn("mpris toggle refused", "error", err)
	}
	return nil
}

func (h *handler) Stop() *dbus.Error {
	h.transport.Pause()
	return nil
}

// Service owns the bus connection for the lifetime of the window.
type Service struct {
	conn *dbus.Conn
}

// Start claims the MPRIS name and exports the transport. Failure is
// expected on systems without a session bus; callers treat it as
// best-effort.
func Start(transport Transport, log *logging.Logger) (*Service, error) {
	if log == nil {
		log = logging.Default()
	}
	log = log.WithComponent("mpris")

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}

	h := &handler{transport: transport, log: log}
	if err := conn.Export(h, objectPath, playerInterface); err != nil {
		conn.Close()
		return nil, fmt.Errorf("export player interface: %w", err)
	}

	reply, err := conn.RequestName(busName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, fmt.Errorf("bus name %s already owned", busName)
	}

	log.Debug("mpris surface up", "name", busName)
	return &Service{conn: conn}, nil
}

// Close releases the bus name and connection.
func (s *Service) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	_, _ = s.conn.ReleaseName(busName)
	return s.conn.Close()
}
