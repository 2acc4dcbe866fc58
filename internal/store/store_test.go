package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStripRoundTrip(t *testing.T) {
	s := openTestStore(t)
	digest := []byte{0x01, 0x02, 0x03}
	frames := [][]byte{[]byte("frame-0"), []byte("frame-1"), []byte("frame-2")}

	require.NoError(t, s.PutStrip(digest, 480, frames))

	got, ok, err := s.GetStrip(digest, 480)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, frames, got)
}

func TestStripMiss(t *testing.T) {
	s := openTestStore(t)
	_, ok, err := s.GetStrip([]byte{0xAA}, 480)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStripKeyedByWidth(t *testing.T) {
	s := openTestStore(t)
	digest := []byte{0x01}
	require.NoError(t, s.PutStrip(digest, 480, [][]byte{[]byte("a")}))

	_, ok, err := s.GetStrip(digest, 960)
	require.NoError(t, err)
	assert.False(t, ok, "strips are keyed by display width")
}

func TestStripReplace(t *testing.T) {
	s := openTestStore(t)
	digest := []byte{0x01}
	require.NoError(t, s.PutStrip(digest, 480, [][]byte{[]byte("a"), []byte("b")}))
	require.NoError(t, s.PutStrip(digest, 480, [][]byte{[]byte("c")}))

	got, ok, err := s.GetStrip(digest, 480)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, [][]byte{[]byte("c")}, got)
}

func TestPrefs(t *testing.T) {
	s := openTestStore(t)

	v, err := s.GetPref(PrefMuted, "false")
	require.NoError(t, err)
	assert.Equal(t, "false", v)

	require.NoError(t, s.SetPref(PrefMuted, "true"))
	v, err = s.GetPref(PrefMuted, "false")
	require.NoError(t, err)
	assert.Equal(t, "true", v)
}
