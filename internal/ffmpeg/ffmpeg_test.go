package ffmpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullDecodeClockParsing(t *testing.T) {
	stderr := `frame=  120 fps= 60 q=-0.0 size=N/A time=00:00:02.00 bitrate=N/A speed=3.9x
frame=  290 fps= 58 q=-0.0 Lsize=N/A time=00:01:12.48 bitrate=N/A speed=4.1x`

	matches := nullDecodeTimeRe.FindAllStringSubmatch(stderr, -1)
	require.Len(t, matches, 2)

	last := matches[len(matches)-1]
	assert.Equal(t, "00", last[1])
	assert.Equal(t, "01", last[2])
	assert.Equal(t, "12.48", last[3])
}

func TestNewDefaultsToPathBinaries(t *testing.T) {
	a := New("", "")
	assert.Equal(t, "ffmpeg", a.ffmpeg)
	assert.Equal(t, "ffprobe", a.ffprobe)

	a = New("/opt/ffmpeg/bin/ffmpeg", "/opt/ffmpeg/bin/ffprobe")
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", a.ffmpeg)
}
