package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cliptrim/internal/ffmpeg"
)

type fakeReader struct {
	info       ffmpeg.FormatInfo
	infoErr    error
	measured   float64
	measureErr error
	measures   int
}

func (r *fakeReader) ProbeFormat(ctx context.Context, path string) (ffmpeg.FormatInfo, error) {
	return r.info, r.infoErr
}

func (r *fakeReader) MeasureDuration(ctx context.Context, path string) (float64, error) {
	r.measures++
	return r.measured, r.measureErr
}

func resolvedTestSource(t *testing.T, kind SourceKind, hint float64) *Source {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.webm")
	require.NoError(t, os.WriteFile(path, []byte("not a real container"), 0o644))
	src := &Source{Kind: kind, URL: path, DurationHint: hint}
	require.NoError(t, src.Resolve(context.Background(), nil))
	return src
}

func TestProbeDirectMetadata(t *testing.T) {
	r := &fakeReader{info: ffmpeg.FormatInfo{
		DurationSeconds: 12.0, DurationKnown: true, Width: 1280, Height: 720,
	}}
	p := NewProber(r, 0, nil)

	got, err := p.Probe(context.Background(), resolvedTestSource(t, KindSample, 0))
	require.NoError(t, err)
	assert.InDelta(t, 12.0, got.Seconds, 1e-9)
	assert.InDelta(t, 16.0/9.0, got.AspectRatio, 1e-9)
	assert.Zero(t, r.measures, "no decode measurement when header is good")
}

func TestProbeFallsBackToDecodeMeasurement(t *testing.T) {
	// Recorded containers often ship without a duration header.
	r := &fakeReader{
		info:     ffmpeg.FormatInfo{DurationKnown: false, Width: 640, Height: 480},
		measured: 7.5,
	}
	p := NewProber(r, 0, nil)

	got, err := p.Probe(context.Background(), resolvedTestSource(t, KindRecorded, 0))
	require.NoError(t, err)
	assert.InDelta(t, 7.5, got.Seconds, 1e-9)
	assert.Equal(t, 1, r.measures)
}

func TestProbeFallsBackToHint(t *testing.T) {
	r := &fakeReader{
		info:       ffmpeg.FormatInfo{DurationKnown: false, Width: 640, Height: 480},
		measureErr: errors.New("broken index"),
	}
	p := NewProber(r, 0, nil)

	got, err := p.Probe(context.Background(), resolvedTestSource(t, KindRecorded, 9.2))
	require.NoError(t, err)
	assert.InDelta(t, 9.2, got.Seconds, 1e-9)
}

func TestProbeFailsWithoutAnyDuration(t *testing.T) {
	r := &fakeReader{
		info:       ffmpeg.FormatInfo{DurationKnown: false, Width: 640, Height: 480},
		measureErr: errors.New("broken index"),
	}
	p := NewProber(r, 0, nil)

	_, err := p.Probe(context.Background(), resolvedTestSource(t, KindRecorded, 0))
	var perr *ProbeError
	require.ErrorAs(t, err, &perr)
}

func TestProbeRejectsInvalidDimensions(t *testing.T) {
	r := &fakeReader{info: ffmpeg.FormatInfo{
		DurationSeconds: 3, DurationKnown: true, Width: 0, Height: 720,
	}}
	p := NewProber(r, 0, nil)

	_, err := p.Probe(context.Background(), resolvedTestSource(t, KindUpload, 0))
	var perr *ProbeError
	require.ErrorAs(t, err, &perr)
}

func TestResolveLocalPassThrough(t *testing.T) {
	src := resolvedTestSource(t, KindSample, 0)
	assert.Equal(t, src.URL, src.LocalPath())
	assert.NoError(t, src.Close())
}

func TestResolveMissingLocalFile(t *testing.T) {
	src := &Source{Kind: KindUpload, URL: filepath.Join(t.TempDir(), "nope.mp4")}
	err := src.Resolve(context.Background(), nil)
	assert.Error(t, err)
}

func TestProbeUnresolvedSource(t *testing.T) {
	p := NewProber(&fakeReader{}, 0, nil)
	_, err := p.Probe(context.Background(), &Source{Kind: KindUpload, URL: "x.mp4"})
	var perr *ProbeError
	require.ErrorAs(t, err, &perr)
}
