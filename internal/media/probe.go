package media

import (
	"context"
	"fmt"
	"time"

	"cliptrim/internal/ffmpeg"
	"cliptrim/internal/logging"
)

// ProbedDuration is the resolved metadata for a source: a finite,
// positive duration and the display aspect ratio. Computed once per
// source and cached by the caller.
type ProbedDuration struct {
	Seconds     float64
	AspectRatio float64
}

// ProbeError reports that a source could not be read or carried invalid
// dimensions. Surfaced to the user as "could not read video".
type ProbeError struct {
	URL string
	Err error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %v", e.URL, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// MetadataReader is the slice of the ffmpeg adapter the prober needs.
type MetadataReader interface {
	ProbeFormat(ctx context.Context, path string) (ffmpeg.FormatInfo, error)
	MeasureDuration(ctx context.Context, path string) (float64, error)
}

// DefaultProbeTimeout bounds a whole probe, matching the metadata-load
// timeout of the preview element.
const DefaultProbeTimeout = 15 * time.Second

// Prober resolves sources into a known duration, working around
// containers that report no duration at all (freshly recorded streams
// are the usual offenders).
type Prober struct {
	reader  MetadataReader
	timeout time.Duration
	log     *logging.Logger
}

// NewProber returns a prober over the given metadata reader. A zero
// timeout means DefaultProbeTimeout.
func NewProber(reader MetadataReader, timeout time.Duration, log *logging.Logger) *Prober {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	if log == nil {
		log = logging.Default()
	}
	return &Prober{reader: reader, timeout: timeout, log: log.WithComponent("prober")}
}

// Probe resolves the source's duration and aspect ratio.
//
// Order of attack:
//  1. direct metadata read
//  2. full decode measurement when the header carries no duration
//  3. the caller-supplied hint
//
// Anything less yields a ProbeError. Probe never touches shared
// selection state.
func (p *Prober) Probe(ctx context.Context, src *Source) (ProbedDuration, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	path := src.LocalPath()
	if path == "" {
		return ProbedDuration{}, &ProbeError{URL: src.URL, Err: fmt.Errorf("source not resolved")}
	}

	info, err := p.reader.ProbeFormat(ctx, path)
	if err != nil {
		return ProbedDuration{}, &ProbeError{URL: src.URL, Err: err}
	}
	if info.Width <= 0 || info.Height <= 0 {
		return ProbedDuration{}, &ProbeError{URL: src.URL, Err: fmt.Errorf("invalid dimensions %dx%d", info.Width, info.Height)}
	}
	aspect := float64(info.Width) / float64(info.Height)

	if info.DurationKnown {
		return ProbedDuration{Seconds: info.DurationSeconds, AspectRatio: aspect}, nil
	}

	p.log.Debug("duration header missing, measuring by decode", "url", src.URL)
	if sec, err := p.reader.MeasureDuration(ctx, path); err == nil && sec > 0 {
		return ProbedDuration{Seconds: sec, AspectRatio: aspect}, nil
	} else if err != nil {
		p.log.Warn("decode measurement failed", "url", src.URL, "error", err)
	}

	if src.DurationHint > 0 {
		p.log.Debug("falling back to caller duration hint", "url", src.URL, "hint", src.DurationHint)
		return ProbedDuration{Seconds: src.DurationHint, AspectRatio: aspect}, nil
	}

	return ProbedDuration{}, &ProbeError{URL: src.URL, Err: fmt.Errorf("duration unavailable")}
}
