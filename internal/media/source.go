// Package media resolves playable sources and probes them for a
// reliable duration and aspect ratio.
package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SourceKind tags where a source came from. Replacing a source resets
// every downstream entity (probe result, strip, selection, playhead).
type SourceKind string

const (
	KindSample   SourceKind = "sample"
	KindUpload   SourceKind = "upload"
	KindRecorded SourceKind = "recorded"
)

// Source describes one playable input. Immutable once handed to the
// trimmer.
type Source struct {
	Kind SourceKind

	// URL is a local path, file:// URL, or http(s) URL.
	URL string

	// DurationHint is a caller-supplied length in seconds (for example
	// a stopwatch-measured recording), zero when absent. Used as the
	// last probe fallback.
	DurationHint float64

	localPath string
	cleanup   func() error
}

// DefaultFetchTimeout bounds the remote download during Resolve.
const DefaultFetchTimeout = 15 * time.Second

// LocalPath returns the locally readable path. Empty until Resolve has
// run.
func (s *Source) LocalPath() string {
	return s.localPath
}

// Close releases any temp file created by Resolve. Safe to call more
// than once and on unresolved sources.
func (s *Source) Close() error {
	if s.cleanup == nil {
		return nil
	}
	fn := s.cleanup
	s.cleanup = nil
	return fn()
}

// Resolve makes the source readable by local tooling. Remote URLs are
// downloaded whole to a temp file first, the local-blob analogue of a
// cross-origin fetch: seeking a remote stream during thumbnailing is
// both slow and unreliable. Local paths and file:// URLs pass through.
func (s *Source) Resolve(ctx context.Context, client *http.Client) error {
	if s.localPath != "" {
		return nil
	}

	u, err := url.Parse(s.URL)
	if err != nil || u.Scheme == "" || u.Scheme == "file" {
		p := s.URL
		if err == nil && u.Scheme == "file" {
			p = u.Path
		}
		if _, statErr := os.Stat(p); statErr != nil {
			return fmt.Errorf("resolve source: %w", statErr)
		}
		s.localPath = p
		return nil
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("resolve source: unsupported scheme %q", u.Scheme)
	}

	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return fmt.Errorf("resolve source: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch source: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch source: unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp("", "cliptrim-src-*"+remoteExt(u.Path))
	if err != nil {
		return fmt.Errorf("fetch source: %w", err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("fetch source: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("fetch source: %w", err)
	}

	s.localPath = tmp.Name()
	s.cleanup = func() error {
		return os.Remove(tmp.Name())
	}
	return nil
}

func remoteExt(p string) string {
	ext := filepath.Ext(p)
	if len(ext) > 5 || strings.ContainsAny(ext, "?&") {
		return ""
	}
	return ext
}
