// Package thumbs samples a source at evenly spaced points and produces
// the ordered thumbnail strip backing the timeline.
package thumbs

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"os"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/image/draw"

	"cliptrim/internal/logging"
	"cliptrim/internal/media"
)

// Strip bounds. Derived so each thumbnail is roughly square when
// stretched into its slot.
const (
	MinCount = 6
	MaxCount = 24

	// SlotWidth is the nominal on-screen slot width in pixels used for
	// the count computation.
	SlotWidth = 60

	// TileHeight is the decoded thumbnail height; width follows the
	// source aspect ratio.
	TileHeight = 120
)

// ThumbnailError means the strip could not be produced. It is recovered
// locally by rendering the stripless timeline, never surfaced to the
// user.
type ThumbnailError struct {
	Err error
}

func (e *ThumbnailError) Error() string {
	return fmt.Sprintf("thumbnail strip: %v", e.Err)
}

func (e *ThumbnailError) Unwrap() error {
	return e.Err
}

// Strip is the ordered sequence of thumbnails for one (source, width)
// pair. Generation is idempotent for that pair.
type Strip struct {
	Images     []image.Image
	TileWidth  int
	TileHeight int
}

// Count returns the thumbnail count for a display width and aspect
// ratio: clamp(ceil(width / (SlotWidth*aspect)), MinCount, MaxCount).
func Count(displayWidthPx int, aspect float64) int {
	if aspect <= 0 {
		aspect = 1
	}
	n := int(math.Ceil(float64(displayWidthPx) / (SlotWidth * aspect)))
	if n < MinCount {
		n = MinCount
	}
	if n > MaxCount {
		n = MaxCount
	}
	return n
}

// FrameExtractor is the slice of the ffmpeg adapter the generator
// needs. Seeks must be awaited one at a time; the generator never
// issues concurrent extractions against one source.
type FrameExtractor interface {
	ExtractFrame(ctx context.Context, path string, atSeconds float64) (image.Image, error)
}

// Cache stores encoded strips across runs, keyed by source digest and
// display width.
type Cache interface {
	GetStrip(digest []byte, widthPx int) ([][]byte, bool, error)
	PutStrip(digest []byte, widthPx int, frames [][]byte) error
}

// Generator produces thumbnail strips. The zero cache is valid: every
// strip is regenerated.
type Generator struct {
	extractor FrameExtractor
	cache     Cache
	log       *logging.Logger
}

// NewGenerator returns a generator over the extractor. cache may be
// nil.
func NewGenerator(extractor FrameExtractor, cache Cache, log *logging.Logger) *Generator {
	if log == nil {
		log = logging.Default()
	}
	return &Generator{extractor: extractor, cache: cache, log: log.WithComponent("thumbs")}
}

// Generate samples the source at count evenly spaced offsets and
// returns the strip. All-or-nothing: a failed extraction at any index
// discards the partial output and reports ThumbnailError so the caller
// can degrade to the stripless presentation.
func (g *Generator) Generate(ctx context.Context, src *media.Source, probed media.ProbedDuration, displayWidthPx int) (*Strip, error) {
	count := Count(displayWidthPx, probed.AspectRatio)
	tileW := int(math.Round(TileHeight * probed.AspectRatio))
	if tileW < 1 {
		tileW = 1
	}

	digest, digestErr := sourceDigest(src)
	if g.cache != nil && digestErr == nil {
		if frames, ok, err := g.cache.GetStrip(digest, displayWidthPx); err == nil && ok && len(frames) == count {
			if strip, err := decodeStrip(frames, tileW); err == nil {
				g.log.Debug("strip served from cache", "url", src.URL, "count", count)
				return strip, nil
			}
		}
	}

	strip := &Strip{TileWidth: tileW, TileHeight: TileHeight}
	interval := probed.Seconds / float64(count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, &ThumbnailError{Err: err}
		}
		frame, err := g.extractor.ExtractFrame(ctx, src.LocalPath(), float64(i)*interval)
		if err != nil {
			// Partial strips are worse than none.
			return nil, &ThumbnailError{Err: fmt.Errorf("frame %d of %d: %w", i, count, err)}
		}
		strip.Images = append(strip.Images, scaleTile(frame, tileW, TileHeight))
	}

	if g.cache != nil && digestErr == nil {
		if frames, err := encodeStrip(strip); err == nil {
			if err := g.cache.PutStrip(digest, displayWidthPx, frames); err != nil {
				g.log.Warn("strip cache write failed", "error", err)
			}
		}
	}
	return strip, nil
}

func scaleTile(src image.Image, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func encodeStrip(s *Strip) ([][]byte, error) {
	frames := make([][]byte, 0, len(s.Images))
	for _, img := range s.Images {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
			return nil, err
		}
		frames = append(frames, buf.Bytes())
	}
	return frames, nil
}

func decodeStrip(frames [][]byte, tileW int) (*Strip, error) {
	s := &Strip{TileWidth: tileW, TileHeight: TileHeight}
	for _, f := range frames {
		img, err := jpeg.Decode(bytes.NewReader(f))
		if err != nil {
			return nil, err
		}
		s.Images = append(s.Images, img)
	}
	return s, nil
}

// sourceDigest identifies the source content for caching: path, size
// and mtime, hashed with blake2b.
func sourceDigest(src *media.Source) ([]byte, error) {
	fi, err := os.Stat(src.LocalPath())
	if err != nil {
		return nil, err
	}
	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(h, "%s|%d|%d", src.LocalPath(), fi.Size(), fi.ModTime().UnixNano())
	return h.Sum(nil), nil
}
