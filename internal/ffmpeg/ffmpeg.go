// Package ffmpeg wraps the ffmpeg/ffprobe binaries behind a small
// adapter used by the prober and the thumbnail generator.
package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"math"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// Adapter shells out to ffmpeg and ffprobe. Paths default to the
// binaries on PATH.
type Adapter struct {
	ffmpeg  string
	ffprobe string
}

// New returns an adapter using the given binary paths, or the PATH
// defaults when empty.
func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

// FormatInfo is the metadata subset the trimmer needs.
type FormatInfo struct {
	// DurationSeconds is valid only when DurationKnown is true.
	// Freshly recorded containers often ship without a duration header.
	DurationSeconds float64
	DurationKnown   bool
	Width           int
	Height          int
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

// ProbeFormat reads container duration and video dimensions.
func (a *Adapter) ProbeFormat(ctx context.Context, path string) (FormatInfo, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	b, err := cmd.Output()
	if err != nil {
		return FormatInfo{}, fmt.Errorf("ffprobe format: %w\n%s", err, exitDetail(err))
	}

	var out probeOutput
	if err := json.Unmarshal(b, &out); err != nil {
		return FormatInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	info := FormatInfo{}
	if sec, err := strconv.ParseFloat(strings.TrimSpace(out.Format.Duration), 64); err == nil {
		if !math.IsNaN(sec) && !math.IsInf(sec, 0) && sec > 0 {
			info.DurationSeconds = sec
			info.DurationKnown = true
		}
	}
	for _, s := range out.Streams {
		if s.CodecType == "video" {
			info.Width = s.Width
			info.Height = s.Height
			break
		}
	}
	return info, nil
}

var nullDecodeTimeRe = regexp.MustCompile(`time=(\d+):(\d\d):(\d\d(?:\.\d+)?)`)

// MeasureDuration decodes the stream to its end and reads the final
// clock. Slow but authoritative for containers without a duration
// header; the analogue of the end-seek probe on a media element.
func (a *Adapter) MeasureDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-hide_banner",
		"-i", path,
		"-f", "null", "-",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffmpeg null decode: %w\n%s", err, stderr.String())
	}

	matches := nullDecodeTimeRe.FindAllStringSubmatch(stderr.String(), -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("no decode clock in ffmpeg output")
	}
	last := matches[len(matches)-1]
	h, _ := strconv.ParseFloat(last[1], 64)
	m, _ := strconv.ParseFloat(last[2], 64)
	s, _ := strconv.ParseFloat(last[3], 64)
	sec := h*3600 + m*60 + s
	if sec <= 0 {
		return 0, fmt.Errorf("measured non-positive duration %.3f", sec)
	}
	return sec, nil
}

// ExtractFrame decodes the single frame nearest atSeconds. Frames come
// back as PNG over a pipe so no temp files are involved.
func (a *Adapter) ExtractFrame(ctx context.Context, path string, atSeconds float64) (image.Image, error) {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-hide_banner",
		"-ss", strconv.FormatFloat(atSeconds, 'f', 3, 64),
		"-i", path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-c:v", "png",
		"pipe:1",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg extract frame at %.3fs: %w\n%s", atSeconds, err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("no frame decoded at %.3fs", atSeconds)
	}

	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("decode extracted frame: %w", err)
	}
	return img, nil
}

func exitDetail(err error) string {
	if ee, ok := err.(*exec.ExitError); ok {
		return string(ee.Stderr)
	}
	return ""
}
