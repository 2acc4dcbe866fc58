// Package workflow defines the creation workflows the trimmer serves.
// Each workflow is an explicit tagged variant with a display config
// looked up from a validated preset table, never inferred from id
// suffixes.
package workflow

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Kind tags one workflow variant.
type Kind string

const (
	// KindVideoToVideo restyles an existing clip.
	KindVideoToVideo Kind = "video_to_video"
	// KindImageToVideo animates a still using a motion reference clip.
	KindImageToVideo Kind = "image_to_video"
	// KindBatchSplit cuts one selection into several output items.
	KindBatchSplit Kind = "batch_split"
)

// Preset is the display and constraint config for one workflow.
type Preset struct {
	Kind          Kind   `json:"kind"`
	Title         string `json:"title"`
	SupportsSplit bool   `json:"supports_split"`
	MinItems      int    `json:"min_items"`
	MaxItems      int    `json:"max_items"`
	DefaultItems  int    `json:"default_items"`
}

//go:embed presets.json
var presetsJSON []byte

//go:embed presets_schema.json
var presetsSchema string

// Load parses and validates the embedded preset table.
func Load() (map[Kind]Preset, error) {
	schema, err := jsonschema.CompileString("presets_schema.json", presetsSchema)
	if err != nil {
		return nil, fmt.Errorf("compile preset schema: %w", err)
	}

	var raw any
	if err := json.Unmarshal(presetsJSON, &raw); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("validate presets: %w", err)
	}

	var presets []Preset
	dec := json.NewDecoder(bytes.NewReader(presetsJSON))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&presets); err != nil {
		return nil, fmt.Errorf("decode presets: %w", err)
	}

	table := make(map[Kind]Preset, len(presets))
	for _, p := range presets {
		if _, dup := table[p.Kind]; dup {
			return nil, fmt.Errorf("duplicate preset kind %q", p.Kind)
		}
		table[p.Kind] = p
	}
	return table, nil
}

// MustLoad panics on an invalid embedded table; the table ships with
// the binary, so failure is a build defect.
func MustLoad() map[Kind]Preset {
	table, err := Load()
	if err != nil {
		panic(err)
	}
	return table
}

// Kinds returns the table's kinds in stable order.
func Kinds(table map[Kind]Preset) []Kind {
	out := make([]Kind, 0, len(table))
	for k := range table {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
