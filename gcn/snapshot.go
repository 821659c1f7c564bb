// SPDX-License-Identifier: MIT

package gcn

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/ontoforge/schemamap/matrix"
)

// snapshotVersion is bumped on any incompatible layout change.
const snapshotVersion = 1

// NodeOrderCanonical names the node-index convention the parameters were
// trained under. Inference must number nodes the same way.
const NodeOrderCanonical = "table_field_lexicographic"

// LayerSnapshot is the serialized form of one layer.
type LayerSnapshot struct {
	Weights [][]float64 `json:"weights"`
	Bias    []float64   `json:"bias"`
}

// Snapshot is the frozen, JSON-serializable bundle of trained parameters
// plus the architecture metadata needed to reproduce inference exactly:
// layer widths, feature dimension, vocabulary ordering and node-index
// convention.
type Snapshot struct {
	FormatVersion int             `json:"format_version"`
	ID            string          `json:"id"`
	CreatedAt     time.Time       `json:"created_at"`
	FeatureDim    int             `json:"feature_dim"`
	LayerSizes    []int           `json:"layer_sizes"`
	Vocabulary    []string        `json:"vocabulary"`
	NodeOrder     string          `json:"node_order"`
	Layers        []LayerSnapshot `json:"layers"`
}

// Snapshot freezes the current parameters together with the vocabulary
// ordering they map onto. The copy is deep; later training steps do not
// leak into it.
func (m *Model) Snapshot(vocabulary []string) *Snapshot {
	layers := make([]LayerSnapshot, len(m.layers))
	for l, layer := range m.layers {
		layers[l] = LayerSnapshot{
			Weights: layer.W.ToRows(),
			Bias:    append([]float64(nil), layer.B...),
		}
	}

	return &Snapshot{
		FormatVersion: snapshotVersion,
		ID:            uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
		FeatureDim:    m.InputDim(),
		LayerSizes:    m.Dims(),
		Vocabulary:    append([]string(nil), vocabulary...),
		NodeOrder:     NodeOrderCanonical,
		Layers:        layers,
	}
}

// FromSnapshot rebuilds a model from frozen parameters.
//
// Errors: ErrBadSnapshot when metadata and parameter shapes disagree.
func FromSnapshot(s *Snapshot) (*Model, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil snapshot", ErrBadSnapshot)
	}
	if s.FormatVersion != snapshotVersion {
		return nil, fmt.Errorf("%w: format version %d, want %d",
			ErrBadSnapshot, s.FormatVersion, snapshotVersion)
	}
	if len(s.LayerSizes) < 2 {
		return nil, fmt.Errorf("%w: %d layer sizes", ErrBadSnapshot, len(s.LayerSizes))
	}
	if len(s.Layers) != len(s.LayerSizes)-1 {
		return nil, fmt.Errorf("%w: %d layers for %d sizes",
			ErrBadSnapshot, len(s.Layers), len(s.LayerSizes))
	}
	if s.FeatureDim != s.LayerSizes[0] {
		return nil, fmt.Errorf("%w: feature dim %d, first layer size %d",
			ErrBadSnapshot, s.FeatureDim, s.LayerSizes[0])
	}
	if len(s.Vocabulary) != s.LayerSizes[len(s.LayerSizes)-1] {
		return nil, fmt.Errorf("%w: %d vocabulary entries, output width %d",
			ErrBadSnapshot, len(s.Vocabulary), s.LayerSizes[len(s.LayerSizes)-1])
	}

	m := &Model{
		dims:   append([]int(nil), s.LayerSizes...),
		layers: make([]Layer, len(s.Layers)),
	}
	for l, ls := range s.Layers {
		fanIn, fanOut := s.LayerSizes[l], s.LayerSizes[l+1]
		if len(ls.Weights) != fanIn {
			return nil, fmt.Errorf("%w: layer %d has %d weight rows, want %d",
				ErrBadSnapshot, l, len(ls.Weights), fanIn)
		}
		for _, row := range ls.Weights {
			if len(row) != fanOut {
				return nil, fmt.Errorf("%w: layer %d weight row width %d, want %d",
					ErrBadSnapshot, l, len(row), fanOut)
			}
		}
		if len(ls.Bias) != fanOut {
			return nil, fmt.Errorf("%w: layer %d bias length %d, want %d",
				ErrBadSnapshot, l, len(ls.Bias), fanOut)
		}

		w, err := matrix.NewDenseFromRows(ls.Weights)
		if err != nil {
			return nil, fmt.Errorf("%w: layer %d weights: %v", ErrBadSnapshot, l, err)
		}
		m.layers[l] = Layer{W: w, B: append([]float64(nil), ls.Bias...)}
	}

	return m, nil
}

// Save writes the snapshot as indented JSON. The file is written whole;
// partial writes surface as errors, never as a truncated valid artifact.
func (s *Snapshot) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("gcn: marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("gcn: write snapshot: %w", err)
	}

	return nil
}

// LoadSnapshot reads and decodes a snapshot file. Structural validation
// happens in FromSnapshot, not here.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gcn: read snapshot: %w", err)
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("gcn: decode snapshot: %w", err)
	}

	return &s, nil
}
