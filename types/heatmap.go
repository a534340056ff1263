package types

import (
	"encoding/json"
	"fmt"
)

// HeatmapKind values are consumed by the renderer to pick the plot geometry.
type HeatmapKind string

const (
	KindSurface HeatmapKind = "surface"
	KindScatter HeatmapKind = "scatter3d"
	KindMesh    HeatmapKind = "mesh3d"
)

// HeatmapKinds is the fixed order of datasets in every result.
var HeatmapKinds = []HeatmapKind{KindSurface, KindScatter, KindMesh}

// HeatmapData is implemented by SurfaceData, ScatterData and MeshData.
type HeatmapData interface {
	Kind() HeatmapKind
	// Valid reports whether the coordinate arrays are non-empty and aligned.
	Valid() bool
}

type HeatmapDataset struct {
	Type  HeatmapKind `json:"type"`
	Title string      `json:"title"`
	Data  HeatmapData `json:"data"`
}

// SurfaceData clause × severity band grid. X and Y are meshgrid index matrices.
type SurfaceData struct {
	X           [][]int     `json:"x"`
	Y           [][]int     `json:"y"`
	Z           [][]float64 `json:"z"`
	ClauseNames []string    `json:"clause_names"`
	RiskLevels  []string    `json:"risk_levels"`
}

func (SurfaceData) Kind() HeatmapKind { return KindSurface }

func (d SurfaceData) Valid() bool {
	if len(d.Z) == 0 || len(d.Z) != len(d.X) || len(d.Z) != len(d.Y) || len(d.Z) != len(d.RiskLevels) {
		return false
	}
	for r := range d.Z {
		if len(d.Z[r]) != len(d.ClauseNames) || len(d.X[r]) != len(d.ClauseNames) || len(d.Y[r]) != len(d.ClauseNames) {
			return false
		}
	}
	return len(d.ClauseNames) > 0
}

// ScatterData one point per sentence, colored by risk.
type ScatterData struct {
	X      []float64 `json:"x"`
	Y      []float64 `json:"y"`
	Z      []float64 `json:"z"`
	Colors []string  `json:"colors"`
	Texts  []string  `json:"texts"`
}

func (ScatterData) Kind() HeatmapKind { return KindScatter }

func (d ScatterData) Valid() bool {
	n := len(d.X)
	return n > 0 && len(d.Y) == n && len(d.Z) == n && len(d.Colors) == n && len(d.Texts) == n
}

// MeshData one vertex per clause category.
type MeshData struct {
	X           []float64 `json:"x"`
	Y           []float64 `json:"y"`
	Z           []float64 `json:"z"`
	ClauseNames []string  `json:"clause_names"`
}

func (MeshData) Kind() HeatmapKind { return KindMesh }

func (d MeshData) Valid() bool {
	n := len(d.X)
	return n > 0 && len(d.Y) == n && len(d.Z) == n && len(d.ClauseNames) == n
}

// UnmarshalJSON decodes Data according to Type so stored results round-trip.
func (h *HeatmapDataset) UnmarshalJSON(b []byte) error {
	var raw struct {
		Type  HeatmapKind     `json:"type"`
		Title string          `json:"title"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	var data HeatmapData
	switch raw.Type {
	case KindSurface:
		var d SurfaceData
		if err := json.Unmarshal(raw.Data, &d); err != nil {
			return fmt.Errorf("decode %s data: %w", raw.Type, err)
		}
		data = d
	case KindScatter:
		var d ScatterData
		if err := json.Unmarshal(raw.Data, &d); err != nil {
			return fmt.Errorf("decode %s data: %w", raw.Type, err)
		}
		data = d
	case KindMesh:
		var d MeshData
		if err := json.Unmarshal(raw.Data, &d); err != nil {
			return fmt.Errorf("decode %s data: %w", raw.Type, err)
		}
		data = d
	default:
		return fmt.Errorf("unknown heatmap type %q", raw.Type)
	}

	h.Type = raw.Type
	h.Title = raw.Title
	h.Data = data
	return nil
}
