package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		data HeatmapData
		want bool
	}{
		{"empty surface", SurfaceData{}, false},
		{"surface", SurfaceData{
			X: [][]int{{0, 1}}, Y: [][]int{{0, 0}}, Z: [][]float64{{0, 0.3}},
			ClauseNames: []string{"a", "b"}, RiskLevels: []string{"Low"},
		}, true},
		{"ragged surface", SurfaceData{
			X: [][]int{{0}}, Y: [][]int{{0, 0}}, Z: [][]float64{{0, 0.3}},
			ClauseNames: []string{"a", "b"}, RiskLevels: []string{"Low"},
		}, false},
		{"scatter", ScatterData{X: []float64{1}, Y: []float64{2}, Z: []float64{3}, Colors: []string{"red"}, Texts: []string{"t"}}, true},
		{"scatter missing colors", ScatterData{X: []float64{1}, Y: []float64{2}, Z: []float64{3}, Texts: []string{"t"}}, false},
		{"mesh", MeshData{X: []float64{0}, Y: []float64{0}, Z: []float64{0}, ClauseNames: []string{"a"}}, true},
		{"empty mesh", MeshData{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.data.Valid())
		})
	}
}

func TestHeatmapDataset_DecodesByType(t *testing.T) {
	raw := `[
		{"type":"surface","title":"s","data":{"x":[[0]],"y":[[0]],"z":[[0.3]],"clause_names":["Termination"],"risk_levels":["Low"]}},
		{"type":"scatter3d","title":"p","data":{"x":[1],"y":[2],"z":[3],"colors":["red"],"texts":["t"]}},
		{"type":"mesh3d","title":"m","data":{"x":[0],"y":[0],"z":[0],"clause_names":["Termination"]}}
	]`

	var got []HeatmapDataset
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	require.Len(t, got, 3)

	assert.IsType(t, SurfaceData{}, got[0].Data)
	assert.IsType(t, ScatterData{}, got[1].Data)
	assert.IsType(t, MeshData{}, got[2].Data)
	for _, h := range got {
		assert.Equal(t, h.Type, h.Data.Kind())
		assert.True(t, h.Data.Valid())
	}
}

func TestHeatmapDataset_UnknownType(t *testing.T) {
	var h HeatmapDataset
	err := json.Unmarshal([]byte(`{"type":"bar","title":"x","data":{}}`), &h)
	assert.ErrorContains(t, err, `unknown heatmap type "bar"`)
}

func TestAnalysisResult_OK(t *testing.T) {
	assert.True(t, (&AnalysisResult{Status: StatusSuccess}).OK())
	assert.False(t, Failed("boom").OK())
	assert.False(t, (*AnalysisResult)(nil).OK())

	b, err := json.Marshal(Failed("boom"))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"error":"boom"`)
}
