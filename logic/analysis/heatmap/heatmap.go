// Package heatmap builds the three 3D visualization datasets of a contract
// analysis. Build always returns exactly one surface, one scatter3d and one
// mesh3d dataset, in that order: a dataset whose generator fails is replaced
// by a fixed placeholder of the same shape.
package heatmap

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"workguard/logic/analysis/clause"
	"workguard/logic/analysis/embed"
	"workguard/types"
)

const (
	TitleSurface = "3D Contract Risk Surface"
	TitleScatter = "3D PCA Risk Cloud (Semantic Clause Space)"
	TitleMesh    = "3D Clause Semantic Mesh Topology"

	ColorRisky = "red"
	ColorSafe  = "green"

	labelLength = 50
)

// RiskLevels are the surface rows, weighted by bandWeights.
var (
	RiskLevels  = []string{"Low", "Medium", "High"}
	bandWeights = []float64{0.3, 0.6, 1.0}
)

// Input is everything the synthesizer needs from the earlier stages.
type Input struct {
	Matches clause.Matches
	// Sentences and Embeddings are aligned; Embeddings may be nil.
	Sentences  []string
	Embeddings [][]float64
	Risky      map[string]struct{}
}

type Synthesizer struct {
	provider embed.Provider
	log      *zap.Logger
}

func NewSynthesizer(provider embed.Provider, log *zap.Logger) *Synthesizer {
	if provider == nil {
		provider = embed.Unavailable{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Synthesizer{provider: provider, log: log.Named("heatmap")}
}

// Build returns the three datasets and the kinds that were replaced by
// placeholders.
func (s *Synthesizer) Build(ctx context.Context, in Input) ([]types.HeatmapDataset, []types.HeatmapKind) {
	names := ClauseNames(in.Matches)

	specs := []struct {
		kind        types.HeatmapKind
		title       string
		gen         func() (types.HeatmapData, error)
		placeholder func() types.HeatmapData
	}{
		{
			kind:        types.KindSurface,
			title:       TitleSurface,
			gen:         func() (types.HeatmapData, error) { return Surface(names, in.Matches), nil },
			placeholder: func() types.HeatmapData { return Surface(clause.Names(), nil) },
		},
		{
			kind:        types.KindScatter,
			title:       TitleScatter,
			gen:         func() (types.HeatmapData, error) { return Scatter(in.Sentences, in.Embeddings, in.Risky) },
			placeholder: func() types.HeatmapData { return ScatterPlaceholder() },
		},
		{
			kind:        types.KindMesh,
			title:       TitleMesh,
			gen:         func() (types.HeatmapData, error) { return s.mesh(ctx, names) },
			placeholder: func() types.HeatmapData { return MeshPlaceholder(names) },
		},
	}

	out := make([]types.HeatmapDataset, 0, len(specs))
	var substituted []types.HeatmapKind
	for _, sp := range specs {
		data, err := generate(sp.kind, sp.gen)
		if err != nil {
			s.log.Warn("heatmap generation failed, using placeholder",
				zap.String("type", string(sp.kind)), zap.Error(err))
			data = sp.placeholder()
			substituted = append(substituted, sp.kind)
		}
		out = append(out, types.HeatmapDataset{Type: sp.kind, Title: sp.title, Data: data})
	}
	return out, substituted
}

// generate runs gen and rejects panics, wrong kinds and malformed shapes.
func generate(kind types.HeatmapKind, gen func() (types.HeatmapData, error)) (data types.HeatmapData, err error) {
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, fmt.Errorf("%s generator panic: %v", kind, r)
		}
	}()
	data, err = gen()
	switch {
	case err != nil:
		return nil, err
	case data == nil || data.Kind() != kind:
		return nil, fmt.Errorf("%s generator returned %T", kind, data)
	case !data.Valid():
		return nil, fmt.Errorf("%s generator returned misaligned coordinates", kind)
	}
	return data, nil
}

// ClauseNames are the detected categories, or the canonical list when
// nothing was detected.
func ClauseNames(m clause.Matches) []string {
	if len(m) == 0 {
		return clause.Names()
	}
	return m.Names()
}

// Surface is a pure function of the clause counts: row r of Z is the count
// scaled by bandWeights[r].
func Surface(names []string, m clause.Matches) types.SurfaceData {
	rows := len(RiskLevels)
	d := types.SurfaceData{
		X:           make([][]int, rows),
		Y:           make([][]int, rows),
		Z:           make([][]float64, rows),
		ClauseNames: append([]string(nil), names...),
		RiskLevels:  append([]string(nil), RiskLevels...),
	}
	for r := 0; r < rows; r++ {
		d.X[r] = make([]int, len(names))
		d.Y[r] = make([]int, len(names))
		d.Z[r] = make([]float64, len(names))
		for i, name := range names {
			d.X[r][i] = i
			d.Y[r][i] = r
			d.Z[r][i] = float64(m.Count(name)) * bandWeights[r]
		}
	}
	return d
}

// Scatter projects sentence embeddings to 3D and colors risky sentences red.
func Scatter(sentences []string, vecs [][]float64, risky map[string]struct{}) (types.ScatterData, error) {
	if len(vecs) == 0 {
		return types.ScatterData{}, fmt.Errorf("%w: no sentence embeddings", ErrProjection)
	}
	if len(vecs) != len(sentences) {
		return types.ScatterData{}, fmt.Errorf("%w: %d embeddings for %d sentences", ErrProjection, len(vecs), len(sentences))
	}
	points, err := Project(vecs)
	if err != nil {
		return types.ScatterData{}, err
	}

	n := len(points)
	d := types.ScatterData{
		X:      make([]float64, n),
		Y:      make([]float64, n),
		Z:      make([]float64, n),
		Colors: make([]string, n),
		Texts:  make([]string, n),
	}
	for i, p := range points {
		d.X[i], d.Y[i], d.Z[i] = p[0], p[1], p[2]
		d.Colors[i] = ColorSafe
		if _, ok := risky[sentences[i]]; ok {
			d.Colors[i] = ColorRisky
		}
		d.Texts[i] = Label(sentences[i])
	}
	return d, nil
}

// Label truncates s to 50 characters plus an ellipsis.
func Label(s string) string {
	if utf8.RuneCountInString(s) <= labelLength {
		return s
	}
	return string([]rune(s)[:labelLength]) + "..."
}

// mesh embeds the clause names themselves. Provider errors degrade to the
// lattice layout; projection errors are returned for placeholder
// substitution.
func (s *Synthesizer) mesh(ctx context.Context, names []string) (types.HeatmapData, error) {
	if !s.provider.Available() {
		return Lattice(names)
	}
	vecs, err := s.provider.Encode(ctx, names)
	if err == nil && len(vecs) != len(names) {
		err = fmt.Errorf("%w: got %d vectors for %d clause names", embed.ErrModelUnavailable, len(vecs), len(names))
	}
	if err != nil {
		s.log.Warn("clause name embedding failed, using lattice layout", zap.Error(err))
		return Lattice(names)
	}
	points, err := Project(vecs)
	if err != nil {
		return nil, err
	}
	d := types.MeshData{ClauseNames: append([]string(nil), names...)}
	for _, p := range points {
		d.X = append(d.X, p[0])
		d.Y = append(d.Y, p[1])
		d.Z = append(d.Z, p[2])
	}
	return d, nil
}

// Lattice places category i at (i mod 3, (i/3) mod 3, i/9).
func Lattice(names []string) (types.MeshData, error) {
	if len(names) == 0 {
		return types.MeshData{}, errors.New("no clause names to lay out")
	}
	d := types.MeshData{ClauseNames: append([]string(nil), names...)}
	for i := range names {
		d.X = append(d.X, float64(i%3))
		d.Y = append(d.Y, float64((i/3)%3))
		d.Z = append(d.Z, float64(i/9))
	}
	return d, nil
}
