package heatmap

import (
	"fmt"

	"workguard/types"
)

const (
	scatterPlaceholderPoints = 5
	meshPlaceholderPoints    = 6
	placeholderClause        = "Additional Clause"
)

// ScatterPlaceholder is five points on the diagonal, alternating red/green.
func ScatterPlaceholder() types.ScatterData {
	d := types.ScatterData{}
	risky, safe := 0, 0
	for i := 0; i < scatterPlaceholderPoints; i++ {
		d.X = append(d.X, float64(i))
		d.Y = append(d.Y, float64(i))
		d.Z = append(d.Z, float64(i))
		if i%2 == 0 {
			risky++
			d.Colors = append(d.Colors, ColorRisky)
			d.Texts = append(d.Texts, fmt.Sprintf("Risk clause %d", risky))
		} else {
			safe++
			d.Colors = append(d.Colors, ColorSafe)
			d.Texts = append(d.Texts, fmt.Sprintf("Safe clause %d", safe))
		}
	}
	return d
}

// MeshPlaceholder is six diagonal points labelled with names truncated or
// padded to six entries.
func MeshPlaceholder(names []string) types.MeshData {
	d := types.MeshData{}
	for i := 0; i < meshPlaceholderPoints; i++ {
		d.X = append(d.X, float64(i))
		d.Y = append(d.Y, float64(i))
		d.Z = append(d.Z, float64(i))
		label := placeholderClause
		if i < len(names) {
			label = names[i]
		}
		d.ClauseNames = append(d.ClauseNames, label)
	}
	return d
}
