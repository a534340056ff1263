// Package embed provides sentence embeddings for clause classification and
// heatmap projection. A Provider is picked once per analysis run; the
// Unavailable variant lets every downstream stage take its fallback path
// without re-checking model state.
package embed

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// Dimension of all-MiniLM-L6-v2 vectors and of synthesized placeholders.
const Dimension = 384

// ErrModelUnavailable is recoverable: callers switch to keyword matching,
// placeholder vectors or synthetic layouts.
var ErrModelUnavailable = errors.New("embedding model unavailable")

type Provider interface {
	// Available reports whether Encode can be expected to succeed.
	Available() bool
	// Encode returns one vector per text, in order.
	Encode(ctx context.Context, texts []string) ([][]float64, error)
}

// Unavailable is the Provider used when no embedding backend could be built.
type Unavailable struct {
	Reason error
}

func (Unavailable) Available() bool { return false }

func (u Unavailable) Encode(context.Context, []string) ([][]float64, error) {
	if u.Reason != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, u.Reason)
	}
	return nil, ErrModelUnavailable
}

// Synthesize returns n random vectors of the given dimension. They stand in
// for real embeddings so projection stages always receive input.
func Synthesize(n, dim int, rng *rand.Rand) [][]float64 {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	out := make([][]float64, n)
	for i := range out {
		v := make([]float64, dim)
		for j := range v {
			v[j] = rng.Float64()
		}
		out[i] = v
	}
	return out
}

// EncodeOrSynthesize always returns len(texts) vectors. When the provider
// fails the vectors are synthesized and the provider error is returned
// alongside them.
func EncodeOrSynthesize(ctx context.Context, p Provider, texts []string, rng *rand.Rand) ([][]float64, error) {
	if p == nil {
		p = Unavailable{}
	}
	vecs, err := p.Encode(ctx, texts)
	if err == nil && len(vecs) != len(texts) {
		err = fmt.Errorf("%w: got %d vectors for %d texts", ErrModelUnavailable, len(vecs), len(texts))
	}
	if err != nil {
		return Synthesize(len(texts), Dimension, rng), err
	}
	return vecs, nil
}

// Cosine similarity of a and b. Mismatched or zero vectors score 0.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}
