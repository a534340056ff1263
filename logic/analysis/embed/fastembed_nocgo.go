//go:build !cgo

package embed

import (
	"context"
	"fmt"
)

// FastEmbedProvider is unavailable in binaries built without cgo.
type FastEmbedProvider struct{}

func NewFastEmbedProvider(model, _ string) (*FastEmbedProvider, error) {
	return nil, fmt.Errorf("%w: fastembed %q needs a cgo build", ErrModelUnavailable, model)
}

func (*FastEmbedProvider) Available() bool { return false }

func (*FastEmbedProvider) Encode(context.Context, []string) ([][]float64, error) {
	return nil, ErrModelUnavailable
}

func (*FastEmbedProvider) Close() error { return nil }
