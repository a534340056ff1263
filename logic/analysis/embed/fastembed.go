//go:build cgo

package embed

import (
	"context"
	"fmt"
	"sync"

	fastembed "github.com/anush008/fastembed-go"
)

// FastEmbedProvider runs all-MiniLM-L6-v2 locally through ONNX runtime.
type FastEmbedProvider struct {
	model *fastembed.FlagEmbedding
	mu    sync.RWMutex
}

var fastEmbedModels = map[string]fastembed.EmbeddingModel{
	"sentence-transformers/all-MiniLM-L6-v2": fastembed.AllMiniLML6V2,
	"fast-all-MiniLM-L6-v2":                  fastembed.AllMiniLML6V2,
	"BAAI/bge-small-en-v1.5":                 fastembed.BGESmallENV15,
}

func NewFastEmbedProvider(model, cacheDir string) (*FastEmbedProvider, error) {
	m, ok := fastEmbedModels[model]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported fastembed model %q", ErrModelUnavailable, model)
	}
	showProgress := false
	flag, err := fastembed.NewFlagEmbedding(&fastembed.InitOptions{
		Model:                m,
		CacheDir:             cacheDir,
		MaxLength:            256,
		ShowDownloadProgress: &showProgress,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: initializing fastembed: %v", ErrModelUnavailable, err)
	}
	return &FastEmbedProvider{model: flag}, nil
}

func (p *FastEmbedProvider) Available() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.model != nil
}

func (p *FastEmbedProvider) Encode(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.model == nil {
		return nil, fmt.Errorf("%w: fastembed provider closed", ErrModelUnavailable)
	}

	vecs, err := p.model.PassageEmbed(texts, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	out := make([][]float64, len(vecs))
	for i, v := range vecs {
		f := make([]float64, len(v))
		for j, x := range v {
			f[j] = float64(x)
		}
		out[i] = f
	}
	return out, nil
}

func (p *FastEmbedProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.model == nil {
		return nil
	}
	err := p.model.Destroy()
	p.model = nil
	return err
}
