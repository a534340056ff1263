package embed

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cloudwego/eino-ext/components/embedding/ollama"
	"github.com/cloudwego/eino/components/embedding"
	"go.uber.org/zap"
)

// EinoProvider 包装 eino embedder：超时控制 + NaN/Inf 清理
type EinoProvider struct {
	inner   embedding.Embedder
	timeout time.Duration
	log     *zap.Logger
}

func NewEinoProvider(inner embedding.Embedder, timeout time.Duration, log *zap.Logger) *EinoProvider {
	if log == nil {
		log = zap.NewNop()
	}
	return &EinoProvider{inner: inner, timeout: timeout, log: log.Named("embed")}
}

// NewOllamaProvider connects to an ollama server and probes it once so a dead
// backend is detected at construction rather than mid-analysis.
func NewOllamaProvider(ctx context.Context, baseURL, model string, timeout time.Duration, log *zap.Logger) (*EinoProvider, error) {
	embedder, err := ollama.NewEmbedder(ctx, &ollama.EmbeddingConfig{
		BaseURL: baseURL,
		Model:   model,
		Timeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create ollama embedder: %w", err)
	}
	p := NewEinoProvider(embedder, timeout, log)
	if _, err := p.Encode(ctx, []string{"ping"}); err != nil {
		return nil, fmt.Errorf("probe ollama embedder: %w", err)
	}
	return p, nil
}

func (p *EinoProvider) Available() bool { return p.inner != nil }

func (p *EinoProvider) Encode(ctx context.Context, texts []string) ([][]float64, error) {
	if p.inner == nil {
		return nil, ErrModelUnavailable
	}
	if len(texts) == 0 {
		return [][]float64{}, nil
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	vectors, err := p.inner.EmbedStrings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrModelUnavailable, len(vectors), len(texts))
	}

	cleaned := 0
	for _, vec := range vectors {
		for j, val := range vec {
			if math.IsNaN(val) || math.IsInf(val, 0) {
				vec[j] = 0
				cleaned++
			}
		}
	}
	if cleaned > 0 {
		p.log.Warn("replaced non-finite embedding values", zap.Int("count", cleaned))
	}
	return vectors, nil
}
