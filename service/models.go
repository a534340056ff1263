package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"workguard/logic/analysis/embed"
	"workguard/logic/analysis/summarize"
	"workguard/logic/chat"
	"workguard/vars"
)

type EmbedderFactory func(ctx context.Context) (embed.Provider, error)

type SummarizerFactory func(ctx context.Context) (summarize.Summarizer, error)

// RetryBackoff is how long a failed backend construction is remembered before
// the factory is tried again.
const RetryBackoff = 30 * time.Second

// Models lazily builds the embedding and summarization backends on first use
// and reuses them across requests. A failed construction is retried once
// RetryBackoff has passed, so a backend that comes up later is picked up
// without every analysis waiting on the same failing factory.
type Models struct {
	embedMu         sync.Mutex
	summaryMu       sync.Mutex
	newEmbedder     EmbedderFactory
	newSummarizer   SummarizerFactory
	embedder        embed.Provider
	summarizer      summarize.Summarizer
	embedErr        error
	embedFailedAt   time.Time
	summaryFailedAt time.Time
	backoff         time.Duration
	now             func() time.Time
	log             *zap.Logger
}

func NewModels(newEmbedder EmbedderFactory, newSummarizer SummarizerFactory, log *zap.Logger) *Models {
	if log == nil {
		log = zap.NewNop()
	}
	return &Models{
		newEmbedder:   newEmbedder,
		newSummarizer: newSummarizer,
		backoff:       RetryBackoff,
		now:           time.Now,
		log:           log.Named("models"),
	}
}

func (m *Models) backingOff(failedAt time.Time) bool {
	return !failedAt.IsZero() && m.now().Sub(failedAt) < m.backoff
}

// Embedder never returns nil; embed.Unavailable stands in for a backend that
// could not be built.
func (m *Models) Embedder(ctx context.Context) embed.Provider {
	m.embedMu.Lock()
	defer m.embedMu.Unlock()

	if m.embedder != nil {
		return m.embedder
	}
	if m.newEmbedder == nil {
		return embed.Unavailable{}
	}
	if m.backingOff(m.embedFailedAt) {
		return embed.Unavailable{Reason: m.embedErr}
	}
	start := time.Now()
	p, err := m.newEmbedder(ctx)
	if err != nil || p == nil {
		m.log.Warn("embedding model unavailable", zap.Error(err), zap.Duration("retry_after", m.backoff))
		m.embedErr, m.embedFailedAt = err, m.now()
		return embed.Unavailable{Reason: err}
	}
	m.log.Info("embedding model loaded", zap.Duration("took", time.Since(start)))
	m.embedder = p
	return p
}

// Summarizer never returns nil; summarize.Disabled stands in for a backend
// that could not be built.
func (m *Models) Summarizer(ctx context.Context) summarize.Summarizer {
	m.summaryMu.Lock()
	defer m.summaryMu.Unlock()

	if m.summarizer != nil {
		return m.summarizer
	}
	if m.newSummarizer == nil {
		return summarize.Disabled{}
	}
	if m.backingOff(m.summaryFailedAt) {
		return summarize.Disabled{}
	}
	s, err := m.newSummarizer(ctx)
	if err != nil || s == nil {
		m.log.Warn("summarization model unavailable", zap.Error(err), zap.Duration("retry_after", m.backoff))
		m.summaryFailedAt = m.now()
		return summarize.Disabled{}
	}
	m.log.Info("summarization model loaded")
	m.summarizer = s
	return s
}

// Close releases backends holding native resources.
func (m *Models) Close() error {
	m.embedMu.Lock()
	defer m.embedMu.Unlock()
	m.summaryMu.Lock()
	defer m.summaryMu.Unlock()

	var errs []error
	for _, v := range []any{m.embedder, m.summarizer} {
		if c, ok := v.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	m.embedder, m.summarizer = nil, nil
	return errors.Join(errs...)
}

// ModelConfig selects and configures the model backends.
type ModelConfig struct {
	EmbedProvider   string
	EmbedModel      string
	FastEmbedCache  string
	SummaryProvider string
	SummaryModel    string
	OllamaURL       string
	OpenAIKey       string
	OpenAIBaseURL   string
	Timeout         time.Duration
}

// ModelConfigFromEnv reads the vars package.
func ModelConfigFromEnv() ModelConfig {
	return ModelConfig{
		EmbedProvider:   vars.EMBED_PROVIDER,
		EmbedModel:      vars.EMBED_MODEL,
		FastEmbedCache:  vars.FASTEMBED_CACHE,
		SummaryProvider: vars.SUMMARY_PROVIDER,
		SummaryModel:    vars.SUMMARY_MODEL,
		OllamaURL:       vars.OLLAMA_PATH,
		OpenAIKey:       vars.OPENAI_API_KEY,
		OpenAIBaseURL:   vars.OPENAI_BASE_URL,
		Timeout:         vars.MODEL_TIMEOUT,
	}
}

func (c ModelConfig) EmbedderFactory(log *zap.Logger) EmbedderFactory {
	return func(ctx context.Context) (embed.Provider, error) {
		switch c.EmbedProvider {
		case vars.ProviderOllama:
			return embed.NewOllamaProvider(ctx, c.OllamaURL, c.EmbedModel, c.Timeout, log)
		case vars.ProviderFastEmbed:
			model := c.EmbedModel
			if model == vars.MINILM {
				model = vars.FASTMINILM
			}
			return embed.NewFastEmbedProvider(model, c.FastEmbedCache)
		case vars.ProviderNone, "":
			return nil, fmt.Errorf("%w: embeddings disabled", embed.ErrModelUnavailable)
		default:
			return nil, fmt.Errorf("%w: unknown embedding provider %q", embed.ErrModelUnavailable, c.EmbedProvider)
		}
	}
}

func (c ModelConfig) SummarizerFactory(log *zap.Logger) SummarizerFactory {
	return func(ctx context.Context) (summarize.Summarizer, error) {
		switch c.SummaryProvider {
		case vars.ProviderOllama:
			m, err := chat.CreateOllamaChatModel(ctx, c.OllamaURL, c.SummaryModel, c.Timeout)
			if err != nil {
				return nil, err
			}
			return summarize.NewChatSummarizer(m, c.Timeout, log), nil
		case vars.ProviderOpenAI:
			m, err := chat.CreateOpenAIChatModel(ctx, c.OpenAIKey, c.OpenAIBaseURL, c.SummaryModel, c.Timeout)
			if err != nil {
				return nil, err
			}
			return summarize.NewChatSummarizer(m, c.Timeout, log), nil
		case vars.ProviderNone, "":
			return nil, fmt.Errorf("%w: summaries disabled", summarize.ErrSummarization)
		default:
			return nil, fmt.Errorf("%w: unknown summary provider %q", summarize.ErrSummarization, c.SummaryProvider)
		}
	}
}
