package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"workguard/logic/analysis/clause"
	"workguard/logic/analysis/embed"
	"workguard/logic/analysis/extract"
	"workguard/logic/analysis/heatmap"
	"workguard/logic/analysis/risk"
	"workguard/logic/analysis/segment"
	"workguard/logic/analysis/summarize"
	"workguard/types"
)

// MsgExtractionFailed is the only top-level error a caller sees for a
// readable request.
const MsgExtractionFailed = "Could not extract sufficient text from PDF. Please ensure the PDF contains readable text."

// Warning texts attached to degraded results.
const (
	WarnEmbeddingUnavailable = "embedding unavailable: keyword fallback"
	WarnEmbeddingFailed      = "embedding failed: keyword fallback"
	WarnSummaryUnavailable   = "summary unavailable"
	warnPlaceholderFormat    = "%s heatmap unavailable: placeholder data"
)

type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// ModelSource hands out the shared model backends. Implementations never
// return nil.
type ModelSource interface {
	Embedder(ctx context.Context) embed.Provider
	Summarizer(ctx context.Context) summarize.Summarizer
}

type AnalysisService struct {
	extractor Extractor
	models    ModelSource
	metrics   *Metrics
	log       *zap.Logger
}

// 构造函数：依赖注入
func NewAnalysisService(extractor Extractor, models ModelSource, metrics *Metrics, log *zap.Logger) *AnalysisService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AnalysisService{
		extractor: extractor,
		models:    models,
		metrics:   metrics,
		log:       log.Named("analysis"),
	}
}

// Analyze runs the full pipeline on the PDF at pdfPath. It never panics and
// never returns nil: failures come back as a result with Status "error".
func (s *AnalysisService) Analyze(ctx context.Context, pdfPath string) *types.AnalysisResult {
	log := s.log.With(zap.String("file", filepath.Base(pdfPath)))
	return s.guard(log, func() *types.AnalysisResult {
		text, err := s.extractor.Extract(ctx, pdfPath)
		if err != nil {
			log.Warn("text extraction failed", zap.Error(err))
			return types.Failed(MsgExtractionFailed)
		}
		return s.analyze(ctx, text, log)
	})
}

// AnalyzeText runs the pipeline on already extracted text. The text is
// normalized and held to the same minimum length as PDF extraction.
func (s *AnalysisService) AnalyzeText(ctx context.Context, text string) *types.AnalysisResult {
	log := s.log.With(zap.String("file", "<text>"))
	return s.guard(log, func() *types.AnalysisResult {
		text = extract.Normalize(text)
		if err := extract.Check(text); err != nil {
			log.Warn("text rejected", zap.Error(err))
			return types.Failed(MsgExtractionFailed)
		}
		return s.analyze(ctx, text, log)
	})
}

func (s *AnalysisService) guard(log *zap.Logger, run func() *types.AnalysisResult) (result *types.AnalysisResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Error("analysis panicked", zap.Any("panic", r), zap.Stack("stack"))
			result = types.Failed(fmt.Sprintf("Analysis failed: %v", r))
		}
		if result == nil {
			result = types.Failed("Analysis failed: empty result")
		}
		s.metrics.observe(result.Status, len(result.RiskySentences), time.Since(start))
		log.Info("analysis finished",
			zap.String("status", result.Status),
			zap.String("risk_level", result.RiskLevel),
			zap.Int("risky", len(result.RiskySentences)),
			zap.Strings("warnings", result.Warnings),
			zap.Duration("took", time.Since(start)))
	}()
	return run()
}

func (s *AnalysisService) analyze(ctx context.Context, text string, log *zap.Logger) *types.AnalysisResult {
	var warnings []string
	warn := func(stage, msg string) {
		warnings = append(warnings, msg)
		s.metrics.degraded(stage)
	}

	// 摘要与条款/风险分析互不依赖，并发执行
	var (
		g          errgroup.Group
		summary    string
		summaryErr error
	)
	g.Go(func() error {
		defer func() {
			if r := recover(); r != nil {
				summaryErr = fmt.Errorf("%w: panic: %v", summarize.ErrSummarization, r)
			}
		}()
		summary, summaryErr = summarize.Run(ctx, s.models.Summarizer(ctx), text)
		return nil
	})

	sentences := segment.Split(text)
	texts := segment.Texts(sentences)
	log.Debug("segmented", zap.Int("sentences", len(sentences)))

	provider := s.models.Embedder(ctx)
	vecs, err := embed.EncodeOrSynthesize(ctx, provider, texts, nil)
	semantic := vecs
	if err != nil {
		semantic = nil
		if provider.Available() {
			log.Warn("sentence embedding failed, using keyword fallback", zap.Error(err))
			warn("embedding", WarnEmbeddingFailed)
		} else {
			warn("embedding", WarnEmbeddingUnavailable)
		}
	}

	matches := clause.NewClassifier(provider, s.log).Classify(ctx, sentences, semantic)
	risky := risk.Detect(sentences)
	level := risk.LevelFor(len(risky))

	heatmaps, substituted := heatmap.NewSynthesizer(provider, s.log).Build(ctx, heatmap.Input{
		Matches:    matches,
		Sentences:  texts,
		Embeddings: vecs,
		Risky:      risk.Set(risky),
	})
	for _, kind := range substituted {
		warn(string(kind), fmt.Sprintf(warnPlaceholderFormat, kind))
	}

	_ = g.Wait()
	if summaryErr != nil {
		log.Warn("summarization failed", zap.Error(summaryErr))
		warn("summary", WarnSummaryUnavailable)
		summary = ""
	}

	if risky == nil {
		risky = []string{}
	}
	return &types.AnalysisResult{
		Status:          types.StatusSuccess,
		Summary:         summary,
		RiskLevel:       level.Label,
		RiskEmoji:       level.Emoji,
		Risks:           risk.Findings(risky),
		RiskySentences:  risky,
		DetectedClauses: matches.Counts(),
		HeatmapData:     heatmaps,
		Warnings:        warnings,
	}
}
