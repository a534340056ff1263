// Package summarize produces the abstractive contract summary. The model is
// an opaque text-to-text capability behind the Summarizer interface.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"workguard/vars"
)

const (
	// MaxInputChars of normalized text are sent to the model.
	MaxInputChars = 3000
	MinTokens     = 80
	MaxTokens     = 180
)

// ErrSummarization is recoverable: the result keeps an empty summary.
var ErrSummarization = errors.New("summarization failed")

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

type Summarizer interface {
	Summarize(ctx context.Context, text string, minTokens, maxTokens int) (string, error)
}

// Disabled is used when no summary backend is configured.
type Disabled struct{}

func (Disabled) Summarize(context.Context, string, int, int) (string, error) {
	return "", fmt.Errorf("%w: no summarizer configured", ErrSummarization)
}

// Run summarizes the head of text with the fixed length bounds. Every
// failure, panics included, is reported as ErrSummarization.
func Run(ctx context.Context, s Summarizer, text string) (summary string, err error) {
	if s == nil {
		s = Disabled{}
	}
	defer func() {
		if r := recover(); r != nil {
			summary, err = "", fmt.Errorf("%w: panic: %v", ErrSummarization, r)
		}
	}()
	summary, err = s.Summarize(ctx, Head(text, MaxInputChars), MinTokens, MaxTokens)
	if err != nil {
		if errors.Is(err, ErrSummarization) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrSummarization, err)
	}
	return summary, nil
}

// Head returns the first n characters of text.
func Head(text string, n int) string {
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n])
}

// ChatSummarizer prompts an eino chat model with greedy decoding.
type ChatSummarizer struct {
	model   model.BaseChatModel
	timeout time.Duration
	log     *zap.Logger
}

func NewChatSummarizer(m model.BaseChatModel, timeout time.Duration, log *zap.Logger) *ChatSummarizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatSummarizer{model: m, timeout: timeout, log: log.Named("summarize")}
}

func (s *ChatSummarizer) Summarize(ctx context.Context, text string, minTokens, maxTokens int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty input", ErrSummarization)
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	prompt := strings.ReplaceAll(vars.SUMMARIZE, "{{.Content}}", text)
	prompt = strings.ReplaceAll(prompt, "{{.MinTokens}}", strconv.Itoa(minTokens))
	prompt = strings.ReplaceAll(prompt, "{{.MaxTokens}}", strconv.Itoa(maxTokens))

	start := time.Now()
	resp, err := s.model.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)},
		model.WithTemperature(0),
		model.WithMaxTokens(maxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSummarization, err)
	}
	s.log.Debug("summary generated", zap.Duration("took", time.Since(start)))

	summary := Clean(resp.Content)
	if summary == "" {
		return "", fmt.Errorf("%w: model returned no text", ErrSummarization)
	}
	return summary, nil
}

// Clean drops reasoning blocks and markdown fences around the answer.
func Clean(content string) string {
	content = thinkBlock.ReplaceAllString(content, "")
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```text")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
