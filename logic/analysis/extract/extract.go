// Package extract pulls normalized text out of contract PDFs.
package extract

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cloudwego/eino-ext/components/document/loader/file"
	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	"github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/components/document/parser"
)

// MinTextLength is the minimum number of characters of normalized text a
// document must yield before any analysis runs.
const MinTextLength = 100

// ErrExtraction marks documents with no usable text. It aborts the pipeline.
var ErrExtraction = errors.New("could not extract sufficient text from PDF")

var (
	controlChars = regexp.MustCompile(`[\x00-\x08\x0E-\x1F\x7F]`)
)

type Extractor struct {
	loader document.Loader
}

// NewExtractor 使用 eino 的 PDF 解析器，按页输出
func NewExtractor(ctx context.Context) (*Extractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: true})
	if err != nil {
		return nil, fmt.Errorf("create pdf parser failed: %w", err)
	}
	return NewExtractorWithParser(ctx, p)
}

// NewExtractorWithParser wires an arbitrary eino parser behind the file loader.
func NewExtractorWithParser(ctx context.Context, p parser.Parser) (*Extractor, error) {
	loader, err := file.NewFileLoader(ctx, &file.FileLoaderConfig{
		UseNameAsID: true,
		Parser:      p,
	})
	if err != nil {
		return nil, fmt.Errorf("create file loader failed: %w", err)
	}
	return &Extractor{loader: loader}, nil
}

// Extract returns the whitespace-normalized text of the PDF at path. Every
// failure, including parser panics on malformed files, is reported as
// ErrExtraction.
func (e *Extractor) Extract(ctx context.Context, path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: parser panic: %v", ErrExtraction, r)
		}
	}()

	docs, err := e.loader.Load(ctx, document.Source{URI: path})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	var sb strings.Builder
	for _, doc := range docs {
		if doc == nil || strings.TrimSpace(doc.Content) == "" {
			continue
		}
		sb.WriteString(doc.Content)
		sb.WriteString(" ")
	}

	text = Normalize(sb.String())
	if err := Check(text); err != nil {
		return "", err
	}
	return text, nil
}

// Check enforces the minimum text length on already normalized text.
func Check(text string) error {
	if n := utf8.RuneCountInString(text); n < MinTextLength {
		return fmt.Errorf("%w: got %d characters, need %d", ErrExtraction, n, MinTextLength)
	}
	return nil
}

// Normalize strips null bytes, invalid UTF-8 and control characters, then
// collapses every whitespace run to a single space.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	s = controlChars.ReplaceAllString(s, "")
	// Form feeds, vertical tabs and Unicode spaces separate words like any other blank.
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}
