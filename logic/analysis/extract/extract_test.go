package extract

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeParser struct {
	pages []string
	err   error
	panic bool
}

func (f *fakeParser) Parse(ctx context.Context, r io.Reader, opts ...parser.Option) ([]*schema.Document, error) {
	if f.panic {
		panic("malformed xref table")
	}
	if f.err != nil {
		return nil, f.err
	}
	docs := make([]*schema.Document, 0, len(f.pages))
	for _, p := range f.pages {
		docs = append(docs, &schema.Document{Content: p})
	}
	return docs, nil
}

func writePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contract.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 stub"), 0o600))
	return path
}

func newExtractor(t *testing.T, p parser.Parser) *Extractor {
	t.Helper()
	e, err := NewExtractorWithParser(context.Background(), p)
	require.NoError(t, err)
	return e
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a b c", Normalize("  a \n\t b\x00\r\n  c  "))
	assert.Equal(t, "ok", Normalize("o\x07k"))
	assert.Equal(t, "", Normalize(" \n "))
}

func TestNormalize_SpaceLikeSeparators(t *testing.T) {
	assert.Equal(t, "end of page one. Next page begins here", Normalize("end of page one.\fNext page begins here"))
	assert.Equal(t, "tab vertical", Normalize("tab\vvertical"))
	assert.Equal(t, "non breaking", Normalize("non\u00a0\u00a0breaking"))
	assert.Equal(t, "line separator", Normalize("line\u2028separator"))
	assert.Equal(t, "padded", Normalize("\u00a0\u3000padded\u2029"))
}

func TestExtract_JoinsPages(t *testing.T) {
	page1 := "This Agreement is entered into by the Provider and the Customer.\n\n"
	page2 := "Payment of all fees is due within thirty days of the invoice date."
	e := newExtractor(t, &fakeParser{pages: []string{page1, "   ", page2}})

	text, err := e.Extract(context.Background(), writePDF(t))
	require.NoError(t, err)
	assert.Equal(t, Normalize(page1+" "+page2), text)
	assert.NotContains(t, text, "  ")
}

func TestExtract_LengthBoundary(t *testing.T) {
	// 50 + 1 collapsed space + 49 = 100 characters
	accepted := strings.Repeat("a", 50) + " \n\n\t " + strings.Repeat("b", 49)
	e := newExtractor(t, &fakeParser{pages: []string{accepted}})
	text, err := e.Extract(context.Background(), writePDF(t))
	require.NoError(t, err)
	assert.Len(t, text, MinTextLength)

	rejected := strings.Repeat("a", MinTextLength-1) + "   \n\n  "
	e = newExtractor(t, &fakeParser{pages: []string{rejected}})
	_, err = e.Extract(context.Background(), writePDF(t))
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check(strings.Repeat("x", 100)))
	assert.ErrorIs(t, Check(strings.Repeat("x", 99)), ErrExtraction)
	assert.ErrorIs(t, Check(""), ErrExtraction)
}

func TestExtract_Failures(t *testing.T) {
	tests := []struct {
		name string
		p    *fakeParser
	}{
		{"no pages", &fakeParser{}},
		{"blank pages", &fakeParser{pages: []string{" ", "\n"}}},
		{"parser error", &fakeParser{err: errors.New("encrypted document")}},
		{"parser panic", &fakeParser{panic: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newExtractor(t, tt.p)
			_, err := e.Extract(context.Background(), writePDF(t))
			assert.ErrorIs(t, err, ErrExtraction)
		})
	}
}

func TestExtract_MissingFile(t *testing.T) {
	e := newExtractor(t, &fakeParser{pages: []string{strings.Repeat("a", 200)}})
	_, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, ErrExtraction)
}
