// Package embedtest provides deterministic embedding providers for tests.
package embedtest

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
)

// ErrFake is returned by Fake when configured to fail.
var ErrFake = errors.New("fake embedding failure")

// Fake embeds text as a hashed bag of words, so texts sharing words are
// cosine-similar. FailOn makes any batch containing one of its texts fail.
type Fake struct {
	Dim    int
	Err    error
	FailOn map[string]bool

	mu    sync.Mutex
	calls int
}

func (f *Fake) Available() bool { return true }

func (f *Fake) Encode(_ context.Context, texts []string) ([][]float64, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	out := make([][]float64, len(texts))
	for i, t := range texts {
		if f.FailOn[t] {
			return nil, ErrFake
		}
		out[i] = BagOfWords(t, f.dim())
	}
	return out, nil
}

// Calls returns the number of Encode invocations.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *Fake) dim() int {
	if f.Dim <= 0 {
		return 64
	}
	return f.Dim
}

// BagOfWords hashes lower-cased words into dim buckets.
func BagOfWords(text string, dim int) []float64 {
	v := make([]float64, dim)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		v[int(h.Sum32())%dim]++
	}
	return v
}
