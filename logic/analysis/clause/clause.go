// Package clause assigns contract sentences to a fixed set of clause
// categories, semantically when embeddings are available and by keyword
// otherwise.
package clause

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"workguard/logic/analysis/embed"
	"workguard/types"
)

// Threshold is the cosine similarity above which a sentence matches.
const Threshold = 0.45

type Category struct {
	Name     string
	Keywords []string
}

// Categories in canonical order.
var Categories = []Category{
	{Name: "Payment Terms", Keywords: []string{"payment", "fee", "charges", "cost"}},
	{Name: "Termination", Keywords: []string{"terminate", "termination", "cancel"}},
	{Name: "Confidentiality", Keywords: []string{"confidential", "privacy"}},
	{Name: "Data Usage", Keywords: []string{"data", "third party", "information"}},
	{Name: "Auto Renewal", Keywords: []string{"renewal", "automatically"}},
	{Name: "Liability", Keywords: []string{"penalty", "liability", "damages"}},
}

// Names returns the canonical category names.
func Names() []string {
	out := make([]string, len(Categories))
	for i, c := range Categories {
		out[i] = c.Name
	}
	return out
}

// Match is one detected category with its matched sentences in input order.
type Match struct {
	Category  string
	Sentences []string
}

// Matches holds only categories with at least one sentence, in canonical order.
type Matches []Match

func (m Matches) Names() []string {
	out := make([]string, len(m))
	for i, x := range m {
		out[i] = x.Category
	}
	return out
}

// Count of sentences matched for name; zero when not detected.
func (m Matches) Count(name string) int {
	for _, x := range m {
		if x.Category == name {
			return len(x.Sentences)
		}
	}
	return 0
}

func (m Matches) Counts() map[string]int {
	out := make(map[string]int, len(m))
	for _, x := range m {
		out[x.Category] = len(x.Sentences)
	}
	return out
}

type Classifier struct {
	provider   embed.Provider
	categories []Category
	threshold  float64
	log        *zap.Logger
}

func NewClassifier(provider embed.Provider, log *zap.Logger) *Classifier {
	if provider == nil {
		provider = embed.Unavailable{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Classifier{
		provider:   provider,
		categories: Categories,
		threshold:  Threshold,
		log:        log.Named("clause"),
	}
}

// Classify matches sentences against every category. sentenceVecs are the
// real sentence embeddings, or nil when they could not be computed; in that
// case, or when the provider is unavailable, every category uses keyword
// matching. A failure embedding one category's keywords only affects that
// category.
func (c *Classifier) Classify(ctx context.Context, sentences []types.Sentence, sentenceVecs [][]float64) Matches {
	semantic := c.provider.Available() && sentenceVecs != nil && len(sentenceVecs) == len(sentences)

	var out Matches
	for _, cat := range c.categories {
		var matched []string
		if semantic {
			var err error
			matched, err = c.bySimilarity(ctx, cat, sentences, sentenceVecs)
			if err != nil {
				c.log.Warn("semantic clause match failed, using keywords",
					zap.String("category", cat.Name), zap.Error(err))
				matched = ByKeywords(cat, sentences)
			}
		} else {
			matched = ByKeywords(cat, sentences)
		}
		if len(matched) > 0 {
			out = append(out, Match{Category: cat.Name, Sentences: matched})
		}
	}
	return out
}

func (c *Classifier) bySimilarity(ctx context.Context, cat Category, sentences []types.Sentence, vecs [][]float64) ([]string, error) {
	kw, err := c.provider.Encode(ctx, []string{strings.Join(cat.Keywords, " ")})
	if err != nil {
		return nil, err
	}
	if len(kw) != 1 {
		return nil, embed.ErrModelUnavailable
	}
	var matched []string
	for i, s := range sentences {
		if embed.Cosine(kw[0], vecs[i]) > c.threshold {
			matched = append(matched, s.Text)
		}
	}
	return matched, nil
}

// ByKeywords matches sentences containing any keyword, case-insensitively.
func ByKeywords(cat Category, sentences []types.Sentence) []string {
	var matched []string
	for _, s := range sentences {
		lower := strings.ToLower(s.Text)
		for _, kw := range cat.Keywords {
			if strings.Contains(lower, kw) {
				matched = append(matched, s.Text)
				break
			}
		}
	}
	return matched
}
