// Package segment splits normalized contract text into sentences.
package segment

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"workguard/types"
)

// MinSentenceLength shorter fragments (headers, page numbers) are dropped.
const MinSentenceLength = 20

// Split cuts text after '.', '!' or '?' when followed by whitespace. The
// terminator stays on its sentence. Indexes follow the order of the kept
// sentences.
func Split(text string) []types.Sentence {
	var (
		sentences []types.Sentence
		start     int
	)
	emit := func(end int) {
		s := strings.TrimSpace(text[start:end])
		if utf8.RuneCountInString(s) < MinSentenceLength {
			return
		}
		sentences = append(sentences, types.Sentence{Text: s, Index: len(sentences)})
	}

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		next, _ := utf8.DecodeRuneInString(text[i:])
		if i >= len(text) || !unicode.IsSpace(next) {
			continue
		}
		emit(i)
		for i < len(text) {
			ws, n := utf8.DecodeRuneInString(text[i:])
			if !unicode.IsSpace(ws) {
				break
			}
			i += n
		}
		start = i
	}
	if start < len(text) {
		emit(len(text))
	}
	return sentences
}

// Texts returns the sentence texts in order.
func Texts(sentences []types.Sentence) []string {
	out := make([]string, len(sentences))
	for i, s := range sentences {
		out[i] = s.Text
	}
	return out
}
