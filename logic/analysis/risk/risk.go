// Package risk flags sentences containing risk-indicative language and
// aggregates them into a contract-level risk level.
package risk

import (
	"strings"

	"workguard/types"
)

// MaxFindings caps the presented findings; the full risky set is kept for
// heatmap coloring.
const MaxFindings = 10

// Phrases whose presence marks a sentence as risky.
var Phrases = []string{
	"without notice",
	"sole discretion",
	"non-refundable",
	"automatically renew",
	"no liability",
	"indemnify",
	"unilateral",
}

var (
	criticalPhrases = []string{"automatically renew", "without notice"}
	highPhrases     = []string{"no liability", "indemnify"}
)

// Detect returns the distinct risky sentences in first-seen order.
func Detect(sentences []types.Sentence) []string {
	seen := make(map[string]struct{})
	var risky []string
	for _, s := range sentences {
		if _, dup := seen[s.Text]; dup {
			continue
		}
		if containsAny(strings.ToLower(s.Text), Phrases) {
			seen[s.Text] = struct{}{}
			risky = append(risky, s.Text)
		}
	}
	return risky
}

// SeverityOf evaluates the precedence rules top-down; first match wins.
func SeverityOf(sentence string) types.Severity {
	lower := strings.ToLower(sentence)
	switch {
	case containsAny(lower, criticalPhrases):
		return types.SeverityCritical
	case containsAny(lower, highPhrases):
		return types.SeverityHigh
	default:
		return types.SeverityCaution
	}
}

func CategoryOf(sentence string) string {
	if strings.Contains(strings.ToLower(sentence), "renew") {
		return "Auto-Renewal"
	}
	return "Liability"
}

// Findings turns at most MaxFindings risky sentences into findings.
func Findings(risky []string) []types.RiskFinding {
	n := min(len(risky), MaxFindings)
	out := make([]types.RiskFinding, 0, n)
	for _, s := range risky[:n] {
		out = append(out, Finding(s))
	}
	return out
}

func Finding(sentence string) types.RiskFinding {
	return types.RiskFinding{
		Severity:    SeverityOf(sentence),
		Category:    CategoryOf(sentence),
		Description: sentence,
	}
}

// Set indexes risky sentences for membership checks.
func Set(risky []string) map[string]struct{} {
	out := make(map[string]struct{}, len(risky))
	for _, s := range risky {
		out[s] = struct{}{}
	}
	return out
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
