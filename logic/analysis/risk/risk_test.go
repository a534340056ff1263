package risk

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workguard/logic/analysis/segment"
	"workguard/types"
)

func TestDetect_Scenario(t *testing.T) {
	ss := segment.Split("This agreement shall automatically renew without notice. Liability is capped at $1,000.")
	risky := Detect(ss)

	// only the first sentence contains a listed phrase
	require.Equal(t, []string{"This agreement shall automatically renew without notice."}, risky)
	findings := Findings(risky)
	require.Len(t, findings, 1)
	assert.Equal(t, types.SeverityCritical, findings[0].Severity)
	assert.Equal(t, "Auto-Renewal", findings[0].Category)
	assert.Equal(t, LevelLow, LevelFor(len(risky)).Label)
}

func TestDetect_TwoRiskySentencesIsMedium(t *testing.T) {
	ss := segment.Split("This agreement shall automatically renew without notice. " +
		"The Provider has no liability for any damages.")
	risky := Detect(ss)
	require.Len(t, risky, 2)
	assert.Equal(t, types.SeverityCritical, Findings(risky)[0].Severity)
	assert.Equal(t, LevelMedium, LevelFor(len(risky)).Label)
}

func TestDetect_DedupKeepsFirstSeenOrder(t *testing.T) {
	ss := []types.Sentence{
		{Text: "Fees are non-refundable in all cases.", Index: 0},
		{Text: "Customer shall indemnify the Provider.", Index: 1},
		{Text: "Fees are non-refundable in all cases.", Index: 2},
		{Text: "Nothing risky is stated in this sentence.", Index: 3},
	}
	assert.Equal(t, []string{
		"Fees are non-refundable in all cases.",
		"Customer shall indemnify the Provider.",
	}, Detect(ss))
}

func TestDetect_CaseInsensitive(t *testing.T) {
	ss := []types.Sentence{{Text: "Changes are made at the SOLE DISCRETION of the vendor."}}
	assert.Len(t, Detect(ss), 1)
}

func TestSeverityOf(t *testing.T) {
	tests := []struct {
		sentence string
		want     types.Severity
	}{
		{"Prices may change without notice.", types.SeverityCritical},
		{"The term will Automatically Renew each year.", types.SeverityCritical},
		{"Vendor has no liability and customer will indemnify.", types.SeverityHigh},
		{"Customer shall indemnify the Provider.", types.SeverityHigh},
		{"We will indemnify you and may change terms without notice.", types.SeverityCritical},
		{"Fees are non-refundable.", types.SeverityCaution},
		{"Unilateral amendments are permitted.", types.SeverityCaution},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SeverityOf(tt.sentence), tt.sentence)
	}
}

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, "Auto-Renewal", CategoryOf("The subscription RENEWS yearly."))
	assert.Equal(t, "Auto-Renewal", CategoryOf("Non-renewable fees apply."))
	assert.Equal(t, "Liability", CategoryOf("Customer shall indemnify the Provider."))
}

func TestFindings_Capped(t *testing.T) {
	var risky []string
	for i := 0; i < 14; i++ {
		risky = append(risky, fmt.Sprintf("Clause %d is non-refundable.", i))
	}
	findings := Findings(risky)
	require.Len(t, findings, MaxFindings)
	assert.Equal(t, risky[9], findings[9].Description)
	assert.Len(t, Set(risky), 14)

	assert.Empty(t, Findings(nil))
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		count int
		label string
		emoji string
	}{
		{0, LevelLow, "🟢"},
		{1, LevelLow, "🟢"},
		{2, LevelMedium, "🟠"},
		{4, LevelMedium, "🟠"},
		{5, LevelHigh, "🔴"},
		{40, LevelHigh, "🔴"},
	}
	for _, tt := range tests {
		got := LevelFor(tt.count)
		assert.Equal(t, tt.label, got.Label, "count %d", tt.count)
		assert.Equal(t, tt.emoji, got.Emoji, "count %d", tt.count)
	}
}
