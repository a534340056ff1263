package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "keeps terminators",
			text: "This agreement shall automatically renew without notice. Liability is capped at $1,000.",
			want: []string{
				"This agreement shall automatically renew without notice.",
				"Liability is capped at $1,000.",
			},
		},
		{
			name: "question and exclamation",
			text: "Is the customer allowed to cancel early? Yes, with thirty days written notice!",
			want: []string{
				"Is the customer allowed to cancel early?",
				"Yes, with thirty days written notice!",
			},
		},
		{
			name: "drops short fragments",
			text: "Page 1. Section 4. The Provider may terminate this agreement at any time.",
			want: []string{"The Provider may terminate this agreement at any time."},
		},
		{
			name: "decimal points do not split",
			text: "The monthly fee is 12.50 dollars per seat and user.",
			want: []string{"The monthly fee is 12.50 dollars per seat and user."},
		},
		{
			name: "no terminator",
			text: "Confidential information shall not be disclosed",
			want: []string{"Confidential information shall not be disclosed"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Texts(Split(tt.text)))
		})
	}
}

func TestSplit_LengthBoundary(t *testing.T) {
	got := Split("Exactly twenty char. Nineteen chars xxx. Trailing sentence is kept.")
	require.Len(t, got, 2)
	assert.Equal(t, "Exactly twenty char.", got[0].Text)
	assert.Equal(t, "Trailing sentence is kept.", got[1].Text)
}

func TestSplit_IndexesFollowKeptOrder(t *testing.T) {
	got := Split("Short. The first long enough sentence. Tiny. The second long enough sentence.")
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, 1, got[1].Index)
}

func TestSplit_Empty(t *testing.T) {
	assert.Empty(t, Split(""))
	assert.Empty(t, Split("   "))
}
