package llmjson

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ObjectWithSurroundingProse(t *testing.T) {
	raw := `Sure! Here is the analysis you asked for:

{"company_name": "FoodFleet", "founders": ["Sarah Chen", "Mike Rodriguez"]}

Let me know if you need anything else.`

	var got struct {
		CompanyName string   `json:"company_name"`
		Founders    []string `json:"founders"`
	}
	require.NoError(t, ParseInto(raw, &got))
	assert.Equal(t, "FoodFleet", got.CompanyName)
	assert.Equal(t, []string{"Sarah Chen", "Mike Rodriguez"}, got.Founders)
}

func TestParse_CodeFence(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"json fence", "```json\n{\"status\": \"verified\"}\n```"},
		{"bare fence", "```\n{\"status\": \"verified\"}\n```"},
		{"fence with prose", "Here you go:\n```json\n{\"status\": \"verified\"}\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]string
			require.NoError(t, ParseInto(tt.raw, &got))
			assert.Equal(t, "verified", got["status"])
		})
	}
}

func TestParse_TrailingCommas(t *testing.T) {
	raw := `{"findings": ["a", "b",], "confidence": 0.8,}`

	var got struct {
		Findings   []string `json:"findings"`
		Confidence float64  `json:"confidence"`
	}
	require.NoError(t, ParseInto(raw, &got))
	assert.Equal(t, []string{"a", "b"}, got.Findings)
	assert.Equal(t, 0.8, got.Confidence)
}

func TestParse_MultilineObject(t *testing.T) {
	raw := "{\n  \"summary\": \"found it\",\n  \"red_flags\": []\n}"

	var got map[string]any
	require.NoError(t, ParseInto(raw, &got))
	assert.Equal(t, "found it", got["summary"])
}

func TestParse_NoStructure(t *testing.T) {
	_, err := Parse("I could not find any information about this company.")
	assert.ErrorIs(t, err, ErrNoStructure)
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse(`{"status": "verified", "severity": }`)
	var malformed *MalformedError
	require.True(t, errors.As(err, &malformed))
	assert.NotEmpty(t, malformed.Cleaned)
	assert.NotNil(t, malformed.Unwrap())
}

func TestParseArray_GapList(t *testing.T) {
	raw := "```json\n[\n  \"CRITICAL: no traction metrics\",\n  \"HIGH: no competitors mentioned\",\n]\n```"

	var gaps []string
	require.NoError(t, ParseArrayInto(raw, &gaps))
	assert.Len(t, gaps, 2)
	assert.Equal(t, "CRITICAL: no traction metrics", gaps[0])
}

func TestParseArray_NoStructure(t *testing.T) {
	_, err := ParseArray(`{"not": "an array"}`)
	assert.ErrorIs(t, err, ErrNoStructure)
}
