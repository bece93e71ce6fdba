package medical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const labReport = `Complete Blood Count
Patient: John Doe, Age 42

Hemoglobin      13.5 g/dL    Reference Range: 12.0-16.0
Glucose (F)     92 mg/dL     Reference Range: 70-100
Creatinine      1.0 mg/dL    Reference Range: 0.6-1.2
Platelet count  250          Reference Range: 150-400`

func TestValidateReportAcceptsLabReport(t *testing.T) {
	res := ValidateReport(labReport)

	require.True(t, res.IsValid)
	assert.GreaterOrEqual(t, len(res.MatchedKeywords), ReportVocabulary.MinKeywords)
	assert.Contains(t, res.MatchedKeywords, "hemoglobin")
	assert.Contains(t, res.MatchedKeywords, "glucose")
	assert.Greater(t, res.Confidence, 0.0)
	assert.LessOrEqual(t, res.Confidence, 100.0)
	assert.Empty(t, res.Reason)
}

func TestValidateReportRejectsNonMedicalText(t *testing.T) {
	res := ValidateReport("This is a recipe for chocolate cake. Mix flour and cocoa, then bake.")

	require.False(t, res.IsValid)
	assert.Empty(t, res.MatchedKeywords)
	assert.NotEmpty(t, res.Reason)
}

func TestValidateScorePathWithoutKeywords(t *testing.T) {
	// No vocabulary hits, but units, a ref. range phrase, demographic context
	// and a dense number table clear the heuristic threshold on their own.
	text := "Readings: 1 2 3 4 5 6 7 8 9 10 in U/L against the ref. range for sex M."

	res := Validate(ReportVocabulary, text)

	assert.True(t, res.IsValid)
	assert.Empty(t, res.MatchedKeywords)
}

func TestValidateQuestion(t *testing.T) {
	tests := []struct {
		name     string
		question string
		valid    bool
	}{
		{"report question", "Can you explain my blood test results?", true},
		{"single keyword", "Is this level normal?", true},
		{"weather", "What's the weather like tomorrow?", false},
		{"geography", "What is the capital of France?", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateQuestion(tt.question)
			assert.Equal(t, tt.valid, res.IsValid)
			if !tt.valid {
				assert.Equal(t, notMedicalReason, res.Reason)
			}
		})
	}
}

func TestMatchedKeywordsFollowVocabularyOrder(t *testing.T) {
	res := Validate(ChatVocabulary, "my doctor ordered a blood test")

	// blood, test, doctor in vocabulary order regardless of text order
	require.Equal(t, []string{"blood", "test", "doctor"}, res.MatchedKeywords)
}
