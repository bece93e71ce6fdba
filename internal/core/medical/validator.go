package medical

import (
	"regexp"
	"strings"
)

// ValidationResult is advisory and never persisted; MatchedKeywords and
// Confidence are returned to the caller for transparency.
type ValidationResult struct {
	IsValid         bool     `json:"isValid"`
	MatchedKeywords []string `json:"matchedKeywords"`
	Confidence      float64  `json:"confidence"`
	Reason          string   `json:"reason,omitempty"`
}

const notMedicalReason = "The document does not appear to contain medical content. Please provide a valid medical lab report."

var (
	unitPattern    = regexp.MustCompile(`(?i)(mg/dl|g/dl|mmol/l|micromol/l|iu/ml|iu/l|u/l|ng/ml|g/l|pg/ml)`)
	refRangePhrase = regexp.MustCompile(`(?i)(reference\s+range|ref\.?\s+range|reference\s+interval|normal\s+range)`)
	numberPattern  = regexp.MustCompile(`\d+(\.\d+)?`)
)

var patientContextWords = []string{"patient", "age", "sex"}

const (
	scoreThreshold   = 6
	manyNumbersFloor = 10
)

// Validate scores text against the vocabulary. A text is accepted when it
// matches at least vocab.MinKeywords terms, or when the combined heuristic
// score clears the threshold. Case-insensitive substring matching; matched
// keywords come back in vocabulary order.
func Validate(vocab *Vocabulary, text string) ValidationResult {
	lower := strings.ToLower(text)

	var matched []string
	for _, term := range vocab.Terms {
		if strings.Contains(lower, term) {
			matched = append(matched, term)
		}
	}

	score := len(matched)
	if unitPattern.MatchString(text) {
		score += 2
	}
	if refRangePhrase.MatchString(text) {
		score += 2
	}
	for _, w := range patientContextWords {
		if strings.Contains(lower, w) {
			score++
			break
		}
	}
	if len(numberPattern.FindAllString(text, manyNumbersFloor)) >= manyNumbersFloor {
		score += 2
	}

	confidence := float64(score) / float64(len(vocab.Terms)+7) * 100
	if confidence > 100 {
		confidence = 100
	}

	res := ValidationResult{
		IsValid:         len(matched) >= vocab.MinKeywords || score >= scoreThreshold,
		MatchedKeywords: matched,
		Confidence:      confidence,
	}
	if !res.IsValid {
		res.Reason = notMedicalReason
	}
	return res
}

// ValidateReport gates uploaded report text.
func ValidateReport(text string) ValidationResult {
	return Validate(ReportVocabulary, text)
}

// ValidateQuestion gates free-text chat questions.
func ValidateQuestion(text string) ValidationResult {
	return Validate(ChatVocabulary, text)
}
