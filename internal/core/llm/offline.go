package llm

import (
	"strings"
)

// The offline generators are the terminal degradation mode: deterministic,
// clearly labeled, no external dependency. They trade specificity for
// availability so a provider outage never turns into a hard failure.

// OfflineAnalysis emits canned guidance blocks for recognized lab-domain
// terms found in the source text, plus a disclaimer and recommendations.
func OfflineAnalysis(text string) string {
	lower := strings.ToLower(text)

	var b strings.Builder
	b.WriteString("OFFLINE MEDICAL ANALYSIS\n\n")
	b.WriteString("DISCLAIMER: This is a basic offline analysis. Please consult a healthcare provider for proper medical advice.\n\n")

	if strings.Contains(lower, "hemoglobin") || strings.Contains(lower, "hb") {
		b.WriteString("Blood Analysis Detected:\n")
		b.WriteString("- Hemoglobin levels found in report\n")
		b.WriteString("- Please check if values are within normal range (12-16 g/dL for adults)\n\n")
	}

	if strings.Contains(lower, "glucose") || strings.Contains(lower, "sugar") {
		b.WriteString("Glucose Analysis:\n")
		b.WriteString("- Blood sugar levels detected\n")
		b.WriteString("- Normal fasting glucose: 70-100 mg/dL\n")
		b.WriteString("- Consult doctor if values are outside normal range\n\n")
	}

	if strings.Contains(lower, "cholesterol") || strings.Contains(lower, "hdl") || strings.Contains(lower, "ldl") {
		b.WriteString("Cholesterol Analysis:\n")
		b.WriteString("- Lipid profile detected\n")
		b.WriteString("- Monitor HDL (good cholesterol) and LDL (bad cholesterol) levels\n")
		b.WriteString("- Follow dietary recommendations from your doctor\n\n")
	}

	if strings.Contains(lower, "creatinine") || strings.Contains(lower, "kidney") {
		b.WriteString("Kidney Function:\n")
		b.WriteString("- Creatinine levels detected\n")
		b.WriteString("- Normal range: 0.6-1.2 mg/dL\n")
		b.WriteString("- Elevated levels may indicate kidney issues\n\n")
	}

	b.WriteString("Recommendations:\n")
	b.WriteString("- Review all values with your healthcare provider\n")
	b.WriteString("- Follow up on any abnormal results\n")
	b.WriteString("- Maintain regular health checkups\n")
	b.WriteString("- Keep track of your medical history\n\n")

	b.WriteString("Note: This analysis was generated offline due to API connectivity issues. For comprehensive analysis, please try again when internet connection is restored.")

	return b.String()
}

// OfflineChatResponse branches on coarse question categories and returns one
// of three canned guidance templates.
func OfflineChatResponse(question string) string {
	lower := strings.ToLower(question)

	var b strings.Builder
	b.WriteString("I'm currently experiencing connectivity issues with my AI service. ")

	switch {
	case strings.Contains(lower, "blood") || strings.Contains(lower, "test") || strings.Contains(lower, "report"):
		b.WriteString("However, I can provide some general guidance about medical reports:\n\n")
		b.WriteString("- Always review results with your healthcare provider\n")
		b.WriteString("- Normal ranges can vary between laboratories\n")
		b.WriteString("- Follow up on any abnormal values\n")
		b.WriteString("- Keep copies of all your medical reports\n\n")
	case strings.Contains(lower, "symptom") || strings.Contains(lower, "pain"):
		b.WriteString("For symptoms and pain concerns:\n\n")
		b.WriteString("- Document your symptoms with details\n")
		b.WriteString("- Note the duration and severity\n")
		b.WriteString("- Consult your healthcare provider\n")
		b.WriteString("- Seek emergency care for severe symptoms\n\n")
	default:
		b.WriteString("For medical questions, please:\n\n")
		b.WriteString("- Consult with your healthcare provider\n")
		b.WriteString("- Use reliable medical resources\n")
		b.WriteString("- Keep emergency numbers handy\n\n")
	}

	b.WriteString("Please try again when my AI service is back online for more detailed assistance.")

	return b.String()
}
