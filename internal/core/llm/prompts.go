package llm

import (
	"fmt"
	"strings"
)

// plainTextInstruction is appended to every prompt sent to the model.
const plainTextInstruction = "IMPORTANT: Respond in PLAIN TEXT only. Do not use markdown formatting, " +
	"asterisks (*), underscores (_), bold text (**), or any special formatting. " +
	"Use simple text with line breaks for readability."

// AnalysisPrompt frames a medical report for analysis.
func AnalysisPrompt(reportText string) string {
	return fmt.Sprintf(`You are a medical assistant helping a patient understand their lab report.

Please analyze the following medical report:

%s

Provide a comprehensive but easy-to-understand analysis covering:
1. A summary of the key findings
2. Any values outside their reference ranges and what they may indicate
3. General lifestyle or follow-up recommendations

Always remind the patient to consult a qualified healthcare provider.`, reportText)
}

// ChatPrompt frames a standalone question with no report context.
func ChatPrompt(question string) string {
	return fmt.Sprintf(`You are a helpful medical assistant. The user has provided the following prompt:
%s

Please generate a clear, factual response. If the question cannot be answered
without seeing the user's medical records, say so and suggest what information
would help.`, question)
}

// ContextualPrompt grounds a question on retrieved passages, nearest first.
func ContextualPrompt(passages []string, question string) string {
	var sb strings.Builder
	sb.WriteString("You are a medical assistant answering based on the patient's medical report and its analysis.\n\n")
	sb.WriteString("Relevant context from the report (most relevant first):\n\n")
	for _, p := range passages {
		sb.WriteString(p)
		sb.WriteString("\n---\n")
	}
	sb.WriteString("\nThe user has provided the following prompt:\n")
	sb.WriteString(question)
	sb.WriteString("\n\nPlease generate a response grounded in the context above. If the context does not cover the question, say so rather than guessing.")
	return sb.String()
}

// chunkPrompt frames one part of an oversized report.
func chunkPrompt(part, total int, chunk string) string {
	return fmt.Sprintf("This is part %d of %d of a medical report. Please analyze this section:\n\n%s", part, total, chunk)
}

// withPlainText suffixes the formatting instruction.
func withPlainText(prompt string) string {
	return prompt + "\n\n" + plainTextInstruction
}
