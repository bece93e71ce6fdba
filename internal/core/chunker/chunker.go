package chunker

import (
	"strings"
)

// DefaultMaxChunkTokens is the budget above which prompts get split before
// being sent to the model. Chunking triggers only when the estimate is
// strictly greater than the budget.
const DefaultMaxChunkTokens = 6000

// EstimateTokens approximates the token count of text (~4 chars per token).
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// Split breaks text into chunks whose estimated token count stays within
// maxTokens. Sentences (delimited by . ! ?) are accumulated greedily; a
// sentence that alone exceeds the budget falls back to word-level
// accumulation, and a single oversized word is emitted as its own chunk
// rather than failing. Pure function: same input, same chunks.
func Split(text string, maxTokens int) []string {
	var chunks []string
	var current string

	for _, sentence := range splitSentences(text) {
		candidate := join(current, sentence)
		if EstimateTokens(candidate) <= maxTokens {
			current = candidate
			continue
		}

		if current != "" {
			chunks = append(chunks, strings.TrimSpace(current))
			current = sentence
			if EstimateTokens(current) <= maxTokens {
				continue
			}
			current = ""
		}

		// Sentence alone exceeds the budget: accumulate words instead.
		var wordChunk string
		for _, word := range strings.Fields(sentence) {
			wc := join(wordChunk, word)
			if EstimateTokens(wc) <= maxTokens {
				wordChunk = wc
				continue
			}
			if wordChunk != "" {
				chunks = append(chunks, strings.TrimSpace(wordChunk))
				wordChunk = word
			} else {
				// Pathological single word over budget.
				chunks = append(chunks, word)
			}
		}
		current = wordChunk
	}

	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}
	return chunks
}

// splitSentences returns trimmed sentences with their terminator restored.
func splitSentences(text string) []string {
	var out []string
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(b.String()); s != "" {
				out = append(out, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		out = append(out, s+".")
	}
	return out
}

func join(a, b string) string {
	if a == "" {
		return b
	}
	return a + " " + b
}
