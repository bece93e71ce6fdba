package llm

// Tier is one step in the model fallback chain. Ordering defines the chain:
// Primary -> Secondary -> Tertiary -> Fallback, Fallback terminal.
type Tier int

const (
	TierPrimary Tier = iota
	TierSecondary
	TierTertiary
	TierFallback
)

func (t Tier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	case TierFallback:
		return "fallback"
	}
	return "unknown"
}

// ModelConfig maps a tier to a concrete model and generation parameters.
type ModelConfig struct {
	Model       string
	MaxTokens   int
	Temperature float32
}

var tierConfigs = map[Tier]ModelConfig{
	TierPrimary: {
		Model:       "meta-llama/llama-4-maverick-17b-128e-instruct",
		MaxTokens:   2000,
		Temperature: 0.7,
	},
	TierSecondary: {
		Model:       "llama-3.3-70b-versatile",
		MaxTokens:   2000,
		Temperature: 0.7,
	},
	TierTertiary: {
		Model:       "llama-3.1-8b-instant",
		MaxTokens:   2000,
		Temperature: 0.7,
	},
	TierFallback: {
		Model:       "llama-3.1-8b-instant",
		MaxTokens:   2000,
		Temperature: 0.7,
	},
}

// chainFrom returns the fallback chain starting at the given tier.
func chainFrom(start Tier) []Tier {
	var chain []Tier
	for t := start; t <= TierFallback; t++ {
		chain = append(chain, t)
	}
	return chain
}
