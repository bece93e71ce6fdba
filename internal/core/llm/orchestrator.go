package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/medlens-ai/medlens/internal/core"
	"github.com/medlens-ai/medlens/internal/core/chunker"
)

// Orchestrator walks the model tier chain, classifies failures, and degrades
// to the deterministic offline generators on connectivity loss. It holds no
// mutable state: offline detection is threaded explicitly through each call
// tree, so a shared instance is safe across requests and one user's outage
// cannot bleed into another's.
type Orchestrator struct {
	model core.ChatModel
	log   *logrus.Logger
}

func NewOrchestrator(model core.ChatModel, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{model: model, log: log}
}

// generate walks the fallback chain starting at the given tier. Each prompt
// is suffixed with the plain-text formatting instruction. The connectivity
// probe runs once, before any model call; a negative probe fails without
// consuming a completion. There is no retry within a tier.
//
// The second return value reports whether a connectivity problem was detected
// anywhere in the walk; callers decide whether to engage the offline path.
func (o *Orchestrator) generate(ctx context.Context, prompt string, start Tier) (string, bool, error) {
	if !o.model.Probe(ctx) {
		o.log.Warn("model provider probe failed, treating as offline")
		return "", true, core.E(core.KindModelConnectivity, "model provider unreachable")
	}

	full := withPlainText(prompt)
	offline := false
	var lastErr error

	for _, tier := range chainFrom(start) {
		cfg := tierConfigs[tier]
		text, err := o.model.Complete(ctx, cfg.Model, full, cfg.MaxTokens, cfg.Temperature)
		if err == nil && text != "" {
			return text, offline, nil
		}
		if err == nil {
			err = fmt.Errorf("model %s returned empty response", cfg.Model)
		}

		if isConnectivityError(err) {
			offline = true
			lastErr = core.Wrap(core.KindModelConnectivity, "model call failed", err)
		} else {
			lastErr = core.Wrap(core.KindModelGeneration, fmt.Sprintf("%s tier generation failed", tier), err)
		}
		o.log.WithFields(logrus.Fields{
			"tier":  tier.String(),
			"model": cfg.Model,
		}).WithError(err).Warn("model call failed, trying next tier")
	}

	return "", offline, lastErr
}

// AnalyzeReport generates the analysis for a report's extracted text,
// chunking the prompt when it exceeds the token budget. The raw report text
// travels alongside the formatted prompt so the offline generator never has
// to re-derive it.
func (o *Orchestrator) AnalyzeReport(ctx context.Context, reportText string) (string, error) {
	prompt := AnalysisPrompt(reportText)

	if chunker.EstimateTokens(prompt) <= chunker.DefaultMaxChunkTokens {
		text, offline, err := o.generate(ctx, prompt, TierPrimary)
		if err != nil {
			if offline {
				o.log.Info("using offline medical analysis due to connectivity issues")
				return OfflineAnalysis(reportText), nil
			}
			return "", err
		}
		return text, nil
	}

	chunks := chunker.Split(prompt, chunker.DefaultMaxChunkTokens)
	o.log.WithField("chunks", len(chunks)).Info("report prompt over token budget, chunking")

	parts := make([]string, 0, len(chunks))
	for i, ch := range chunks {
		text, offline, err := o.generate(ctx, chunkPrompt(i+1, len(chunks), ch), TierPrimary)
		if err != nil {
			if offline {
				o.log.Info("using offline medical analysis due to connectivity issues")
				return OfflineAnalysis(reportText), nil
			}
			// A failed part is noted, not fatal to the whole analysis.
			parts = append(parts, fmt.Sprintf("--- Part %d Analysis ---\nError processing this section.\n", i+1))
			continue
		}
		parts = append(parts, fmt.Sprintf("--- Part %d Analysis ---\n%s\n", i+1, text))
	}

	return strings.Join(parts, "\n"), nil
}

// ChatRespond answers a chat prompt at the Secondary tier. The raw question
// travels alongside the formatted prompt for the offline branch.
func (o *Orchestrator) ChatRespond(ctx context.Context, prompt, question string) (string, error) {
	text, offline, err := o.generate(ctx, prompt, TierSecondary)
	if err != nil {
		if offline {
			o.log.Info("using offline chat response due to connectivity issues")
			return OfflineChatResponse(question), nil
		}
		return "", err
	}
	return text, nil
}

// isConnectivityError distinguishes transport-level failures (which flip the
// offline path) from provider-side generation failures (which only fall
// through the tier chain).
func isConnectivityError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	msg := err.Error()
	for _, marker := range []string{"connection refused", "no such host", "network is unreachable", "connectivity", "i/o timeout"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return core.IsKind(err, core.KindModelConnectivity)
}
