package llm

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medlens-ai/medlens/internal/core"
)

// fakeModel scripts Probe and per-model Complete outcomes and records calls.
type fakeModel struct {
	probeOK bool
	// complete decides the outcome for each call; receives the model id and
	// the full prompt as sent.
	complete func(model, prompt string) (string, error)

	calledModels  []string
	calledPrompts []string
}

func (f *fakeModel) Complete(ctx context.Context, model, prompt string, maxTokens int, temperature float32) (string, error) {
	f.calledModels = append(f.calledModels, model)
	f.calledPrompts = append(f.calledPrompts, prompt)
	return f.complete(model, prompt)
}

func (f *fakeModel) Probe(ctx context.Context) bool { return f.probeOK }

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestAnalyzeReportOfflineWhenProbeFails(t *testing.T) {
	model := &fakeModel{probeOK: false}
	orch := NewOrchestrator(model, testLogger())

	report := "Hemoglobin 13.5 g/dL, glucose 92 mg/dL."
	text, err := orch.AnalyzeReport(context.Background(), report)

	require.NoError(t, err)
	assert.Equal(t, OfflineAnalysis(report), text)
	// A failed probe must not consume any completion.
	assert.Empty(t, model.calledModels)
}

func TestAnalyzeReportOfflineAfterConnectivityFailures(t *testing.T) {
	model := &fakeModel{
		probeOK: true,
		complete: func(model, prompt string) (string, error) {
			return "", errors.New("dial tcp: connection refused")
		},
	}
	orch := NewOrchestrator(model, testLogger())

	report := "Creatinine 1.0 mg/dL."
	text, err := orch.AnalyzeReport(context.Background(), report)

	require.NoError(t, err)
	assert.Equal(t, OfflineAnalysis(report), text)
	// Every tier was attempted before degrading.
	assert.Len(t, model.calledModels, 4)
}

func TestAnalyzeReportFallsThroughTiers(t *testing.T) {
	model := &fakeModel{
		probeOK: true,
		complete: func(m, prompt string) (string, error) {
			if m == tierConfigs[TierPrimary].Model {
				return "", errors.New("model decommissioned")
			}
			return "analysis text", nil
		},
	}
	orch := NewOrchestrator(model, testLogger())

	text, err := orch.AnalyzeReport(context.Background(), "short report")

	require.NoError(t, err)
	assert.Equal(t, "analysis text", text)
	require.Len(t, model.calledModels, 2)
	assert.Equal(t, tierConfigs[TierPrimary].Model, model.calledModels[0])
	assert.Equal(t, tierConfigs[TierSecondary].Model, model.calledModels[1])
}

func TestAnalyzeReportGenerationFailureIsNotOffline(t *testing.T) {
	model := &fakeModel{
		probeOK: true,
		complete: func(m, prompt string) (string, error) {
			return "", errors.New("content policy rejection")
		},
	}
	orch := NewOrchestrator(model, testLogger())

	text, err := orch.AnalyzeReport(context.Background(), "short report")

	require.Error(t, err)
	assert.Empty(t, text)
	assert.True(t, core.IsKind(err, core.KindModelGeneration))
}

func TestEmptyResponseFallsThrough(t *testing.T) {
	first := true
	model := &fakeModel{
		probeOK: true,
		complete: func(m, prompt string) (string, error) {
			if first {
				first = false
				return "", nil
			}
			return "real answer", nil
		},
	}
	orch := NewOrchestrator(model, testLogger())

	text, err := orch.AnalyzeReport(context.Background(), "short report")

	require.NoError(t, err)
	assert.Equal(t, "real answer", text)
	assert.Len(t, model.calledModels, 2)
}

func TestChatRespondStartsAtSecondaryTier(t *testing.T) {
	model := &fakeModel{
		probeOK: true,
		complete: func(m, prompt string) (string, error) {
			return "chat answer", nil
		},
	}
	orch := NewOrchestrator(model, testLogger())

	text, err := orch.ChatRespond(context.Background(), ChatPrompt("is my glucose normal?"), "is my glucose normal?")

	require.NoError(t, err)
	assert.Equal(t, "chat answer", text)
	require.Len(t, model.calledModels, 1)
	assert.Equal(t, tierConfigs[TierSecondary].Model, model.calledModels[0])
}

func TestChatRespondOfflineWhenProbeFails(t *testing.T) {
	model := &fakeModel{probeOK: false}
	orch := NewOrchestrator(model, testLogger())

	question := "what do my blood test results mean?"
	text, err := orch.ChatRespond(context.Background(), ChatPrompt(question), question)

	require.NoError(t, err)
	assert.Equal(t, OfflineChatResponse(question), text)
}

func TestPromptsCarryPlainTextInstruction(t *testing.T) {
	model := &fakeModel{
		probeOK: true,
		complete: func(m, prompt string) (string, error) {
			return "ok", nil
		},
	}
	orch := NewOrchestrator(model, testLogger())

	_, err := orch.AnalyzeReport(context.Background(), "short report")
	require.NoError(t, err)
	require.Len(t, model.calledPrompts, 1)
	assert.True(t, strings.HasSuffix(model.calledPrompts[0], plainTextInstruction))
}

func TestAnalyzeReportChunksOversizedPrompt(t *testing.T) {
	model := &fakeModel{
		probeOK: true,
		complete: func(m, prompt string) (string, error) {
			return "section analysis", nil
		},
	}
	orch := NewOrchestrator(model, testLogger())

	// Well past the token budget so the prompt must be split.
	report := strings.Repeat("Hemoglobin level measured at routine checkup was stable. ", 600)
	text, err := orch.AnalyzeReport(context.Background(), report)

	require.NoError(t, err)
	assert.Greater(t, len(model.calledModels), 1)
	assert.Contains(t, text, "--- Part 1 Analysis ---")
	assert.Contains(t, text, "section analysis")
}

func TestAnalyzeReportChunkFailureIsNotedNotFatal(t *testing.T) {
	model := &fakeModel{
		probeOK: true,
		complete: func(m, prompt string) (string, error) {
			// The first section fails generation at every tier; the rest succeed.
			if strings.Contains(prompt, "part 1 of") {
				return "", errors.New("content policy rejection")
			}
			return "section analysis", nil
		},
	}
	orch := NewOrchestrator(model, testLogger())

	report := strings.Repeat("Glucose reading recorded during the fasting panel. ", 700)
	text, err := orch.AnalyzeReport(context.Background(), report)

	require.NoError(t, err)
	assert.Contains(t, text, "Error processing this section.")
	assert.Contains(t, text, "section analysis")
}
