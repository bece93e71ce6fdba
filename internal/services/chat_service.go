package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/medlens-ai/medlens/internal/core"
	"github.com/medlens-ai/medlens/internal/core/llm"
	"github.com/medlens-ai/medlens/internal/core/medical"
	"github.com/medlens-ai/medlens/internal/core/vector"
)

// RedirectMessage is returned verbatim when the chat gate rejects a question;
// no model call is made in that case.
const RedirectMessage = "I'm designed to help with medical and health-related questions. " +
	"Please ask me about your medical report, lab results, symptoms, medications, or other health topics."

// ChatService answers contextual questions grounded on a session's stored
// report embeddings. The caller persists the resulting messages.
type ChatService struct {
	db      core.DbClient
	vectors *vector.Service
	llm     *llm.Orchestrator
	log     *logrus.Logger
}

func NewChatService(db core.DbClient, vectors *vector.Service, orch *llm.Orchestrator, log *logrus.Logger) *ChatService {
	return &ChatService{db: db, vectors: vectors, llm: orch, log: log}
}

// AnswerContextual gates the question, grounds it on the session's report
// when one exists, and generates a response at the secondary tier.
func (s *ChatService) AnswerContextual(ctx context.Context, sessionID, question string) (string, error) {
	if gate := medical.ValidateQuestion(question); !gate.IsValid {
		s.log.WithField("session_id", sessionID).Info("chat question rejected by medical gate")
		return RedirectMessage, nil
	}

	report, err := s.db.GetReportBySession(ctx, sessionID)
	if err != nil {
		return "", core.Wrap(core.KindPersistence, "report lookup failed", err)
	}

	var prompt string
	if report != nil {
		records, err := s.vectors.Nearest(ctx, sessionID, question, vector.DefaultTopK)
		if err != nil {
			// Retrieval trouble degrades to an ungrounded answer rather than failing.
			s.log.WithError(err).Warn("similarity search failed, answering without context")
		}
		passages := make([]string, 0, len(records))
		for _, r := range records {
			passages = append(passages, r.Content)
		}
		if len(passages) > 0 {
			prompt = llm.ContextualPrompt(passages, question)
		} else {
			prompt = llm.ChatPrompt(question)
		}
	} else {
		prompt = llm.ChatPrompt(question)
	}

	return s.llm.ChatRespond(ctx, prompt, question)
}
