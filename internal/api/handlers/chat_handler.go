package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/medlens-ai/medlens/internal/core"
	"github.com/medlens-ai/medlens/internal/models"
	"github.com/medlens-ai/medlens/internal/services"
)

type ChatHandler struct {
	db   core.DbClient
	chat *services.ChatService
	log  *logrus.Logger
}

func NewChatHandler(db core.DbClient, chat *services.ChatService, log *logrus.Logger) *ChatHandler {
	return &ChatHandler{db: db, chat: chat, log: log}
}

type chatMessageRequest struct {
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
}

// CreateMessage persists a single chat message without invoking the model.
func (h *ChatHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	var req chatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body", nil)
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required", nil)
		return
	}
	if req.Role != "user" && req.Role != "assistant" {
		writeError(w, http.StatusBadRequest, "role must be user or assistant", nil)
		return
	}

	if _, ok := ownedSessionByID(w, r, h.db, req.SessionID); !ok {
		return
	}

	msg := &models.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: req.SessionID,
		Role:      req.Role,
		Content:   req.Content,
		CreatedAt: time.Now(),
	}
	if err := h.db.CreateChatMessage(r.Context(), msg); err != nil {
		h.log.WithError(err).Error("message create failed")
		writeError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}

	writeSuccess(w, http.StatusCreated, "message created", msg)
}

type contextualRequest struct {
	SessionID string `json:"session_id"`
	Content   string `json:"content"`
}

// ContextualResponse persists the user question, generates a grounded answer,
// and persists the assistant reply.
func (h *ChatHandler) ContextualResponse(w http.ResponseWriter, r *http.Request) {
	var req contextualRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body", nil)
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required", nil)
		return
	}

	if _, ok := ownedSessionByID(w, r, h.db, req.SessionID); !ok {
		return
	}

	userMsg := &models.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: req.SessionID,
		Role:      "user",
		Content:   req.Content,
		CreatedAt: time.Now(),
	}
	if err := h.db.CreateChatMessage(r.Context(), userMsg); err != nil {
		h.log.WithError(err).Error("user message create failed")
		writeError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}

	answer, err := h.chat.AnswerContextual(r.Context(), req.SessionID, req.Content)
	if err != nil {
		h.log.WithError(err).Error("contextual response failed")
		writePipelineError(w, err, nil)
		return
	}

	assistantMsg := &models.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: req.SessionID,
		Role:      "assistant",
		Content:   answer,
		CreatedAt: time.Now(),
	}
	if err := h.db.CreateChatMessage(r.Context(), assistantMsg); err != nil {
		h.log.WithError(err).Error("assistant message create failed")
		writeError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}

	writeSuccess(w, http.StatusCreated, "response generated", map[string]interface{}{
		"userMessage":      userMsg,
		"assistantMessage": assistantMsg,
	})
}
