package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/medlens-ai/medlens/internal/core"
	"github.com/medlens-ai/medlens/internal/models"
)

type SessionHandler struct {
	db  core.DbClient
	log *logrus.Logger
}

func NewSessionHandler(db core.DbClient, log *logrus.Logger) *SessionHandler {
	return &SessionHandler{db: db, log: log}
}

type createSessionRequest struct {
	Title string `json:"title"`
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req createSessionRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	title := req.Title
	if title == "" {
		title = time.Now().Format("02-01-06 | 15:04:05")
	}

	session := &models.ChatSession{
		ID:        uuid.NewString(),
		UserID:    uid,
		Title:     title,
		CreatedAt: time.Now(),
	}
	if err := h.db.CreateChatSession(r.Context(), session); err != nil {
		h.log.WithError(err).Error("session create failed")
		writeError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}

	writeSuccess(w, http.StatusCreated, "session created", session)
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	sessions, err := h.db.ListChatSessionsByUser(r.Context(), uid)
	if err != nil {
		h.log.WithError(err).Error("session list failed")
		writeError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}

	writeSuccess(w, http.StatusOK, "sessions fetched", sessions)
}

func (h *SessionHandler) Messages(w http.ResponseWriter, r *http.Request) {
	session, ok := h.ownedSession(w, r)
	if !ok {
		return
	}

	messages, err := h.db.ListMessagesBySession(r.Context(), session.ID)
	if err != nil {
		h.log.WithError(err).Error("message list failed")
		writeError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}

	writeSuccess(w, http.StatusOK, "messages fetched", messages)
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session, ok := h.ownedSession(w, r)
	if !ok {
		return
	}

	// Report rows, messages, and embeddings cascade with the session.
	if err := h.db.DeleteChatSession(r.Context(), session.ID); err != nil {
		h.log.WithError(err).Error("session delete failed")
		writeError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}

	writeSuccess(w, http.StatusOK, "session deleted", nil)
}

// ownedSession resolves the session_id URL param and enforces ownership.
// It writes the error response itself when the check fails.
func (h *SessionHandler) ownedSession(w http.ResponseWriter, r *http.Request) (*models.ChatSession, bool) {
	return ownedSession(w, r, h.db)
}

func ownedSession(w http.ResponseWriter, r *http.Request, db core.DbClient) (*models.ChatSession, bool) {
	return ownedSessionByID(w, r, db, chi.URLParam(r, "session_id"))
}

// ownedSessionByID is the body-carried-id variant used by the chat endpoints.
func ownedSessionByID(w http.ResponseWriter, r *http.Request, db core.DbClient, sessionID string) (*models.ChatSession, bool) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", nil)
		return nil, false
	}

	if err := uuid.Validate(sessionID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id", nil)
		return nil, false
	}

	session, err := db.GetChatSessionByID(r.Context(), sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error", nil)
		return nil, false
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "session not found", nil)
		return nil, false
	}
	if session.UserID != uid {
		writeError(w, http.StatusForbidden, "session belongs to another user", nil)
		return nil, false
	}
	return session, true
}
