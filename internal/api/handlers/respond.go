package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/medlens-ai/medlens/internal/core"
)

// apiResponse is the JSON envelope shared by all endpoints.
type apiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiResponse{Success: true, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiResponse{Success: false, Message: message, Data: data})
}

// writePipelineError maps a classified error onto a status + message. The
// data payload lets validation-class rejections carry their diagnostics.
func writePipelineError(w http.ResponseWriter, err error, data interface{}) {
	status := core.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		// Internal causes stay in the logs.
		message = "internal server error"
	}
	writeError(w, status, message, data)
}

// userID pulls the authenticated user from the request context.
func userID(r *http.Request) (string, bool) {
	id, ok := r.Context().Value("user_id").(string)
	return id, ok
}
