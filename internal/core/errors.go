package core

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a pipeline failure. The kind decides both the HTTP status
// and whether the orchestrator keeps retrying (connectivity-class) or returns
// straight to the caller (validation-class).
type Kind string

const (
	KindInvalidDocument     Kind = "INVALID_DOCUMENT"
	KindInsufficientContent Kind = "INSUFFICIENT_CONTENT"
	KindNotMedicalContent   Kind = "NOT_MEDICAL_CONTENT"
	KindDuplicateReport     Kind = "DUPLICATE_REPORT"
	KindModelConnectivity   Kind = "MODEL_CONNECTIVITY"
	KindModelGeneration     Kind = "MODEL_GENERATION"
	KindPersistence         Kind = "PERSISTENCE"
	KindStorage             Kind = "STORAGE"
	KindNotFound            Kind = "NOT_FOUND"
)

// PipelineError is the standard error shape crossing component boundaries.
type PipelineError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// E builds a PipelineError without a cause.
func E(kind Kind, message string) *PipelineError {
	return &PipelineError{Kind: kind, Message: message}
}

// Wrap builds a PipelineError around an underlying cause.
func Wrap(kind Kind, message string, err error) *PipelineError {
	return &PipelineError{Kind: kind, Message: message, Err: err}
}

// IsKind reports whether err (or anything it wraps) is a PipelineError of the
// given kind.
func IsKind(err error, kind Kind) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind == kind
	}
	return false
}

// ErrKind returns the kind of err, or "" when err is not a PipelineError.
func ErrKind(err error) Kind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// HTTPStatus maps an error to the response status. Validation-class failures
// are user-correctable 400s; persistence and storage are 500s.
func HTTPStatus(err error) int {
	switch ErrKind(err) {
	case KindInvalidDocument, KindInsufficientContent, KindNotMedicalContent, KindDuplicateReport:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindPersistence, KindStorage, KindModelConnectivity, KindModelGeneration:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
