package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/medlens-ai/medlens/internal/core"
	"github.com/medlens-ai/medlens/internal/services"
)

type ReportHandler struct {
	db       core.DbClient
	reports  *services.ReportService
	maxBytes int64
	log      *logrus.Logger
}

func NewReportHandler(db core.DbClient, reports *services.ReportService, maxUploadMB int64, log *logrus.Logger) *ReportHandler {
	return &ReportHandler{db: db, reports: reports, maxBytes: maxUploadMB << 20, log: log}
}

// Upload ingests a medical report PDF into the session.
func (h *ReportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	session, ok := ownedSession(w, r, h.db)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "file exceeds upload limit", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field", nil)
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		writeError(w, http.StatusBadRequest, "only PDF files are accepted", nil)
		return
	}

	buf, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload", nil)
		return
	}

	result, err := h.reports.Ingest(r.Context(), session.ID, buf, header.Filename)
	if err != nil {
		h.log.WithError(err).WithField("session_id", session.ID).Warn("report ingestion failed")
		// Validation rejections carry diagnostics back to the client.
		var data interface{}
		if result != nil && core.IsKind(err, core.KindNotMedicalContent) {
			data = map[string]interface{}{"validation": result.Validation}
		}
		writePipelineError(w, err, data)
		return
	}

	writeSuccess(w, http.StatusCreated, "medical report analyzed", result)
}

// Get returns report metadata for the session.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := ownedSession(w, r, h.db)
	if !ok {
		return
	}

	report, err := h.reports.Get(r.Context(), session.ID)
	if err != nil {
		writePipelineError(w, err, nil)
		return
	}

	writeSuccess(w, http.StatusOK, "report fetched", map[string]interface{}{
		"medicalReport": report,
		"hasAnalysis":   session.MedicalAnalysis != nil,
	})
}

// Delete removes the session's report, its stored file, and its embeddings.
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session, ok := ownedSession(w, r, h.db)
	if !ok {
		return
	}

	if err := h.reports.Delete(r.Context(), session.ID); err != nil {
		h.log.WithError(err).WithField("session_id", session.ID).Warn("report delete failed")
		writePipelineError(w, err, nil)
		return
	}

	writeSuccess(w, http.StatusOK, "report deleted", nil)
}
