package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/medlens-ai/medlens/internal/core"
	"github.com/medlens-ai/medlens/internal/core/extract"
	"github.com/medlens-ai/medlens/internal/core/llm"
	"github.com/medlens-ai/medlens/internal/core/medical"
	"github.com/medlens-ai/medlens/internal/core/vector"
	"github.com/medlens-ai/medlens/internal/models"
)

// IngestResult is returned to the handler for serialization. Validation is
// populated even when ingestion is rejected as non-medical, so the caller
// can surface matched-keyword diagnostics.
type IngestResult struct {
	Report     *models.MedicalReport    `json:"medicalReport,omitempty"`
	Analysis   string                   `json:"analysis,omitempty"`
	Validation medical.ValidationResult `json:"validation"`
}

// ReportService runs the report ingestion pipeline:
// extract -> validate -> duplicate check -> upload -> persist -> analyze ->
// embed -> session update. Every failure after the report row is created
// triggers compensating deletes, keeping the invariant that a session has a
// report row iff the full pipeline succeeded.
type ReportService struct {
	db      core.DbClient
	obj     core.ObjectClient
	vectors *vector.Service
	llm     *llm.Orchestrator
	bucket  string
	log     *logrus.Logger

	// extractPDF is a seam for tests; production uses extract.PDF.
	extractPDF func(buf []byte) (*extract.Result, error)
}

func NewReportService(db core.DbClient, obj core.ObjectClient, vectors *vector.Service, orch *llm.Orchestrator, bucket string, log *logrus.Logger) *ReportService {
	return &ReportService{db: db, obj: obj, vectors: vectors, llm: orch, bucket: bucket, log: log, extractPDF: extract.PDF}
}

func (s *ReportService) Ingest(ctx context.Context, sessionID string, buf []byte, originalFilename string) (*IngestResult, error) {
	extraction, err := s.extractPDF(buf)
	if err != nil {
		return nil, err
	}

	validation := medical.ValidateReport(extraction.Text)
	result := &IngestResult{Validation: validation}
	if !validation.IsValid {
		return result, core.E(core.KindNotMedicalContent, validation.Reason)
	}

	existing, err := s.db.GetReportBySession(ctx, sessionID)
	if err != nil {
		return result, core.Wrap(core.KindPersistence, "report lookup failed", err)
	}
	if existing != nil {
		return result, core.E(core.KindDuplicateReport, "session already has a medical report")
	}

	reportID := uuid.NewString()
	key := objectKey(sessionID, reportID)

	url, err := s.obj.UploadFile(ctx, s.bucket, key, bytes.NewReader(buf), "application/pdf")
	if err != nil {
		return result, core.Wrap(core.KindStorage, "cloud storage upload failed", err)
	}

	report := &models.MedicalReport{
		ID:               reportID,
		SessionID:        sessionID,
		Filename:         fmt.Sprintf("medical-report-%s.pdf", reportID),
		OriginalFilename: originalFilename,
		StorageURL:       url,
		StorageKey:       key,
		ExtractedText:    extraction.Text,
		FileSize:         int64(len(buf)),
		PageCount:        extraction.Pages,
		UploadedAt:       time.Now(),
	}
	if err := s.db.CreateMedicalReport(ctx, report); err != nil {
		s.deleteBlob(ctx, key)
		return result, core.Wrap(core.KindPersistence, "failed to store report metadata", err)
	}

	analysis, err := s.llm.AnalyzeReport(ctx, extraction.Text)
	if err != nil {
		s.rollback(ctx, sessionID, key)
		return result, err
	}

	if err := s.vectors.StoreReportEmbeddings(ctx, sessionID, extraction.Text, analysis); err != nil {
		s.rollback(ctx, sessionID, key)
		return result, err
	}

	if err := s.db.UpdateSessionAnalysis(ctx, sessionID, &analysis); err != nil {
		s.rollback(ctx, sessionID, key)
		return result, core.Wrap(core.KindPersistence, "failed to update session analysis", err)
	}

	msg := &models.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      "assistant",
		Content:   analysis,
		CreatedAt: time.Now(),
	}
	if err := s.db.CreateChatMessage(ctx, msg); err != nil {
		s.rollback(ctx, sessionID, key)
		return result, core.Wrap(core.KindPersistence, "failed to store analysis message", err)
	}

	s.log.WithFields(logrus.Fields{
		"session_id": sessionID,
		"report_id":  reportID,
		"pages":      extraction.Pages,
	}).Info("medical report ingested")

	result.Report = report
	result.Analysis = analysis
	return result, nil
}

// Get returns the session's report, or a NOT_FOUND error.
func (s *ReportService) Get(ctx context.Context, sessionID string) (*models.MedicalReport, error) {
	report, err := s.db.GetReportBySession(ctx, sessionID)
	if err != nil {
		return nil, core.Wrap(core.KindPersistence, "report lookup failed", err)
	}
	if report == nil {
		return nil, core.E(core.KindNotFound, "no medical report found for this session")
	}
	return report, nil
}

// Delete removes the report, its blob, its embeddings, and resets the cached
// session analysis. Blob deletion is best-effort; the database is the source
// of truth.
func (s *ReportService) Delete(ctx context.Context, sessionID string) error {
	report, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	if report.StorageKey != "" {
		s.deleteBlob(ctx, report.StorageKey)
	}
	if err := s.vectors.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	if err := s.db.DeleteReportBySession(ctx, sessionID); err != nil {
		return core.Wrap(core.KindPersistence, "failed to delete report", err)
	}
	if err := s.db.UpdateSessionAnalysis(ctx, sessionID, nil); err != nil {
		return core.Wrap(core.KindPersistence, "failed to reset session analysis", err)
	}

	s.log.WithField("session_id", sessionID).Info("medical report deleted")
	return nil
}

// rollback undoes partial pipeline state: report row, blob, embeddings,
// cached analysis. Partial state must never be visible to subsequent reads.
func (s *ReportService) rollback(ctx context.Context, sessionID, key string) {
	if err := s.db.DeleteReportBySession(ctx, sessionID); err != nil {
		s.log.WithError(err).Error("rollback: report delete failed")
	}
	if err := s.db.DeleteEmbeddingsBySession(ctx, sessionID); err != nil {
		s.log.WithError(err).Error("rollback: embeddings delete failed")
	}
	if err := s.db.UpdateSessionAnalysis(ctx, sessionID, nil); err != nil {
		s.log.WithError(err).Error("rollback: session analysis reset failed")
	}
	s.deleteBlob(ctx, key)
}

func (s *ReportService) deleteBlob(ctx context.Context, key string) {
	if err := s.obj.DeleteFile(ctx, s.bucket, key); err != nil {
		s.log.WithError(err).WithField("key", key).Error("blob cleanup failed")
	}
}

// objectKey creates a consistent storage key layout.
func objectKey(sessionID, reportID string) string {
	return fmt.Sprintf("sessions/%s/reports/%s.pdf", sessionID, reportID)
}
