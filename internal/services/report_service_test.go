package services

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medlens-ai/medlens/internal/core"
	"github.com/medlens-ai/medlens/internal/core/extract"
	"github.com/medlens-ai/medlens/internal/core/llm"
	"github.com/medlens-ai/medlens/internal/core/vector"
	"github.com/medlens-ai/medlens/internal/models"
)

const medicalText = `Patient: Jane Doe
Hemoglobin 13.5 g/dL Reference Range 12.0-16.0
Glucose 92 mg/dL Reference Range 70-100
Creatinine 1.0 mg/dL Reference Range 0.6-1.2`

// fakeDB is a stateful in-memory core.DbClient with per-method error taps.
type fakeDB struct {
	reports    map[string]*models.MedicalReport
	analysis   map[string]*string
	messages   []models.ChatMessage
	embeddings []models.VectorEmbedding

	searchResults []models.VectorEmbedding

	createReportErr     error
	insertEmbeddingsErr error
	updateAnalysisErr   error
	createMessageErr    error
	searchErr           error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		reports:  map[string]*models.MedicalReport{},
		analysis: map[string]*string{},
	}
}

func (f *fakeDB) CreateUser(ctx context.Context, user *models.User) error { return nil }
func (f *fakeDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, nil
}
func (f *fakeDB) CreateChatSession(ctx context.Context, session *models.ChatSession) error {
	return nil
}
func (f *fakeDB) GetChatSessionByID(ctx context.Context, id string) (*models.ChatSession, error) {
	return nil, nil
}
func (f *fakeDB) ListChatSessionsByUser(ctx context.Context, userID string) ([]models.ChatSession, error) {
	return nil, nil
}
func (f *fakeDB) UpdateSessionAnalysis(ctx context.Context, sessionID string, analysis *string) error {
	if f.updateAnalysisErr != nil {
		return f.updateAnalysisErr
	}
	f.analysis[sessionID] = analysis
	return nil
}
func (f *fakeDB) DeleteChatSession(ctx context.Context, id string) error { return nil }

func (f *fakeDB) CreateMedicalReport(ctx context.Context, report *models.MedicalReport) error {
	if f.createReportErr != nil {
		return f.createReportErr
	}
	f.reports[report.SessionID] = report
	return nil
}
func (f *fakeDB) GetReportBySession(ctx context.Context, sessionID string) (*models.MedicalReport, error) {
	return f.reports[sessionID], nil
}
func (f *fakeDB) DeleteReportBySession(ctx context.Context, sessionID string) error {
	delete(f.reports, sessionID)
	return nil
}

func (f *fakeDB) CreateChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	if f.createMessageErr != nil {
		return f.createMessageErr
	}
	f.messages = append(f.messages, *msg)
	return nil
}
func (f *fakeDB) ListMessagesBySession(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	return f.messages, nil
}

func (f *fakeDB) InsertEmbeddings(ctx context.Context, records []models.VectorEmbedding) error {
	if f.insertEmbeddingsErr != nil {
		return f.insertEmbeddingsErr
	}
	f.embeddings = append(f.embeddings, records...)
	return nil
}
func (f *fakeDB) SearchEmbeddings(ctx context.Context, sessionID string, queryVec []float32, limit int) ([]models.VectorEmbedding, error) {
	return f.searchResults, f.searchErr
}
func (f *fakeDB) DeleteEmbeddingsBySession(ctx context.Context, sessionID string) error {
	f.embeddings = nil
	return nil
}
func (f *fakeDB) Close() error { return nil }

type fakeObject struct {
	uploaded  []string
	deleted   []string
	uploadErr error
}

func (f *fakeObject) UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploaded = append(f.uploaded, key)
	return "https://" + bucket + ".example.com/" + key, nil
}
func (f *fakeObject) DeleteFile(ctx context.Context, bucket, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}
func (f *fakeObject) GetFile(ctx context.Context, bucket, key string) ([]byte, error) {
	return nil, nil
}

type fakeChatModel struct {
	probeOK  bool
	response string
	err      error
}

func (f *fakeChatModel) Complete(ctx context.Context, model, prompt string, maxTokens int, temperature float32) (string, error) {
	return f.response, f.err
}
func (f *fakeChatModel) Probe(ctx context.Context) bool { return f.probeOK }

type fakeEmbedder struct{}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, vector.FallbackDim)
	}
	return out, nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestReportService(db *fakeDB, obj *fakeObject, model *fakeChatModel) *ReportService {
	log := testLogger()
	vectors := vector.NewService(db, &fakeEmbedder{}, vector.FallbackDim, log)
	orch := llm.NewOrchestrator(model, log)
	svc := NewReportService(db, obj, vectors, orch, "test-bucket", log)
	svc.extractPDF = func(buf []byte) (*extract.Result, error) {
		return &extract.Result{Text: medicalText, Pages: 2}, nil
	}
	return svc
}

func TestIngestSuccess(t *testing.T) {
	db := newFakeDB()
	obj := &fakeObject{}
	svc := newTestReportService(db, obj, &fakeChatModel{probeOK: true, response: "Your values look normal."})

	result, err := svc.Ingest(context.Background(), "sess-1", []byte("%PDF-data"), "labs.pdf")
	require.NoError(t, err)

	require.NotNil(t, result.Report)
	assert.Equal(t, "labs.pdf", result.Report.OriginalFilename)
	assert.Equal(t, 2, result.Report.PageCount)
	assert.Equal(t, "Your values look normal.", result.Analysis)
	assert.True(t, result.Validation.IsValid)

	// Full pipeline state: row, blob, embeddings, cached analysis, message.
	assert.Contains(t, db.reports, "sess-1")
	assert.Len(t, obj.uploaded, 1)
	assert.NotEmpty(t, db.embeddings)
	require.NotNil(t, db.analysis["sess-1"])
	assert.Equal(t, "Your values look normal.", *db.analysis["sess-1"])
	require.Len(t, db.messages, 1)
	assert.Equal(t, "assistant", db.messages[0].Role)
}

func TestIngestRejectsNonMedicalContent(t *testing.T) {
	db := newFakeDB()
	obj := &fakeObject{}
	svc := newTestReportService(db, obj, &fakeChatModel{probeOK: true, response: "unused"})
	svc.extractPDF = func(buf []byte) (*extract.Result, error) {
		return &extract.Result{Text: "A recipe for chocolate cake with flour and cocoa, baked well."}, nil
	}

	result, err := svc.Ingest(context.Background(), "sess-1", []byte("%PDF-data"), "cake.pdf")

	require.Error(t, err)
	assert.True(t, core.IsKind(err, core.KindNotMedicalContent))
	// Diagnostics still come back for the response body.
	require.NotNil(t, result)
	assert.False(t, result.Validation.IsValid)
	// Nothing was uploaded or persisted.
	assert.Empty(t, obj.uploaded)
	assert.Empty(t, db.reports)
}

func TestIngestRejectsDuplicateReport(t *testing.T) {
	db := newFakeDB()
	db.reports["sess-1"] = &models.MedicalReport{ID: "existing", SessionID: "sess-1"}
	obj := &fakeObject{}
	svc := newTestReportService(db, obj, &fakeChatModel{probeOK: true, response: "unused"})

	_, err := svc.Ingest(context.Background(), "sess-1", []byte("%PDF-data"), "labs.pdf")

	require.Error(t, err)
	assert.True(t, core.IsKind(err, core.KindDuplicateReport))
	assert.Empty(t, obj.uploaded)
	assert.Equal(t, "existing", db.reports["sess-1"].ID)
}

func TestIngestRollsBackOnEmbeddingFailure(t *testing.T) {
	db := newFakeDB()
	db.insertEmbeddingsErr = errors.New("vector insert failed")
	obj := &fakeObject{}
	svc := newTestReportService(db, obj, &fakeChatModel{probeOK: true, response: "analysis"})

	_, err := svc.Ingest(context.Background(), "sess-1", []byte("%PDF-data"), "labs.pdf")

	require.Error(t, err)
	assert.True(t, core.IsKind(err, core.KindStorage))
	// The report row must not survive a partial pipeline.
	assert.Empty(t, db.reports)
	assert.Empty(t, db.embeddings)
	assert.Nil(t, db.analysis["sess-1"])
	// The uploaded blob was cleaned up.
	require.Len(t, obj.uploaded, 1)
	assert.Equal(t, obj.uploaded, obj.deleted)
}

func TestIngestRollsBackOnAnalysisMessageFailure(t *testing.T) {
	db := newFakeDB()
	db.createMessageErr = errors.New("insert failed")
	obj := &fakeObject{}
	svc := newTestReportService(db, obj, &fakeChatModel{probeOK: true, response: "analysis"})

	_, err := svc.Ingest(context.Background(), "sess-1", []byte("%PDF-data"), "labs.pdf")

	require.Error(t, err)
	assert.True(t, core.IsKind(err, core.KindPersistence))
	assert.Empty(t, db.reports)
	assert.Empty(t, db.embeddings)
}

func TestIngestUploadFailureIsStorageKind(t *testing.T) {
	db := newFakeDB()
	obj := &fakeObject{uploadErr: errors.New("s3 down")}
	svc := newTestReportService(db, obj, &fakeChatModel{probeOK: true, response: "analysis"})

	_, err := svc.Ingest(context.Background(), "sess-1", []byte("%PDF-data"), "labs.pdf")

	require.Error(t, err)
	assert.True(t, core.IsKind(err, core.KindStorage))
	assert.Empty(t, db.reports)
}

func TestIngestSucceedsOfflineWhenModelUnreachable(t *testing.T) {
	db := newFakeDB()
	obj := &fakeObject{}
	svc := newTestReportService(db, obj, &fakeChatModel{probeOK: false})

	result, err := svc.Ingest(context.Background(), "sess-1", []byte("%PDF-data"), "labs.pdf")

	// Connectivity loss degrades to the offline analysis, not a failure.
	require.NoError(t, err)
	assert.Contains(t, result.Analysis, "OFFLINE MEDICAL ANALYSIS")
	assert.Contains(t, db.reports, "sess-1")
}

func TestGetReport(t *testing.T) {
	db := newFakeDB()
	svc := newTestReportService(db, &fakeObject{}, &fakeChatModel{probeOK: true})

	_, err := svc.Get(context.Background(), "missing")
	assert.True(t, core.IsKind(err, core.KindNotFound))

	db.reports["sess-1"] = &models.MedicalReport{ID: "r1", SessionID: "sess-1"}
	report, err := svc.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "r1", report.ID)
}

func TestDeleteReport(t *testing.T) {
	db := newFakeDB()
	obj := &fakeObject{}
	svc := newTestReportService(db, obj, &fakeChatModel{probeOK: true})

	analysis := "cached"
	db.analysis["sess-1"] = &analysis
	db.reports["sess-1"] = &models.MedicalReport{ID: "r1", SessionID: "sess-1", StorageKey: "sessions/sess-1/reports/r1.pdf"}
	db.embeddings = []models.VectorEmbedding{{SessionID: "sess-1"}}

	require.NoError(t, svc.Delete(context.Background(), "sess-1"))

	assert.Empty(t, db.reports)
	assert.Empty(t, db.embeddings)
	assert.Nil(t, db.analysis["sess-1"])
	assert.Equal(t, []string{"sessions/sess-1/reports/r1.pdf"}, obj.deleted)
}
