package core

import (
	"context"
	"io"

	"github.com/medlens-ai/medlens/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts Postgres/pgvector so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	CreateChatSession(ctx context.Context, session *models.ChatSession) error
	GetChatSessionByID(ctx context.Context, id string) (*models.ChatSession, error)
	ListChatSessionsByUser(ctx context.Context, userID string) ([]models.ChatSession, error)
	UpdateSessionAnalysis(ctx context.Context, sessionID string, analysis *string) error
	DeleteChatSession(ctx context.Context, id string) error

	CreateMedicalReport(ctx context.Context, report *models.MedicalReport) error
	GetReportBySession(ctx context.Context, sessionID string) (*models.MedicalReport, error)
	DeleteReportBySession(ctx context.Context, sessionID string) error

	CreateChatMessage(ctx context.Context, msg *models.ChatMessage) error
	ListMessagesBySession(ctx context.Context, sessionID string) ([]models.ChatMessage, error)

	InsertEmbeddings(ctx context.Context, records []models.VectorEmbedding) error
	SearchEmbeddings(ctx context.Context, sessionID string, queryVec []float32, limit int) ([]models.VectorEmbedding, error)
	DeleteEmbeddingsBySession(ctx context.Context, sessionID string) error

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
// It's abstract so AWS can be swapped for MinIO, GCP, etc. easily.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
}
