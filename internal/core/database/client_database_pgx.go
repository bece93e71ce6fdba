package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/medlens-ai/medlens/internal/config"
	"github.com/medlens-ai/medlens/internal/core"
	"github.com/medlens-ai/medlens/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Users

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, first_name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()), COALESCE($6, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		user.ID, user.FirstName, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	return err
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, first_name, email, password_hash, created_at, updated_at
		FROM users WHERE email = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, email).Scan(
		&u.ID, &u.FirstName, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Chat sessions

func (c *DatabaseClient) CreateChatSession(ctx context.Context, session *models.ChatSession) error {
	if session == nil {
		return errors.New("nil session")
	}
	const q = `
		INSERT INTO chat_sessions (id, user_id, title, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`
	_, err := c.db.ExecContext(ctx, q, session.ID, session.UserID, session.Title, session.CreatedAt)
	return err
}

func (c *DatabaseClient) GetChatSessionByID(ctx context.Context, id string) (*models.ChatSession, error) {
	const q = `
		SELECT id, user_id, title, has_medical_report, medical_analysis, created_at
		FROM chat_sessions WHERE id = $1
	`
	var s models.ChatSession
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.UserID, &s.Title, &s.HasMedicalReport, &s.MedicalAnalysis, &s.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *DatabaseClient) ListChatSessionsByUser(ctx context.Context, userID string) ([]models.ChatSession, error) {
	const q = `
		SELECT id, user_id, title, has_medical_report, medical_analysis, created_at
		FROM chat_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChatSession
	for rows.Next() {
		var s models.ChatSession
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.Title, &s.HasMedicalReport, &s.MedicalAnalysis, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateSessionAnalysis sets or clears the cached analysis and keeps
// has_medical_report in step with it.
func (c *DatabaseClient) UpdateSessionAnalysis(ctx context.Context, sessionID string, analysis *string) error {
	const q = `
		UPDATE chat_sessions
		SET medical_analysis = $2, has_medical_report = $3
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, sessionID, analysis, analysis != nil)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("chat session not found: %s", sessionID)
	}
	return nil
}

func (c *DatabaseClient) DeleteChatSession(ctx context.Context, id string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM chat_sessions WHERE id = $1`, id)
	return err
}

// Medical reports

func (c *DatabaseClient) CreateMedicalReport(ctx context.Context, report *models.MedicalReport) error {
	if report == nil {
		return errors.New("nil report")
	}
	const q = `
		INSERT INTO medical_reports
			(id, session_id, filename, original_filename, storage_url, storage_key, extracted_text, file_size, page_count, uploaded_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		report.ID, report.SessionID, report.Filename, report.OriginalFilename,
		report.StorageURL, report.StorageKey, report.ExtractedText,
		report.FileSize, report.PageCount, report.UploadedAt)
	return err
}

func (c *DatabaseClient) GetReportBySession(ctx context.Context, sessionID string) (*models.MedicalReport, error) {
	const q = `
		SELECT id, session_id, filename, original_filename, storage_url, storage_key, extracted_text, file_size, page_count, uploaded_at
		FROM medical_reports
		WHERE session_id = $1
	`
	var r models.MedicalReport
	err := c.db.QueryRowContext(ctx, q, sessionID).Scan(
		&r.ID, &r.SessionID, &r.Filename, &r.OriginalFilename,
		&r.StorageURL, &r.StorageKey, &r.ExtractedText,
		&r.FileSize, &r.PageCount, &r.UploadedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *DatabaseClient) DeleteReportBySession(ctx context.Context, sessionID string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM medical_reports WHERE session_id = $1`, sessionID)
	return err
}

// Chat messages

func (c *DatabaseClient) CreateChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	if msg == nil {
		return errors.New("nil message")
	}
	const q = `
		INSERT INTO chat_messages (id, session_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()))
	`
	_, err := c.db.ExecContext(ctx, q, msg.ID, msg.SessionID, msg.Role, msg.Content, msg.CreatedAt)
	return err
}

func (c *DatabaseClient) ListMessagesBySession(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	const q = `
		SELECT id, session_id, role, content, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY created_at ASC
	`
	rows, err := c.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Vector embeddings

// InsertEmbeddings inserts records in a single transaction.
func (c *DatabaseClient) InsertEmbeddings(ctx context.Context, records []models.VectorEmbedding) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO vector_embeddings (id, session_id, content, embedding, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range records {
		rec := &records[i]
		meta, err := json.Marshal(rec.Metadata)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("marshal metadata: %w", err)
		}
		vec := pgvector.NewVector(rec.Embedding)

		if _, err := stmt.ExecContext(ctx,
			rec.ID, rec.SessionID, rec.Content, vec, meta, rec.CreatedAt,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// SearchEmbeddings finds the top-k nearest records for a session by L2
// distance, ascending.
func (c *DatabaseClient) SearchEmbeddings(ctx context.Context, sessionID string, queryVec []float32, limit int) ([]models.VectorEmbedding, error) {
	const q = `
		SELECT id, session_id, content, metadata, created_at, embedding <-> $2 AS distance
		FROM vector_embeddings
		WHERE session_id = $1
		ORDER BY embedding <-> $2
		LIMIT $3
	`
	vec := pgvector.NewVector(queryVec)
	rows, err := c.db.QueryContext(ctx, q, sessionID, vec, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.VectorEmbedding
	for rows.Next() {
		var (
			rec  models.VectorEmbedding
			meta []byte
		)
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Content, &meta, &rec.CreatedAt, &rec.Distance); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &rec.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata: %w", err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) DeleteEmbeddingsBySession(ctx context.Context, sessionID string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM vector_embeddings WHERE session_id = $1`, sessionID)
	return err
}

var _ core.DbClient = (*DatabaseClient)(nil)
