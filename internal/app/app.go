package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/medlens-ai/medlens/internal/config"
	"github.com/medlens-ai/medlens/internal/core"
	db "github.com/medlens-ai/medlens/internal/core/database"
	"github.com/medlens-ai/medlens/internal/core/llm"
	objectclient "github.com/medlens-ai/medlens/internal/core/object-client"
	"github.com/medlens-ai/medlens/internal/core/vector"
	"github.com/medlens-ai/medlens/internal/services"
)

type App struct {
	DBClient     core.DbClient
	ObjectClient core.ObjectClient
	Embedder     *llm.GeminiEmbedder
	Server       *Server
	Log          *logrus.Logger
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log := newLogger(cfg.LogLevel)

	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("database initialized and ready")

	objClient, err := objectclient.NewS3Client(appCtx, cfg, log)
	if err != nil {
		return nil, err
	}

	embedder, err := llm.NewGeminiEmbedder(appCtx, cfg.GeminiAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder: %w", err)
	}

	groq := llm.NewGroqClient(cfg.GroqAPIKey, cfg.GroqBaseURL)
	orchestrator := llm.NewOrchestrator(groq, log)
	vectors := vector.NewService(dbClient, embedder, cfg.EmbedDim, log)

	users := services.NewUserService(dbClient)
	reports := services.NewReportService(dbClient, objClient, vectors, orchestrator, cfg.BucketName, log)
	chat := services.NewChatService(dbClient, vectors, orchestrator, log)

	server := NewServer(cfg, dbClient, users, reports, chat, log)

	return &App{
		DBClient:     dbClient,
		ObjectClient: objClient,
		Embedder:     embedder,
		Server:       server,
		Log:          log,
	}, nil
}

func (a *App) Close() {
	if a.Embedder != nil {
		_ = a.Embedder.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}

func newLogger(level string) *logrus.Logger {
	log := logrus.New()
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}
