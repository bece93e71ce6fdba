package vector

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/medlens-ai/medlens/internal/core"
	"github.com/medlens-ai/medlens/internal/core/chunker"
	"github.com/medlens-ai/medlens/internal/models"
)

// passageTokenBudget sizes the report passages stored for retrieval.
const passageTokenBudget = 500

// DefaultTopK is how many passages ground a contextual answer.
const DefaultTopK = 5

// Service owns embedding and retrieval for session-scoped content. The
// external provider is tried first; on any provider failure every text in the
// batch gets the deterministic hash embedding instead, so storing and
// querying never fail for lack of an embedding.
type Service struct {
	db       core.DbClient
	embedder core.EmbeddingProvider
	dim      int
	log      *logrus.Logger
}

func NewService(db core.DbClient, embedder core.EmbeddingProvider, dim int, log *logrus.Logger) *Service {
	if dim <= 0 {
		dim = FallbackDim
	}
	return &Service{db: db, embedder: embedder, dim: dim, log: log}
}

// embedAll embeds a batch, reporting whether the hash fallback was used.
func (s *Service) embedAll(ctx context.Context, texts []string) ([][]float32, bool) {
	if s.embedder != nil {
		vecs, err := s.embedder.EmbedTexts(ctx, texts)
		if err == nil && len(vecs) == len(texts) {
			for i := range vecs {
				vecs[i] = conformDim(vecs[i], s.dim)
			}
			return vecs, false
		}
		s.log.WithError(err).Warn("embedding provider failed, using hash fallback")
	}

	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		vecs[i] = HashEmbedding(t, s.dim)
	}
	return vecs, true
}

// StoreReportEmbeddings persists retrieval chunks for a freshly ingested
// report: the report text split into passages, plus the analysis as one
// record. Both groups embed in parallel and land in a single insert batch.
func (s *Service) StoreReportEmbeddings(ctx context.Context, sessionID, reportText, analysis string) error {
	passages := chunker.Split(reportText, passageTokenBudget)

	var (
		passageVecs  [][]float32
		analysisVecs [][]float32
		passFallback bool
		anaFallback  bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		passageVecs, passFallback = s.embedAll(gctx, passages)
		return nil
	})
	g.Go(func() error {
		analysisVecs, anaFallback = s.embedAll(gctx, []string{analysis})
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.Wrap(core.KindStorage, "embedding failed", err)
	}

	now := time.Now()
	rows := make([]models.VectorEmbedding, 0, len(passages)+1)
	for i, p := range passages {
		rows = append(rows, models.VectorEmbedding{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			Content:   p,
			Embedding: passageVecs[i],
			Metadata:  sourceMetadata("report", i, passFallback),
			CreatedAt: now,
		})
	}
	rows = append(rows, models.VectorEmbedding{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Content:   analysis,
		Embedding: analysisVecs[0],
		Metadata:  sourceMetadata("analysis", 0, anaFallback),
		CreatedAt: now,
	})

	if err := s.db.InsertEmbeddings(ctx, rows); err != nil {
		return core.Wrap(core.KindStorage, "failed to store embeddings", err)
	}

	s.log.WithFields(logrus.Fields{
		"session_id": sessionID,
		"records":    len(rows),
	}).Info("stored report embeddings")
	return nil
}

// Nearest embeds the question and returns the k closest stored records by
// ascending L2 distance. Distance is computed by the storage layer.
func (s *Service) Nearest(ctx context.Context, sessionID, question string, k int) ([]models.VectorEmbedding, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	vecs, _ := s.embedAll(ctx, []string{question})
	records, err := s.db.SearchEmbeddings(ctx, sessionID, vecs[0], k)
	if err != nil {
		return nil, core.Wrap(core.KindStorage, "similarity search failed", err)
	}
	return records, nil
}

// DeleteSession removes every embedding owned by the session.
func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.db.DeleteEmbeddingsBySession(ctx, sessionID); err != nil {
		return core.Wrap(core.KindStorage, "failed to delete session embeddings", err)
	}
	return nil
}

func sourceMetadata(source string, part int, fallback bool) map[string]string {
	m := map[string]string{"source": source}
	if source == "report" {
		m["part"] = strconv.Itoa(part)
	}
	if fallback {
		// Degraded ranking is diagnosable from the row itself.
		m["embedding"] = "fallback-hash"
	}
	return m
}
