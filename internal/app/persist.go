package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"review_scraper/internal/domain"
)

// PersistService writes the run-wide table once, at the end of a run.
type PersistService struct {
	writers     []domain.TableWriter
	repo        domain.ReviewRepository // optional
	queries     *QueryService           // optional, for cache eviction
	checkpoints *Checkpoints
	log         zerolog.Logger
}

func NewPersistService(w []domain.TableWriter, repo domain.ReviewRepository, q *QueryService, cp *Checkpoints, log zerolog.Logger) *PersistService {
	return &PersistService{writers: w, repo: repo, queries: q, checkpoints: cp, log: log}
}

// Persist hands the table to every writer and the repository. Checkpoints
// are only cleared when everything succeeded.
func (s *PersistService) Persist(ctx context.Context, term string, table []domain.ReviewRecord) error {
	for _, w := range s.writers {
		path, err := w.WriteTable(ctx, term, table)
		if err != nil {
			return fmt.Errorf("write table: %w", err)
		}
		if path != "" {
			s.log.Info().Str("path", path).Int("rows", len(table)).Msg("table written")
		}
	}

	if s.repo != nil && len(table) > 0 {
		stored := domain.StoreTable(table)
		if err := s.repo.UpsertReviews(ctx, stored); err != nil {
			return fmt.Errorf("upsert reviews for %q: %w", term, err)
		}
		s.log.Info().Int("rows", len(stored)).Msg("reviews stored")
	}

	if s.queries != nil {
		if err := s.queries.InvalidateTerm(ctx, term); err != nil {
			s.log.Warn().Err(err).Msg("review cache eviction failed")
		}
	}
	if err := s.checkpoints.Clear(ctx, term); err != nil {
		s.log.Warn().Err(err).Msg("checkpoint cleanup failed")
	}
	return nil
}
