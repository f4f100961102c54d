package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"review_scraper/internal/app"
	"review_scraper/internal/domain"
)

func TestPersist_WritesStoresAndCleansUp(t *testing.T) {
	ctx := context.Background()
	cache := &fakeCache{}
	cp := app.NewCheckpoints(cache, time.Hour, zerolog.Nop())
	repo := &fakeRepo{}
	q := app.NewQueryService(repo, cache, time.Minute)

	cp.Save(ctx, "koelkast", domain.ProductEntry{Index: 0, Title: "A"}, nil)
	_, _ = q.ListReviews(ctx, domain.ReviewsQuery{Term: "koelkast", Limit: 10})
	require.Len(t, cache.store, 2)

	w := &fakeWriter{path: "/tmp/koelkast_review.csv"}
	svc := app.NewPersistService([]domain.TableWriter{w}, repo, q, cp, zerolog.Nop())

	table := []domain.ReviewRecord{
		{Product: "koelkast", ProductTitle: "A", ReviewTitle: "r1", Date: "12 maart 2019"},
		{Product: "koelkast", ProductTitle: "A", ReviewTitle: "r2"},
	}
	require.NoError(t, svc.Persist(ctx, "koelkast", table))

	require.Equal(t, []string{"koelkast"}, w.terms)
	require.Equal(t, 2, w.rows)
	require.Len(t, repo.upserted, 2)
	require.NotEqual(t, repo.upserted[0].SourceID, repo.upserted[1].SourceID)
	require.NotNil(t, repo.upserted[0].ParsedDate)
	require.Nil(t, repo.upserted[1].ParsedDate)
	require.Empty(t, cache.store, "checkpoints and cached pages are dropped")
}

func TestPersist_EmptyTableSkipsRepository(t *testing.T) {
	repo := &fakeRepo{}
	w := &fakeWriter{}
	svc := app.NewPersistService([]domain.TableWriter{w}, repo, nil, nil, zerolog.Nop())

	require.NoError(t, svc.Persist(context.Background(), "koelkast", nil))
	require.Equal(t, 1, len(w.terms))
	require.Empty(t, repo.upserted)
}

func TestPersist_WriterFailureKeepsCheckpoints(t *testing.T) {
	ctx := context.Background()
	cache := &fakeCache{}
	cp := app.NewCheckpoints(cache, time.Hour, zerolog.Nop())
	cp.Save(ctx, "koelkast", domain.ProductEntry{Index: 0, Title: "A"}, nil)

	w := &fakeWriter{path: "x", err: errors.New("disk full")}
	svc := app.NewPersistService([]domain.TableWriter{w}, nil, nil, cp, zerolog.Nop())

	err := svc.Persist(ctx, "koelkast", []domain.ReviewRecord{{ReviewTitle: "r"}})
	require.Error(t, err)
	require.Len(t, cache.store, 1)
}

func TestCheckpoints_NilIsNoop(t *testing.T) {
	cp := app.NewCheckpoints(nil, time.Hour, zerolog.Nop())
	require.Nil(t, cp)

	_, ok := cp.Load(context.Background(), "koelkast", domain.ProductEntry{})
	require.False(t, ok)
	cp.Save(context.Background(), "koelkast", domain.ProductEntry{}, nil)
	require.NoError(t, cp.Clear(context.Background(), "koelkast"))
}
