package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"review_scraper/internal/app"
)

func productWithBatches(n int) *fakeBrowser {
	p := fakeProduct{title: "Koelkast A", reviews: []string{fullReview("r0")}}
	for i := 0; i < n; i++ {
		p.batches = append(p.batches, []string{fullReview("more")})
	}
	f := &fakeBrowser{products: []fakeProduct{p}}
	f.page, f.current = "product", 0
	f.load(f.productHTML(0))
	return f
}

func TestExpandAll_ClicksUntilControlDisappears(t *testing.T) {
	f := productWithBatches(3)
	sels := app.DefaultSelectors()
	exp := app.NewExpander(f, sels.LoadMore, 10, 0, zerolog.Nop())

	clicks, err := exp.ExpandAll(context.Background(), sels.ReviewsArea)
	require.NoError(t, err)
	require.Equal(t, 3, clicks)
	require.Equal(t, 3, f.clicks)

	all, err := f.OuterHTMLAll(context.Background(), ".reviews .review")
	require.NoError(t, err)
	require.Len(t, all, 4)
}

func TestExpandAll_NoControlIsNotAnError(t *testing.T) {
	f := productWithBatches(0)
	sels := app.DefaultSelectors()
	exp := app.NewExpander(f, sels.LoadMore, 10, 0, zerolog.Nop())

	clicks, err := exp.ExpandAll(context.Background(), sels.ReviewsArea)
	require.NoError(t, err)
	require.Zero(t, clicks)
}

func TestExpandAll_HiddenControlEndsExpansion(t *testing.T) {
	f := productWithBatches(3)
	f.hideLoadMore = true
	sels := app.DefaultSelectors()
	exp := app.NewExpander(f, sels.LoadMore, 50, 0, zerolog.Nop())

	clicks, err := exp.ExpandAll(context.Background(), sels.ReviewsArea)
	require.NoError(t, err)
	// three batches plus the attempt that finds the button inactive
	require.Equal(t, 4, clicks)

	still, err := f.Exists(context.Background(), sels.ReviewsArea+" "+sels.LoadMore)
	require.NoError(t, err)
	require.True(t, still)

	all, err := f.OuterHTMLAll(context.Background(), ".reviews .review")
	require.NoError(t, err)
	require.Len(t, all, 4)
}

func TestExpandAll_StopsAtCap(t *testing.T) {
	f := productWithBatches(50)
	sels := app.DefaultSelectors()
	exp := app.NewExpander(f, sels.LoadMore, 5, 0, zerolog.Nop())

	clicks, err := exp.ExpandAll(context.Background(), sels.ReviewsArea)
	require.ErrorIs(t, err, app.ErrExpansionCapped)
	require.Equal(t, 5, clicks)
}

func TestExpandAll_ClickFailureEndsExpansion(t *testing.T) {
	f := productWithBatches(3)
	f.clickErr = errors.New("detached node")
	sels := app.DefaultSelectors()
	exp := app.NewExpander(f, sels.LoadMore, 10, 0, zerolog.Nop())

	clicks, err := exp.ExpandAll(context.Background(), sels.ReviewsArea)
	require.Error(t, err)
	require.NotErrorIs(t, err, app.ErrExpansionCapped)
	require.Equal(t, 1, clicks)
}

func TestExpandAll_HonoursCancellation(t *testing.T) {
	f := productWithBatches(3)
	sels := app.DefaultSelectors()
	exp := app.NewExpander(f, sels.LoadMore, 10, 0, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := exp.ExpandAll(ctx, sels.ReviewsArea)
	require.ErrorIs(t, err, context.Canceled)
}
