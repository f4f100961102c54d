package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"review_scraper/internal/adapters/observability"
	"review_scraper/internal/domain"
)

// ErrExpansionCapped is returned when the load-more control was still present
// after the maximum number of activations.
var ErrExpansionCapped = errors.New("load-more cap reached")

// Expander reveals every review entry by activating the load-more control.
type Expander struct {
	browser   domain.Browser
	loadMore  string
	maxClicks int
	settle    time.Duration
	log       zerolog.Logger
}

func NewExpander(b domain.Browser, loadMore string, maxClicks int, settle time.Duration, log zerolog.Logger) *Expander {
	if maxClicks <= 0 {
		maxClicks = 500
	}
	return &Expander{browser: b, loadMore: loadMore, maxClicks: maxClicks, settle: settle, log: log}
}

// ExpandAll activates the load-more control inside container until it is
// gone or can no longer be activated. It returns the number of activation
// attempts. A vanished or inactive control is the normal end; a failed click or the cap ends expansion with an error the
// caller may log and ignore.
func (e *Expander) ExpandAll(ctx context.Context, container string) (int, error) {
	sel := container + " " + e.loadMore
	clicks := 0
	for clicks < e.maxClicks {
		ok, err := e.browser.Exists(ctx, sel)
		if err != nil {
			return clicks, fmt.Errorf("look up load-more control: %w", err)
		}
		if !ok {
			e.log.Info().Int("clicks", clicks).Msg("no more items left")
			return clicks, nil
		}

		clicks++
		observability.ObserveLoadMore()
		if err := e.browser.Click(ctx, sel); err != nil {
			if errors.Is(err, domain.ErrNotFound) && ctx.Err() == nil {
				// still in the DOM but hidden or disabled after the last batch
				e.log.Info().Int("clicks", clicks).Msg("load-more control no longer active, no more items left")
				return clicks, nil
			}
			e.log.Warn().Err(err).Int("clicks", clicks).Msg("load-more click failed, stopping expansion")
			return clicks, fmt.Errorf("activate load-more control: %w", err)
		}
		if !sleepCtx(ctx, e.settle) {
			return clicks, ctx.Err()
		}
	}
	e.log.Warn().Int("clicks", clicks).Msg("load-more control still present after cap")
	return clicks, ErrExpansionCapped
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
