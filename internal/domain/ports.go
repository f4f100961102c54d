package domain

import (
	"context"
	"time"
)

// Browser is a live, controlled browser tab. Selectors are CSS queries.
type Browser interface {
	Open(ctx context.Context, url string) error
	WaitPresent(ctx context.Context, sel string, timeout time.Duration) error
	Exists(ctx context.Context, sel string) (bool, error)
	OuterHTML(ctx context.Context, sel string) (string, error)
	OuterHTMLAll(ctx context.Context, sel string) ([]string, error)
	SendKeys(ctx context.Context, sel, text string) error
	Submit(ctx context.Context, sel string) error
	Click(ctx context.Context, sel string) error
	// ClickNth clicks inner within the n-th (0-based) match of sel.
	// An empty inner clicks the match itself.
	ClickNth(ctx context.Context, sel string, n int, inner string) error
	Back(ctx context.Context) error
}

// TableWriter persists the run-wide table once.
// It returns the written location, or "" when nothing was written.
type TableWriter interface {
	WriteTable(ctx context.Context, term string, recs []ReviewRecord) (string, error)
}

type ReviewRepository interface {
	// Write path
	UpsertReviews(ctx context.Context, rs []StoredReview) error

	// Read path
	ListReviews(ctx context.Context, q ReviewsQuery) (ReviewsPage, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// Read models & queries
type ReviewsQuery struct {
	Term  string
	Limit int
}

type ReviewsPage struct {
	Items []StoredReview
}
