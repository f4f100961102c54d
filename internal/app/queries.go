package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"review_scraper/internal/domain"
)

type QueryService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

// NewQueryService wires a read-through cache in front of repo; c may be nil.
func NewQueryService(r domain.ReviewRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func reviewsKey(term string, limit int) string {
	return fmt.Sprintf("reviews:%s:%d", strings.ToLower(term), limit)
}

func (s *QueryService) ListReviews(ctx context.Context, q domain.ReviewsQuery) (domain.ReviewsPage, error) {
	key := reviewsKey(q.Term, q.Limit)
	var out domain.ReviewsPage
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &out); ok {
			return out, nil
		}
	}

	rs, err := s.repo.ListReviews(ctx, q)
	if err != nil {
		return domain.ReviewsPage{}, err
	}

	// copy slice to avoid aliasing the repo's backing array
	copyRS := deepCopyReviewsPage(rs)

	if s.cache != nil {
		if b, _ := json.Marshal(copyRS); len(b) < 1_000_000 {
			_ = s.cache.Set(ctx, key, copyRS, s.cacheTTL)
		}
	}
	return copyRS, nil
}

// InvalidateTerm drops every cached page of term.
func (s *QueryService) InvalidateTerm(ctx context.Context, term string) error {
	if s.cache == nil {
		return nil
	}
	keys, err := s.cache.Keys(ctx, fmt.Sprintf("reviews:%s:*", strings.ToLower(term)))
	if err != nil || len(keys) == 0 {
		return err
	}
	return s.cache.Del(ctx, keys...)
}

func deepCopyReviewsPage(in domain.ReviewsPage) domain.ReviewsPage {
	var out domain.ReviewsPage
	if n := len(in.Items); n > 0 {
		out.Items = make([]domain.StoredReview, n)
		copy(out.Items, in.Items)
	}
	return out
}
