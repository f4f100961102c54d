package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"review_scraper/internal/domain"
)

// Reviews is the read side the API serves; *app.QueryService implements it.
type Reviews interface {
	ListReviews(ctx context.Context, q domain.ReviewsQuery) (domain.ReviewsPage, error)
}

type Handlers struct {
	Q   Reviews
	Log zerolog.Logger
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type reviewView struct {
	SourceID       string   `json:"source_id"`
	ProductTitle   string   `json:"product_title"`
	ReviewTitle    string   `json:"review_title"`
	AuthorName     *string  `json:"author_name"`
	AuthorAge      *string  `json:"author_age"`
	AuthorCity     *string  `json:"author_city"`
	Date           *string  `json:"date"`
	ParsedDate     *string  `json:"parsed_date"`
	Rating         float64  `json:"rating"`
	Recommendation *string  `json:"recommendation"`
	Pros           []string `json:"pros"`
	Cons           []string `json:"cons"`
	Notes          string   `json:"notes"`
	FeedbackPos    int      `json:"feedback_pos"`
	FeedbackNeg    int      `json:"feedback_neg"`
	FeedbackScore  int      `json:"feedback_score"`
}

type reviewsResponse struct {
	Term  string       `json:"term"`
	Count int          `json:"count"`
	Items []reviewView `json:"items"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/reviews/{term}", h.listReviews)
}

// sentinel author values are served as null
func optional(v string) *string {
	if v == "" || v == domain.Unset {
		return nil
	}
	return &v
}

func toView(r domain.StoredReview) reviewView {
	v := reviewView{
		SourceID:       r.SourceID,
		ProductTitle:   r.ProductTitle,
		ReviewTitle:    r.ReviewTitle,
		AuthorName:     optional(r.AuthorName),
		AuthorAge:      optional(r.AuthorAge),
		AuthorCity:     optional(r.AuthorCity),
		Date:           optional(r.Date),
		Rating:         r.ProductRating,
		Recommendation: r.Recommendation,
		Pros:           r.Pros,
		Cons:           r.Cons,
		Notes:          r.Notes,
		FeedbackPos:    r.ReviewFeedbackPos,
		FeedbackNeg:    r.ReviewFeedbackNeg,
		FeedbackScore:  r.ReviewFeedbackScore,
	}
	if r.ParsedDate != nil {
		d := r.ParsedDate.Format("2006-01-02")
		v.ParsedDate = &d
	}
	return v
}

func (h *Handlers) writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		h.Log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func (h *Handlers) calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		h.Log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(chi.URLParam(r, "term"))
	if term == "" {
		h.writeProblem(w, http.StatusBadRequest, "Invalid term", "search term must not be empty")
		return
	}

	limit := 50
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 1000 {
			h.writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 1000")
			return
		}
		limit = l
	}

	page, err := h.Q.ListReviews(r.Context(), domain.ReviewsQuery{Term: term, Limit: limit})
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.writeProblem(w, http.StatusNotFound, "Not Found", "no reviews scraped for this term")
		return
	case err != nil:
		h.Log.Error().Err(err).Str("term", term).Msg("list reviews failed")
		h.writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}

	out := reviewsResponse{Term: term, Count: len(page.Items), Items: make([]reviewView, 0, len(page.Items))}
	for _, it := range page.Items {
		out.Items = append(out.Items, toView(it))
	}

	etag, body := h.calcETagAndBody(out)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.Log.Error().Err(err).Msg("failed to write listReviews body")
	}
}
