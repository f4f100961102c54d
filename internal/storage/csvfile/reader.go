package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"review_scraper/internal/domain"
)

var ErrReadOnly = errors.New("csvfile: repository is read-only")

// Repo serves the tables written by Writer.
type Repo struct{ dir string }

func NewRepo(dir string) *Repo { return &Repo{dir: dir} }

func (r *Repo) UpsertReviews(ctx context.Context, rs []domain.StoredReview) error {
	return ErrReadOnly
}

func (r *Repo) ListReviews(ctx context.Context, q domain.ReviewsQuery) (domain.ReviewsPage, error) {
	recs, err := ReadTable(filepath.Join(r.dir, FileName(q.Term)))
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	if q.Limit > 0 && len(recs) > q.Limit {
		recs = recs[:q.Limit]
	}
	return domain.ReviewsPage{Items: domain.StoreTable(recs)}, nil
}

// ReadTable reads a table written by Writer. Columns are matched by header
// name so reordered files still load.
func ReadTable(path string) ([]domain.ReviewRecord, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.Comma = Separator
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	idx := map[string]int{}
	for i, h := range records[0] {
		idx[strings.TrimSpace(h)] = i
	}
	out := make([]domain.ReviewRecord, 0, len(records)-1)
	for _, rec := range records[1:] {
		get := func(k string) string {
			j, ok := idx[k]
			if !ok || j >= len(rec) {
				return ""
			}
			return rec[j]
		}
		out = append(out, parseRow(get))
	}
	return out, nil
}

func parseRow(get func(string) string) domain.ReviewRecord {
	r := domain.ReviewRecord{
		Product:      get("Product"),
		ProductTitle: get("ProductTitle"),
		ReviewTitle:  get("ReviewTitle"),
		AuthorName:   uncell(get("AuthorName")),
		AuthorAge:    uncell(get("AuthorAge")),
		AuthorCity:   uncell(get("AuthorCity")),
		Date:         uncell(get("Date")),
		Pros:         splitList(get("Pros")),
		Cons:         splitList(get("Cons")),
		Notes:        get("Notes"),
	}
	r.ProductRating, _ = strconv.ParseFloat(get("ProductRating"), 64)
	if v := get("Recommendation"); v != "" {
		r.Recommendation = &v
	}
	r.ReviewFeedbackPos, _ = strconv.Atoi(get("ReviewFeedbackPos"))
	r.ReviewFeedbackNeg, _ = strconv.Atoi(get("ReviewFeedbackNeg"))
	r.ReviewFeedbackScore, _ = strconv.Atoi(get("ReviewFeedbackScore"))
	return r
}

func uncell(v string) string {
	if v == "" {
		return domain.Unset
	}
	return v
}
