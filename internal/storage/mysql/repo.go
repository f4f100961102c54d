package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"review_scraper/internal/domain"
)

// maxLimit bounds a read when the caller asks for everything.
const maxLimit = 10000

// batchSize keeps one INSERT well below max_allowed_packet.
const batchSize = 200

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// valAuthor stores the unset sentinel as NULL.
func valAuthor(s string) any {
	if s == "" || s == domain.Unset {
		return nil
	}
	return s
}

func valList(l []string) string {
	b, _ := json.Marshal(l)
	return string(b)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertReviews(ctx context.Context, rs []domain.StoredReview) error {
	for start := 0; start < len(rs); start += batchSize {
		end := min(start+batchSize, len(rs))
		if err := r.upsertBatch(ctx, rs[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) upsertBatch(ctx context.Context, rs []domain.StoredReview) error {
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*17) // 17 params per row
	for _, rv := range rs {
		var parsed any
		if rv.ParsedDate != nil {
			parsed = rv.ParsedDate.Format("2006-01-02")
		}
		values = append(values, reviewPlaceholders)
		args = append(args,
			rv.SourceID,
			rv.Product,
			rv.ProductTitle,
			rv.ReviewTitle,
			valAuthor(rv.AuthorName),
			valAuthor(rv.AuthorAge),
			valAuthor(rv.AuthorCity),
			valAuthor(rv.Date),
			parsed,
			rv.ProductRating,
			valStr(rv.Recommendation),
			valList(rv.Pros),
			valList(rv.Cons),
			rv.Notes,
			rv.ReviewFeedbackPos,
			rv.ReviewFeedbackNeg,
			rv.ReviewFeedbackScore,
		)
	}
	sqlStr := insertReviewsPrefix + strings.Join(values, ",") + insertReviewsOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *Repo) ListReviews(ctx context.Context, q domain.ReviewsQuery) (domain.ReviewsPage, error) {
	limit := q.Limit
	if limit <= 0 || limit > maxLimit {
		limit = maxLimit
	}
	rows, err := r.db.QueryContext(ctx, listReviewsSQL, q.Term, limit)
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	defer rows.Close()

	var out []domain.StoredReview
	for rows.Next() {
		var (
			rv                          domain.StoredReview
			name, age, city, date, reco sql.NullString
			notes                       sql.NullString
			pros, cons                  []byte
		)
		if err := rows.Scan(
			&rv.SourceID,
			&rv.Product,
			&rv.ProductTitle,
			&rv.ReviewTitle,
			&name, &age, &city, &date,
			&rv.ProductRating,
			&reco,
			&pros, &cons,
			&notes,
			&rv.ReviewFeedbackPos,
			&rv.ReviewFeedbackNeg,
			&rv.ReviewFeedbackScore,
		); err != nil {
			return domain.ReviewsPage{}, err
		}
		rv.AuthorName = orUnset(name)
		rv.AuthorAge = orUnset(age)
		rv.AuthorCity = orUnset(city)
		rv.Date = orUnset(date)
		if reco.Valid {
			s := reco.String
			rv.Recommendation = &s
		}
		_ = json.Unmarshal(pros, &rv.Pros)
		_ = json.Unmarshal(cons, &rv.Cons)
		rv.Notes = notes.String
		if t, ok := domain.ParseReviewDate(rv.Date); ok {
			rv.ParsedDate = &t
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return domain.ReviewsPage{}, err
	}
	return domain.ReviewsPage{Items: out}, nil
}

func orUnset(ns sql.NullString) string {
	if !ns.Valid {
		return domain.Unset
	}
	return ns.String
}
