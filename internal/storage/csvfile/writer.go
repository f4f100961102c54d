package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"

	"review_scraper/internal/domain"
)

const (
	Separator = ';'
	listSep   = "|"
)

// Writer stores the run-wide table as <dir>/<term>_review.csv.
type Writer struct {
	dir string
	log zerolog.Logger
}

func NewWriter(dir string, log zerolog.Logger) *Writer {
	return &Writer{dir: dir, log: log}
}

func FileName(term string) string { return term + "_review.csv" }

func (w *Writer) WriteTable(ctx context.Context, term string, recs []domain.ReviewRecord) (string, error) {
	path := filepath.Join(w.dir, FileName(term))
	if len(recs) == 0 {
		w.log.Warn().Str("path", path).Msg("could not write empty table")
		return "", nil
	}
	if err := EnsureDir(w.dir); err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	cw.Comma = Separator
	if err := cw.Write(domain.Columns); err != nil {
		return "", err
	}
	for _, r := range recs {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := cw.Write(row(r)); err != nil {
			return "", err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, f.Close()
}

// row renders r in domain.Columns order.
func row(r domain.ReviewRecord) []string {
	rec := ""
	if r.Recommendation != nil {
		rec = *r.Recommendation
	}
	return []string{
		r.Product,
		r.ProductTitle,
		r.ReviewTitle,
		cell(r.AuthorName),
		cell(r.AuthorAge),
		cell(r.AuthorCity),
		cell(r.Date),
		strconv.FormatFloat(r.ProductRating, 'f', 3, 64),
		rec,
		joinList(r.Pros),
		joinList(r.Cons),
		r.Notes,
		strconv.Itoa(r.ReviewFeedbackPos),
		strconv.Itoa(r.ReviewFeedbackNeg),
		strconv.Itoa(r.ReviewFeedbackScore),
	}
}

func cell(v string) string {
	if v == domain.Unset {
		return ""
	}
	return v
}

// EnsureDir makes sure dir is a directory, replacing a plain file of the
// same name.
func EnsureDir(dir string) error {
	st, err := os.Stat(dir)
	switch {
	case err == nil && st.IsDir():
		return nil
	case err == nil:
		if err := os.Remove(dir); err != nil {
			return fmt.Errorf("replace file %s with directory: %w", dir, err)
		}
	case !os.IsNotExist(err):
		return err
	}
	return os.MkdirAll(dir, 0o755)
}
