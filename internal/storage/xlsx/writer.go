package xlsx

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"review_scraper/internal/domain"
	"review_scraper/internal/storage/csvfile"
)

const sheet = "Reviews"

// Writer stores the run-wide table as <dir>/<term>_review.xlsx, one row per
// review with list cells joined by newlines.
type Writer struct {
	dir string
	log zerolog.Logger
}

func NewWriter(dir string, log zerolog.Logger) *Writer {
	return &Writer{dir: dir, log: log}
}

func FileName(term string) string { return term + "_review.xlsx" }

func (w *Writer) WriteTable(ctx context.Context, term string, recs []domain.ReviewRecord) (string, error) {
	path := filepath.Join(w.dir, FileName(term))
	if len(recs) == 0 {
		w.log.Warn().Str("path", path).Msg("could not write empty table")
		return "", nil
	}
	if err := csvfile.EnsureDir(w.dir); err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return "", err
	}

	header := make([]any, len(domain.Columns))
	for i, c := range domain.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return "", err
	}
	for i, r := range recs {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		row := values(r)
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return "", err
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return "", err
	}
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, nil
}

func values(r domain.ReviewRecord) []any {
	var rec any
	if r.Recommendation != nil {
		rec = *r.Recommendation
	}
	return []any{
		r.Product,
		r.ProductTitle,
		r.ReviewTitle,
		blank(r.AuthorName),
		blank(r.AuthorAge),
		blank(r.AuthorCity),
		blank(r.Date),
		r.ProductRating,
		rec,
		strings.Join(r.Pros, "\n"),
		strings.Join(r.Cons, "\n"),
		r.Notes,
		r.ReviewFeedbackPos,
		r.ReviewFeedbackNeg,
		r.ReviewFeedbackScore,
	}
}

func blank(v string) string {
	if v == domain.Unset {
		return ""
	}
	return v
}
