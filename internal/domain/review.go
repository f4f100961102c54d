package domain

import "time"

// Sentinels stored in place of absent fields.
const (
	Unknown = "Unknown" // pros/cons section missing
	Unset   = "unset"   // author credential missing
)

// ReviewRecord is one row of the output table. Field order is the column order.
type ReviewRecord struct {
	Product             string
	ProductTitle        string
	ReviewTitle         string
	AuthorName          string
	AuthorAge           string
	AuthorCity          string
	Date                string
	ProductRating       float64  // 0..5
	Recommendation      *string  // nil when the review has no recommendation
	Pros                []string // [Unknown] when absent
	Cons                []string // [Unknown] when absent
	Notes               string
	ReviewFeedbackPos   int
	ReviewFeedbackNeg   int
	ReviewFeedbackScore int // Pos - Neg
}

// Columns is the header of every tabular export.
var Columns = []string{
	"Product",
	"ProductTitle",
	"ReviewTitle",
	"AuthorName",
	"AuthorAge",
	"AuthorCity",
	"Date",
	"ProductRating",
	"Recommendation",
	"Pros",
	"Cons",
	"Notes",
	"ReviewFeedbackPos",
	"ReviewFeedbackNeg",
	"ReviewFeedbackScore",
}

// StoredReview is a ReviewRecord as seen by the read side.
type StoredReview struct {
	ReviewRecord
	SourceID   string
	ParsedDate *time.Time
}

// HasPros reports whether Pros carries real data rather than the sentinel.
func (r ReviewRecord) HasPros() bool { return !isSentinelList(r.Pros) }

// HasCons reports whether Cons carries real data rather than the sentinel.
func (r ReviewRecord) HasCons() bool { return !isSentinelList(r.Cons) }

func isSentinelList(l []string) bool {
	return len(l) == 0 || (len(l) == 1 && l[0] == Unknown)
}
