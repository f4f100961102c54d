package domain

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var monthNames = map[string]time.Month{
	"januari": time.January, "january": time.January, "jan": time.January,
	"februari": time.February, "february": time.February, "feb": time.February,
	"maart": time.March, "march": time.March, "mrt": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"mei": time.May, "may": time.May,
	"juni": time.June, "june": time.June, "jun": time.June,
	"juli": time.July, "july": time.July, "jul": time.July,
	"augustus": time.August, "august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"oktober": time.October, "october": time.October, "okt": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// ParseReviewDate parses the date shown next to a review.
// Numeric dates are day-first unless the year comes first
// (01/02/2016 is 1 February, 2016/01/02 is 2 January).
// Written dates like "9 februari 2019" are accepted in Dutch or English.
func ParseReviewDate(v string) (time.Time, bool) {
	s := strings.TrimSpace(v)
	if s == "" || s == Unset {
		return time.Time{}, false
	}

	if fields := strings.Fields(strings.ToLower(s)); len(fields) == 3 {
		if m, ok := monthNames[strings.TrimSuffix(fields[1], ".")]; ok {
			d, derr := strconv.Atoi(fields[0])
			y, yerr := strconv.Atoi(fields[2])
			if derr == nil && yerr == nil {
				return validDate(y, m, d)
			}
		}
		return time.Time{}, false
	}

	splitter := "-"
	if strings.Contains(s, "/") {
		splitter = "/"
	}
	parts := strings.Split(s, splitter)
	if len(parts) != 3 {
		return time.Time{}, false
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}
	if len(strings.TrimSpace(parts[0])) == 4 {
		return validDate(nums[0], time.Month(nums[1]), nums[2])
	}
	return validDate(nums[2], time.Month(nums[1]), nums[0])
}

func validDate(y int, m time.Month, d int) (time.Time, bool) {
	if m < time.January || m > time.December || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

// NewStoredReview derives the read-side view of a record: a stable source id
// and the parsed date. seq numbers reviews of one product whose content is
// identical, in page order starting at 0, so they keep distinct ids.
func NewStoredReview(r ReviewRecord, seq int) StoredReview {
	sig := reviewSignature(r)
	if seq > 0 {
		sig += "#" + strconv.Itoa(seq)
	}
	sum := sha1.Sum([]byte(sig))
	sr := StoredReview{ReviewRecord: r, SourceID: hex.EncodeToString(sum[:])}
	if t, ok := ParseReviewDate(r.Date); ok {
		sr.ParsedDate = &t
	}
	return sr
}

// StoreTable converts a run table in order, numbering repeated reviews.
func StoreTable(table []ReviewRecord) []StoredReview {
	seen := make(map[string]int, len(table))
	out := make([]StoredReview, 0, len(table))
	for _, r := range table {
		sig := reviewSignature(r)
		out = append(out, NewStoredReview(r, seen[sig]))
		seen[sig]++
	}
	return out
}

func reviewSignature(r ReviewRecord) string {
	return strings.Join([]string{
		r.Product, r.ProductTitle, r.AuthorName, r.Date, r.ReviewTitle,
		fmt.Sprintf("%.3f", r.ProductRating), r.Notes,
	}, "|")
}
