package app

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"review_scraper/internal/domain"
)

/********** tiny helpers **********/

var (
	innerSpace = regexp.MustCompile(`[ \t\x{00a0}]+`)
	firstInt   = regexp.MustCompile(`\d+`)
)

// cleanText trims and collapses runs of spaces; line breaks survive.
func cleanText(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if t := strings.TrimSpace(innerSpace.ReplaceAllString(l, " ")); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, "\n")
}

// findOptional returns the first match of sel under s, and whether it exists.
func findOptional(s *goquery.Selection, sel string) (*goquery.Selection, bool) {
	m := s.Find(sel).First()
	return m, m.Length() > 0
}

// parseCount reads the first non-negative integer in s ("12", "Ja (12)").
func parseCount(s string) (int, bool) {
	m := firstInt.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseRating scales the raw 0..500 rating to 0..5.
func parseRating(raw string) (float64, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	r := f / 100
	switch {
	case r < 0:
		r = 0
	case r > 5:
		r = 5
	}
	return r, true
}

/********** author credentials **********/

// ExtractAuthorInfo reads the labeled credential items of a review.
// Every recognized field defaults to domain.Unset; unknown keys are logged
// and ignored.
func ExtractAuthorInfo(list *goquery.Selection, sels Selectors, log zerolog.Logger) domain.AuthorInfo {
	info := domain.NewAuthorInfo()
	list.Find(sels.AuthorItem).Each(func(_ int, item *goquery.Selection) {
		key, _ := item.Attr(sels.AuthorKeyAttr)
		f, ok := domain.ParseAuthorField(key)
		if !ok {
			log.Debug().Str("key", key).Msg("ignoring unrecognized author credential")
			return
		}
		info.Set(f, cleanText(item.Text()))
	})
	return info
}

/********** pros / cons **********/

// ExtractListSection splits the section under sel into its lines.
// An absent or empty section yields the sentinel [domain.Unknown].
func ExtractListSection(s *goquery.Selection, sel string) []string {
	section, ok := findOptional(s, sel)
	if !ok {
		return []string{domain.Unknown}
	}

	var out []string
	if items := section.Find("li"); items.Length() > 0 {
		items.Each(func(_ int, li *goquery.Selection) {
			if t := cleanText(li.Text()); t != "" {
				out = append(out, t)
			}
		})
	} else {
		section.Find("br").ReplaceWithHtml("\n")
		for _, l := range strings.Split(cleanText(section.Text()), "\n") {
			if l != "" {
				out = append(out, l)
			}
		}
	}
	if len(out) == 0 {
		return []string{domain.Unknown}
	}
	return out
}

/********** review **********/

// ExtractReview builds a record from one review entry. Product and
// ProductTitle are left for the caller. The returned slice names the fields
// that were absent or unreadable; none of them abort extraction.
func ExtractReview(review *goquery.Selection, sels Selectors, log zerolog.Logger) (domain.ReviewRecord, []string) {
	var (
		rec    domain.ReviewRecord
		misses []string
	)
	miss := func(field string) {
		misses = append(misses, field)
		log.Debug().Str("field", field).Msg("review field missing")
	}

	if t, ok := findOptional(review, sels.ReviewTitle); ok {
		rec.ReviewTitle = cleanText(t.Text())
	} else {
		miss("ReviewTitle")
	}

	if in, ok := findOptional(review, sels.RatingValue); ok {
		raw, _ := in.Attr("value")
		if r, ok := parseRating(raw); ok {
			rec.ProductRating = r
		} else {
			miss("ProductRating")
		}
	} else {
		miss("ProductRating")
	}

	author := domain.NewAuthorInfo()
	if list, ok := findOptional(review, sels.AuthorList); ok {
		author = ExtractAuthorInfo(list, sels, log)
	} else {
		miss("Author")
	}
	rec.AuthorName = author.Get(domain.AuthorName)
	rec.AuthorCity = author.Get(domain.AuthorCity)
	rec.AuthorAge = author.Get(domain.AuthorAge)
	rec.Date = author.Get(domain.AuthorDate)

	// Explicitly nil per review, never carried over.
	rec.Recommendation = nil
	// an empty recommendation element counts as absent
	if r, ok := findOptional(review, sels.Recommendation); ok && cleanText(r.Text()) != "" {
		text := cleanText(r.Text())
		rec.Recommendation = &text
	} else {
		miss("Recommendation")
	}

	rec.Pros = ExtractListSection(review, sels.Pros)
	if !rec.HasPros() {
		miss("Pros")
	}
	rec.Cons = ExtractListSection(review, sels.Cons)
	if !rec.HasCons() {
		miss("Cons")
	}

	if b, ok := findOptional(review, sels.Body); ok {
		rec.Notes = cleanText(b.Text())
	} else {
		miss("Notes")
	}

	rec.ReviewFeedbackPos = feedbackCount(review, sels.FeedbackPositive, "ReviewFeedbackPos", miss)
	rec.ReviewFeedbackNeg = feedbackCount(review, sels.FeedbackNegative, "ReviewFeedbackNeg", miss)
	rec.ReviewFeedbackScore = rec.ReviewFeedbackPos - rec.ReviewFeedbackNeg

	return rec, misses
}

func feedbackCount(review *goquery.Selection, sel, field string, miss func(string)) int {
	btn, ok := findOptional(review, sel)
	if !ok {
		miss(field)
		return 0
	}
	n, ok := parseCount(btn.Text())
	if !ok {
		miss(field)
		return 0
	}
	return n
}

// parseFragment wraps an outer-HTML snapshot in a document and returns its
// top-level element.
func parseFragment(html string) (*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return doc.Find("body").Children().First(), nil
}
