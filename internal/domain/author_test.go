package domain_test

import (
	"testing"

	"review_scraper/internal/domain"
)

func TestAuthorField_KeysRoundTrip(t *testing.T) {
	for _, f := range domain.AuthorFields {
		got, ok := domain.ParseAuthorField(f.Key())
		if !ok || got != f {
			t.Fatalf("ParseAuthorField(%q) = %v,%v", f.Key(), got, ok)
		}
	}
	if _, ok := domain.ParseAuthorField("review-author-badge"); ok {
		t.Fatalf("unknown key must not parse")
	}
}

func TestAuthorInfo_DefaultsToUnset(t *testing.T) {
	a := domain.NewAuthorInfo()
	a.Set(domain.AuthorCity, "Gent")

	m := a.Map()
	if len(m) != 4 {
		t.Fatalf("expected exactly four fields, got %v", m)
	}
	if m["review-author-city"] != "Gent" || m["review-author-name"] != domain.Unset {
		t.Fatalf("unexpected map %v", m)
	}
}

func TestReviewRecord_SentinelLists(t *testing.T) {
	r := domain.ReviewRecord{Pros: []string{domain.Unknown}, Cons: []string{"Prijs"}}
	if r.HasPros() || !r.HasCons() {
		t.Fatalf("HasPros=%v HasCons=%v", r.HasPros(), r.HasCons())
	}
}
