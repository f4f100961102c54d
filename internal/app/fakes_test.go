package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"review_scraper/internal/domain"
)

func ptr[T any](v T) *T { return &v }

// ---- fake site / browser ----

const homeHTML = `<html><body>
<form action="/s"><input id="searchfor" name="searchtext"><button class="input-group__addon">Zoek</button></form>
</body></html>`

type fakeProduct struct {
	title   string
	reviews []string   // visible on load
	batches [][]string // revealed one per load-more click
}

// fakeBrowser serves a tiny home -> listing -> product site from memory and
// answers selector queries with goquery.
type fakeBrowser struct {
	products []fakeProduct
	// listingSize, when set, decides how many products the n-th listing read shows.
	listingSize func(read int) int
	noResults   bool // listing page lacks the results container
	noReviews   bool // product pages lack the reviews area
	clickErr    error
	// hideLoadMore hides the load-more button after the last batch instead
	// of removing it.
	hideLoadMore bool

	doc      *goquery.Document
	page     string
	current  int
	revealed int

	typed        string
	listingReads int
	opened       []int
	clicks       int
	backs        int
}

func (f *fakeBrowser) load(html string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		panic(err)
	}
	f.doc = doc
}

func (f *fakeBrowser) listingHTML() string {
	if f.noResults {
		return `<html><body><p>Geen resultaten</p></body></html>`
	}
	n := len(f.products)
	if f.listingSize != nil {
		n = f.listingSize(f.listingReads)
	}
	var b strings.Builder
	b.WriteString(`<html><body><div class="results-area"><ul>`)
	for i := 0; i < n && i < len(f.products); i++ {
		fmt.Fprintf(&b, `<li class="product-item--row"><a class="product-title" href="/p/%d">  %s </a></li>`, i, f.products[i].title)
	}
	b.WriteString(`</ul></div></body></html>`)
	return b.String()
}

func (f *fakeBrowser) productHTML(i int) string {
	p := f.products[i]
	if f.noReviews {
		return `<html><body><h1>` + p.title + `</h1></body></html>`
	}
	var b strings.Builder
	b.WriteString(`<html><body><h1>` + p.title + `</h1><div class="reviews">`)
	for _, r := range p.reviews {
		b.WriteString(r)
	}
	if len(p.batches) > 0 {
		b.WriteString(`<button class="review-load-more__button">Meer</button>`)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

func (f *fakeBrowser) Open(ctx context.Context, url string) error {
	f.page = "home"
	f.load(homeHTML)
	return nil
}

func (f *fakeBrowser) WaitPresent(ctx context.Context, sel string, timeout time.Duration) error {
	if f.doc.Find(sel).Length() == 0 {
		return fmt.Errorf("wait %s: %w", sel, context.DeadlineExceeded)
	}
	return nil
}

func (f *fakeBrowser) Exists(ctx context.Context, sel string) (bool, error) {
	return f.doc.Find(sel).Length() > 0, nil
}

func (f *fakeBrowser) OuterHTML(ctx context.Context, sel string) (string, error) {
	m := f.doc.Find(sel).First()
	if m.Length() == 0 {
		return "", errors.New("no element")
	}
	return goquery.OuterHtml(m)
}

func (f *fakeBrowser) OuterHTMLAll(ctx context.Context, sel string) ([]string, error) {
	var out []string
	var err error
	f.doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
		h, e := goquery.OuterHtml(s)
		if e != nil {
			err = e
		}
		out = append(out, h)
	})
	return out, err
}

func (f *fakeBrowser) SendKeys(ctx context.Context, sel, text string) error {
	f.typed += text
	return nil
}

func (f *fakeBrowser) Submit(ctx context.Context, sel string) error {
	f.showListing()
	return nil
}

func (f *fakeBrowser) showListing() {
	f.page = "listing"
	f.load(f.listingHTML())
	f.listingReads++
}

func (f *fakeBrowser) Click(ctx context.Context, sel string) error {
	f.clicks++
	if f.clickErr != nil {
		return f.clickErr
	}
	btn := f.doc.Find(sel).First()
	if btn.Length() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, sel)
	}
	if style, _ := btn.Attr("style"); strings.Contains(style, "display:none") {
		return fmt.Errorf("%w: %s missing or not interactable", domain.ErrNotFound, sel)
	}
	p := f.products[f.current]
	if f.revealed < len(p.batches) {
		btn.BeforeHtml(strings.Join(p.batches[f.revealed], ""))
		f.revealed++
	}
	if f.revealed >= len(p.batches) {
		if f.hideLoadMore {
			btn.SetAttr("style", "display:none")
		} else {
			btn.Remove()
		}
	}
	return nil
}

func (f *fakeBrowser) ClickNth(ctx context.Context, sel string, n int, inner string) error {
	if f.page != "listing" || f.doc.Find(sel).Eq(n).Find(inner).Length() == 0 {
		return fmt.Errorf("no product %d", n)
	}
	f.opened = append(f.opened, n)
	f.page, f.current, f.revealed = "product", n, 0
	f.load(f.productHTML(n))
	return nil
}

func (f *fakeBrowser) Back(ctx context.Context) error {
	f.backs++
	f.showListing()
	return nil
}

// ---- review fixtures ----

type reviewOpts struct {
	title     string
	rating    string
	author    map[string]string
	recommend string
	pros      []string
	cons      []string
	body      string
	pos, neg  string
}

func reviewHTML(o reviewOpts) string {
	var b strings.Builder
	b.WriteString(`<div class="review">`)
	if o.title != "" {
		fmt.Fprintf(&b, `<h3 class="review__header">%s</h3>`, o.title)
	}
	if o.rating != "" {
		fmt.Fprintf(&b, `<input type="hidden" name="rating-value" value="%s">`, o.rating)
	}
	if o.author != nil {
		b.WriteString(`<ul class="review-metadata__list">`)
		for _, k := range []string{"review-author-name", "review-author-city", "review-author-age", "review-author-date", "review-author-badge"} {
			if v, ok := o.author[k]; ok {
				fmt.Fprintf(&b, `<li data-test="%s">%s</li>`, k, v)
			}
		}
		b.WriteString(`</ul>`)
	}
	if o.recommend != "" {
		fmt.Fprintf(&b, `<div class="review-metadata__recommends">%s</div>`, o.recommend)
	}
	if o.pros != nil {
		b.WriteString(`<ul class="review-pros-and-cons__list--pros">`)
		for _, p := range o.pros {
			fmt.Fprintf(&b, `<li>%s</li>`, p)
		}
		b.WriteString(`</ul>`)
	}
	if o.cons != nil {
		b.WriteString(`<ul class="review-pros-and-cons__list--cons">`)
		for _, c := range o.cons {
			fmt.Fprintf(&b, `<li>%s</li>`, c)
		}
		b.WriteString(`</ul>`)
	}
	if o.body != "" {
		fmt.Fprintf(&b, `<p class="review__body">%s</p>`, o.body)
	}
	if o.pos != "" {
		fmt.Fprintf(&b, `<button class="review-feedback__btn--positive">%s</button>`, o.pos)
	}
	if o.neg != "" {
		fmt.Fprintf(&b, `<button class="review-feedback__btn--negative">%s</button>`, o.neg)
	}
	b.WriteString(`</div>`)
	return b.String()
}

func fullReview(title string) string {
	return reviewHTML(reviewOpts{
		title:  title,
		rating: "480",
		author: map[string]string{
			"review-author-name": "Jan",
			"review-author-city": "Utrecht",
			"review-author-age":  "35-44",
			"review-author-date": "12 maart 2019",
		},
		recommend: "Ik raad dit product aan",
		pros:      []string{"Stil", "Zuinig"},
		cons:      []string{"Prijs"},
		body:      "Werkt   prima.",
		pos:       "Ja (12)",
		neg:       "Nee (3)",
	})
}

// ---- repo / cache / writer fakes ----

type fakeRepo struct {
	rp       domain.ReviewsPage
	listed   int
	upserted []domain.StoredReview
	err      error
}

func (f *fakeRepo) UpsertReviews(ctx context.Context, rs []domain.StoredReview) error {
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, rs...)
	return nil
}

func (f *fakeRepo) ListReviews(ctx context.Context, q domain.ReviewsQuery) (domain.ReviewsPage, error) {
	f.listed++
	return f.rp, f.err
}

// fakeCache stores JSON like the redis adapter does.
type fakeCache struct {
	store map[string][]byte
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(v, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.store, k)
	}
	return nil
}

func (c *fakeCache) Keys(ctx context.Context, pattern string) ([]string, error) {
	var out []string
	for k := range c.store {
		if ok, _ := path.Match(pattern, k); ok {
			out = append(out, k)
		}
	}
	return out, nil
}

type fakeWriter struct {
	path  string
	err   error
	terms []string
	rows  int
}

func (w *fakeWriter) WriteTable(ctx context.Context, term string, recs []domain.ReviewRecord) (string, error) {
	w.terms = append(w.terms, term)
	w.rows += len(recs)
	if len(recs) == 0 {
		return "", w.err
	}
	return w.path, w.err
}
