package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"review_scraper/internal/adapters/observability"
	"review_scraper/internal/domain"
)

type ScrapeConfig struct {
	BaseURL     string
	SearchWait  time.Duration // search controls
	ElementWait time.Duration // listing and reviews area
	MaxProducts int           // 0 = every listed product
}

type scrapeState int

const (
	stateSearching scrapeState = iota
	stateListing
	stateDetail
	stateExtracting
	stateDone
)

func (s scrapeState) String() string {
	switch s {
	case stateSearching:
		return "searching"
	case stateListing:
		return "product_listing"
	case stateDetail:
		return "product_detail"
	case stateExtracting:
		return "extracting"
	case stateDone:
		return "done"
	}
	return "unknown"
}

type ScrapeService struct {
	browser     domain.Browser
	sels        Selectors
	expander    *Expander
	checkpoints *Checkpoints
	cfg         ScrapeConfig
	log         zerolog.Logger
}

func NewScrapeService(b domain.Browser, sels Selectors, exp *Expander, cp *Checkpoints, cfg ScrapeConfig, log zerolog.Logger) *ScrapeService {
	return &ScrapeService{browser: b, sels: sels, expander: exp, checkpoints: cp, cfg: cfg, log: log}
}

// Run searches for term and collects the reviews of every listed product.
// Field-level misses are logged and never abort the run; missing search
// controls, results container or reviews area do.
func (s *ScrapeService) Run(ctx context.Context, term string) ([]domain.ReviewRecord, error) {
	var (
		table   []domain.ReviewRecord
		state   = stateSearching
		index   int
		total   = -1
		entry   domain.ProductEntry
		reviews []string
	)

	for state != stateDone {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.log.Debug().Stringer("state", state).Int("index", index).Msg("scrape step")

		switch state {
		case stateSearching:
			if err := s.search(ctx, term); err != nil {
				return nil, err
			}
			state = stateListing

		case stateListing:
			// The detail page replaces the DOM; always start from a fresh listing.
			entries, err := s.listing(ctx)
			if err != nil {
				return nil, err
			}
			if total < 0 {
				total = len(entries)
				if s.cfg.MaxProducts > 0 && total > s.cfg.MaxProducts {
					total = s.cfg.MaxProducts
				}
				s.log.Info().Int("products", len(entries)).Int("visiting", total).Msg("search results found")
			}
			if index >= total {
				state = stateDone
				continue
			}
			if index >= len(entries) {
				s.log.Warn().
					Int("index", index).
					Int("listed", len(entries)).
					Msg("listing shrank between visits, stopping")
				state = stateDone
				continue
			}
			entry = entries[index]
			if recs, ok := s.checkpoints.Load(ctx, term, entry); ok {
				s.log.Info().Str("product", entry.Title).Int("reviews", len(recs)).Msg("product restored from checkpoint")
				table = append(table, recs...)
				index++
				continue
			}
			state = stateDetail

		case stateDetail:
			s.log.Info().Int("index", entry.Index).Str("product", entry.Title).Msg("processing product")
			var err error
			if reviews, err = s.openProduct(ctx, entry); err != nil {
				return nil, err
			}
			state = stateExtracting

		case stateExtracting:
			recs := s.extract(term, entry, reviews)
			table = append(table, recs...)
			s.checkpoints.Save(ctx, term, entry, recs)
			observability.ObserveProduct()

			if err := s.browser.Back(ctx); err != nil {
				return nil, fmt.Errorf("return to listing: %w", err)
			}
			index++
			state = stateListing
		}
	}

	s.log.Info().Int("records", len(table)).Msg("scrape finished")
	return table, nil
}

func (s *ScrapeService) search(ctx context.Context, term string) error {
	if err := s.browser.Open(ctx, s.cfg.BaseURL); err != nil {
		return fmt.Errorf("open %s: %w", s.cfg.BaseURL, err)
	}
	return Lookup(ctx, s.browser, s.sels.SearchInput, s.sels.SearchButton, term, s.cfg.SearchWait)
}

// Lookup types query into the input and submits the form of button, waiting
// at most wait for both controls.
func Lookup(ctx context.Context, b domain.Browser, input, button, query string, wait time.Duration) error {
	for _, sel := range []string{input, button} {
		if err := b.WaitPresent(ctx, sel, wait); err != nil {
			return fmt.Errorf("search control %q: %w: %w", sel, domain.ErrStructural, err)
		}
	}
	if err := b.SendKeys(ctx, input, query); err != nil {
		return fmt.Errorf("type search term: %w", err)
	}
	if err := b.Submit(ctx, button); err != nil {
		return fmt.Errorf("submit search: %w", err)
	}
	return nil
}

// listing reads the result entries of the current listing page.
func (s *ScrapeService) listing(ctx context.Context) ([]domain.ProductEntry, error) {
	if err := s.browser.WaitPresent(ctx, s.sels.ResultsArea, s.cfg.ElementWait); err != nil {
		return nil, fmt.Errorf("results container: %w: %w", domain.ErrStructural, err)
	}
	html, err := s.browser.OuterHTML(ctx, s.sels.ResultsArea)
	if err != nil {
		return nil, fmt.Errorf("results container: %w: %w", domain.ErrStructural, err)
	}
	area, err := parseFragment(html)
	if err != nil {
		return nil, fmt.Errorf("parse results container: %w", err)
	}

	var out []domain.ProductEntry
	area.Find(s.sels.ResultEntry).Each(func(i int, row *goquery.Selection) {
		out = append(out, domain.ProductEntry{
			Index: i,
			Title: cleanText(row.Find(s.sels.ProductTitle).First().Text()),
		})
	})
	return out, nil
}

// openProduct moves into the detail page of e, expands the review list and
// snapshots every review entry.
func (s *ScrapeService) openProduct(ctx context.Context, e domain.ProductEntry) ([]string, error) {
	rows := s.sels.ResultsArea + " " + s.sels.ResultEntry
	if err := s.browser.ClickNth(ctx, rows, e.Index, s.sels.ProductTitle); err != nil {
		return nil, fmt.Errorf("open product %d: %w", e.Index, err)
	}
	if err := s.browser.WaitPresent(ctx, s.sels.ReviewsArea, s.cfg.ElementWait); err != nil {
		return nil, fmt.Errorf("reviews area of %q: %w: %w", e.Title, domain.ErrStructural, err)
	}

	if _, err := s.expander.ExpandAll(ctx, s.sels.ReviewsArea); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !errors.Is(err, ErrExpansionCapped) {
			s.log.Warn().Err(err).Str("product", e.Title).Msg("review expansion stopped early")
		}
	}

	reviews, err := s.browser.OuterHTMLAll(ctx, s.sels.ReviewsArea+" "+s.sels.Review)
	if err != nil {
		return nil, fmt.Errorf("review entries of %q: %w", e.Title, err)
	}
	s.log.Info().Int("reviews", len(reviews)).Str("product", e.Title).Msg("found reviews")
	return reviews, nil
}

func (s *ScrapeService) extract(term string, e domain.ProductEntry, reviews []string) []domain.ReviewRecord {
	out := make([]domain.ReviewRecord, 0, len(reviews))
	for j, html := range reviews {
		sel, err := parseFragment(html)
		if err != nil || sel.Length() == 0 {
			s.log.Error().Err(err).Int("review", j).Str("product", e.Title).Msg("unreadable review entry")
			continue
		}
		rec, misses := ExtractReview(sel, s.sels, s.log)
		rec.Product = term
		rec.ProductTitle = e.Title

		s.log.Info().
			Int("review", j+1).
			Int("of", len(reviews)).
			Str("review_title", rec.ReviewTitle).
			Str("missing", strings.Join(misses, ",")).
			Msg("processed review")
		observability.ObserveReview(misses)
		out = append(out, rec)
	}
	return out
}
