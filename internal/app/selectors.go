package app

// Selectors are the CSS queries the scrape depends on.
type Selectors struct {
	// search
	SearchInput  string
	SearchButton string

	// listing
	ResultsArea  string
	ResultEntry  string
	ProductTitle string

	// detail
	ReviewsArea string
	LoadMore    string
	Review      string

	// review entry
	ReviewTitle      string
	RatingValue      string
	AuthorList       string
	AuthorItem       string
	AuthorKeyAttr    string
	Recommendation   string
	Pros             string
	Cons             string
	Body             string
	FeedbackPositive string
	FeedbackNegative string
}

// DefaultSelectors match the bol.com markup.
func DefaultSelectors() Selectors {
	return Selectors{
		SearchInput:  "#searchfor",
		SearchButton: ".input-group__addon",

		ResultsArea:  ".results-area",
		ResultEntry:  ".product-item--row",
		ProductTitle: ".product-title",

		ReviewsArea: ".reviews",
		LoadMore:    ".review-load-more__button",
		Review:      ".review",

		ReviewTitle:      ".review__header",
		RatingValue:      `input[name="rating-value"]`,
		AuthorList:       ".review-metadata__list",
		AuthorItem:       "li",
		AuthorKeyAttr:    "data-test",
		Recommendation:   ".review-metadata__recommends",
		Pros:             ".review-pros-and-cons__list--pros",
		Cons:             ".review-pros-and-cons__list--cons",
		Body:             ".review__body",
		FeedbackPositive: ".review-feedback__btn--positive",
		FeedbackNegative: ".review-feedback__btn--negative",
	}
}
