package domain

// AuthorField is one of the four credentials shown next to a review.
type AuthorField int

const (
	AuthorName AuthorField = iota
	AuthorCity
	AuthorAge
	AuthorDate
)

// AuthorFields lists every recognized credential in a stable order.
var AuthorFields = [...]AuthorField{AuthorName, AuthorCity, AuthorAge, AuthorDate}

// Key is the data-test attribute value the site uses for the field.
func (f AuthorField) Key() string {
	switch f {
	case AuthorName:
		return "review-author-name"
	case AuthorCity:
		return "review-author-city"
	case AuthorAge:
		return "review-author-age"
	case AuthorDate:
		return "review-author-date"
	}
	return ""
}

func (f AuthorField) String() string { return f.Key() }

// ParseAuthorField maps a data-test value to its field.
func ParseAuthorField(key string) (AuthorField, bool) {
	switch key {
	case "review-author-name":
		return AuthorName, true
	case "review-author-city":
		return AuthorCity, true
	case "review-author-age":
		return AuthorAge, true
	case "review-author-date":
		return AuthorDate, true
	}
	return 0, false
}

// AuthorInfo always holds exactly the four recognized credentials.
type AuthorInfo struct {
	values [len(AuthorFields)]string
}

// NewAuthorInfo returns an AuthorInfo with every field set to Unset.
func NewAuthorInfo() AuthorInfo {
	var a AuthorInfo
	for i := range a.values {
		a.values[i] = Unset
	}
	return a
}

func (a *AuthorInfo) Set(f AuthorField, v string) { a.values[f] = v }

func (a AuthorInfo) Get(f AuthorField) string { return a.values[f] }

// Map returns the credentials keyed by their data-test attribute.
func (a AuthorInfo) Map() map[string]string {
	out := make(map[string]string, len(AuthorFields))
	for _, f := range AuthorFields {
		out[f.Key()] = a.values[f]
	}
	return out
}
