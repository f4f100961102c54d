package domain

// ProductEntry is one result entry read from a freshly queried listing.
type ProductEntry struct {
	Index int
	Title string
}
