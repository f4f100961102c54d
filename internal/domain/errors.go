package domain

import "errors"

var (
	// ErrNotFound is returned when an element or stored row is absent.
	ErrNotFound = errors.New("not found")
	// ErrStructural marks a page that lacks the controls a run depends on.
	ErrStructural = errors.New("page structure missing")
)
