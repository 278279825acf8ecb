package entity

import "time"

// Book represents a catalog title. TotalCopies and AvailableCopies are
// derived counters owned by the inventory ledger: AvailableCopies must always
// equal the number of this book's copies in AVAILABLE status, and callers
// never mutate either field directly.
type Book struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Category        string    `json:"category,omitempty"`
	Publisher       string    `json:"publisher,omitempty"`
	PublishedYear   *int      `json:"published_year,omitempty"`
	ISBN            string    `json:"isbn,omitempty"`
	Location        string    `json:"location,omitempty"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	CreatedAt       time.Time `json:"created_at"`
}
