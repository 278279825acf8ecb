package entity

import "time"

// CopyStatus is the lifecycle state of a physical copy.
type CopyStatus string

const (
	CopyAvailable CopyStatus = "AVAILABLE"
	CopyBorrowed  CopyStatus = "BORROWED"
	CopyDamaged   CopyStatus = "DAMAGED"
)

// BookCopy is one physical instance of a Book, tracked by barcode.
// A copy is AVAILABLE if and only if no open borrow record references it.
type BookCopy struct {
	ID             string     `json:"id"`
	BookID         string     `json:"book_id"`
	Barcode        string     `json:"barcode"`
	Status         CopyStatus `json:"status"`
	Condition      string     `json:"condition"` // "New", "Good", "Worn", "Damaged"
	Remarks        string     `json:"remarks,omitempty"`
	AddedAt        time.Time  `json:"added_at"`
	LastBorrowedAt *time.Time `json:"last_borrowed_at,omitempty"`
}
