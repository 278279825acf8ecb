package entity

import "time"

// FinePaymentStatus tracks settlement of a late-return fine.
type FinePaymentStatus string

const (
	FineNotApplicable FinePaymentStatus = "NOT_APPLICABLE"
	FinePending       FinePaymentStatus = "PENDING"
	FinePaid          FinePaymentStatus = "PAID"
)

// BorrowRecord ties a user to one copy of one book for a loan period.
// It is created Active, transitions once to returned, and is immutable
// afterwards except for fine-payment updates by the payments collaborator.
type BorrowRecord struct {
	ID                string            `json:"id"`
	UserID            string            `json:"user_id"`
	BookID            string            `json:"book_id"`
	CopyID            string            `json:"copy_id"`
	BorrowDate        time.Time         `json:"borrow_date"`
	DueDate           time.Time         `json:"due_date"`
	ReturnDate        *time.Time        `json:"return_date,omitempty"`
	Returned          bool              `json:"returned"`
	Fine              float64           `json:"fine"`
	FinePaymentStatus FinePaymentStatus `json:"fine_payment_status"`
	ConditionOnReturn string            `json:"condition_on_return,omitempty"`
	RemarksOnReturn   string            `json:"remarks_on_return,omitempty"`
}
