// Package notify holds the outbound notification collaborator. Actual email
// delivery lives outside this service; the log implementation records what
// would be sent.
package notify

import (
	"context"
	"log"

	"libraryapi/internal/entity"
)

type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) CopyAvailable(_ context.Context, userID, bookID, barcode string) {
	log.Printf("notify copy_available user_id=%s book_id=%s barcode=%s", userID, bookID, barcode)
}

func (n *LogNotifier) RecordOverdue(_ context.Context, record entity.BorrowRecord, accruedFine float64) {
	log.Printf("notify overdue borrow_id=%s user_id=%s due_date=%s fine=%.2f",
		record.ID, record.UserID, record.DueDate.Format("2006-01-02"), accruedFine)
}
