package circulation

import "time"

// ComputeFine charges finePerDay for every full day the return is past due.
// Partial days are not charged, and returning on or before the due date
// yields zero.
func ComputeFine(dueDate, returnDate time.Time, finePerDay float64) float64 {
	daysOverdue := int(returnDate.Sub(dueDate).Hours() / 24)
	if daysOverdue < 0 {
		daysOverdue = 0
	}
	return float64(daysOverdue) * finePerDay
}
