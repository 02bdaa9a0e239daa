// model/rentalModel.go
package model

import "time"

// RentTransaction is an immutable ledger record. TotalCost is computed
// once at creation so the agreed price survives later price changes.
type RentTransaction struct {
	ISBN         string    `json:"isbn"`
	BookTitle    string    `json:"book_title"`
	UserID       int64     `json:"user_id"`
	DurationDays int       `json:"duration_days"`
	TotalCost    float64   `json:"total_cost"`
	DueDate      time.Time `json:"due_date"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewRentTransaction(b *Book, u *User, days int, due, now time.Time) RentTransaction {
	return RentTransaction{
		ISBN:         b.ISBN,
		BookTitle:    b.Title,
		UserID:       u.ID,
		DurationDays: days,
		TotalCost:    b.RentalPricePerDay * float64(days),
		DueDate:      due,
		CreatedAt:    now,
	}
}
