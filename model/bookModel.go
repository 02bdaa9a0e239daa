// model/bookModel.go
package model

import "time"

type DonationType string

const (
	DonationNone      DonationType = "NONE"
	DonationPermanent DonationType = "PERMANENT"
	DonationTemporary DonationType = "TEMPORARY"
)

// Book is a catalog entry. ISBN, title, author and price never change
// after creation; availability and the borrow/donation metadata do.
type Book struct {
	ISBN              string  `json:"isbn"`
	Title             string  `json:"title"`
	Author            string  `json:"author"`
	RentalPricePerDay float64 `json:"rental_price_per_day"`
	Available         bool    `json:"available"`

	BorrowedAt    *time.Time `json:"borrowed_at,omitempty"`
	RentalDueDate *time.Time `json:"rental_due_date,omitempty"`

	DonorUserID  *int64       `json:"donor_user_id,omitempty"`
	DonationType DonationType `json:"donation_type"`
	// LendUntil is set iff DonationType == DonationTemporary.
	LendUntil *time.Time `json:"lend_until,omitempty"`
}

func NewBook(isbn, title, author string, pricePerDay float64) *Book {
	return &Book{
		ISBN:              isbn,
		Title:             title,
		Author:            author,
		RentalPricePerDay: pricePerDay,
		Available:         true,
		DonationType:      DonationNone,
	}
}

// IsFree reports whether the book can be adopted rather than rented.
func (b *Book) IsFree() bool { return b.RentalPricePerDay == 0 }

func (b *Book) IsTemporaryLoan() bool { return b.DonationType == DonationTemporary }

// IsExpired reports whether a temporary loan has passed its lend-until
// date. Books without one never expire.
func (b *Book) IsExpired(today time.Time) bool {
	if b.LendUntil == nil {
		return false
	}
	return today.After(*b.LendUntil)
}

func (b *Book) SetDonation(donorID int64, typ DonationType, lendUntil *time.Time) {
	b.DonorUserID = &donorID
	b.DonationType = typ
	b.LendUntil = lendUntil
}

// Borrow marks the book held until Return is called.
func (b *Book) Borrow(now, due time.Time) {
	b.Available = false
	b.BorrowedAt = &now
	b.RentalDueDate = &due
}

// Return puts the book back on the shelf and clears borrow state.
func (b *Book) Return() {
	b.Available = true
	b.BorrowedAt = nil
	b.RentalDueDate = nil
}
