package book

import (
	"fmt"
	"time"

	"github.com/KhaledKanawati/LibrarySystem/model"
	"github.com/KhaledKanawati/LibrarySystem/service/fee"
)

type DonateReq struct {
	ISBN        string  `json:"isbn" validate:"required"`
	Title       string  `json:"title" validate:"required"`
	Author      string  `json:"author" validate:"required"`
	PricePerDay float64 `json:"rental_price_per_day" validate:"gte=0"`
}

type LendReq struct {
	ISBN        string  `json:"isbn" validate:"required"`
	Title       string  `json:"title" validate:"required"`
	Author      string  `json:"author" validate:"required"`
	PricePerDay float64 `json:"rental_price_per_day" validate:"gte=0"`
	Months      int     `json:"months"`
}

// BookView is the display shape: ISBN without leading zeros, currency
// to two decimals, status with how long the book has been out.
type BookView struct {
	ISBN      string `json:"isbn"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Price     string `json:"price"`
	Status    string `json:"status"`
	LendUntil string `json:"lend_until,omitempty"`
}

// displayISBN strips leading zeros so "001" shows as "1"; a lone "0"
// stays as is.
func displayISBN(raw string) string {
	s := raw
	for len(s) > 1 && s[0] == '0' {
		s = s[1:]
	}
	return s
}

func toView(b *model.Book, now time.Time) BookView {
	price := "Free"
	if !b.IsFree() {
		price = fmt.Sprintf("$%.2f/day", b.RentalPricePerDay)
	}

	status := "Available"
	if !b.Available {
		status = fmt.Sprintf("Borrowed (%s)", fee.BorrowDurationLabel(b.BorrowedAt, now))
	}

	v := BookView{
		ISBN:   displayISBN(b.ISBN),
		Title:  b.Title,
		Author: b.Author,
		Price:  price,
		Status: status,
	}
	if b.LendUntil != nil {
		v.LendUntil = b.LendUntil.Format("2006-01-02")
	}
	return v
}

func toViews(books []*model.Book, now time.Time) []BookView {
	out := make([]BookView, 0, len(books))
	for _, b := range books {
		out = append(out, toView(b, now))
	}
	return out
}
