package catalog_test

import (
	"errors"
	"testing"
	"time"

	"github.com/KhaledKanawati/LibrarySystem/model"
	"github.com/KhaledKanawati/LibrarySystem/service/catalog"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAdd_DuplicateISBN(t *testing.T) {
	c := catalog.New()
	if err := c.Add(model.NewBook("001", "Dune", "Frank Herbert", 2)); err != nil {
		t.Fatalf("first add: %v", err)
	}
	// "1" collides with "001" after normalization
	err := c.Add(model.NewBook("1", "Other", "Other", 0))
	if !errors.Is(err, catalog.ErrDuplicateISBN) {
		t.Fatalf("got %v; want ErrDuplicateISBN", err)
	}
}

func TestFindByISBN_LeadingZeroVariants(t *testing.T) {
	c := catalog.New()
	if err := c.Add(model.NewBook("01", "Dune", "Frank Herbert", 2)); err != nil {
		t.Fatal(err)
	}
	for _, q := range []string{"1", "01", "001"} {
		b, err := c.FindByISBN(q)
		if err != nil {
			t.Fatalf("FindByISBN(%q): %v", q, err)
		}
		if b.Title != "Dune" {
			t.Fatalf("FindByISBN(%q) found %q", q, b.Title)
		}
	}
	if _, err := c.FindByISBN("2"); !errors.Is(err, catalog.ErrBookNotFound) {
		t.Fatalf("got %v; want ErrBookNotFound", err)
	}
}

func TestRemove(t *testing.T) {
	c := catalog.New()
	_ = c.Add(model.NewBook("1", "Dune", "Frank Herbert", 2))

	if err := c.Remove("001"); err != nil {
		t.Fatalf("remove by variant: %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("catalog still has %d books", c.Len())
	}
	if err := c.Remove("1"); !errors.Is(err, catalog.ErrBookNotFound) {
		t.Fatalf("second remove: got %v; want ErrBookNotFound", err)
	}
}

func TestSweepExpired_Idempotent(t *testing.T) {
	c := catalog.New()
	today := date(2025, time.June, 1)

	expired := model.NewBook("1", "Lent Out", "A", 1)
	until := date(2025, time.May, 20)
	expired.SetDonation(7, model.DonationTemporary, &until)
	_ = c.Add(expired)

	current := model.NewBook("2", "Still Good", "B", 1)
	later := date(2025, time.July, 1)
	current.SetDonation(7, model.DonationTemporary, &later)
	_ = c.Add(current)

	permanent := model.NewBook("3", "Forever", "C", 1)
	permanent.SetDonation(8, model.DonationPermanent, nil)
	_ = c.Add(permanent)

	removed := c.SweepExpired(today)
	if len(removed) != 1 || removed[0].Title != "Lent Out" {
		t.Fatalf("first sweep removed %v", removed)
	}
	if again := c.SweepExpired(today); len(again) != 0 {
		t.Fatalf("second sweep removed %v; want nothing", again)
	}
	if c.Len() != 2 {
		t.Fatalf("catalog has %d books; want 2", c.Len())
	}
}

func TestSweepExpired_DueDayNotExpired(t *testing.T) {
	c := catalog.New()
	until := date(2025, time.June, 1)
	b := model.NewBook("1", "Edge", "A", 1)
	b.SetDonation(7, model.DonationTemporary, &until)
	_ = c.Add(b)

	if removed := c.SweepExpired(until); len(removed) != 0 {
		t.Fatalf("lend-until day itself must not expire, removed %v", removed)
	}
	if removed := c.SweepExpired(until.AddDate(0, 0, 1)); len(removed) != 1 {
		t.Fatalf("day after lend-until must expire, removed %v", removed)
	}
}

func TestListAndSearch(t *testing.T) {
	c := catalog.New()
	a := model.NewBook("1", "Harry Potter and the Sorcerer's Stone", "J.K. Rowling", 2.5)
	b := model.NewBook("2", "Harry Potter and the Chamber of Secrets", "J.K. Rowling", 3)
	d := model.NewBook("3", "1984", "George Orwell", 0)
	_ = c.Add(a)
	_ = c.Add(b)
	_ = c.Add(d)

	now := date(2025, time.June, 1)
	b.Borrow(now, now.AddDate(0, 0, 7))

	if got := c.ListAvailable(); len(got) != 2 {
		t.Fatalf("available: got %d; want 2", len(got))
	}
	borrowed := c.ListBorrowed()
	if len(borrowed) != 1 || borrowed[0].ISBN != "2" {
		t.Fatalf("borrowed: got %v", borrowed)
	}

	if got := c.SearchTitle("harry potter"); len(got) != 2 {
		t.Fatalf("search: got %d; want 2", len(got))
	}
	if got := c.SearchTitle("1984"); len(got) != 1 {
		t.Fatalf("search exact: got %d; want 1", len(got))
	}
	if got := c.SearchTitle("tolkien"); len(got) != 0 {
		t.Fatalf("search miss: got %d; want 0", len(got))
	}
}
