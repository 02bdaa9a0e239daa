// Package catalog owns the book collection: insertion-ordered for
// display, keyed by normalized ISBN for every lookup.
package catalog

import (
	"errors"
	"strings"
	"time"

	"github.com/KhaledKanawati/LibrarySystem/model"
	"github.com/KhaledKanawati/LibrarySystem/util/isbn"
)

var (
	ErrDuplicateISBN = errors.New("isbn already exists")
	ErrBookNotFound  = errors.New("book not found")
)

type Catalog struct {
	books []*model.Book
}

func New() *Catalog { return &Catalog{} }

// FromSnapshot rebuilds a catalog from a persisted book list, keeping
// its order.
func FromSnapshot(books []*model.Book) *Catalog {
	return &Catalog{books: books}
}

// Books returns the collection in insertion order. The slice is a copy;
// the entries are the live books.
func (c *Catalog) Books() []*model.Book {
	out := make([]*model.Book, len(c.books))
	copy(out, c.books)
	return out
}

func (c *Catalog) Len() int { return len(c.books) }

// Add appends a book, rejecting normalized-ISBN collisions.
func (c *Catalog) Add(b *model.Book) error {
	if c.Exists(b.ISBN) {
		return ErrDuplicateISBN
	}
	c.books = append(c.books, b)
	return nil
}

func (c *Catalog) Exists(rawISBN string) bool {
	_, err := c.FindByISBN(rawISBN)
	return err == nil
}

// FindByISBN scans for the book whose normalized ISBN matches.
func (c *Catalog) FindByISBN(rawISBN string) (*model.Book, error) {
	key := isbn.Normalize(rawISBN)
	for _, b := range c.books {
		if isbn.Normalize(b.ISBN) == key {
			return b, nil
		}
	}
	return nil, ErrBookNotFound
}

// Remove drops the book with this ISBN. Used on adoption and on the
// expiry sweep; adopted and expired books leave the catalog for good.
func (c *Catalog) Remove(rawISBN string) error {
	key := isbn.Normalize(rawISBN)
	for i, b := range c.books {
		if isbn.Normalize(b.ISBN) == key {
			c.books = append(c.books[:i], c.books[i+1:]...)
			return nil
		}
	}
	return ErrBookNotFound
}

// SweepExpired removes every temporary loan past its lend-until date
// and returns the removed books. A book removed once is gone, so a
// second sweep finds nothing.
func (c *Catalog) SweepExpired(today time.Time) []*model.Book {
	var expired []*model.Book
	kept := c.books[:0]
	for _, b := range c.books {
		if b.IsTemporaryLoan() && b.IsExpired(today) {
			expired = append(expired, b)
		} else {
			kept = append(kept, b)
		}
	}
	c.books = kept
	return expired
}

func (c *Catalog) ListAvailable() []*model.Book {
	var out []*model.Book
	for _, b := range c.books {
		if b.Available {
			out = append(out, b)
		}
	}
	return out
}

func (c *Catalog) ListBorrowed() []*model.Book {
	var out []*model.Book
	for _, b := range c.books {
		if !b.Available {
			out = append(out, b)
		}
	}
	return out
}

// SearchTitle matches a case-insensitive title substring.
func (c *Catalog) SearchTitle(q string) []*model.Book {
	needle := strings.ToLower(q)
	var out []*model.Book
	for _, b := range c.books {
		if strings.Contains(strings.ToLower(b.Title), needle) {
			out = append(out, b)
		}
	}
	return out
}
