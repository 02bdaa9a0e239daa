package lending

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/KhaledKanawati/LibrarySystem/model"
	"github.com/KhaledKanawati/LibrarySystem/service/catalog"
	"github.com/KhaledKanawati/LibrarySystem/service/fee"
	"github.com/KhaledKanawati/LibrarySystem/service/ledger"
)

// errors used by controllers

type ErrCode string

const (
	ErrBookNotFound    ErrCode = "BOOK_NOT_FOUND"
	ErrUserNotFound    ErrCode = "USER_NOT_FOUND"
	ErrNotAvailable    ErrCode = "NOT_AVAILABLE"
	ErrNotAdoptable    ErrCode = "NOT_ADOPTABLE"
	ErrDuplicateISBN   ErrCode = "DUPLICATE_ISBN"
	ErrInvalidDuration ErrCode = "INVALID_DURATION"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// receipts

type DonationReceipt struct {
	Book      *model.Book
	LendUntil *time.Time
	Persisted bool
}

type AdoptReceipt struct {
	Book      *model.Book
	Persisted bool
}

type RentReceipt struct {
	Transaction model.RentTransaction
	DueDate     time.Time
	Persisted   bool
}

// ReturnOutcome separates the genuine return from the two soft no-ops
// the workflow reports without failing.
type ReturnOutcome string

const (
	OutcomeReturned      ReturnOutcome = "RETURNED"
	OutcomeNoBooksHeld   ReturnOutcome = "NO_BOOKS_HELD"
	OutcomeNotHeldByUser ReturnOutcome = "NOT_HELD_BY_USER"
)

type ReturnReceipt struct {
	Outcome   ReturnOutcome
	LateFee   float64
	DaysLate  int
	Persisted bool
}

// ExpiryNotice reports one temporary loan handed back to its donor.
type ExpiryNotice struct {
	Title           string `json:"title"`
	DonorUserID     *int64 `json:"donor_user_id,omitempty"`
	ReturnedToDonor bool   `json:"returned_to_donor"`
}

type Listing struct {
	Available []*model.Book
	Borrowed  []*model.Book
}

type Users interface {
	ByID(ctx context.Context, userID int64) (*model.User, error)
}

type BookStore interface {
	Save(ctx context.Context, books []*model.Book) error
}

type Service interface {
	AcceptPermanentDonation(ctx context.Context, donorID int64, isbn, title, author string, pricePerDay float64) (*DonationReceipt, error)
	AcceptTemporaryLoan(ctx context.Context, lenderID int64, isbn, title, author string, pricePerDay float64, months int) (*DonationReceipt, error)
	Adopt(ctx context.Context, rawISBN string, userID int64) (*AdoptReceipt, error)
	Rent(ctx context.Context, rawISBN string, userID int64, days int) (*RentReceipt, error)
	Return(ctx context.Context, rawISBN string, userID int64) (*ReturnReceipt, error)
	ProcessExpiredLoans(ctx context.Context) ([]ExpiryNotice, error)

	ListBooks(ctx context.Context) (*Listing, error)
	Search(ctx context.Context, titleSubstring string) ([]*model.Book, error)
	FindBook(ctx context.Context, rawISBN string) (*model.Book, error)
	MyBooks(ctx context.Context, userID int64) ([]*model.Book, error)
	History(ctx context.Context, userID int64) ([]model.RentTransaction, error)
}

// ----- Service implementation -----

type service struct {
	// mu serializes every operation: echo runs handlers concurrently
	// and the catalog, ledger and held-books sets are plain in-memory
	// structures.
	mu sync.Mutex

	cat    *catalog.Catalog
	ledger *ledger.Ledger
	users  Users
	store  BookStore
	log    *slog.Logger

	now func() time.Time
}

func New(cat *catalog.Catalog, led *ledger.Ledger, users Users, store BookStore, log *slog.Logger) Service {
	return &service{
		cat:    cat,
		ledger: led,
		users:  users,
		store:  store,
		log:    log,
		now:    time.Now,
	}
}

func (s *service) AcceptPermanentDonation(ctx context.Context, donorID int64, isbn, title, author string, pricePerDay float64) (*DonationReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(ctx)

	donor, err := s.users.ByID(ctx, donorID)
	if err != nil {
		return nil, makeErr(ErrUserNotFound)
	}
	if s.cat.Exists(isbn) {
		return nil, makeErr(ErrDuplicateISBN)
	}

	b := model.NewBook(isbn, title, author, pricePerDay)
	b.SetDonation(donor.ID, model.DonationPermanent, nil)
	if err := s.cat.Add(b); err != nil {
		return nil, makeErr(ErrDuplicateISBN)
	}
	return &DonationReceipt{Book: b, Persisted: s.persist(ctx)}, nil
}

func (s *service) AcceptTemporaryLoan(ctx context.Context, lenderID int64, isbn, title, author string, pricePerDay float64, months int) (*DonationReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(ctx)

	// minimum loan period is one month
	if months < 1 {
		return nil, makeErr(ErrInvalidDuration)
	}
	lender, err := s.users.ByID(ctx, lenderID)
	if err != nil {
		return nil, makeErr(ErrUserNotFound)
	}
	if s.cat.Exists(isbn) {
		return nil, makeErr(ErrDuplicateISBN)
	}

	until := s.now().AddDate(0, months, 0)
	b := model.NewBook(isbn, title, author, pricePerDay)
	b.SetDonation(lender.ID, model.DonationTemporary, &until)
	if err := s.cat.Add(b); err != nil {
		return nil, makeErr(ErrDuplicateISBN)
	}
	return &DonationReceipt{Book: b, LendUntil: &until, Persisted: s.persist(ctx)}, nil
}

// Adopt hands a free book over for good: it leaves the catalog and the
// only way back is a fresh donation.
func (s *service) Adopt(ctx context.Context, rawISBN string, userID int64) (*AdoptReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(ctx)

	b, err := s.cat.FindByISBN(rawISBN)
	if err != nil {
		return nil, makeErr(ErrBookNotFound)
	}
	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, makeErr(ErrUserNotFound)
	}
	if !b.IsFree() {
		return nil, makeErr(ErrNotAdoptable)
	}
	if !b.Available {
		return nil, makeErr(ErrNotAvailable)
	}

	_ = s.cat.Remove(b.ISBN)
	u.AddBook(b)
	return &AdoptReceipt{Book: b, Persisted: s.persist(ctx)}, nil
}

func (s *service) Rent(ctx context.Context, rawISBN string, userID int64, days int) (*RentReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(ctx)

	b, err := s.cat.FindByISBN(rawISBN)
	if err != nil {
		return nil, makeErr(ErrBookNotFound)
	}
	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, makeErr(ErrUserNotFound)
	}
	if days <= 0 {
		return nil, makeErr(ErrInvalidDuration)
	}
	if !b.Available {
		return nil, makeErr(ErrNotAvailable)
	}

	now := s.now()
	due := now.AddDate(0, 0, days)
	b.Borrow(now, due)
	u.AddBook(b)

	tx := model.NewRentTransaction(b, u, days, due, now)
	s.ledger.Append(tx)

	return &RentReceipt{Transaction: tx, DueDate: due, Persisted: s.persist(ctx)}, nil
}

// Return computes the late fee, frees the book and clears its borrow
// state. "Nothing held" and "not held by this user" come back as soft
// outcomes; an ISBN the catalog does not know stays a hard error.
func (s *service) Return(ctx context.Context, rawISBN string, userID int64) (*ReturnReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(ctx)

	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, makeErr(ErrUserNotFound)
	}
	if len(u.HeldBooks) == 0 {
		return &ReturnReceipt{Outcome: OutcomeNoBooksHeld, Persisted: true}, nil
	}

	b, err := s.cat.FindByISBN(rawISBN)
	if err != nil {
		return nil, makeErr(ErrBookNotFound)
	}
	if !u.Holds(b.ISBN) {
		return &ReturnReceipt{Outcome: OutcomeNotHeldByUser, Persisted: true}, nil
	}

	today := s.now()
	var lateFee float64
	var daysLate int
	if b.RentalDueDate != nil {
		daysLate = fee.DaysLate(*b.RentalDueDate, today)
		lateFee = fee.LateFee(b.RentalPricePerDay, daysLate)
	}

	b.Return()
	u.RemoveBook(b.ISBN)
	s.ledger.Release(b.ISBN)

	return &ReturnReceipt{
		Outcome:   OutcomeReturned,
		LateFee:   lateFee,
		DaysLate:  daysLate,
		Persisted: s.persist(ctx),
	}, nil
}

// ProcessExpiredLoans sweeps expired temporary loans out of the catalog
// and reports one notice per book handed back to its donor.
func (s *service) ProcessExpiredLoans(ctx context.Context) ([]ExpiryNotice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sweep(ctx), nil
}

func (s *service) ListBooks(ctx context.Context) (*Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(ctx)
	return &Listing{
		Available: s.cat.ListAvailable(),
		Borrowed:  s.cat.ListBorrowed(),
	}, nil
}

func (s *service) Search(ctx context.Context, titleSubstring string) ([]*model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(ctx)
	return s.cat.SearchTitle(titleSubstring), nil
}

func (s *service) FindBook(ctx context.Context, rawISBN string) (*model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(ctx)
	b, err := s.cat.FindByISBN(rawISBN)
	if err != nil {
		return nil, makeErr(ErrBookNotFound)
	}
	return b, nil
}

func (s *service) MyBooks(ctx context.Context, userID int64) ([]*model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(ctx)
	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, makeErr(ErrUserNotFound)
	}
	return u.HeldBooks, nil
}

func (s *service) History(ctx context.Context, userID int64) ([]model.RentTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.users.ByID(ctx, userID); err != nil {
		return nil, makeErr(ErrUserNotFound)
	}
	return s.ledger.ByUser(userID), nil
}

// sweep runs before every user-facing operation so reads never see an
// expired temporary loan still on the shelf.
func (s *service) sweep(ctx context.Context) []ExpiryNotice {
	removed := s.cat.SweepExpired(s.now())
	if len(removed) == 0 {
		return nil
	}

	notices := make([]ExpiryNotice, 0, len(removed))
	for _, b := range removed {
		s.ledger.Release(b.ISBN)
		notices = append(notices, ExpiryNotice{
			Title:           b.Title,
			DonorUserID:     b.DonorUserID,
			ReturnedToDonor: true,
		})
		s.log.Info("temporary loan expired", "title", b.Title, "isbn", b.ISBN)
	}
	s.persist(ctx)
	return notices
}

// persist saves the catalog snapshot. On failure the in-memory state
// stays authoritative; the caller learns durability is at risk through
// the receipt's Persisted flag.
func (s *service) persist(ctx context.Context) bool {
	if err := s.store.Save(ctx, s.cat.Books()); err != nil {
		s.log.Warn("book save failed, continuing in-memory", "err", err)
		return false
	}
	return true
}
