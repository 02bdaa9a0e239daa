package lending

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KhaledKanawati/LibrarySystem/model"
	"github.com/KhaledKanawati/LibrarySystem/service/catalog"
	"github.com/KhaledKanawati/LibrarySystem/service/ledger"
)

type usersMock struct {
	byID map[int64]*model.User
}

func (m *usersMock) ByID(ctx context.Context, id int64) (*model.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, errors.New("no such user")
}

type storeMock struct {
	saveFn func(ctx context.Context, books []*model.Book) error
	saves  int
}

func (m *storeMock) Save(ctx context.Context, books []*model.Book) error {
	m.saves++
	if m.saveFn == nil {
		return nil
	}
	return m.saveFn(ctx, books)
}

type fixture struct {
	svc    *service
	cat    *catalog.Catalog
	led    *ledger.Ledger
	users  *usersMock
	store  *storeMock
	reader *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	reader := &model.User{ID: 7, Username: "reader", Name: "Reader"}
	f := &fixture{
		cat:    catalog.New(),
		led:    ledger.New(),
		users:  &usersMock{byID: map[int64]*model.User{7: reader}},
		store:  &storeMock{},
		reader: reader,
	}
	f.svc = New(f.cat, f.led, f.users, f.store, slog.Default()).(*service)
	f.svc.now = func() time.Time {
		return time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	}
	return f
}

func (f *fixture) setToday(t time.Time) {
	f.svc.now = func() time.Time { return t }
}

func ctxb() context.Context { return context.Background() }

func TestRentAndReturn_OnTime(t *testing.T) {
	f := newFixture(t)
	_ = f.cat.Add(model.NewBook("1", "Dune", "Frank Herbert", 2.5))

	rcp, err := f.svc.Rent(ctxb(), "1", 7, 4)
	if err != nil {
		t.Fatalf("rent: %v", err)
	}
	if rcp.Transaction.TotalCost != 10 {
		t.Errorf("TotalCost = %v; want 10", rcp.Transaction.TotalCost)
	}
	b, _ := f.cat.FindByISBN("1")
	if b.Available || b.RentalDueDate == nil {
		t.Fatal("book must be unavailable with a due date after rent")
	}
	if !f.reader.Holds("1") {
		t.Fatal("renter must hold the book")
	}
	if holder, ok := f.led.HolderOf("1"); !ok || holder != 7 {
		t.Fatalf("ledger holder = %d,%v; want 7,true", holder, ok)
	}

	ret, err := f.svc.Return(ctxb(), "1", 7)
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if ret.Outcome != OutcomeReturned {
		t.Fatalf("outcome = %q; want RETURNED", ret.Outcome)
	}
	if ret.LateFee != 0 {
		t.Errorf("on-time return charged %v", ret.LateFee)
	}
	if !b.Available || b.RentalDueDate != nil || b.BorrowedAt != nil {
		t.Fatal("return must restore availability and clear borrow state")
	}
	if f.reader.Holds("1") {
		t.Fatal("return must clear the user's held set")
	}
}

func TestReturn_LateFee(t *testing.T) {
	f := newFixture(t)
	_ = f.cat.Add(model.NewBook("1", "Dune", "Frank Herbert", 2.5))

	if _, err := f.svc.Rent(ctxb(), "1", 7, 4); err != nil {
		t.Fatal(err)
	}
	// due 2025-06-05; return 3 days after => 3 * 2.50 * 0.5 = 3.75
	f.setToday(time.Date(2025, time.June, 8, 9, 0, 0, 0, time.UTC))

	ret, err := f.svc.Return(ctxb(), "1", 7)
	if err != nil {
		t.Fatal(err)
	}
	if ret.DaysLate != 3 {
		t.Errorf("DaysLate = %d; want 3", ret.DaysLate)
	}
	if math.Abs(ret.LateFee-3.75) > 1e-9 {
		t.Errorf("LateFee = %v; want 3.75", ret.LateFee)
	}
}

func TestRent_SecondRenterRejected(t *testing.T) {
	f := newFixture(t)
	other := &model.User{ID: 8, Username: "other", Name: "Other"}
	f.users.byID[8] = other
	_ = f.cat.Add(model.NewBook("1", "Dune", "Frank Herbert", 2.5))

	if _, err := f.svc.Rent(ctxb(), "1", 7, 4); err != nil {
		t.Fatal(err)
	}
	_, err := f.svc.Rent(ctxb(), "1", 8, 2)
	if Code(err) != ErrNotAvailable {
		t.Fatalf("second rent: got %v; want NOT_AVAILABLE", err)
	}
}

func TestRent_ConcurrentSingleCopy(t *testing.T) {
	f := newFixture(t)
	_ = f.cat.Add(model.NewBook("1", "Dune", "Frank Herbert", 2.5))

	const renters = 8
	for id := int64(100); id < 100+renters; id++ {
		f.users.byID[id] = &model.User{ID: id, Username: "u", Name: "U"}
	}

	var wg sync.WaitGroup
	var won, lost atomic.Int64
	for id := int64(100); id < 100+renters; id++ {
		wg.Add(1)
		go func(uid int64) {
			defer wg.Done()
			_, err := f.svc.Rent(ctxb(), "1", uid, 4)
			switch {
			case err == nil:
				won.Add(1)
			case Code(err) == ErrNotAvailable:
				lost.Add(1)
			}
		}(id)
	}
	wg.Wait()

	// exactly one renter may acquire the single copy
	if won.Load() != 1 || lost.Load() != renters-1 {
		t.Fatalf("won=%d lost=%d; want 1 and %d", won.Load(), lost.Load(), renters-1)
	}
	holder, ok := f.led.HolderOf("1")
	if !ok {
		t.Fatal("no holder recorded")
	}
	winner := f.users.byID[holder]
	if winner == nil || !winner.Holds("1") {
		t.Fatalf("ledger holder %d does not hold the book", holder)
	}
}

func TestRent_Validation(t *testing.T) {
	f := newFixture(t)
	_ = f.cat.Add(model.NewBook("1", "Dune", "Frank Herbert", 2.5))

	if _, err := f.svc.Rent(ctxb(), "9", 7, 4); Code(err) != ErrBookNotFound {
		t.Errorf("unknown isbn: got %v", err)
	}
	if _, err := f.svc.Rent(ctxb(), "1", 99, 4); Code(err) != ErrUserNotFound {
		t.Errorf("unknown user: got %v", err)
	}
	if _, err := f.svc.Rent(ctxb(), "1", 7, 0); Code(err) != ErrInvalidDuration {
		t.Errorf("zero days: got %v", err)
	}
	if _, err := f.svc.Rent(ctxb(), "1", 7, -3); Code(err) != ErrInvalidDuration {
		t.Errorf("negative days: got %v", err)
	}
}

func TestAdopt(t *testing.T) {
	f := newFixture(t)
	_ = f.cat.Add(model.NewBook("4", "1984", "George Orwell", 0))
	_ = f.cat.Add(model.NewBook("1", "Dune", "Frank Herbert", 2.5))

	// priced books cannot be adopted
	if _, err := f.svc.Adopt(ctxb(), "1", 7); Code(err) != ErrNotAdoptable {
		t.Fatalf("priced adopt: got %v; want NOT_ADOPTABLE", err)
	}

	rcp, err := f.svc.Adopt(ctxb(), "004", 7)
	if err != nil {
		t.Fatalf("adopt: %v", err)
	}
	if rcp.Book.Title != "1984" {
		t.Fatalf("adopted %q", rcp.Book.Title)
	}
	if !f.reader.Holds("4") {
		t.Fatal("adopter must hold the book")
	}
	if f.cat.Exists("4") {
		t.Fatal("adopted book must leave the catalog")
	}

	// gone for good: a second adopt cannot find it
	if _, err := f.svc.Adopt(ctxb(), "4", 7); Code(err) != ErrBookNotFound {
		t.Fatalf("re-adopt: got %v; want BOOK_NOT_FOUND", err)
	}
}

func TestAdopt_BorrowedFreeBook(t *testing.T) {
	f := newFixture(t)
	free := model.NewBook("4", "1984", "George Orwell", 0)
	_ = f.cat.Add(free)
	now := time.Date(2025, time.May, 30, 0, 0, 0, 0, time.UTC)
	free.Borrow(now, now.AddDate(0, 0, 5))

	if _, err := f.svc.Adopt(ctxb(), "4", 7); Code(err) != ErrNotAvailable {
		t.Fatalf("borrowed adopt: got %v; want NOT_AVAILABLE", err)
	}
}

func TestReturn_SoftOutcomes(t *testing.T) {
	f := newFixture(t)
	other := &model.User{ID: 8, Username: "other", Name: "Other"}
	f.users.byID[8] = other
	_ = f.cat.Add(model.NewBook("1", "Dune", "Frank Herbert", 2.5))

	// holds nothing at all: soft no-op, not an error
	ret, err := f.svc.Return(ctxb(), "1", 7)
	if err != nil {
		t.Fatal(err)
	}
	if ret.Outcome != OutcomeNoBooksHeld {
		t.Fatalf("outcome = %q; want NO_BOOKS_HELD", ret.Outcome)
	}

	if _, err := f.svc.Rent(ctxb(), "1", 7, 4); err != nil {
		t.Fatal(err)
	}

	// unknown ISBN stays a hard error even while holding books
	if _, err := f.svc.Return(ctxb(), "9", 7); Code(err) != ErrBookNotFound {
		t.Fatalf("unknown isbn: got %v; want BOOK_NOT_FOUND", err)
	}

	// other user holds something else, tries to return this book
	_ = f.cat.Add(model.NewBook("2", "Emma", "Jane Austen", 1))
	if _, err := f.svc.Rent(ctxb(), "2", 8, 2); err != nil {
		t.Fatal(err)
	}
	ret, err = f.svc.Return(ctxb(), "1", 8)
	if err != nil {
		t.Fatal(err)
	}
	if ret.Outcome != OutcomeNotHeldByUser {
		t.Fatalf("outcome = %q; want NOT_HELD_BY_USER", ret.Outcome)
	}
}

func TestDonations(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.AcceptPermanentDonation(ctxb(), 7, "10", "Walden", "Thoreau", 1.5); err != nil {
		t.Fatalf("permanent donation: %v", err)
	}
	b, _ := f.cat.FindByISBN("10")
	if b.DonationType != model.DonationPermanent || b.LendUntil != nil {
		t.Fatalf("permanent donation metadata wrong: %+v", b)
	}

	// colliding ISBN, even as a variant
	if _, err := f.svc.AcceptPermanentDonation(ctxb(), 7, "010", "Other", "Other", 0); Code(err) != ErrDuplicateISBN {
		t.Fatalf("duplicate donation: got %v; want DUPLICATE_ISBN", err)
	}

	if _, err := f.svc.AcceptTemporaryLoan(ctxb(), 7, "11", "On Loan", "L", 2, 0); Code(err) != ErrInvalidDuration {
		t.Fatalf("zero months: got %v; want INVALID_DURATION", err)
	}

	rcp, err := f.svc.AcceptTemporaryLoan(ctxb(), 7, "11", "On Loan", "L", 2, 1)
	if err != nil {
		t.Fatalf("temporary loan: %v", err)
	}
	want := time.Date(2025, time.July, 1, 12, 0, 0, 0, time.UTC)
	if rcp.LendUntil == nil || !rcp.LendUntil.Equal(want) {
		t.Fatalf("LendUntil = %v; want %v", rcp.LendUntil, want)
	}
}

func TestProcessExpiredLoans(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.AcceptTemporaryLoan(ctxb(), 7, "11", "On Loan", "L", 2, 1); err != nil {
		t.Fatal(err)
	}
	_ = f.cat.Add(model.NewBook("1", "Dune", "Frank Herbert", 2.5))

	// one day past lend-until
	f.setToday(time.Date(2025, time.July, 2, 12, 0, 0, 0, time.UTC))

	notices, err := f.svc.ProcessExpiredLoans(ctxb())
	if err != nil {
		t.Fatal(err)
	}
	if len(notices) != 1 || notices[0].Title != "On Loan" || !notices[0].ReturnedToDonor {
		t.Fatalf("notices = %+v", notices)
	}
	if notices[0].DonorUserID == nil || *notices[0].DonorUserID != 7 {
		t.Fatalf("donor = %v; want 7", notices[0].DonorUserID)
	}

	// idempotent: a swept book cannot be swept again
	notices, err = f.svc.ProcessExpiredLoans(ctxb())
	if err != nil {
		t.Fatal(err)
	}
	if len(notices) != 0 {
		t.Fatalf("second sweep produced %+v", notices)
	}
	if f.cat.Len() != 1 {
		t.Fatalf("catalog has %d books; want 1", f.cat.Len())
	}
}

func TestListingSweepsFirst(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.AcceptTemporaryLoan(ctxb(), 7, "11", "On Loan", "L", 2, 1); err != nil {
		t.Fatal(err)
	}
	f.setToday(time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC))

	listing, err := f.svc.ListBooks(ctxb())
	if err != nil {
		t.Fatal(err)
	}
	if len(listing.Available) != 0 || len(listing.Borrowed) != 0 {
		t.Fatalf("expired loan still listed: %+v", listing)
	}
}

func TestPersistFailureSurfacesInReceipt(t *testing.T) {
	f := newFixture(t)
	f.store.saveFn = func(ctx context.Context, books []*model.Book) error {
		return errors.New("disk full")
	}
	_ = f.cat.Add(model.NewBook("1", "Dune", "Frank Herbert", 2.5))

	rcp, err := f.svc.Rent(ctxb(), "1", 7, 4)
	if err != nil {
		t.Fatalf("save failure must not fail the operation: %v", err)
	}
	if rcp.Persisted {
		t.Fatal("receipt must report the failed save")
	}
	// in-memory effect still applies
	b, _ := f.cat.FindByISBN("1")
	if b.Available {
		t.Fatal("rent must still take effect in memory")
	}
}
