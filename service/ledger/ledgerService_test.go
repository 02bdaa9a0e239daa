package ledger_test

import (
	"testing"
	"time"

	"github.com/KhaledKanawati/LibrarySystem/model"
	"github.com/KhaledKanawati/LibrarySystem/service/ledger"
)

func sampleTx(rawISBN string, userID int64, days int, price float64) model.RentTransaction {
	now := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	b := model.NewBook(rawISBN, "Title "+rawISBN, "Author", price)
	u := &model.User{ID: userID, Username: "u", Name: "U"}
	return model.NewRentTransaction(b, u, days, now.AddDate(0, 0, days), now)
}

func TestAppendAndHolder(t *testing.T) {
	l := ledger.New()
	l.Append(sampleTx("001", 7, 4, 2.5))

	// holder index is normalized, so any variant resolves
	for _, q := range []string{"1", "01", "001"} {
		id, ok := l.HolderOf(q)
		if !ok || id != 7 {
			t.Fatalf("HolderOf(%q) = %d,%v; want 7,true", q, id, ok)
		}
	}

	l.Release("01")
	if _, ok := l.HolderOf("001"); ok {
		t.Fatal("holder not cleared after release")
	}
	if len(l.All()) != 1 {
		t.Fatal("history must survive release")
	}
}

func TestTotalCostFrozen(t *testing.T) {
	tx := sampleTx("9", 3, 4, 2.5)
	if tx.TotalCost != 10 {
		t.Fatalf("TotalCost = %v; want 10", tx.TotalCost)
	}
}

func TestByUser(t *testing.T) {
	l := ledger.New()
	l.Append(sampleTx("1", 7, 2, 1))
	l.Append(sampleTx("2", 8, 2, 1))
	l.Append(sampleTx("3", 7, 5, 1))

	mine := l.ByUser(7)
	if len(mine) != 2 {
		t.Fatalf("ByUser(7) returned %d entries; want 2", len(mine))
	}
	if mine[0].ISBN != "1" || mine[1].ISBN != "3" {
		t.Fatalf("ByUser(7) order wrong: %v", mine)
	}
	if got := l.ByUser(99); len(got) != 0 {
		t.Fatalf("ByUser(99) returned %d entries; want 0", len(got))
	}
}
