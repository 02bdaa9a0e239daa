// Package ledger keeps the append-only rental history plus the
// one-directional ISBN -> current-holder index, so books never need a
// back-reference to their holder.
package ledger

import (
	"github.com/KhaledKanawati/LibrarySystem/model"
	"github.com/KhaledKanawati/LibrarySystem/util/isbn"
)

type Ledger struct {
	entries []model.RentTransaction
	holders map[string]int64 // normalized ISBN -> user ID
}

func New() *Ledger {
	return &Ledger{holders: make(map[string]int64)}
}

// Append records a rental and marks the user as the book's holder.
// Entries are never mutated or removed; they are the audit history.
func (l *Ledger) Append(tx model.RentTransaction) {
	l.entries = append(l.entries, tx)
	l.holders[isbn.Normalize(tx.ISBN)] = tx.UserID
}

// HolderOf returns who currently holds the book, if anyone.
func (l *Ledger) HolderOf(rawISBN string) (int64, bool) {
	id, ok := l.holders[isbn.Normalize(rawISBN)]
	return id, ok
}

// Release clears the holder on return. The transaction history stays.
func (l *Ledger) Release(rawISBN string) {
	delete(l.holders, isbn.Normalize(rawISBN))
}

// ByUser returns the user's rental history, oldest first.
func (l *Ledger) ByUser(userID int64) []model.RentTransaction {
	var out []model.RentTransaction
	for _, tx := range l.entries {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out
}

func (l *Ledger) All() []model.RentTransaction {
	out := make([]model.RentTransaction, len(l.entries))
	copy(out, l.entries)
	return out
}
