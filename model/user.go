package model

import "github.com/KhaledKanawati/LibrarySystem/util/isbn"

// User is a logged-in library member. HeldBooks is session state owned
// by the lending workflow; it is not persisted with the user record.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`

	HeldBooks []*Book `json:"-"`
}

func (u *User) AddBook(b *Book) {
	u.HeldBooks = append(u.HeldBooks, b)
}

// RemoveBook drops the held book matching the given ISBN, if present.
func (u *User) RemoveBook(rawISBN string) {
	for i, b := range u.HeldBooks {
		if isbn.Equal(b.ISBN, rawISBN) {
			u.HeldBooks = append(u.HeldBooks[:i], u.HeldBooks[i+1:]...)
			return
		}
	}
}

// Holds reports whether the user currently has the book with this ISBN.
func (u *User) Holds(rawISBN string) bool {
	for _, b := range u.HeldBooks {
		if isbn.Equal(b.ISBN, rawISBN) {
			return true
		}
	}
	return false
}

// Credential is the persisted user-directory record. It only ever goes
// to the local data file, never out over HTTP.
type Credential struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	Name         string `json:"name"`
}

// RegisterReq represents user registration payload
// swagger:model RegisterReq
type RegisterReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
}

// LoginReq represents login payload
// swagger:model LoginReq
type LoginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// DeleteAccountReq confirms account deletion with the password.
// swagger:model DeleteAccountReq
type DeleteAccountReq struct {
	Password string `json:"password" validate:"required"`
}
