package auth

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/KhaledKanawati/LibrarySystem/model"
	"github.com/KhaledKanawati/LibrarySystem/util/hash"
	jwtutil "github.com/KhaledKanawati/LibrarySystem/util/jwt"
)

var (
	ErrInvalidUsername   = errors.New("invalid username")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrInvalidCreds      = errors.New("invalid credentials")
	ErrUserNotFound      = errors.New("user not found")
)

// Usernames are letters, digits and underscores only. Matching is
// case-insensitive everywhere.
var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

type Repo interface {
	Save(ctx context.Context, recs []model.Credential) error
}

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, string, error)
	Delete(ctx context.Context, userID int64, password string) error
	Exists(ctx context.Context, username string) bool
	// ByID resolves a user with an active session; the lending workflow
	// uses it to attach held books.
	ByID(ctx context.Context, userID int64) (*model.User, error)
}

type service struct {
	repo   Repo
	secret string
	log    *slog.Logger

	// mu guards the maps and the ID counter; handlers run concurrently.
	mu     sync.Mutex
	byName map[string]model.Credential // lowercase username -> record
	active map[int64]*model.User       // session users, created on register/login
	nextID int64
}

// New builds the directory from the loaded credential snapshot.
func New(recs []model.Credential, repo Repo, secret string, log *slog.Logger) Service {
	s := &service{
		repo:   repo,
		secret: secret,
		log:    log,
		byName: make(map[string]model.Credential, len(recs)),
		active: make(map[int64]*model.User),
		nextID: 1,
	}
	for _, r := range recs {
		s.byName[strings.ToLower(r.Username)] = r
		if r.ID >= s.nextID {
			s.nextID = r.ID + 1
		}
	}
	return s
}

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !usernameRe.MatchString(req.Username) {
		return nil, "", ErrInvalidUsername
	}
	key := strings.ToLower(req.Username)
	if _, taken := s.byName[key]; taken {
		return nil, "", ErrDuplicateUsername
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	rec := model.Credential{
		ID:           s.nextID,
		Username:     req.Username,
		PasswordHash: hashed,
		Name:         req.Name,
	}
	s.nextID++
	s.byName[key] = rec
	s.persist(ctx)

	u := s.session(rec)
	token, err := jwtutil.Issue(s.secret, u.ID, "user", 24)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byName[strings.ToLower(req.Username)]
	if !ok || !hash.Check(rec.PasswordHash, req.Password) {
		return nil, "", ErrInvalidCreds
	}
	u := s.session(rec)
	token, err := jwtutil.Issue(s.secret, u.ID, "user", 24)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Delete removes the account after re-checking the password. Ends the
// session for that user by design.
func (s *service) Delete(ctx context.Context, userID int64, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, rec := range s.byName {
		if rec.ID == userID {
			if !hash.Check(rec.PasswordHash, password) {
				return ErrInvalidCreds
			}
			delete(s.byName, key)
			delete(s.active, userID)
			s.persist(ctx)
			return nil
		}
	}
	return ErrUserNotFound
}

func (s *service) Exists(ctx context.Context, username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.byName[strings.ToLower(username)]
	return ok
}

func (s *service) ByID(ctx context.Context, userID int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.active[userID]; ok {
		return u, nil
	}
	// A valid token can outlive a process restart; rebuild the session
	// from the directory record.
	for _, rec := range s.byName {
		if rec.ID == userID {
			return s.session(rec), nil
		}
	}
	return nil, ErrUserNotFound
}

// session returns the live user for a record, creating it on first use
// so held books accumulate on a single instance.
func (s *service) session(rec model.Credential) *model.User {
	if u, ok := s.active[rec.ID]; ok {
		return u
	}
	u := &model.User{ID: rec.ID, Username: rec.Username, Name: rec.Name}
	s.active[rec.ID] = u
	return u
}

// persist writes the directory snapshot. A failure leaves the in-memory
// directory authoritative and is reported, not swallowed.
func (s *service) persist(ctx context.Context) {
	recs := make([]model.Credential, 0, len(s.byName))
	for _, r := range s.byName {
		recs = append(recs, r)
	}
	if err := s.repo.Save(ctx, recs); err != nil && s.log != nil {
		s.log.Warn("user save failed, continuing in-memory", "err", err)
	}
}
