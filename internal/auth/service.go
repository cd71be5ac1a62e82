package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hzlou/assistant-platform/internal/store"
)

var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrWrongPassword     = errors.New("wrong password")
)

const usersCollection = "users"

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Service owns user records and bearer tokens. Users are snapshotted after
// every mutation; tokens are memory-resident only and expire lazily on verify.
type Service struct {
	mu     sync.Mutex
	users  map[string]*User
	tokens map[string]tokenEntry

	snap     *store.Snapshot
	log      *zap.Logger
	tokenTTL time.Duration
	now      func() time.Time
}

func NewService(snap *store.Snapshot, tokenTTL time.Duration, log *zap.Logger) *Service {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		users:    make(map[string]*User),
		tokens:   make(map[string]tokenEntry),
		snap:     snap,
		log:      log,
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
	snap.Load(usersCollection, &s.users)
	return s
}

// Register creates a new account and issues a token. Usernames are unique,
// matched case-sensitively.
func (s *Service) Register(username, password, nickname string) (*User, Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return nil, Token{}, ErrDuplicateUsername
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, Token{}, err
	}
	if nickname == "" {
		nickname = username
	}

	u := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Nickname:     nickname,
		CreatedAt:    s.now(),
	}
	s.users[u.ID] = u
	s.snap.Save(usersCollection, s.users)

	tok, err := s.issueTokenLocked(u.ID)
	if err != nil {
		return nil, Token{}, err
	}
	s.log.Info("user registered", zap.String("user_id", u.ID), zap.String("username", username))
	return safeCopy(u), tok, nil
}

// Login checks credentials and issues a fresh token. Prior tokens for the
// same user stay valid until their own expiry.
func (s *Service) Login(username, password string) (*User, Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username != username {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
			return nil, Token{}, ErrWrongPassword
		}
		tok, err := s.issueTokenLocked(u.ID)
		if err != nil {
			return nil, Token{}, err
		}
		return safeCopy(u), tok, nil
	}
	return nil, Token{}, ErrUserNotFound
}

// GenerateToken issues a fresh token for an existing user id.
func (s *Service) GenerateToken(userID string) (Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueTokenLocked(userID)
}

func (s *Service) issueTokenLocked(userID string) (Token, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return Token{}, err
	}
	tok := Token{
		Value:     hex.EncodeToString(raw),
		ExpiresAt: s.now().Add(s.tokenTTL),
	}
	s.tokens[tok.Value] = tokenEntry{UserID: userID, ExpiresAt: tok.ExpiresAt}
	return tok, nil
}

// VerifyToken resolves a bearer token to a user id. Expired tokens are
// evicted on lookup; tokens whose user no longer exists are rejected.
func (s *Service) VerifyToken(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tokens[token]
	if !ok {
		return "", false
	}
	if s.now().After(entry.ExpiresAt) {
		delete(s.tokens, token)
		return "", false
	}
	if _, ok := s.users[entry.UserID]; !ok {
		return "", false
	}
	return entry.UserID, true
}

// GetUser returns a copy of the user with the password hash stripped.
func (s *Service) GetUser(userID string) (*User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, false
	}
	return safeCopy(u), true
}

func safeCopy(u *User) *User {
	cp := *u
	cp.PasswordHash = ""
	return &cp
}
