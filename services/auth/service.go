// Package auth resolves credentials and bearer tokens into capability-checked
// principals. It composes the record store (raw principal records), the type
// resolver (concrete variants) and the token manager (signed expiry-bounded
// tokens) into a layered guard chain.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"streamwave/internal/store"
	"streamwave/models"
)

// Service owns credential verification and principal management for one
// users store.
type Service struct {
	users      *store.Store
	tokens     *TokenManager
	bcryptCost int
}

// NewService wires the users store and token manager together. bcryptCost <=
// 0 selects the bcrypt default.
func NewService(users *store.Store, tokens *TokenManager, bcryptCost int) *Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{users: users, tokens: tokens, bcryptCost: bcryptCost}
}

// HashPassword produces a salted slow hash of the plaintext. The plaintext is
// never stored or logged.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plaintext matches the stored hash.
func (s *Service) VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GetUser resolves a principal by username. The users store is keyed by id,
// so this is a linear scan over the collection.
func (s *Service) GetUser(username string) (models.Principal, error) {
	for _, rec := range s.users.GetAll() {
		if name, _ := rec["username"].(string); name == username {
			return models.ResolveUser(rec)
		}
	}
	return nil, ErrUserNotFound
}

// GetUserByID resolves a principal by its identifier.
func (s *Service) GetUserByID(id int) (models.Principal, error) {
	rec, ok := s.users.GetByID(id)
	if !ok {
		return nil, ErrUserNotFound
	}
	return models.ResolveUser(rec)
}

// Authenticate verifies a username/password pair. Unknown usernames and
// wrong passwords are indistinguishable: both fail with
// ErrInvalidCredentials.
func (s *Service) Authenticate(username, password string) (models.Principal, error) {
	user, err := s.GetUser(username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.VerifyPassword(password, user.Account().HashedPassword) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and, on success, issues a bearer token with the
// configured TTL embedding the username as subject.
func (s *Service) Login(username, password string) (Token, error) {
	user, err := s.Authenticate(username, password)
	if err != nil {
		return Token{}, err
	}
	access, err := s.tokens.Issue(user.Account().Username)
	if err != nil {
		return Token{}, err
	}
	return Token{AccessToken: access, TokenType: "bearer"}, nil
}

// Register creates a RegisteredUser with a fresh id. Username uniqueness is
// enforced here, before insertion, because the store itself does not check.
func (s *Service) Register(username, password, fullName, email string) (models.Principal, error) {
	if _, err := s.GetUser(username); err == nil {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateUsername, username)
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.RegisteredUser{
		User: models.User{
			ID:       s.users.NextID(),
			Username: username,
			FullName: fullName,
			Email:    email,
		},
		HashedPassword: hash,
	}
	if _, err := s.users.Add(user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser stores a principal of any variant with the given password,
// assigning a fresh id. Capability checks (admin only) belong to the caller's
// guard; this method only enforces username uniqueness.
func (s *Service) CreateUser(p models.Principal, password string) (models.Principal, error) {
	account := p.Account()
	if _, err := s.GetUser(account.Username); err == nil {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateUsername, account.Username)
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}
	account.ID = s.users.NextID()
	account.HashedPassword = hash
	if _, err := s.users.Add(p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateUser shallow-merges fields into the stored principal record and
// returns the resolved result.
func (s *Service) UpdateUser(id int, fields map[string]any) (models.Principal, error) {
	rec, ok, err := s.users.Update(id, fields)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUserNotFound
	}
	return models.ResolveUser(rec)
}

// DeleteUser removes a principal. It reports whether a removal occurred.
func (s *Service) DeleteUser(id int) (bool, error) {
	return s.users.Delete(id)
}

// SetDisabled flips the disabled flag on a principal.
func (s *Service) SetDisabled(id int, disabled bool) (models.Principal, error) {
	return s.UpdateUser(id, map[string]any{"disabled": disabled})
}

// SetPremium flips the premium flag on a principal.
func (s *Service) SetPremium(id int, premium bool) (models.Principal, error) {
	return s.UpdateUser(id, map[string]any{"is_premium": premium})
}
