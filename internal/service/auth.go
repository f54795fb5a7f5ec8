package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ilpslab/authhub/internal/auth"
	"github.com/ilpslab/authhub/internal/domain/user"
	"github.com/ilpslab/authhub/internal/security"
	"github.com/jackc/pgx/v5"
)

var (
	// Identification and authentication failures stay distinguishable on
	// the login path; the authorize path collapses its two failure causes.
	ErrIdentificationFailed = errors.New("user identification failed")
	ErrAuthenticationFailed = errors.New("user authentication failed")
	ErrAccountUnavailable   = errors.New("account disabled or does not exist")
)

type UserStore interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	CreateTx(ctx context.Context, tx pgx.Tx, name, email string) (user.User, error)
	GetByName(ctx context.Context, name string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
}

type CredentialStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, userID, hash string) error
	GetByUserID(ctx context.Context, userID string) (string, error)
}

type TokenManager interface {
	Issue(subject string) (string, error)
	Verify(tokenStr string) (*auth.Claims, error)
}

// Token is the login result handed to the transport layer.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AuthService composes the credential store, hasher and token manager
// into the register, authenticate and authorize use cases.
type AuthService struct {
	users       UserStore
	credentials CredentialStore
	tokens      TokenManager

	hashPassword func(password string) (string, error)
}

func NewAuthService(users UserStore, credentials CredentialStore, tokens TokenManager) *AuthService {
	return &AuthService{
		users:        users,
		credentials:  credentials,
		tokens:       tokens,
		hashPassword: security.HashPassword,
	}
}

// Register validates the input, then creates the user row and its
// credential row inside one transaction. A name/email collision surfaces
// as user.ErrAlreadyExists with no partial state left behind.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (user.User, error) {
	if err := ValidateRegistration(name, email, password); err != nil {
		return user.User{}, err
	}

	// bcrypt is deliberately slow; finish it before the transaction opens
	hash, err := s.hashPassword(password)

	if err != nil {
		return user.User{}, err
	}

	tx, err := s.users.BeginTx(ctx)

	if err != nil {
		return user.User{}, err
	}

	// rollback is a no-op after a successful commit
	defer func() { _ = tx.Rollback(ctx) }()

	u, err := s.users.CreateTx(ctx, tx, name, email)

	if err != nil {
		return user.User{}, err
	}

	err = s.credentials.CreateTx(ctx, tx, u.ID, hash)

	if err != nil {
		return user.User{}, err
	}

	err = tx.Commit(ctx)

	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

// Authenticate resolves the user by name, checks the password against the
// stored hash and issues a bearer token with the user id as subject.
func (s *AuthService) Authenticate(ctx context.Context, name, password string) (Token, error) {
	u, err := s.users.GetByName(ctx, name)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Token{}, ErrIdentificationFailed
		}

		return Token{}, err
	}

	hash, err := s.credentials.GetByUserID(ctx, u.ID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// a user without a credential row cannot authenticate
			return Token{}, ErrAuthenticationFailed
		}

		return Token{}, err
	}

	err = security.CheckPassword(hash, password)

	if err != nil {
		return Token{}, ErrAuthenticationFailed
	}

	accessToken, err := s.tokens.Issue(u.ID)

	if err != nil {
		return Token{}, err
	}

	return Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}, nil
}

// Authorize verifies a bearer token and resolves the live identity behind
// it. A disabled account and a missing account produce the same outcome
// on purpose.
func (s *AuthService) Authorize(ctx context.Context, tokenStr string) (user.Identity, error) {
	claims, err := s.tokens.Verify(tokenStr)

	if err != nil {
		return user.Identity{}, auth.ErrInvalidToken
	}

	// subjects are always generated uuids; anything else cannot match a row
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return user.Identity{}, ErrAccountUnavailable
	}

	u, err := s.users.GetByID(ctx, claims.Subject)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.Identity{}, ErrAccountUnavailable
		}

		return user.Identity{}, err
	}

	if u.IsDisabled {
		return user.Identity{}, ErrAccountUnavailable
	}

	return user.Identity{
		ID:      u.ID,
		Name:    u.Name,
		IsAdmin: u.IsAdmin,
	}, nil
}
