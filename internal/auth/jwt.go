package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is the only verification failure this package reports.
// Signature, expiry, issuer and structural problems are deliberately
// indistinguishable so a caller cannot be used as a validation oracle.
var ErrInvalidToken = errors.New("access token is invalid")

// expiryLeeway absorbs small clock skew between issuer and verifier.
const expiryLeeway = 2 * time.Second

type Claims struct {
	jwt.RegisteredClaims
}

// Manager issues and verifies the service's bearer tokens. It is
// stateless; one instance is shared by all requests.
type Manager struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	issuer string
	ttl    time.Duration
}

// NewManager builds a token manager for the given symmetric secret and
// HMAC-SHA algorithm name (HS256, HS384 or HS512). The algorithm is
// configuration so that weakening it stays an explicit operational choice.
func NewManager(secret, algorithm, issuer string, ttl time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("signing secret must not be empty")
	}

	method, err := hmacMethod(algorithm)

	if err != nil {
		return nil, err
	}

	return &Manager{
		secret: []byte(secret),
		method: method,
		issuer: issuer,
		ttl:    ttl,
	}, nil
}

func hmacMethod(algorithm string) (*jwt.SigningMethodHMAC, error) {
	switch algorithm {
	case "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
}

// Issue signs an access token asserting ownership of subject. The expiry
// is issued-at plus the configured lifetime.
func (m *Manager) Issue(subject string) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(m.method, claims)

	return token.SignedString(m.secret)
}

// Verify parses and validates a token string and returns its claims.
// Every rejection — bad signature, wrong or missing issuer, expiry beyond
// leeway, absent sub/iat/exp, malformed structure, algorithm mismatch —
// comes back as ErrInvalidToken.
func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		// Pin the exact configured method. Accepting the whole HMAC
		// family would reopen the algorithm confusion hole.
		if t.Method.Alg() != m.method.Alg() {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	},
		jwt.WithLeeway(expiryLeeway),
		jwt.WithIssuer(m.issuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	// jwt.WithIssuer and jwt.WithExpirationRequired cover iss/exp; sub and
	// iat presence must be enforced by hand.
	if claims.Subject == "" || claims.IssuedAt == nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
