package httpapi

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dreamware/petsclaws/internal/identity"
	"github.com/dreamware/petsclaws/internal/storefront"
)

// Token roles.
const (
	RoleUser  = "user"
	RoleGuest = "guest"
)

// Claims are carried by every bearer token. Subject is the user id for
// RoleUser and the guest id for RoleGuest.
type Claims struct {
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Session returns the identity of a user token.
func (c *Claims) Session() identity.Session {
	return identity.Session{UserID: c.Subject, Email: c.Email, Name: c.Name}
}

// Shopper returns the cart owner the token speaks for.
func (c *Claims) Shopper() storefront.Shopper {
	if c.Role == RoleGuest {
		return storefront.GuestShopper(c.Subject)
	}
	return storefront.UserShopper(c.Session())
}

// Tokens issues and verifies HS256 bearer tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens creates a token issuer signing with secret.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issued is a signed token and its expiry.
type Issued struct {
	ExpiresAt time.Time `json:"expiresAt"`
	Token     string    `json:"token"`
}

func (t *Tokens) sign(c Claims) (Issued, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(exp)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
	if err != nil {
		return Issued{}, fmt.Errorf("sign token: %w", err)
	}
	return Issued{Token: signed, ExpiresAt: exp}, nil
}

// ForUser issues a user token for sess.
func (t *Tokens) ForUser(sess identity.Session) (Issued, error) {
	return t.sign(Claims{
		Role:             RoleUser,
		Email:            sess.Email,
		Name:             sess.Name,
		RegisteredClaims: jwt.RegisteredClaims{Subject: sess.UserID},
	})
}

// ForGuest issues a token for a fresh guest id and returns both.
func (t *Tokens) ForGuest() (string, Issued, error) {
	guestID := "guest_" + uuid.NewString()
	issued, err := t.sign(Claims{
		Role:             RoleGuest,
		RegisteredClaims: jwt.RegisteredClaims{Subject: guestID},
	})
	return guestID, issued, err
}

// ErrInvalidToken is wrapped by Parse failures.
var ErrInvalidToken = errors.New("invalid or expired token")

// Parse verifies signature, algorithm and expiry.
func (t *Tokens) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || (claims.Role != RoleUser && claims.Role != RoleGuest) {
		return nil, fmt.Errorf("%w: missing subject or role", ErrInvalidToken)
	}
	return claims, nil
}
