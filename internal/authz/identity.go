package authz

import (
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/trainbooking/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const RoleAdmin = "admin"

type Identity struct {
	Subject string
	Role    string
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenParser verifies HS256 bearer tokens. With an empty secret every token is rejected.
type TokenParser struct {
	secret []byte
}

func NewTokenParser(secret string) *TokenParser {
	return &TokenParser{secret: []byte(secret)}
}

func (p *TokenParser) Parse(token string) (*Identity, error) {
	if len(p.secret) == 0 {
		return nil, fmt.Errorf("%w: bearer tokens are not accepted", domain.ErrUnauthorized)
	}

	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, errors.New("token has no subject"))
	}
	return &Identity{Subject: c.Subject, Role: c.Role}, nil
}

// Issue signs a token for subject. A zero ttl issues a token without expiry.
func (p *TokenParser) Issue(subject, role string, ttl time.Duration) (string, error) {
	c := claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subject,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	if ttl != 0 {
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(p.secret)
}
