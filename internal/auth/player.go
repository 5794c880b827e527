package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const playerIssuer = "cashbot"

// PlayerTokens mints and checks per-player API tokens. A player token
// carries the Discord user id as its subject, so its holder can only act
// as that user.
type PlayerTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewPlayerTokens(secret string, ttl time.Duration) *PlayerTokens {
	return &PlayerTokens{secret: []byte(strings.TrimSpace(secret)), ttl: ttl, now: time.Now}
}

// Enabled is false without a signing secret.
func (p *PlayerTokens) Enabled() bool {
	return p != nil && len(p.secret) > 0
}

func (p *PlayerTokens) Issue(userID string) (string, time.Time, error) {
	if !p.Enabled() {
		return "", time.Time{}, errors.New("player tokens disabled: no API token configured")
	}
	id, err := UserID(userID)
	if err != nil {
		return "", time.Time{}, err
	}
	now := p.now()
	exp := now.Add(p.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    playerIssuer,
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign player token: %w", err)
	}
	return signed, exp, nil
}

// Subject returns the user id a valid player token was issued to.
func (p *PlayerTokens) Subject(token string) (string, error) {
	if !p.Enabled() {
		return "", ErrInvalidToken
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(playerIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return UserID(claims.Subject)
}
