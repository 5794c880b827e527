package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingUser  = errors.New("missing user id")
)

// TokenVerifier checks API callers. The shared service token lets trusted
// frontends such as the bot act for the user they name; a player token
// pins the caller to its subject.
type TokenVerifier struct {
	token   []byte
	players *PlayerTokens
}

func NewTokenVerifier(token string) *TokenVerifier {
	token = strings.TrimSpace(token)
	return &TokenVerifier{token: []byte(token), players: NewPlayerTokens(token, 0)}
}

// Enabled is false when no token is configured; every caller is then
// accepted.
func (v *TokenVerifier) Enabled() bool {
	return v != nil && len(v.token) > 0
}

func (v *TokenVerifier) Verify(token string) error {
	if !v.Enabled() {
		return nil
	}
	if token == "" {
		return ErrMissingToken
	}
	if subtle.ConstantTimeCompare([]byte(token), v.token) != 1 {
		return ErrInvalidToken
	}
	return nil
}

// Authenticate resolves the acting user from the bearer token and the
// user header. A player token wins over the header, which must then be
// empty or agree with the token's subject.
func (v *TokenVerifier) Authenticate(bearer, header string) (string, error) {
	if v.Enabled() && bearer != "" && subtle.ConstantTimeCompare([]byte(bearer), v.token) != 1 {
		subject, err := v.players.Subject(bearer)
		if err != nil {
			return "", err
		}
		if h := strings.TrimSpace(header); h != "" && h != subject {
			return "", errors.New("user header does not match token")
		}
		return subject, nil
	}
	if err := v.Verify(bearer); err != nil {
		return "", err
	}
	return UserID(header)
}

// UserID validates the acting user named by the caller. Discord snowflakes
// and CLI handles are both plain tokens without whitespace.
func UserID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", ErrMissingUser
	}
	if strings.ContainsAny(id, " \t\r\n") || len(id) > 64 {
		return "", errors.New("malformed user id")
	}
	return id, nil
}
