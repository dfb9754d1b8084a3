// Package jwt emite y valida los tokens de sesión del servicio (HS256).
package jwt

import (
	"errors"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid_jwt")
	ErrExpired      = errors.New("expired")
)

// Session son las claims que viajan en el token de sesión.
// Email y Name pueden ser nil si el provider no los entregó.
type Session struct {
	Sub   string
	Email *string
	Name  *string
}

// Issuer firma tokens de sesión con un secreto compartido.
type Issuer struct {
	Secret    []byte
	AccessTTL time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{Secret: []byte(secret), AccessTTL: ttl}
}

// Issue emite un token para la cuenta. sub es el account id.
func (i *Issuer) Issue(sub string, email, name *string) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(i.AccessTTL)

	claims := jwtv5.MapClaims{
		"sub": sub,
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}
	if email != nil {
		claims["email"] = *email
	}
	if name != nil {
		claims["name"] = *name
	}

	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := tk.SignedString(i.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse valida firma (HS256) y exp con una pequeña tolerancia.
func (i *Issuer) Parse(token string) (*Session, error) {
	tok, err := jwtv5.Parse(token,
		func(t *jwtv5.Token) (any, error) { return i.Secret, nil },
		jwtv5.WithValidMethods([]string{"HS256"}),
		jwtv5.WithLeeway(30*time.Second),
	)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalidToken
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidToken
	}

	s := &Session{Sub: sub}
	if v, ok := claims["email"].(string); ok && v != "" {
		s.Email = &v
	}
	if v, ok := claims["name"].(string); ok && v != "" {
		s.Name = &v
	}
	return s, nil
}

// FromBearer extrae el token de un header "Authorization: Bearer <jwt>".
func FromBearer(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	return tok, tok != ""
}
