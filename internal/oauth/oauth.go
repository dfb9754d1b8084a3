// Package oauth resuelve authorization codes de providers externos a
// perfiles de usuario. El registry es inmutable después del arranque:
// los providers salen de la configuración y no se pueden mutar en runtime.
package oauth

import (
	"errors"
	"fmt"
)

const (
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserinfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
)

var ErrUnknownProvider = errors.New("oauth: unknown provider")

// Provider es la configuración de un provider OAuth.
// TokenURL/UserinfoURL vacíos usan los endpoints de Google.
type Provider struct {
	Name         string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	TokenURL     string
	UserinfoURL  string
}

// Profile es lo que el provider devuelve del usuario autenticado.
// Los opcionales en nil significan "el provider no lo entregó".
type Profile struct {
	Subject   string
	Email     *string
	Name      *string
	AvatarURL *string
}

// Registry mapea nombre de provider → configuración. Solo lectura.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry valida y congela la lista de providers.
func NewRegistry(providers []Provider) (*Registry, error) {
	m := make(map[string]Provider, len(providers))
	for _, p := range providers {
		if p.Name == "" || p.ClientID == "" {
			return nil, fmt.Errorf("oauth: provider %q incomplete", p.Name)
		}
		if p.TokenURL == "" {
			p.TokenURL = googleTokenURL
		}
		if p.UserinfoURL == "" {
			p.UserinfoURL = googleUserinfoURL
		}
		if _, dup := m[p.Name]; dup {
			return nil, fmt.Errorf("oauth: provider %q duplicated", p.Name)
		}
		m[p.Name] = p
	}
	return &Registry{providers: m}, nil
}

// Lookup devuelve la configuración del provider o ErrUnknownProvider.
func (r *Registry) Lookup(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return Provider{}, ErrUnknownProvider
	}
	return p, nil
}

// Names lista los providers registrados (para logs/health).
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.providers))
	for name := range r.providers {
		out = append(out, name)
	}
	return out
}
