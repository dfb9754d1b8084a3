package app

import (
	"context"
	"time"

	"github.com/dropDatabas3/placebook/internal/store/core"
)

// LoginResult es lo que devuelve el callback de login.
type LoginResult struct {
	Account *core.Account
	Token   string
	Expires time.Time
}

// Login completa el flow de authorization code: canjea el code, trae el
// perfil del provider, lo resuelve a una cuenta y emite el token de sesión.
// codeVerifier es passthrough PKCE, puede ir vacío.
func (c *Container) Login(ctx context.Context, provider, code, codeVerifier string) (*LoginResult, error) {
	accessToken, err := c.OAuth.ExchangeCode(ctx, provider, code, codeVerifier)
	if err != nil {
		return nil, err
	}
	prof, err := c.OAuth.FetchProfile(ctx, provider, accessToken)
	if err != nil {
		return nil, err
	}

	acc, err := c.Accounts.UpsertByIdentity(ctx, core.IdentityProfile{
		Provider:       provider,
		ProviderUserID: prof.Subject,
		Email:          prof.Email,
		Name:           prof.Name,
		AvatarURL:      prof.AvatarURL,
	})
	if err != nil {
		return nil, err
	}

	// El perfil pudo cambiar con este login; tirar lo cacheado.
	c.invalidateProfile(ctx, acc.ID)

	token, exp, err := c.Issuer.Issue(acc.ID, acc.Email, acc.Name)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Account: acc, Token: token, Expires: exp}, nil
}
