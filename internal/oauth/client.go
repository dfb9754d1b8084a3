package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client habla con los endpoints del provider.
type Client struct {
	registry *Registry
	http     *http.Client
}

func NewClient(registry *Registry) *Client {
	return &Client{
		registry: registry,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
}

// ExchangeCode canjea el authorization code por un access token.
// codeVerifier va como PKCE passthrough si el cliente lo mandó (flows mobile).
func (c *Client) ExchangeCode(ctx context.Context, provider, code, codeVerifier string) (string, error) {
	p, err := c.registry.Lookup(provider)
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", p.ClientID)
	if p.ClientSecret != "" {
		form.Set("client_secret", p.ClientSecret)
	}
	if p.RedirectURL != "" {
		form.Set("redirect_uri", p.RedirectURL)
	}
	if codeVerifier != "" {
		form.Set("code_verifier", codeVerifier)
	}

	req, _ := http.NewRequestWithContext(ctx, "POST", p.TokenURL, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		var b struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&b)
		return "", fmt.Errorf("token http %d: %s %s", resp.StatusCode, b.Error, b.ErrorDescription)
	}
	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", err
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token response without access_token")
	}
	return tr.AccessToken, nil
}

type userinfoResponse struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// FetchProfile obtiene el userinfo con el access token.
func (c *Client) FetchProfile(ctx context.Context, provider, accessToken string) (*Profile, error) {
	p, err := c.registry.Lookup(provider)
	if err != nil {
		return nil, err
	}

	req, _ := http.NewRequestWithContext(ctx, "GET", p.UserinfoURL, nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("userinfo http %d", resp.StatusCode)
	}
	var ui userinfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&ui); err != nil {
		return nil, err
	}
	if ui.Sub == "" {
		return nil, fmt.Errorf("userinfo without sub")
	}

	prof := &Profile{Subject: ui.Sub}
	if ui.Email != "" {
		prof.Email = &ui.Email
	}
	if ui.Name != "" {
		prof.Name = &ui.Name
	}
	if ui.Picture != "" {
		prof.AvatarURL = &ui.Picture
	}
	return prof, nil
}
