package auth

// CallbackRequest es el body de POST /v1/auth/{provider}/callback.
// CodeVerifier es opcional (PKCE, flows mobile).
type CallbackRequest struct {
	Code         string `json:"code"`
	CodeVerifier string `json:"code_verifier,omitempty"`
}

type AccountPayload struct {
	ID        string  `json:"id"`
	Email     *string `json:"email,omitempty"`
	Name      *string `json:"name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

type CallbackResponse struct {
	Token     string         `json:"token"`
	TokenType string         `json:"token_type"`
	ExpiresAt int64          `json:"expires_at"`
	Account   AccountPayload `json:"account"`
}
