package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/placebook/internal/app"
	httpx "github.com/dropDatabas3/placebook/internal/http"
	dto "github.com/dropDatabas3/placebook/internal/http/dto/auth"
	"github.com/dropDatabas3/placebook/internal/oauth"
	"github.com/dropDatabas3/placebook/internal/store/core"
)

// LoginService es lo que el controller necesita del contenedor.
type LoginService interface {
	Login(ctx context.Context, provider, code, codeVerifier string) (*app.LoginResult, error)
}

// CallbackController maneja POST /v1/auth/{provider}/callback.
type CallbackController struct {
	service LoginService
}

func NewCallbackController(service LoginService) *CallbackController {
	return &CallbackController{service: service}
}

func (c *CallbackController) Callback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	var req dto.CallbackRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "code is required")
		return
	}

	result, err := c.service.Login(r.Context(), provider, req.Code, req.CodeVerifier)
	if err != nil {
		switch {
		case errors.Is(err, oauth.ErrUnknownProvider):
			httpx.WriteError(w, http.StatusNotFound, "unknown_provider", "")
		case core.IsStorage(err), errors.Is(err, core.ErrInvalid):
			httpx.WriteDomainError(w, err)
		default:
			// El provider rechazó el code (vencido, reusado, mal verifier).
			rid := w.Header().Get("X-Request-ID")
			log.Printf(`{"level":"warn","msg":"oauth_exchange_failed","request_id":"%s","provider":"%s","err":"%v"}`, rid, provider, err)
			httpx.WriteError(w, http.StatusUnauthorized, "auth_failed", "")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, dto.CallbackResponse{
		Token:     result.Token,
		TokenType: "Bearer",
		ExpiresAt: result.Expires.Unix(),
		Account: dto.AccountPayload{
			ID:        result.Account.ID,
			Email:     result.Account.Email,
			Name:      result.Account.Name,
			AvatarURL: result.Account.AvatarURL,
		},
	})
}
