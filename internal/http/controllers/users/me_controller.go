package users

import (
	"context"
	"net/http"

	httpx "github.com/dropDatabas3/placebook/internal/http"
	dto "github.com/dropDatabas3/placebook/internal/http/dto/users"
	"github.com/dropDatabas3/placebook/internal/store/core"
)

// AccountService es lo que el controller necesita del contenedor.
type AccountService interface {
	Profile(ctx context.Context, accountID string) (*core.Account, error)
	DeleteAccount(ctx context.Context, accountID string) error
}

// MeController maneja GET y DELETE sobre /v1/usr.
type MeController struct {
	service AccountService
}

func NewMeController(service AccountService) *MeController {
	return &MeController{service: service}
}

func (c *MeController) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := httpx.SessionFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing_token", "")
		return
	}

	acc, err := c.service.Profile(r.Context(), sess.Sub)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.FromAccount(acc))
}

// Delete borra la cuenta y todo lo que posee. Repetir el DELETE con el
// mismo token da 404: la cuenta ya no existe.
func (c *MeController) Delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := httpx.SessionFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing_token", "")
		return
	}

	if err := c.service.DeleteAccount(r.Context(), sess.Sub); err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
