package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dropDatabas3/placebook/internal/cache"
	httpx "github.com/dropDatabas3/placebook/internal/http"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadyzController responde 200 sólo si la base (y el cache, si hay)
// contestan a tiempo.
type ReadyzController struct {
	store Pinger
	cache cache.Client
}

func NewReadyzController(store Pinger, cacheClient cache.Client) *ReadyzController {
	return &ReadyzController{store: store, cache: cacheClient}
}

func (c *ReadyzController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := c.store.Ping(ctx); err != nil {
		httpx.WriteError(w, http.StatusServiceUnavailable, "db_unavailable", "")
		return
	}
	if c.cache != nil {
		if err := c.cache.Ping(ctx); err != nil {
			httpx.WriteError(w, http.StatusServiceUnavailable, "cache_unavailable", "")
			return
		}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
