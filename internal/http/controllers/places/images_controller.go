package places

import (
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/placebook/internal/files"
	httpx "github.com/dropDatabas3/placebook/internal/http"
	"github.com/dropDatabas3/placebook/internal/store/core"
)

// ImagesController sirve los bytes de las imágenes.
type ImagesController struct {
	store core.PlaceStore
	files *files.Store
}

func NewImagesController(store core.PlaceStore, fs *files.Store) *ImagesController {
	return &ImagesController{store: store, files: fs}
}

// Get resuelve la fila (validando dueño) y sirve el archivo.
// Fila sin archivo en disco es 404: la limpieza best-effort pudo correr
// a medias, o el archivo se perdió; para el cliente es lo mismo.
func (c *ImagesController) Get(w http.ResponseWriter, r *http.Request) {
	accountID, ok := mustSession(w, r)
	if !ok {
		return
	}
	placeID := chi.URLParam(r, "placeID")
	imageID := chi.URLParam(r, "imageID")

	img, err := c.store.FindImageForAccount(r.Context(), accountID, placeID, imageID)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}

	f, err := c.files.Open(img.PlaceID, img.FileName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}
	defer f.Close()

	http.ServeContent(w, r, img.FileName, img.CreatedAt, f)
}
