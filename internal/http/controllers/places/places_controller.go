package places

import (
	"context"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/placebook/internal/app"
	httpx "github.com/dropDatabas3/placebook/internal/http"
	dto "github.com/dropDatabas3/placebook/internal/http/dto/places"
	"github.com/dropDatabas3/placebook/internal/store/core"
)

// PlaceService son las operaciones de escritura que orquestan filas + archivos.
type PlaceService interface {
	CreatePlace(ctx context.Context, accountID string, in app.PlaceInput, uploads []app.Upload) (*core.Place, error)
	UpdatePlace(ctx context.Context, accountID, placeID string, up core.UpdatePlace, uploads []app.Upload, removeImageIDs []string) (*core.Place, error)
	DeletePlace(ctx context.Context, accountID, placeID string) error
}

type Limits struct {
	MaxBodyMB   int
	MaxImageMB  int
	MaxPerPlace int
}

// Controller maneja el CRUD de /v1/places.
type Controller struct {
	service PlaceService
	store   core.PlaceStore
	limits  Limits
}

func NewController(service PlaceService, store core.PlaceStore, limits Limits) *Controller {
	return &Controller{service: service, store: store, limits: limits}
}

func mustSession(w http.ResponseWriter, r *http.Request) (string, bool) {
	sess, ok := httpx.SessionFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing_token", "")
		return "", false
	}
	return sess.Sub, true
}

func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	accountID, ok := mustSession(w, r)
	if !ok {
		return
	}

	list, err := c.store.ListForAccount(r.Context(), accountID)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}

	out := make([]dto.PlaceResponse, 0, len(list))
	for i := range list {
		imgs, err := c.store.ListImagesForPlace(r.Context(), list[i].ID)
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		out = append(out, dto.FromPlace(&list[i], imgs))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	accountID, ok := mustSession(w, r)
	if !ok {
		return
	}
	placeID := chi.URLParam(r, "placeID")

	place, err := c.store.FindForAccount(r.Context(), accountID, placeID)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	imgs, err := c.store.ListImagesForPlace(r.Context(), place.ID)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.FromPlace(place, imgs))
}

func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	accountID, ok := mustSession(w, r)
	if !ok {
		return
	}

	form, uploads, ok := c.parseMultipart(w, r)
	if !ok {
		return
	}

	in := app.PlaceInput{
		Name:     strings.TrimSpace(form.Value("name")),
		Category: strings.TrimSpace(form.Value("category")),
		Location: strings.TrimSpace(form.Value("location")),
		Note:     form.Optional("note"),
	}
	if in.Name == "" || in.Category == "" || in.Location == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "name, category and location are required")
		return
	}

	place, err := c.service.CreatePlace(r.Context(), accountID, in, uploads)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	imgs, err := c.store.ListImagesForPlace(r.Context(), place.ID)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, dto.FromPlace(place, imgs))
}

func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	accountID, ok := mustSession(w, r)
	if !ok {
		return
	}
	placeID := chi.URLParam(r, "placeID")

	form, uploads, ok := c.parseMultipart(w, r)
	if !ok {
		return
	}

	up := core.UpdatePlace{
		Name:     form.Optional("name"),
		Category: form.Optional("category"),
		Location: form.Optional("location"),
		Note:     form.Optional("note"),
	}
	removeIDs := form.Values("remove_images")

	place, err := c.service.UpdatePlace(r.Context(), accountID, placeID, up, uploads, removeIDs)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	imgs, err := c.store.ListImagesForPlace(r.Context(), place.ID)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.FromPlace(place, imgs))
}

func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	accountID, ok := mustSession(w, r)
	if !ok {
		return
	}
	placeID := chi.URLParam(r, "placeID")

	if err := c.service.DeletePlace(r.Context(), accountID, placeID); err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ───────── multipart helpers ─────────

type formValues struct{ form *multipart.Form }

func (f formValues) Value(key string) string {
	vs := f.form.Value[key]
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

// Optional: nil si el campo no vino (distinto de venir vacío).
func (f formValues) Optional(key string) *string {
	vs, ok := f.form.Value[key]
	if !ok || len(vs) == 0 {
		return nil
	}
	return &vs[0]
}

func (f formValues) Values(key string) []string { return f.form.Value[key] }

// parseMultipart valida límites y arma los uploads. Los file parts van bajo
// "images"; los captions opcionales bajo "captions", pareados por índice.
func (c *Controller) parseMultipart(w http.ResponseWriter, r *http.Request) (formValues, []app.Upload, bool) {
	maxBody := int64(c.limits.MaxBodyMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	if err := r.ParseMultipartForm(maxBody); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_multipart", "")
		return formValues{}, nil, false
	}
	form := r.MultipartForm

	fileHeaders := form.File["images"]
	if len(fileHeaders) > c.limits.MaxPerPlace {
		httpx.WriteError(w, http.StatusBadRequest, "too_many_images", "")
		return formValues{}, nil, false
	}
	captions := form.Value["captions"]

	maxImage := int64(c.limits.MaxImageMB) << 20
	uploads := make([]app.Upload, 0, len(fileHeaders))
	for i, fh := range fileHeaders {
		if fh.Size > maxImage {
			httpx.WriteError(w, http.StatusRequestEntityTooLarge, "image_too_large", fh.Filename)
			return formValues{}, nil, false
		}
		name := filepath.Base(fh.Filename)
		if name == "" || name == "." || name == ".." {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_file_name", "")
			return formValues{}, nil, false
		}
		f, err := fh.Open()
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_multipart", "")
			return formValues{}, nil, false
		}
		up := app.Upload{FileName: name, Body: f}
		if i < len(captions) && captions[i] != "" {
			up.Caption = &captions[i]
		}
		uploads = append(uploads, up)
	}
	return formValues{form: form}, uploads, true
}
