package http

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/placebook/internal/jwt"
	"github.com/dropDatabas3/placebook/internal/rate"
)

// Routes agrupa los handlers ya construidos. El router no conoce los
// controllers; el wiring vive en cmd/service.
type Routes struct {
	AuthCallback stdhttp.HandlerFunc // POST /v1/auth/{provider}/callback

	MeGet    stdhttp.HandlerFunc // GET    /v1/usr
	MeDelete stdhttp.HandlerFunc // DELETE /v1/usr

	PlacesList   stdhttp.HandlerFunc // GET    /v1/places
	PlacesCreate stdhttp.HandlerFunc // POST   /v1/places
	PlaceGet     stdhttp.HandlerFunc // GET    /v1/places/{placeID}
	PlaceUpdate  stdhttp.HandlerFunc // PATCH  /v1/places/{placeID}
	PlaceDelete  stdhttp.HandlerFunc // DELETE /v1/places/{placeID}
	ImageGet     stdhttp.HandlerFunc // GET    /v1/places/{placeID}/images/{imageID}

	Readyz  stdhttp.HandlerFunc
	Metrics stdhttp.Handler
}

// RouterConfig son las dependencias transversales del router.
type RouterConfig struct {
	Issuer      *jwt.Issuer
	Limiter     rate.Limiter // nil desactiva rate limiting
	CORSOrigins []string
}

func NewRouter(routes Routes, cfg RouterConfig) stdhttp.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", routes.Readyz)
	if routes.Metrics != nil {
		r.Method(stdhttp.MethodGet, "/metrics", routes.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/{provider}/callback", routes.AuthCallback)

		// Todo lo demás exige sesión.
		r.Group(func(r chi.Router) {
			r.Use(func(next stdhttp.Handler) stdhttp.Handler {
				return WithAuth(next, cfg.Issuer)
			})

			r.Get("/usr", routes.MeGet)
			r.Delete("/usr", routes.MeDelete)

			r.Route("/places", func(r chi.Router) {
				r.Get("/", routes.PlacesList)
				r.Post("/", routes.PlacesCreate)
				r.Route("/{placeID}", func(r chi.Router) {
					r.Get("/", routes.PlaceGet)
					r.Patch("/", routes.PlaceUpdate)
					r.Delete("/", routes.PlaceDelete)
					r.Get("/images/{imageID}", routes.ImageGet)
				})
			})
		})
	})

	// Cadena exterior: recover siempre primero, metrics antes del logging
	// para no medir el costo del log.
	var h stdhttp.Handler = r
	h = WithRateLimit(h, cfg.Limiter)
	h = WithLogging(h)
	h = WithMetrics(h)
	h = WithCORS(h, cfg.CORSOrigins)
	h = WithRequestID(h)
	h = WithRecover(h)
	return h
}
