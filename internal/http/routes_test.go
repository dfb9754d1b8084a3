package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpx "github.com/dropDatabas3/placebook/internal/http"
	"github.com/dropDatabas3/placebook/internal/jwt"
)

func testRoutes() httpx.Routes {
	h := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
	return httpx.Routes{
		AuthCallback: h,
		MeGet:        h,
		MeDelete:     h,
		PlacesList:   h,
		PlacesCreate: h,
		PlaceGet:     h,
		PlaceUpdate:  h,
		PlaceDelete:  h,
		ImageGet:     h,
		Readyz:       h,
	}
}

func newTestRouter() http.Handler {
	return httpx.NewRouter(testRoutes(), httpx.RouterConfig{
		Issuer: jwt.NewIssuer("secreto", time.Hour),
	})
}

func TestRouterHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("status = %d, body = %q", rec.Code, rec.Body.String())
	}
	// La cadena exterior corre también para healthz.
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("sin request id")
	}
}

func TestRouterCallbackIsPublic(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest("POST", "/v1/auth/google/callback", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRouterProtectedNeedsToken(t *testing.T) {
	router := newTestRouter()
	paths := []struct{ method, path string }{
		{"GET", "/v1/usr"},
		{"DELETE", "/v1/usr"},
		{"GET", "/v1/places"},
		{"POST", "/v1/places"},
		{"GET", "/v1/places/p1"},
		{"PATCH", "/v1/places/p1"},
		{"DELETE", "/v1/places/p1"},
		{"GET", "/v1/places/p1/images/i1"},
	}
	for _, p := range paths {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(p.method, p.path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: status = %d", p.method, p.path, rec.Code)
		}
	}
}

func TestRouterProtectedWithToken(t *testing.T) {
	iss := jwt.NewIssuer("secreto", time.Hour)
	router := httpx.NewRouter(testRoutes(), httpx.RouterConfig{Issuer: iss})
	token, _, err := iss.Issue("acc-1", nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/usr", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest("GET", "/v1/nada", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
