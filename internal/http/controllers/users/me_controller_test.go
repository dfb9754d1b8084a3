package users_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpx "github.com/dropDatabas3/placebook/internal/http"
	"github.com/dropDatabas3/placebook/internal/http/controllers/users"
	"github.com/dropDatabas3/placebook/internal/jwt"
	"github.com/dropDatabas3/placebook/internal/store/core"
)

type fakeAccounts struct {
	acc     *core.Account
	deleted bool
}

func (f *fakeAccounts) Profile(ctx context.Context, accountID string) (*core.Account, error) {
	if f.acc == nil || f.acc.ID != accountID || f.deleted {
		return nil, core.ErrNotFound
	}
	return f.acc, nil
}

func (f *fakeAccounts) DeleteAccount(ctx context.Context, accountID string) error {
	if f.acc == nil || f.acc.ID != accountID || f.deleted {
		return core.ErrNotFound
	}
	f.deleted = true
	return nil
}

func strptr(s string) *string { return &s }

// La sesión entra por el middleware de auth, igual que en producción.
func authed(t *testing.T, h http.HandlerFunc, iss *jwt.Issuer, sub string) (http.Handler, string) {
	t.Helper()
	token, _, err := iss.Issue(sub, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return httpx.WithAuth(h, iss), token
}

func TestMeGet(t *testing.T) {
	iss := jwt.NewIssuer("secreto", time.Hour)
	svc := &fakeAccounts{acc: &core.Account{ID: "acc-1", Email: strptr("ana@example.com"), Name: strptr("Ana")}}
	ctrl := users.NewMeController(svc)
	h, token := authed(t, ctrl.Get, iss, "acc-1")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/usr", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	var body struct {
		ID    string  `json:"id"`
		Email *string `json:"email"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.ID != "acc-1" || body.Email == nil || *body.Email != "ana@example.com" {
		t.Fatalf("body = %+v", body)
	}
}

func TestMeGetWithoutToken(t *testing.T) {
	iss := jwt.NewIssuer("secreto", time.Hour)
	ctrl := users.NewMeController(&fakeAccounts{})
	h := httpx.WithAuth(http.HandlerFunc(ctrl.Get), iss)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/usr", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestMeGetAccountGone(t *testing.T) {
	// Token válido pero la cuenta ya no existe (borrada con otro device).
	iss := jwt.NewIssuer("secreto", time.Hour)
	ctrl := users.NewMeController(&fakeAccounts{})
	h, token := authed(t, ctrl.Get, iss, "acc-1")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/usr", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestMeDelete(t *testing.T) {
	iss := jwt.NewIssuer("secreto", time.Hour)
	svc := &fakeAccounts{acc: &core.Account{ID: "acc-1"}}
	ctrl := users.NewMeController(svc)
	h, token := authed(t, ctrl.Delete, iss, "acc-1")

	do := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("DELETE", "/v1/usr", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := do(); rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if !svc.deleted {
		t.Fatal("el servicio no recibió el delete")
	}
	// Repetir con el mismo token: la cuenta ya no está.
	if rec := do(); rec.Code != http.StatusNotFound {
		t.Fatalf("segundo delete status = %d", rec.Code)
	}
}
