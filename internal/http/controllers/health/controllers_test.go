package health_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dropDatabas3/placebook/internal/cache"
	"github.com/dropDatabas3/placebook/internal/http/controllers/health"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

func readyz(t *testing.T, ctrl *health.ReadyzController) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	ctrl.Readyz(rec, httptest.NewRequest("GET", "/readyz", nil))
	return rec
}

func TestReadyzOK(t *testing.T) {
	ctrl := health.NewReadyzController(fakePinger{}, cache.NewMemory(""))
	if rec := readyz(t, ctrl); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestReadyzWithoutCache(t *testing.T) {
	ctrl := health.NewReadyzController(fakePinger{}, nil)
	if rec := readyz(t, ctrl); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestReadyzDBDown(t *testing.T) {
	ctrl := health.NewReadyzController(fakePinger{err: errors.New("conn refused")}, nil)
	rec := readyz(t, ctrl)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}
