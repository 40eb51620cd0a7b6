package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeStats struct{ n int64 }

func (f fakeStats) InFlight() int64 { return f.n }

func TestCollector_NilPool(t *testing.T) {
	c := NewCollector(nil, fakeStats{n: 3})
	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(c); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if n := testutil.CollectAndCount(c); n != 4 {
		t.Errorf("collected %d metrics, want 4", n)
	}
}

func TestObserveProvider(t *testing.T) {
	before := testutil.ToFloat64(ProviderRequestsTotal.WithLabelValues("test-provider", "error"))
	ObserveProvider("test-provider", time.Now(), errors.New("boom"))
	after := testutil.ToFloat64(ProviderRequestsTotal.WithLabelValues("test-provider", "error"))
	if after-before != 1 {
		t.Errorf("error counter delta = %v, want 1", after-before)
	}
}

func TestInstrumentHandler_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(InstrumentHandler)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/items/{id}", "418"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/items/42", nil))
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/items/{id}", "418"))

	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want 418", rec.Code)
	}
	if after-before != 1 {
		t.Errorf("counter delta = %v, want 1", after-before)
	}
}
