package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/api/drugs/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(HTTPRequestTotals.WithLabelValues(http.MethodGet, "/api/drugs/{id}", "404"))
	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/drugs/"+id, nil))
	}
	after := testutil.ToFloat64(HTTPRequestTotals.WithLabelValues(http.MethodGet, "/api/drugs/{id}", "404"))

	if after-before != 2 {
		t.Errorf("Expected 2 requests under the route pattern, got %v", after-before)
	}
	if got := testutil.ToFloat64(HTTPRequestInFlight); got != 0 {
		t.Errorf("Expected no in-flight requests, got %v", got)
	}
}

func TestMetricsWithoutRouter(t *testing.T) {
	h := Metrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	before := testutil.ToFloat64(HTTPRequestTotals.WithLabelValues(http.MethodGet, "unmatched", "200"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/anything", nil))
	after := testutil.ToFloat64(HTTPRequestTotals.WithLabelValues(http.MethodGet, "unmatched", "200"))

	if after-before != 1 {
		t.Errorf("Expected unmatched request to be counted, got %v", after-before)
	}
}

func TestObserveFetch(t *testing.T) {
	stale := testutil.ToFloat64(StaleResponsesTotal.WithLabelValues("drugs"))
	ok := testutil.ToFloat64(FetchTotal.WithLabelValues("drugs", OutcomeSuccess))

	ObserveFetch("drugs", OutcomeSuccess, 10*time.Millisecond)
	ObserveFetch("drugs", OutcomeStale, time.Second)

	if got := testutil.ToFloat64(FetchTotal.WithLabelValues("drugs", OutcomeSuccess)) - ok; got != 1 {
		t.Errorf("Expected 1 successful fetch, got %v", got)
	}
	if got := testutil.ToFloat64(StaleResponsesTotal.WithLabelValues("drugs")) - stale; got != 1 {
		t.Errorf("Expected 1 stale response, got %v", got)
	}
}

func TestObserveMutationAndSelection(t *testing.T) {
	failed := testutil.ToFloat64(MutationTotal.WithLabelValues("delete_drug", OutcomeFailure))
	ObserveMutation("delete_drug", errors.New("boom"))
	if got := testutil.ToFloat64(MutationTotal.WithLabelValues("delete_drug", OutcomeFailure)) - failed; got != 1 {
		t.Errorf("Expected 1 failed mutation, got %v", got)
	}

	SetSelection(3, 5)
	if testutil.ToFloat64(SelectedDrugs) != 3 || testutil.ToFloat64(FavoriteDrugs) != 5 {
		t.Error("Selection gauges not updated")
	}
}
