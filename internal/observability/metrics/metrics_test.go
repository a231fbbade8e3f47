package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func scrape(t *testing.T) string {
	t.Helper()

	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read scrape: %v", err)
	}
	return string(body)
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /widgets/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := HTTPMetricsMiddleware(mux)

	for _, path := range []string{"/widgets/1", "/widgets/2", "/nowhere"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	body := scrape(t)
	want := `portal_http_requests_total{method="GET",route="GET /widgets/{id}",status="418"} 2`
	if !strings.Contains(body, want) {
		t.Fatalf("expected %q in scrape output:\n%s", want, body)
	}
	if !strings.Contains(body, `route="unmatched",status="404"`) {
		t.Fatalf("expected unmatched request to be recorded:\n%s", body)
	}
}

func TestDomainCounters(t *testing.T) {
	ObserveLogin("failure")
	ObserveSession("expired")
	ObservePasswordReset("confirm", "invalid_token")

	body := scrape(t)
	for _, want := range []string{
		`portal_logins_total{result="failure"}`,
		`portal_session_validations_total{outcome="expired"}`,
		`portal_password_resets_total{result="invalid_token",stage="confirm"}`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in scrape output", want)
		}
	}
}
