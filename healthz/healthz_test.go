package healthz

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNoChecksReportsHealthy(t *testing.T) {
	w := httptest.NewRecorder()
	New().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Handler with no checks returned status %d; want 200", w.Code)
	}
	if w.Body.String() != "200 OK" {
		t.Errorf("Handler with no checks returned body %q; want 200 OK", w.Body.String())
	}
}

func TestPassingChecksReportHealthy(t *testing.T) {
	h := New()
	h.AddCheck("store", func() error { return nil })
	h.AddCheck("bucket", func() error { return nil })

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Handler with passing checks returned status %d; want 200", w.Code)
	}
}

func TestFailingCheckReportsUnavailable(t *testing.T) {
	h := New()
	h.AddCheck("store", func() error { return errors.New("connection refused") })

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Handler with a failing check returned status %d; want 503", w.Code)
	}
	if !strings.Contains(w.Body.String(), "store") {
		t.Errorf("Failure body %q does not name the failing check", w.Body.String())
	}
}
