package module_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/cadence/pkg/module"
)

func TestNewPanicsOnInvalidPrefix(t *testing.T) {
	for _, prefix := range []string{"", "api", "/api/v1"} {
		t.Run(prefix, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("New(%q) should panic", prefix)
				}
			}()
			module.New(prefix, http.NewServeMux())
		})
	}
}

func TestRouterDispatch(t *testing.T) {
	inner := http.NewServeMux()
	inner.HandleFunc("GET /taxonomy", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("module:" + r.URL.Path))
	})

	m := module.New("/api", inner)
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Module", "api")
			next.ServeHTTP(w, r)
		})
	})

	router := module.NewRouter()
	router.Mount(m)
	router.HandleNative("GET /healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("native"))
	}))

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
		wantHeader string
	}{
		{"module route", "/api/taxonomy", http.StatusOK, "module:/taxonomy", "api"},
		{"trailing slash", "/api/taxonomy/", http.StatusOK, "module:/taxonomy", "api"},
		{"native route", "/healthz", http.StatusOK, "native", ""},
		{"unknown", "/nope", http.StatusNotFound, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body: got %q, want %q", rec.Body.String(), tt.wantBody)
			}
			if rec.Header().Get("X-Module") != tt.wantHeader {
				t.Errorf("X-Module: got %q, want %q", rec.Header().Get("X-Module"), tt.wantHeader)
			}
		})
	}
}
