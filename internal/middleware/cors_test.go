package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const appOrigin = "https://app.pubdocs.example"

func corsRequest(method, origin string) *http.Request {
	req := httptest.NewRequest(method, "/documents", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name          string
		origins       []string
		origin        string
		method        string
		requestMethod string
		wantStatus    int
		wantOrigin    string
		wantCreds     string
	}{
		{
			name:       "no origins configured",
			origin:     appOrigin,
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
		},
		{
			name:       "allowed origin gets credentials",
			origins:    []string{appOrigin},
			origin:     appOrigin,
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
			wantOrigin: appOrigin,
			wantCreds:  "true",
		},
		{
			name:          "disallowed preflight refused",
			origins:       []string{appOrigin},
			origin:        "https://evil.example",
			method:        http.MethodOptions,
			requestMethod: http.MethodDelete,
			wantStatus:    http.StatusForbidden,
		},
		{
			name:       "disallowed origin reaches handler without headers",
			origins:    []string{appOrigin},
			origin:     "https://evil.example",
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
		},
		{
			name:          "allowed preflight",
			origins:       []string{appOrigin},
			origin:        appOrigin,
			method:        http.MethodOptions,
			requestMethod: http.MethodPut,
			wantStatus:    http.StatusNoContent,
			wantOrigin:    appOrigin,
			wantCreds:     "true",
		},
		{
			name:       "configured origin is matched case-insensitively",
			origins:    []string{"HTTPS://APP.PUBDOCS.EXAMPLE/"},
			origin:     appOrigin,
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
			wantOrigin: appOrigin,
			wantCreds:  "true",
		},
		{
			name:       "same-origin request untouched",
			origins:    []string{appOrigin},
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := CORS(CORSConfig{AllowedOrigins: tt.origins})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := corsRequest(tt.method, tt.origin)
			if tt.requestMethod != "" {
				req.Header.Set("Access-Control-Request-Method", tt.requestMethod)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != tt.wantCreds {
				t.Errorf("Access-Control-Allow-Credentials = %q, want %q", got, tt.wantCreds)
			}
		})
	}
}

func TestCORS_PreflightHeaders(t *testing.T) {
	handler := CORS(CORSConfig{AllowedOrigins: []string{appOrigin}, MaxAge: 10 * time.Minute})(http.NotFoundHandler())

	req := corsRequest(http.MethodOptions, appOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	req.Header.Set("Access-Control-Request-Headers", "authorization, content-type")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, http.MethodDelete) {
		t.Errorf("Access-Control-Allow-Methods = %q, want DELETE listed", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "Authorization") {
		t.Errorf("Access-Control-Allow-Headers = %q, want Authorization listed", got)
	}
	if got := rec.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Errorf("Access-Control-Max-Age = %q, want 600", got)
	}
	if got := rec.Header().Values("Vary"); len(got) != 3 {
		t.Errorf("Vary = %v, want Origin and both request headers", got)
	}
}

func TestCORS_OptionsWithoutPreflightReachesRouter(t *testing.T) {
	handler := CORS(CORSConfig{AllowedOrigins: []string{appOrigin}})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, corsRequest(http.MethodOptions, appOrigin))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestCORS_ExposesRateLimitHeaders(t *testing.T) {
	handler := CORS(CORSConfig{AllowedOrigins: []string{appOrigin}})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, corsRequest(http.MethodPost, appOrigin))

	exposed := rec.Header().Get("Access-Control-Expose-Headers")
	for _, h := range []string{"Retry-After", "X-Request-ID", "X-RateLimit-Remaining"} {
		if !strings.Contains(exposed, h) {
			t.Errorf("Access-Control-Expose-Headers = %q, missing %s", exposed, h)
		}
	}
}

func TestCORS_SessionCookieFromAllowedOrigin(t *testing.T) {
	t.Parallel()
	fx := newSessionFixture(t)
	handler := CORS(CORSConfig{AllowedOrigins: []string{appOrigin}})(fx.middleware()(echoUser(nil)))

	tests := []struct {
		name      string
		origin    string
		wantCreds string
	}{
		{"allowed origin", appOrigin, "true"},
		{"other origin", "https://evil.example", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := corsRequest(http.MethodGet, tt.origin)
			req.AddCookie(&http.Cookie{Name: "pub_session", Value: fx.token})
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			// The cookie resolves the session either way; only the CORS
			// headers decide whether the browser may read the answer.
			if got := rec.Body.String(); got != fx.userID {
				t.Errorf("user = %q, want %q", got, fx.userID)
			}
			if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != tt.wantCreds {
				t.Errorf("Access-Control-Allow-Credentials = %q, want %q", got, tt.wantCreds)
			}
		})
	}
}
