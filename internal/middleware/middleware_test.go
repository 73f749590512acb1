package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Seen-User", UserID(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func TestRequireUser(t *testing.T) {
	h := RequireUser(http.HandlerFunc(okHandler))

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(UserHeader, "user-1")
	resp = httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, "user-1", resp.Header().Get("X-Seen-User"))
}

func TestAdminToken(t *testing.T) {
	h := AdminToken("s3cret")(http.HandlerFunc(okHandler))

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(AdminTokenHeader, "s3cret")
	resp = httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/?token=s3cret", nil))
	assert.Equal(t, http.StatusNoContent, resp.Code)
}

func TestAdminTokenDisabled(t *testing.T) {
	h := AdminToken("")(http.HandlerFunc(okHandler))
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, resp.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := CORS([]string{"http://app.test"})(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://app.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	assert.Equal(t, "http://app.test", resp.Header().Get("Access-Control-Allow-Origin"))
}
