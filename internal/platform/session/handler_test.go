package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/middleware"
)

func newTestServer(t *testing.T) (*echo.Echo, *fixture) {
	t.Helper()
	f := newFixture(t)
	e := echo.New()
	api := e.Group("/api/v1",
		middleware.Audit(zerolog.Nop(), middleware.StoreRecorder(f.store, nil)),
		auth.SessionMiddleware(f.mgr, auth.AuthSkipper),
	)
	NewHandler(f.mgr, middleware.DefaultLoginThrottleConfig()).RegisterRoutes(api)
	return e, f
}

func do(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, e *echo.Echo, username string) string {
	t.Helper()
	rec := do(e, http.MethodPost, "/api/v1/auth/login", "", `{"username":"`+username+`","password":"password"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, auth.LandingPath, resp.Landing)
	return resp.Token
}

func TestHandler_LoginAndMe(t *testing.T) {
	e, _ := newTestServer(t)
	token := login(t, e, "Receptionist")

	rec := do(e, http.MethodGet, "/api/v1/auth/me", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"R001"`)
	assert.Contains(t, rec.Body.String(), `"label":"SOS Patients"`)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestHandler_LoginRejected(t *testing.T) {
	e, _ := newTestServer(t)

	rec := do(e, http.MethodPost, "/api/v1/auth/login", "", `{"username":"doctor","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodPost, "/api/v1/auth/login", "", `{"username":"doctor"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Logout(t *testing.T) {
	e, f := newTestServer(t)
	token := login(t, e, "doctor")

	rec := do(e, http.MethodPost, "/api/v1/auth/logout", token, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "Logged out", f.store.AuditLogs()[0].Action)

	rec = do(e, http.MethodGet, "/api/v1/auth/me", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_SettingsPublicReadMasterWrite(t *testing.T) {
	e, f := newTestServer(t)

	rec := do(e, http.MethodGet, "/api/v1/settings", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Central City Hospital")

	body := `{"hospital_name":"Riverside General","hospital_logo":"data:image/png;base64,AAAA"}`
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodPut, "/api/v1/settings", "", body).Code)
	assert.Equal(t, http.StatusForbidden, do(e, http.MethodPut, "/api/v1/settings", login(t, e, "admin"), body).Code)

	master := login(t, e, "master")
	rec = do(e, http.MethodPut, "/api/v1/settings", master, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Riverside General")
	assert.Equal(t, "Updated hospital settings", f.store.AuditLogs()[0].Action)

	rec = do(e, http.MethodPut, "/api/v1/settings", master, `{"remove_logo":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"hospital_logo":null`)

	rec = do(e, http.MethodPut, "/api/v1/settings", master, `{"hospital_name":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Profile(t *testing.T) {
	e, f := newTestServer(t)
	token := login(t, e, "pharmacy")

	rec := do(e, http.MethodGet, "/api/v1/profile", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Maria Garcia")

	rec = do(e, http.MethodPut, "/api/v1/profile", token, `{"contact":"000-111-2222"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "000-111-2222")
	assert.Equal(t, "Updated profile", f.store.AuditLogs()[0].Action)

	rec = do(e, http.MethodPut, "/api/v1/profile", token, `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/api/v1/profile", "", "").Code)
}
