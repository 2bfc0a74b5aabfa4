package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/domain/hospital"
)

type stubResolver map[string]Principal

func (s stubResolver) Resolve(_ context.Context, token string) (Principal, error) {
	p, ok := s[token]
	if !ok {
		return Principal{}, errors.New("no session")
	}
	return p, nil
}

var testResolver = stubResolver{
	"good-token": {SessionID: "s1", UserID: "D001", Username: "doctor", Role: hospital.RoleDoctor},
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, UserIDFromContext(c.Request().Context()))
}

func runSession(t *testing.T, header, path string, skip func(echo.Context) bool) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(path)
	err := SessionMiddleware(testResolver, skip)(okHandler)(c)
	return rec, err
}

func expectStatus(t *testing.T, err error, code int) {
	t.Helper()
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T (%v)", err, err)
	}
	if httpErr.Code != code {
		t.Errorf("expected %d, got %d", code, httpErr.Code)
	}
}

func TestSessionMiddleware_MissingHeader(t *testing.T) {
	_, err := runSession(t, "", "/api/v1/profile", nil)
	expectStatus(t, err, http.StatusUnauthorized)
}

func TestSessionMiddleware_InvalidFormat(t *testing.T) {
	for _, header := range []string{"Token abc", "Bearer", "Bearer   ", "Basic dXNlcjpwYXNz"} {
		t.Run(header, func(t *testing.T) {
			_, err := runSession(t, header, "/api/v1/profile", nil)
			expectStatus(t, err, http.StatusUnauthorized)
		})
	}
}

func TestSessionMiddleware_UnknownSession(t *testing.T) {
	_, err := runSession(t, "Bearer stale-token", "/api/v1/profile", nil)
	expectStatus(t, err, http.StatusUnauthorized)
}

func TestSessionMiddleware_ValidSession(t *testing.T) {
	rec, err := runSession(t, "Bearer good-token", "/api/v1/profile", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Body.String() != "D001" {
		t.Errorf("expected principal D001 in context, got %q", rec.Body.String())
	}
}

func TestSessionMiddleware_PublicPath(t *testing.T) {
	rec, err := runSession(t, "", "/api/v1/navigation", AuthSkipper)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Body.String() != "" {
		t.Errorf("expected anonymous request, got %q", rec.Body.String())
	}

	rec, err = runSession(t, "Bearer good-token", "/api/v1/navigation", AuthSkipper)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Body.String() != "D001" {
		t.Errorf("expected principal on public path with token, got %q", rec.Body.String())
	}

	if _, err := runSession(t, "Bearer stale-token", "/api/v1/navigation", AuthSkipper); err != nil {
		t.Errorf("stale token on a public path should pass anonymously: %v", err)
	}
}

func TestContextHelpers_Empty(t *testing.T) {
	ctx := context.Background()
	if UserIDFromContext(ctx) != "" || RoleFromContext(ctx) != "" {
		t.Error("expected empty values without a principal")
	}
	if _, ok := PrincipalFromContext(ctx); ok {
		t.Error("expected no principal")
	}
}
