package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"1M", 1 << 20},
		{"10MB", 10 << 20},
		{"512K", 512 << 10},
		{"1G", 1 << 30},
		{"1024", 1024},
		{"", 1 << 20},
		{"invalid", 1 << 20},
		{"KB", 1 << 20},
	}
	for _, tt := range tests {
		if got := parseLimit(tt.input); got != tt.want {
			t.Errorf("parseLimit(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func readAll(c echo.Context) error {
	if _, err := io.ReadAll(c.Request().Body); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func runBodyLimit(t *testing.T, path, body string, chunked bool) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(body))
	if chunked {
		req.ContentLength = -1
	}
	c := e.NewContext(req, httptest.NewRecorder())
	return BodyLimit("16", "64")(readAll)(c)
}

func TestBodyLimit(t *testing.T) {
	big := strings.Repeat("x", 32)

	if err := runBodyLimit(t, "/api/v1/reception/patients/P1", `{"name":"a"}`, false); err != nil {
		t.Errorf("small body: unexpected error: %v", err)
	}
	expectCode(t, runBodyLimit(t, "/api/v1/reception/patients/P1", big, false), http.StatusRequestEntityTooLarge)
	expectCode(t, runBodyLimit(t, "/api/v1/reception/patients/P1", big, true), http.StatusRequestEntityTooLarge)

	if err := runBodyLimit(t, "/api/v1/profile", big, false); err != nil {
		t.Errorf("upload path: unexpected error: %v", err)
	}
	if err := runBodyLimit(t, "/api/v1/admin/staff/D1", big, true); err != nil {
		t.Errorf("upload path: unexpected error: %v", err)
	}
	expectCode(t, runBodyLimit(t, "/api/v1/settings", strings.Repeat("x", 100), false), http.StatusRequestEntityTooLarge)
}

func expectCode(t *testing.T, err error, code int) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T (%v)", err, err)
	}
	if he.Code != code {
		t.Errorf("expected %d, got %d", code, he.Code)
	}
}
