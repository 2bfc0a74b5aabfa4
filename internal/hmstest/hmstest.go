// Package hmstest wires a seeded store behind the API middleware chain for
// handler tests.
package hmstest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/domain/hospital"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/middleware"
)

// StaffHeader names the staff id a test request acts as.
const StaffHeader = "X-Test-Staff"

// Today is the fixed date of the test clock.
const Today = "2025-03-20"

type Server struct {
	Echo  *echo.Echo
	Store *hospital.Store
}

// NewServer builds a store from the default seed and mounts the routes added
// by register under /api/v1, behind the audit middleware and a principal
// resolved from StaffHeader.
func NewServer(t *testing.T, register func(store *hospital.Store, api *echo.Group)) *Server {
	t.Helper()
	store := hospital.NewStore(
		hospital.WithClock(func() time.Time { return time.Date(2025, 3, 20, 9, 0, 0, 0, time.UTC) }),
		hospital.WithSeed(hospital.DefaultSeed()),
	)
	e := echo.New()
	api := e.Group("/api/v1",
		middleware.Audit(zerolog.Nop(), middleware.StoreRecorder(store, nil)),
		asStaff(store),
	)
	register(store, api)
	return &Server{Echo: e, Store: store}
}

func asStaff(store *hospital.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(StaffHeader)
			if id == "" {
				return next(c)
			}
			m, err := store.StaffMember(id)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "unknown test staff")
			}
			p := auth.Principal{SessionID: "test-" + id, UserID: m.ID, Username: m.Username, Name: m.Name, Role: m.Role}
			c.SetRequest(c.Request().WithContext(auth.WithPrincipal(c.Request().Context(), p)))
			return next(c)
		}
	}
}

// Do sends a request as staffID; an empty staffID is anonymous.
func (s *Server) Do(method, path, staffID, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if staffID != "" {
		req.Header.Set(StaffHeader, staffID)
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

// LastAction is the newest audit log action.
func (s *Server) LastAction() string {
	logs := s.Store.AuditLogs()
	if len(logs) == 0 {
		return ""
	}
	return logs[0].Action
}

// Decode unmarshals a JSON response body into v, failing the test on error.
func Decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
}

// Page is the decoded shape of a paginated list.
type Page[T any] struct {
	Data    []T  `json:"data"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}
