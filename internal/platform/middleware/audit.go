package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/domain/hospital"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/metrics"
)

// auditActionKey is the echo context key handlers use to describe what a
// request did in words, e.g. "Added new patient: P123".
const auditActionKey = "audit_action"

// SetAuditAction records the human-readable action for the audit trail.
func SetAuditAction(c echo.Context, format string, args ...interface{}) {
	c.Set(auditActionKey, fmt.Sprintf(format, args...))
}

// AuditEntry is one successful state-changing request by a signed-in user.
type AuditEntry struct {
	StaffID    string
	Username   string
	Name       string
	Role       hospital.Role
	Action     string
	Method     string
	Path       string
	StatusCode int
	RequestID  string
	Timestamp  time.Time
}

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	RecordAction(ctx context.Context, entry AuditEntry) error
}

type AuditRecorderFunc func(ctx context.Context, entry AuditEntry) error

func (f AuditRecorderFunc) RecordAction(ctx context.Context, entry AuditEntry) error {
	return f(ctx, entry)
}

// StoreRecorder appends entries to the hospital audit log.
func StoreRecorder(store *hospital.Store, m *metrics.Collector) AuditRecorder {
	return AuditRecorderFunc(func(ctx context.Context, e AuditEntry) error {
		_, err := store.AppendAuditLog(ctx, hospital.AuditLog{
			StaffID:   e.StaffID,
			StaffName: e.Name,
			StaffRole: e.Role,
			Username:  e.Username,
			Action:    e.Action,
		})
		if err == nil {
			m.RecordAuditEvent(string(e.Role))
		}
		return err
	})
}

// Audit records every successful POST, PUT, PATCH or DELETE under /api/v1/
// made by an authenticated user. Reads, failures and anonymous requests are
// not recorded.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !isMutation(req.Method) || !strings.HasPrefix(req.URL.Path, "/api/v1/") {
				return next(c)
			}

			err := next(c)
			if err != nil || c.Response().Status >= http.StatusBadRequest {
				return err
			}
			req = c.Request()
			p, ok := auth.PrincipalFromContext(req.Context())
			if !ok {
				// login opens the session inside the handler and audits itself
				return err
			}

			entry := AuditEntry{
				StaffID:    p.UserID,
				Username:   p.Username,
				Name:       p.Name,
				Role:       p.Role,
				Method:     req.Method,
				Path:       req.URL.Path,
				StatusCode: c.Response().Status,
				Timestamp:  time.Now().UTC(),
			}
			entry.RequestID, _ = c.Get("request_id").(string)
			if action, ok := c.Get(auditActionKey).(string); ok && action != "" {
				entry.Action = action
			} else {
				entry.Action = req.Method + " " + req.URL.Path
			}

			for _, r := range recorders {
				if r == nil {
					continue
				}
				if recErr := r.RecordAction(req.Context(), entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record audit entry")
				}
			}

			logger.Info().
				Str("type", "audit").
				Str("request_id", entry.RequestID).
				Str("staff_id", entry.StaffID).
				Str("role", string(entry.Role)).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Int("status", entry.StatusCode).
				Msg("staff_action")

			return err
		}
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
