package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/domain/hospital"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal is the authenticated identity attached to a request.
type Principal struct {
	SessionID string        `json:"session_id"`
	UserID    string        `json:"user_id"`
	Username  string        `json:"username"`
	Name      string        `json:"name"`
	Role      hospital.Role `json:"role"`
}

// Resolver turns a bearer token into the principal of a live session.
type Resolver interface {
	Resolve(ctx context.Context, token string) (Principal, error)
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
	}
	return strings.TrimSpace(parts[1]), nil
}

// SessionMiddleware requires a bearer token naming a live session. Paths for
// which skip returns true are let through without one, but still get a
// principal when a valid token is presented.
func SessionMiddleware(r Resolver, skip func(echo.Context) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			optional := skip != nil && skip(c)

			token, err := BearerToken(c.Request())
			if err != nil {
				if optional {
					return next(c)
				}
				return err
			}
			p, err := r.Resolve(c.Request().Context(), token)
			if err != nil {
				if optional {
					return next(c)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
			}

			c.SetRequest(c.Request().WithContext(WithPrincipal(c.Request().Context(), p)))
			return next(c)
		}
	}
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

func UserIDFromContext(ctx context.Context) string {
	p, _ := PrincipalFromContext(ctx)
	return p.UserID
}

func RoleFromContext(ctx context.Context) hospital.Role {
	p, _ := PrincipalFromContext(ctx)
	return p.Role
}
