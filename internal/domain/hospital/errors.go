package hospital

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Sentinel errors returned by the store and the rules. HTTPError maps each to
// a status code.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrScheduleConflict   = errors.New("doctor already has an appointment within 5 minutes")
	ErrDoctorUnavailable  = errors.New("doctor is not available")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrNotDoctor          = errors.New("staff member is not a doctor")
	ErrUsernameTaken      = errors.New("username already in use")
	ErrForbidden          = errors.New("action not permitted")
	ErrPasswordRequired   = errors.New("password is required for new staff")
	ErrUnsupportedPayment = errors.New("payment method must be Cash or Online")
)

// ValidationError reports a missing or malformed field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// InsufficientStockError names the medicine line that could not be filled.
type InsufficientStockError struct {
	MedicineID string
	Requested  int
	Available  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.MedicineID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// notFound wraps ErrNotFound with the kind of record that was looked up.
func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

// InternalError answers 500 without exposing err to the client. err is kept
// as the internal cause, so the request logger still records it.
func InternalError(err error) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
}

// HTTPError maps a store or rule error onto an echo.HTTPError. Anything it
// does not recognise becomes an InternalError.
func HTTPError(err error) *echo.HTTPError {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve), errors.Is(err, ErrPasswordRequired), errors.Is(err, ErrUnsupportedPayment):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrScheduleConflict), errors.Is(err, ErrDoctorUnavailable),
		errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrUsernameTaken), errors.Is(err, ErrNotDoctor):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return InternalError(err)
}
