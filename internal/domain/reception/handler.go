package reception

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/domain/hospital"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/metrics"
	"github.com/hms/hms/internal/platform/middleware"
	"github.com/hms/hms/pkg/pagination"
)

// Handler serves the receptionist's patient, SOS and appointment desk.
type Handler struct {
	store   *hospital.Store
	metrics *metrics.Collector
}

func NewHandler(store *hospital.Store, m *metrics.Collector) *Handler {
	return &Handler{store: store, metrics: m}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/reception", auth.RequireRole(hospital.RoleReceptionist))

	g.GET("/patients", h.ListPatients)
	g.POST("/patients", h.CreatePatient)
	g.GET("/patients/:id", h.GetPatient)
	g.PUT("/patients/:id", h.UpdatePatient)

	g.GET("/sos-patients", h.ListSosPatients)
	g.POST("/sos-patients", h.CreateSosPatient)
	g.PUT("/sos-patients/:id", h.UpdateSosPatient)
	g.DELETE("/sos-patients/:id", h.DeleteSosPatient)
	g.POST("/sos-patients/:id/convert", h.ConvertSosPatient)

	g.GET("/appointments", h.ListAppointments)
	g.POST("/appointments", h.BookAppointment)
	g.PATCH("/appointments/:id/status", h.UpdateAppointmentStatus)

	g.GET("/doctors", h.ListDoctors)
}

// -- Patients --

type patientRequest struct {
	Name             string                 `json:"name"`
	Contact          string                 `json:"contact"`
	Email            string                 `json:"email"`
	Status           hospital.PatientStatus `json:"status"`
	Gender           string                 `json:"gender"`
	Ward             string                 `json:"ward"`
	AssignedDoctorID string                 `json:"assigned_doctor_id"`
}

func (r patientRequest) patient() hospital.Patient {
	return hospital.Patient{
		Name:             r.Name,
		Contact:          r.Contact,
		Email:            r.Email,
		Status:           r.Status,
		Gender:           r.Gender,
		Ward:             r.Ward,
		AssignedDoctorID: r.AssignedDoctorID,
	}
}

// checkAssignedDoctor rejects an assignment to anyone but an active doctor.
func (h *Handler) checkAssignedDoctor(id string) error {
	if id == "" {
		return nil
	}
	m, err := h.store.StaffMember(id)
	if err != nil || !m.IsDoctor() {
		return echo.NewHTTPError(http.StatusBadRequest, "assigned_doctor_id must name an active doctor")
	}
	return nil
}

func (h *Handler) ListPatients(c echo.Context) error {
	patients := hospital.Filter(h.store.Patients(), c.QueryParam("q"), hospital.MatchPatient)
	return c.JSON(http.StatusOK, pagination.Page(patients, pagination.FromContext(c)))
}

func (h *Handler) GetPatient(c echo.Context) error {
	p, err := h.store.Patient(c.Param("id"))
	if err != nil {
		return hospital.HTTPError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var req patientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.checkAssignedDoctor(req.AssignedDoctorID); err != nil {
		return err
	}
	p, err := h.store.AddPatient(c.Request().Context(), req.patient())
	if err != nil {
		return hospital.HTTPError(err)
	}
	middleware.SetAuditAction(c, "Added new patient: %s", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	var req patientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.checkAssignedDoctor(req.AssignedDoctorID); err != nil {
		return err
	}
	in := req.patient()
	in.ID = c.Param("id")
	p, err := h.store.UpdatePatientDetails(c.Request().Context(), in)
	if err != nil {
		return hospital.HTTPError(err)
	}
	middleware.SetAuditAction(c, "Updated patient details for %s", p.ID)
	return c.JSON(http.StatusOK, p)
}

// -- SOS patients --

type sosPatientRequest struct {
	Name         string                 `json:"name"`
	Status       hospital.PatientStatus `json:"status"`
	AdmittedWard string                 `json:"admitted_ward"`
	Gender       string                 `json:"gender"`
	Email        string                 `json:"email"`
}

func (r sosPatientRequest) sosPatient() hospital.SosPatient {
	return hospital.SosPatient{
		Name:         r.Name,
		Status:       r.Status,
		AdmittedWard: r.AdmittedWard,
		Gender:       r.Gender,
		Email:        r.Email,
	}
}

func (h *Handler) ListSosPatients(c echo.Context) error {
	list := hospital.Filter(h.store.SosPatients(), c.QueryParam("q"), hospital.MatchSosPatient)
	return c.JSON(http.StatusOK, pagination.Page(list, pagination.FromContext(c)))
}

func (h *Handler) CreateSosPatient(c echo.Context) error {
	var req sosPatientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, err := h.store.AddSosPatient(c.Request().Context(), req.sosPatient())
	if err != nil {
		return hospital.HTTPError(err)
	}
	middleware.SetAuditAction(c, "Added new SOS patient: %s", p.ID)
	return c.JSON(http.StatusCreated, p)
}

// UpdateSosPatient edits an SOS admission. Doctor and pharmacy notes are kept.
func (h *Handler) UpdateSosPatient(c echo.Context) error {
	var req sosPatientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	in := req.sosPatient()
	in.ID = c.Param("id")
	p, err := h.store.UpdateSosPatientDetails(c.Request().Context(), in)
	if err != nil {
		return hospital.HTTPError(err)
	}
	middleware.SetAuditAction(c, "Updated SOS patient details for %s", p.ID)
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeleteSosPatient(c echo.Context) error {
	id := c.Param("id")
	if err := h.store.RemoveSosPatient(c.Request().Context(), id); err != nil {
		return hospital.HTTPError(err)
	}
	middleware.SetAuditAction(c, "Removed SOS patient: %s", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ConvertSosPatient(c echo.Context) error {
	var details hospital.ConversionDetails
	if err := c.Bind(&details); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	id := c.Param("id")
	p, err := h.store.ConvertSosPatient(c.Request().Context(), id, details)
	if err != nil {
		return hospital.HTTPError(err)
	}
	middleware.SetAuditAction(c, "Converted SOS patient %s to patient %s", id, p.ID)
	return c.JSON(http.StatusCreated, p)
}

// -- Appointments --

func (h *Handler) ListAppointments(c echo.Context) error {
	list := hospital.Filter(h.store.Appointments(), c.QueryParam("q"), hospital.MatchAppointment)
	list = filterAppointments(list, c.QueryParam("date"), hospital.AppointmentStatus(c.QueryParam("status")))
	return c.JSON(http.StatusOK, pagination.Page(list, pagination.FromContext(c)))
}

// filterAppointments narrows by exact date and status; empty values match all.
func filterAppointments(in []hospital.Appointment, date string, status hospital.AppointmentStatus) []hospital.Appointment {
	if date == "" && status == "" {
		return in
	}
	out := make([]hospital.Appointment, 0, len(in))
	for _, a := range in {
		if (date == "" || a.Date == date) && (status == "" || a.Status == status) {
			out = append(out, a)
		}
	}
	return out
}

func (h *Handler) BookAppointment(c echo.Context) error {
	var req hospital.AppointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.store.BookAppointment(c.Request().Context(), req)
	if err != nil {
		h.metrics.RecordBooking(bookingOutcome(err))
		return hospital.HTTPError(err)
	}
	h.metrics.RecordBooking("booked")
	middleware.SetAuditAction(c, "Booked appointment %s for %s with %s", a.ID, a.PatientName, a.DoctorName)
	return c.JSON(http.StatusCreated, a)
}

func bookingOutcome(err error) string {
	switch {
	case errors.Is(err, hospital.ErrScheduleConflict):
		return "conflict"
	case errors.Is(err, hospital.ErrDoctorUnavailable):
		return "unavailable"
	}
	return "rejected"
}

type statusRequest struct {
	Status hospital.AppointmentStatus `json:"status"`
}

func (h *Handler) UpdateAppointmentStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.store.UpdateAppointmentStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return hospital.HTTPError(err)
	}
	middleware.SetAuditAction(c, "Marked appointment %s as %s", a.ID, a.Status)
	return c.JSON(http.StatusOK, a)
}

// ListDoctors backs the booking form's doctor picker.
func (h *Handler) ListDoctors(c echo.Context) error {
	doctors := hospital.Filter(h.store.Doctors(), c.QueryParam("q"), hospital.MatchStaff)
	out := make([]hospital.StaffMember, len(doctors))
	for i, d := range doctors {
		out[i] = d.Public()
	}
	return c.JSON(http.StatusOK, out)
}
