package selfservice

import (
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/domain/hospital"
	"github.com/hms/hms/internal/hmstest"
)

func newServer(t *testing.T) *hmstest.Server {
	today, _ := time.Parse(dateLayout, hmstest.Today)
	return hmstest.NewServer(t, func(store *hospital.Store, api *echo.Group) {
		NewHandler(store, func() time.Time { return today }).RegisterRoutes(api)
	})
}

func TestSelfService_RequiresAuth(t *testing.T) {
	s := newServer(t)
	for _, path := range []string{"/api/v1/dashboard", "/api/v1/leave-applications/mine", "/api/v1/patients/P1234/report"} {
		if rec := s.Do(http.MethodGet, path, "", ""); rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestSelfService_Dashboard(t *testing.T) {
	s := newServer(t)
	if _, err := s.Store.BookAppointment(t.Context(), hospital.AppointmentRequest{PatientID: "P1234", DoctorID: "D001", Date: hmstest.Today, Time: "14:00"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var d hospital.Dashboard
	hmstest.Decode(t, s.Do(http.MethodGet, "/api/v1/dashboard", "D001", ""), &d)
	if d.Role != hospital.RoleDoctor || len(d.Cards) != 3 {
		t.Fatalf("unexpected dashboard %+v", d)
	}
	if d.Cards[0].Value != float64(1) || d.Cards[1].Value != float64(2) || d.Cards[2].Value != "Available" {
		t.Errorf("unexpected doctor cards %+v", d.Cards)
	}

	hmstest.Decode(t, s.Do(http.MethodGet, "/api/v1/dashboard", "PH001", ""), &d)
	if d.Welcome != "Welcome, Pharmacy User!" || len(d.Cards) != 0 {
		t.Errorf("unexpected pharmacy dashboard %+v", d)
	}
}

func TestSelfService_Leave(t *testing.T) {
	s := newServer(t)

	rec := s.Do(http.MethodPost, "/api/v1/leave-applications/mine", "PH001",
		`{"type":"Normal","reason":"Conference","start_date":"2025-04-01","end_date":"2025-04-03"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var l hospital.LeaveApplication
	hmstest.Decode(t, rec, &l)
	if l.StaffID != "PH001" || l.StaffName != "Maria Garcia" || l.Status != hospital.LeavePending {
		t.Errorf("unexpected application %+v", l)
	}
	if s.LastAction() != "Applied for Normal leave: "+l.ID {
		t.Errorf("unexpected audit action %q", s.LastAction())
	}

	var mine []hospital.LeaveApplication
	hmstest.Decode(t, s.Do(http.MethodGet, "/api/v1/leave-applications/mine", "PH001", ""), &mine)
	if len(mine) != 1 || mine[0].ID != l.ID {
		t.Errorf("unexpected own applications %+v", mine)
	}
	hmstest.Decode(t, s.Do(http.MethodGet, "/api/v1/leave-applications/mine", "M001", ""), &mine)
	if mine == nil || len(mine) != 0 {
		t.Errorf("expected an empty list, got %#v", mine)
	}

	rec = s.Do(http.MethodPost, "/api/v1/leave-applications/mine", "PH001",
		`{"type":"Normal","reason":"Back to front","start_date":"2025-04-03","end_date":"2025-04-01"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("end before start: expected 400, got %d", rec.Code)
	}
}

func TestSelfService_Reports(t *testing.T) {
	s := newServer(t)

	var report patientReport
	hmstest.Decode(t, s.Do(http.MethodGet, "/api/v1/patients/P1234/report", "PH001", ""), &report)
	if report.Name != "John Doe" || report.AssignedDoctorName != "Dr. Evelyn Reed" {
		t.Errorf("unexpected report %+v", report)
	}

	if rec := s.Do(http.MethodGet, "/api/v1/sos-patients/SOS2302/report", "R001", ""); rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec := s.Do(http.MethodGet, "/api/v1/sos-patients/SOS9/report", "R001", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
