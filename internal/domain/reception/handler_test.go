package reception

import (
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/domain/hospital"
	"github.com/hms/hms/internal/hmstest"
)

func newServer(t *testing.T) *hmstest.Server {
	return hmstest.NewServer(t, func(store *hospital.Store, api *echo.Group) {
		NewHandler(store, nil).RegisterRoutes(api)
	})
}

func TestReception_RoleGate(t *testing.T) {
	s := newServer(t)

	if rec := s.Do(http.MethodGet, "/api/v1/reception/patients", "", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: expected 401, got %d", rec.Code)
	}
	for _, id := range []string{"D001", "PH001", "A001", "M001"} {
		if rec := s.Do(http.MethodGet, "/api/v1/reception/patients", id, ""); rec.Code != http.StatusForbidden {
			t.Errorf("%s: expected 403, got %d", id, rec.Code)
		}
	}
	if rec := s.Do(http.MethodGet, "/api/v1/reception/patients", "R001", ""); rec.Code != http.StatusOK {
		t.Errorf("receptionist: expected 200, got %d", rec.Code)
	}
}

func TestReception_PatientLifecycle(t *testing.T) {
	s := newServer(t)

	rec := s.Do(http.MethodPost, "/api/v1/reception/patients", "R001",
		`{"name":"Bob Stone","contact":"555-0100","email":"bob@email.com","gender":"Male","ward":"ICU","assigned_doctor_id":"D001"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created hospital.Patient
	hmstest.Decode(t, rec, &created)
	if !strings.HasPrefix(created.ID, "P") || created.Status != hospital.PatientAdmitted {
		t.Errorf("unexpected patient %+v", created)
	}
	if got := s.LastAction(); got != "Added new patient: "+created.ID {
		t.Errorf("unexpected audit action %q", got)
	}

	rec = s.Do(http.MethodPut, "/api/v1/reception/patients/"+created.ID, "R001",
		`{"name":"Bob Stone","contact":"555-0199","email":"bob@email.com","gender":"Male","ward":"ICU","status":"Discharged"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = s.Do(http.MethodGet, "/api/v1/reception/patients", "R001", "")
	var page hmstest.Page[hospital.Patient]
	hmstest.Decode(t, rec, &page)
	if page.Total != 3 {
		t.Errorf("expected 3 patients, got %d", page.Total)
	}

	rec = s.Do(http.MethodGet, "/api/v1/reception/patients/"+created.ID, "R001", "")
	var got hospital.Patient
	hmstest.Decode(t, rec, &got)
	if got.Contact != "555-0199" || got.Status != hospital.PatientDischarged {
		t.Errorf("update not reflected: %+v", got)
	}
}

func TestReception_UpdateKeepsClinicalNotes(t *testing.T) {
	s := newServer(t)
	diagnosis := []string{"Hypertension"}
	if _, err := s.Store.UpdatePatientReport(t.Context(), "P1234", hospital.ReportPatch{Diagnosis: &diagnosis}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := s.Do(http.MethodPut, "/api/v1/reception/patients/P1234", "R001",
		`{"name":"John Doe","contact":"123-456-0000","gender":"Male","ward":"General Medicine"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	p, _ := s.Store.Patient("P1234")
	if len(p.Diagnosis) != 1 || p.Diagnosis[0] != "Hypertension" {
		t.Errorf("clinical notes lost: %+v", p.ClinicalNotes)
	}
}

func TestReception_PatientErrors(t *testing.T) {
	s := newServer(t)
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"missing name", http.MethodPost, "/api/v1/reception/patients", `{"contact":"1"}`, http.StatusBadRequest},
		{"bad status", http.MethodPost, "/api/v1/reception/patients", `{"name":"A","status":"Sleeping"}`, http.StatusBadRequest},
		{"non-doctor assignment", http.MethodPost, "/api/v1/reception/patients", `{"name":"A","assigned_doctor_id":"R001"}`, http.StatusBadRequest},
		{"unknown patient", http.MethodPut, "/api/v1/reception/patients/P0", `{"name":"A"}`, http.StatusNotFound},
		{"malformed body", http.MethodPost, "/api/v1/reception/patients", `{"name":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := s.Do(tt.method, tt.path, "R001", tt.body); rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestReception_Search(t *testing.T) {
	s := newServer(t)
	rec := s.Do(http.MethodGet, "/api/v1/reception/patients?q=ALICE", "R001", "")
	var page hmstest.Page[hospital.Patient]
	hmstest.Decode(t, rec, &page)
	if page.Total != 1 || page.Data[0].ID != "P5678" {
		t.Errorf("unexpected search result %+v", page)
	}

	rec = s.Do(http.MethodGet, "/api/v1/reception/doctors?q=cardio", "R001", "")
	var doctors []hospital.StaffMember
	hmstest.Decode(t, rec, &doctors)
	if len(doctors) != 0 {
		// specialty is not a searchable doctor field
		t.Errorf("expected no match, got %+v", doctors)
	}
	rec = s.Do(http.MethodGet, "/api/v1/reception/doctors", "R001", "")
	hmstest.Decode(t, rec, &doctors)
	if len(doctors) != 1 || doctors[0].ID != "D001" {
		t.Errorf("unexpected doctors %+v", doctors)
	}
}

func TestReception_SosConversion(t *testing.T) {
	s := newServer(t)

	rec := s.Do(http.MethodPost, "/api/v1/reception/sos-patients/SOS2301/convert", "R001", `{"contact":"555-0101","email":"jane@email.com"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var p hospital.Patient
	hmstest.Decode(t, rec, &p)
	if p.Name != "Jane Doe" || p.Gender != "Female" || p.Ward != "Emergency" || p.Status != hospital.PatientAdmitted {
		t.Errorf("unexpected converted patient %+v", p)
	}
	if _, err := s.Store.SosPatient("SOS2301"); err == nil {
		t.Error("SOS record should be gone after conversion")
	}

	rec = s.Do(http.MethodPost, "/api/v1/reception/sos-patients/SOS2301/convert", "R001", `{}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second conversion: expected 404, got %d", rec.Code)
	}
}

func TestReception_SosAddRemove(t *testing.T) {
	s := newServer(t)

	rec := s.Do(http.MethodPost, "/api/v1/reception/sos-patients", "R001", `{"name":"Unknown Female","gender":"Female","admitted_ward":"ICU"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var p hospital.SosPatient
	hmstest.Decode(t, rec, &p)
	if !strings.HasPrefix(p.ID, "SOS") {
		t.Errorf("unexpected id %q", p.ID)
	}

	if rec := s.Do(http.MethodDelete, "/api/v1/reception/sos-patients/"+p.ID, "R001", ""); rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if rec := s.Do(http.MethodDelete, "/api/v1/reception/sos-patients/"+p.ID, "R001", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if rec := s.Do(http.MethodPost, "/api/v1/reception/sos-patients", "R001", `{"name":"X","admitted_ward":"ICU","status":"Discharged"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("SOS patients cannot be discharged: got %d", rec.Code)
	}
}

func TestReception_SosUpdateKeepsClinicalNotes(t *testing.T) {
	s := newServer(t)
	diagnosis := []string{"Head trauma"}
	if _, err := s.Store.UpdateSosPatientReport(t.Context(), "SOS2301", hospital.ReportPatch{Diagnosis: &diagnosis}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := s.Do(http.MethodPut, "/api/v1/reception/sos-patients/SOS2301", "R001",
		`{"name":"Jane Roe","gender":"Female","admitted_ward":"ICU"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	p, _ := s.Store.SosPatient("SOS2301")
	if p.Name != "Jane Roe" || p.AdmittedWard != "ICU" || p.Status != hospital.PatientAdmitted {
		t.Errorf("unexpected record: %+v", p)
	}
	if len(p.Diagnosis) != 1 || p.Diagnosis[0] != "Head trauma" {
		t.Errorf("clinical notes lost: %+v", p.ClinicalNotes)
	}
	if got := s.LastAction(); got != "Updated SOS patient details for SOS2301" {
		t.Errorf("unexpected audit action %q", got)
	}

	if rec := s.Do(http.MethodPut, "/api/v1/reception/sos-patients/SOS0", "R001", `{"name":"X","admitted_ward":"ICU"}`); rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: expected 404, got %d", rec.Code)
	}
	if rec := s.Do(http.MethodPut, "/api/v1/reception/sos-patients/SOS2301", "R001", `{"name":"X"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing ward: expected 400, got %d", rec.Code)
	}
	if rec := s.Do(http.MethodPut, "/api/v1/reception/sos-patients/SOS2301", "D001", `{"name":"X","admitted_ward":"ICU"}`); rec.Code != http.StatusForbidden {
		t.Errorf("doctor: expected 403, got %d", rec.Code)
	}
}

func TestReception_BookingGap(t *testing.T) {
	s := newServer(t)
	book := func(clock string) int {
		return s.Do(http.MethodPost, "/api/v1/reception/appointments", "R001",
			`{"patient_id":"P1234","doctor_id":"D001","date":"2025-03-21","time":"`+clock+`"}`).Code
	}

	if got := book("10:00"); got != http.StatusCreated {
		t.Fatalf("10:00: expected 201, got %d", got)
	}
	if got := book("10:04"); got != http.StatusConflict {
		t.Errorf("10:04: expected 409, got %d", got)
	}
	if got := book("10:05"); got != http.StatusCreated {
		t.Errorf("10:05: expected 201, got %d", got)
	}

	rec := s.Do(http.MethodGet, "/api/v1/reception/appointments?date=2025-03-21&status=Scheduled", "R001", "")
	var page hmstest.Page[hospital.Appointment]
	hmstest.Decode(t, rec, &page)
	if page.Total != 2 {
		t.Fatalf("expected 2 scheduled appointments, got %d", page.Total)
	}
	if page.Data[0].PatientName != "John Doe" || page.Data[0].DoctorName != "Dr. Evelyn Reed" {
		t.Errorf("names not snapshotted: %+v", page.Data[0])
	}
	if !strings.HasPrefix(s.LastAction(), "Booked appointment ") {
		t.Errorf("unexpected audit action %q", s.LastAction())
	}
}

func TestReception_BookingRejections(t *testing.T) {
	s := newServer(t)
	if _, err := s.Store.UpdateDoctorAvailability(t.Context(), "D001", hospital.OnLeave); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tests := []struct {
		name string
		body string
		want int
	}{
		{"doctor on leave", `{"patient_id":"P1234","doctor_id":"D001","date":"2025-03-21","time":"10:00"}`, http.StatusConflict},
		{"not a doctor", `{"patient_id":"P1234","doctor_id":"R001","date":"2025-03-21","time":"10:00"}`, http.StatusConflict},
		{"unknown patient", `{"patient_id":"P0","doctor_id":"D001","date":"2025-03-21","time":"10:00"}`, http.StatusNotFound},
		{"bad time", `{"patient_id":"P1234","doctor_id":"D001","date":"2025-03-21","time":"25:00"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := s.Do(http.MethodPost, "/api/v1/reception/appointments", "R001", tt.body); rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestReception_AppointmentStatus(t *testing.T) {
	s := newServer(t)
	a, err := s.Store.BookAppointment(t.Context(), hospital.AppointmentRequest{PatientID: "P5678", DoctorID: "D001", Date: "2025-03-21", Time: "11:00"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	path := "/api/v1/reception/appointments/" + a.ID + "/status"

	if rec := s.Do(http.MethodPatch, path, "R001", `{"status":"Cancelled"}`); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := s.Do(http.MethodPatch, path, "R001", `{"status":"Checked"}`); rec.Code != http.StatusConflict {
		t.Errorf("cancelled appointment: expected 409, got %d", rec.Code)
	}
	if s.LastAction() != "Marked appointment "+a.ID+" as Cancelled" {
		t.Errorf("unexpected audit action %q", s.LastAction())
	}
}
