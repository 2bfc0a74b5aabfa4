package hospital

import (
	"context"
	"fmt"
)

// AppointmentRequest asks for a new appointment. Patient and doctor names are
// snapshotted from the store when the appointment is booked.
type AppointmentRequest struct {
	PatientID string `json:"patient_id"`
	DoctorID  string `json:"doctor_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

func (s *Store) appointmentIDTaken(id string) bool {
	return indexOf(s.appointments, id, appointmentID) >= 0
}

// AddAppointment stores a as given, without the scheduling checks. New
// appointments are listed first. Use BookAppointment for requests coming from
// reception.
func (s *Store) AddAppointment(_ context.Context, a Appointment) (Appointment, error) {
	if err := validateSlot(a.Date, a.Time); err != nil {
		return Appointment{}, err
	}
	if a.Status == "" {
		a.Status = AppointmentScheduled
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = s.ids.nextFree(prefixAppointment, s.appointmentIDTaken)
	s.appointments = withPrepended(s.appointments, a)
	return a, nil
}

// BookAppointment resolves the patient and doctor, runs CheckSchedule against
// the current appointments and inserts the new Scheduled appointment, all
// under one lock so two concurrent bookings cannot both pass the check.
func (s *Store) BookAppointment(_ context.Context, req AppointmentRequest) (Appointment, error) {
	if blank(req.PatientID) {
		return Appointment{}, invalid("patient_id", "is required")
	}
	if blank(req.DoctorID) {
		return Appointment{}, invalid("doctor_id", "is required")
	}
	if err := validateSlot(req.Date, req.Time); err != nil {
		return Appointment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	pi := indexOf(s.patients, req.PatientID, patientID)
	if pi < 0 {
		return Appointment{}, notFound("patient", req.PatientID)
	}
	di := indexOf(s.staff, req.DoctorID, staffID)
	if di < 0 {
		return Appointment{}, notFound("doctor", req.DoctorID)
	}
	doctor := s.staff[di]
	if err := CheckSchedule(doctor, s.appointments, req.Date, req.Time); err != nil {
		return Appointment{}, err
	}

	a := Appointment{
		ID:          s.ids.nextFree(prefixAppointment, s.appointmentIDTaken),
		PatientID:   req.PatientID,
		PatientName: s.patients[pi].Name,
		DoctorID:    doctor.ID,
		DoctorName:  doctor.Name,
		Date:        req.Date,
		Time:        req.Time,
		Status:      AppointmentScheduled,
	}
	s.appointments = withPrepended(s.appointments, a)
	return a, nil
}

// UpdateAppointmentStatus moves a Scheduled appointment to Cancelled or
// Checked. Any other transition fails with ErrInvalidTransition.
func (s *Store) UpdateAppointmentStatus(_ context.Context, id string, status AppointmentStatus) (Appointment, error) {
	if status != AppointmentCancelled && status != AppointmentChecked {
		return Appointment{}, fmt.Errorf("to %q: %w", status, ErrInvalidTransition)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.appointments, id, appointmentID)
	if i < 0 {
		return Appointment{}, notFound("appointment", id)
	}
	a := s.appointments[i]
	if a.Status != AppointmentScheduled {
		return Appointment{}, fmt.Errorf("%s is %s: %w", id, a.Status, ErrInvalidTransition)
	}
	a.Status = status
	s.appointments = withReplaced(s.appointments, i, a)
	return a, nil
}

// Appointments lists every appointment, newest first.
func (s *Store) Appointments() []Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.appointments, same[Appointment])
}

// Appointment returns the appointment with id.
func (s *Store) Appointment(id string) (Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.appointments, id, appointmentID)
	if i < 0 {
		return Appointment{}, notFound("appointment", id)
	}
	return s.appointments[i], nil
}

// AppointmentsOfDoctor lists the appointments booked with doctorID.
func (s *Store) AppointmentsOfDoctor(doctorID string) []Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Appointment
	for _, a := range s.appointments {
		if a.DoctorID == doctorID {
			out = append(out, a)
		}
	}
	return out
}
