package hospital

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// ValidateStaff checks the required fields and the role of m.
func ValidateStaff(m StaffMember) error {
	if blank(m.Name) {
		return invalid("name", "is required")
	}
	if blank(m.Username) {
		return invalid("username", "is required")
	}
	if !m.Role.Valid() {
		return invalid("role", fmt.Sprintf("unknown role %q", m.Role))
	}
	if m.Doctor != nil && m.Doctor.Availability != "" && !m.Doctor.Availability.Valid() {
		return invalid("availability", fmt.Sprintf("unknown availability %q", m.Doctor.Availability))
	}
	return nil
}

// ValidatePatient requires a name. A blank status is allowed.
func ValidatePatient(p Patient) error {
	if blank(p.Name) {
		return invalid("name", "is required")
	}
	if p.Status != "" && !p.Status.Valid() {
		return invalid("status", fmt.Sprintf("unknown status %q", p.Status))
	}
	return nil
}

// ValidateSosPatient requires a name and a ward. SOS patients are only ever
// Admitted or Died.
func ValidateSosPatient(p SosPatient) error {
	if blank(p.Name) {
		return invalid("name", "is required")
	}
	if blank(p.AdmittedWard) {
		return invalid("admitted_ward", "is required")
	}
	if p.Status != "" && p.Status != PatientAdmitted && p.Status != PatientDied {
		return invalid("status", fmt.Sprintf("unknown status %q", p.Status))
	}
	return nil
}

// ValidateMedicine rejects negative quantities and prices.
func ValidateMedicine(m Medicine) error {
	if blank(m.Name) {
		return invalid("name", "is required")
	}
	if m.Quantity < 0 {
		return invalid("quantity", "must not be negative")
	}
	if m.BuyPrice < 0 || m.SellPrice < 0 {
		return invalid("price", "must not be negative")
	}
	return nil
}

// ValidateWard requires a name and a positive capacity.
func ValidateWard(w Ward) error {
	if blank(w.Name) {
		return invalid("name", "is required")
	}
	if w.Capacity <= 0 {
		return invalid("capacity", "must be greater than zero")
	}
	return nil
}

// ValidateLeave checks the type, the reason and that the dates are ordered.
func ValidateLeave(in LeaveInput) error {
	switch in.Type {
	case LeaveNormal, LeaveEmergency, LeaveMedical:
	default:
		return invalid("type", fmt.Sprintf("unknown leave type %q", in.Type))
	}
	if blank(in.Reason) {
		return invalid("reason", "is required")
	}
	start, err := time.Parse(dateLayout, in.StartDate)
	if err != nil {
		return invalid("start_date", "must be YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, in.EndDate)
	if err != nil {
		return invalid("end_date", "must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return invalid("end_date", "must not be before start_date")
	}
	return nil
}

func validateSlot(date, clock string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return invalid("date", "must be YYYY-MM-DD")
	}
	if _, err := minutesOfDay(clock); err != nil {
		return invalid("time", "must be HH:MM")
	}
	return nil
}
