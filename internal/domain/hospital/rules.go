package hospital

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// MinAppointmentGap is the smallest allowed distance between two scheduled
// appointments of one doctor on one day.
const MinAppointmentGap = 5

func minutesOfDay(clock string) (int, error) {
	t, err := time.Parse(timeLayout, clock)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// CheckSchedule decides whether doctor can take a new appointment at
// date/clock given the existing appointments. Only Scheduled appointments of
// the same doctor on the same date count; a gap of exactly
// MinAppointmentGap minutes is allowed.
func CheckSchedule(doctor StaffMember, existing []Appointment, date, clock string) error {
	if !doctor.IsDoctor() {
		return fmt.Errorf("%s: %w", doctor.ID, ErrNotDoctor)
	}
	if doctor.Doctor.Availability != Available {
		return fmt.Errorf("%s is %s: %w", doctor.Name, strings.ToLower(string(doctor.Doctor.Availability)), ErrDoctorUnavailable)
	}
	candidate, err := minutesOfDay(clock)
	if err != nil {
		return invalid("time", "must be HH:MM")
	}
	for _, a := range existing {
		if a.DoctorID != doctor.ID || a.Date != date || a.Status != AppointmentScheduled {
			continue
		}
		booked, err := minutesOfDay(a.Time)
		if err != nil {
			continue
		}
		diff := booked - candidate
		if diff < 0 {
			diff = -diff
		}
		if diff < MinAppointmentGap {
			return fmt.Errorf("%s at %s conflicts with %s: %w", date, clock, a.Time, ErrScheduleConflict)
		}
	}
	return nil
}

// CanManageStaff reports whether actor may edit or remove target from the
// staff management screens. Nobody manages their own record; Master manages
// everyone else; Admin manages only non-administrative roles.
func CanManageStaff(actor, target StaffMember) bool {
	if actor.ID == target.ID {
		return false
	}
	return CanAssignRole(actor, target.Role)
}

// CanAssignRole reports whether actor may create a member with role, or move
// an existing member into it.
func CanAssignRole(actor StaffMember, role Role) bool {
	switch actor.Role {
	case RoleMaster:
		return role.Valid()
	case RoleAdmin:
		return role == RoleReceptionist || role == RoleDoctor || role == RolePharmacy
	}
	return false
}

// AssignableRoles lists the roles actor may hand out.
func AssignableRoles(actor StaffMember) []Role {
	var out []Role
	for _, r := range AllRoles {
		if CanAssignRole(actor, r) {
			out = append(out, r)
		}
	}
	return out
}

// CanDecideLeave reports whether actor may accept or decline app: never their
// own application, and only while it is still pending.
func CanDecideLeave(actor StaffMember, app LeaveApplication) bool {
	if actor.Role != RoleAdmin && actor.Role != RoleMaster {
		return false
	}
	return app.StaffID != actor.ID && app.Status == LeavePending
}

// CleanEntries trims entries and drops the blank ones.
func CleanEntries(in []string) []string {
	out := make([]string, 0, len(in))
	for _, e := range in {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

// ReportPatch updates a patient's clinical lists. A nil field is left as is.
type ReportPatch struct {
	Diagnosis     *[]string `json:"diagnosis,omitempty"`
	Prescriptions *[]string `json:"prescriptions,omitempty"`
	Instructions  *[]string `json:"instructions,omitempty"`
}

func (p ReportPatch) apply(n ClinicalNotes) ClinicalNotes {
	n = cloneNotes(n)
	if p.Diagnosis != nil {
		n.Diagnosis = CleanEntries(*p.Diagnosis)
	}
	if p.Prescriptions != nil {
		n.Prescriptions = CleanEntries(*p.Prescriptions)
	}
	if p.Instructions != nil {
		n.Instructions = CleanEntries(*p.Instructions)
	}
	return n
}

// roundCents rounds an amount to two decimal places.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
