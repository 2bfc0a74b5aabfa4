package hospital

import (
	"context"
	"fmt"
)

func (s *Store) leaveIDTaken(id string) bool {
	return indexOf(s.leaves, id, leaveID) >= 0
}

// AddLeaveApplication files a Pending application on behalf of applicant,
// snapshotting the applicant's id, name and role.
func (s *Store) AddLeaveApplication(_ context.Context, in LeaveInput, applicant StaffMember) (LeaveApplication, error) {
	if blank(applicant.ID) {
		return LeaveApplication{}, invalid("staff_id", "is required")
	}
	if err := ValidateLeave(in); err != nil {
		return LeaveApplication{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	l := LeaveApplication{
		ID:        s.ids.nextFree(prefixLeave, s.leaveIDTaken),
		StaffID:   applicant.ID,
		StaffName: applicant.Name,
		StaffRole: applicant.Role,
		Type:      in.Type,
		Reason:    in.Reason,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Status:    LeavePending,
	}
	s.leaves = withPrepended(s.leaves, l)
	return l, nil
}

// UpdateLeaveApplicationStatus moves a Pending application to Accepted or
// Declined. Decided applications are final.
func (s *Store) UpdateLeaveApplicationStatus(_ context.Context, id string, status LeaveStatus) (LeaveApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLeaveStatusLocked(id, status, nil)
}

// DecideLeave is UpdateLeaveApplicationStatus with the CanDecideLeave guard
// evaluated against the stored application under the same lock.
func (s *Store) DecideLeave(_ context.Context, actor StaffMember, id string, status LeaveStatus) (LeaveApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLeaveStatusLocked(id, status, &actor)
}

func (s *Store) setLeaveStatusLocked(id string, status LeaveStatus, actor *StaffMember) (LeaveApplication, error) {
	if status != LeaveAccepted && status != LeaveDeclined {
		return LeaveApplication{}, fmt.Errorf("to %q: %w", status, ErrInvalidTransition)
	}
	i := indexOf(s.leaves, id, leaveID)
	if i < 0 {
		return LeaveApplication{}, notFound("leave application", id)
	}
	l := s.leaves[i]
	if l.Status != LeavePending {
		return LeaveApplication{}, fmt.Errorf("%s is %s: %w", id, l.Status, ErrInvalidTransition)
	}
	if actor != nil && !CanDecideLeave(*actor, l) {
		return LeaveApplication{}, fmt.Errorf("decide leave %s: %w", id, ErrForbidden)
	}
	l.Status = status
	s.leaves = withReplaced(s.leaves, i, l)
	return l, nil
}

// LeaveApplications lists every application, newest first.
func (s *Store) LeaveApplications() []LeaveApplication {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.leaves, same[LeaveApplication])
}

// LeaveApplicationsOf lists the applications filed by staffID.
func (s *Store) LeaveApplicationsOf(staffID string) []LeaveApplication {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []LeaveApplication
	for _, l := range s.leaves {
		if l.StaffID == staffID {
			out = append(out, l)
		}
	}
	return out
}

// LeaveApplication returns the application with id.
func (s *Store) LeaveApplication(id string) (LeaveApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.leaves, id, leaveID)
	if i < 0 {
		return LeaveApplication{}, notFound("leave application", id)
	}
	return s.leaves[i], nil
}

// AppendAuditLog records an action. Id and timestamp are assigned by the
// store; the newest entry is listed first.
func (s *Store) AppendAuditLog(_ context.Context, entry AuditLog) (AuditLog, error) {
	if blank(entry.Action) {
		return AuditLog{}, invalid("action", "is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = s.ids.Next(prefixAuditLog)
	entry.Timestamp = s.now()
	s.auditLogs = withPrepended(s.auditLogs, entry)
	return entry, nil
}

// AuditLogs lists the trail, newest first.
func (s *Store) AuditLogs() []AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.auditLogs, same[AuditLog])
}

func (s *Store) wardIDTaken(id string) bool {
	return indexOf(s.wards, id, wardID) >= 0
}

// AddWard validates w and stores it under a fresh id.
func (s *Store) AddWard(_ context.Context, w Ward) (Ward, error) {
	if err := ValidateWard(w); err != nil {
		return Ward{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	w.ID = s.ids.nextFree(prefixWard, s.wardIDTaken)
	s.wards = withAppended(s.wards, w)
	return w, nil
}

// UpdateWard replaces the ward with w.ID.
func (s *Store) UpdateWard(_ context.Context, w Ward) (Ward, error) {
	if err := ValidateWard(w); err != nil {
		return Ward{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.wards, w.ID, wardID)
	if i < 0 {
		return Ward{}, notFound("ward", w.ID)
	}
	s.wards = withReplaced(s.wards, i, w)
	return w, nil
}

// Wards lists every ward.
func (s *Store) Wards() []Ward {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.wards, same[Ward])
}

// Ward returns the ward with id.
func (s *Store) Ward(id string) (Ward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.wards, id, wardID)
	if i < 0 {
		return Ward{}, notFound("ward", id)
	}
	return s.wards[i], nil
}

// WardOccupancy counts, for every ward, the Admitted patients whose ward is
// the ward's name plus the Admitted SOS patients whose admitted ward is.
func (s *Store) WardOccupancy() []WardOccupancy {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int, len(s.wards))
	for _, p := range s.patients {
		if p.Status == PatientAdmitted {
			counts[p.Ward]++
		}
	}
	for _, p := range s.sosPatients {
		if p.Status == PatientAdmitted {
			counts[p.AdmittedWard]++
		}
	}
	out := make([]WardOccupancy, len(s.wards))
	for i, w := range s.wards {
		out[i] = WardOccupancy{Ward: w, Occupied: counts[w.Name]}
	}
	return out
}
