package hospital

import (
	"context"
	"fmt"
	"strings"
)

// normalizeStaff keeps the doctor payload in step with the role: doctors
// always carry a profile, everybody else never does.
func normalizeStaff(m StaffMember) StaffMember {
	m = cloneStaff(m)
	if m.Role != RoleDoctor {
		m.Doctor = nil
		return m
	}
	if m.Doctor == nil {
		m.Doctor = &DoctorProfile{}
	}
	if m.Doctor.Availability == "" {
		m.Doctor.Availability = Available
	}
	return m
}

// commitStaff writes the new roster through the persister, then swaps it in.
// Caller holds s.mu.
func (s *Store) commitStaff(ctx context.Context, active, recycled []StaffMember) error {
	if s.persister != nil {
		if err := s.persister.SaveStaff(ctx, active, recycled); err != nil {
			s.logger.Error().Err(err).Msg("persist staff")
			return fmt.Errorf("persist staff: %w", err)
		}
	}
	s.staff = active
	s.recycledStaff = recycled
	return nil
}

// usernameTaken checks active and recycled records, since a recycled member
// can be restored. Caller holds s.mu.
func (s *Store) usernameTaken(username, exceptID string) bool {
	for _, set := range [][]StaffMember{s.staff, s.recycledStaff} {
		for _, m := range set {
			if m.ID != exceptID && strings.EqualFold(m.Username, username) {
				return true
			}
		}
	}
	return false
}

func (s *Store) staffIDTaken(id string) bool {
	return indexOf(s.staff, id, staffID) >= 0 || indexOf(s.recycledStaff, id, staffID) >= 0
}

// AddStaff assigns a role-prefixed id and appends the member.
func (s *Store) AddStaff(ctx context.Context, m StaffMember) (StaffMember, error) {
	if err := ValidateStaff(m); err != nil {
		return StaffMember{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.usernameTaken(m.Username, "") {
		return StaffMember{}, fmt.Errorf("%s: %w", m.Username, ErrUsernameTaken)
	}
	m = normalizeStaff(m)
	m.ID = s.ids.nextFree(m.Role.IDPrefix(), s.staffIDTaken)
	if err := s.commitStaff(ctx, withAppended(s.staff, m), s.recycledStaff); err != nil {
		return StaffMember{}, err
	}
	return cloneStaff(m), nil
}

// UpdateStaff replaces the active record with the same id. An empty password
// hash keeps the stored one.
func (s *Store) UpdateStaff(ctx context.Context, m StaffMember) (StaffMember, error) {
	if err := ValidateStaff(m); err != nil {
		return StaffMember{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceStaffLocked(ctx, m)
}

func (s *Store) replaceStaffLocked(ctx context.Context, m StaffMember) (StaffMember, error) {
	i := indexOf(s.staff, m.ID, staffID)
	if i < 0 {
		return StaffMember{}, notFound("staff", m.ID)
	}
	if s.usernameTaken(m.Username, m.ID) {
		return StaffMember{}, fmt.Errorf("%s: %w", m.Username, ErrUsernameTaken)
	}
	if m.PasswordHash == "" {
		m.PasswordHash = s.staff[i].PasswordHash
	}
	m = normalizeStaff(m)
	if err := s.commitStaff(ctx, withReplaced(s.staff, i, m), s.recycledStaff); err != nil {
		return StaffMember{}, err
	}
	return cloneStaff(m), nil
}

// MutateStaff applies fn to the current stored record and saves the result,
// all under the store lock. fn must not change the id.
func (s *Store) MutateStaff(ctx context.Context, id string, fn func(*StaffMember) error) (StaffMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.staff, id, staffID)
	if i < 0 {
		return StaffMember{}, notFound("staff", id)
	}
	m := cloneStaff(s.staff[i])
	if err := fn(&m); err != nil {
		return StaffMember{}, err
	}
	m.ID = id
	if err := ValidateStaff(m); err != nil {
		return StaffMember{}, err
	}
	return s.replaceStaffLocked(ctx, m)
}

// RemoveStaff moves an active member to the recycle bin.
func (s *Store) RemoveStaff(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.staff, id, staffID)
	if i < 0 {
		return notFound("staff", id)
	}
	return s.commitStaff(ctx, withRemoved(s.staff, i), withAppended(s.recycledStaff, s.staff[i]))
}

// RestoreStaff moves a recycled member back to the active roster.
func (s *Store) RestoreStaff(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.recycledStaff, id, staffID)
	if i < 0 {
		return notFound("recycled staff", id)
	}
	return s.commitStaff(ctx, withAppended(s.staff, s.recycledStaff[i]), withRemoved(s.recycledStaff, i))
}

// PermanentlyDeleteStaff erases a recycled member.
func (s *Store) PermanentlyDeleteStaff(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.recycledStaff, id, staffID)
	if i < 0 {
		return notFound("recycled staff", id)
	}
	return s.commitStaff(ctx, s.staff, withRemoved(s.recycledStaff, i))
}

// UpdateDoctorAvailability sets a doctor's availability. Other roles get
// ErrNotDoctor.
func (s *Store) UpdateDoctorAvailability(ctx context.Context, id string, a Availability) (StaffMember, error) {
	if !a.Valid() {
		return StaffMember{}, invalid("availability", fmt.Sprintf("unknown availability %q", a))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.staff, id, staffID)
	if i < 0 {
		return StaffMember{}, notFound("staff", id)
	}
	m := cloneStaff(s.staff[i])
	if !m.IsDoctor() {
		return StaffMember{}, fmt.Errorf("%s: %w", id, ErrNotDoctor)
	}
	m.Doctor.Availability = a
	if err := s.commitStaff(ctx, withReplaced(s.staff, i, m), s.recycledStaff); err != nil {
		return StaffMember{}, err
	}
	return cloneStaff(m), nil
}

// Staff lists the active members.
func (s *Store) Staff() []StaffMember {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.staff, cloneStaff)
}

// Doctors is Staff filtered to the Doctor role.
func (s *Store) Doctors() []StaffMember {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []StaffMember
	for _, m := range s.staff {
		if m.Role == RoleDoctor {
			out = append(out, cloneStaff(m))
		}
	}
	return out
}

// RecycledStaff lists the staff recycle bin.
func (s *Store) RecycledStaff() []StaffMember {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.recycledStaff, cloneStaff)
}

// StaffMember returns the active member with id. Recycled members are not
// found.
func (s *Store) StaffMember(id string) (StaffMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.staff, id, staffID)
	if i < 0 {
		return StaffMember{}, notFound("staff", id)
	}
	return cloneStaff(s.staff[i]), nil
}

// StaffByUsername looks up an active member case-insensitively.
func (s *Store) StaffByUsername(username string) (StaffMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.staff {
		if strings.EqualFold(m.Username, username) {
			return cloneStaff(m), nil
		}
	}
	return StaffMember{}, notFound("username", username)
}
