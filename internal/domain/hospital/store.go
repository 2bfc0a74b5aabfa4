package hospital

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Store is the single source of truth for every hospital collection. All
// collections share one lock, so each exported method, compound ones
// included, is atomic with respect to every other. Mutations build a fresh
// slice and swap it in; reads hand out deep copies.
type Store struct {
	mu        sync.RWMutex
	ids       *IDGenerator
	nowFn     func() time.Time
	persister StaffPersister
	logger    zerolog.Logger

	patients          []Patient
	sosPatients       []SosPatient
	appointments      []Appointment
	staff             []StaffMember
	recycledStaff     []StaffMember
	leaves            []LeaveApplication
	auditLogs         []AuditLog
	medicines         []Medicine
	recycledMedicines []Medicine
	bills             []Bill
	wards             []Ward
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for timestamps and id seeding.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.nowFn = now }
}

// WithIDGenerator replaces the generator NewStore would seed from the clock.
func WithIDGenerator(g *IDGenerator) Option {
	return func(s *Store) { s.ids = g }
}

// WithStaffPersister makes every staff mutation write through to p before it
// becomes visible. A failed write leaves the store unchanged.
func WithStaffPersister(p StaffPersister) Option {
	return func(s *Store) { s.persister = p }
}

// WithLogger sets the logger used for staff persistence events.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithSeed loads the given collections as the initial state.
func WithSeed(seed Seed) Option {
	return func(s *Store) {
		s.patients = cloneSlice(seed.Patients, clonePatient)
		s.sosPatients = cloneSlice(seed.SosPatients, cloneSosPatient)
		s.appointments = append([]Appointment(nil), seed.Appointments...)
		s.staff = cloneSlice(seed.Staff, normalizeStaff)
		s.leaves = append([]LeaveApplication(nil), seed.LeaveApplications...)
		s.auditLogs = append([]AuditLog(nil), seed.AuditLogs...)
		s.medicines = append([]Medicine(nil), seed.Medicines...)
		s.wards = append([]Ward(nil), seed.Wards...)
	}
}

// NewStore builds an empty store, or a seeded one with WithSeed. Without
// WithIDGenerator, ids are seeded from the store clock.
func NewStore(opts ...Option) *Store {
	s := &Store{
		nowFn:  time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		s.ids = NewIDGenerator(s.nowFn())
	}
	return s
}

// LoadStaff replaces the staff collections with the persisted ones. When
// nothing has been persisted yet, the current (seeded) staff is written out
// instead so the next start sees the same records.
func (s *Store) LoadStaff(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	active, recycled, err := s.persister.LoadStaff(ctx)
	if err != nil {
		return fmt.Errorf("load staff: %w", err)
	}
	if len(active) == 0 && len(recycled) == 0 {
		if err := s.persister.SaveStaff(ctx, s.staff, s.recycledStaff); err != nil {
			return fmt.Errorf("save seeded staff: %w", err)
		}
		s.logger.Info().Int("staff", len(s.staff)).Msg("persisted seed staff")
		return nil
	}
	s.staff = cloneSlice(active, normalizeStaff)
	s.recycledStaff = cloneSlice(recycled, normalizeStaff)
	s.logger.Info().Int("staff", len(s.staff)).Int("recycled", len(s.recycledStaff)).Msg("loaded persisted staff")
	return nil
}

func (s *Store) now() time.Time {
	return s.nowFn().UTC()
}

// -- copy-on-write helpers --

func cloneSlice[T any](in []T, clone func(T) T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = clone(v)
	}
	return out
}

func indexOf[T any](items []T, id string, key func(*T) string) int {
	for i := range items {
		if key(&items[i]) == id {
			return i
		}
	}
	return -1
}

func withAppended[T any](items []T, v T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, items...)
	return append(out, v)
}

func withPrepended[T any](items []T, v T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, v)
	return append(out, items...)
}

func withReplaced[T any](items []T, i int, v T) []T {
	out := make([]T, len(items))
	copy(out, items)
	out[i] = v
	return out
}

func withRemoved[T any](items []T, i int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneNotes(n ClinicalNotes) ClinicalNotes {
	return ClinicalNotes{
		Diagnosis:     cloneStrings(n.Diagnosis),
		Prescriptions: cloneStrings(n.Prescriptions),
		Instructions:  cloneStrings(n.Instructions),
	}
}

func clonePatient(p Patient) Patient {
	p.ClinicalNotes = cloneNotes(p.ClinicalNotes)
	return p
}

func cloneSosPatient(p SosPatient) SosPatient {
	p.ClinicalNotes = cloneNotes(p.ClinicalNotes)
	return p
}

func cloneStaff(m StaffMember) StaffMember {
	if m.Doctor != nil {
		d := *m.Doctor
		m.Doctor = &d
	}
	return m
}

func cloneBill(b Bill) Bill {
	b.Medicines = append([]BilledMedicine(nil), b.Medicines...)
	return b
}

func same[T any](v T) T { return v }

func patientID(p *Patient) string { return p.ID }
func sosPatientID(p *SosPatient) string { return p.ID }
func appointmentID(a *Appointment) string { return a.ID }
func staffID(m *StaffMember) string { return m.ID }
func leaveID(l *LeaveApplication) string { return l.ID }
func medicineID(m *Medicine) string { return m.ID }
func wardID(w *Ward) string { return w.ID }
