package hospital

import "context"

// StaffPersister stores the whole staff roster, active and recycled, as one
// unit. The store calls SaveStaff with the complete post-mutation state.
type StaffPersister interface {
	LoadStaff(ctx context.Context) (active, recycled []StaffMember, err error)
	SaveStaff(ctx context.Context, active, recycled []StaffMember) error
}
