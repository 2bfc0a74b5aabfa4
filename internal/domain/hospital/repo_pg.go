package hospital

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Staff roster (Postgres) ===========

type staffPersisterPG struct{ pool *pgxpool.Pool }

// NewStaffPersisterPG stores the roster in the staff_member table.
func NewStaffPersisterPG(pool *pgxpool.Pool) StaffPersister {
	return &staffPersisterPG{pool: pool}
}

func (r *staffPersisterPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const staffCols = `id, name, role, username, email, gender, contact,
	profile_picture, specialty, availability, password_hash, recycled`

func (r *staffPersisterPG) LoadStaff(ctx context.Context) (active, recycled []StaffMember, err error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+staffCols+` FROM staff_member ORDER BY position`)
	if err != nil {
		return nil, nil, fmt.Errorf("query staff: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			m                       StaffMember
			specialty, availability *string
			isRecycled              bool
		)
		if err := rows.Scan(&m.ID, &m.Name, &m.Role, &m.Username, &m.Email, &m.Gender, &m.Contact,
			&m.ProfilePicture, &specialty, &availability, &m.PasswordHash, &isRecycled); err != nil {
			return nil, nil, fmt.Errorf("scan staff: %w", err)
		}
		if m.Role == RoleDoctor {
			m.Doctor = &DoctorProfile{}
			if specialty != nil {
				m.Doctor.Specialty = *specialty
			}
			if availability != nil {
				m.Doctor.Availability = Availability(*availability)
			}
		}
		if isRecycled {
			recycled = append(recycled, m)
		} else {
			active = append(active, m)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate staff: %w", err)
	}
	return active, recycled, nil
}

// SaveStaff rewrites the table in one transaction, so readers see either the
// old roster or the new one.
func (r *staffPersisterPG) SaveStaff(ctx context.Context, active, recycled []StaffMember) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		tx := db.TxFromContext(ctx)
		if _, err := tx.Exec(ctx, `DELETE FROM staff_member`); err != nil {
			return fmt.Errorf("clear staff: %w", err)
		}
		rows := make([][]interface{}, 0, len(active)+len(recycled))
		add := func(set []StaffMember, isRecycled bool) {
			for _, m := range set {
				var specialty, availability *string
				if m.Doctor != nil {
					sp, av := m.Doctor.Specialty, string(m.Doctor.Availability)
					specialty, availability = &sp, &av
				}
				rows = append(rows, []interface{}{
					m.ID, m.Name, string(m.Role), m.Username, m.Email, m.Gender, m.Contact,
					m.ProfilePicture, specialty, availability, m.PasswordHash, isRecycled, len(rows),
				})
			}
		}
		add(active, false)
		add(recycled, true)

		_, err := tx.CopyFrom(ctx, pgx.Identifier{"staff_member"}, []string{
			"id", "name", "role", "username", "email", "gender", "contact",
			"profile_picture", "specialty", "availability", "password_hash", "recycled", "position",
		}, pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("copy staff: %w", err)
		}
		return nil
	})
}
