package identity

import (
	"context"

	"github.com/google/uuid"
)

// Repository spans both identity schemas. Email uniqueness across the
// two tables is enforced in the service on top of per-table lookups.
type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, u *User) error
	ListUsers(ctx context.Context) ([]*User, error)

	CreatePatient(ctx context.Context, p *PatientRecord) error
	GetPatientByID(ctx context.Context, id uuid.UUID) (*PatientRecord, error)
	GetPatientByEmail(ctx context.Context, email string) (*PatientRecord, error)
	GetPatientByUHID(ctx context.Context, uhid string) (*PatientRecord, error)
	UpdatePatient(ctx context.Context, p *PatientRecord) error
	ListPatients(ctx context.Context) ([]*PatientRecord, error)

	// CountIdentities is the combined users + patients total.
	CountIdentities(ctx context.Context) (int, error)
}
