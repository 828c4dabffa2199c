package appointment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	List(ctx context.Context) ([]*Appointment, error)
	ListByIdentity(ctx context.Context, identityID uuid.UUID) ([]*Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error)
	Count(ctx context.Context) (int, error)
	Latest(ctx context.Context, n int) ([]*Appointment, error)
	SetCancelled(ctx context.Context, id uuid.UUID, cancelled bool) error
	SetCompleted(ctx context.Context, id uuid.UUID, completed bool) error
}
