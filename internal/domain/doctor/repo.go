package doctor

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetByEmail(ctx context.Context, email string) (*Doctor, error)
	List(ctx context.Context) ([]*Doctor, error)
	Count(ctx context.Context) (int, error)
	UpdateAvailability(ctx context.Context, id uuid.UUID, available bool) error
	UpdateProfile(ctx context.Context, d *Doctor) error
	UpdateSlots(ctx context.Context, id uuid.UUID, slots map[string][]string) error
}
