package admin

import "context"

type Repository interface {
	Create(ctx context.Context, a *Admin) error
	GetByEmail(ctx context.Context, email string) (*Admin, error)
	TouchLastLogin(ctx context.Context, email string) error
}
