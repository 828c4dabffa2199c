package admin

import (
	"time"

	"github.com/google/uuid"
)

// Admin is a back-office account. The first admin is created from
// configuration at startup.
type Admin struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
