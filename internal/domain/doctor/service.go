package doctor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/carebridge/hms/internal/platform/auth"
)

// ErrNotFound is returned when no doctor matches the lookup.
var ErrNotFound = errors.New("doctor not found")

// ErrDuplicateEmail is returned when a doctor already uses the email.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrInvalidCredentials is returned on a failed login.
var ErrInvalidCredentials = errors.New("invalid credentials")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// AddDoctor registers a new practitioner. The plain password is hashed
// before it ever reaches the repository.
func (s *Service) AddDoctor(ctx context.Context, d *Doctor, password string) error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !strings.Contains(d.Email, "@") {
		return fmt.Errorf("invalid email: %s", d.Email)
	}
	if d.Speciality == "" {
		return fmt.Errorf("speciality is required")
	}
	if d.Degree == "" {
		return fmt.Errorf("degree is required")
	}
	if d.Fees < 0 {
		return fmt.Errorf("fees must not be negative")
	}

	if _, err := s.repo.GetByEmail(ctx, d.Email); err == nil {
		return ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	d.PasswordHash = hash
	d.Available = true
	return s.repo.Create(ctx, d)
}

// Authenticate checks a doctor's credentials and returns the doctor on
// success.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Doctor, error) {
	d, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(d.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns the public directory. Password hashes never leave the
// model thanks to the json tag, and booked slots are stripped here.
func (s *Service) List(ctx context.Context) ([]*Doctor, error) {
	docs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		d.SlotsBooked = nil
	}
	return docs, nil
}

// ToggleAvailability flips whether the doctor accepts new bookings.
func (s *Service) ToggleAvailability(ctx context.Context, id uuid.UUID) (bool, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	next := !d.Available
	if err := s.repo.UpdateAvailability(ctx, id, next); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, err
	}
	return next, nil
}

// UpdateProfile applies an edit to the doctor's own listing. Email and
// password are not editable through this path.
func (s *Service) UpdateProfile(ctx context.Context, d *Doctor) error {
	if d.ID == uuid.Nil {
		return fmt.Errorf("id is required")
	}
	current, err := s.repo.GetByID(ctx, d.ID)
	if err != nil {
		return err
	}
	d.Email = current.Email
	d.PasswordHash = current.PasswordHash
	if d.Name == "" {
		d.Name = current.Name
	}
	if d.Fees < 0 {
		return fmt.Errorf("fees must not be negative")
	}
	return s.repo.UpdateProfile(ctx, d)
}
