package admin

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/carebridge/hms/internal/domain/appointment"
	"github.com/carebridge/hms/internal/platform/auth"
)

var (
	// ErrNotFound is returned when no admin matches the lookup.
	ErrNotFound = errors.New("admin not found")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Counter reports how many rows a domain holds. Satisfied by the
// doctor, identity and appointment repositories.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// CounterFunc adapts a plain function to Counter.
type CounterFunc func(ctx context.Context) (int, error)

func (f CounterFunc) Count(ctx context.Context) (int, error) { return f(ctx) }

// LatestSource supplies the most recent appointments for the dashboard.
type LatestSource interface {
	Latest(ctx context.Context, n int) ([]*appointment.Appointment, error)
}

type Service struct {
	repo     Repository
	doctors  Counter
	patients Counter
	appts    Counter
	latest   LatestSource
	log      zerolog.Logger
}

func NewService(repo Repository, doctors, patients, appts Counter, latest LatestSource, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		doctors:  doctors,
		patients: patients,
		appts:    appts,
		latest:   latest,
		log:      log,
	}
}

// Authenticate checks admin credentials and records the login time.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Admin, error) {
	a, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(a.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if err := s.repo.TouchLastLogin(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to record admin login time")
	}
	return a, nil
}

// EnsureBootstrapAdmin creates the configured admin account if it does
// not exist yet. Safe to run on every startup.
func (s *Service) EnsureBootstrapAdmin(ctx context.Context, name, email, password string) error {
	if email == "" || password == "" {
		return errors.New("bootstrap admin email and password are required")
	}
	if !strings.Contains(email, "@") {
		return errors.New("bootstrap admin email is invalid")
	}

	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		s.log.Debug().Str("email", email).Msg("bootstrap admin already exists")
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if name == "" {
		name = "Administrator"
	}
	if err := s.repo.Create(ctx, &Admin{Name: name, Email: email, PasswordHash: hash}); err != nil {
		return err
	}
	s.log.Info().Str("email", email).Msg("bootstrap admin created")
	return nil
}

// DashboardStats is the admin landing-page summary.
type DashboardStats struct {
	Doctors            int                        `json:"doctors"`
	Patients           int                        `json:"patients"`
	Appointments       int                        `json:"appointments"`
	LatestAppointments []*appointment.Appointment `json:"latest_appointments"`
}

func (s *Service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	var err error
	if stats.Doctors, err = s.doctors.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Patients, err = s.patients.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Appointments, err = s.appts.Count(ctx); err != nil {
		return nil, err
	}
	if stats.LatestAppointments, err = s.latest.Latest(ctx, 5); err != nil {
		return nil, err
	}
	if stats.LatestAppointments == nil {
		stats.LatestAppointments = []*appointment.Appointment{}
	}
	return stats, nil
}
