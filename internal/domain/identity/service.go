package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/carebridge/hms/internal/domain/appointment"
	"github.com/carebridge/hms/internal/domain/clinical"
	"github.com/carebridge/hms/internal/platform/auth"
)

// AppointmentSource supplies an identity's appointments, newest slot
// first. Satisfied by the appointment service.
type AppointmentSource interface {
	ListForIdentity(ctx context.Context, identityID uuid.UUID) ([]*appointment.Appointment, error)
}

// RecordSource supplies a patient's clinical records. Satisfied by the
// clinical service.
type RecordSource interface {
	ListForPatient(ctx context.Context, patientID uuid.UUID, opts clinical.Options) ([]*clinical.ClinicalRecord, error)
}

// TxRunner executes fn atomically. Wired to db.RunInTx in production;
// the default runs fn directly.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	repo  Repository
	appts AppointmentSource
	recs  RecordSource
	tx    TxRunner
}

func NewService(repo Repository, appts AppointmentSource, recs RecordSource) *Service {
	return &Service{
		repo:  repo,
		appts: appts,
		recs:  recs,
		tx:    func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) },
	}
}

func (s *Service) SetTxRunner(tx TxRunner) {
	s.tx = tx
}

// Resolve locates an id across the two schemas, generic users first.
// The returned tagged union tells callers which field names are
// authoritative. No side effects.
func (s *Service) Resolve(ctx context.Context, id uuid.UUID) (Identity, error) {
	u, err := s.repo.GetUserByID(ctx, id)
	if err == nil {
		return Identity{Source: SourceUser, User: u}, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Identity{}, err
	}

	p, err := s.repo.GetPatientByID(ctx, id)
	if err != nil {
		return Identity{}, err
	}
	return Identity{Source: SourcePatient, Patient: p}, nil
}

// AggregateView is the read-time composition returned for a patient.
// It is never persisted.
type AggregateView struct {
	Patient         PatientView                `json:"patient"`
	Appointments    []*appointment.Appointment `json:"appointments"`
	ClinicalRecords []*clinical.ClinicalRecord `json:"clinical_records"`
}

// Aggregate resolves the identity, then fetches its appointments and
// clinical records concurrently. Zero related rows is a valid result;
// any fetch failure fails the whole aggregate rather than returning a
// partial view.
func (s *Service) Aggregate(ctx context.Context, id uuid.UUID) (*AggregateView, error) {
	ident, err := s.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		appts []*appointment.Appointment
		recs  []*clinical.ClinicalRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		appts, err = s.appts.ListForIdentity(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		recs, err = s.recs.ListForPatient(gctx, id, clinical.Options{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if appts == nil {
		appts = []*appointment.Appointment{}
	}
	if recs == nil {
		recs = []*clinical.ClinicalRecord{}
	}
	return &AggregateView{
		Patient:         Normalize(ident, time.Now()),
		Appointments:    appts,
		ClinicalRecords: recs,
	}, nil
}

// Register is the self-signup path, creating a generic users row.
func (s *Service) Register(ctx context.Context, name, email, password string) (*User, error) {
	ve := &ValidationError{}
	if name == "" {
		ve.add("name is required")
	}
	if !strings.Contains(email, "@") {
		ve.add("invalid email")
	}
	if len(password) < 8 {
		ve.add("password must be at least 8 characters")
	}
	if err := ve.orNil(); err != nil {
		return nil, err
	}
	if err := s.checkEmailFree(ctx, email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &User{Name: name, Email: email, PasswordHash: hash}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks user credentials and returns the user on success.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

var tenDigits = regexp.MustCompile(`^\d{10}$`)
var sixDigits = regexp.MustCompile(`^\d{6}$`)

func validatePatient(p *PatientRecord) error {
	ve := &ValidationError{}
	if p.PatientName == "" {
		ve.add("patient_name is required")
	}
	if p.UHID == "" {
		ve.add("uhid is required")
	}
	if !strings.Contains(p.Email, "@") {
		ve.add("invalid email")
	}
	if !tenDigits.MatchString(p.Phone) {
		ve.add("phone must be 10 digits")
	}
	if !validGenders[p.Gender] {
		ve.add("gender must be Male, Female or Other")
	}
	if p.BloodGroup != "" && !validBloodGroups[p.BloodGroup] {
		ve.add(fmt.Sprintf("invalid blood group: %s", p.BloodGroup))
	}
	if p.Address.ZipCode != "" && !sixDigits.MatchString(p.Address.ZipCode) {
		ve.add("zip_code must be 6 digits")
	}
	if p.MedicalInfo.Height < 0 || p.MedicalInfo.Height > 300 {
		ve.add("height must be between 0 and 300")
	}
	if p.MedicalInfo.Weight < 0 || p.MedicalInfo.Weight > 500 {
		ve.add("weight must be between 0 and 500")
	}
	if ec := p.MedicalInfo.EmergencyContact.Phone; ec != "" && !tenDigits.MatchString(ec) {
		ve.add("emergency contact phone must be 10 digits")
	}
	if p.InsuranceStatus != "" && !validInsuranceStatuses[p.InsuranceStatus] {
		ve.add(fmt.Sprintf("invalid insurance status: %s", p.InsuranceStatus))
	}
	if p.OrganDonorStatus != "" && !validOrganDonorStatuses[p.OrganDonorStatus] {
		ve.add(fmt.Sprintf("invalid organ donor status: %s", p.OrganDonorStatus))
	}
	return ve.orNil()
}

// CreatePatient is the admin entry path. When loginPassword is given a
// users login row is created alongside the clinical record, in one
// transaction; the two rows keep distinct ids, so the patient id stays
// resolvable with source "patient".
func (s *Service) CreatePatient(ctx context.Context, p *PatientRecord, loginPassword string) error {
	if err := validatePatient(p); err != nil {
		return err
	}
	if _, err := s.repo.GetPatientByUHID(ctx, p.UHID); err == nil {
		return ErrDuplicateUHID
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	if err := s.checkEmailFree(ctx, p.Email); err != nil {
		return err
	}
	if p.InsuranceStatus == "" {
		p.InsuranceStatus = "Not Insured"
	}
	if p.OrganDonorStatus == "" {
		p.OrganDonorStatus = "No"
	}

	if loginPassword == "" {
		return s.repo.CreatePatient(ctx, p)
	}
	if len(loginPassword) < 8 {
		return &ValidationError{Fields: []string{"password must be at least 8 characters"}}
	}
	hash, err := auth.HashPassword(loginPassword)
	if err != nil {
		return err
	}
	return s.tx(ctx, func(ctx context.Context) error {
		if err := s.repo.CreatePatient(ctx, p); err != nil {
			return err
		}
		return s.repo.CreateUser(ctx, &User{
			Name:         p.PatientName,
			Email:        p.Email,
			PasswordHash: hash,
			Phone:        p.Phone,
			Gender:       p.Gender,
			DOB:          p.DateOfBirth,
			Address:      p.Address,
		})
	})
}

func (s *Service) checkEmailFree(ctx context.Context, email string) error {
	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	if _, err := s.repo.GetPatientByEmail(ctx, email); err == nil {
		return ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// UpdatePatient applies a patient-detail edit. Last write wins; there
// is no version check.
func (s *Service) UpdatePatient(ctx context.Context, p *PatientRecord) error {
	current, err := s.repo.GetPatientByID(ctx, p.ID)
	if err != nil {
		return err
	}
	p.Email = current.Email
	if p.UHID != current.UHID {
		if _, err := s.repo.GetPatientByUHID(ctx, p.UHID); err == nil {
			return ErrDuplicateUHID
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	if err := validatePatient(p); err != nil {
		return err
	}
	return s.repo.UpdatePatient(ctx, p)
}

// UpdateUserProfile applies a self-service profile edit. Email and
// password are untouched.
func (s *Service) UpdateUserProfile(ctx context.Context, u *User) error {
	current, err := s.repo.GetUserByID(ctx, u.ID)
	if err != nil {
		return err
	}
	u.Email = current.Email
	u.PasswordHash = current.PasswordHash
	if u.Name == "" {
		u.Name = current.Name
	}
	return s.repo.UpdateUser(ctx, u)
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// List returns every identity from both schemas as normalized views,
// patients first, then self-signup users.
func (s *Service) List(ctx context.Context) ([]PatientView, error) {
	patients, err := s.repo.ListPatients(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	views := make([]PatientView, 0, len(patients)+len(users))
	for _, p := range patients {
		views = append(views, Normalize(Identity{Source: SourcePatient, Patient: p}, now))
	}
	for _, u := range users {
		views = append(views, Normalize(Identity{Source: SourceUser, User: u}, now))
	}
	return views, nil
}
