package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/hms/internal/domain/appointment"
	"github.com/carebridge/hms/internal/domain/clinical"
)

// -- Mock Repository --

type mockRepo struct {
	users    map[uuid.UUID]*User
	patients map[uuid.UUID]*PatientRecord
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		users:    make(map[uuid.UUID]*User),
		patients: make(map[uuid.UUID]*PatientRecord),
	}
}

func (m *mockRepo) CreateUser(_ context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = time.Now()
	m.users[u.ID] = u
	return nil
}

func (m *mockRepo) GetUserByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *mockRepo) GetUserByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) UpdateUser(_ context.Context, u *User) error {
	if _, ok := m.users[u.ID]; !ok {
		return ErrNotFound
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockRepo) ListUsers(_ context.Context) ([]*User, error) {
	var result []*User
	for _, u := range m.users {
		result = append(result, u)
	}
	return result, nil
}

func (m *mockRepo) CreatePatient(_ context.Context, p *PatientRecord) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) GetPatientByID(_ context.Context, id uuid.UUID) (*PatientRecord, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) GetPatientByEmail(_ context.Context, email string) (*PatientRecord, error) {
	for _, p := range m.patients {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) GetPatientByUHID(_ context.Context, uhid string) (*PatientRecord, error) {
	for _, p := range m.patients {
		if p.UHID == uhid {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) UpdatePatient(_ context.Context, p *PatientRecord) error {
	if _, ok := m.patients[p.ID]; !ok {
		return ErrNotFound
	}
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) ListPatients(_ context.Context) ([]*PatientRecord, error) {
	var result []*PatientRecord
	for _, p := range m.patients {
		result = append(result, p)
	}
	return result, nil
}

func (m *mockRepo) CountIdentities(_ context.Context) (int, error) {
	return len(m.users) + len(m.patients), nil
}

// -- Mock related-record sources --

type mockAppts struct {
	byIdentity map[uuid.UUID][]*appointment.Appointment
	err        error
}

func (m *mockAppts) ListForIdentity(_ context.Context, id uuid.UUID) ([]*appointment.Appointment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byIdentity[id], nil
}

type mockRecs struct {
	byPatient map[uuid.UUID][]*clinical.ClinicalRecord
	err       error
}

func (m *mockRecs) ListForPatient(_ context.Context, id uuid.UUID, opts clinical.Options) ([]*clinical.ClinicalRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return clinical.FilterSort(m.byPatient[id], opts), nil
}

func newTestService() (*Service, *mockRepo, *mockAppts, *mockRecs) {
	repo := newMockRepo()
	appts := &mockAppts{byIdentity: make(map[uuid.UUID][]*appointment.Appointment)}
	recs := &mockRecs{byPatient: make(map[uuid.UUID][]*clinical.ClinicalRecord)}
	return NewService(repo, appts, recs), repo, appts, recs
}

func validPatient() *PatientRecord {
	return &PatientRecord{
		UHID:        "UH-1001",
		PatientName: "Ravi Kumar",
		Email:       "ravi@example.test",
		Phone:       "9876543210",
		Gender:      "Male",
		BloodGroup:  "O+",
		DateOfBirth: "1990-01-01",
	}
}

// -- Tests --

func TestResolve_UserFirst(t *testing.T) {
	svc, repo, _, _ := newTestService()
	u := &User{Name: "Asha", Email: "asha@example.test"}
	if err := repo.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	ident, err := svc.Resolve(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ident.Source != SourceUser {
		t.Errorf("expected source user, got %s", ident.Source)
	}
	if ident.Patient != nil {
		t.Error("patient arm must be nil for user-source identity")
	}
}

func TestResolve_PatientFallback(t *testing.T) {
	svc, repo, _, _ := newTestService()
	p := validPatient()
	if err := repo.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("seed patient: %v", err)
	}

	ident, err := svc.Resolve(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ident.Source != SourcePatient {
		t.Errorf("expected source patient, got %s", ident.Source)
	}
	if ident.User != nil {
		t.Error("user arm must be nil for patient-source identity")
	}
	if ident.Patient.UHID != "UH-1001" {
		t.Errorf("expected UHID from patient schema, got %q", ident.Patient.UHID)
	}
}

func TestResolve_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.Resolve(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAggregate_EmptyRelated(t *testing.T) {
	svc, repo, _, _ := newTestService()
	p := validPatient()
	if err := repo.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("seed patient: %v", err)
	}

	agg, err := svc.Aggregate(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("aggregate with no related rows must succeed: %v", err)
	}
	if agg.Appointments == nil || len(agg.Appointments) != 0 {
		t.Errorf("expected empty non-nil appointments, got %v", agg.Appointments)
	}
	if agg.ClinicalRecords == nil || len(agg.ClinicalRecords) != 0 {
		t.Errorf("expected empty non-nil records, got %v", agg.ClinicalRecords)
	}
	if agg.Patient.Name != "Ravi Kumar" {
		t.Errorf("expected normalized view, got %+v", agg.Patient)
	}
}

func TestAggregate_FetchesRelated(t *testing.T) {
	svc, repo, appts, recs := newTestService()
	p := validPatient()
	if err := repo.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	appts.byIdentity[p.ID] = []*appointment.Appointment{{Amount: 300}}
	recs.byPatient[p.ID] = []*clinical.ClinicalRecord{{Diagnosis: "flu"}}

	agg, err := svc.Aggregate(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(agg.Appointments) != 1 || len(agg.ClinicalRecords) != 1 {
		t.Errorf("expected 1 appointment and 1 record, got %d/%d",
			len(agg.Appointments), len(agg.ClinicalRecords))
	}
}

func TestAggregate_NoPartialView(t *testing.T) {
	svc, repo, appts, _ := newTestService()
	p := validPatient()
	if err := repo.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	appts.err = errors.New("store unavailable")

	if _, err := svc.Aggregate(context.Background(), p.ID); err == nil {
		t.Error("a failed related fetch must fail the whole aggregate")
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _, _ := newTestService()
	u, err := svc.Register(context.Background(), "Asha", "asha@example.test", "long-enough")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	got, err := svc.Login(context.Background(), "asha@example.test", "long-enough")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if got.ID != u.ID {
		t.Error("login returned wrong user")
	}

	if _, err := svc.Login(context.Background(), "asha@example.test", "wrong"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.Register(context.Background(), "", "bad", "short")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Fields) != 3 {
		t.Errorf("expected 3 field messages, got %v", ve.Fields)
	}
}

func TestRegister_DuplicateEmailAcrossSchemas(t *testing.T) {
	svc, repo, _, _ := newTestService()
	p := validPatient()
	if err := repo.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("seed patient: %v", err)
	}

	_, err := svc.Register(context.Background(), "Imposter", p.Email, "long-enough")
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("email taken in the patient schema must be rejected, got %v", err)
	}
}

func TestCreatePatient(t *testing.T) {
	svc, repo, _, _ := newTestService()
	p := validPatient()
	if err := svc.CreatePatient(context.Background(), p, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.InsuranceStatus != "Not Insured" || p.OrganDonorStatus != "No" {
		t.Errorf("expected status defaults, got %q/%q", p.InsuranceStatus, p.OrganDonorStatus)
	}
	if len(repo.users) != 0 {
		t.Error("no login row expected without a password")
	}
}

func TestCreatePatient_WithLoginRow(t *testing.T) {
	svc, repo, _, _ := newTestService()
	p := validPatient()
	if err := svc.CreatePatient(context.Background(), p, "long-enough"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected a login row, got %d users", len(repo.users))
	}
	for _, u := range repo.users {
		if u.ID == p.ID {
			t.Error("login row must keep a distinct id from the patient record")
		}
		if u.Email != p.Email {
			t.Errorf("login row email mismatch: %s", u.Email)
		}
	}
	// The patient id still resolves to the patient schema.
	ident, err := svc.Resolve(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if ident.Source != SourcePatient {
		t.Errorf("expected source patient, got %s", ident.Source)
	}
}

func TestCreatePatient_DuplicateUHID(t *testing.T) {
	svc, _, _, _ := newTestService()
	if err := svc.CreatePatient(context.Background(), validPatient(), ""); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	dup := validPatient()
	dup.Email = "other@example.test"
	if err := svc.CreatePatient(context.Background(), dup, ""); !errors.Is(err, ErrDuplicateUHID) {
		t.Errorf("expected ErrDuplicateUHID, got %v", err)
	}
}

func TestCreatePatient_Validation(t *testing.T) {
	svc, _, _, _ := newTestService()
	cases := []struct {
		name   string
		mutate func(*PatientRecord)
	}{
		{"missing name", func(p *PatientRecord) { p.PatientName = "" }},
		{"missing uhid", func(p *PatientRecord) { p.UHID = "" }},
		{"bad email", func(p *PatientRecord) { p.Email = "nope" }},
		{"short phone", func(p *PatientRecord) { p.Phone = "12345" }},
		{"bad gender", func(p *PatientRecord) { p.Gender = "X" }},
		{"bad blood group", func(p *PatientRecord) { p.BloodGroup = "Q+" }},
		{"bad zip", func(p *PatientRecord) { p.Address.ZipCode = "12" }},
		{"height out of range", func(p *PatientRecord) { p.MedicalInfo.Height = 400 }},
		{"weight out of range", func(p *PatientRecord) { p.MedicalInfo.Weight = 600 }},
		{"bad emergency phone", func(p *PatientRecord) { p.MedicalInfo.EmergencyContact.Phone = "12" }},
		{"bad insurance status", func(p *PatientRecord) { p.InsuranceStatus = "Maybe" }},
		{"bad organ donor status", func(p *PatientRecord) { p.OrganDonorStatus = "Perhaps" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validPatient()
			tc.mutate(p)
			err := svc.CreatePatient(context.Background(), p, "")
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestUpdatePatient_LastWriteWins(t *testing.T) {
	svc, repo, _, _ := newTestService()
	p := validPatient()
	if err := svc.CreatePatient(context.Background(), p, ""); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	editA := *p
	editA.Occupation = "Accountant"
	editB := *p
	editB.Occupation = "Engineer"

	if err := svc.UpdatePatient(context.Background(), &editA); err != nil {
		t.Fatalf("first edit failed: %v", err)
	}
	if err := svc.UpdatePatient(context.Background(), &editB); err != nil {
		t.Fatalf("second edit failed: %v", err)
	}
	if got := repo.patients[p.ID].Occupation; got != "Engineer" {
		t.Errorf("expected last write to win, got %q", got)
	}
}

func TestUpdatePatient_EmailImmutable(t *testing.T) {
	svc, repo, _, _ := newTestService()
	p := validPatient()
	if err := svc.CreatePatient(context.Background(), p, ""); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	edit := *p
	edit.Email = "new@example.test"
	if err := svc.UpdatePatient(context.Background(), &edit); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if repo.patients[p.ID].Email != "ravi@example.test" {
		t.Errorf("email must not change on edit, got %s", repo.patients[p.ID].Email)
	}
}

func TestList_CombinesSchemas(t *testing.T) {
	svc, repo, _, _ := newTestService()
	if err := repo.CreatePatient(context.Background(), validPatient()); err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	if err := repo.CreateUser(context.Background(), &User{Name: "Asha", Email: "asha@example.test"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	views, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 identities, got %d", len(views))
	}
	sources := map[Source]bool{}
	for _, v := range views {
		sources[v.Source] = true
	}
	if !sources[SourceUser] || !sources[SourcePatient] {
		t.Errorf("expected both sources represented, got %v", sources)
	}
}
