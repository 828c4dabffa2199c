package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carebridge/hms/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// -- users --

const userCols = `id, name, email, password_hash, phone, gender, dob, address,
	image_url, created_at, updated_at`

func (r *repoPG) CreateUser(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	addr, err := json.Marshal(u.Address)
	if err != nil {
		return fmt.Errorf("marshal address: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, phone, gender, dob, address, image_url)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Phone, u.Gender, u.DOB, addr, u.ImageURL,
	)
	return err
}

func (r *repoPG) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *repoPG) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email = $1`, email))
}

func (r *repoPG) UpdateUser(ctx context.Context, u *User) error {
	addr, err := json.Marshal(u.Address)
	if err != nil {
		return fmt.Errorf("marshal address: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		UPDATE users SET
			name=$2, phone=$3, gender=$4, dob=$5, address=$6, image_url=$7,
			updated_at=NOW()
		WHERE id = $1`,
		u.ID, u.Name, u.Phone, u.Gender, u.DOB, addr, u.ImageURL,
	)
	return err
}

func (r *repoPG) ListUsers(ctx context.Context) ([]*User, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+userCols+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var addr []byte
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Gender,
		&u.DOB, &addr, &u.ImageURL, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(addr) > 0 {
		if err := json.Unmarshal(addr, &u.Address); err != nil {
			return nil, fmt.Errorf("unmarshal address: %w", err)
		}
	}
	return &u, nil
}

// -- patients --

const patientCols = `id, uhid, alternate_uhid, patient_name, email, phone,
	date_of_birth, gender, blood_group, occupation, address, medical_info,
	insurance_status, organ_donor_status, created_at, updated_at`

func (r *repoPG) CreatePatient(ctx context.Context, p *PatientRecord) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	addr, err := json.Marshal(p.Address)
	if err != nil {
		return fmt.Errorf("marshal address: %w", err)
	}
	med, err := json.Marshal(p.MedicalInfo)
	if err != nil {
		return fmt.Errorf("marshal medical info: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO patients (
			id, uhid, alternate_uhid, patient_name, email, phone,
			date_of_birth, gender, blood_group, occupation, address,
			medical_info, insurance_status, organ_donor_status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		p.ID, p.UHID, p.AlternateUHID, p.PatientName, p.Email, p.Phone,
		p.DateOfBirth, p.Gender, p.BloodGroup, p.Occupation, addr,
		med, p.InsuranceStatus, p.OrganDonorStatus,
	)
	return err
}

func (r *repoPG) GetPatientByID(ctx context.Context, id uuid.UUID) (*PatientRecord, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *repoPG) GetPatientByEmail(ctx context.Context, email string) (*PatientRecord, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE email = $1`, email))
}

func (r *repoPG) GetPatientByUHID(ctx context.Context, uhid string) (*PatientRecord, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE uhid = $1`, uhid))
}

func (r *repoPG) UpdatePatient(ctx context.Context, p *PatientRecord) error {
	addr, err := json.Marshal(p.Address)
	if err != nil {
		return fmt.Errorf("marshal address: %w", err)
	}
	med, err := json.Marshal(p.MedicalInfo)
	if err != nil {
		return fmt.Errorf("marshal medical info: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		UPDATE patients SET
			uhid=$2, alternate_uhid=$3, patient_name=$4, phone=$5,
			date_of_birth=$6, gender=$7, blood_group=$8, occupation=$9,
			address=$10, medical_info=$11, insurance_status=$12,
			organ_donor_status=$13, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.UHID, p.AlternateUHID, p.PatientName, p.Phone,
		p.DateOfBirth, p.Gender, p.BloodGroup, p.Occupation,
		addr, med, p.InsuranceStatus, p.OrganDonorStatus,
	)
	return err
}

func (r *repoPG) ListPatients(ctx context.Context) ([]*PatientRecord, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patients ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patients []*PatientRecord
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

func (r *repoPG) CountIdentities(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT (SELECT COUNT(*) FROM users) + (SELECT COUNT(*) FROM patients)`).Scan(&n)
	return n, err
}

func scanPatient(row pgx.Row) (*PatientRecord, error) {
	var p PatientRecord
	var addr, med []byte
	err := row.Scan(
		&p.ID, &p.UHID, &p.AlternateUHID, &p.PatientName, &p.Email, &p.Phone,
		&p.DateOfBirth, &p.Gender, &p.BloodGroup, &p.Occupation, &addr, &med,
		&p.InsuranceStatus, &p.OrganDonorStatus, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(addr) > 0 {
		if err := json.Unmarshal(addr, &p.Address); err != nil {
			return nil, fmt.Errorf("unmarshal address: %w", err)
		}
	}
	if len(med) > 0 {
		if err := json.Unmarshal(med, &p.MedicalInfo); err != nil {
			return nil, fmt.Errorf("unmarshal medical info: %w", err)
		}
	}
	return &p, nil
}
