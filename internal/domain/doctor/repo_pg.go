package doctor

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

const docCols = `id, name, email, password_hash, image_url, speciality, degree,
	experience, about, available, fees, address, slots_booked, created_at`

func (r *repoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	addr, err := json.Marshal(d.Address)
	if err != nil {
		return fmt.Errorf("marshal address: %w", err)
	}
	slots := d.SlotsBooked
	if slots == nil {
		slots = map[string][]string{}
	}
	slotsJSON, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("marshal slots: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO doctors (
			id, name, email, password_hash, image_url, speciality, degree,
			experience, about, available, fees, address, slots_booked
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		d.ID, d.Name, d.Email, d.PasswordHash, d.ImageURL, d.Speciality, d.Degree,
		d.Experience, d.About, d.Available, d.Fees, addr, slotsJSON,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return scanDoc(r.conn(ctx).QueryRow(ctx, `SELECT `+docCols+` FROM doctors WHERE id = $1`, id))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*Doctor, error) {
	return scanDoc(r.conn(ctx).QueryRow(ctx, `SELECT `+docCols+` FROM doctors WHERE email = $1`, email))
}

func (r *repoPG) List(ctx context.Context) ([]*Doctor, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+docCols+` FROM doctors ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*Doctor
	for rows.Next() {
		d, err := scanDoc(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *repoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM doctors`).Scan(&n)
	return n, err
}

func (r *repoPG) UpdateAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE doctors SET available = $2 WHERE id = $1`, id, available)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) UpdateProfile(ctx context.Context, d *Doctor) error {
	addr, err := json.Marshal(d.Address)
	if err != nil {
		return fmt.Errorf("marshal address: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		UPDATE doctors SET
			name=$2, image_url=$3, speciality=$4, degree=$5, experience=$6,
			about=$7, available=$8, fees=$9, address=$10
		WHERE id = $1`,
		d.ID, d.Name, d.ImageURL, d.Speciality, d.Degree, d.Experience,
		d.About, d.Available, d.Fees, addr,
	)
	return err
}

func (r *repoPG) UpdateSlots(ctx context.Context, id uuid.UUID, slots map[string][]string) error {
	if slots == nil {
		slots = map[string][]string{}
	}
	slotsJSON, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("marshal slots: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `UPDATE doctors SET slots_booked = $2 WHERE id = $1`, id, slotsJSON)
	return err
}

func scanDoc(row pgx.Row) (*Doctor, error) {
	var d Doctor
	var addr, slots []byte
	err := row.Scan(
		&d.ID, &d.Name, &d.Email, &d.PasswordHash, &d.ImageURL, &d.Speciality,
		&d.Degree, &d.Experience, &d.About, &d.Available, &d.Fees, &addr,
		&slots, &d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(addr) > 0 {
		if err := json.Unmarshal(addr, &d.Address); err != nil {
			return nil, fmt.Errorf("unmarshal address: %w", err)
		}
	}
	if len(slots) > 0 {
		if err := json.Unmarshal(slots, &d.SlotsBooked); err != nil {
			return nil, fmt.Errorf("unmarshal slots: %w", err)
		}
	}
	return &d, nil
}
