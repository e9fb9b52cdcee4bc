package patient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medassist/medassist/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

// queryable abstracts pgxpool.Pool and pgx.Tx so a repository call joins an
// open unit of work when one is carried by the context.
type queryable interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patientColumns = `id, first_name, last_name, email, phone, birth_date, age, gender,
	weight, height, blood_type,
	medical_history, current_medications, allergies, family_history,
	smoking_status, alcohol_use, created_at, updated_at, active`

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Active = true

	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patients (
			id, first_name, last_name, email, phone, birth_date, age, gender,
			weight, height, blood_type,
			medical_history, current_medications, allergies, family_history,
			smoking_status, alcohol_use, created_at, updated_at, active
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11,
			$12, $13, $14, $15,
			$16, $17, $18, $19, $20
		)`,
		p.ID, p.FirstName, p.LastName, p.Email, p.Phone, p.BirthDate, p.Age, p.Gender,
		p.Weight, p.Height, p.BloodType,
		p.MedicalHistory, p.CurrentMedications, p.Allergies, p.FamilyHistory,
		p.SmokingStatus, p.AlcoholUse, p.CreatedAt, p.UpdatedAt, p.Active,
	)
	return db.TranslateError(err)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE id = $1 AND active`, id))
}

func (r *repoPG) Update(ctx context.Context, id uuid.UUID, upd *Update) (*Patient, error) {
	set := []string{"updated_at = NOW()"}
	args := []interface{}{id}
	idx := 2

	add := func(column string, value interface{}) {
		set = append(set, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	// Nullable text columns clear back to NULL on an empty string, matching
	// how creation stores absent optionals. A NULL email also keeps the
	// unique index out of play for patients without one.
	addText := func(column string, value string) {
		if value == "" {
			add(column, nil)
			return
		}
		add(column, value)
	}

	if upd.FirstName != nil {
		add("first_name", *upd.FirstName)
	}
	if upd.LastName != nil {
		add("last_name", *upd.LastName)
	}
	if upd.Email != nil {
		addText("email", *upd.Email)
	}
	if upd.Phone != nil {
		addText("phone", *upd.Phone)
	}
	if upd.BirthDate != nil {
		add("birth_date", *upd.BirthDate)
	}
	if upd.Age != nil {
		add("age", *upd.Age)
	}
	if upd.Gender != nil {
		addText("gender", *upd.Gender)
	}
	if upd.Weight != nil {
		add("weight", *upd.Weight)
	}
	if upd.Height != nil {
		add("height", *upd.Height)
	}
	if upd.BloodType != nil {
		addText("blood_type", *upd.BloodType)
	}
	if upd.MedicalHistory != nil {
		addText("medical_history", *upd.MedicalHistory)
	}
	if upd.CurrentMedications != nil {
		addText("current_medications", *upd.CurrentMedications)
	}
	if upd.Allergies != nil {
		addText("allergies", *upd.Allergies)
	}
	if upd.FamilyHistory != nil {
		addText("family_history", *upd.FamilyHistory)
	}
	if upd.SmokingStatus != nil {
		addText("smoking_status", *upd.SmokingStatus)
	}
	if upd.AlcoholUse != nil {
		addText("alcohol_use", *upd.AlcoholUse)
	}

	// Updates resolve the row whether active or not, so data on a
	// deactivated record can still be corrected.
	query := `UPDATE patients SET ` + strings.Join(set, ", ") +
		` WHERE id = $1 RETURNING ` + patientColumns

	return scanPatient(r.conn(ctx).QueryRow(ctx, query, args...))
}

func (r *repoPG) Deactivate(ctx context.Context, id uuid.UUID) error {
	// Idempotent: deactivating an already-inactive patient matches the row
	// and succeeds again.
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE patients SET active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return db.TranslateError(err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM patients WHERE active`).Scan(&total)
	if err != nil {
		return nil, 0, db.TranslateError(err)
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE active
		 ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, db.TranslateError(err)
	}
	defer rows.Close()

	patients, err := collectPatients(rows)
	if err != nil {
		return nil, 0, err
	}
	return patients, total, nil
}

func (r *repoPG) Search(ctx context.Context, query string) ([]*Patient, error) {
	pattern := "%" + query + "%"
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE active AND (
			first_name ILIKE $1 OR last_name ILIKE $1 OR email ILIKE $1 OR phone ILIKE $1
		) ORDER BY created_at DESC`, pattern)
	if err != nil {
		return nil, db.TranslateError(err)
	}
	defer rows.Close()

	return collectPatients(rows)
}

func (r *repoPG) CountActive(ctx context.Context) (int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM patients WHERE active`).Scan(&total)
	if err != nil {
		return 0, db.TranslateError(err)
	}
	return total, nil
}

func (r *repoPG) Purge(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return db.TranslateError(err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.BirthDate, &p.Age, &p.Gender,
		&p.Weight, &p.Height, &p.BloodType,
		&p.MedicalHistory, &p.CurrentMedications, &p.Allergies, &p.FamilyHistory,
		&p.SmokingStatus, &p.AlcoholUse, &p.CreatedAt, &p.UpdatedAt, &p.Active,
	)
	if err != nil {
		return nil, db.TranslateError(err)
	}
	return &p, nil
}

func collectPatients(rows pgx.Rows) ([]*Patient, error) {
	var patients []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, db.TranslateError(err)
	}
	return patients, nil
}
