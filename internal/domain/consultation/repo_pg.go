package consultation

import (
	"context"
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

const consultationColumns = `id, patient_id, consultation_date, chief_complaint,
	duration_of_symptoms, severity, additional_notes,
	ai_diagnosis, differential_diagnoses, urgency_level,
	model_used, model_provider, web_search_enabled, created_at`

func (r *repoPG) Create(ctx context.Context, c *Consultation, symptoms []*Symptom) error {
	// Joins an already-open unit of work, otherwise runs its own: the
	// consultation row and its symptom rows commit or roll back together,
	// on failure and on context cancellation alike.
	if db.TxFromContext(ctx) != nil {
		return r.create(ctx, c, symptoms)
	}
	return db.RunInTx(ctx, r.pool, func(txCtx context.Context) error {
		return r.create(txCtx, c, symptoms)
	})
}

func (r *repoPG) create(ctx context.Context, c *Consultation, symptoms []*Symptom) error {
	c.ID = uuid.New()
	now := time.Now().UTC()
	c.CreatedAt = now
	if c.ConsultationDate.IsZero() {
		c.ConsultationDate = now
	}

	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO consultations (
			id, patient_id, consultation_date, chief_complaint,
			duration_of_symptoms, severity, additional_notes,
			ai_diagnosis, differential_diagnoses, urgency_level,
			model_used, model_provider, web_search_enabled, created_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7,
			$8, $9, $10,
			$11, $12, $13, $14
		)`,
		c.ID, c.PatientID, c.ConsultationDate, c.ChiefComplaint,
		c.DurationOfSymptoms, c.Severity, c.AdditionalNotes,
		c.AIDiagnosis, c.DifferentialDiagnoses, c.UrgencyLevel,
		c.ModelUsed, c.ModelProvider, c.WebSearchEnabled, c.CreatedAt,
	)
	if err != nil {
		return db.TranslateError(err)
	}

	for _, s := range symptoms {
		s.ID = uuid.New()
		s.ConsultationID = c.ID
		s.CreatedAt = now
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO symptoms (
				id, consultation_id, symptom_name, category, severity,
				onset_date, description, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			s.ID, s.ConsultationID, s.SymptomName, s.Category, s.Severity,
			s.OnsetDate, s.Description, s.CreatedAt,
		)
		if err != nil {
			return db.TranslateError(err)
		}
	}

	c.Symptoms = symptoms
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	c, err := scanConsultation(r.conn(ctx).QueryRow(ctx,
		`SELECT `+consultationColumns+` FROM consultations WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}

	if c.Symptoms, err = r.symptomsFor(ctx, id); err != nil {
		return nil, err
	}
	if c.Prescriptions, err = r.PrescriptionsByConsultation(ctx, id); err != nil {
		return nil, err
	}
	if c.Tests, err = r.testsFor(ctx, id); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Consultation, int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM consultations WHERE patient_id = $1`, patientID).Scan(&total)
	if err != nil {
		return nil, 0, db.TranslateError(err)
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+consultationColumns+` FROM consultations WHERE patient_id = $1
		 ORDER BY consultation_date DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, db.TranslateError(err)
	}
	defer rows.Close()

	consultations, err := collectConsultations(rows)
	if err != nil {
		return nil, 0, err
	}
	return consultations, total, nil
}

func (r *repoPG) ListRecent(ctx context.Context, limit int) ([]*Consultation, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+consultationColumns+` FROM consultations
		 ORDER BY consultation_date DESC LIMIT $1`, limit)
	if err != nil {
		return nil, db.TranslateError(err)
	}
	defer rows.Close()

	return collectConsultations(rows)
}

func (r *repoPG) CountByPatient(ctx context.Context, patientID uuid.UUID) (int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM consultations WHERE patient_id = $1`, patientID).Scan(&total)
	if err != nil {
		return 0, db.TranslateError(err)
	}
	return total, nil
}

func (r *repoPG) Count(ctx context.Context) (int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM consultations`).Scan(&total)
	if err != nil {
		return 0, db.TranslateError(err)
	}
	return total, nil
}

func (r *repoPG) AddPrescription(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now().UTC()

	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO prescriptions (
			id, consultation_id, medication_name, medication_type, dosage,
			frequency, duration, purpose, instructions, warnings, is_otc, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.ConsultationID, p.MedicationName, p.MedicationType, p.Dosage,
		p.Frequency, p.Duration, p.Purpose, p.Instructions, p.Warnings, p.IsOTC, p.CreatedAt,
	)
	return db.TranslateError(err)
}

func (r *repoPG) AddDiagnosticTest(ctx context.Context, t *DiagnosticTest) error {
	t.ID = uuid.New()
	t.CreatedAt = time.Now().UTC()

	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO diagnostic_tests (
			id, consultation_id, test_name, test_type, priority, reason, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.ConsultationID, t.TestName, t.TestType, t.Priority, t.Reason, t.CreatedAt,
	)
	return db.TranslateError(err)
}

const prescriptionColumns = `id, consultation_id, medication_name, medication_type, dosage,
	frequency, duration, purpose, instructions, warnings, is_otc, created_at`

func (r *repoPG) PrescriptionsByPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT p.id, p.consultation_id, p.medication_name, p.medication_type, p.dosage,
			p.frequency, p.duration, p.purpose, p.instructions, p.warnings, p.is_otc, p.created_at
		FROM prescriptions p
		JOIN consultations c ON c.id = p.consultation_id
		WHERE c.patient_id = $1
		ORDER BY p.created_at DESC`, patientID)
	if err != nil {
		return nil, db.TranslateError(err)
	}
	defer rows.Close()

	return collectPrescriptions(rows)
}

func (r *repoPG) PrescriptionsByConsultation(ctx context.Context, consultationID uuid.UUID) ([]*Prescription, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+prescriptionColumns+` FROM prescriptions
		 WHERE consultation_id = $1 ORDER BY created_at`, consultationID)
	if err != nil {
		return nil, db.TranslateError(err)
	}
	defer rows.Close()

	return collectPrescriptions(rows)
}

func (r *repoPG) symptomsFor(ctx context.Context, consultationID uuid.UUID) ([]*Symptom, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, consultation_id, symptom_name, category, severity, onset_date, description, created_at
		FROM symptoms WHERE consultation_id = $1 ORDER BY created_at`, consultationID)
	if err != nil {
		return nil, db.TranslateError(err)
	}
	defer rows.Close()

	var symptoms []*Symptom
	for rows.Next() {
		var s Symptom
		if err := rows.Scan(&s.ID, &s.ConsultationID, &s.SymptomName, &s.Category,
			&s.Severity, &s.OnsetDate, &s.Description, &s.CreatedAt); err != nil {
			return nil, db.TranslateError(err)
		}
		symptoms = append(symptoms, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, db.TranslateError(err)
	}
	return symptoms, nil
}

func (r *repoPG) testsFor(ctx context.Context, consultationID uuid.UUID) ([]*DiagnosticTest, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, consultation_id, test_name, test_type, priority, reason, created_at
		FROM diagnostic_tests WHERE consultation_id = $1 ORDER BY created_at`, consultationID)
	if err != nil {
		return nil, db.TranslateError(err)
	}
	defer rows.Close()

	var tests []*DiagnosticTest
	for rows.Next() {
		var t DiagnosticTest
		if err := rows.Scan(&t.ID, &t.ConsultationID, &t.TestName, &t.TestType,
			&t.Priority, &t.Reason, &t.CreatedAt); err != nil {
			return nil, db.TranslateError(err)
		}
		tests = append(tests, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, db.TranslateError(err)
	}
	return tests, nil
}

func scanConsultation(row pgx.Row) (*Consultation, error) {
	var c Consultation
	err := row.Scan(
		&c.ID, &c.PatientID, &c.ConsultationDate, &c.ChiefComplaint,
		&c.DurationOfSymptoms, &c.Severity, &c.AdditionalNotes,
		&c.AIDiagnosis, &c.DifferentialDiagnoses, &c.UrgencyLevel,
		&c.ModelUsed, &c.ModelProvider, &c.WebSearchEnabled, &c.CreatedAt,
	)
	if err != nil {
		return nil, db.TranslateError(err)
	}
	return &c, nil
}

func collectConsultations(rows pgx.Rows) ([]*Consultation, error) {
	var consultations []*Consultation
	for rows.Next() {
		c, err := scanConsultation(rows)
		if err != nil {
			return nil, err
		}
		consultations = append(consultations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, db.TranslateError(err)
	}
	return consultations, nil
}

func collectPrescriptions(rows pgx.Rows) ([]*Prescription, error) {
	var prescriptions []*Prescription
	for rows.Next() {
		var p Prescription
		if err := rows.Scan(&p.ID, &p.ConsultationID, &p.MedicationName, &p.MedicationType,
			&p.Dosage, &p.Frequency, &p.Duration, &p.Purpose, &p.Instructions,
			&p.Warnings, &p.IsOTC, &p.CreatedAt); err != nil {
			return nil, db.TranslateError(err)
		}
		prescriptions = append(prescriptions, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, db.TranslateError(err)
	}
	return prescriptions, nil
}
