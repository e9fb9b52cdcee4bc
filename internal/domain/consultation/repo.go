package consultation

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence interface for consultations and their
// child rows.
type Repository interface {
	// Create persists the consultation and its symptom rows in a single
	// transaction: either every row is visible afterward or none are.
	Create(ctx context.Context, c *Consultation, symptoms []*Symptom) error
	// GetByID returns the consultation with its symptoms, prescriptions, and
	// diagnostic tests loaded.
	GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Consultation, int, error)
	ListRecent(ctx context.Context, limit int) ([]*Consultation, error)
	CountByPatient(ctx context.Context, patientID uuid.UUID) (int, error)
	Count(ctx context.Context) (int, error)
	AddPrescription(ctx context.Context, p *Prescription) error
	AddDiagnosticTest(ctx context.Context, t *DiagnosticTest) error
	PrescriptionsByPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error)
	PrescriptionsByConsultation(ctx context.Context, consultationID uuid.UUID) ([]*Prescription, error)
}
