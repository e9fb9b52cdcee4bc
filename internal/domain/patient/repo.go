package patient

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Update carries a partial patient update. Nil fields are left untouched; a
// set field overwrites, and an empty string clears a nullable text column
// back to NULL.
type Update struct {
	FirstName          *string
	LastName           *string
	Email              *string
	Phone              *string
	BirthDate          *time.Time
	Age                *int
	Gender             *string
	Weight             *float64
	Height             *float64
	BloodType          *string
	MedicalHistory     *string
	CurrentMedications *string
	Allergies          *string
	FamilyHistory      *string
	SmokingStatus      *string
	AlcoholUse         *string
}

// Repository defines the persistence interface for patients.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	// GetByID resolves active patients only; logically deleted rows report
	// not-found.
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	// Update resolves the row whether active or not, so data on a
	// deactivated record can still be corrected.
	Update(ctx context.Context, id uuid.UUID, upd *Update) (*Patient, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	Search(ctx context.Context, query string) ([]*Patient, error)
	CountActive(ctx context.Context) (int, error)
	// Purge hard-deletes the patient and, by cascade, every consultation and
	// child row. Maintenance only; never part of the normal request flow.
	Purge(ctx context.Context, id uuid.UUID) error
}
