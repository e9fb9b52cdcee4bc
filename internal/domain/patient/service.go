package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medassist/medassist/internal/platform/db"
	"github.com/medassist/medassist/pkg/pagination"
)

const dateLayout = "2006-01-02"

// CreateInput carries the scalar field values for patient registration.
// Empty optional strings mean "absent" and are stored as NULL.
type CreateInput struct {
	FirstName          string
	LastName           string
	Email              string
	Phone              string
	BirthDate          string // YYYY-MM-DD
	Age                *int
	Gender             string
	Weight             *float64
	Height             *float64
	BloodType          string
	MedicalHistory     string
	CurrentMedications string
	Allergies          string
	FamilyHistory      string
	SmokingStatus      string
	AlcoholUse         string
}

// UpdateInput carries a partial profile update: nil means "leave untouched",
// a set value overwrites, and an empty string clears an optional field.
type UpdateInput struct {
	FirstName          *string
	LastName           *string
	Email              *string
	Phone              *string
	BirthDate          *string // YYYY-MM-DD
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

// ConsultationCounter reports how many consultations a patient has. The
// consultation service satisfies it; the indirection keeps this package from
// importing that one.
type ConsultationCounter interface {
	CountByPatient(ctx context.Context, patientID uuid.UUID) (int, error)
}

type Service struct {
	repo          Repository
	consultations ConsultationCounter
	now           func() time.Time
}

func NewService(repo Repository, consultations ConsultationCounter) *Service {
	return &Service{repo: repo, consultations: consultations, now: time.Now}
}

// Create registers a new patient. First and last name are required; a
// malformed birth date is rejected before any write; a duplicate email
// surfaces as a conflict from the store's unique constraint, which stays
// authoritative under concurrent registration.
func (s *Service) Create(ctx context.Context, in CreateInput) (*View, error) {
	if strings.TrimSpace(in.FirstName) == "" {
		return nil, fmt.Errorf("%w: first name is required", db.ErrInvalid)
	}
	if strings.TrimSpace(in.LastName) == "" {
		return nil, fmt.Errorf("%w: last name is required", db.ErrInvalid)
	}
	if in.Gender != "" && !ValidGender(in.Gender) {
		return nil, fmt.Errorf("%w: unknown gender %q", db.ErrInvalid, in.Gender)
	}
	if err := validateVitals(in.Age, in.Weight, in.Height); err != nil {
		return nil, err
	}

	p := &Patient{
		FirstName:          in.FirstName,
		LastName:           in.LastName,
		Email:              optional(in.Email),
		Phone:              optional(in.Phone),
		Age:                in.Age,
		Gender:             optional(in.Gender),
		Weight:             in.Weight,
		Height:             in.Height,
		BloodType:          optional(in.BloodType),
		MedicalHistory:     optional(in.MedicalHistory),
		CurrentMedications: optional(in.CurrentMedications),
		Allergies:          optional(in.Allergies),
		FamilyHistory:      optional(in.FamilyHistory),
		SmokingStatus:      optional(in.SmokingStatus),
		AlcoholUse:         optional(in.AlcoholUse),
	}

	if in.BirthDate != "" {
		bd, err := time.Parse(dateLayout, in.BirthDate)
		if err != nil {
			return nil, fmt.Errorf("%w: birth date %q is not YYYY-MM-DD", db.ErrInvalid, in.BirthDate)
		}
		p.BirthDate = &bd
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if in.Email != "" {
			return nil, annotateConflict(err, in.Email)
		}
		return nil, err
	}
	return s.view(ctx, p)
}

// Get returns an active patient by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*View, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, p)
}

// List returns a page of active patients, most recently registered first,
// along with the independent total count.
func (s *Service) List(ctx context.Context, limit, offset int) (*pagination.Response, error) {
	params := pagination.Normalize(limit, offset)
	patients, total, err := s.repo.List(ctx, params.Limit, params.Offset)
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, patients)
	if err != nil {
		return nil, err
	}
	return pagination.NewResponse(views, total, params.Limit, params.Offset), nil
}

// Search matches active patients whose first name, last name, email, or
// phone contains the query, case-insensitively. An empty query is rejected
// rather than treated as "match all".
func (s *Service) Search(ctx context.Context, query string) ([]*View, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query is required", db.ErrInvalid)
	}
	patients, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, patients)
}

// Update applies the fields present in the partial update. It reaches
// inactive rows too, so records can be corrected after deactivation.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*View, error) {
	if in.FirstName != nil && strings.TrimSpace(*in.FirstName) == "" {
		return nil, fmt.Errorf("%w: first name cannot be emptied", db.ErrInvalid)
	}
	if in.LastName != nil && strings.TrimSpace(*in.LastName) == "" {
		return nil, fmt.Errorf("%w: last name cannot be emptied", db.ErrInvalid)
	}
	if in.Gender != nil && *in.Gender != "" && !ValidGender(*in.Gender) {
		return nil, fmt.Errorf("%w: unknown gender %q", db.ErrInvalid, *in.Gender)
	}
	if err := validateVitals(in.Age, in.Weight, in.Height); err != nil {
		return nil, err
	}

	upd := &Update{
		FirstName:          in.FirstName,
		LastName:           in.LastName,
		Email:              in.Email,
		Phone:              in.Phone,
		Age:                in.Age,
		Gender:             in.Gender,
		Weight:             in.Weight,
		Height:             in.Height,
		BloodType:          in.BloodType,
		MedicalHistory:     in.MedicalHistory,
		CurrentMedications: in.CurrentMedications,
		Allergies:          in.Allergies,
		FamilyHistory:      in.FamilyHistory,
		SmokingStatus:      in.SmokingStatus,
		AlcoholUse:         in.AlcoholUse,
	}

	// Same policy as creation: a malformed birth date rejects the update
	// instead of being dropped silently.
	if in.BirthDate != nil {
		bd, err := time.Parse(dateLayout, *in.BirthDate)
		if err != nil {
			return nil, fmt.Errorf("%w: birth date %q is not YYYY-MM-DD", db.ErrInvalid, *in.BirthDate)
		}
		upd.BirthDate = &bd
	}

	p, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		if in.Email != nil {
			return nil, annotateConflict(err, *in.Email)
		}
		return nil, err
	}
	return s.view(ctx, p)
}

// Deactivate performs the logical delete. It is idempotent: deactivating an
// already-inactive patient succeeds again, and the row remains retrievable
// through the update path.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.repo.Deactivate(ctx, id)
}

func (s *Service) CountActive(ctx context.Context) (int, error) {
	return s.repo.CountActive(ctx)
}

// Purge hard-deletes a patient and cascades through every consultation and
// child row. Maintenance only; the normal flow never removes data.
func (s *Service) Purge(ctx context.Context, id uuid.UUID) error {
	return s.repo.Purge(ctx, id)
}

func (s *Service) view(ctx context.Context, p *Patient) (*View, error) {
	v := p.View(s.now().UTC())
	if s.consultations != nil {
		n, err := s.consultations.CountByPatient(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		v.TotalConsultations = n
	}
	return v, nil
}

func (s *Service) views(ctx context.Context, patients []*Patient) ([]*View, error) {
	views := make([]*View, 0, len(patients))
	for _, p := range patients {
		v, err := s.view(ctx, p)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// validateVitals bounds the stated measurements. Age tops out at 150 years,
// weight at 600 kg, height at 300 cm; nothing outside those ranges is a
// plausible patient profile.
func validateVitals(age *int, weight, height *float64) error {
	if age != nil && (*age < 0 || *age > 150) {
		return fmt.Errorf("%w: age %d is outside 0-150", db.ErrInvalid, *age)
	}
	if weight != nil && (*weight < 0 || *weight > 600) {
		return fmt.Errorf("%w: weight %g is outside 0-600", db.ErrInvalid, *weight)
	}
	if height != nil && (*height < 0 || *height > 300) {
		return fmt.Errorf("%w: height %g is outside 0-300", db.ErrInvalid, *height)
	}
	return nil
}

// annotateConflict names the offending email on a duplicate registration so
// the caller can identify the existing record.
func annotateConflict(err error, email string) error {
	if errors.Is(err, db.ErrConflict) {
		return fmt.Errorf("email %q is already registered: %w", email, db.ErrConflict)
	}
	return err
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
