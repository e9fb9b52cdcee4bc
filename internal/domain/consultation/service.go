package consultation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medassist/medassist/internal/platform/db"
	"github.com/medassist/medassist/pkg/pagination"
)

// CreateInput carries the scalar field values for recording a diagnostic
// encounter. SymptomNames become one symptom row each; an empty list is
// permitted when free text captures the symptoms elsewhere.
type CreateInput struct {
	PatientID             uuid.UUID
	ConsultationDate      string // RFC 3339; empty means now
	SymptomNames          []string
	ChiefComplaint        string
	DurationOfSymptoms    string
	Severity              string
	AdditionalNotes       string
	AIDiagnosis           string
	DifferentialDiagnoses string
	UrgencyLevel          string
	ModelUsed             string
	ModelProvider         string
	WebSearchEnabled      bool
}

// PrescriptionInput carries the scalar field values for one recommended
// medication.
type PrescriptionInput struct {
	MedicationName string
	MedicationType string
	Dosage         string
	Frequency      string
	Duration       string
	Purpose        string
	Instructions   string
	Warnings       string
	IsOTC          bool
}

// DiagnosticTestInput carries the scalar field values for one recommended
// test.
type DiagnosticTestInput struct {
	TestName string
	TestType string
	Priority string
	Reason   string
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create records a consultation and its symptom rows as one atomic unit.
// The patient must exist, active or not, so encounters can still be recorded
// against a recently deactivated patient; an unknown patient surfaces as a
// referential error from the store's foreign key, not an application
// pre-check. Each symptom inherits the consultation's severity unless the
// caller supplied one.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Consultation, error) {
	if in.PatientID == uuid.Nil {
		return nil, fmt.Errorf("%w: patient id is required", db.ErrInvalid)
	}
	if in.Severity != "" && !ValidSeverity(in.Severity) {
		return nil, fmt.Errorf("%w: unknown severity %q", db.ErrInvalid, in.Severity)
	}
	if in.UrgencyLevel != "" && !ValidUrgency(in.UrgencyLevel) {
		return nil, fmt.Errorf("%w: unknown urgency level %q", db.ErrInvalid, in.UrgencyLevel)
	}

	c := &Consultation{
		PatientID:             in.PatientID,
		ChiefComplaint:        optional(in.ChiefComplaint),
		DurationOfSymptoms:    optional(in.DurationOfSymptoms),
		Severity:              optional(in.Severity),
		AdditionalNotes:       optional(in.AdditionalNotes),
		AIDiagnosis:           optional(in.AIDiagnosis),
		DifferentialDiagnoses: optional(in.DifferentialDiagnoses),
		UrgencyLevel:          optional(in.UrgencyLevel),
		ModelUsed:             optional(in.ModelUsed),
		ModelProvider:         optional(in.ModelProvider),
		WebSearchEnabled:      in.WebSearchEnabled,
	}

	if in.ConsultationDate != "" {
		at, err := time.Parse(time.RFC3339, in.ConsultationDate)
		if err != nil {
			return nil, fmt.Errorf("%w: consultation date %q is not RFC 3339", db.ErrInvalid, in.ConsultationDate)
		}
		c.ConsultationDate = at
	}

	symptoms := make([]*Symptom, 0, len(in.SymptomNames))
	for _, name := range in.SymptomNames {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: symptom name cannot be empty", db.ErrInvalid)
		}
		symptoms = append(symptoms, &Symptom{
			SymptomName: name,
			Severity:    optional(in.Severity),
		})
	}

	if err := s.repo.Create(ctx, c, symptoms); err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns a consultation with its symptoms, prescriptions, and tests.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByPatient returns a page of the patient's consultations, newest first,
// with the independent total count.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) (*pagination.Response, error) {
	params := pagination.Normalize(limit, offset)
	consultations, total, err := s.repo.ListByPatient(ctx, patientID, params.Limit, params.Offset)
	if err != nil {
		return nil, err
	}
	return pagination.NewResponse(consultations, total, params.Limit, params.Offset), nil
}

// ListRecent returns the newest consultations across all patients.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]*Consultation, error) {
	params := pagination.Normalize(limit, 0)
	return s.repo.ListRecent(ctx, params.Limit)
}

func (s *Service) CountByPatient(ctx context.Context, patientID uuid.UUID) (int, error) {
	return s.repo.CountByPatient(ctx, patientID)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// AddPrescription appends one recommended medication to an existing
// consultation. A missing consultation surfaces as a referential error.
func (s *Service) AddPrescription(ctx context.Context, consultationID uuid.UUID, in PrescriptionInput) (*Prescription, error) {
	if strings.TrimSpace(in.MedicationName) == "" {
		return nil, fmt.Errorf("%w: medication name is required", db.ErrInvalid)
	}

	p := &Prescription{
		ConsultationID: consultationID,
		MedicationName: in.MedicationName,
		MedicationType: optional(in.MedicationType),
		Dosage:         optional(in.Dosage),
		Frequency:      optional(in.Frequency),
		Duration:       optional(in.Duration),
		Purpose:        optional(in.Purpose),
		Instructions:   optional(in.Instructions),
		Warnings:       optional(in.Warnings),
		IsOTC:          in.IsOTC,
	}
	if err := s.repo.AddPrescription(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// AddDiagnosticTest appends one recommended test to an existing consultation.
func (s *Service) AddDiagnosticTest(ctx context.Context, consultationID uuid.UUID, in DiagnosticTestInput) (*DiagnosticTest, error) {
	if strings.TrimSpace(in.TestName) == "" {
		return nil, fmt.Errorf("%w: test name is required", db.ErrInvalid)
	}

	t := &DiagnosticTest{
		ConsultationID: consultationID,
		TestName:       in.TestName,
		TestType:       optional(in.TestType),
		Priority:       optional(in.Priority),
		Reason:         optional(in.Reason),
	}
	if err := s.repo.AddDiagnosticTest(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// PrescriptionsByPatient joins across all of the patient's consultations,
// newest first.
func (s *Service) PrescriptionsByPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error) {
	return s.repo.PrescriptionsByPatient(ctx, patientID)
}

func (s *Service) PrescriptionsByConsultation(ctx context.Context, consultationID uuid.UUID) ([]*Prescription, error) {
	return s.repo.PrescriptionsByConsultation(ctx, consultationID)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
