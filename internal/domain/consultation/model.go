package consultation

import (
	"time"

	"github.com/google/uuid"
)

// Severity grades for a consultation and its symptoms.
const (
	SeverityMild     = "Mild"
	SeverityModerate = "Moderate"
	SeveritySevere   = "Severe"
	SeverityCritical = "Critical"
)

// ValidSeverity reports whether s is one of the accepted severity grades.
func ValidSeverity(s string) bool {
	switch s {
	case SeverityMild, SeverityModerate, SeveritySevere, SeverityCritical:
		return true
	}
	return false
}

// Urgency levels attached to an AI diagnosis.
const (
	UrgencyNonUrgent     = "Non-Urgent"
	UrgencyScheduleVisit = "Schedule Visit Within 48-72 Hours"
	UrgencySeekCareToday = "Seek Care Today"
	UrgencyEmergency     = "Emergency"
)

// ValidUrgency reports whether u is one of the accepted urgency levels.
func ValidUrgency(u string) bool {
	switch u {
	case UrgencyNonUrgent, UrgencyScheduleVisit, UrgencySeekCareToday, UrgencyEmergency:
		return true
	}
	return false
}

// Consultation maps to the consultations table: one diagnostic encounter,
// owned by exactly one patient. It is created atomically together with its
// symptom rows and is read-only afterward, except for the two enrichment
// operations that append a prescription or a diagnostic test.
type Consultation struct {
	ID                    uuid.UUID `db:"id" json:"id"`
	PatientID             uuid.UUID `db:"patient_id" json:"patient_id"`
	ConsultationDate      time.Time `db:"consultation_date" json:"consultation_date"`
	ChiefComplaint        *string   `db:"chief_complaint" json:"chief_complaint,omitempty"`
	DurationOfSymptoms    *string   `db:"duration_of_symptoms" json:"duration_of_symptoms,omitempty"`
	Severity              *string   `db:"severity" json:"severity,omitempty"`
	AdditionalNotes       *string   `db:"additional_notes" json:"additional_notes,omitempty"`
	AIDiagnosis           *string   `db:"ai_diagnosis" json:"ai_diagnosis,omitempty"`
	DifferentialDiagnoses *string   `db:"differential_diagnoses" json:"differential_diagnoses,omitempty"`
	UrgencyLevel          *string   `db:"urgency_level" json:"urgency_level,omitempty"`
	ModelUsed             *string   `db:"model_used" json:"model_used,omitempty"`
	ModelProvider         *string   `db:"model_provider" json:"model_provider,omitempty"`
	WebSearchEnabled      bool      `db:"web_search_enabled" json:"web_search_enabled"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`

	// Loaded by the singular getter; nil on list reads.
	Symptoms      []*Symptom        `json:"symptoms,omitempty"`
	Prescriptions []*Prescription   `json:"prescriptions,omitempty"`
	Tests         []*DiagnosticTest `json:"tests,omitempty"`
}

// Symptom maps to the symptoms table.
type Symptom struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	ConsultationID uuid.UUID  `db:"consultation_id" json:"consultation_id"`
	SymptomName    string     `db:"symptom_name" json:"symptom_name"`
	Category       *string    `db:"category" json:"category,omitempty"`
	Severity       *string    `db:"severity" json:"severity,omitempty"`
	OnsetDate      *time.Time `db:"onset_date" json:"onset_date,omitempty"`
	Description    *string    `db:"description" json:"description,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// Prescription maps to the prescriptions table.
type Prescription struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ConsultationID uuid.UUID `db:"consultation_id" json:"consultation_id"`
	MedicationName string    `db:"medication_name" json:"medication_name"`
	MedicationType *string   `db:"medication_type" json:"medication_type,omitempty"`
	Dosage         *string   `db:"dosage" json:"dosage,omitempty"`
	Frequency      *string   `db:"frequency" json:"frequency,omitempty"`
	Duration       *string   `db:"duration" json:"duration,omitempty"`
	Purpose        *string   `db:"purpose" json:"purpose,omitempty"`
	Instructions   *string   `db:"instructions" json:"instructions,omitempty"`
	Warnings       *string   `db:"warnings" json:"warnings,omitempty"`
	IsOTC          bool      `db:"is_otc" json:"is_otc"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// DiagnosticTest maps to the diagnostic_tests table.
type DiagnosticTest struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ConsultationID uuid.UUID `db:"consultation_id" json:"consultation_id"`
	TestName       string    `db:"test_name" json:"test_name"`
	TestType       *string   `db:"test_type" json:"test_type,omitempty"`
	Priority       *string   `db:"priority" json:"priority,omitempty"`
	Reason         *string   `db:"reason" json:"reason,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
