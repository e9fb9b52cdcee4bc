package patient

import (
	"time"

	"github.com/google/uuid"
)

// Gender values accepted for a patient profile.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

// ValidGender reports whether g is one of the accepted gender values.
func ValidGender(g string) bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Patient maps to the patients table. Deletion is logical only: active is
// flipped to false and the row and its consultations are retained.
type Patient struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	FirstName          string     `db:"first_name" json:"first_name"`
	LastName           string     `db:"last_name" json:"last_name"`
	Email              *string    `db:"email" json:"email,omitempty"`
	Phone              *string    `db:"phone" json:"phone,omitempty"`
	BirthDate          *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Age                *int       `db:"age" json:"age,omitempty"`
	Gender             *string    `db:"gender" json:"gender,omitempty"`
	Weight             *float64   `db:"weight" json:"weight,omitempty"`
	Height             *float64   `db:"height" json:"height,omitempty"`
	BloodType          *string    `db:"blood_type" json:"blood_type,omitempty"`
	MedicalHistory     *string    `db:"medical_history" json:"medical_history,omitempty"`
	CurrentMedications *string    `db:"current_medications" json:"current_medications,omitempty"`
	Allergies          *string    `db:"allergies" json:"allergies,omitempty"`
	FamilyHistory      *string    `db:"family_history" json:"family_history,omitempty"`
	SmokingStatus      *string    `db:"smoking_status" json:"smoking_status,omitempty"`
	AlcoholUse         *string    `db:"alcohol_use" json:"alcohol_use,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
	Active             bool       `db:"active" json:"active"`
}

// View is the boundary representation of a patient: stored fields plus the
// derived ones, with dates formatted as YYYY-MM-DD and timestamps as RFC 3339.
// Derived values are computed here and nowhere else, so two reads of the same
// stored state always agree.
type View struct {
	ID                 uuid.UUID `json:"id"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	FullName           string    `json:"full_name"`
	Email              *string   `json:"email"`
	Phone              *string   `json:"phone"`
	BirthDate          *string   `json:"birth_date"`
	Age                *int      `json:"age"`
	Gender             *string   `json:"gender"`
	Weight             *float64  `json:"weight"`
	Height             *float64  `json:"height"`
	BMI                *float64  `json:"bmi"`
	BMICategory        *string   `json:"bmi_category"`
	BloodType          *string   `json:"blood_type"`
	MedicalHistory     *string   `json:"medical_history"`
	CurrentMedications *string   `json:"current_medications"`
	Allergies          *string   `json:"allergies"`
	FamilyHistory      *string   `json:"family_history"`
	SmokingStatus      *string   `json:"smoking_status"`
	AlcoholUse         *string   `json:"alcohol_use"`
	CreatedAt          string    `json:"created_at"`
	UpdatedAt          string    `json:"updated_at"`
	Active             bool      `json:"active"`
	TotalConsultations int       `json:"total_consultations"`
}

// View renders the patient for the boundary as of today. The effective age
// comes from the birth date when one is stored, falling back to the stated
// age; BMI and its category appear only when both weight and height are
// positive.
func (p *Patient) View(today time.Time) *View {
	v := &View{
		ID:                 p.ID,
		FirstName:          p.FirstName,
		LastName:           p.LastName,
		FullName:           p.FirstName + " " + p.LastName,
		Email:              p.Email,
		Phone:              p.Phone,
		Age:                EffectiveAge(p.BirthDate, p.Age, today),
		Gender:             p.Gender,
		Weight:             p.Weight,
		Height:             p.Height,
		BloodType:          p.BloodType,
		MedicalHistory:     p.MedicalHistory,
		CurrentMedications: p.CurrentMedications,
		Allergies:          p.Allergies,
		FamilyHistory:      p.FamilyHistory,
		SmokingStatus:      p.SmokingStatus,
		AlcoholUse:         p.AlcoholUse,
		CreatedAt:          p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          p.UpdatedAt.Format(time.RFC3339),
		Active:             p.Active,
	}

	if p.BirthDate != nil {
		bd := p.BirthDate.Format("2006-01-02")
		v.BirthDate = &bd
	}

	if p.Weight != nil && p.Height != nil {
		if bmi, ok := BMI(*p.Weight, *p.Height); ok {
			cat := BMICategory(bmi)
			v.BMI = &bmi
			v.BMICategory = &cat
		}
	}

	return v
}
