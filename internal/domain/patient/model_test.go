package patient

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestPatientViewDerivedFields(t *testing.T) {
	weight := 70.0
	height := 175.0
	birth := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)
	email := "jane@example.com"

	p := &Patient{
		ID:        uuid.New(),
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     &email,
		BirthDate: &birth,
		Weight:    &weight,
		Height:    &height,
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Active:    true,
	}

	today := time.Date(2024, 8, 30, 0, 0, 0, 0, time.UTC)
	v := p.View(today)

	if v.FullName != "Jane Doe" {
		t.Errorf("FullName = %q, want %q", v.FullName, "Jane Doe")
	}
	if v.BMI == nil || *v.BMI != 22.9 {
		t.Errorf("BMI = %v, want 22.9", v.BMI)
	}
	if v.BMICategory == nil || *v.BMICategory != "Normal" {
		t.Errorf("BMICategory = %v, want Normal", v.BMICategory)
	}
	if v.Age == nil || *v.Age != 34 {
		t.Errorf("Age = %v, want 34", v.Age)
	}
	if v.BirthDate == nil || *v.BirthDate != "1990-06-15" {
		t.Errorf("BirthDate = %v, want 1990-06-15", v.BirthDate)
	}
	if v.CreatedAt != "2024-01-02T03:04:05Z" {
		t.Errorf("CreatedAt = %q, want RFC 3339", v.CreatedAt)
	}
}

func TestPatientViewWithoutOptionalFields(t *testing.T) {
	p := &Patient{
		ID:        uuid.New(),
		FirstName: "John",
		LastName:  "Smith",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
		Active:    true,
	}

	v := p.View(time.Now().UTC())

	if v.BMI != nil || v.BMICategory != nil {
		t.Error("BMI must be undefined without weight and height")
	}
	if v.Age != nil {
		t.Error("age must be absent without birth date or stated age")
	}
	if v.BirthDate != nil {
		t.Error("birth date must be absent")
	}
}

func TestPatientViewBMIRequiresBothMeasurements(t *testing.T) {
	weight := 70.0
	p := &Patient{FirstName: "A", LastName: "B", Weight: &weight, Active: true}

	if v := p.View(time.Now().UTC()); v.BMI != nil {
		t.Error("BMI must stay undefined with weight but no height")
	}
}

func TestTwoReadsOfSameStateAgree(t *testing.T) {
	weight := 82.5
	height := 168.0
	stated := 51

	p := &Patient{FirstName: "C", LastName: "D", Weight: &weight, Height: &height, Age: &stated, Active: true}

	today := time.Date(2024, 8, 30, 12, 0, 0, 0, time.UTC)
	v1 := p.View(today)
	v2 := p.View(today)

	if *v1.BMI != *v2.BMI || *v1.BMICategory != *v2.BMICategory || *v1.Age != *v2.Age {
		t.Error("derived fields differ between reads of identical stored state")
	}
}
