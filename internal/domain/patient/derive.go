package patient

import (
	"math"
	"time"
)

// Derived patient fields are free functions over plain values so they can be
// unit-tested without a store and reused anywhere a patient is surfaced.

// BMI computes the body mass index from weight in kilograms and height in
// centimeters, rounded to one decimal place. It is undefined (ok=false)
// unless both inputs are positive.
func BMI(weightKg, heightCm float64) (bmi float64, ok bool) {
	if weightKg <= 0 || heightCm <= 0 {
		return 0, false
	}
	m := heightCm / 100
	return math.Round(weightKg/(m*m)*10) / 10, true
}

// BMICategory returns the category for a defined BMI value.
func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25.0:
		return "Normal"
	case bmi < 30.0:
		return "Overweight"
	default:
		return "Obese"
	}
}

// EffectiveAge returns the age computed from the birth date when one is
// present: the calendar-year difference, minus one when today falls before
// the birthday. Without a birth date it falls back to the stated age, which
// may itself be nil.
func EffectiveAge(birthDate *time.Time, statedAge *int, today time.Time) *int {
	if birthDate == nil {
		return statedAge
	}
	years := today.Year() - birthDate.Year()
	if today.Month() < birthDate.Month() ||
		(today.Month() == birthDate.Month() && today.Day() < birthDate.Day()) {
		years--
	}
	return &years
}
