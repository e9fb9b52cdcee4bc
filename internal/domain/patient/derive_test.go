package patient

import (
	"testing"
	"time"
)

func TestBMI(t *testing.T) {
	tests := []struct {
		name     string
		weight   float64
		height   float64
		want     float64
		wantOK   bool
	}{
		{"normal adult", 70, 175, 22.9, true},
		{"rounds to one decimal", 68.5, 172, 23.2, true},
		{"zero weight undefined", 0, 175, 0, false},
		{"zero height undefined", 70, 0, 0, false},
		{"negative weight undefined", -1, 175, 0, false},
		{"negative height undefined", 70, -1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BMI(tt.weight, tt.height)
			if ok != tt.wantOK {
				t.Fatalf("BMI(%v, %v) ok = %v, want %v", tt.weight, tt.height, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("BMI(%v, %v) = %v, want %v", tt.weight, tt.height, got, tt.want)
			}
		})
	}
}

func TestBMIFormula(t *testing.T) {
	// weight / (height/100)^2 = 80 / (1.8)^2 = 24.691... -> 24.7
	got, ok := BMI(80, 180)
	if !ok {
		t.Fatal("expected defined BMI")
	}
	if got != 24.7 {
		t.Errorf("BMI(80, 180) = %v, want 24.7", got)
	}
}

func TestBMICategoryBoundaries(t *testing.T) {
	tests := []struct {
		bmi  float64
		want string
	}{
		{10.0, "Underweight"},
		{18.4, "Underweight"},
		{18.5, "Normal"},
		{24.999, "Normal"},
		{25.0, "Overweight"},
		{29.9, "Overweight"},
		{30.0, "Obese"},
		{45.0, "Obese"},
	}

	for _, tt := range tests {
		if got := BMICategory(tt.bmi); got != tt.want {
			t.Errorf("BMICategory(%v) = %q, want %q", tt.bmi, got, tt.want)
		}
	}
}

func TestEffectiveAgeFromBirthDate(t *testing.T) {
	birth := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		today time.Time
		want  int
	}{
		{"after birthday", time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), 34},
		{"on birthday", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), 34},
		{"day before birthday", time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC), 33},
		{"earlier month", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EffectiveAge(&birth, nil, tt.today)
			if got == nil {
				t.Fatal("expected an age")
			}
			if *got != tt.want {
				t.Errorf("EffectiveAge = %d, want %d", *got, tt.want)
			}
		})
	}
}

func TestEffectiveAgeStableOnSameDay(t *testing.T) {
	birth := time.Date(1985, 3, 20, 0, 0, 0, 0, time.UTC)
	today := time.Date(2024, 8, 30, 0, 0, 0, 0, time.UTC)

	first := EffectiveAge(&birth, nil, today)
	second := EffectiveAge(&birth, nil, today)
	if *first != *second {
		t.Errorf("re-computation on the same day changed: %d then %d", *first, *second)
	}
}

func TestEffectiveAgeFallsBackToStatedAge(t *testing.T) {
	stated := 42
	today := time.Date(2024, 8, 30, 0, 0, 0, 0, time.UTC)

	got := EffectiveAge(nil, &stated, today)
	if got == nil || *got != 42 {
		t.Errorf("expected stated age 42, got %v", got)
	}

	if got := EffectiveAge(nil, nil, today); got != nil {
		t.Errorf("expected nil age without birth date or stated age, got %d", *got)
	}
}

func TestEffectiveAgeBirthDateWinsOverStatedAge(t *testing.T) {
	birth := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	stated := 99
	today := time.Date(2024, 8, 30, 0, 0, 0, 0, time.UTC)

	got := EffectiveAge(&birth, &stated, today)
	if got == nil || *got != 24 {
		t.Errorf("expected computed age 24, got %v", got)
	}
}
