package utils

import (
	"errors"
	"testing"

	"InsureCost/models"
)

func validForm() models.PredictionForm {
	return models.PredictionForm{
		Age:           "45",
		Gender:        "male",
		BMI:           "27.3",
		BloodPressure: "120",
		Diabetic:      "No",
		Children:      "2",
		Smoker:        "No",
		Region:        "southeast",
	}
}

func TestCoercePredictionForm(t *testing.T) {
	form := validForm()
	form.Children = "2.7"
	form.Region = "  southeast "

	req, err := CoercePredictionForm(form)
	if err != nil {
		t.Fatalf("CoercePredictionForm() error = %v", err)
	}
	if req.Age != 45 || req.BMI != 27.3 || req.BloodPressure != 120 {
		t.Errorf("numeric fields not parsed: %+v", req)
	}
	if req.Children != 2 {
		t.Errorf("Children = %d, want 2", req.Children)
	}
	if req.Region != "southeast" {
		t.Errorf("Region = %q, want trimmed value", req.Region)
	}
}

func TestCoercePredictionFormRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *models.PredictionForm)
	}{
		{"non numeric age", func(f *models.PredictionForm) { f.Age = "forty" }},
		{"empty bmi", func(f *models.PredictionForm) { f.BMI = "" }},
		{"NaN blood pressure", func(f *models.PredictionForm) { f.BloodPressure = "NaN" }},
		{"infinite children", func(f *models.PredictionForm) { f.Children = "Inf" }},
		{"negative age", func(f *models.PredictionForm) { f.Age = "-1" }},
		{"huge age", func(f *models.PredictionForm) { f.Age = "1e300" }},
		{"huge children", func(f *models.PredictionForm) { f.Children = "1e300" }},
		{"too many children", func(f *models.PredictionForm) { f.Children = "21" }},
		{"missing gender", func(f *models.PredictionForm) { f.Gender = "" }},
		{"missing region", func(f *models.PredictionForm) { f.Region = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)

			_, err := CoercePredictionForm(form)
			var validationErr *models.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestCoercePredictionFormBoundsMessage(t *testing.T) {
	form := validForm()
	form.Children = "1e300"

	_, err := CoercePredictionForm(form)
	if err == nil || err.Error() != "children: must be between 0 and 20." {
		t.Errorf("CoercePredictionForm() error = %v", err)
	}

	form.Children = "20"
	if req, err := CoercePredictionForm(form); err != nil || req.Children != 20 {
		t.Errorf("CoercePredictionForm() = %+v, %v", req, err)
	}
}

func TestValidateLoginForm(t *testing.T) {
	if err := ValidateLoginForm("admin", "secret"); err != nil {
		t.Errorf("ValidateLoginForm() error = %v", err)
	}

	for _, creds := range [][2]string{{"", "secret"}, {"admin", ""}, {"", ""}} {
		err := ValidateLoginForm(creds[0], creds[1])
		if err == nil || err.Error() != "Please enter both username and password" {
			t.Errorf("ValidateLoginForm(%q, %q) = %v", creds[0], creds[1], err)
		}
	}
}
