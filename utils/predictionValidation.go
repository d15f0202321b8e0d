package utils

import (
	"log"
	"math"
	"strconv"

	"InsureCost/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"
)

// Validation errors
var (
	ErrMissingCredentials = errors.New("Please enter both username and password")
	ErrNotANumber         = errors.New("must be a finite number")
)

// Bounds of the integer-like fields.
const (
	maxAge      = 150
	maxChildren = 20
)

// ValidateLoginForm checks that both credentials were typed.
func ValidateLoginForm(username, password string) error {
	err := validation.Errors{
		"username": validation.Validate(username, validation.Required),
		"password": validation.Validate(password, validation.Required),
	}.Filter()
	if err != nil {
		return &models.ValidationError{Err: ErrMissingCredentials}
	}
	return nil
}

// ValidatePredictionForm checks that numeric fields parse to finite numbers
// and that every categorical field is filled in.
func ValidatePredictionForm(form models.PredictionForm) error {
	err := validation.ValidateStruct(&form,
		validation.Field(&form.Age, validation.By(numberBetween(0, maxAge))),
		validation.Field(&form.Gender, validation.Required),
		validation.Field(&form.BMI, validation.By(finiteNumber)),
		validation.Field(&form.BloodPressure, validation.By(finiteNumber)),
		validation.Field(&form.Diabetic, validation.Required),
		validation.Field(&form.Children, validation.By(numberBetween(0, maxChildren))),
		validation.Field(&form.Smoker, validation.Required),
		validation.Field(&form.Region, validation.Required),
	)
	if err != nil {
		log.Printf("Validation error: %v\n", err)
		return &models.ValidationError{Err: err}
	}
	return nil
}

// CoercePredictionForm validates the form and converts it into the request
// sent to the backend. Children is truncated like an integer parse.
func CoercePredictionForm(form models.PredictionForm) (models.PredictionRequest, error) {
	if err := ValidatePredictionForm(form); err != nil {
		return models.PredictionRequest{}, err
	}

	// Parse errors are impossible past validation.
	age, _ := parseFinite(form.Age)
	bmi, _ := parseFinite(form.BMI)
	bloodPressure, _ := parseFinite(form.BloodPressure)
	children, _ := parseFinite(form.Children)

	return models.PredictionRequest{
		Age:           age,
		Gender:        form.Gender.String(),
		BMI:           bmi,
		BloodPressure: bloodPressure,
		Diabetic:      form.Diabetic.String(),
		Children:      int(math.Trunc(children)),
		Smoker:        form.Smoker.String(),
		Region:        form.Region.String(),
	}, nil
}

func finiteNumber(value interface{}) error {
	v, _ := value.(models.FormValue)
	if _, err := parseFinite(v); err != nil {
		return ErrNotANumber
	}
	return nil
}

func numberBetween(min, max float64) validation.RuleFunc {
	return func(value interface{}) error {
		v, _ := value.(models.FormValue)
		n, err := parseFinite(v)
		if err != nil {
			return ErrNotANumber
		}
		if n < min || n > max {
			return errors.Errorf("must be between %g and %g", min, max)
		}
		return nil
	}
}

func parseFinite(v models.FormValue) (float64, error) {
	n, err := strconv.ParseFloat(v.String(), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, ErrNotANumber
	}
	return n, nil
}
