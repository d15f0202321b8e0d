package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// FormValue is a raw form field. Browsers may post numbers or strings, both
// are kept as their textual form until the prediction workflow coerces them.
type FormValue string

func (v *FormValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FormValue(s)
		return nil
	}
	*v = FormValue(data)
	return nil
}

func (v FormValue) String() string {
	return strings.TrimSpace(string(v))
}

// PredictionForm holds the prediction form exactly as the user typed it.
type PredictionForm struct {
	Age           FormValue `json:"age"`
	Gender        FormValue `json:"gender"`
	BMI           FormValue `json:"bmi"`
	BloodPressure FormValue `json:"bloodpressure"`
	Diabetic      FormValue `json:"diabetic"`
	Children      FormValue `json:"children"`
	Smoker        FormValue `json:"smoker"`
	Region        FormValue `json:"region"`
}

// PredictionRequest is the body of POST /api/predict.
type PredictionRequest struct {
	Age           float64 `json:"age"`
	Gender        string  `json:"gender"`
	BMI           float64 `json:"bmi"`
	BloodPressure float64 `json:"bloodpressure"`
	Diabetic      string  `json:"diabetic"`
	Children      int     `json:"children"`
	Smoker        string  `json:"smoker"`
	Region        string  `json:"region"`
}

// InputSummary is the backend echo of the request, normalised for display.
type InputSummary struct {
	Age           float64 `json:"age"`
	Gender        string  `json:"gender"`
	BMI           float64 `json:"bmi"`
	BloodPressure float64 `json:"bloodpressure"`
	Diabetic      string  `json:"diabetic"`
	Children      int     `json:"children"`
	Smoker        string  `json:"smoker"`
	Region        string  `json:"region"`
}

// PredictionResult is the success body of POST /api/predict. It is transient
// and never persisted by the dashboard.
type PredictionResult struct {
	Success       bool         `json:"success"`
	PredictedCost float64      `json:"predicted_cost"`
	DBSaved       bool         `json:"db_saved"`
	InputSummary  InputSummary `json:"input_summary"`
}

// RetrainResult is the success body of POST /api/retrain.
type RetrainResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	TotalRecords  int    `json:"total_records"`
	LastTrainTime string `json:"last_train_time"`
}
