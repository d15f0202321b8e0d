package models

// HistoryRecord is a persisted prediction. The backend owns these records;
// the dashboard only reads them.
type HistoryRecord struct {
	Timestamp     string  `json:"timestamp"`
	PredictedCost float64 `json:"predicted_cost"`
	Age           float64 `json:"age"`
	Gender        string  `json:"gender"`
	BMI           float64 `json:"bmi"`
	BloodPressure float64 `json:"bloodpressure"`
	Diabetic      string  `json:"diabetic"`
	Smoker        string  `json:"smoker"`
	Region        string  `json:"region"`
	Children      int     `json:"children"`
}

// HistoryResponse is the body of GET /api/history. The backend answers 200
// even when its database is unreachable, with an empty list and a message.
type HistoryResponse struct {
	Predictions []HistoryRecord `json:"predictions"`
	DBConnected bool            `json:"db_connected"`
	Source      string          `json:"source"`
	Message     string          `json:"message"`
	TotalInDB   int             `json:"total_in_db"`
	Error       string          `json:"error"`
}
