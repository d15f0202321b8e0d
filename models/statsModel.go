package models

// Stats is the body of GET /api/data/stats.
type Stats struct {
	TotalRecords   int     `json:"total_records"`
	AvgClaim       float64 `json:"avg_claim"`
	MaxClaim       float64 `json:"max_claim"`
	MinClaim       float64 `json:"min_claim"`
	Features       int     `json:"features"`
	DBConnected    bool    `json:"db_connected"`
	LastModelTrain *string `json:"last_model_train"`
}

// DBStatus is the body of GET /api/db/status.
type DBStatus struct {
	Connected        bool    `json:"connected"`
	DataLoaded       bool    `json:"df_loaded"`
	DataRows         int     `json:"df_rows"`
	ModelReady       bool    `json:"model_ready"`
	LastTrainTime    *string `json:"last_train_time"`
	TotalPredictions *int    `json:"total_predictions"`
	DBError          string  `json:"db_error"`
	Error            string  `json:"error"`
}
