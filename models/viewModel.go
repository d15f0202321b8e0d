package models

// Stage is the top-level dashboard state.
type Stage string

const (
	StageLoggedOut Stage = "logged_out"
	StageLoggingIn Stage = "logging_in"
	StageLoggedIn  Stage = "logged_in"
)

// Tab is one of the mutually exclusive dashboard views.
type Tab string

const (
	TabPredict   Tab = "predict"
	TabAnalytics Tab = "analytics"
	TabHistory   Tab = "history"
)

// Tabs lists the dashboard tabs in navigation order.
var Tabs = []Tab{TabPredict, TabAnalytics, TabHistory}

// ParseTab validates a tab name.
func ParseTab(name string) (Tab, bool) {
	for _, tab := range Tabs {
		if string(tab) == name {
			return tab, true
		}
	}
	return "", false
}

// ControlState is the state of a button that can be put into a busy state.
type ControlState struct {
	Disabled bool   `json:"disabled"`
	Label    string `json:"label"`
	Spinner  bool   `json:"spinner"`
}

type LoginView struct {
	Error string `json:"error,omitempty"`
}

type UserBadge struct {
	Initials  string `json:"initials"`
	Name      string `json:"name"`
	RoleText  string `json:"role_text"`
	LoginTime string `json:"login_time"`
}

type StatsView struct {
	TotalRecords   string `json:"total_records"`
	AvgClaim       string `json:"avg_claim"`
	MaxClaim       string `json:"max_claim"`
	MinClaim       string `json:"min_claim"`
	DBConnected    bool   `json:"db_connected"`
	LastModelTrain string `json:"last_model_train,omitempty"`
	DBStatus       string `json:"db_status,omitempty"`
}

type SummaryItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ResultCard is the rendered prediction result.
type ResultCard struct {
	Cost    string        `json:"cost"`
	DBSaved bool          `json:"db_saved"`
	Summary []SummaryItem `json:"summary"`
}

type PredictionView struct {
	Button ControlState   `json:"button"`
	Form   PredictionForm `json:"form"`
	Result *ResultCard    `json:"result,omitempty"`
}

type RetrainView struct {
	Visible bool         `json:"visible"`
	Button  ControlState `json:"button"`
}

// HistoryItem is one rendered history card.
type HistoryItem struct {
	Timestamp string        `json:"timestamp"`
	Cost      string        `json:"cost"`
	Fields    []SummaryItem `json:"fields"`
}

type HistoryView struct {
	Items        []HistoryItem `json:"items"`
	Empty        bool          `json:"empty"`
	EmptyMessage string        `json:"empty_message,omitempty"`
	Status       string        `json:"status,omitempty"`
}

// CanvasView is what one chart canvas currently shows: either a live chart
// instance or a placeholder message.
type CanvasView struct {
	Kind        ChartKind `json:"kind"`
	Type        ChartType `json:"type,omitempty"`
	InstanceID  string    `json:"instance_id,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
}

// Alert is a blocking message the user must acknowledge.
type Alert struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// ViewState is the complete display model of one dashboard tab.
type ViewState struct {
	Version    uint64                   `json:"version"`
	Stage      Stage                    `json:"stage"`
	Login      LoginView                `json:"login"`
	User       *UserBadge               `json:"user,omitempty"`
	ActiveTab  Tab                      `json:"active_tab,omitempty"`
	Stats      StatsView                `json:"stats"`
	Prediction PredictionView           `json:"prediction"`
	Retrain    RetrainView              `json:"retrain"`
	History    HistoryView              `json:"history"`
	Charts     map[ChartKind]CanvasView `json:"charts"`
	Alerts     []Alert                  `json:"alerts"`
}

// DashboardVisible reports whether the dashboard (rather than the login
// page) is shown.
func (v *ViewState) DashboardVisible() bool {
	return v.Stage == StageLoggedIn
}

// Clone returns a deep copy safe to hand to another goroutine.
func (v *ViewState) Clone() ViewState {
	out := *v
	if v.User != nil {
		user := *v.User
		out.User = &user
	}
	if v.Prediction.Result != nil {
		result := *v.Prediction.Result
		result.Summary = append([]SummaryItem(nil), v.Prediction.Result.Summary...)
		out.Prediction.Result = &result
	}
	if v.History.Items != nil {
		out.History.Items = make([]HistoryItem, len(v.History.Items))
		for i, item := range v.History.Items {
			item.Fields = append([]SummaryItem(nil), item.Fields...)
			out.History.Items[i] = item
		}
	}
	if v.Charts != nil {
		out.Charts = make(map[ChartKind]CanvasView, len(v.Charts))
		for kind, canvas := range v.Charts {
			out.Charts[kind] = canvas
		}
	}
	out.Alerts = append([]Alert(nil), v.Alerts...)
	return out
}
