package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// ChartKind identifies one of the six fixed dashboard visualisations.
type ChartKind string

const (
	ChartAgeDistribution ChartKind = "age"
	ChartSmokerImpact    ChartKind = "smoker"
	ChartGenderSplit     ChartKind = "gender"
	ChartDiabeticSplit   ChartKind = "diabetic"
	ChartRegionalSplit   ChartKind = "region"
	ChartBMIClaim        ChartKind = "bmi"
)

// ChartKinds lists every chart kind in drawing order.
var ChartKinds = []ChartKind{
	ChartAgeDistribution,
	ChartSmokerImpact,
	ChartGenderSplit,
	ChartDiabeticSplit,
	ChartRegionalSplit,
	ChartBMIClaim,
}

// ParseChartKind validates a chart kind coming from a URL.
func ParseChartKind(s string) (ChartKind, bool) {
	for _, kind := range ChartKinds {
		if string(kind) == s {
			return kind, true
		}
	}
	return "", false
}

// ChartType is the visual encoding used for a chart kind.
type ChartType string

const (
	ChartTypeBar      ChartType = "bar"
	ChartTypePie      ChartType = "pie"
	ChartTypeDoughnut ChartType = "doughnut"
	ChartTypeScatter  ChartType = "scatter"
)

// LabeledValue is one category of an aggregate.
type LabeledValue struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Point is one unaggregated (x, y) pair.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ChartDataset is the aggregate backing one chart kind. Categorical kinds use
// Values, the BMI scatter uses Points.
type ChartDataset struct {
	Kind   ChartKind      `json:"kind"`
	Values []LabeledValue `json:"values,omitempty"`
	Points []Point        `json:"points,omitempty"`
}

// Empty reports whether the dataset carries nothing to draw.
func (d ChartDataset) Empty() bool {
	return len(d.Values) == 0 && len(d.Points) == 0
}

// ChartSpec is the renderer-neutral description of a chart to draw.
type ChartSpec struct {
	Kind   ChartKind `json:"kind"`
	Type   ChartType `json:"type"`
	Title  string    `json:"title"`
	Labels []string  `json:"labels,omitempty"`
	Values []float64 `json:"values,omitempty"`
	Points []Point   `json:"points,omitempty"`
	XAxis  string    `json:"x_axis,omitempty"`
	YAxis  string    `json:"y_axis,omitempty"`
}

// ChartInstance is a live rendering handle owned by the chart lifecycle manager.
type ChartInstance struct {
	ID   string    `json:"id"`
	Kind ChartKind `json:"kind"`
	Type ChartType `json:"type"`
}

// ChartsResponse is the body of GET /api/data/charts. Each aggregate is kept
// raw so a malformed one only affects its own chart.
type ChartsResponse struct {
	TotalRecords     int             `json:"total_records"`
	Error            string          `json:"error"`
	AgeDistribution  json.RawMessage `json:"age_distribution"`
	SmokerImpact     json.RawMessage `json:"smoker_impact"`
	GenderAnalysis   json.RawMessage `json:"gender_analysis"`
	DiabeticAnalysis json.RawMessage `json:"diabetic_analysis"`
	RegionalAnalysis json.RawMessage `json:"regional_analysis"`
	BMIClaim         json.RawMessage `json:"bmi_claim"`
}

// Dataset decodes the aggregate for one chart kind.
func (r *ChartsResponse) Dataset(kind ChartKind) (ChartDataset, error) {
	dataset := ChartDataset{Kind: kind}
	var err error

	switch kind {
	case ChartAgeDistribution:
		dataset.Values, err = decodeAgeDistribution(r.AgeDistribution)
	case ChartSmokerImpact:
		dataset.Values, err = decodeSmokerImpact(r.SmokerImpact)
	case ChartGenderSplit:
		dataset.Values, err = decodeLabeledValues(r.GenderAnalysis)
	case ChartDiabeticSplit:
		dataset.Values, err = decodeLabeledValues(r.DiabeticAnalysis)
	case ChartRegionalSplit:
		dataset.Values, err = decodeLabeledValues(r.RegionalAnalysis)
	case ChartBMIClaim:
		dataset.Points, err = decodePoints(r.BMIClaim)
	default:
		err = fmt.Errorf("unknown chart kind")
	}
	if err != nil {
		return ChartDataset{Kind: kind}, &PartialDataError{Kind: kind, Reason: err.Error()}
	}
	return dataset, nil
}

func isMissing(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeAgeDistribution(raw json.RawMessage) ([]LabeledValue, error) {
	if isMissing(raw) {
		return nil, fmt.Errorf("dataset missing")
	}
	var payload struct {
		Labels []string  `json:"labels"`
		Data   []float64 `json:"data"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("malformed age distribution: %w", err)
	}
	if len(payload.Labels) != len(payload.Data) {
		return nil, fmt.Errorf("age distribution has %d labels but %d values", len(payload.Labels), len(payload.Data))
	}
	values := make([]LabeledValue, 0, len(payload.Labels))
	for i, label := range payload.Labels {
		values = append(values, LabeledValue{Label: label, Value: payload.Data[i]})
	}
	return values, nil
}

func decodeSmokerImpact(raw json.RawMessage) ([]LabeledValue, error) {
	if isMissing(raw) {
		return nil, fmt.Errorf("dataset missing")
	}
	var groups map[string]json.RawMessage
	if err := json.Unmarshal(raw, &groups); err != nil {
		return nil, fmt.Errorf("malformed smoker impact: %w", err)
	}
	if len(groups) == 0 {
		return nil, nil
	}
	mean, ok := groups["mean"]
	if !ok {
		return nil, fmt.Errorf("smoker impact has no mean aggregate")
	}
	values, err := decodeLabeledValues(mean)
	if err != nil {
		return nil, err
	}
	for i := range values {
		values[i].Value = math.Round(values[i].Value)
	}
	return values, nil
}

// decodeLabeledValues reads a {label: number} object keeping the key order the
// backend sent, which is already sorted by count.
func decodeLabeledValues(raw json.RawMessage) ([]LabeledValue, error) {
	if isMissing(raw) {
		return nil, fmt.Errorf("dataset missing")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("malformed aggregate: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("aggregate is not an object")
	}

	var values []LabeledValue
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("malformed aggregate: %w", err)
		}
		label, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("aggregate key is not a string")
		}
		var value float64
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("aggregate %q is not a number", label)
		}
		values = append(values, LabeledValue{Label: label, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("malformed aggregate: %w", err)
	}
	return values, nil
}

func decodePoints(raw json.RawMessage) ([]Point, error) {
	if isMissing(raw) {
		return nil, fmt.Errorf("dataset missing")
	}
	var pairs [][]float64
	if err := json.Unmarshal(raw, &pairs); err != nil {
		return nil, fmt.Errorf("malformed bmi/claim pairs: %w", err)
	}
	points := make([]Point, 0, len(pairs))
	for i, pair := range pairs {
		if len(pair) != 2 {
			return nil, fmt.Errorf("bmi/claim pair %d has %d values", i, len(pair))
		}
		points = append(points, Point{X: pair[0], Y: pair[1]})
	}
	return points, nil
}
