package services

import (
	"log"
	"strings"
	"sync"

	"InsureCost/models"
	"InsureCost/utils"
)

const (
	noDataMessage      = "No data available"
	chartFailedMessage = "Chart unavailable"
)

// ChartRenderer draws charts. It is the only piece that knows about the
// drawing backend, so chart selection stays testable without drawing.
type ChartRenderer interface {
	Render(spec models.ChartSpec) (models.ChartInstance, error)
	Destroy(instance models.ChartInstance) error
	Placeholder(kind models.ChartKind, message string) error
}

// ChartManager owns at most one live chart instance per chart kind.
type ChartManager struct {
	renderer ChartRenderer
	view     *ViewStore

	mu        sync.Mutex
	instances map[models.ChartKind]models.ChartInstance
}

func NewChartManager(renderer ChartRenderer, view *ViewStore) *ChartManager {
	return &ChartManager{
		renderer:  renderer,
		view:      view,
		instances: make(map[models.ChartKind]models.ChartInstance),
	}
}

// Redraw replaces every chart with one built from charts. guard is evaluated
// under the chart lock; when it reports the data as stale nothing changes.
// A failure on one kind only leaves that canvas with a placeholder.
func (m *ChartManager) Redraw(charts *models.ChartsResponse, guard func() bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if guard != nil && !guard() {
		return models.ErrStaleResponse
	}

	canvases := make(map[models.ChartKind]models.CanvasView, len(models.ChartKinds))
	for _, kind := range models.ChartKinds {
		m.destroyLocked(kind)
		canvases[kind] = m.drawLocked(kind, charts)
	}
	m.publish(canvases)
	return nil
}

// ShowNoData clears every chart and puts the "no data" placeholder on all
// canvases without creating any instance.
func (m *ChartManager) ShowNoData(guard func() bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if guard != nil && !guard() {
		return models.ErrStaleResponse
	}

	canvases := make(map[models.ChartKind]models.CanvasView, len(models.ChartKinds))
	for _, kind := range models.ChartKinds {
		m.destroyLocked(kind)
		canvases[kind] = m.placeholderLocked(kind, noDataMessage)
	}
	m.publish(canvases)
	return nil
}

// Reset destroys every live instance. The caller resets the canvases.
func (m *ChartManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, kind := range models.ChartKinds {
		m.destroyLocked(kind)
	}
}

// Instances returns a copy of the live instances.
func (m *ChartManager) Instances() map[models.ChartKind]models.ChartInstance {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[models.ChartKind]models.ChartInstance, len(m.instances))
	for kind, instance := range m.instances {
		out[kind] = instance
	}
	return out
}

func (m *ChartManager) destroyLocked(kind models.ChartKind) {
	instance, ok := m.instances[kind]
	if !ok {
		return
	}
	delete(m.instances, kind)
	if err := m.renderer.Destroy(instance); err != nil {
		log.Printf("Error destroying %s chart: %v", kind, err)
	}
}

func (m *ChartManager) drawLocked(kind models.ChartKind, charts *models.ChartsResponse) models.CanvasView {
	dataset, err := charts.Dataset(kind)
	if err != nil {
		log.Printf("Skipping chart: %v", err)
		return m.placeholderLocked(kind, noDataMessage)
	}

	spec, ok := BuildChartSpec(dataset)
	if !ok {
		return m.placeholderLocked(kind, noDataMessage)
	}

	instance, err := m.renderer.Render(spec)
	if err != nil {
		log.Printf("%s chart error: %v", kind, err)
		return m.placeholderLocked(kind, chartFailedMessage)
	}
	m.instances[kind] = instance
	return models.CanvasView{Kind: kind, Type: spec.Type, InstanceID: instance.ID}
}

func (m *ChartManager) placeholderLocked(kind models.ChartKind, message string) models.CanvasView {
	if err := m.renderer.Placeholder(kind, message); err != nil {
		log.Printf("Error drawing %s placeholder: %v", kind, err)
	}
	return models.CanvasView{Kind: kind, Placeholder: message}
}

func (m *ChartManager) publish(canvases map[models.ChartKind]models.CanvasView) {
	m.view.Update(func(v *models.ViewState) bool {
		v.Charts = canvases
		return true
	})
}

// BuildChartSpec maps a dataset onto the fixed visual encoding of its kind.
// It reports false when there is nothing to draw.
func BuildChartSpec(dataset models.ChartDataset) (models.ChartSpec, bool) {
	spec := models.ChartSpec{Kind: dataset.Kind}

	switch dataset.Kind {
	case models.ChartAgeDistribution:
		spec.Type = models.ChartTypeBar
		spec.Title = "Age Distribution"
		spec.YAxis = "Count"
		spec.Labels, spec.Values = splitValues(dataset.Values, nil)
	case models.ChartSmokerImpact:
		spec.Type = models.ChartTypeBar
		spec.Title = "Average Cost by Smoking Status"
		spec.YAxis = "Average Cost"
		spec.Labels, spec.Values = splitValues(dataset.Values, smokerLabel)
	case models.ChartGenderSplit:
		spec.Type = models.ChartTypePie
		spec.Title = "Gender Split"
		spec.Labels, spec.Values = splitValues(dataset.Values, utils.Capitalize)
	case models.ChartDiabeticSplit:
		spec.Type = models.ChartTypeDoughnut
		spec.Title = "Diabetic Split"
		if len(dataset.Values) == 0 {
			spec.Labels = []string{"No", "Yes"}
			spec.Values = []float64{70, 30}
			return spec, true
		}
		spec.Labels, spec.Values = splitValues(dataset.Values, utils.Capitalize)
	case models.ChartRegionalSplit:
		spec.Type = models.ChartTypeDoughnut
		spec.Title = "Regional Split"
		spec.Labels, spec.Values = splitValues(dataset.Values, nil)
	case models.ChartBMIClaim:
		spec.Type = models.ChartTypeScatter
		spec.Title = "BMI vs Claim"
		spec.XAxis = "BMI"
		spec.YAxis = "Claim"
		spec.Points = append([]models.Point(nil), dataset.Points...)
		return spec, len(spec.Points) > 0
	default:
		return spec, false
	}
	return spec, len(spec.Values) > 0
}

func splitValues(values []models.LabeledValue, label func(string) string) ([]string, []float64) {
	labels := make([]string, 0, len(values))
	numbers := make([]float64, 0, len(values))
	for _, v := range values {
		name := v.Label
		if label != nil {
			name = label(name)
		}
		labels = append(labels, name)
		numbers = append(numbers, v.Value)
	}
	return labels, numbers
}

func smokerLabel(raw string) string {
	switch strings.ToLower(raw) {
	case "yes":
		return "Smoker"
	case "no":
		return "Non-smoker"
	default:
		return utils.Capitalize(raw)
	}
}
