package renderers

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"sync"

	"InsureCost/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrUnknownInstance is returned when destroying a chart that is not live.
var ErrUnknownInstance = errors.New("unknown chart instance")

var palette = []drawing.Color{
	drawing.ColorFromHex("667eea"),
	drawing.ColorFromHex("764ba2"),
	drawing.ColorFromHex("f093fb"),
	drawing.ColorFromHex("4facfe"),
	drawing.ColorFromHex("43e97b"),
	drawing.ColorFromHex("fa709a"),
}

// pointStyle draws dots without connecting lines.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    5,
		DotColor:    col,
	}
}

type liveChart struct {
	instance models.ChartInstance
	svg      []byte
}

// SVGRenderer draws dashboard charts as SVG documents with go-chart. One
// renderer belongs to one dashboard tab.
type SVGRenderer struct {
	width  int
	height int

	mu           sync.RWMutex
	live         map[string]liveChart
	byKind       map[models.ChartKind]string
	placeholders map[models.ChartKind][]byte
}

func NewSVGRenderer(width, height int) *SVGRenderer {
	return &SVGRenderer{
		width:        width,
		height:       height,
		live:         make(map[string]liveChart),
		byKind:       make(map[models.ChartKind]string),
		placeholders: make(map[models.ChartKind][]byte),
	}
}

// Render draws spec and registers it as a live instance.
func (r *SVGRenderer) Render(spec models.ChartSpec) (models.ChartInstance, error) {
	var buf bytes.Buffer
	if err := r.draw(spec, &buf); err != nil {
		return models.ChartInstance{}, errors.Wrapf(err, "failed to render %s chart", spec.Kind)
	}

	instance := models.ChartInstance{ID: uuid.NewString(), Kind: spec.Kind, Type: spec.Type}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.live[instance.ID] = liveChart{instance: instance, svg: buf.Bytes()}
	r.byKind[spec.Kind] = instance.ID
	delete(r.placeholders, spec.Kind)
	return instance, nil
}

func (r *SVGRenderer) Destroy(instance models.ChartInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.live[instance.ID]; !ok {
		return ErrUnknownInstance
	}
	delete(r.live, instance.ID)
	if r.byKind[instance.Kind] == instance.ID {
		delete(r.byKind, instance.Kind)
	}
	return nil
}

// Placeholder replaces the canvas of kind with a centred message.
func (r *SVGRenderer) Placeholder(kind models.ChartKind, message string) error {
	var text bytes.Buffer
	if err := xml.EscapeText(&text, []byte(message)); err != nil {
		return err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`, r.width, r.height)
	fmt.Fprintf(&buf, `<text x="%d" y="%d" text-anchor="middle" font-family="Arial" font-size="14" fill="rgba(255,255,255,0.3)">%s</text>`,
		r.width/2, r.height/2, text.String())
	buf.WriteString(`</svg>`)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.placeholders[kind] = buf.Bytes()
	return nil
}

// SVG returns the document of the live chart of kind.
func (r *SVGRenderer) SVG(kind models.ChartKind) ([]byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byKind[kind]
	if !ok {
		return nil, false
	}
	return r.live[id].svg, true
}

// PlaceholderSVG returns the placeholder last drawn for kind.
func (r *SVGRenderer) PlaceholderSVG(kind models.ChartKind) ([]byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	svg, ok := r.placeholders[kind]
	return svg, ok
}

// LiveCount is the number of instances not yet destroyed.
func (r *SVGRenderer) LiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.live)
}

func (r *SVGRenderer) draw(spec models.ChartSpec, buf *bytes.Buffer) error {
	switch spec.Type {
	case models.ChartTypeBar:
		return r.drawBar(spec, buf)
	case models.ChartTypePie:
		c := chart.PieChart{
			Title:  spec.Title,
			Width:  r.width,
			Height: r.height,
			Values: r.values(spec),
		}
		return c.Render(chart.SVG, buf)
	case models.ChartTypeDoughnut:
		c := chart.DonutChart{
			Title:  spec.Title,
			Width:  r.width,
			Height: r.height,
			Values: r.values(spec),
		}
		return c.Render(chart.SVG, buf)
	case models.ChartTypeScatter:
		return r.drawScatter(spec, buf)
	default:
		return fmt.Errorf("unsupported chart type %q", spec.Type)
	}
}

func (r *SVGRenderer) drawBar(spec models.ChartSpec, buf *bytes.Buffer) error {
	bars := make([]chart.Value, 0, len(spec.Values))
	for i, v := range spec.Values {
		bars = append(bars, chart.Value{
			Label: spec.Labels[i],
			Value: v,
			Style: chart.Style{
				FillColor:   palette[i%len(palette)],
				StrokeColor: palette[i%len(palette)],
			},
		})
	}

	c := chart.BarChart{
		Title:      spec.Title,
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		BarWidth:   r.width / (2*len(bars) + 1),
		Bars:       bars,
		// go-chart derives no range from a single bar or equal bars.
		YAxis: chart.YAxis{Range: barRange(spec.Values)},
	}
	return c.Render(chart.SVG, buf)
}

func (r *SVGRenderer) drawScatter(spec models.ChartSpec, buf *bytes.Buffer) error {
	xs := make([]float64, 0, len(spec.Points))
	ys := make([]float64, 0, len(spec.Points))
	for _, p := range spec.Points {
		xs = append(xs, p.X)
		ys = append(ys, p.Y)
	}

	c := chart.Chart{
		Title:      spec.Title,
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12}},
		XAxis:      chart.XAxis{Name: spec.XAxis, Range: paddedRange(xs)},
		YAxis:      chart.YAxis{Name: spec.YAxis, Range: paddedRange(ys)},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: spec.Title, XValues: xs, YValues: ys, Style: pointStyle(palette[0])},
		},
	}
	return c.Render(chart.SVG, buf)
}

// barRange starts bars at zero and never collapses to an empty range.
func barRange(values []float64) *chart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

// paddedRange widens a range whose values are all equal. It returns nil,
// and lets go-chart fit the axis, otherwise.
func paddedRange(values []float64) chart.Range {
	if len(values) == 0 {
		return nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi > lo {
		return nil
	}
	pad := math.Max(math.Abs(lo)*0.1, 1)
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func (r *SVGRenderer) values(spec models.ChartSpec) []chart.Value {
	values := make([]chart.Value, 0, len(spec.Values))
	for i, v := range spec.Values {
		values = append(values, chart.Value{
			Label: spec.Labels[i],
			Value: v,
			Style: chart.Style{FillColor: palette[i%len(palette)]},
		})
	}
	return values
}
