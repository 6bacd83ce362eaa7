package charts

import (
	"errors"
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"deliverydash/pkg/contracts/domain"
)

// Format is an output image format
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// Formats lists the supported output formats
var Formats = []string{string(FormatSVG), string(FormatPNG)}

var (
	// ErrUnsupportedFormat is returned for formats other than svg and png
	ErrUnsupportedFormat = errors.New("unsupported chart format")
	// ErrNoData is returned when a chart has nothing to draw
	ErrNoData = errors.New("chart has no data")
	// ErrUnsupportedKind is returned for unknown chart kinds
	ErrUnsupportedKind = errors.New("unsupported chart kind")
)

// Options controls the image size
type Options struct {
	Width  int
	Height int
}

// DefaultOptions is the size used by the dashboard pages
var DefaultOptions = Options{Width: 720, Height: 400}

// ContentType returns the MIME type of format
func ContentType(format Format) string {
	if format == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Render draws c in the given format
func Render(w io.Writer, c domain.Chart, format Format, opts Options) error {
	provider, err := rendererFor(format)
	if err != nil {
		return err
	}
	if isEmpty(c) {
		return fmt.Errorf("%s: %w", c.ID, ErrNoData)
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts = DefaultOptions
	}

	switch c.Kind {
	case domain.ChartBar:
		return renderBar(w, c, provider, opts)
	case domain.ChartPie, domain.ChartSunburst:
		return renderPie(w, c, provider, opts)
	case domain.ChartLine:
		return renderLine(w, c, provider, opts)
	case domain.ChartScatter:
		return renderScatter(w, c, provider, opts)
	default:
		return fmt.Errorf("%s: %w: %q", c.ID, ErrUnsupportedKind, c.Kind)
	}
}

func rendererFor(format Format) (chart.RendererProvider, error) {
	switch format {
	case FormatSVG, "":
		return chart.SVG, nil
	case FormatPNG:
		return chart.PNG, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func isEmpty(c domain.Chart) bool {
	for _, s := range c.Series {
		for _, v := range s.Values {
			if v != 0 {
				return false
			}
		}
	}
	return true
}

func background() chart.Style {
	return chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}}
}

// renderBar draws the first series. A positive error is appended to the
// bar label since go-chart has no error bars.
func renderBar(w io.Writer, c domain.Chart, provider chart.RendererProvider, opts Options) error {
	s := c.Series[0]

	bars := make([]chart.Value, 0, len(s.Values))
	for i, v := range s.Values {
		bars = append(bars, chart.Value{Label: errorLabel(s, i), Value: v})
	}

	bc := chart.BarChart{
		Title:      c.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: background(),
		BarWidth:   barWidth(opts.Width, len(bars)),
		YAxis:      chart.YAxis{Name: c.YLabel, Range: valueRange(c.Series[:1])},
		Bars:       bars,
	}
	return bc.Render(provider, w)
}

// errorLabel is the label of point i with its error appended when positive
func errorLabel(s domain.ChartSeries, i int) string {
	if i < len(s.Errors) && s.Errors[i] > 0 {
		return fmt.Sprintf("%s ±%.2f", s.Labels[i], s.Errors[i])
	}
	return s.Labels[i]
}

// valueRange spans zero and every value with headroom on top. go-chart
// rejects a range whose min equals its max.
func valueRange(series []domain.ChartSeries) *chart.ContinuousRange {
	var lo, hi float64
	for _, s := range series {
		for _, v := range s.Values {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if hi == lo {
		hi = lo + 1
	}
	return &chart.ContinuousRange{Min: lo * 1.15, Max: hi * 1.15}
}

func barWidth(width, n int) int {
	if n == 0 {
		return 0
	}
	bw := (width - 80) / (n * 2)
	if bw > 60 {
		return 60
	}
	if bw < 8 {
		return 8
	}
	return bw
}

func renderPie(w io.Writer, c domain.Chart, provider chart.RendererProvider, opts Options) error {
	s := c.Series[0]

	values := make([]chart.Value, 0, len(s.Values))
	for i, v := range s.Values {
		if v <= 0 {
			continue
		}
		values = append(values, chart.Value{Label: errorLabel(s, i), Value: v})
	}

	pc := chart.PieChart{
		Title:      c.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: background(),
		Values:     values,
	}
	return pc.Render(provider, w)
}

// categoryAxis maps labels to 0..n-1 so categorical x values can be drawn
// on a continuous axis. go-chart takes the x range from the ticks, so blank
// ticks half a step outside the categories keep a single category drawable.
func categoryAxis(name string, labels []string) (chart.XAxis, map[string]float64) {
	index := make(map[string]float64, len(labels))
	ticks := []chart.Tick{{Value: -0.5}}
	for _, l := range labels {
		if _, ok := index[l]; ok {
			continue
		}
		index[l] = float64(len(index))
		ticks = append(ticks, chart.Tick{Value: index[l], Label: l})
	}
	ticks = append(ticks, chart.Tick{Value: float64(len(index)) - 0.5})

	return chart.XAxis{Name: name, Ticks: ticks}, index
}

func allLabels(c domain.Chart) []string {
	var labels []string
	for _, s := range c.Series {
		labels = append(labels, s.Labels...)
	}
	return labels
}

func renderLine(w io.Writer, c domain.Chart, provider chart.RendererProvider, opts Options) error {
	xAxis, index := categoryAxis(c.XLabel, allLabels(c))

	series := make([]chart.Series, 0, len(c.Series))
	for i, s := range c.Series {
		xs := make([]float64, len(s.Labels))
		for j, l := range s.Labels {
			xs[j] = index[l]
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: s.Values,
			Style: chart.Style{
				StrokeColor: chart.GetDefaultColor(i),
				StrokeWidth: 2,
				DotWidth:    3,
				DotColor:    chart.GetDefaultColor(i),
			},
		})
	}

	ch := chart.Chart{
		Title:      c.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: background(),
		XAxis:      xAxis,
		YAxis:      chart.YAxis{Name: c.YLabel, Range: valueRange(c.Series)},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(provider, w)
}

// pointStyle draws points only, sized by sizes when given
func pointStyle(col drawing.Color, sizes []float64) chart.Style {
	style := chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    5,
		DotColor:    col,
	}
	if len(sizes) == 0 {
		return style
	}

	var largest float64
	for _, s := range sizes {
		largest = math.Max(largest, s)
	}
	if largest == 0 {
		return style
	}
	style.DotWidthProvider = func(_, _ chart.Range, index int, _, _ float64) float64 {
		if index >= len(sizes) {
			return 5
		}
		return 3 + 15*sizes[index]/largest
	}
	return style
}

func renderScatter(w io.Writer, c domain.Chart, provider chart.RendererProvider, opts Options) error {
	xAxis, index := categoryAxis(c.XLabel, allLabels(c))

	series := make([]chart.Series, 0, len(c.Series))
	for i, s := range c.Series {
		xs := make([]float64, len(s.Labels))
		for j, l := range s.Labels {
			xs[j] = index[l]
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: s.Values,
			Style:   pointStyle(chart.GetDefaultColor(i), s.Sizes),
		})
	}

	ch := chart.Chart{
		Title:      c.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: background(),
		XAxis:      xAxis,
		YAxis:      chart.YAxis{Name: c.YLabel, Range: valueRange(c.Series)},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(provider, w)
}
