package domain

// ChartKind selects how a chart is drawn
type ChartKind string

const (
	ChartBar      ChartKind = "bar"
	ChartPie      ChartKind = "pie"
	ChartLine     ChartKind = "line"
	ChartScatter  ChartKind = "scatter"
	ChartSunburst ChartKind = "sunburst"
)

// Chart is a drawing-agnostic description of one dashboard chart
type Chart struct {
	ID     string        `json:"id"`
	Title  string        `json:"title"`
	Kind   ChartKind     `json:"kind"`
	XLabel string        `json:"x_label,omitempty"`
	YLabel string        `json:"y_label,omitempty"`
	Series []ChartSeries `json:"series"`
}

// ChartSeries is one named series of labelled values.
// Errors and Sizes are optional and, when set, align with Values.
type ChartSeries struct {
	Name   string    `json:"name"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Errors []float64 `json:"errors,omitempty"`
	Sizes  []float64 `json:"sizes,omitempty"`
}

// FindChart returns the chart with the given id
func FindChart(charts []Chart, id string) (Chart, bool) {
	for _, c := range charts {
		if c.ID == id {
			return c, true
		}
	}
	return Chart{}, false
}
