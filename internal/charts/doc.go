// Package charts draws the dashboard's chart descriptions as SVG or PNG
// images with go-chart.
//
// Views describe their charts as domain.Chart values, independent of any
// drawing library. Render maps each kind onto a go-chart chart:
//
//	bar      → chart.BarChart, standard deviations appended to the labels
//	pie      → chart.PieChart
//	sunburst → chart.PieChart over the flattened inner/outer labels
//	line     → chart.Chart with one ContinuousSeries per series
//	scatter  → chart.Chart with sized dots on a categorical x axis
package charts
