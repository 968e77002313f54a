// internal/models/chart.go
package models

// ChartKind is the chart family a spec asks for.
type ChartKind string

const (
	ChartKindBar     ChartKind = "bar"
	ChartKindLine    ChartKind = "line"
	ChartKindScatter ChartKind = "scatter"
	ChartKindPie     ChartKind = "pie"
)

// ChartSpec is a declarative chart description, independent of any
// charting library. X must name a categorical column and Y a numeric
// column; the renderer revalidates this at render time.
type ChartSpec struct {
	Kind  ChartKind `json:"type"`
	X     string    `json:"x"`
	Y     string    `json:"y"`
	Title string    `json:"title"`
}
