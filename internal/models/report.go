// internal/models/report.go
package models

// AnalysisReport is the textual result of analyzing a table. Insights
// repeat facts already present in the summary for emphasis; they never
// introduce values the summary does not contain. Charts holds the
// recommended chart specs for the same table.
type AnalysisReport struct {
	Summary  string      `json:"summary"`
	Insights []string    `json:"insights"`
	Charts   []ChartSpec `json:"charts,omitempty"`
}
