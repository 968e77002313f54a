// internal/models/history.go
package models

import "time"

// IntentAnalysis is the optional zero-shot classification of a
// question. It annotates history entries only; template selection is
// always rule-based.
type IntentAnalysis struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// HistoryEntry is one completed question/answer cycle in the session's
// bounded in-memory log.
type HistoryEntry struct {
	ID         string          `json:"id"`
	Question   string          `json:"question"`
	TemplateID TemplateID      `json:"templateId"`
	SQL        string          `json:"sql"`
	Summary    string          `json:"summary"`
	Insights   []string        `json:"insights"`
	Charts     []ChartSpec     `json:"charts,omitempty"`
	Intent     *IntentAnalysis `json:"intent,omitempty"`
	AskedAt    time.Time       `json:"askedAt"`
}
