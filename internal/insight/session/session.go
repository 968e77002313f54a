// Package session orchestrates the question pipeline: select ->
// execute -> analyze -> recommend -> render. Each question runs to
// completion before the next is accepted; a failure in one question's
// pipeline never blocks or corrupts the next.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"insightbot/internal/common/errors"
	"insightbot/internal/common/logger"
	"insightbot/internal/common/metrics"
	"insightbot/internal/common/observability"
	"insightbot/internal/insight/analyzer"
	"insightbot/internal/insight/renderer"
	"insightbot/internal/insight/selector"
	"insightbot/internal/insight/visualizer"
	"insightbot/internal/models"
)

const defaultMaxHistory = 50

// QueryRunner is the SQL execution collaborator.
type QueryRunner interface {
	Run(ctx context.Context, tmpl models.QueryTemplate) (*models.ResultTable, error)
}

// Classifier is the optional zero-shot intent collaborator.
type Classifier interface {
	Classify(ctx context.Context, question string) (*models.IntentAnalysis, error)
}

// Answer is the complete result of one question cycle.
type Answer struct {
	TemplateID models.TemplateID
	SQL        string
	Table      *models.ResultTable
	Report     *models.AnalysisReport
	Charts     []*renderer.Chart
	Intent     *models.IntentAnalysis
	Warnings   []string
}

// Session owns the bounded, append-only history of one chat session.
type Session struct {
	runner     QueryRunner
	classifier Classifier
	obs        *observability.Observability
	logger     logger.Logger
	maxHistory int

	mu      sync.Mutex
	history []models.HistoryEntry
}

// New creates a session. classifier and obs may be nil.
func New(runner QueryRunner, classifier Classifier, obs *observability.Observability, log logger.Logger, maxHistory int) *Session {
	if maxHistory <= 0 {
		maxHistory = defaultMaxHistory
	}
	return &Session{
		runner:     runner,
		classifier: classifier,
		obs:        obs,
		logger:     log.WithFields(map[string]interface{}{"component": "session"}),
		maxHistory: maxHistory,
	}
}

// Ask runs the full pipeline for one question. Errors are
// StandardErrors suitable for direct display; the session stays usable
// after any of them.
func (s *Session) Ask(ctx context.Context, question string) (*Answer, error) {
	start := time.Now()

	answer, err := s.ask(ctx, question)

	status := "success"
	if err != nil {
		status = "failure"
	}
	if s.obs != nil {
		s.obs.RecordQuestionProcessed(ctx, status)
		s.obs.RecordQuestionDuration(ctx, time.Since(start), status)
	}

	return answer, err
}

func (s *Session) ask(ctx context.Context, question string) (*Answer, error) {
	tmpl, err := selector.Select(question)
	if err != nil {
		return nil, s.fail("select", err)
	}

	var intentResult *models.IntentAnalysis
	if s.classifier != nil {
		intentResult, err = s.classifier.Classify(ctx, question)
		if err != nil {
			// Advisory only: classification failures never abort the question.
			s.logger.Warn("intent classification failed", map[string]interface{}{
				"error": err.Error(),
			})
			intentResult = nil
		}
	}

	table, err := s.runner.Run(ctx, tmpl)
	if err != nil {
		return nil, s.fail("execute", err)
	}

	report, err := analyzer.Analyze(table)
	if err != nil {
		return nil, s.fail("analyze", err)
	}

	specs := visualizer.Recommend(table)
	report.Charts = specs

	charts := make([]*renderer.Chart, 0, len(specs))
	var warnings []string
	for _, spec := range specs {
		chart, err := renderer.Render(table, spec)
		if err != nil {
			stdErr := errors.Normalize(err)
			metrics.PipelineFailures.WithLabelValues("render", string(stdErr.Code)).Inc()
			s.logger.Warn("chart construction failed", map[string]interface{}{
				"chart": spec.Title,
				"error": stdErr.Details,
			})
			warnings = append(warnings, stdErr.UserMessage())
			continue
		}
		if chart == nil {
			// Unknown chart kind: skipped, not an error.
			s.logger.Debug("skipping unsupported chart kind", map[string]interface{}{
				"kind": spec.Kind,
			})
			continue
		}
		metrics.ChartsRendered.WithLabelValues(string(chart.Kind)).Inc()
		charts = append(charts, chart)
	}

	metrics.QuestionsProcessed.WithLabelValues(string(tmpl.ID)).Inc()

	s.appendHistory(models.HistoryEntry{
		ID:         uuid.NewString(),
		Question:   question,
		TemplateID: tmpl.ID,
		SQL:        tmpl.SQL,
		Summary:    report.Summary,
		Insights:   report.Insights,
		Charts:     specs,
		Intent:     intentResult,
		AskedAt:    time.Now().UTC(),
	})

	return &Answer{
		TemplateID: tmpl.ID,
		SQL:        tmpl.SQL,
		Table:      table,
		Report:     report,
		Charts:     charts,
		Intent:     intentResult,
		Warnings:   warnings,
	}, nil
}

func (s *Session) fail(stage string, err error) *errors.StandardError {
	stdErr := errors.Normalize(err)
	metrics.PipelineFailures.WithLabelValues(stage, string(stdErr.Code)).Inc()
	s.logger.Error("pipeline stage failed", map[string]interface{}{
		"stage":     stage,
		"errorCode": string(stdErr.Code),
		"details":   stdErr.Details,
		"retryable": stdErr.Retryable,
		"category":  errors.GetErrorCategory(stdErr.Code),
	})
	return stdErr
}

// appendHistory keeps the most recent maxHistory entries.
func (s *Session) appendHistory(entry models.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, entry)
	if len(s.history) > s.maxHistory {
		s.history = s.history[len(s.history)-s.maxHistory:]
	}
}

// History returns a copy of the session log, oldest first.
func (s *Session) History() []models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}
