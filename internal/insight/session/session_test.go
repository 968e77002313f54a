package session

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"insightbot/internal/common/errors"
	"insightbot/internal/common/logger"
	"insightbot/internal/insight/selector"
	"insightbot/internal/models"
)

// stubRunner returns a canned table per template id, or an error.
type stubRunner struct {
	tables map[models.TemplateID]*models.ResultTable
	err    error
	calls  []models.TemplateID
}

func (r *stubRunner) Run(_ context.Context, tmpl models.QueryTemplate) (*models.ResultTable, error) {
	r.calls = append(r.calls, tmpl.ID)
	if r.err != nil {
		return nil, r.err
	}
	table, ok := r.tables[tmpl.ID]
	if !ok {
		return nil, fmt.Errorf("unexpected template %s", tmpl.ID)
	}
	return table, nil
}

type stubClassifier struct {
	result *models.IntentAnalysis
	err    error
}

func (c *stubClassifier) Classify(context.Context, string) (*models.IntentAnalysis, error) {
	return c.result, c.err
}

func topProductsTable() *models.ResultTable {
	return &models.ResultTable{
		Columns: []models.Column{
			{Name: "product_name", Kind: models.ColumnKindCategorical},
			{Name: "total_quantity", Kind: models.ColumnKindNumeric},
			{Name: "total_sales", Kind: models.ColumnKindNumeric},
		},
		Rows: [][]interface{}{
			{"Laptop Pro", 10.0, 12999.90},
			{"Monitor", 4.0, 1199.96},
		},
	}
}

func newTestSession(t *testing.T, runner QueryRunner, classifier Classifier) *Session {
	t.Helper()
	log := logger.NewZapAdapter(zaptest.NewLogger(t))
	return New(runner, classifier, nil, log, 0)
}

func TestAsk_FullPipeline(t *testing.T) {
	runner := &stubRunner{tables: map[models.TemplateID]*models.ResultTable{
		models.TemplateTopProducts: topProductsTable(),
	}}
	sess := newTestSession(t, runner, nil)

	answer, err := sess.Ask(context.Background(), "What are our top products?")
	require.NoError(t, err)

	assert.Equal(t, models.TemplateTopProducts, answer.TemplateID)
	assert.NotEmpty(t, answer.SQL)
	assert.Equal(t, []models.TemplateID{models.TemplateTopProducts}, runner.calls)

	assert.True(t, strings.HasPrefix(answer.Report.Summary, "Analysis of 2 records:"))
	assert.Contains(t, answer.Report.Insights, "Total total_sales is 14,199.86")

	// First categorical + first numeric drive both recommended charts.
	require.Len(t, answer.Charts, 2)
	assert.Equal(t, models.ChartKindBar, answer.Charts[0].Kind)
	assert.Equal(t, "total_quantity by product_name", answer.Charts[0].Title)
	assert.Equal(t, models.ChartKindPie, answer.Charts[1].Kind)

	assert.Empty(t, answer.Warnings)
	assert.Nil(t, answer.Intent)
}

func TestAsk_AppendsHistory(t *testing.T) {
	runner := &stubRunner{tables: map[models.TemplateID]*models.ResultTable{
		models.TemplateTopProducts: topProductsTable(),
	}}
	sess := newTestSession(t, runner, nil)

	_, err := sess.Ask(context.Background(), "top products")
	require.NoError(t, err)

	entries := sess.History()
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].ID)
	assert.Equal(t, "top products", entries[0].Question)
	assert.Equal(t, models.TemplateTopProducts, entries[0].TemplateID)
	assert.Len(t, entries[0].Charts, 2)
	assert.False(t, entries[0].AskedAt.IsZero())
}

func TestAsk_HistoryBounded(t *testing.T) {
	runner := &stubRunner{tables: map[models.TemplateID]*models.ResultTable{
		models.TemplateTopProducts: topProductsTable(),
	}}
	log := logger.NewZapAdapter(zaptest.NewLogger(t))
	sess := New(runner, nil, nil, log, 3)

	for i := 0; i < 5; i++ {
		_, err := sess.Ask(context.Background(), fmt.Sprintf("top products %d", i))
		require.NoError(t, err)
	}

	entries := sess.History()
	require.Len(t, entries, 3)
	assert.Equal(t, "top products 2", entries[0].Question)
	assert.Equal(t, "top products 4", entries[2].Question)
}

// A failed question leaves the session fully usable and out of the
// history; the next question proceeds normally.
func TestAsk_FailureIsolation(t *testing.T) {
	runner := &stubRunner{tables: map[models.TemplateID]*models.ResultTable{
		models.TemplateTopProducts: topProductsTable(),
	}}
	sess := newTestSession(t, runner, nil)

	runner.err = errors.NewQueryExecutionFailedError("top-products", fmt.Errorf("boom"))
	_, err := sess.Ask(context.Background(), "top products")
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeQueryExecutionFailed, stdErr.Code)
	assert.Empty(t, sess.History())

	runner.err = nil
	answer, err := sess.Ask(context.Background(), "top products")
	require.NoError(t, err)
	assert.Equal(t, models.TemplateTopProducts, answer.TemplateID)
	assert.Len(t, sess.History(), 1)
}

func TestAsk_ClassifierFailureIsAdvisory(t *testing.T) {
	runner := &stubRunner{tables: map[models.TemplateID]*models.ResultTable{
		models.TemplateTopProducts: topProductsTable(),
	}}
	classifier := &stubClassifier{err: errors.NewIntentAPITimeoutError()}
	sess := newTestSession(t, runner, classifier)

	answer, err := sess.Ask(context.Background(), "top products")
	require.NoError(t, err)
	assert.Nil(t, answer.Intent)
}

func TestAsk_ClassifierResultRecorded(t *testing.T) {
	runner := &stubRunner{tables: map[models.TemplateID]*models.ResultTable{
		models.TemplateTopProducts: topProductsTable(),
	}}
	classifier := &stubClassifier{result: &models.IntentAnalysis{
		Label:      string(models.TemplateTopProducts),
		Confidence: 0.91,
	}}
	sess := newTestSession(t, runner, classifier)

	answer, err := sess.Ask(context.Background(), "top products")
	require.NoError(t, err)

	require.NotNil(t, answer.Intent)
	assert.Equal(t, "top-products", answer.Intent.Label)

	entries := sess.History()
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Intent)
	assert.InDelta(t, 0.91, entries[0].Intent.Confidence, 1e-9)
}

// The classifier never overrides keyword selection, even when it
// disagrees with confidence 1.0.
func TestAsk_ClassifierDoesNotInfluenceSelection(t *testing.T) {
	runner := &stubRunner{tables: map[models.TemplateID]*models.ResultTable{
		models.TemplateTopProducts: topProductsTable(),
	}}
	classifier := &stubClassifier{result: &models.IntentAnalysis{
		Label:      string(models.TemplateSalesByRegion),
		Confidence: 1.0,
	}}
	sess := newTestSession(t, runner, classifier)

	answer, err := sess.Ask(context.Background(), "top products")
	require.NoError(t, err)
	assert.Equal(t, models.TemplateTopProducts, answer.TemplateID)
}

func TestAsk_NoChartsForNonPlottableResult(t *testing.T) {
	table := &models.ResultTable{
		Columns: []models.Column{
			{Name: "price", Kind: models.ColumnKindNumeric},
			{Name: "stock", Kind: models.ColumnKindNumeric},
		},
		Rows: [][]interface{}{{29.99, 200.0}},
	}
	runner := &stubRunner{tables: map[models.TemplateID]*models.ResultTable{
		models.TemplateAllProducts: table,
	}}
	sess := newTestSession(t, runner, nil)

	answer, err := sess.Ask(context.Background(), "show all products")
	require.NoError(t, err)
	assert.Empty(t, answer.Charts)
	assert.Empty(t, answer.Report.Charts)
}

func TestAsk_UnmatchedQuestionUsesDefaultTemplate(t *testing.T) {
	runner := &stubRunner{tables: map[models.TemplateID]*models.ResultTable{
		models.TemplateDefault: topProductsTable(),
	}}
	sess := newTestSession(t, runner, nil)

	answer, err := sess.Ask(context.Background(), "how is business going")
	require.NoError(t, err)
	assert.Equal(t, models.TemplateDefault, answer.TemplateID)

	tmpl, err := selector.Select("how is business going")
	require.NoError(t, err)
	assert.Equal(t, tmpl.SQL, answer.SQL)
}
