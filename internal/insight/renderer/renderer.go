// Package renderer turns a chart specification plus data into a
// renderable chart object: a declarative ECharts-style option document
// a UI surface can hand to its charting layer.
package renderer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"insightbot/internal/common/errors"
	"insightbot/internal/models"
)

// chartSpecSchema is validated against every spec before dispatch.
// Kind is deliberately an open string here: unknown kinds are handled
// by the dispatch switch, not treated as validation failures.
const chartSpecSchema = `{
	"type": "object",
	"required": ["type", "x", "y", "title"],
	"properties": {
		"type":  {"type": "string", "minLength": 1},
		"x":     {"type": "string", "minLength": 1},
		"y":     {"type": "string", "minLength": 1},
		"title": {"type": "string", "minLength": 1}
	}
}`

var specSchema = mustCompileSchema()

func mustCompileSchema() *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(chartSpecSchema))
	if err != nil {
		panic(fmt.Sprintf("invalid chart spec schema: %v", err))
	}
	return schema
}

// Chart is a constructed chart: the spec's kind and title plus the
// option document to render.
type Chart struct {
	Kind   models.ChartKind       `json:"kind"`
	Title  string                 `json:"title"`
	Option map[string]interface{} `json:"option"`
}

// JSON returns the option document as a JSON string.
func (c *Chart) JSON() (string, error) {
	b, err := json.Marshal(c.Option)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chart option: %w", err)
	}
	return string(b), nil
}

// Render dispatches on the spec kind to one of the chart constructors.
// An unknown kind yields (nil, nil) — the caller skips that chart. Any
// construction error surfaces as a RENDER_FAILED StandardError; one
// bad spec never suppresses the others.
func Render(table *models.ResultTable, spec models.ChartSpec) (*Chart, error) {
	switch spec.Kind {
	case models.ChartKindBar, models.ChartKindLine, models.ChartKindScatter, models.ChartKindPie:
	default:
		return nil, nil
	}

	if err := validateSpec(table, spec); err != nil {
		return nil, errors.NewRenderFailedError(spec.Title, err)
	}

	labels, values, err := extractSeries(table, spec)
	if err != nil {
		return nil, errors.NewRenderFailedError(spec.Title, err)
	}

	var option map[string]interface{}
	switch spec.Kind {
	case models.ChartKindBar:
		option = axisOption(spec, labels, values, "bar")
	case models.ChartKindLine:
		option = axisOption(spec, labels, values, "line")
	case models.ChartKindScatter:
		option = axisOption(spec, labels, values, "scatter")
	case models.ChartKindPie:
		option = pieOption(spec, labels, values)
	}

	return &Chart{Kind: spec.Kind, Title: spec.Title, Option: option}, nil
}

// validateSpec checks the spec document against the JSON schema, then
// revalidates the axis bindings: x must name a categorical column and
// y a numeric column of the table.
func validateSpec(table *models.ResultTable, spec models.ChartSpec) error {
	doc, err := json.Marshal(spec)
	if err != nil {
		return fmt.Errorf("marshal spec: %w", err)
	}

	result, err := specSchema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("validate spec: %w", err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return fmt.Errorf("invalid chart spec: %s", strings.Join(details, "; "))
	}

	if table == nil {
		return fmt.Errorf("no result table")
	}

	xIdx := table.ColumnIndex(spec.X)
	if xIdx < 0 {
		return fmt.Errorf("x column %q not in result", spec.X)
	}
	if table.Columns[xIdx].Kind != models.ColumnKindCategorical {
		return fmt.Errorf("x column %q must be categorical", spec.X)
	}

	yIdx := table.ColumnIndex(spec.Y)
	if yIdx < 0 {
		return fmt.Errorf("y column %q not in result", spec.Y)
	}
	if table.Columns[yIdx].Kind != models.ColumnKindNumeric {
		return fmt.Errorf("y column %q must be numeric", spec.Y)
	}

	return nil
}

// extractSeries pulls the label and value series for the axis bindings.
func extractSeries(table *models.ResultTable, spec models.ChartSpec) ([]string, []float64, error) {
	xIdx := table.ColumnIndex(spec.X)
	yIdx := table.ColumnIndex(spec.Y)

	labels := make([]string, 0, len(table.Rows))
	values := make([]float64, 0, len(table.Rows))

	for _, row := range table.Rows {
		labels = append(labels, stringify(row[xIdx]))

		v, err := numify(row[yIdx])
		if err != nil {
			return nil, nil, fmt.Errorf("column %q: %w", spec.Y, err)
		}
		values = append(values, v)
	}

	return labels, values, nil
}

func axisOption(spec models.ChartSpec, labels []string, values []float64, seriesType string) map[string]interface{} {
	return map[string]interface{}{
		"title": map[string]interface{}{
			"text": spec.Title,
		},
		"tooltip": map[string]interface{}{
			"trigger": "axis",
		},
		"xAxis": map[string]interface{}{
			"type": "category",
			"data": labels,
			"name": spec.X,
		},
		"yAxis": map[string]interface{}{
			"type": "value",
			"name": spec.Y,
		},
		"series": []map[string]interface{}{
			{
				"name": spec.Y,
				"type": seriesType,
				"data": values,
			},
		},
	}
}

// pieOption binds x to slice labels and y to slice values instead of
// generic axes.
func pieOption(spec models.ChartSpec, labels []string, values []float64) map[string]interface{} {
	data := make([]map[string]interface{}, 0, len(labels))
	for i, label := range labels {
		data = append(data, map[string]interface{}{
			"name":  label,
			"value": values[i],
		})
	}

	return map[string]interface{}{
		"title": map[string]interface{}{
			"text": spec.Title,
		},
		"tooltip": map[string]interface{}{
			"trigger": "item",
		},
		"series": []map[string]interface{}{
			{
				"name":   spec.Y,
				"type":   "pie",
				"radius": "60%",
				"data":   data,
			},
		},
	}
}

func stringify(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprint(s)
	}
}

func numify(v interface{}) (float64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not numeric", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unexpected value type %T", v)
	}
}
