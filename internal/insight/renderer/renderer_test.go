package renderer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insightbot/internal/common/errors"
	"insightbot/internal/models"
)

func regionTable() *models.ResultTable {
	return &models.ResultTable{
		Columns: []models.Column{
			{Name: "region", Kind: models.ColumnKindCategorical},
			{Name: "total_sales", Kind: models.ColumnKindNumeric},
		},
		Rows: [][]interface{}{
			{"North", 5000.0},
			{"South", 3000.0},
			{"East", 1500.0},
		},
	}
}

func TestRender_BarOption(t *testing.T) {
	spec := models.ChartSpec{
		Kind:  models.ChartKindBar,
		X:     "region",
		Y:     "total_sales",
		Title: "total_sales by region",
	}

	chart, err := Render(regionTable(), spec)
	require.NoError(t, err)
	require.NotNil(t, chart)

	assert.Equal(t, models.ChartKindBar, chart.Kind)
	assert.Equal(t, "total_sales by region", chart.Title)

	xAxis := chart.Option["xAxis"].(map[string]interface{})
	assert.Equal(t, "category", xAxis["type"])
	assert.Equal(t, []string{"North", "South", "East"}, xAxis["data"])

	series := chart.Option["series"].([]map[string]interface{})
	require.Len(t, series, 1)
	assert.Equal(t, "bar", series[0]["type"])
	assert.Equal(t, []float64{5000, 3000, 1500}, series[0]["data"])
}

func TestRender_PieOption(t *testing.T) {
	spec := models.ChartSpec{
		Kind:  models.ChartKindPie,
		X:     "region",
		Y:     "total_sales",
		Title: "Distribution of total_sales by region",
	}

	chart, err := Render(regionTable(), spec)
	require.NoError(t, err)
	require.NotNil(t, chart)

	series := chart.Option["series"].([]map[string]interface{})
	require.Len(t, series, 1)
	assert.Equal(t, "pie", series[0]["type"])

	data := series[0]["data"].([]map[string]interface{})
	require.Len(t, data, 3)
	assert.Equal(t, "North", data[0]["name"])
	assert.Equal(t, 5000.0, data[0]["value"])
}

func TestRender_LineAndScatter(t *testing.T) {
	for _, kind := range []models.ChartKind{models.ChartKindLine, models.ChartKindScatter} {
		spec := models.ChartSpec{
			Kind:  kind,
			X:     "region",
			Y:     "total_sales",
			Title: "trend",
		}

		chart, err := Render(regionTable(), spec)
		require.NoError(t, err)
		require.NotNil(t, chart)

		series := chart.Option["series"].([]map[string]interface{})
		assert.Equal(t, string(kind), series[0]["type"])
	}
}

// Unknown kinds are skipped, not failed, so new chart types can appear
// in specs before this layer supports them.
func TestRender_UnknownKindIsSkipped(t *testing.T) {
	spec := models.ChartSpec{
		Kind:  models.ChartKind("donut"),
		X:     "region",
		Y:     "total_sales",
		Title: "donut attempt",
	}

	chart, err := Render(regionTable(), spec)
	assert.NoError(t, err)
	assert.Nil(t, chart)
}

func TestRender_InvalidBindings(t *testing.T) {
	tests := []struct {
		name string
		spec models.ChartSpec
	}{
		{"x not categorical", models.ChartSpec{
			Kind: models.ChartKindBar, X: "total_sales", Y: "total_sales", Title: "bad x",
		}},
		{"y not numeric", models.ChartSpec{
			Kind: models.ChartKindBar, X: "region", Y: "region", Title: "bad y",
		}},
		{"missing column", models.ChartSpec{
			Kind: models.ChartKindBar, X: "region", Y: "profit", Title: "missing y",
		}},
		{"empty title", models.ChartSpec{
			Kind: models.ChartKindBar, X: "region", Y: "total_sales", Title: "",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chart, err := Render(regionTable(), tt.spec)
			require.Error(t, err)
			assert.Nil(t, chart)

			stdErr, ok := err.(*errors.StandardError)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeRenderFailed, stdErr.Code)
		})
	}
}

func TestChart_JSON(t *testing.T) {
	spec := models.ChartSpec{
		Kind:  models.ChartKindBar,
		X:     "region",
		Y:     "total_sales",
		Title: "total_sales by region",
	}

	chart, err := Render(regionTable(), spec)
	require.NoError(t, err)

	doc, err := chart.JSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(doc), &decoded))
	assert.Contains(t, decoded, "xAxis")
	assert.Contains(t, decoded, "series")
}
