// Package visualizer proposes chart specifications for a tabular
// result. The heuristic is fixed: the first categorical and first
// numeric column (in column order) become the axis bindings.
package visualizer

import (
	"fmt"

	"insightbot/internal/models"
)

// Recommend returns exactly two specs (bar and pie) when the table has
// at least one categorical and one numeric column, and none otherwise.
// There is no ranking or suitability scoring beyond the kind check.
func Recommend(table *models.ResultTable) []models.ChartSpec {
	if table == nil {
		return nil
	}

	category, ok := table.FirstOfKind(models.ColumnKindCategorical)
	if !ok {
		return nil
	}
	numeric, ok := table.FirstOfKind(models.ColumnKindNumeric)
	if !ok {
		return nil
	}

	return []models.ChartSpec{
		{
			Kind:  models.ChartKindBar,
			X:     category.Name,
			Y:     numeric.Name,
			Title: fmt.Sprintf("%s by %s", numeric.Name, category.Name),
		},
		{
			Kind:  models.ChartKindPie,
			X:     category.Name,
			Y:     numeric.Name,
			Title: fmt.Sprintf("Distribution of %s by %s", numeric.Name, category.Name),
		},
	}
}
