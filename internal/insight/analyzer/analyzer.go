// Package analyzer derives a textual summary and insight list from a
// tabular query result, driven only by the per-column kind tags.
package analyzer

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"insightbot/internal/common/errors"
	"insightbot/internal/models"
)

var printer = message.NewPrinter(language.English)

// Analyze produces the report for a table: a record-count header, then
// total and average lines for every numeric column, plus insight
// strings mirroring the total/average lines for numeric columns whose
// name contains "amount" or "sales". Insights never introduce values
// the summary does not already contain.
//
// An empty table does not fail: totals and averages are emitted as
// 0.00 (the average of an empty column is defined as 0).
func Analyze(table *models.ResultTable) (*models.AnalysisReport, error) {
	if table == nil {
		return nil, errors.NewAnalysisFailedError("no result table")
	}

	lines := []string{fmt.Sprintf("Analysis of %d records:", table.RowCount())}
	insights := []string{}

	for _, col := range table.Columns {
		if col.Kind != models.ColumnKindNumeric {
			continue
		}

		total, count, err := sumColumn(table, col.Name)
		if err != nil {
			return nil, errors.NewAnalysisFailedError(
				fmt.Sprintf("column %q: %v", col.Name, err))
		}

		avg := 0.0
		if count > 0 {
			avg = total / float64(count)
		}

		lines = append(lines,
			fmt.Sprintf("- Total %s: %s", col.Name, formatAmount(total)),
			fmt.Sprintf("- Average %s: %s", col.Name, formatAmount(avg)),
		)

		name := strings.ToLower(col.Name)
		if strings.Contains(name, "amount") || strings.Contains(name, "sales") {
			insights = append(insights,
				fmt.Sprintf("Total %s is %s", col.Name, formatAmount(total)),
				fmt.Sprintf("Average %s per record is %s", col.Name, formatAmount(avg)),
			)
		}
	}

	return &models.AnalysisReport{
		Summary:  strings.Join(lines, "\n"),
		Insights: insights,
	}, nil
}

// sumColumn accumulates the non-null values of a numeric column,
// returning the sum and the count of values included.
func sumColumn(table *models.ResultTable, name string) (float64, int, error) {
	idx := table.ColumnIndex(name)
	if idx < 0 {
		return 0, 0, fmt.Errorf("column not found")
	}

	var total float64
	var count int
	for _, row := range table.Rows {
		v := row[idx]
		if v == nil {
			continue
		}
		f, err := toFloat(v)
		if err != nil {
			return 0, 0, err
		}
		total += f
		count++
	}
	return total, count, nil
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
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
	default:
		return 0, fmt.Errorf("unexpected value type %T in numeric column", v)
	}
}

// formatAmount renders a value with thousands separators and two
// decimal places, e.g. 1234567.891 -> "1,234,567.89".
func formatAmount(v float64) string {
	return printer.Sprintf("%.2f", v)
}
