// Package selector maps a free-text business question onto the closed
// catalog of SQL query templates via ordered keyword rules.
package selector

import (
	"fmt"
	"strings"

	"insightbot/internal/common/errors"
	"insightbot/internal/models"
)

type predicate func(question string) bool

// rule pairs a match predicate with a template id. Rules are evaluated
// top to bottom, first match wins; a flat list so a rule that partially
// matches can never swallow the ones below it.
type rule struct {
	id    models.TemplateID
	match predicate
}

func anyOf(keywords ...string) predicate {
	return func(question string) bool {
		for _, kw := range keywords {
			if strings.Contains(question, kw) {
				return true
			}
		}
		return false
	}
}

func allOf(predicates ...predicate) predicate {
	return func(question string) bool {
		for _, p := range predicates {
			if !p(question) {
				return false
			}
		}
		return true
	}
}

var rules = []rule{
	{models.TemplateTopProducts, allOf(anyOf("top", "best"), anyOf("products", "product"))},
	{models.TemplateSalesByRegion, anyOf("sales by region")},
	{models.TemplateAllProducts, anyOf("all products")},
	{models.TemplateCustomerSpending, allOf(anyOf("customer"), anyOf("spending"))},
}

// Select returns the query template for a question. It is a pure
// function and total: every input, including the empty string, yields
// exactly one template, falling back to the default template when no
// rule matches.
func Select(question string) (models.QueryTemplate, error) {
	normalized := strings.ToLower(question)

	id := models.TemplateDefault
	for _, r := range rules {
		if r.match(normalized) {
			id = r.id
			break
		}
	}

	sqlText, ok := templates[id]
	if !ok || strings.TrimSpace(sqlText) == "" {
		return models.QueryTemplate{}, errors.NewTemplateGenerationFailedError(
			fmt.Sprintf("no SQL registered for template %q", id))
	}

	return models.QueryTemplate{ID: id, SQL: sqlText}, nil
}

// TemplateIDs lists the catalog ids in rule order, default last. Used
// as candidate labels by the intent classifier.
func TemplateIDs() []models.TemplateID {
	ids := make([]models.TemplateID, 0, len(rules)+1)
	for _, r := range rules {
		ids = append(ids, r.id)
	}
	return append(ids, models.TemplateDefault)
}
