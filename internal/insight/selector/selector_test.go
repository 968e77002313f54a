package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insightbot/internal/models"
)

func TestSelect_KeywordRouting(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     models.TemplateID
	}{
		{"top products", "What are our top products?", models.TemplateTopProducts},
		{"best product singular", "Which is the best product this quarter?", models.TemplateTopProducts},
		{"case insensitive", "TOP PRODUCTS please", models.TemplateTopProducts},
		{"sales by region", "Show me sales by region", models.TemplateSalesByRegion},
		{"all products", "List all products", models.TemplateAllProducts},
		{"customer spending", "How is customer spending trending?", models.TemplateCustomerSpending},
		{"no keywords falls back", "Tell me something interesting", models.TemplateDefault},
		{"empty question falls back", "", models.TemplateDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := Select(tt.question)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tmpl.ID)
			assert.NotEmpty(t, tmpl.SQL)
		})
	}
}

// A question mentioning "top" without a product keyword must still be
// considered by the later rules instead of falling through to the
// default.
func TestSelect_PartialMatchDoesNotSwallowLaterRules(t *testing.T) {
	tmpl, err := Select("What are the top sales by region?")
	require.NoError(t, err)
	assert.Equal(t, models.TemplateSalesByRegion, tmpl.ID)
}

func TestSelect_SameQuestionSameTemplate(t *testing.T) {
	first, err := Select("what are our top products")
	require.NoError(t, err)

	second, err := Select("what are our top products")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestTemplateIDs_CoversCatalog(t *testing.T) {
	ids := TemplateIDs()

	assert.Len(t, ids, len(templates))
	assert.Equal(t, models.TemplateDefault, ids[len(ids)-1])

	for _, id := range ids {
		assert.Contains(t, templates, id)
	}
}
