// internal/models/template.go
package models

// TemplateID identifies one of the closed SQL query templates.
type TemplateID string

const (
	TemplateTopProducts      TemplateID = "top-products"
	TemplateSalesByRegion    TemplateID = "sales-by-region"
	TemplateAllProducts      TemplateID = "all-products"
	TemplateCustomerSpending TemplateID = "customer-spending"
	TemplateDefault          TemplateID = "default"
)

// QueryTemplate is a fixed, fully-formed SQL text selected by
// intent matching. Templates are closed strings; no part of the
// user's question is ever interpolated into the SQL.
type QueryTemplate struct {
	ID  TemplateID `json:"id"`
	SQL string     `json:"sql"`
}
