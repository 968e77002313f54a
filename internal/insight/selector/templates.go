// internal/insight/selector/templates.go
package selector

import "insightbot/internal/models"

// templates is the closed catalog of SQL texts. These are fixed
// strings; nothing from the question is ever interpolated into them.
var templates = map[models.TemplateID]string{
	models.TemplateTopProducts: `
		SELECT p.name AS product_name,
		       SUM(s.quantity) AS total_quantity,
		       SUM(s.total_amount) AS total_sales
		FROM sales s
		JOIN products p ON s.product_id = p.product_id
		GROUP BY p.product_id, p.name
		ORDER BY total_sales DESC
		LIMIT 5`,

	models.TemplateSalesByRegion: `
		SELECT c.region,
		       SUM(s.total_amount) AS total_sales,
		       COUNT(DISTINCT s.customer_id) AS customer_count
		FROM sales s
		JOIN customers c ON s.customer_id = c.customer_id
		GROUP BY c.region
		ORDER BY total_sales DESC`,

	models.TemplateAllProducts: `
		SELECT p.name,
		       p.category,
		       p.price,
		       p.stock
		FROM products p
		ORDER BY p.category, p.name`,

	models.TemplateCustomerSpending: `
		SELECT c.name AS customer_name,
		       c.region,
		       SUM(s.total_amount) AS total_spent
		FROM sales s
		JOIN customers c ON s.customer_id = c.customer_id
		GROUP BY c.customer_id, c.name, c.region
		ORDER BY total_spent DESC
		LIMIT 10`,

	models.TemplateDefault: `
		SELECT p.name AS product_name,
		       p.category,
		       COUNT(*) AS number_of_sales,
		       SUM(s.quantity) AS total_quantity,
		       SUM(s.total_amount) AS total_revenue
		FROM sales s
		JOIN products p ON s.product_id = p.product_id
		GROUP BY p.product_id, p.name, p.category
		ORDER BY total_revenue DESC`,
}
