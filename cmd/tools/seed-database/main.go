// cmd/tools/seed-database/main.go
//
// Creates the business schema (customers, products, sales) and loads
// the sample dataset the assistant's query catalog is written against.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"

	"insightbot/internal/common/config"
	"insightbot/internal/common/database"
	"insightbot/internal/common/logger"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		customer_id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		region TEXT,
		join_date DATE
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		product_id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT,
		price NUMERIC(10, 2),
		stock INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		sale_id SERIAL PRIMARY KEY,
		customer_id INTEGER REFERENCES customers (customer_id),
		product_id INTEGER REFERENCES products (product_id),
		quantity INTEGER,
		sale_date DATE,
		total_amount NUMERIC(10, 2)
	)`,
}

type customer struct {
	name, email, region, joinDate string
}

type product struct {
	name, category string
	price          float64
	stock          int
}

var customers = []customer{
	{"John Doe", "john@example.com", "North", "2023-01-15"},
	{"Jane Smith", "jane@example.com", "South", "2023-02-20"},
	{"Bob Wilson", "bob@example.com", "East", "2023-03-10"},
	{"Alice Brown", "alice@example.com", "West", "2023-04-05"},
	{"Charlie Davis", "charlie@example.com", "North", "2023-05-12"},
}

var products = []product{
	{"Laptop Pro", "Electronics", 1299.99, 50},
	{"Office Chair", "Furniture", 199.99, 100},
	{"Coffee Maker", "Appliances", 79.99, 75},
	{"Wireless Mouse", "Electronics", 29.99, 200},
	{"Desk Lamp", "Furniture", 39.99, 150},
	{"Keyboard", "Electronics", 89.99, 120},
	{"Monitor", "Electronics", 299.99, 80},
	{"Filing Cabinet", "Furniture", 149.99, 40},
}

func main() {
	salesCount := flag.Int("sales", 200, "number of sample sales rows to generate")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed for sales generation")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, "console")
	defer zapLog.Sync()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres open failed", zap.Error(err))
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := pg.Ping(ctx); err != nil {
		zapLog.Fatal("postgres unreachable", zap.Error(err))
	}

	if err := seedDatabase(ctx, pg.GetDB(), *salesCount, *seed, zapLog); err != nil {
		zapLog.Fatal("seeding failed", zap.Error(err))
	}

	zapLog.Info("database created successfully with sample data",
		zap.Int("customers", len(customers)),
		zap.Int("products", len(products)),
		zap.Int("sales", *salesCount),
	)
}

func seedDatabase(ctx context.Context, db *sql.DB, salesCount int, seed int64, zapLog *zap.Logger) error {
	for _, ddl := range schema {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, c := range customers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO customers (name, email, region, join_date) VALUES ($1, $2, $3, $4)`,
			c.name, c.email, c.region, c.joinDate); err != nil {
			return fmt.Errorf("insert customer %q: %w", c.name, err)
		}
	}

	for _, p := range products {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO products (name, category, price, stock) VALUES ($1, $2, $3, $4)`,
			p.name, p.category, p.price, p.stock); err != nil {
			return fmt.Errorf("insert product %q: %w", p.name, err)
		}
	}

	// Randomized sales spread over 2023-01-01 .. 2024-03-31.
	rng := rand.New(rand.NewSource(seed))
	startDate := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	endDate := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	daysBetween := int(endDate.Sub(startDate).Hours() / 24)

	for i := 0; i < salesCount; i++ {
		saleDate := startDate.AddDate(0, 0, rng.Intn(daysBetween+1))
		customerID := rng.Intn(len(customers)) + 1
		productID := rng.Intn(len(products)) + 1
		quantity := rng.Intn(5) + 1
		totalAmount := products[productID-1].price * float64(quantity)

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sales (customer_id, product_id, quantity, sale_date, total_amount)
			 VALUES ($1, $2, $3, $4, $5)`,
			customerID, productID, quantity, saleDate.Format("2006-01-02"), totalAmount); err != nil {
			return fmt.Errorf("insert sale %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	zapLog.Info("sample data inserted")
	return nil
}
