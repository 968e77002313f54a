// Package executor runs a selected SQL template against the business
// database and returns the result as a kind-tagged table. Column kinds
// are decided here, at the query-execution boundary, so the analysis
// stages never inspect runtime value types.
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"insightbot/internal/common/database"
	"insightbot/internal/common/errors"
	"insightbot/internal/common/logger"
	"insightbot/internal/common/metrics"
	"insightbot/internal/models"
)

type Config struct {
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Executor is the SQL execution collaborator of the pipeline. The
// cache is optional; a nil client disables it.
type Executor struct {
	db     *sql.DB
	cache  *database.RedisClient
	config *Config
	logger logger.Logger
}

func New(db *sql.DB, cache *database.RedisClient, config *Config, log logger.Logger) *Executor {
	return &Executor{
		db:     db,
		cache:  cache,
		config: config,
		logger: log.WithFields(map[string]interface{}{"component": "executor"}),
	}
}

// Run executes the template's SQL and returns the tagged result table.
// Failures map onto the pipeline error taxonomy: deadline expiry to
// QUERY_TIMEOUT, driver connection errors to
// DATABASE_CONNECTION_FAILED, everything else to
// QUERY_EXECUTION_FAILED. Cache failures degrade to a plain query.
func (e *Executor) Run(ctx context.Context, tmpl models.QueryTemplate) (*models.ResultTable, error) {
	if cached := e.lookupCache(ctx, tmpl); cached != nil {
		return cached, nil
	}

	queryCtx := ctx
	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	rows, err := e.db.QueryContext(queryCtx, tmpl.SQL)
	if err != nil {
		return nil, e.mapQueryError(queryCtx, tmpl, err)
	}
	defer rows.Close()

	table, err := scanTable(rows)
	if err != nil {
		return nil, e.mapQueryError(queryCtx, tmpl, err)
	}

	metrics.QueryDuration.WithLabelValues(string(tmpl.ID)).Observe(time.Since(start).Seconds())

	e.storeCache(ctx, tmpl, table)
	return table, nil
}

func (e *Executor) mapQueryError(ctx context.Context, tmpl models.QueryTemplate, err error) *errors.StandardError {
	if ctx.Err() == context.DeadlineExceeded {
		return errors.NewQueryTimeoutError(string(tmpl.ID))
	}
	if strings.Contains(err.Error(), "connection") {
		return errors.NewDatabaseConnectionFailedError(err)
	}
	return errors.NewQueryExecutionFailedError(string(tmpl.ID), err)
}

// scanTable reads all rows, classifying every column as numeric or
// categorical from the driver's column type metadata.
func scanTable(rows *sql.Rows) (*models.ResultTable, error) {
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("column types: %w", err)
	}

	columns := make([]models.Column, len(colTypes))
	for i, ct := range colTypes {
		columns[i] = models.Column{
			Name: ct.Name(),
			Kind: classifyColumn(ct),
		}
	}

	table := &models.ResultTable{
		Columns: columns,
		Rows:    [][]interface{}{},
	}

	for rows.Next() {
		dest := make([]interface{}, len(columns))
		for i := range dest {
			dest[i] = new(interface{})
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make([]interface{}, len(columns))
		for i := range dest {
			value, err := normalizeValue(*dest[i].(*interface{}), columns[i].Kind)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", columns[i].Name, err)
			}
			row[i] = value
		}
		table.Rows = append(table.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return table, nil
}

var numericDBTypes = map[string]bool{
	"INT2": true, "INT4": true, "INT8": true,
	"SMALLINT": true, "INTEGER": true, "INT": true, "BIGINT": true,
	"FLOAT4": true, "FLOAT8": true, "FLOAT": true, "DOUBLE": true, "REAL": true,
	"NUMERIC": true, "DECIMAL": true, "MONEY": true,
}

func classifyColumn(ct *sql.ColumnType) models.ColumnKind {
	if numericDBTypes[strings.ToUpper(ct.DatabaseTypeName())] {
		return models.ColumnKindNumeric
	}

	// Some drivers report no database type name; fall back to the scan type.
	if ct.DatabaseTypeName() == "" && ct.ScanType() != nil {
		switch ct.ScanType().Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return models.ColumnKindNumeric
		}
	}

	return models.ColumnKindCategorical
}

// normalizeValue coerces driver values so numeric columns always hold
// float64 and categorical columns always hold string. NULL stays nil.
func normalizeValue(v interface{}, kind models.ColumnKind) (interface{}, error) {
	if v == nil {
		return nil, nil
	}

	if kind == models.ColumnKindNumeric {
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
		case []byte:
			// lib/pq returns NUMERIC values as raw bytes
			f, err := strconv.ParseFloat(string(n), 64)
			if err != nil {
				return nil, fmt.Errorf("parse numeric %q: %w", string(n), err)
			}
			return f, nil
		case string:
			f, err := strconv.ParseFloat(n, 64)
			if err != nil {
				return nil, fmt.Errorf("parse numeric %q: %w", n, err)
			}
			return f, nil
		default:
			return nil, fmt.Errorf("unexpected numeric value type %T", v)
		}
	}

	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	case time.Time:
		return s.Format("2006-01-02"), nil
	default:
		return fmt.Sprint(s), nil
	}
}
