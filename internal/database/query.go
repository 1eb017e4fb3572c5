package database

import (
	"strings"
)

// QueryBuilder converts SQL queries with ? placeholders to dialect-specific format.
type QueryBuilder struct {
	dialect Dialect
}

// NewQueryBuilder creates a new QueryBuilder for the given dialect.
func NewQueryBuilder(dialect Dialect) *QueryBuilder {
	return &QueryBuilder{dialect: dialect}
}

// Build rewrites ? placeholders for the dialect. SQLite queries pass
// through unchanged; PostgreSQL gets $1, $2 and so on.
//
//	input:    "SELECT tile FROM run_assignments WHERE run_id = ? AND layer = ?"
//	Postgres: "SELECT tile FROM run_assignments WHERE run_id = $1 AND layer = $2"
func (qb *QueryBuilder) Build(query string) string {
	if _, ok := qb.dialect.(*SQLiteDialect); ok {
		return query
	}

	var result strings.Builder
	result.Grow(len(query) + 8)
	position := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result.WriteString(qb.dialect.Placeholder(position))
			position++
		} else {
			result.WriteByte(query[i])
		}
	}
	return result.String()
}

// BuildWithReturning appends a RETURNING clause if the dialect requires it.
// Used for INSERT statements that need the inserted ID.
func (qb *QueryBuilder) BuildWithReturning(query string, column string) string {
	converted := qb.Build(query)
	if !qb.dialect.SupportsLastInsertID() {
		converted += qb.dialect.ReturningClause(column)
	}
	return converted
}

// Insert returns an INSERT statement for the columns with one placeholder
// per column, already converted for the dialect.
//
//	Insert("run_failures", "run_id", "status")
//	Postgres: "INSERT INTO run_failures (run_id, status) VALUES ($1, $2)"
func (qb *QueryBuilder) Insert(table string, columns ...string) string {
	return qb.Build(insertSQL(table, columns))
}

func insertSQL(table string, columns []string) string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return "INSERT INTO " + table + " (" + strings.Join(columns, ", ") + ") VALUES (" + marks + ")"
}
