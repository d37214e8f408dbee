package database

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// QueryBuilder provides a fluent, type-safe API for building database queries.
// Column names are passed through as written, so callers qualify them with the
// table alias when a relation is joined.
type QueryBuilder[T any] struct {
	db *DB

	wheres      []*WhereClause
	whereGroups []*WhereGroup
	orders      []*OrderClause
	limitVal    *int
	offsetVal   *int
	relations   []string
	timeout     time.Duration
}

// WhereClause represents a WHERE condition
type WhereClause struct {
	Column   string
	Operator string
	Value    any
	IsRaw    bool
	RawSQL   string
	RawArgs  []any
}

// WhereGroup represents conditions joined by a single connector
type WhereGroup struct {
	Conditions []*WhereClause
	Connector  string // "AND" or "OR"
}

// OrderClause represents an ORDER BY clause
type OrderClause struct {
	Column    string
	Direction OrderDirection
}

// OrderDirection represents sort direction
type OrderDirection string

const (
	ASC  OrderDirection = "ASC"
	DESC OrderDirection = "DESC"
)

// WhereGroupBuilder provides a fluent API for building grouped WHERE clauses
type WhereGroupBuilder[T any] struct {
	parent *QueryBuilder[T]
	group  *WhereGroup
}

// Query creates a new QueryBuilder instance
func Query[T any](db *DB) *QueryBuilder[T] {
	return &QueryBuilder[T]{db: db}
}

// Where adds a simple WHERE condition (column = value)
func (q *QueryBuilder[T]) Where(column string, value any) *QueryBuilder[T] {
	return q.WhereOp(column, "=", value)
}

// WhereOp adds a WHERE condition with a custom operator
func (q *QueryBuilder[T]) WhereOp(column, operator string, value any) *QueryBuilder[T] {
	q.wheres = append(q.wheres, &WhereClause{
		Column:   column,
		Operator: operator,
		Value:    value,
	})
	return q
}

// WhereRaw adds a raw WHERE condition
func (q *QueryBuilder[T]) WhereRaw(sql string, args ...any) *QueryBuilder[T] {
	q.wheres = append(q.wheres, &WhereClause{
		IsRaw:   true,
		RawSQL:  sql,
		RawArgs: args,
	})
	return q
}

// Or starts an OR group
func (q *QueryBuilder[T]) Or() *WhereGroupBuilder[T] {
	return &WhereGroupBuilder[T]{
		parent: q,
		group:  &WhereGroup{Connector: "OR"},
	}
}

// OrderBy adds an ORDER BY clause
func (q *QueryBuilder[T]) OrderBy(column string, direction OrderDirection) *QueryBuilder[T] {
	q.orders = append(q.orders, &OrderClause{
		Column:    column,
		Direction: direction,
	})
	return q
}

// Limit sets the LIMIT clause
func (q *QueryBuilder[T]) Limit(limit int) *QueryBuilder[T] {
	q.limitVal = &limit
	return q
}

// Offset sets the OFFSET clause
func (q *QueryBuilder[T]) Offset(offset int) *QueryBuilder[T] {
	q.offsetVal = &offset
	return q
}

// Relation joins a bun relation declared on the model
func (q *QueryBuilder[T]) Relation(name string) *QueryBuilder[T] {
	q.relations = append(q.relations, name)
	return q
}

// Timeout sets a timeout for the query
func (q *QueryBuilder[T]) Timeout(duration time.Duration) *QueryBuilder[T] {
	q.timeout = duration
	return q
}

// WhereOp adds a condition with an operator to the group
func (w *WhereGroupBuilder[T]) WhereOp(column, operator string, value any) *WhereGroupBuilder[T] {
	w.group.Conditions = append(w.group.Conditions, &WhereClause{
		Column:   column,
		Operator: operator,
		Value:    value,
	})
	return w
}

// WhereRaw adds a raw condition to the group
func (w *WhereGroupBuilder[T]) WhereRaw(sql string, args ...any) *WhereGroupBuilder[T] {
	w.group.Conditions = append(w.group.Conditions, &WhereClause{
		IsRaw:   true,
		RawSQL:  sql,
		RawArgs: args,
	})
	return w
}

// End completes the group builder and returns to the query builder
func (w *WhereGroupBuilder[T]) End() *QueryBuilder[T] {
	w.parent.whereGroups = append(w.parent.whereGroups, w.group)
	return w.parent
}

// selectQuery compiles the builder into a bun select scanning into dest
func (q *QueryBuilder[T]) selectQuery(dest any) *bun.SelectQuery {
	query := q.db.NewSelect().Model(dest)

	for _, rel := range q.relations {
		query = query.Relation(rel)
	}

	query = query.ApplyQueryBuilder(q.applyWheres)

	for _, order := range q.orders {
		query = query.OrderExpr("? "+string(order.Direction), bun.Ident(order.Column))
	}
	if q.limitVal != nil {
		query = query.Limit(*q.limitVal)
	}
	if q.offsetVal != nil {
		query = query.Offset(*q.offsetVal)
	}

	return query
}

// updateQuery compiles the builder into a bun update setting the given columns
func (q *QueryBuilder[T]) updateQuery(values map[string]any) *bun.UpdateQuery {
	query := q.db.NewUpdate().Model((*T)(nil))

	// Sorted so the generated SQL is stable
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		query = query.Set("? = ?", bun.Ident(key), values[key])
	}

	return query.ApplyQueryBuilder(q.applyWheres)
}

// applyWheres adds every condition and group to any bun query
func (q *QueryBuilder[T]) applyWheres(qb bun.QueryBuilder) bun.QueryBuilder {
	for _, where := range q.wheres {
		sql, args := where.toSQL()
		qb = qb.Where(sql, args...)
	}

	for _, group := range q.whereGroups {
		if len(group.Conditions) == 0 {
			continue
		}
		parts := make([]string, 0, len(group.Conditions))
		var args []any
		for _, cond := range group.Conditions {
			sql, condArgs := cond.toSQL()
			parts = append(parts, sql)
			args = append(args, condArgs...)
		}
		qb = qb.Where("("+strings.Join(parts, " "+group.Connector+" ")+")", args...)
	}

	return qb
}

func (w *WhereClause) toSQL() (string, []any) {
	if w.IsRaw {
		return w.RawSQL, w.RawArgs
	}

	switch w.Operator {
	case "IS NULL", "IS NOT NULL":
		return fmt.Sprintf("%s %s", w.Column, w.Operator), nil
	case "IN":
		return fmt.Sprintf("%s IN (?)", w.Column), []any{bun.In(w.Value)}
	default:
		return fmt.Sprintf("%s %s ?", w.Column, w.Operator), []any{w.Value}
	}
}

// String renders the select statement with its arguments inlined, for logs and tests
func (q *QueryBuilder[T]) String() string {
	var dest []T
	return q.selectQuery(&dest).String()
}
