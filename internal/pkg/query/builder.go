package query

import (
	"fmt"
	"strings"

	"cloud.google.com/go/spanner"
)

// Direction represents ORDER BY direction.
type Direction int

const (
	// Asc represents ascending order.
	Asc Direction = iota
	// Desc represents descending order.
	Desc
)

type orderKey struct {
	column    string
	direction Direction
}

// Builder constructs single-page SELECT statements for the catalog mirror.
// Every method returns a copy, so a partially built query can be shared
// between the collection-scoped and whole-catalog reads.
type Builder struct {
	from  string
	joins []string
	cols  []string
	conds []Condition
	order []orderKey
	limit int64
}

// From starts a query over a table expression, which may carry an alias
// ("catalog_products p").
func From(table string) *Builder {
	return &Builder{from: table}
}

// Join appends a JOIN clause verbatim, e.g.
// "JOIN collection_products c ON c.product_handle = p.handle".
func (b *Builder) Join(clause string) *Builder {
	next := b.clone()
	next.joins = append(next.joins, clause)
	return next
}

// Select appends result columns. With none the query selects *.
func (b *Builder) Select(columns ...string) *Builder {
	next := b.clone()
	next.cols = append(next.cols, columns...)
	return next
}

// Where adds a condition; conditions are ANDed.
func (b *Builder) Where(condition Condition) *Builder {
	next := b.clone()
	next.conds = append(next.conds, condition)
	return next
}

// OrderBy appends a sort key. Earlier keys take precedence.
func (b *Builder) OrderBy(column string, direction Direction) *Builder {
	next := b.clone()
	next.order = append(next.order, orderKey{column: column, direction: direction})
	return next
}

// Limit caps the number of rows; zero means no LIMIT clause.
func (b *Builder) Limit(limit int64) *Builder {
	next := b.clone()
	next.limit = limit
	return next
}

// Build renders the statement. Condition parameters are numbered @p0, @p1...
// in the order the conditions were added.
func (b *Builder) Build() spanner.Statement {
	var sql strings.Builder
	params := make(map[string]interface{})

	sql.WriteString("SELECT ")
	if len(b.cols) == 0 {
		sql.WriteString("*")
	} else {
		sql.WriteString(strings.Join(b.cols, ", "))
	}

	sql.WriteString(" FROM ")
	sql.WriteString(b.from)
	for _, j := range b.joins {
		sql.WriteString(" ")
		sql.WriteString(j)
	}

	b.writeWhere(&sql, params)

	if len(b.order) > 0 {
		keys := make([]string, len(b.order))
		for i, k := range b.order {
			dir := "ASC"
			if k.direction == Desc {
				dir = "DESC"
			}
			keys[i] = k.column + " " + dir
		}
		sql.WriteString(" ORDER BY ")
		sql.WriteString(strings.Join(keys, ", "))
	}

	if b.limit > 0 {
		sql.WriteString(" LIMIT @limit")
		params["limit"] = b.limit
	}

	return spanner.Statement{
		SQL:    sql.String(),
		Params: params,
	}
}

func (b *Builder) writeWhere(sql *strings.Builder, params map[string]interface{}) {
	if len(b.conds) == 0 {
		return
	}
	parts := make([]string, 0, len(b.conds))
	next := 0
	for _, c := range b.conds {
		fragment, condParams := c.SQL(next)
		parts = append(parts, fragment)
		for k, v := range condParams {
			params[k] = v
		}
		next += len(condParams)
	}
	sql.WriteString(" WHERE ")
	sql.WriteString(strings.Join(parts, " AND "))
}

func (b *Builder) clone() *Builder {
	return &Builder{
		from:  b.from,
		joins: append([]string(nil), b.joins...),
		cols:  append([]string(nil), b.cols...),
		conds: append([]Condition(nil), b.conds...),
		order: append([]orderKey(nil), b.order...),
		limit: b.limit,
	}
}

// String returns the SQL and parameters, for debug logging.
func (b *Builder) String() string {
	stmt := b.Build()
	return fmt.Sprintf("SQL: %s\nParams: %v", stmt.SQL, stmt.Params)
}
