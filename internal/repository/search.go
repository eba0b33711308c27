package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Default pagination applied when the caller sends nothing usable.
const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// queryBuilder accumulates conjunctive predicates, sorting and offset
// pagination for a filtered search. Filter predicates are ANDed; free text is
// a single ORed ILIKE predicate across a fixed column set. Sort columns come
// from a per-repository allow-list so sort parameters cannot inject SQL.
type queryBuilder struct {
	conds   []string
	args    []interface{}
	orderBy string
	limit   int
	offset  int
}

// bind registers an argument and returns its positional placeholder.
func (b *queryBuilder) bind(v interface{}) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

// where adds a predicate already containing bound placeholders.
func (b *queryBuilder) where(cond string) {
	b.conds = append(b.conds, cond)
}

// equal adds "col = value" when value is non-empty.
func (b *queryBuilder) equal(col, value string) {
	if value != "" {
		b.where(col + " = " + b.bind(value))
	}
}

// freeText adds a case-insensitive substring match ORed across columns.
func (b *queryBuilder) freeText(query string, cols ...string) {
	if query == "" {
		return
	}
	pattern := b.bind("%" + query + "%")
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = col + " ILIKE " + pattern
	}
	b.where("(" + strings.Join(parts, " OR ") + ")")
}

// rangeFloat adds inclusive bounds for a numeric column; nil disables a bound.
func (b *queryBuilder) rangeFloat(col string, min, max *float64) {
	if min != nil {
		b.where(col + " >= " + b.bind(*min))
	}
	if max != nil {
		b.where(col + " <= " + b.bind(*max))
	}
}

// rangeInt adds inclusive bounds for an integer column; nil disables a bound.
func (b *queryBuilder) rangeInt(col string, min, max *int) {
	if min != nil {
		b.where(col + " >= " + b.bind(*min))
	}
	if max != nil {
		b.where(col + " <= " + b.bind(*max))
	}
}

// sort sets the ORDER BY clause from an allow-listed sort key. Unknown keys
// fall back to creation time descending.
func (b *queryBuilder) sort(sortBy, order string, allowed map[string]string) {
	col, ok := allowed[sortBy]
	if !ok {
		col = "created_at"
		order = "DESC"
	}
	dir := "DESC"
	if strings.EqualFold(order, "ASC") {
		dir = "ASC"
	}
	b.orderBy = col + " " + dir
}

// paginate sets LIMIT/OFFSET with skip = (page-1)*limit.
func (b *queryBuilder) paginate(page, limit int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	b.limit = limit
	b.offset = (page - 1) * limit
}

// whereClause renders the accumulated predicates, or "" when there are none.
func (b *queryBuilder) whereClause() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

// tail renders ORDER BY / LIMIT / OFFSET.
func (b *queryBuilder) tail() string {
	out := ""
	if b.orderBy != "" {
		out += " ORDER BY " + b.orderBy
	}
	if b.limit > 0 {
		out += fmt.Sprintf(" LIMIT %d OFFSET %d", b.limit, b.offset)
	}
	return out
}

// isUniqueViolation reports whether err is a Postgres unique-constraint error.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
