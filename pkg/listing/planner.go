package listing

import (
	"fmt"
	"strings"
)

// productColumns is the select list for the data query, matching the scan
// order in the store.
const productColumns = "id, name, description, price, category, stock_quantity, created_at, updated_at"

// sortColumns maps allowed sort keys to their columns. Plan refuses keys
// outside this table rather than interpolating caller input into SQL.
var sortColumns = map[string]string{
	"id":             "id",
	"name":           "name",
	"price":          "price",
	"category":       "category",
	"stock_quantity": "stock_quantity",
	"created_at":     "created_at",
	"updated_at":     "updated_at",
}

// QueryPlan holds the count and data queries for one listing request. Both
// carry the same predicate set, so the count reflects the filtered
// population regardless of the pagination window.
type QueryPlan struct {
	CountSQL  string
	CountArgs []interface{}
	DataSQL   string
	DataArgs  []interface{}
}

// Planner builds store queries for validated listing descriptors.
type Planner struct {
	fullText bool
}

// NewPlanner returns a planner. fullText selects the native full-text
// search predicate; when off, search falls back to a case-insensitive
// substring match on the product name.
func NewPlanner(fullText bool) *Planner {
	return &Planner{fullText: fullText}
}

// Plan builds the count and data queries for q.
func (p *Planner) Plan(q *Query) (QueryPlan, error) {
	column, ok := sortColumns[q.SortBy]
	if !ok {
		return QueryPlan{}, fmt.Errorf("unsupported sort field %q", q.SortBy)
	}
	var direction string
	switch q.SortOrder {
	case "asc":
		direction = "ASC"
	case "desc":
		direction = "DESC"
	default:
		return QueryPlan{}, fmt.Errorf("unsupported sort order %q", q.SortOrder)
	}

	where, args := p.predicates(q)

	plan := QueryPlan{
		CountSQL:  "SELECT COUNT(*) FROM products" + where,
		CountArgs: args,
	}

	dataArgs := make([]interface{}, 0, len(args)+2)
	dataArgs = append(dataArgs, args...)
	dataArgs = append(dataArgs, q.Limit, (q.Page-1)*q.Limit)
	plan.DataSQL = fmt.Sprintf("SELECT %s FROM products%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		productColumns, where, column, direction, len(args)+1, len(args)+2)
	plan.DataArgs = dataArgs

	return plan, nil
}

// predicates builds the shared WHERE clause for the count and data queries.
func (p *Planner) predicates(q *Query) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if q.Category != nil {
		args = append(args, *q.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}

	if q.Search != nil {
		args = append(args, *q.Search)
		if p.fullText {
			conds = append(conds, fmt.Sprintf(
				"to_tsvector('english', name || ' ' || description || ' ' || category) @@ plainto_tsquery('english', $%d)",
				len(args)))
		} else {
			conds = append(conds, fmt.Sprintf("name ILIKE '%%' || $%d || '%%'", len(args)))
		}
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
