package catalog

import (
	"strconv"
	"strings"
)

// filter accumulates SQL conditions and their positional arguments.
type filter struct {
	conditions []string
	args       []any
}

// predicate adds its condition to the filter when its criterion is present.
type predicate func(f *filter, c Criteria)

// predicates is the fixed set of search combinators, applied in order.
var predicates = []predicate{
	notDeleted,
	nameContains,
	inCategory,
	priceAtLeast,
	priceAtMost,
	quantityAtLeast,
	quantityAtMost,
}

func (f *filter) add(condition string, arg any) {
	f.args = append(f.args, arg)
	f.conditions = append(f.conditions, strings.ReplaceAll(condition, "?", "$"+strconv.Itoa(len(f.args))))
}

func (f *filter) where() string {
	if len(f.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conditions, " AND ")
}

func notDeleted(f *filter, _ Criteria) {
	f.conditions = append(f.conditions, "NOT is_deleted")
}

func nameContains(f *filter, c Criteria) {
	query := strings.TrimSpace(c.Query)
	if query == "" {
		return
	}
	f.add(`name ILIKE '%' || ? || '%' ESCAPE '\'`, escapeLike(query))
}

func inCategory(f *filter, c Criteria) {
	if c.CategoryID != nil {
		f.add("category_id = ?", *c.CategoryID)
	}
}

func priceAtLeast(f *filter, c Criteria) {
	if c.PriceMin != nil {
		f.add("price >= ?", *c.PriceMin)
	}
}

func priceAtMost(f *filter, c Criteria) {
	if c.PriceMax != nil {
		f.add("price <= ?", *c.PriceMax)
	}
}

func quantityAtLeast(f *filter, c Criteria) {
	if c.QuantityMin != nil {
		f.add("quantity >= ?", *c.QuantityMin)
	}
}

func quantityAtMost(f *filter, c Criteria) {
	if c.QuantityMax != nil {
		f.add("quantity <= ?", *c.QuantityMax)
	}
}

// buildFilter applies every predicate to the criteria.
func buildFilter(c Criteria) *filter {
	f := &filter{}
	for _, p := range predicates {
		p(f, c)
	}
	return f
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
