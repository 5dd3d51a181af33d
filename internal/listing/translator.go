package listing

import (
	"strings"
	"time"
)

// FieldMap describes how one entity's table answers the shared filters.
// Supplying a FieldMap is all a list view needs to reuse the translator.
type FieldMap struct {
	// StatusColumn is compared for equality with Query.Status. Ignored when
	// StatusClauses is set.
	StatusColumn string

	// StatusClauses maps a status value to a full SQL predicate, for
	// entities whose status is derived (e.g. customer activity). Values not
	// in the map match nothing.
	StatusClauses map[string]string

	// SearchColumns are OR-ed together with LIKE.
	SearchColumns []string

	// DateColumn is bounded by Query.DateRange.
	DateColumn string

	// SortColumns maps a sortBy value to a column expression. Only these
	// are ever interpolated into ORDER BY.
	SortColumns map[string]string

	// DefaultSort is the sortBy key used when the requested one is unknown.
	DefaultSort string
}

// Translator applies Translate for one entity and renders the result as SQL.
type Translator struct {
	fields FieldMap
	now    func() time.Time
}

// NewTranslator creates a translator for the given entity field map.
func NewTranslator(fields FieldMap) *Translator {
	return &Translator{fields: fields, now: time.Now}
}

// WithClock returns a copy that resolves date ranges against clock.
func (t *Translator) WithClock(clock func() time.Time) *Translator {
	cp := *t
	cp.now = clock
	return &cp
}

// Translate resolves the filter form at the current time.
func (t *Translator) Translate(f Filters) Query {
	return Translate(f.Normalize(), t.now())
}

// Where renders q as a WHERE clause (including the keyword) with positional
// args. An empty query yields "" and nil args.
func (t *Translator) Where(q Query) (string, []any) {
	preds, args := t.Predicates(q)
	return JoinWhere(preds), args
}

// Predicates renders q as individual predicates, for callers that AND in
// conditions of their own before calling JoinWhere.
func (t *Translator) Predicates(q Query) ([]string, []any) {
	var preds []string
	var args []any

	if q.Status != nil {
		switch {
		case t.fields.StatusClauses != nil:
			if clause, ok := t.fields.StatusClauses[*q.Status]; ok {
				preds = append(preds, "("+clause+")")
			} else {
				preds = append(preds, "1 = 0")
			}
		case t.fields.StatusColumn != "":
			preds = append(preds, t.fields.StatusColumn+" = ?")
			args = append(args, *q.Status)
		}
	}

	if q.Search != nil && len(t.fields.SearchColumns) > 0 {
		pattern := "%" + escapeLike(*q.Search) + "%"
		likes := make([]string, 0, len(t.fields.SearchColumns))
		for _, col := range t.fields.SearchColumns {
			likes = append(likes, col+" LIKE ?")
			args = append(args, pattern)
		}
		preds = append(preds, "("+strings.Join(likes, " OR ")+")")
	}

	if q.DateRange != nil && t.fields.DateColumn != "" {
		preds = append(preds, t.fields.DateColumn+" BETWEEN ? AND ?")
		args = append(args, q.DateRange.From.UTC(), q.DateRange.To.UTC())
	}

	return preds, args
}

// JoinWhere ANDs preds into a WHERE clause, or "" when there are none.
func JoinWhere(preds []string) string {
	if len(preds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(preds, " AND ")
}

// OrderBy renders an ORDER BY clause from whitelisted sort columns.
func (t *Translator) OrderBy(f Filters) string {
	f = f.Normalize()
	col, ok := t.fields.SortColumns[f.SortBy]
	if !ok {
		col, ok = t.fields.SortColumns[t.fields.DefaultSort]
	}
	if !ok {
		return ""
	}
	dir := "DESC"
	if f.SortOrder == SortAsc {
		dir = "ASC"
	}
	return "ORDER BY " + col + " " + dir
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input literal inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
