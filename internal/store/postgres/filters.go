package postgres

import (
	"strconv"
	"strings"
)

// condList accumulates optional WHERE predicates and their bound values.
// Predicates are written with ? markers and renumbered to positional $N
// placeholders when appended, so callers never track parameter indices
// by hand and an omitted filter contributes neither a predicate nor a
// parameter.
type condList struct {
	conds []string
	args  []any
}

// Where appends one predicate. Every ? in expr consumes one value from
// args, in order. The number of markers must equal len(args).
func (c *condList) Where(expr string, args ...any) {
	var b strings.Builder
	n := 0
	for {
		i := strings.IndexByte(expr, '?')
		if i < 0 {
			b.WriteString(expr)
			break
		}
		b.WriteString(expr[:i])
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(len(c.args) + n + 1))
		expr = expr[i+1:]
		n++
	}
	if n != len(args) {
		panic("condList: placeholder count does not match argument count")
	}

	c.conds = append(c.conds, b.String())
	c.args = append(c.args, args...)
}

// SQL returns the assembled WHERE clause with a leading space, or the
// empty string when no predicates were added.
func (c *condList) SQL() string {
	if len(c.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.conds, " AND ")
}

// Next returns the positional index the next bound parameter would get,
// for trailing LIMIT/OFFSET style clauses appended outside the builder.
func (c *condList) Next() int { return len(c.args) + 1 }

func (c *condList) Args() []any { return c.args }

func (c *condList) Len() int { return len(c.conds) }
