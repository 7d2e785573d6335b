package criteria

import "strings"

// Builder accumulates conditions joined with AND, keeping placeholder
// arguments in order.
type Builder struct {
	conds []string
	args  []any
}

func (b *Builder) AndWhere(cond string, args ...any) *Builder {
	b.conds = append(b.conds, cond)
	b.args = append(b.args, args...)
	return b
}

// SQL returns the joined conditions without a leading WHERE, or "" when empty.
func (b *Builder) SQL() (string, []any) {
	if len(b.conds) == 0 {
		return "", nil
	}
	if len(b.conds) == 1 {
		return b.conds[0], b.args
	}
	return "(" + strings.Join(b.conds, ") AND (") + ")", b.args
}

// Where prefixes a non-empty predicate with WHERE.
func Where(predicate string) string {
	if predicate == "" {
		return ""
	}
	return " WHERE " + predicate
}
