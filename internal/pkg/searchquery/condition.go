package searchquery

import (
	"strconv"
	"strings"
)

// Condition represents one term of a storefront search query.
// Implementations return ok=false when they contribute nothing.
type Condition interface {
	// Term renders the condition in the storefront search grammar.
	Term() (string, bool)
}

// fieldCondition implements field:value matching.
type fieldCondition struct {
	field string
	value string
}

// Field creates a field:value term. Blank values produce no term.
// Example: Field("vendor", "Acme Co") generates `vendor:"Acme Co"`
func Field(field, value string) Condition {
	return &fieldCondition{field: field, value: value}
}

// Term renders the field term with the value escaped.
func (c *fieldCondition) Term() (string, bool) {
	v := strings.TrimSpace(c.value)
	if v == "" {
		return "", false
	}
	return c.field + ":" + Escape(v), true
}

// Comparator is a numeric comparison operator in the search grammar.
type Comparator string

const (
	// Gte matches values greater than or equal to the bound.
	Gte Comparator = ">="
	// Lte matches values less than or equal to the bound.
	Lte Comparator = "<="
)

// rangeCondition implements field:<op><n> comparisons.
type rangeCondition struct {
	field string
	op    Comparator
	bound *float64
}

// Range creates a numeric comparison term. A nil bound produces no term.
// Example: Range("price", Gte, &ten) generates "price:>=10"
func Range(field string, op Comparator, bound *float64) Condition {
	return &rangeCondition{field: field, op: op, bound: bound}
}

// Term renders the comparison using the shortest decimal form of the bound.
func (c *rangeCondition) Term() (string, bool) {
	if c.bound == nil {
		return "", false
	}
	return c.field + ":" + string(c.op) + strconv.FormatFloat(*c.bound, 'f', -1, 64), true
}

// Escape quotes a value when it contains a space, colon or double quote so
// that it survives the grammar's tokenizer unambiguously.
func Escape(v string) string {
	if !strings.ContainsAny(v, " :\"") {
		return v
	}
	var sb strings.Builder
	sb.Grow(len(v) + 2)
	sb.WriteByte('"')
	for _, r := range v {
		if r == '"' || r == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	sb.WriteByte('"')
	return sb.String()
}
