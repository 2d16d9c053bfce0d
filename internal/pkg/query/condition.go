package query

import "fmt"

// Condition represents a WHERE clause condition.
// Implementations must generate SQL fragments and parameter maps
// using Spanner's named parameter format (@paramName).
type Condition interface {
	// SQL returns the SQL fragment and parameter map for this condition.
	// paramIndex is used to generate unique parameter names (@p0, @p1, etc.)
	SQL(paramIndex int) (string, map[string]interface{})
}

func paramName(paramIndex int) string {
	return fmt.Sprintf("p%d", paramIndex)
}

// compareCondition implements binary comparison (field <op> value).
type compareCondition struct {
	field string
	op    string
	value interface{}
}

// Eq creates a WHERE condition for equality comparison.
// Example: Eq("shop_domain", "demo.myshopify.com") generates "shop_domain = @p0"
func Eq(field string, value interface{}) Condition {
	return &compareCondition{field: field, op: "=", value: value}
}

// Gte creates a WHERE condition for field >= value.
func Gte(field string, value interface{}) Condition {
	return &compareCondition{field: field, op: ">=", value: value}
}

// Lte creates a WHERE condition for field <= value.
func Lte(field string, value interface{}) Condition {
	return &compareCondition{field: field, op: "<=", value: value}
}

// SQL generates the SQL fragment for the comparison.
func (c *compareCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	name := paramName(paramIndex)
	return fmt.Sprintf("%s %s @%s", c.field, c.op, name), map[string]interface{}{name: c.value}
}

// eqFoldCondition implements case-insensitive string equality.
type eqFoldCondition struct {
	field string
	value string
}

// EqFold creates a case-insensitive equality condition.
// Example: EqFold("vendor", "acme") generates "LOWER(vendor) = LOWER(@p0)"
func EqFold(field, value string) Condition {
	return &eqFoldCondition{field: field, value: value}
}

// SQL generates the SQL fragment for case-insensitive equality.
func (c *eqFoldCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	name := paramName(paramIndex)
	return fmt.Sprintf("LOWER(%s) = LOWER(@%s)", c.field, name), map[string]interface{}{name: c.value}
}

// arrayContainsCondition implements membership in an ARRAY<STRING> column.
type arrayContainsCondition struct {
	field string
	value interface{}
}

// ArrayContains creates a condition matching rows whose array column holds value.
// Example: ArrayContains("tags", "summer") generates "@p0 IN UNNEST(tags)"
func ArrayContains(field string, value interface{}) Condition {
	return &arrayContainsCondition{field: field, value: value}
}

// SQL generates the SQL fragment for array membership.
func (c *arrayContainsCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	name := paramName(paramIndex)
	return fmt.Sprintf("@%s IN UNNEST(%s)", name, c.field), map[string]interface{}{name: c.value}
}

// IsNotNull creates a WHERE condition for NOT NULL checks.
func IsNotNull(field string) Condition {
	return &isNotNullCondition{field: field}
}

// isNotNullCondition implements IS NOT NULL comparison.
type isNotNullCondition struct {
	field string
}

// SQL generates the SQL fragment for IS NOT NULL comparison.
func (c *isNotNullCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	return fmt.Sprintf("%s IS NOT NULL", c.field), map[string]interface{}{}
}
