package criteria

import (
	"fmt"
	"strings"
)

// SQLCondition represents a SQL WHERE clause fragment with parameters.
type SQLCondition struct {
	// Clause is the SQL WHERE clause (e.g., "customer_id = ?").
	Clause string
	// Params are the positional parameters for the clause.
	Params []any
}

// ToSQL translates expr using columns, which maps criteria names such as
// "order.base.id" to SQL columns. A nil expression matches every row.
func ToSQL(expr Expression, columns map[string]string) (SQLCondition, error) {
	if expr == nil {
		return SQLCondition{Clause: "1 = 1"}, nil
	}
	switch typed := expr.(type) {
	case Compare:
		return compareToSQL(typed, columns)
	case *Compare:
		return compareToSQL(*typed, columns)
	case Combine:
		return combineToSQL(typed, columns)
	case *Combine:
		return combineToSQL(*typed, columns)
	default:
		return SQLCondition{}, fmt.Errorf("unsupported expression type: %T", expr)
	}
}

// OrderBy translates sortations into an ORDER BY list, without the keywords.
func OrderBy(sorts []Sort, columns map[string]string) (string, error) {
	parts := make([]string, 0, len(sorts))
	for _, sort := range sorts {
		column, ok := columns[sort.Name]
		if !ok {
			return "", fmt.Errorf("unknown field: %s", sort.Name)
		}
		if sort.Desc {
			parts = append(parts, column+" DESC")
		} else {
			parts = append(parts, column+" ASC")
		}
	}
	return strings.Join(parts, ", "), nil
}

func combineToSQL(c Combine, columns map[string]string) (SQLCondition, error) {
	if err := validateCombine(c); err != nil {
		return SQLCondition{}, err
	}
	clauses := make([]string, 0, len(c.Expressions))
	var params []any
	for _, item := range c.Expressions {
		cond, err := ToSQL(item, columns)
		if err != nil {
			return SQLCondition{}, err
		}
		clauses = append(clauses, cond.Clause)
		params = append(params, cond.Params...)
	}
	switch c.Operator {
	case OpNot:
		return SQLCondition{Clause: "NOT (" + clauses[0] + ")", Params: params}, nil
	case OpOr:
		return SQLCondition{Clause: "(" + strings.Join(clauses, " OR ") + ")", Params: params}, nil
	default:
		return SQLCondition{Clause: "(" + strings.Join(clauses, " AND ") + ")", Params: params}, nil
	}
}

func compareToSQL(c Compare, columns map[string]string) (SQLCondition, error) {
	if !validComparison(c.Operator) {
		return SQLCondition{}, fmt.Errorf("unsupported operator %q", c.Operator)
	}
	column, ok := columns[c.Name]
	if !ok {
		return SQLCondition{}, fmt.Errorf("unknown field: %s", c.Name)
	}

	if values, ok := toSlice(c.Value); ok {
		switch c.Operator {
		case OpEqual:
			if len(values) == 0 {
				return SQLCondition{Clause: "1 = 0"}, nil
			}
			return SQLCondition{Clause: column + " IN (" + placeholders(len(values)) + ")", Params: values}, nil
		case OpNotEqual:
			if len(values) == 0 {
				return SQLCondition{Clause: "1 = 1"}, nil
			}
			return SQLCondition{Clause: column + " NOT IN (" + placeholders(len(values)) + ")", Params: values}, nil
		default:
			return SQLCondition{}, fmt.Errorf("operator %q does not accept a list", c.Operator)
		}
	}

	switch c.Operator {
	case OpEqual:
		if c.Value == nil {
			return SQLCondition{Clause: column + " IS NULL"}, nil
		}
		return SQLCondition{Clause: column + " = ?", Params: []any{c.Value}}, nil
	case OpNotEqual:
		if c.Value == nil {
			return SQLCondition{Clause: column + " IS NOT NULL"}, nil
		}
		return SQLCondition{Clause: column + " != ?", Params: []any{c.Value}}, nil
	case OpPrefix:
		return SQLCondition{Clause: column + ` LIKE ? ESCAPE '\'`, Params: []any{escapeLike(fmt.Sprint(c.Value)) + "%"}}, nil
	case OpContains:
		return SQLCondition{Clause: column + ` LIKE ? ESCAPE '\'`, Params: []any{"%" + escapeLike(fmt.Sprint(c.Value)) + "%"}}, nil
	default:
		return SQLCondition{Clause: fmt.Sprintf("%s %s ?", column, c.Operator), Params: []any{c.Value}}, nil
	}
}

func toSlice(value any) ([]any, bool) {
	switch typed := value.(type) {
	case []any:
		return append([]any(nil), typed...), true
	case []string:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = item
		}
		return out, true
	case []int64:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = item
		}
		return out, true
	case []int:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = item
		}
		return out, true
	default:
		return nil, false
	}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
