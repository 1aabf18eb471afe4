// Package criteria builds storage-neutral search criteria for domain
// managers and translates them to SQL.
package criteria

import "fmt"

// Comparison operators.
const (
	OpEqual        = "=="
	OpNotEqual     = "!="
	OpLess         = "<"
	OpLessEqual    = "<="
	OpGreater      = ">"
	OpGreaterEqual = ">="
	OpPrefix       = "=~"
	OpContains     = "~="
)

// Combination operators.
const (
	OpAnd = "&&"
	OpOr  = "||"
	OpNot = "!"
)

// DefaultSliceSize is the page size used until SetSlice is called.
const DefaultSliceSize = 100

// Expression is a node of a search condition tree.
type Expression interface {
	expression()
}

// Compare tests one field against a value. A slice value with OpEqual or
// OpNotEqual tests membership.
type Compare struct {
	Operator string
	Name     string
	Value    any
}

// Combine joins expressions with a boolean operator.
type Combine struct {
	Operator    string
	Expressions []Expression
}

func (Compare) expression() {}
func (Combine) expression() {}

// Sort orders results by one field.
type Sort struct {
	Name string
	Desc bool
}

// Search holds the condition, ordering and slice of one query.
type Search struct {
	conditions Expression
	sorts      []Sort
	start      int
	size       int
}

// New returns a search matching every item, first DefaultSliceSize results.
func New() *Search {
	return &Search{size: DefaultSliceSize}
}

// Compare returns a comparison expression; it does not change the search.
func (s *Search) Compare(op, name string, value any) Expression {
	return Compare{Operator: op, Name: name, Value: value}
}

// Combine returns a combination expression; it does not change the search.
func (s *Search) Combine(op string, exprs ...Expression) Expression {
	return Combine{Operator: op, Expressions: exprs}
}

// SetConditions replaces the search condition.
func (s *Search) SetConditions(expr Expression) *Search {
	s.conditions = expr
	return s
}

// Conditions returns the search condition, nil when unrestricted.
func (s *Search) Conditions() Expression {
	return s.conditions
}

// SetSlice limits results to size items starting at start.
func (s *Search) SetSlice(start, size int) *Search {
	if start < 0 {
		start = 0
	}
	if size < 0 {
		size = 0
	}
	s.start, s.size = start, size
	return s
}

// Slice returns the result window.
func (s *Search) Slice() (start, size int) {
	return s.start, s.size
}

// SetSortations replaces the result ordering.
func (s *Search) SetSortations(sorts ...Sort) *Search {
	s.sorts = append([]Sort(nil), sorts...)
	return s
}

// Sortations returns the result ordering.
func (s *Search) Sortations() []Sort {
	return append([]Sort(nil), s.sorts...)
}

func validComparison(op string) bool {
	switch op {
	case OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual, OpPrefix, OpContains:
		return true
	default:
		return false
	}
}

func validateCombine(c Combine) error {
	switch c.Operator {
	case OpAnd, OpOr:
		if len(c.Expressions) == 0 {
			return fmt.Errorf("combine %q requires expressions", c.Operator)
		}
	case OpNot:
		if len(c.Expressions) != 1 {
			return fmt.Errorf("combine %q requires exactly one expression", c.Operator)
		}
	default:
		return fmt.Errorf("unsupported combine operator %q", c.Operator)
	}
	return nil
}
