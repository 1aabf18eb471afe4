package criteria

import (
	"fmt"
	"strings"
	"time"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// FilterField declares one identifier accepted in AIP-160 filters and the
// criteria name it maps to.
type FilterField struct {
	Ident string
	Name  string
	Type  *expr.Type
}

// ParseFilter parses an AIP-160 filter expression into a criteria
// expression. An empty filter yields a nil expression.
func ParseFilter(filterStr string, fields []FilterField) (Expression, error) {
	if strings.TrimSpace(filterStr) == "" {
		return nil, nil
	}

	options := []filtering.DeclarationOption{filtering.DeclareStandardFunctions()}
	names := make(map[string]string, len(fields))
	for _, field := range fields {
		options = append(options, filtering.DeclareIdent(field.Ident, field.Type))
		names[field.Ident] = field.Name
	}
	decls, err := filtering.NewDeclarations(options...)
	if err != nil {
		return nil, fmt.Errorf("create declarations: %w", err)
	}

	filter, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return nil, fmt.Errorf("parse filter: %w", err)
	}
	return (&filterTranslator{names: names}).translate(filter.CheckedExpr.GetExpr())
}

type filterTranslator struct {
	names map[string]string
}

func (t *filterTranslator) translate(e *expr.Expr) (Expression, error) {
	if e == nil {
		return nil, nil
	}
	call, ok := e.ExprKind.(*expr.Expr_CallExpr)
	if !ok {
		return nil, fmt.Errorf("unsupported expression type: %T", e.ExprKind)
	}
	switch fn := call.CallExpr.Function; fn {
	case "_&&_", "AND":
		return t.combine(OpAnd, call.CallExpr.Args)
	case "_||_", "OR":
		return t.combine(OpOr, call.CallExpr.Args)
	case "!_", "NOT":
		return t.combine(OpNot, call.CallExpr.Args)
	case "_==_", "=":
		return t.compare(OpEqual, call.CallExpr.Args)
	case "_!=_", "!=":
		return t.compare(OpNotEqual, call.CallExpr.Args)
	case "_<_", "<":
		return t.compare(OpLess, call.CallExpr.Args)
	case "_<=_", "<=":
		return t.compare(OpLessEqual, call.CallExpr.Args)
	case "_>_", ">":
		return t.compare(OpGreater, call.CallExpr.Args)
	case "_>=_", ">=":
		return t.compare(OpGreaterEqual, call.CallExpr.Args)
	case ":":
		return t.compare(OpContains, call.CallExpr.Args)
	default:
		return nil, fmt.Errorf("unsupported function: %s", fn)
	}
}

func (t *filterTranslator) combine(op string, args []*expr.Expr) (Expression, error) {
	exprs := make([]Expression, 0, len(args))
	for _, arg := range args {
		translated, err := t.translate(arg)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, translated)
	}
	combined := Combine{Operator: op, Expressions: exprs}
	if err := validateCombine(combined); err != nil {
		return nil, err
	}
	return combined, nil
}

func (t *filterTranslator) compare(op string, args []*expr.Expr) (Expression, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("comparison requires 2 arguments")
	}
	ident, ok := args[0].GetExprKind().(*expr.Expr_IdentExpr)
	if !ok {
		return nil, fmt.Errorf("expected identifier, got %T", args[0].GetExprKind())
	}
	name, ok := t.names[ident.IdentExpr.GetName()]
	if !ok {
		return nil, fmt.Errorf("unknown field: %s", ident.IdentExpr.GetName())
	}
	value, err := extractValue(args[1])
	if err != nil {
		return nil, err
	}
	return Compare{Operator: op, Name: name, Value: value}, nil
}

func extractValue(e *expr.Expr) (any, error) {
	switch kind := e.GetExprKind().(type) {
	case *expr.Expr_ConstExpr:
		switch c := kind.ConstExpr.GetConstantKind().(type) {
		case *expr.Constant_StringValue:
			return c.StringValue, nil
		case *expr.Constant_Int64Value:
			return c.Int64Value, nil
		case *expr.Constant_Uint64Value:
			return c.Uint64Value, nil
		case *expr.Constant_DoubleValue:
			return c.DoubleValue, nil
		case *expr.Constant_BoolValue:
			return c.BoolValue, nil
		default:
			return nil, fmt.Errorf("unsupported constant type: %T", c)
		}
	case *expr.Expr_CallExpr:
		if kind.CallExpr.GetFunction() == "timestamp" && len(kind.CallExpr.GetArgs()) == 1 {
			raw, err := extractValue(kind.CallExpr.GetArgs()[0])
			if err != nil {
				return nil, err
			}
			text, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("timestamp argument must be a string")
			}
			ts, err := time.Parse(time.RFC3339Nano, text)
			if err != nil {
				return nil, fmt.Errorf("invalid timestamp format: %s", text)
			}
			return ts.UTC().Format(time.RFC3339Nano), nil
		}
		return nil, fmt.Errorf("unsupported function in value position: %s", kind.CallExpr.GetFunction())
	default:
		return nil, fmt.Errorf("expected constant or timestamp, got %T", kind)
	}
}
