// Package extjs implements the admin command controllers exposed to the
// ExtJS back office. Commands take and return generic parameter structs and
// are addressed as "<Controller>.<method>", e.g. "Order_Base.saveItems".
package extjs

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/storefront/internal/platform/errors"
	platformotel "github.com/louisbranch/storefront/internal/platform/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/protobuf/types/known/structpb"
)

// Method handles one admin command.
type Method func(ctx context.Context, params *structpb.Struct) (*structpb.Struct, error)

// Param describes one command parameter for service descriptions.
type Param struct {
	Type     string
	Name     string
	Optional bool
}

// MethodSpec declares one command of a controller.
type MethodSpec struct {
	Name    string
	Params  []Param
	Returns string
	Call    Method
}

// Controller is a named set of admin commands.
type Controller interface {
	Name() string
	Methods() []MethodSpec
}

// Dispatcher routes "<Controller>.<method>" calls to registered controllers.
type Dispatcher struct {
	methods map[string]MethodSpec
	tracer  trace.Tracer
}

// NewDispatcher registers the methods of controllers.
func NewDispatcher(controllers ...Controller) *Dispatcher {
	d := &Dispatcher{methods: map[string]MethodSpec{}, tracer: platformotel.Tracer("admin/extjs")}
	for _, controller := range controllers {
		if controller == nil {
			continue
		}
		for _, spec := range controller.Methods() {
			d.methods[controller.Name()+"."+spec.Name] = spec
		}
	}
	return d
}

// Call runs the command named method.
func (d *Dispatcher) Call(ctx context.Context, method string, params *structpb.Struct) (*structpb.Struct, error) {
	spec, ok := d.methods[strings.TrimSpace(method)]
	if !ok {
		return nil, apperrors.Validation(apperrors.CodeUnknownMethod, `Unknown method "%s"`, method)
	}
	if params == nil {
		params = &structpb.Struct{}
	}

	ctx, span := d.tracer.Start(ctx, "admin.command", trace.WithAttributes(attribute.String("admin.method", method)))
	defer span.End()
	result, err := spec.Call(ctx, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "admin command")
		return nil, err
	}
	return result, nil
}

// Describe returns the service description of every registered command,
// keyed by method name.
func (d *Dispatcher) Describe() (*structpb.Struct, error) {
	names := make([]string, 0, len(d.methods))
	for name := range d.methods {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]any, len(names))
	for _, name := range names {
		out[name] = describe(d.methods[name])
	}
	return structpb.NewStruct(out)
}

func describe(spec MethodSpec) map[string]any {
	params := make([]any, 0, len(spec.Params))
	for _, param := range spec.Params {
		params = append(params, map[string]any{
			"type":     param.Type,
			"name":     param.Name,
			"optional": param.Optional,
		})
	}
	return map[string]any{"parameters": params, "returns": spec.Returns}
}

// checkParams fails with a validation error when a required parameter is
// absent or null.
func checkParams(params *structpb.Struct, names ...string) error {
	for _, name := range names {
		value, ok := params.GetFields()[name]
		if !ok || value == nil {
			return apperrors.Validation(apperrors.CodeParamsMissing, `Required parameter "%s" is missing`, name)
		}
		if _, null := value.GetKind().(*structpb.Value_NullValue); null {
			return apperrors.Validation(apperrors.CodeParamsMissing, `Required parameter "%s" is missing`, name)
		}
	}
	return nil
}

// entries returns the structs of a one-or-many parameter and whether the
// parameter was a list.
func entries(value *structpb.Value, name string) ([]*structpb.Struct, bool, error) {
	switch kind := value.GetKind().(type) {
	case *structpb.Value_StructValue:
		return []*structpb.Struct{kind.StructValue}, false, nil
	case *structpb.Value_ListValue:
		out := make([]*structpb.Struct, 0, len(kind.ListValue.GetValues()))
		for _, item := range kind.ListValue.GetValues() {
			entry := item.GetStructValue()
			if entry == nil {
				return nil, true, apperrors.Validation(apperrors.CodeParamsInvalid, `Parameter "%s" must contain objects`, name)
			}
			out = append(out, entry)
		}
		return out, true, nil
	default:
		return nil, false, apperrors.Validation(apperrors.CodeParamsInvalid, `Parameter "%s" must be an object or a list of objects`, name)
	}
}

// stringList returns the strings of a one-or-many parameter.
func stringList(value *structpb.Value, name string) ([]string, error) {
	var values []*structpb.Value
	if list := value.GetListValue(); list != nil {
		values = list.GetValues()
	} else {
		values = []*structpb.Value{value}
	}
	out := make([]string, 0, len(values))
	for _, item := range values {
		text, ok := scalar(item)
		if !ok || text == "" {
			return nil, apperrors.Validation(apperrors.CodeParamsInvalid, `Parameter "%s" must contain identifiers`, name)
		}
		out = append(out, text)
	}
	return out, nil
}

// maxExactInt is the largest integer a float64 holds exactly.
const maxExactInt = 1 << 53

// scalar renders a string, number or bool value as text.
func scalar(value *structpb.Value) (string, bool) {
	switch kind := value.GetKind().(type) {
	case *structpb.Value_StringValue:
		return strings.TrimSpace(kind.StringValue), true
	case *structpb.Value_NumberValue:
		if kind.NumberValue == math.Trunc(kind.NumberValue) && math.Abs(kind.NumberValue) <= maxExactInt {
			return strconv.FormatInt(int64(kind.NumberValue), 10), true
		}
		return strconv.FormatFloat(kind.NumberValue, 'f', -1, 64), true
	case *structpb.Value_BoolValue:
		return strconv.FormatBool(kind.BoolValue), true
	default:
		return "", false
	}
}

// stringParam returns an optional text parameter.
func stringParam(params *structpb.Struct, name string) string {
	text, _ := scalar(params.GetFields()[name])
	return text
}

// intParam returns an optional integer parameter, fallback when absent.
func intParam(params *structpb.Struct, name string, fallback int) (int, error) {
	value, ok := params.GetFields()[name]
	if !ok {
		return fallback, nil
	}
	switch kind := value.GetKind().(type) {
	case *structpb.Value_NullValue:
		return fallback, nil
	case *structpb.Value_NumberValue:
		if kind.NumberValue < 0 || kind.NumberValue > math.MaxInt32 || kind.NumberValue != math.Trunc(kind.NumberValue) {
			break
		}
		return int(kind.NumberValue), nil
	case *structpb.Value_StringValue:
		parsed, err := strconv.Atoi(strings.TrimSpace(kind.StringValue))
		if err != nil || parsed < 0 || parsed > math.MaxInt32 {
			break
		}
		return parsed, nil
	}
	return 0, apperrors.Validation(apperrors.CodeParamsInvalid, `Parameter "%s" must be a non-negative integer`, name)
}
