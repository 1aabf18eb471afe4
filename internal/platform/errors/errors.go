package errors

import (
	stderrors "errors"
	"fmt"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/protoadapt"
)

// Domain is the error domain reported in gRPC error details.
const Domain = "github.com/louisbranch/storefront"

// ErrorCode is one plugin validation sub-code, e.g. section "product",
// key "0", code "stock.notenough".
type ErrorCode struct {
	Section string
	Key     string
	Code    string
}

// Error is the classified error type with structured metadata.
type Error struct {
	Kind    Kind
	Code    Code
	Message string // message format, also the translation key
	Args    []any
	Codes   []ErrorCode
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if len(e.Args) > 0 {
		msg = fmt.Sprintf(e.Message, e.Args...)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Presentation creates a client layer error.
func Presentation(code Code, format string, args ...any) *Error {
	return &Error{Kind: KindPresentation, Code: code, Message: format, Args: args}
}

// Application creates a frontend controller error.
func Application(code Code, format string, args ...any) *Error {
	return &Error{Kind: KindApplication, Code: code, Message: format, Args: args}
}

// Plugin creates a basket plugin error with its sub-codes.
func Plugin(code Code, message string, subCodes []ErrorCode) *Error {
	return &Error{Kind: KindPlugin, Code: code, Message: message, Codes: subCodes}
}

// DomainError creates a domain manager error.
func DomainError(code Code, format string, args ...any) *Error {
	return &Error{Kind: KindDomain, Code: code, Message: format, Args: args}
}

// Validation creates a parameter validation error.
func Validation(code Code, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: format, Args: args}
}

// Wrap creates a classified error that wraps an underlying cause.
func Wrap(kind Kind, code Code, message string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Cause: cause}
}

// As returns the outermost classified error in err's chain.
func As(err error) (*Error, bool) {
	var target *Error
	if stderrors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// KindOf returns the kind of the outermost classified error, or KindUnknown.
func KindOf(err error) Kind {
	if e, ok := As(err); ok && e.Kind != "" {
		return e.Kind
	}
	return KindUnknown
}

// Flatten expands joined errors into their leaves, preserving order.
func Flatten(err error) []error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*Error); ok {
		return []error{err}
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, item := range joined.Unwrap() {
			out = append(out, Flatten(item)...)
		}
		return out
	}
	return []error{err}
}

// ToGRPCStatus converts the error to a gRPC status with errdetails.
// The status message carries the internal message; the localized message
// carries the user-facing translation.
func (e *Error) ToGRPCStatus(locale string, userMessage string) error {
	grpcCode := e.GRPCCode()
	st := status.New(grpcCode, e.Error())

	details := []protoadapt.MessageV1{
		&errdetails.ErrorInfo{
			Reason: string(e.Code),
			Domain: Domain,
			Metadata: map[string]string{
				"kind": string(e.Kind),
			},
		},
		&errdetails.LocalizedMessage{
			Locale:  locale,
			Message: userMessage,
		},
	}
	if len(e.Codes) > 0 {
		failure := &errdetails.PreconditionFailure{}
		for _, code := range e.Codes {
			failure.Violations = append(failure.Violations, &errdetails.PreconditionFailure_Violation{
				Type:        code.Section,
				Subject:     code.Key,
				Description: code.Code,
			})
		}
		details = append(details, failure)
	}

	withDetails, err := st.WithDetails(details...)
	if err != nil {
		return status.New(grpcCode, e.Error()).Err()
	}
	return withDetails.Err()
}
