// Package errors provides the classified error type shared by the storefront
// and admin services.
package errors

import "google.golang.org/grpc/codes"

// Kind classifies an error by the layer that raised it. Error-catching client
// nodes select the translation domain from the kind.
type Kind string

const (
	// KindUnknown marks errors that carry no classification.
	KindUnknown Kind = "unknown"
	// KindPresentation marks failures inside the HTML client layer.
	KindPresentation Kind = "presentation"
	// KindApplication marks failures raised by frontend controllers.
	KindApplication Kind = "application"
	// KindPlugin marks basket plugin validation failures carrying sub-codes.
	KindPlugin Kind = "plugin"
	// KindDomain marks failures raised by domain managers.
	KindDomain Kind = "domain"
	// KindValidation marks invalid command parameters.
	KindValidation Kind = "validation"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeUnknown Code = "UNKNOWN"

	// Client layer
	CodeClientConfig           Code = "CLIENT_CONFIG"
	CodeClientTemplate         Code = "CLIENT_TEMPLATE"
	CodeClientInvalidParam     Code = "CLIENT_INVALID_PARAM"
	CodeInvalidServiceResponse Code = "CLIENT_INVALID_SERVICE_RESPONSE"

	// Frontend controllers
	CodeBasketEmpty        Code = "BASKET_EMPTY"
	CodeBasketInvalid      Code = "BASKET_INVALID"
	CodeProductUnavailable Code = "PRODUCT_UNAVAILABLE"
	CodeInvalidQuantity    Code = "INVALID_QUANTITY"

	// Domain managers
	CodeNotFound       Code = "NOT_FOUND"
	CodeAlreadyExists  Code = "ALREADY_EXISTS"
	CodeStorage        Code = "STORAGE"
	CodeInvalidSearch  Code = "INVALID_SEARCH"
	CodeUnknownManager Code = "UNKNOWN_MANAGER"
	CodeUnknownService Code = "UNKNOWN_SERVICE"
	CodeLocaleMissing  Code = "LOCALE_MISSING"

	// Admin commands
	CodeParamsMissing   Code = "PARAMS_MISSING"
	CodeParamsInvalid   Code = "PARAMS_INVALID"
	CodeUnknownMethod   Code = "UNKNOWN_METHOD"
	CodeUnauthenticated Code = "UNAUTHENTICATED"
)

// GRPCCode maps an error to a gRPC status code.
func (e *Error) GRPCCode() codes.Code {
	if e == nil {
		return codes.OK
	}
	switch e.Code {
	case CodeNotFound:
		return codes.NotFound
	case CodeAlreadyExists:
		return codes.AlreadyExists
	case CodeUnauthenticated:
		return codes.Unauthenticated
	case CodeUnknownMethod:
		return codes.Unimplemented
	}
	switch e.Kind {
	case KindValidation:
		return codes.InvalidArgument
	case KindPlugin, KindApplication:
		return codes.FailedPrecondition
	default:
		return codes.Internal
	}
}
