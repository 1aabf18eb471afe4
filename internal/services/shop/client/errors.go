package client

import (
	apperrors "github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/platform/logging"
	"github.com/louisbranch/storefront/internal/services/shop/view"
	"go.uber.org/zap"
)

// Translation domains of the error kinds.
const (
	DomainClient   = "client"
	DomainFrontend = "frontend"
	DomainMShop    = "mshop"
	DomainCode     = "mshop/code"
)

// ErrorCodesKey holds the raw plugin error codes for form highlighting.
const ErrorCodesKey = "summaryErrorCodes"

// GenericErrorMessage is shown for errors that carry no classification.
const GenericErrorMessage = "A non-recoverable error occured"

// CatchError translates err by kind and appends the messages to the error
// list under listKey. Joined errors produce one entry per failure.
// Unclassified errors are logged with a stack trace and shown as a generic
// message.
func CatchError(deps Deps, v *view.View, listKey string, err error) {
	for _, leaf := range apperrors.Flatten(err) {
		view.AppendErrors(v, listKey, translateError(deps, v, leaf)...)
	}
}

func translateError(deps Deps, v *view.View, err error) []string {
	e, ok := apperrors.As(err)
	if !ok {
		return []string{unclassified(deps, v, err)}
	}
	switch e.Kind {
	case apperrors.KindPresentation, apperrors.KindValidation:
		return []string{v.Translate(DomainClient, e.Message, e.Args...)}
	case apperrors.KindApplication:
		return []string{v.Translate(DomainFrontend, e.Message, e.Args...)}
	case apperrors.KindPlugin:
		messages := []string{v.Translate(DomainMShop, e.Message, e.Args...)}
		codes := view.Value[[]apperrors.ErrorCode](v, ErrorCodesKey, nil)
		for _, code := range e.Codes {
			messages = append(messages, v.Translate(DomainCode, code.Code))
		}
		v.Set(ErrorCodesKey, append(codes, e.Codes...))
		return messages
	case apperrors.KindDomain:
		return []string{v.Translate(DomainMShop, e.Message, e.Args...)}
	default:
		return []string{unclassified(deps, v, err)}
	}
}

func unclassified(deps Deps, v *view.View, err error) string {
	logging.OrNop(deps.Logger).Error("unclassified client error", zap.Error(err), zap.Stack("stack"))
	return v.Translate(DomainClient, GenericErrorMessage)
}
