// Package jsonrpc serves admin commands over JSON-RPC 2.0.
//
// Requests and responses are decoded and encoded with protojson so command
// parameters reach controllers as structpb values without an intermediate
// Go representation. Batches and notifications follow the JSON-RPC 2.0
// rules; GET returns the service description of every command.
package jsonrpc

import (
	"context"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/platform/i18n"
	"github.com/louisbranch/storefront/internal/platform/i18n/catalog"
	"github.com/louisbranch/storefront/internal/platform/logging"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Path is the endpoint the handler is mounted on.
const Path = "/jsonrpc"

// Version is the only protocol version accepted.
const Version = "2.0"

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeServerError    = -32000
)

const maxBodyBytes = 1 << 20

const internalMessage = "A non-recoverable error occured"

// Caller runs admin commands by method name.
type Caller interface {
	Call(ctx context.Context, method string, params *structpb.Struct) (*structpb.Struct, error)
	Describe() (*structpb.Struct, error)
}

// Handler serves JSON-RPC requests.
type Handler struct {
	caller   Caller
	messages *catalog.Bundle
	logger   *zap.Logger
}

// NewHandler returns a handler dispatching to caller. A nil bundle uses the
// embedded catalogs.
func NewHandler(caller Caller, messages *catalog.Bundle, logger *zap.Logger) *Handler {
	return &Handler{caller: caller, messages: messages, logger: logging.OrNop(logger)}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.describe(w)
	case http.MethodPost:
		h.serve(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (h *Handler) describe(w http.ResponseWriter) {
	description, err := h.caller.Describe()
	if err != nil {
		h.logger.Error("describe admin commands", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeJSON(w, structpb.NewStructValue(description))
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	tag, _ := i18n.ResolveTag(r)
	tr := i18n.NewTranslator(h.messages, tag)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, errorResponse(structpb.NewNullValue(), CodeParseError, tr.DT(DomainController, "Invalid request"), nil))
		return
	}
	var payload structpb.Value
	if err := protojson.Unmarshal(body, &payload); err != nil {
		writeJSON(w, errorResponse(structpb.NewNullValue(), CodeParseError, tr.DT(DomainController, "Invalid request"), nil))
		return
	}

	batch := payload.GetListValue()
	if batch == nil {
		response := h.handle(r.Context(), tr, &payload)
		if response == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, response)
		return
	}
	if len(batch.GetValues()) == 0 {
		writeJSON(w, errorResponse(structpb.NewNullValue(), CodeInvalidRequest, tr.DT(DomainController, "Invalid request"), nil))
		return
	}
	responses := make([]*structpb.Value, 0, len(batch.GetValues()))
	for _, request := range batch.GetValues() {
		if response := h.handle(r.Context(), tr, request); response != nil {
			responses = append(responses, response)
		}
	}
	if len(responses) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, structpb.NewListValue(&structpb.ListValue{Values: responses}))
}

// handle runs one request. Notifications, requests without an id, return nil.
func (h *Handler) handle(ctx context.Context, tr i18n.Translator, value *structpb.Value) *structpb.Value {
	request := value.GetStructValue()
	if request == nil {
		return errorResponse(structpb.NewNullValue(), CodeInvalidRequest, tr.DT(DomainController, "Invalid request"), nil)
	}
	fields := request.GetFields()
	id, hasID := fields["id"]
	if !hasID {
		id = structpb.NewNullValue()
	}
	method := strings.TrimSpace(fields["method"].GetStringValue())
	if fields["jsonrpc"].GetStringValue() != Version || method == "" {
		return errorResponse(id, CodeInvalidRequest, tr.DT(DomainController, "Invalid request"), nil)
	}
	params, ok := requestParams(fields["params"])
	if !ok {
		return errorResponse(id, CodeInvalidParams, tr.DT(DomainController, "Invalid request"), nil)
	}

	result, err := h.caller.Call(ctx, method, params)
	if !hasID {
		if err != nil {
			h.logger.Warn("admin notification failed", zap.String("method", method), zap.Error(err))
		}
		return nil
	}
	if err != nil {
		return h.commandError(id, tr, method, err)
	}
	return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
		"jsonrpc": structpb.NewStringValue(Version),
		"id":      id,
		"result":  structpb.NewStructValue(result),
	}})
}

// requestParams accepts named params or a one-element positional list
// holding them.
func requestParams(value *structpb.Value) (*structpb.Struct, bool) {
	switch kind := value.GetKind().(type) {
	case nil, *structpb.Value_NullValue:
		return &structpb.Struct{}, true
	case *structpb.Value_StructValue:
		return kind.StructValue, true
	case *structpb.Value_ListValue:
		values := kind.ListValue.GetValues()
		if len(values) == 1 && values[0].GetStructValue() != nil {
			return values[0].GetStructValue(), true
		}
	}
	return nil, false
}

func (h *Handler) commandError(id *structpb.Value, tr i18n.Translator, method string, err error) *structpb.Value {
	appErr, ok := apperrors.As(err)
	if !ok || appErr.Kind == apperrors.KindUnknown {
		h.logger.Error("admin command failed", zap.String("method", method), zap.Error(err), zap.Stack("stack"))
		return errorResponse(id, CodeInternalError, tr.DT(DomainClient, internalMessage), nil)
	}

	message := tr.DT(translationDomain(appErr.Kind), appErr.Message, appErr.Args...)
	st, _ := status.FromError(appErr.ToGRPCStatus(tr.Locale(), message))
	data := map[string]*structpb.Value{
		"grpcCode": structpb.NewStringValue(st.Code().String()),
		"reason":   structpb.NewStringValue(string(appErr.Code)),
		"kind":     structpb.NewStringValue(string(appErr.Kind)),
	}
	if encoded, err := protojson.Marshal(st.Proto()); err == nil {
		var detail structpb.Value
		if err := protojson.Unmarshal(encoded, &detail); err == nil {
			data["status"] = &detail
		}
	}

	code := CodeServerError
	switch st.Code() {
	case codes.Unimplemented:
		code = CodeMethodNotFound
	case codes.InvalidArgument:
		code = CodeInvalidParams
	case codes.Internal:
		code = CodeInternalError
		h.logger.Error("admin command failed", zap.String("method", method), zap.Error(err))
	}
	return errorResponse(id, code, message, &structpb.Struct{Fields: data})
}

// Translation domains of command errors.
const (
	DomainClient     = "client"
	DomainController = "controller"
	DomainFrontend   = "frontend"
	DomainMShop      = "mshop"
)

func translationDomain(kind apperrors.Kind) string {
	switch kind {
	case apperrors.KindValidation:
		return DomainController
	case apperrors.KindApplication:
		return DomainFrontend
	case apperrors.KindPresentation:
		return DomainClient
	default:
		return DomainMShop
	}
}

func errorResponse(id *structpb.Value, code int, message string, data *structpb.Struct) *structpb.Value {
	rpcErr := map[string]*structpb.Value{
		"code":    structpb.NewNumberValue(float64(code)),
		"message": structpb.NewStringValue(message),
	}
	if data != nil {
		rpcErr["data"] = structpb.NewStructValue(data)
	}
	return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
		"jsonrpc": structpb.NewStringValue(Version),
		"id":      id,
		"error":   structpb.NewStructValue(&structpb.Struct{Fields: rpcErr}),
	}})
}

func writeJSON(w http.ResponseWriter, value *structpb.Value) {
	encoded, err := protojson.Marshal(value)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(encoded)
}
