package handlers

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/xlml/bench-metrics/internal/abstractions"
	"github.com/xlml/bench-metrics/internal/config"
	"github.com/xlml/bench-metrics/internal/constants"
	"github.com/xlml/bench-metrics/internal/executioncontext"
	"github.com/xlml/bench-metrics/internal/http_wrappers"
	"github.com/xlml/bench-metrics/internal/messages"
	"github.com/xlml/bench-metrics/internal/serviceerrors"
)

// Contains the service state information that handlers can access
type Handlers struct {
	storage       abstractions.Storage
	validate      *validator.Validate
	runtime       abstractions.Runtime
	serviceConfig *config.Config
	startedAt     time.Time
}

func New(storage abstractions.Storage, validate *validator.Validate, runtime abstractions.Runtime, serviceConfig *config.Config) *Handlers {
	return &Handlers{
		storage:       storage,
		validate:      validate,
		runtime:       runtime,
		serviceConfig: serviceConfig,
		startedAt:     time.Now(),
	}
}

// writeError reports err to the client. Errors that are not service errors
// are reported as unknown errors with status 500.
func writeError(ctx *executioncontext.ExecutionContext, w http_wrappers.ResponseWrapper, err error) {
	code := serviceerrors.StatusCode(err)
	message := err.Error()
	var se *serviceerrors.ServiceError
	if !errors.As(err, &se) {
		message = messages.GetErrorMesssage(messages.UnknownError, "Error", err.Error())
	}
	if code >= constants.HTTPCodeInternalServerError {
		ctx.Logger.Error("Request failed", constants.LOG_ERROR, err, constants.LOG_RESP_CODE, code)
	} else {
		ctx.Logger.Info("Request rejected", constants.LOG_ERROR, err, constants.LOG_RESP_CODE, code)
	}
	w.Error(message, code, ctx.RequestID)
}

func requireMethod(ctx *executioncontext.ExecutionContext, r http_wrappers.RequestWrapper, w http_wrappers.ResponseWrapper, method string) bool {
	if r.Method() == method {
		return true
	}
	writeError(ctx, w, serviceerrors.NewServiceError(messages.MethodNotAllowed, "Method", r.Method(), "Api", r.Path()))
	return false
}
