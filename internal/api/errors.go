package api

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/alexanderramin/unload/internal/auth"
	"github.com/alexanderramin/unload/internal/domain"
	"github.com/alexanderramin/unload/internal/intelligence"
	"github.com/alexanderramin/unload/internal/llm"
	"github.com/alexanderramin/unload/internal/repository"
	"github.com/alexanderramin/unload/internal/transcribe"
	"github.com/gofiber/fiber/v2"
)

// ErrorCode is the machine-readable code in every error body.
type ErrorCode string

const (
	CodeUnauthorized     ErrorCode = "UNAUTHORIZED"      // 401
	CodeInvalidRequest   ErrorCode = "INVALID_REQUEST"   // 400
	CodeNotFound         ErrorCode = "NOT_FOUND"         // 404
	CodeConflict         ErrorCode = "CONFLICT"          // 409
	CodeTooManyRequests  ErrorCode = "TOO_MANY_REQUESTS" // 429
	CodeUpstreamBusy     ErrorCode = "UPSTREAM_BUSY"     // 503
	CodeUpstreamGarbage  ErrorCode = "UPSTREAM_INVALID"  // 502
	CodeUpstreamAuth     ErrorCode = "UPSTREAM_AUTH"     // 500
	CodeUnavailable      ErrorCode = "UNAVAILABLE"       // 503
	CodeInternal         ErrorCode = "INTERNAL"          // 500
	CodePayloadTooLarge  ErrorCode = "PAYLOAD_TOO_LARGE" // 413
	CodeRouteNotFound    ErrorCode = "ROUTE_NOT_FOUND"   // 404
	CodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
)

// Error is a response-ready error: status, code and a message that is safe
// to show the caller.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type errorBody struct {
	Error string    `json:"error"`
	Code  ErrorCode `json:"code"`
}

func NewInvalidRequest(msg string) *Error {
	return &Error{Code: CodeInvalidRequest, Status: fiber.StatusBadRequest, Message: msg}
}

func NewUnauthorized() *Error {
	return &Error{Code: CodeUnauthorized, Status: fiber.StatusUnauthorized, Message: "missing or invalid authorization token"}
}

func NewUnavailable(msg string) *Error {
	return &Error{Code: CodeUnavailable, Status: fiber.StatusServiceUnavailable, Message: msg}
}

func newInternal() *Error {
	return &Error{Code: CodeInternal, Status: fiber.StatusInternalServerError, Message: "Something went wrong. Please try again."}
}

// fromError maps package sentinels to an API error. Anything unknown is an
// internal error whose details stay in the log.
func fromError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fromFiber(fe)
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, transcribe.ErrTooLarge),
		errors.Is(err, transcribe.ErrEmptyAudio):
		return NewInvalidRequest(err.Error())
	case errors.Is(err, repository.ErrNotFound):
		return &Error{Code: CodeNotFound, Status: fiber.StatusNotFound, Message: "item not found"}
	case errors.Is(err, domain.ErrInvalidTransition):
		return &Error{Code: CodeConflict, Status: fiber.StatusConflict, Message: err.Error()}
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		return NewUnauthorized()
	case errors.Is(err, llm.ErrRateLimited), errors.Is(err, transcribe.ErrRateLimited):
		return &Error{Code: CodeUpstreamBusy, Status: fiber.StatusServiceUnavailable,
			Message: "The assistant is busy right now. Please try again in a moment."}
	case errors.Is(err, llm.ErrInvalidOutput):
		return &Error{Code: CodeUpstreamGarbage, Status: fiber.StatusBadGateway,
			Message: "The assistant returned something we could not read. Please try again."}
	case errors.Is(err, llm.ErrUnauthorized), errors.Is(err, transcribe.ErrUnauthorized):
		return &Error{Code: CodeUpstreamAuth, Status: fiber.StatusInternalServerError,
			Message: "Invalid API key for the assistant service."}
	case errors.Is(err, intelligence.ErrClarityFailed):
		e := newInternal()
		e.Message = "Failed to generate clarity."
		return e
	}
	return newInternal()
}

func fromFiber(fe *fiber.Error) *Error {
	switch fe.Code {
	case fiber.StatusNotFound:
		return &Error{Code: CodeRouteNotFound, Status: fe.Code, Message: fe.Message}
	case fiber.StatusMethodNotAllowed:
		return &Error{Code: CodeMethodNotAllowed, Status: fe.Code, Message: fe.Message}
	case fiber.StatusRequestEntityTooLarge:
		return &Error{Code: CodePayloadTooLarge, Status: fe.Code, Message: "request body too large"}
	case fiber.StatusTooManyRequests:
		return &Error{Code: CodeTooManyRequests, Status: fe.Code, Message: fe.Message}
	}
	if fe.Code >= 400 && fe.Code < 500 {
		return &Error{Code: CodeInvalidRequest, Status: fe.Code, Message: fe.Message}
	}
	return newInternal()
}

// errorHandler renders every returned error as {"error", "code"}.
func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		apiErr := fromError(err)
		if apiErr.Status >= 500 {
			logger.ErrorContext(c.UserContext(), "request failed",
				"method", c.Method(),
				"path", c.Path(),
				"status", apiErr.Status,
				"code", apiErr.Code,
				"error", err.Error())
		}
		return c.Status(apiErr.Status).JSON(errorBody{Error: apiErr.Message, Code: apiErr.Code})
	}
}
