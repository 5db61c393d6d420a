package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"tradelink/internal/delivery/http/dto"
	"tradelink/internal/domain"
)

// Response represents a standardized dashboard API response
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// SuccessResponse sends a success response
func SuccessResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{
		Status: "success",
		Data:   data,
	})
}

// CreatedResponse sends a 201 Created response
func CreatedResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Response{
		Status: "success",
		Data:   data,
	})
}

// ErrorResponse sends an error response
func ErrorResponse(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, Response{
		Status:  "error",
		Message: message,
	})
}

// UnauthorizedResponse sends a 401 Unauthorized response
func UnauthorizedResponse(c echo.Context, message string) error {
	return ErrorResponse(c, http.StatusUnauthorized, message)
}

// NotFoundResponse sends a 404 Not Found response
func NotFoundResponse(c echo.Context, message string) error {
	return ErrorResponse(c, http.StatusNotFound, message)
}

// InternalServerErrorResponse sends a 500 response. The cause is logged by
// the caller, never echoed to the client.
func InternalServerErrorResponse(c echo.Context, message string) error {
	return ErrorResponse(c, http.StatusInternalServerError, message)
}

// TerminalError sends the flat {"error": ...} body terminals expect
func TerminalError(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, dto.TerminalErrorResponse{Error: message})
}

// TerminalFailure maps a service error onto the terminal protocol's status
// codes. Unexpected errors are logged and reported as a generic server error.
func TerminalFailure(c echo.Context, log zerolog.Logger, err error) error {
	var reqErr *domain.RequestError
	switch {
	case errors.As(err, &reqErr):
		return TerminalError(c, http.StatusBadRequest, reqErr.Reason)
	case errors.Is(err, domain.ErrInvalidCredentials):
		return TerminalError(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, domain.ErrUnauthorized):
		return TerminalError(c, http.StatusUnauthorized, "Unauthorized")
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("Terminal request failed")
		return TerminalError(c, http.StatusInternalServerError, "Server error")
	}
}
