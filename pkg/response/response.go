// Package response provides the JSON envelope shared by all API handlers.
package response

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the standard response body. Success indicates whether the
// operation completed; Message carries a human readable outcome. Extra
// payload fields are merged alongside via the map helpers below.
type Envelope map[string]interface{}

// OK writes a 200 response with success=true and the given payload fields.
func OK(c echo.Context, message string, fields ...Envelope) error {
	return write(c, http.StatusOK, true, message, fields...)
}

// Created writes a 201 response with success=true.
func Created(c echo.Context, message string, fields ...Envelope) error {
	return write(c, http.StatusCreated, true, message, fields...)
}

// Fail writes a response with success=false and the given status.
func Fail(c echo.Context, status int, message string) error {
	return write(c, status, false, message)
}

// ErrorHandler renders every error that escapes a handler or middleware
// through the envelope, so callers always receive the success flag and a
// message. *echo.HTTPError keeps its status and message; anything else
// becomes a generic 500.
func ErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := "internal server error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(code)
			}
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = Fail(c, code, message)
	}
}

func write(c echo.Context, status int, success bool, message string, fields ...Envelope) error {
	body := Envelope{"success": success}
	if message != "" {
		body["message"] = message
	}
	for _, f := range fields {
		for k, v := range f {
			body[k] = v
		}
	}
	return c.JSON(status, body)
}
