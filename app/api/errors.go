package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

func NewErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if apiError, ok := err.(Error); ok {
			return c.Status(apiError.Code).JSON(apiError)
		}
		if valError, ok := err.(ValidationError); ok {
			return c.Status(valError.Status).JSON(valError)
		}

		code := fiber.StatusInternalServerError
		if fiberErr, ok := err.(*fiber.Error); ok {
			code = fiberErr.Code
		}
		apiError := NewError(code, err.Error())
		logger.Error().Int("code", apiError.Code).Str("message", apiError.Message).Msg("request failed")
		return c.Status(apiError.Code).JSON(apiError)
	}
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

func (e Error) Error() string {
	return e.Message
}

func NewError(code int, err string) Error {
	return Error{
		Code:    code,
		Message: err,
	}
}

type ValidationError struct {
	Status int               `json:"status"`
	Errors map[string]string `json:"errors"`
}

func (e ValidationError) Error() string {
	return "validation failed"
}

func NewValidationError(errors map[string]string) ValidationError {
	return ValidationError{
		Status: fiber.StatusUnprocessableEntity,
		Errors: errors,
	}
}

func ErrBadRequest() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: "invalid JSON request",
	}
}

func ErrMalformedTurn() Error {
	return Error{
		Code:    fiber.StatusUnprocessableEntity,
		Message: "last message must be a non-empty user message",
	}
}
