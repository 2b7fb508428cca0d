package controller

import (
	"errors"

	"pm-assistant-be/internal/pkg/serverutils"
	"pm-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidStage),
		errors.Is(err, service.ErrEmptyInput),
		errors.Is(err, service.ErrQuestionOutOfRange):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrStageAlreadySelected),
		errors.Is(err, service.ErrWrongStage),
		errors.Is(err, service.ErrWrongStep):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrLLMUnavailable):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

// writeServiceError maps service errors onto HTTP status codes.
func writeServiceError(ctx *fiber.Ctx, err error) error {
	code := statusFor(err)
	return ctx.Status(code).JSON(serverutils.ErrorResponse(code, err.Error()))
}
