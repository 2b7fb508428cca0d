// FILE: internal/controller/session_controller.go
// Controller for the landing form: current state, stage choice and reset
package controller

import (
	"pm-assistant-be/internal/dto"
	"pm-assistant-be/internal/pkg/serverutils"
	"pm-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SessionController interface {
	RegisterRoutes(api fiber.Router)
}

type sessionController struct {
	wizardService service.IWizardService
}

func NewSessionController(wizardService service.IWizardService) SessionController {
	return &sessionController{
		wizardService: wizardService,
	}
}

func (c *sessionController) RegisterRoutes(api fiber.Router) {
	r := api.Group("/session")
	r.Get("", c.GetState)
	r.Post("/stage", c.SelectStage)
	r.Post("/reset", c.Reset)
}

// GetState returns what the page should render for this visitor
// @Summary Get current wizard state
// @Tags Session
// @Produce json
// @Success 200 {object} dto.SessionView
// @Router /api/session [get]
func (c *sessionController) GetState(ctx *fiber.Ctx) error {
	view, err := c.wizardService.GetState(ctx.UserContext(), serverutils.SessionID(ctx))
	if err != nil {
		return writeServiceError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Session state", view))
}

// SelectStage fixes the flow for this session
// @Summary Select consultation stage
// @Tags Session
// @Accept json
// @Produce json
// @Param body body dto.SelectStageRequest true "plan, execute or in_progress"
// @Success 200 {object} dto.SessionView
// @Router /api/session/stage [post]
func (c *sessionController) SelectStage(ctx *fiber.Ctx) error {
	var req dto.SelectStageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	view, err := c.wizardService.SelectStage(ctx.UserContext(), serverutils.SessionID(ctx), req.Stage)
	if err != nil {
		return writeServiceError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Stage selected", view))
}

func (c *sessionController) Reset(ctx *fiber.Ctx) error {
	view, err := c.wizardService.Reset(ctx.UserContext(), serverutils.SessionID(ctx))
	if err != nil {
		return writeServiceError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Session reset", view))
}
