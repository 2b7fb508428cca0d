// FILE: internal/controller/wizard_controller.go
// Controller for the plan and execute wizards
package controller

import (
	"pm-assistant-be/internal/dto"
	"pm-assistant-be/internal/pkg/serverutils"
	"pm-assistant-be/internal/service"
	"pm-assistant-be/pkg/store"

	"github.com/gofiber/fiber/v2"
)

type WizardController interface {
	RegisterRoutes(api fiber.Router)
}

type wizardController struct {
	wizardService service.IWizardService
}

func NewWizardController(wizardService service.IWizardService) WizardController {
	return &wizardController{
		wizardService: wizardService,
	}
}

func (c *wizardController) RegisterRoutes(api fiber.Router) {
	plan := api.Group("/plan")
	plan.Post("/requirements", c.submitRequirements(store.StagePlan))

	execute := api.Group("/execute")
	execute.Post("/requirements", c.submitRequirements(store.StageExecute))
	execute.Post("/details", c.SubmitDetails)
	execute.Post("/questions/:index", c.AskNextQuestion)
}

// submitRequirements sends the project overview for a recommendation
// @Summary Submit project overview
// @Tags Wizard
// @Accept json
// @Produce json
// @Param body body dto.SubmitRequirementsRequest true "Project overview"
// @Success 200 {object} dto.SubmitRequirementsResponse
// @Router /api/plan/requirements [post]
// @Router /api/execute/requirements [post]
func (c *wizardController) submitRequirements(stage store.Stage) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		var req dto.SubmitRequirementsRequest
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := serverutils.ValidateRequest(req); err != nil {
			return err
		}

		res, err := c.wizardService.SubmitRequirements(ctx.UserContext(), serverutils.SessionID(ctx), stage, req.Requirements)
		if err != nil {
			return writeServiceError(ctx, err)
		}
		return ctx.JSON(serverutils.SuccessResponse("Requirements submitted", res))
	}
}

// SubmitDetails sends period and budget for detailed advice
// @Summary Submit period and budget
// @Tags Wizard
// @Accept json
// @Produce json
// @Param body body dto.SubmitDetailsRequest true "Period and budget"
// @Success 200 {object} dto.SessionView
// @Router /api/execute/details [post]
func (c *wizardController) SubmitDetails(ctx *fiber.Ctx) error {
	var req dto.SubmitDetailsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	view, err := c.wizardService.SubmitDetails(ctx.UserContext(), serverutils.SessionID(ctx), req.Period, req.Budget)
	if err != nil {
		return writeServiceError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Advice generated", view))
}

func (c *wizardController) AskNextQuestion(ctx *fiber.Ctx) error {
	index, err := ctx.ParamsInt("index")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid question index")
	}

	res, err := c.wizardService.AskNextQuestion(ctx.UserContext(), serverutils.SessionID(ctx), index)
	if err != nil {
		return writeServiceError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Question answered", res))
}
