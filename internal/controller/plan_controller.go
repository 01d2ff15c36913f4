// Controller for event plan endpoints
package controller

import (
	"errors"

	"ai-eventplanner-be/internal/dto"
	"ai-eventplanner-be/internal/pkg/serverutils"
	"ai-eventplanner-be/internal/service"
	"ai-eventplanner-be/pkg/geocode"
	"ai-eventplanner-be/pkg/keypool"
	"ai-eventplanner-be/pkg/planner"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type IPlanController interface {
	RegisterRoutes(api fiber.Router)
}

type planController struct {
	planService service.IEventPlanService
	validate    *validator.Validate
}

func NewPlanController(planService service.IEventPlanService) IPlanController {
	return &planController{
		planService: planService,
		validate:    validator.New(),
	}
}

func (c *planController) RegisterRoutes(api fiber.Router) {
	v1 := api.Group("/v1")
	v1.Get("/health", c.Health)
	v1.Post("/plans/generate", c.GeneratePlan)
}

// Health reports process liveness.
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} serverutils.APIResponse
// @Router /api/v1/health [get]
func (c *planController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("ok", nil))
}

// GeneratePlan runs vendor matching and assembles the event plan
// @Summary Generate an event plan
// @Description Plans vendor categories for the event, collects and ranks local vendors, and assembles timeline/budget/checklist
// @Tags Plans
// @Accept json
// @Produce json
// @Success 200 {object} dto.GeneratePlanResponse
// @Router /api/v1/plans/generate [post]
func (c *planController) GeneratePlan(ctx *fiber.Ctx) error {
	var req dto.GeneratePlanRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := c.validate.Struct(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	plan, err := c.planService.GeneratePlan(ctx.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, geocode.ErrLocationUnresolvable):
			return ctx.Status(fiber.StatusUnprocessableEntity).JSON(serverutils.ErrorResponse(422, "Location could not be resolved"))
		case errors.Is(err, planner.ErrNoCategories), errors.Is(err, planner.ErrMalformedPlan):
			return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.ErrorResponse(502, "Planning model returned no usable plan"))
		case errors.Is(err, keypool.ErrAllKeysExhausted):
			return ctx.Status(fiber.StatusTooManyRequests).JSON(serverutils.ErrorResponse(429, "All API keys are rate limited, try again later"))
		default:
			return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
		}
	}

	return ctx.JSON(serverutils.SuccessResponse("Plan generated", plan))
}
