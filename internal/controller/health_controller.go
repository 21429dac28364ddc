package controller

import (
	"portfolio-assistant-be/internal/pkg/serverutils"
	"portfolio-assistant-be/internal/repository/contract"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Check(ctx *fiber.Ctx) error
}

type healthController struct {
	chunkRepo contract.KnowledgeChunkRepository
}

func NewHealthController(chunkRepo contract.KnowledgeChunkRepository) IHealthController {
	return &healthController{chunkRepo: chunkRepo}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/health/v1")
	h.Get("", c.Check)
}

func (c *healthController) Check(ctx *fiber.Ctx) error {
	count, err := c.chunkRepo.Count(ctx.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "datastore unreachable")
	}

	return ctx.JSON(serverutils.SuccessResponse("ok", fiber.Map{
		"chunks": count,
	}))
}
