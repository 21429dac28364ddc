package controller

import (
	"portfolio-assistant-be/internal/dto"
	"portfolio-assistant-be/internal/pkg/serverutils"
	"portfolio-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IIngestController interface {
	RegisterRoutes(r fiber.Router)
	IngestChunk(ctx *fiber.Ctx) error
}

type ingestController struct {
	ingestService service.IIngestService
}

func NewIngestController(ingestService service.IIngestService) IIngestController {
	return &ingestController{
		ingestService: ingestService,
	}
}

func (c *ingestController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ingest/v1")
	h.Post("chunk", c.IngestChunk)
}

// IngestChunk queues one content item for embedding. The embedding itself
// happens on the consumer, so this returns as soon as the message is on the
// bus.
func (c *ingestController) IngestChunk(ctx *fiber.Ctx) error {
	var req dto.IngestChunkRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.ingestService.Publish(ctx.Context(), &req); err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Chunk queued for embedding", nil))
}
