package controller

import (
	"bufio"
	"context"

	"portfolio-assistant-be/internal/constant"
	"portfolio-assistant-be/internal/dto"
	"portfolio-assistant-be/internal/pkg/serverutils"
	"portfolio-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

type IAskController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
}

type askController struct {
	askService service.IAskService
}

func NewAskController(askService service.IAskService) IAskController {
	return &askController{
		askService: askService,
	}
}

func (c *askController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ask/v1")
	h.Post("", c.Ask)
}

// Ask relays the pipeline's answer: plain replies as one buffered text/plain
// body, grounded answers as a chunked stream of deltas.
func (c *askController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		// Malformed body maps to a generic 500 in the error middleware;
		// the parse detail stays in the server log.
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	// The stream outlives this handler, so it cannot borrow the request
	// context. Cancel fires when the response finishes or the client hangs
	// up mid-stream, releasing the upstream model connection.
	streamCtx, cancel := context.WithCancel(context.Background())

	result, err := c.askService.Ask(streamCtx, req.Question)
	if err != nil {
		cancel()
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")

	if !result.IsStream() {
		cancel()
		return ctx.SendString(result.Reply)
	}

	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		wrote := false
		for chunk := range result.Stream {
			if chunk.Err != nil {
				// Mid-stream failure: the status line is long gone, so a
				// fallback body is the best we can offer a fresh stream.
				if !wrote {
					w.WriteString(constant.ErrorReply) //nolint:errcheck
				}
				return
			}
			if _, err := w.WriteString(chunk.Content); err != nil {
				return
			}
			wrote = true
			// Flush failing means the client disconnected; the deferred
			// cancel stops the generator from pulling further tokens.
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))
	return nil
}
