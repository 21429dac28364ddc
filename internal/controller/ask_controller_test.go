package controller

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"portfolio-assistant-be/internal/pkg/logger"
	"portfolio-assistant-be/internal/pkg/serverutils"
	"portfolio-assistant-be/internal/service"
	"portfolio-assistant-be/pkg/llm"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAskService struct {
	result *service.AskResult
	err    error
}

func (f *fakeAskService) Ask(ctx context.Context, question string) (*service.AskResult, error) {
	return f.result, f.err
}

func newTestApp(svc service.IAskService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(logger.NewNop()))
	api := app.Group("/api")
	NewAskController(svc).RegisterRoutes(api)
	return app
}

func TestAskReturns400ForMissingQuestion(t *testing.T) {
	app := newTestApp(&fakeAskService{})

	req := httptest.NewRequest("POST", "/api/ask/v1", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAskReturns405ForUnsupportedMethod(t *testing.T) {
	app := newTestApp(&fakeAskService{})

	req := httptest.NewRequest("GET", "/api/ask/v1", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusMethodNotAllowed, resp.StatusCode)
}

func TestAskReturns500ForMalformedBody(t *testing.T) {
	app := newTestApp(&fakeAskService{})

	req := httptest.NewRequest("POST", "/api/ask/v1", strings.NewReader(`{"question": `))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(body), "unexpected", "parser detail leaked to the client")
}

func TestAskRelaysPlainReply(t *testing.T) {
	app := newTestApp(&fakeAskService{result: &service.AskResult{Reply: "Hi! What would you like to know?"}})

	req := httptest.NewRequest("POST", "/api/ask/v1", strings.NewReader(`{"question":"hello"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "Hi! What would you like to know?", string(body))
}

func TestAskRelaysStreamedReply(t *testing.T) {
	stream := make(chan llm.Chunk, 3)
	for _, c := range []string{"Hel", "lo", " world"} {
		stream <- llm.Chunk{Content: c}
	}
	close(stream)

	app := newTestApp(&fakeAskService{result: &service.AskResult{Stream: stream}})

	req := httptest.NewRequest("POST", "/api/ask/v1", strings.NewReader(`{"question":"what have you built?"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "Hello world", string(body))
}
