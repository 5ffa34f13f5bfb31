package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-essay-api/internal/config"
	"github.com/noah-isme/gema-essay-api/internal/handler"
)

func TestHealthCheckReportsProvider(t *testing.T) {
	cases := []struct {
		cfg      config.Config
		provider string
	}{
		{config.Config{AppName: "essay", AIProvider: "openai"}, "heuristic"},
		{config.Config{AppName: "essay", AIProvider: "openai", OpenAIAPIKey: "sk-test"}, "openai"},
	}

	for _, tc := range cases {
		app := fiber.New()
		app.Get("/health", handler.HealthCheck(tc.cfg))

		status, payload := send(t, app, http.MethodGet, "/health", "")
		require.Equal(t, fiber.StatusOK, status)

		var health handler.HealthResponse
		require.NoError(t, json.Unmarshal(payload.Data, &health))
		require.Equal(t, "ok", health.Status)
		require.Equal(t, tc.provider, health.AIProvider)
	}
}
