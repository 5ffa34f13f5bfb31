package middleware_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-essay-api/internal/middleware"
)

func TestRateLimitIsPerUser(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", c.Get("X-User"))
		return c.Next()
	})
	app.Post("/analysis", middleware.RateLimit("analysis", 2, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	call := func(user string) *fiberResponse {
		req := httptest.NewRequest("POST", "/analysis", nil)
		req.Header.Set("X-User", user)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()

		out := &fiberResponse{status: resp.StatusCode}
		if resp.StatusCode == fiber.StatusTooManyRequests {
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&out.body))
		}
		return out
	}

	require.Equal(t, fiber.StatusOK, call("1").status)
	require.Equal(t, fiber.StatusOK, call("1").status)

	limited := call("1")
	require.Equal(t, fiber.StatusTooManyRequests, limited.status)
	require.False(t, limited.body.Success)
	require.NotEmpty(t, limited.body.Message)

	require.Equal(t, fiber.StatusOK, call("2").status)
}

type fiberResponse struct {
	status int
	body   struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
}
