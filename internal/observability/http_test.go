package observability_test

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-essay-api/internal/observability"
)

func TestMetricsHandlerExposesEssayCollectors(t *testing.T) {
	observability.RegisterMetrics()
	observability.VersionsCreated().WithLabelValues("manual").Inc()
	observability.AnalysisOutcomes().WithLabelValues("fallback").Inc()

	app := fiber.New()
	app.Get("/metrics", observability.MetricsHandler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `kind="manual"`)
	require.Contains(t, string(body), `tier="fallback"`)
}
