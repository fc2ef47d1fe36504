package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPublication(t *testing.T) {
	before := testutil.ToFloat64(publicationsTotal.WithLabelValues("twitter", "PUBLISHED"))
	RecordPublication("twitter", "PUBLISHED")
	assert.Equal(t, before+1, testutil.ToFloat64(publicationsTotal.WithLabelValues("twitter", "PUBLISHED")))
}

func TestRecordTokenRefresh(t *testing.T) {
	before := testutil.ToFloat64(tokenRefreshTotal.WithLabelValues("linkedin", "error"))
	RecordTokenRefresh("linkedin", errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(tokenRefreshTotal.WithLabelValues("linkedin", "error")))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/api/posts/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/posts/12", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	assert.Equal(t, float64(1), testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/posts/:id", "204")))
}
