package server

import (
	"net/http/httptest"
	"testing"

	"cfp/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRequired(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	admin := createTestUser(t, s.db, models.RoleAdmin, models.UserStatutActif)
	formateur := createTestUser(t, s.db, models.RoleFormateur, models.UserStatutValide)

	app := fiber.New()
	app.Get("/admin-only/:userId", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("userId")
		if err != nil {
			return err
		}
		c.Locals("userID", uint(id))
		return c.Next()
	}, s.AdminRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	t.Run("Admin Passes", func(t *testing.T) {
		t.Parallel()
		resp, err := app.Test(httptest.NewRequest("GET", "/admin-only/"+itoa(admin.ID), nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("Formateur Refused", func(t *testing.T) {
		t.Parallel()
		resp, err := app.Test(httptest.NewRequest("GET", "/admin-only/"+itoa(formateur.ID), nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	app := fiber.New()
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	t.Run("Liveness", func(t *testing.T) {
		t.Parallel()
		resp, err := app.Test(httptest.NewRequest("GET", "/health/live", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("Readiness Without Redis", func(t *testing.T) {
		t.Parallel()
		resp, err := app.Test(httptest.NewRequest("GET", "/health/ready", nil))
		require.NoError(t, err)
		// Redis is optional; sqlite answers the database check.
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Status string `json:"status"`
			Checks struct {
				Database string `json:"database"`
				Redis    string `json:"redis"`
			} `json:"checks"`
		}
		decodeBody(t, resp, &body)
		assert.Equal(t, "healthy", body.Checks.Database)
		assert.Equal(t, "unavailable", body.Checks.Redis)
	})
}
