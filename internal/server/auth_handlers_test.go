package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cfp/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonRequest(t *testing.T, method, target string, payload interface{}) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestSignup(t *testing.T) {
	t.Parallel()

	newApp := func(t *testing.T) (*Server, *fiber.App) {
		s, _ := newTestServer(t)
		app := fiber.New()
		app.Post("/api/auth/signup", s.Signup)
		return s, app
	}

	t.Run("Creates Pending Account", func(t *testing.T) {
		t.Parallel()
		s, app := newApp(t)

		resp, err := app.Test(jsonRequest(t, "POST", "/api/auth/signup", fiber.Map{
			"nom":      "Diop",
			"prenom":   "Awa",
			"email":    "awa.diop@cfp.test",
			"password": "Formation2026",
			"role":     "apprenant",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

		var body struct {
			Token string      `json:"token"`
			User  models.User `json:"user"`
		}
		decodeBody(t, resp, &body)
		assert.NotEmpty(t, body.Token)
		assert.Equal(t, models.UserStatutEnAttente, body.User.Statut)

		// Signup feeds the admin notification stream.
		var notif models.Notification
		require.NoError(t, s.db.First(&notif).Error)
		assert.Equal(t, models.NotificationTypeNewApprenant, notif.Type)
		assert.Equal(t, body.User.ID, notif.EntiteID)
	})

	t.Run("Formateur Signup Notifies As Formateur", func(t *testing.T) {
		t.Parallel()
		s, app := newApp(t)

		resp, err := app.Test(jsonRequest(t, "POST", "/api/auth/signup", fiber.Map{
			"nom":      "Ndiaye",
			"prenom":   "Cheikh",
			"email":    "cheikh.ndiaye@cfp.test",
			"password": "Formation2026",
			"role":     "formateur",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

		var notif models.Notification
		require.NoError(t, s.db.First(&notif).Error)
		assert.Equal(t, models.NotificationTypeNewFormateur, notif.Type)
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		t.Parallel()
		s, app := newApp(t)
		existing := createTestUser(t, s.db, models.RoleApprenant, models.UserStatutActif)

		resp, err := app.Test(jsonRequest(t, "POST", "/api/auth/signup", fiber.Map{
			"nom":      "Diop",
			"prenom":   "Awa",
			"email":    existing.Email,
			"password": "Formation2026",
			"role":     "apprenant",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	})

	t.Run("Admin Role Refused", func(t *testing.T) {
		t.Parallel()
		_, app := newApp(t)

		resp, err := app.Test(jsonRequest(t, "POST", "/api/auth/signup", fiber.Map{
			"nom":      "Diop",
			"prenom":   "Awa",
			"email":    "admin.diop@cfp.test",
			"password": "Formation2026",
			"role":     "admin",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Weak Password", func(t *testing.T) {
		t.Parallel()
		_, app := newApp(t)

		resp, err := app.Test(jsonRequest(t, "POST", "/api/auth/signup", fiber.Map{
			"nom":      "Diop",
			"prenom":   "Awa",
			"email":    "weak@cfp.test",
			"password": "abc",
			"role":     "apprenant",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	newApp := func(t *testing.T) (*Server, *fiber.App) {
		s, _ := newTestServer(t)
		app := fiber.New()
		app.Post("/api/auth/login", s.Login)
		return s, app
	}

	t.Run("Success", func(t *testing.T) {
		t.Parallel()
		s, app := newApp(t)
		user := createTestUser(t, s.db, models.RoleApprenant, models.UserStatutActif)

		resp, err := app.Test(jsonRequest(t, "POST", "/api/auth/login", fiber.Map{
			"email":    user.Email,
			"password": "Formation2026",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Token string `json:"token"`
		}
		decodeBody(t, resp, &body)
		assert.NotEmpty(t, body.Token)
	})

	t.Run("Pending Account May Login", func(t *testing.T) {
		t.Parallel()
		s, app := newApp(t)
		user := createTestUser(t, s.db, models.RoleFormateur, models.UserStatutEnAttente)

		resp, err := app.Test(jsonRequest(t, "POST", "/api/auth/login", fiber.Map{
			"email":    user.Email,
			"password": "Formation2026",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		t.Parallel()
		s, app := newApp(t)
		user := createTestUser(t, s.db, models.RoleApprenant, models.UserStatutActif)

		resp, err := app.Test(jsonRequest(t, "POST", "/api/auth/login", fiber.Map{
			"email":    user.Email,
			"password": "WrongPassword1",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Unknown Email", func(t *testing.T) {
		t.Parallel()
		_, app := newApp(t)

		resp, err := app.Test(jsonRequest(t, "POST", "/api/auth/login", fiber.Map{
			"email":    "nobody@cfp.test",
			"password": "Formation2026",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Rejected Account Refused", func(t *testing.T) {
		t.Parallel()
		s, app := newApp(t)
		user := createTestUser(t, s.db, models.RoleFormateur, models.UserStatutRejete)

		resp, err := app.Test(jsonRequest(t, "POST", "/api/auth/login", fiber.Map{
			"email":    user.Email,
			"password": "Formation2026",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})
}

func TestAuthRequired(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	user := createTestUser(t, s.db, models.RoleApprenant, models.UserStatutActif)

	app := fiber.New()
	app.Get("/protected", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": c.Locals("userID")})
	})

	t.Run("Valid Token", func(t *testing.T) {
		t.Parallel()
		token, err := s.generateToken(user.ID, user.Role)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			UserID uint `json:"user_id"`
		}
		decodeBody(t, resp, &body)
		assert.Equal(t, user.ID, body.UserID)
	})

	t.Run("Missing Token", func(t *testing.T) {
		t.Parallel()
		resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Garbage Token", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		t.Parallel()
		other, _ := newTestServer(t)
		other.config.JWTSecret = "another-secret"
		token, err := other.generateToken(user.ID, user.Role)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	app := fiber.New()
	app.Post("/api/auth/refresh", s.Refresh)

	t.Run("Issues Fresh Token", func(t *testing.T) {
		t.Parallel()
		user := createTestUser(t, s.db, models.RoleApprenant, models.UserStatutActif)
		token, err := s.generateToken(user.ID, user.Role)
		require.NoError(t, err)

		req := httptest.NewRequest("POST", "/api/auth/refresh", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Token string `json:"token"`
		}
		decodeBody(t, resp, &body)
		assert.NotEmpty(t, body.Token)
	})

	t.Run("Deactivated Account Cannot Refresh", func(t *testing.T) {
		t.Parallel()
		user := createTestUser(t, s.db, models.RoleFormateur, models.UserStatutActif)
		token, err := s.generateToken(user.ID, user.Role)
		require.NoError(t, err)

		require.NoError(t, s.db.Model(&models.User{}).
			Where("id = ?", user.ID).
			Update("statut", models.UserStatutInactif).Error)

		req := httptest.NewRequest("POST", "/api/auth/refresh", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("No Token", func(t *testing.T) {
		t.Parallel()
		resp, err := app.Test(httptest.NewRequest("POST", "/api/auth/refresh", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}
