package server

import (
	"net/http/httptest"
	"testing"

	"cfp/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationEndpoints(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	app := fiber.New()
	app.Get("/api/admin/notifications", s.GetNotifications)
	app.Get("/api/admin/notifications/unread-count", s.GetNotificationUnreadCount)
	app.Put("/api/admin/notifications/read-all", s.MarkAllNotificationsRead)
	app.Put("/api/admin/notifications/:id/read", s.MarkNotificationRead)

	seed := func(t *testing.T, isRead bool) *models.Notification {
		t.Helper()
		notif := &models.Notification{
			Type:       models.NotificationTypeCongeDemande,
			Message:    "Nouvelle demande de congé de Moussa Fall",
			EntiteType: models.EntiteTypeConge,
			EntiteID:   1,
			IsRead:     isRead,
		}
		require.NoError(t, s.db.Create(notif).Error)
		return notif
	}

	t.Run("Unread Listed First", func(t *testing.T) {
		read := seed(t, true)
		unread := seed(t, false)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/admin/notifications", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var notifs []models.Notification
		decodeBody(t, resp, &notifs)
		require.GreaterOrEqual(t, len(notifs), 2)
		assert.Equal(t, unread.ID, notifs[0].ID)
		assert.Equal(t, read.ID, notifs[len(notifs)-1].ID)
	})

	t.Run("Mark One Read", func(t *testing.T) {
		notif := seed(t, false)

		resp, err := app.Test(httptest.NewRequest("PUT",
			"/api/admin/notifications/"+itoa(notif.ID)+"/read", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var updated models.Notification
		require.NoError(t, s.db.First(&updated, notif.ID).Error)
		assert.True(t, updated.IsRead)
	})

	t.Run("Mark Read Twice Stays Read", func(t *testing.T) {
		notif := seed(t, false)

		for i := 0; i < 2; i++ {
			resp, err := app.Test(httptest.NewRequest("PUT",
				"/api/admin/notifications/"+itoa(notif.ID)+"/read", nil))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		}

		var updated models.Notification
		require.NoError(t, s.db.First(&updated, notif.ID).Error)
		assert.True(t, updated.IsRead)
	})

	t.Run("Unknown Notification", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("PUT",
			"/api/admin/notifications/99999/read", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("Mark All Read", func(t *testing.T) {
		seed(t, false)
		seed(t, false)

		resp, err := app.Test(httptest.NewRequest("PUT",
			"/api/admin/notifications/read-all", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		resp, err = app.Test(httptest.NewRequest("GET",
			"/api/admin/notifications/unread-count", nil))
		require.NoError(t, err)

		var body struct {
			Unread int64 `json:"unread"`
		}
		decodeBody(t, resp, &body)
		assert.Zero(t, body.Unread)
	})
}
