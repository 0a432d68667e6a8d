package server

import (
	"net/http/httptest"
	"testing"

	"cfp/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormationEndpoints(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	app := fiber.New()
	app.Get("/api/formations", s.GetFormations)
	app.Get("/api/formations/:id", s.GetFormation)
	app.Post("/api/formations", s.CreateFormation)
	app.Put("/api/formations/:id", s.UpdateFormation)
	app.Delete("/api/formations/:id", s.DeleteFormation)
	app.Get("/api/formations/:id/ateliers", s.GetAteliers)
	app.Post("/api/formations/:id/ateliers", s.CreateAtelier)

	t.Run("Create And Fetch", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, "POST", "/api/formations", fiber.Map{
			"titre":       "Couture avancée",
			"description": "Techniques de confection",
			"date_debut":  "2026-10-01",
			"date_fin":    "2026-12-18",
			"prix":        75000,
			"places":      20,
		}))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)

		var created models.Formation
		decodeBody(t, resp, &created)
		assert.Equal(t, "Couture avancée", created.Titre)

		resp, err = app.Test(httptest.NewRequest("GET",
			"/api/formations/"+itoa(created.ID), nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("Titre Required", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, "POST", "/api/formations", fiber.Map{
			"prix": 50000,
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Update", func(t *testing.T) {
		formation := &models.Formation{Titre: "Informatique", Places: 10}
		require.NoError(t, s.db.Create(formation).Error)

		resp, err := app.Test(jsonRequest(t, "PUT",
			"/api/formations/"+itoa(formation.ID),
			fiber.Map{"titre": "Informatique bureautique", "places": 15}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var updated models.Formation
		require.NoError(t, s.db.First(&updated, formation.ID).Error)
		assert.Equal(t, "Informatique bureautique", updated.Titre)
		assert.Equal(t, 15, updated.Places)
	})

	t.Run("Delete", func(t *testing.T) {
		formation := &models.Formation{Titre: "Éphémère"}
		require.NoError(t, s.db.Create(formation).Error)

		resp, err := app.Test(httptest.NewRequest("DELETE",
			"/api/formations/"+itoa(formation.ID), nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		resp, err = app.Test(httptest.NewRequest("GET",
			"/api/formations/"+itoa(formation.ID), nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("Ateliers", func(t *testing.T) {
		formation := &models.Formation{Titre: "Restauration"}
		require.NoError(t, s.db.Create(formation).Error)

		resp, err := app.Test(jsonRequest(t, "POST",
			"/api/formations/"+itoa(formation.ID)+"/ateliers",
			fiber.Map{"titre": "Hygiène en cuisine", "date": "2026-10-05"}))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)

		resp, err = app.Test(httptest.NewRequest("GET",
			"/api/formations/"+itoa(formation.ID)+"/ateliers", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var ateliers []models.Atelier
		decodeBody(t, resp, &ateliers)
		require.Len(t, ateliers, 1)
		assert.Equal(t, "Hygiène en cuisine", ateliers[0].Titre)
	})
}

func TestEnrollmentEndpoints(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	apprenant := createTestUser(t, s.db, models.RoleApprenant, models.UserStatutActif)
	admin := createTestUser(t, s.db, models.RoleAdmin, models.UserStatutActif)

	app := fiber.New()
	app.Post("/api/formations/:id/inscriptions", asUser(apprenant.ID, s.Enroll))
	app.Get("/api/inscriptions/me", asUser(apprenant.ID, s.GetMyInscriptions))
	app.Put("/api/inscriptions/:id/status", asUser(admin.ID, s.DecideInscription))
	app.Post("/api/inscriptions/:id/paiements", asUser(admin.ID, s.RecordPaiement))
	app.Get("/api/inscriptions/:id/paiements", asUser(admin.ID, s.GetPaiements))

	newFormation := func(t *testing.T, places int) *models.Formation {
		t.Helper()
		formation := &models.Formation{Titre: "Mécanique auto", Prix: 60000, Places: places}
		require.NoError(t, s.db.Create(formation).Error)
		return formation
	}

	t.Run("Enroll Decide Pay", func(t *testing.T) {
		formation := newFormation(t, 10)

		resp, err := app.Test(httptest.NewRequest("POST",
			"/api/formations/"+itoa(formation.ID)+"/inscriptions", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)

		var inscription models.Inscription
		decodeBody(t, resp, &inscription)
		assert.Equal(t, models.InscriptionStatutEnAttente, inscription.Statut)

		resp, err = app.Test(httptest.NewRequest("GET", "/api/inscriptions/me", nil))
		require.NoError(t, err)
		var mine []models.Inscription
		decodeBody(t, resp, &mine)
		require.Len(t, mine, 1)

		resp, err = app.Test(jsonRequest(t, "PUT",
			"/api/inscriptions/"+itoa(inscription.ID)+"/status",
			fiber.Map{"statut": "valide"}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		resp, err = app.Test(jsonRequest(t, "POST",
			"/api/inscriptions/"+itoa(inscription.ID)+"/paiements",
			fiber.Map{"montant": 30000, "methode": "wave"}))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)

		var paiement models.Paiement
		decodeBody(t, resp, &paiement)
		assert.Equal(t, models.PaiementStatutPaye, paiement.Statut)
		assert.NotNil(t, paiement.DatePaiement)

		resp, err = app.Test(httptest.NewRequest("GET",
			"/api/inscriptions/"+itoa(inscription.ID)+"/paiements", nil))
		require.NoError(t, err)
		var paiements []models.Paiement
		decodeBody(t, resp, &paiements)
		require.Len(t, paiements, 1)
	})

	t.Run("Full Formation Refuses Enrollment", func(t *testing.T) {
		formation := newFormation(t, 1)
		other := createTestUser(t, s.db, models.RoleApprenant, models.UserStatutActif)
		require.NoError(t, s.db.Create(&models.Inscription{
			UserID:      other.ID,
			FormationID: formation.ID,
			Statut:      models.InscriptionStatutValide,
		}).Error)

		resp, err := app.Test(httptest.NewRequest("POST",
			"/api/formations/"+itoa(formation.ID)+"/inscriptions", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Zero Montant Refused", func(t *testing.T) {
		formation := newFormation(t, 5)
		inscription := &models.Inscription{
			UserID:      admin.ID,
			FormationID: formation.ID,
			Statut:      models.InscriptionStatutValide,
		}
		require.NoError(t, s.db.Create(inscription).Error)

		resp, err := app.Test(jsonRequest(t, "POST",
			"/api/inscriptions/"+itoa(inscription.ID)+"/paiements",
			fiber.Map{"montant": 0, "methode": "especes"}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}
