package server

import (
	"cfp/internal/models"
	"cfp/internal/service"

	"github.com/gofiber/fiber/v2"
)

type formationRequest struct {
	Titre       string  `json:"titre"`
	Description string  `json:"description"`
	DateDebut   string  `json:"date_debut"`
	DateFin     string  `json:"date_fin"`
	Prix        float64 `json:"prix"`
	Places      int     `json:"places"`
	FormateurID *uint   `json:"formateur_id"`
}

func (s *Server) formationInput(c *fiber.Ctx) (service.FormationInput, error) {
	var req formationRequest
	if err := c.BodyParser(&req); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Corps de requête invalide"))
		return service.FormationInput{}, errResponseWritten
	}

	in := service.FormationInput{
		Titre:       req.Titre,
		Description: req.Description,
		Prix:        req.Prix,
		Places:      req.Places,
		FormateurID: req.FormateurID,
	}

	if req.DateDebut != "" {
		debut, err := parseDate(req.DateDebut)
		if err != nil {
			_ = models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Date de début invalide (format attendu: AAAA-MM-JJ)"))
			return service.FormationInput{}, errResponseWritten
		}
		in.DateDebut = debut
	}
	if req.DateFin != "" {
		fin, err := parseDate(req.DateFin)
		if err != nil {
			_ = models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Date de fin invalide (format attendu: AAAA-MM-JJ)"))
			return service.FormationInput{}, errResponseWritten
		}
		in.DateFin = fin
	}

	return in, nil
}

// GetFormations handles GET /api/formations
// @Summary Browse the catalog
// @Tags formations
// @Produce json
// @Success 200 {array} models.Formation
// @Router /formations [get]
func (s *Server) GetFormations(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	formations, err := s.formationService.List(c.UserContext(), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(formations)
}

// GetFormation handles GET /api/formations/:id
func (s *Server) GetFormation(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	formation, err := s.formationService.Get(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(formation)
}

// CreateFormation handles POST /api/formations
// @Summary Create a formation
// @Tags formations
// @Accept json
// @Produce json
// @Success 201 {object} models.Formation
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /formations [post]
func (s *Server) CreateFormation(c *fiber.Ctx) error {
	in, err := s.formationInput(c)
	if err != nil {
		return nil
	}

	formation, err := s.formationService.Create(c.UserContext(), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(formation)
}

// UpdateFormation handles PUT /api/formations/:id
func (s *Server) UpdateFormation(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	in, err := s.formationInput(c)
	if err != nil {
		return nil
	}

	formation, err := s.formationService.Update(c.UserContext(), id, in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(formation)
}

// DeleteFormation handles DELETE /api/formations/:id
func (s *Server) DeleteFormation(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.formationService.Delete(c.UserContext(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Formation supprimée"})
}

// GetAteliers handles GET /api/formations/:id/ateliers
func (s *Server) GetAteliers(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ateliers, err := s.formationService.ListAteliers(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(ateliers)
}

// CreateAtelier handles POST /api/formations/:id/ateliers
func (s *Server) CreateAtelier(c *fiber.Ctx) error {
	formationID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Titre       string `json:"titre"`
		Description string `json:"description"`
		Date        string `json:"date"`
		FormateurID *uint  `json:"formateur_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Corps de requête invalide"))
	}

	atelier := &models.Atelier{
		Titre:       req.Titre,
		Description: req.Description,
		FormationID: &formationID,
		FormateurID: req.FormateurID,
	}
	if req.Date != "" {
		date, err := parseDate(req.Date)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Date invalide (format attendu: AAAA-MM-JJ)"))
		}
		atelier.Date = date
	}

	if err := s.formationService.CreateAtelier(c.UserContext(), atelier); err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(atelier)
}

// Enroll handles POST /api/formations/:id/inscriptions. The caller
// enrolls themselves; admins decide the enrollment afterwards.
// @Summary Enroll into a formation
// @Tags formations
// @Produce json
// @Param id path int true "Formation ID"
// @Success 201 {object} models.Inscription
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /formations/{id}/inscriptions [post]
func (s *Server) Enroll(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	formationID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	inscription, err := s.formationService.Enroll(c.UserContext(), userID, formationID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inscription)
}

// GetInscriptions handles GET /api/formations/:id/inscriptions. Admins
// see the formation's roster, others their own enrollments.
func (s *Server) GetInscriptions(c *fiber.Ctx) error {
	viewer, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	formationID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	inscriptions, err := s.formationService.ListInscriptions(c.UserContext(), viewer, formationID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(inscriptions)
}

// GetMyInscriptions handles GET /api/inscriptions/me
func (s *Server) GetMyInscriptions(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	inscriptions, err := s.inscriptionRepo.ListByUser(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(inscriptions)
}

// DecideInscription handles PUT /api/inscriptions/:id/status
func (s *Server) DecideInscription(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Statut models.InscriptionStatut `json:"statut"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Corps de requête invalide"))
	}

	if err := s.formationService.DecideInscription(c.UserContext(), id, req.Statut); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Inscription mise à jour"})
}

// RecordPaiement handles POST /api/inscriptions/:id/paiements
func (s *Server) RecordPaiement(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Montant float64 `json:"montant"`
		Methode string  `json:"methode"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Corps de requête invalide"))
	}

	paiement, err := s.formationService.RecordPaiement(c.UserContext(), id, req.Montant, req.Methode)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(paiement)
}

// GetPaiements handles GET /api/inscriptions/:id/paiements
func (s *Server) GetPaiements(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	paiements, err := s.formationService.ListPaiements(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(paiements)
}
