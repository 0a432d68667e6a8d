package server

import (
	"time"

	"cfp/internal/models"
	"cfp/internal/service"

	"github.com/gofiber/fiber/v2"
)

const dateLayout = "2006-01-02"

func parseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, value)
}

// SubmitConge handles POST /api/conges-permissions/conges
// @Summary Submit a leave request
// @Tags demandes
// @Accept json
// @Produce json
// @Param request body object{type_conge=string,date_debut=string,date_fin=string,justification=string,contact_urgence=string,document=string} true "Leave request"
// @Success 201 {object} models.Conge
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /conges-permissions/conges [post]
func (s *Server) SubmitConge(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		TypeConge      string `json:"type_conge"`
		DateDebut      string `json:"date_debut"`
		DateFin        string `json:"date_fin"`
		Justification  string `json:"justification"`
		ContactUrgence string `json:"contact_urgence"`
		Document       string `json:"document"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Corps de requête invalide"))
	}

	debut, err := parseDate(req.DateDebut)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Date de début invalide (format attendu: AAAA-MM-JJ)"))
	}
	fin, err := parseDate(req.DateFin)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Date de fin invalide (format attendu: AAAA-MM-JJ)"))
	}

	conge, err := s.demandeService.SubmitConge(c.UserContext(), service.SubmitCongeInput{
		UserID:         userID,
		TypeConge:      req.TypeConge,
		DateDebut:      debut,
		DateFin:        fin,
		Justification:  req.Justification,
		ContactUrgence: req.ContactUrgence,
		Document:       req.Document,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(conge)
}

// GetConges handles GET /api/conges-permissions/conges. Admins see every request and may
// filter by statut; formateurs and apprenants see only their own.
// @Summary List leave requests
// @Tags demandes
// @Produce json
// @Param statut query string false "Statut filter (admin only)"
// @Success 200 {array} models.Conge
// @Security BearerAuth
// @Router /conges-permissions/conges [get]
func (s *Server) GetConges(c *fiber.Ctx) error {
	viewer, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	p := parsePagination(c, 50)

	conges, err := s.demandeService.ListConges(c.UserContext(), viewer,
		models.DemandeStatut(c.Query("statut")), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(conges)
}

// decisionInput parses the shared decision body for conge and
// permission rulings, stamping the deciding admin's name.
func (s *Server) decisionInput(c *fiber.Ctx) (service.DecisionInput, error) {
	var req struct {
		Statut     models.DemandeStatut `json:"statut"`
		MotifRefus string               `json:"motif_refus"`
	}
	if err := c.BodyParser(&req); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Corps de requête invalide"))
		return service.DecisionInput{}, errResponseWritten
	}

	admin, err := s.currentUser(c)
	if err != nil {
		return service.DecisionInput{}, errResponseWritten
	}

	return service.DecisionInput{
		Statut:         req.Statut,
		ValidateurName: admin.FullName(),
		MotifRefus:     req.MotifRefus,
	}, nil
}

// DecideConge handles PUT /api/conges-permissions/conges/:id/status
// @Summary Decide a leave request
// @Tags demandes
// @Accept json
// @Produce json
// @Param id path int true "Conge ID"
// @Param request body object{statut=string,motif_refus=string} true "Decision"
// @Success 200 {object} models.Conge
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /conges-permissions/conges/{id}/status [put]
func (s *Server) DecideConge(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	in, err := s.decisionInput(c)
	if err != nil {
		return nil
	}

	conge, err := s.demandeService.DecideConge(c.UserContext(), id, in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(conge)
}

// SubmitPermission handles POST /api/conges-permissions/permissions
// @Summary Submit a permission request
// @Tags demandes
// @Accept json
// @Produce json
// @Param request body object{date_permission=string,heure_debut=string,heure_fin=string,justification=string} true "Permission request"
// @Success 201 {object} models.Permission
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /conges-permissions/permissions [post]
func (s *Server) SubmitPermission(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		DatePermission string `json:"date_permission"`
		HeureDebut     string `json:"heure_debut"`
		HeureFin       string `json:"heure_fin"`
		Justification  string `json:"justification"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Corps de requête invalide"))
	}

	date, err := parseDate(req.DatePermission)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Date de permission invalide (format attendu: AAAA-MM-JJ)"))
	}

	permission, err := s.demandeService.SubmitPermission(c.UserContext(), service.SubmitPermissionInput{
		UserID:         userID,
		DatePermission: date,
		HeureDebut:     req.HeureDebut,
		HeureFin:       req.HeureFin,
		Justification:  req.Justification,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(permission)
}

// GetPermissions handles GET /api/conges-permissions/permissions
// @Summary List permission requests
// @Tags demandes
// @Produce json
// @Param statut query string false "Statut filter (admin only)"
// @Success 200 {array} models.Permission
// @Security BearerAuth
// @Router /conges-permissions/permissions [get]
func (s *Server) GetPermissions(c *fiber.Ctx) error {
	viewer, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	p := parsePagination(c, 50)

	permissions, err := s.demandeService.ListPermissions(c.UserContext(), viewer,
		models.DemandeStatut(c.Query("statut")), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(permissions)
}

// DecidePermission handles PUT /api/conges-permissions/permissions/:id/status
// @Summary Decide a permission request
// @Tags demandes
// @Accept json
// @Produce json
// @Param id path int true "Permission ID"
// @Param request body object{statut=string,motif_refus=string} true "Decision"
// @Success 200 {object} models.Permission
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /conges-permissions/permissions/{id}/status [put]
func (s *Server) DecidePermission(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	in, err := s.decisionInput(c)
	if err != nil {
		return nil
	}

	permission, err := s.demandeService.DecidePermission(c.UserContext(), id, in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(permission)
}
