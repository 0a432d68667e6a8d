package server

import (
	"cfp/internal/models"
	"cfp/internal/repository"
	"cfp/internal/validation"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// GetUsers handles GET /api/admin/users
// @Summary List accounts
// @Description List accounts, optionally filtered by role and statut
// @Tags admin
// @Produce json
// @Param role query string false "Role filter"
// @Param statut query string false "Statut filter"
// @Success 200 {array} models.User
// @Security BearerAuth
// @Router /admin/users [get]
func (s *Server) GetUsers(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	filter := repository.UserFilter{
		Role:   models.Role(c.Query("role")),
		Statut: models.UserStatut(c.Query("statut")),
	}

	users, err := s.userRepo.List(c.UserContext(), filter, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(users)
}

// GetPendingUsers handles GET /api/admin/users/pending
// @Summary List accounts awaiting validation
// @Tags admin
// @Produce json
// @Success 200 {array} models.User
// @Security BearerAuth
// @Router /admin/users/pending [get]
func (s *Server) GetPendingUsers(c *fiber.Ctx) error {
	users, err := s.userRepo.ListPending(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(users)
}

// CreateUser handles POST /api/admin/users. Admin-created accounts
// bypass the validation workflow and start actif.
// @Summary Create an account
// @Tags admin
// @Accept json
// @Produce json
// @Param request body object{nom=string,prenom=string,email=string,password=string,role=string,telephone=string} true "Account"
// @Success 201 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/users [post]
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var req struct {
		Nom       string      `json:"nom"`
		Prenom    string      `json:"prenom"`
		Email     string      `json:"email"`
		Password  string      `json:"password"`
		Role      models.Role `json:"role"`
		Telephone string      `json:"telephone"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Corps de requête invalide"))
	}

	if err := validation.ValidateName("nom", req.Nom); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidateName("prenom", req.Prenom); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if !req.Role.Valid() {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Rôle inconnu"))
	}

	existing, err := s.userRepo.GetByEmail(c.UserContext(), req.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if existing != nil {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewValidationError("Un compte existe déjà avec cet email"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	user := &models.User{
		Nom:       req.Nom,
		Prenom:    req.Prenom,
		Email:     req.Email,
		Password:  string(hashedPassword),
		Role:      req.Role,
		Telephone: req.Telephone,
		Statut:    models.UserStatutActif,
	}
	if err := s.userRepo.Create(c.UserContext(), user); err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// ValidateUser handles PUT /api/admin/users/:id/validate
// @Summary Validate a pending account
// @Description The account becomes valide; formateurs also receive an access code by email. The optional message is included in the email.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body object{message=string} false "Optional message for the validation email"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/users/{id}/validate [put]
func (s *Server) ValidateUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	// Body is optional: an empty PUT validates without a message.
	var req struct {
		Message string `json:"message"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Corps de requête invalide"))
		}
	}

	user, err := s.workflowService.ValidateUser(c.UserContext(), id, req.Message)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// RejectUser handles PUT /api/admin/users/:id/reject
// @Summary Reject a pending account
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body object{motif=string} false "Optional rejection reason for the email"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/users/{id}/reject [put]
func (s *Server) RejectUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	// Body is optional: a body-less PUT rejects without a motif.
	var req struct {
		Motif string `json:"motif"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Corps de requête invalide"))
		}
	}

	user, err := s.workflowService.RejectUser(c.UserContext(), id, req.Motif)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// SetUserPending handles PUT /api/admin/users/:id/pending. It re-queues
// a previously decided account for review.
func (s *Server) SetUserPending(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.workflowService.SetPending(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// ResendAccessCode handles POST /api/admin/users/:id/resend-code
// @Summary Regenerate a formateur access code
// @Description Rotates the access code of a validated formateur and emails it
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/users/{id}/resend-code [post]
func (s *Server) ResendAccessCode(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, err := s.workflowService.RegenerateAccessCode(c.UserContext(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Nouveau code d'accès envoyé"})
}

// GetAdminStats handles GET /api/admin/stats
// @Summary Dashboard counters
// @Tags admin
// @Produce json
// @Success 200 {object} service.Stats
// @Security BearerAuth
// @Router /admin/stats [get]
func (s *Server) GetAdminStats(c *fiber.Ctx) error {
	stats, err := s.workflowService.AdminStats(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(stats)
}

// GetFeatureFlags handles GET /api/admin/feature-flags
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(userID),
	})
}
