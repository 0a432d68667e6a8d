// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"cfp/internal/middleware"
	"cfp/internal/models"
	"cfp/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const wsTicketTTL = 30 * time.Second

// Signup handles POST /api/auth/signup
// @Summary Inscription
// @Description Register a new formateur or apprenant account, pending admin validation
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{nom=string,prenom=string,email=string,password=string,role=string,telephone=string} true "Signup request"
// @Success 201 {object} object{token=string,user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
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
	if err := validation.ValidateTelephone(req.Telephone); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	// Self-registration is limited to the two workflow roles. Admin
	// accounts are created by other admins.
	if req.Role != models.RoleFormateur && req.Role != models.RoleApprenant {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Le rôle doit être formateur ou apprenant"))
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
		Statut:    models.UserStatutEnAttente,
	}

	if createErr := s.userRepo.Create(c.UserContext(), user); createErr != nil {
		return models.RespondWithError(c, models.StatusForError(createErr), createErr)
	}

	s.notifySignup(c, user)

	token, err := s.generateToken(user.ID, user.Role)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// notifySignup feeds the admin notification stream with a new account
// event. Best-effort: a failed feed entry never fails the signup.
func (s *Server) notifySignup(c *fiber.Ctx, user *models.User) {
	notifType := models.NotificationTypeNewApprenant
	label := "apprenant"
	if user.Role == models.RoleFormateur {
		notifType = models.NotificationTypeNewFormateur
		label = "formateur"
	}

	notif := &models.Notification{
		Type:       notifType,
		Message:    fmt.Sprintf("Nouvelle inscription %s: %s", label, user.FullName()),
		EntiteType: models.EntiteTypeUser,
		EntiteID:   user.ID,
	}
	if err := s.notifRepo.Create(c.UserContext(), notif); err != nil {
		middleware.Logger.Error("Failed to record signup notification", "error", err)
		return
	}
	middleware.NotificationsCreated.WithLabelValues(string(notif.Type)).Inc()

	if s.notifier != nil {
		if payload, err := json.Marshal(notif); err == nil {
			if perr := s.notifier.PublishAdmin(c.UserContext(), string(payload)); perr != nil {
				middleware.Logger.Error("Failed to publish signup notification", "error", perr)
			}
		}
	}
}

// Login handles POST /api/auth/login
// @Summary Connexion
// @Description Authenticate user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login credentials"
// @Success 200 {object} object{token=string,user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Corps de requête invalide"))
	}

	user, err := s.userRepo.GetByEmail(c.UserContext(), req.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Identifiants invalides"))
	}

	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); cmpErr != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Identifiants invalides"))
	}

	// Rejected and deactivated accounts are refused even with valid
	// credentials. Pending accounts may log in to track their statut.
	if !user.CanLogin() {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Ce compte n'est pas autorisé à se connecter"))
	}

	token, err := s.generateToken(user.ID, user.Role)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Refresh handles POST /api/auth/refresh. It exchanges a still-valid
// token for a fresh one with a new expiry and JTI.
func (s *Server) Refresh(c *fiber.Ctx) error {
	claims, err := s.parseBearerClaims(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Jeton invalide ou expiré"))
	}

	sub, _ := claims["sub"].(string)
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Jeton invalide ou expiré"))
	}

	user, err := s.userRepo.GetByID(c.UserContext(), uint(userID))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	if !user.CanLogin() {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Ce compte n'est pas autorisé à se connecter"))
	}

	token, err := s.generateToken(user.ID, user.Role)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{"token": token})
}

// Logout handles POST /api/auth/logout. The token's JTI is blacklisted
// in Redis until its natural expiry; without Redis logout is a no-op
// acknowledged to the client.
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, err := s.parseBearerClaims(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Jeton invalide ou expiré"))
	}

	if jti, ok := claims["jti"].(string); ok && jti != "" && s.redis != nil {
		ttl := 24 * time.Hour
		if exp, ok := claims["exp"].(float64); ok {
			if remaining := time.Until(time.Unix(int64(exp), 0)); remaining > 0 {
				ttl = remaining
			}
		}
		if err := s.redis.Set(c.Context(), "blacklist:"+jti, "1", ttl).Err(); err != nil {
			middleware.Logger.Error("Failed to blacklist token", "error", err)
		}
	}

	return c.JSON(fiber.Map{"message": "Déconnexion réussie"})
}

// GetMyProfile handles GET /api/me
// @Summary Profil courant
// @Tags auth
// @Produce json
// @Success 200 {object} models.User
// @Security BearerAuth
// @Router /me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	return c.JSON(user)
}

// IssueWSTicket handles POST /api/ws/ticket. Tickets are short-lived,
// single-use credentials consumed by the WebSocket upgrade, which
// cannot carry an Authorization header from browsers.
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	if s.redis == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewInternalError(fmt.Errorf("redis unavailable")))
	}

	userID := c.Locals("userID").(uint)
	ticket := uuid.New().String()
	key := fmt.Sprintf("ws_ticket:%s", ticket)
	if err := s.redis.Set(c.Context(), key, strconv.FormatUint(uint64(userID), 10), wsTicketTTL).Err(); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(wsTicketTTL.Seconds()),
	})
}

// parseBearerClaims extracts and validates the JWT from the
// Authorization header, returning its claims.
func (s *Server) parseBearerClaims(c *fiber.Ctx) (jwt.MapClaims, error) {
	authHeader := c.Get("Authorization")
	if len(authHeader) < 8 || authHeader[:7] != "Bearer " {
		return nil, fmt.Errorf("missing bearer token")
	}

	token, err := jwt.Parse(authHeader[7:], func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid claims")
	}
	return claims, nil
}

// generateToken creates a JWT token for the given user ID and role
func (s *Server) generateToken(userID uint, role models.Role) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(userID), 10), // Subject (user ID as string)
		"role": string(role),                           // Role (cached in token, re-checked server-side)
		"iss":  "cfp-api",                              // Issuer
		"aud":  "cfp-client",                           // Audience
		"exp":  now.Add(time.Hour * 24 * 7).Unix(),     // Expiration (7 days)
		"iat":  now.Unix(),                             // Issued at
		"nbf":  now.Unix(),                             // Not before
		"jti":  s.generateJTI(),                        // JWT ID (unique identifier)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func (s *Server) generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
