// Package service contains the business logic of the training center:
// the account validation workflow, request decisions, the notification
// feed, messaging and catalog management.
package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"cfp/internal/mailer"
	"cfp/internal/middleware"
	"cfp/internal/models"
	"cfp/internal/notifications"
	"cfp/internal/repository"

	"gorm.io/gorm"
)

// accessCodeAlphabet excludes ambiguous characters (0/O, 1/I/L).
const (
	accessCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	accessCodeLength   = 8
)

// GenerateAccessCode returns a new random formateur access code.
func GenerateAccessCode() (string, error) {
	buf := make([]byte, accessCodeLength)
	max := big.NewInt(int64(len(accessCodeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate access code: %w", err)
		}
		buf[i] = accessCodeAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// WorkflowService drives the account validation state machine.
type WorkflowService struct {
	dispatcher
	db              *gorm.DB
	userRepo        repository.UserRepository
	congeRepo       repository.CongeRepository
	permissionRepo  repository.PermissionRepository
	inscriptionRepo repository.InscriptionRepository
	notifRepo       repository.NotificationRepository
	frontendURL     string
}

// NewWorkflowService wires the account workflow with its dependencies.
func NewWorkflowService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	congeRepo repository.CongeRepository,
	permissionRepo repository.PermissionRepository,
	inscriptionRepo repository.InscriptionRepository,
	notifRepo repository.NotificationRepository,
	m mailer.Mailer,
	notifier *notifications.Notifier,
	frontendURL string,
) *WorkflowService {
	return &WorkflowService{
		dispatcher:      dispatcher{mailer: m, notifier: notifier},
		db:              db,
		userRepo:        userRepo,
		congeRepo:       congeRepo,
		permissionRepo:  permissionRepo,
		inscriptionRepo: inscriptionRepo,
		notifRepo:       notifRepo,
		frontendURL:     frontendURL,
	}
}

// ValidateUser approves a pending account; both roles become valide
// and formateurs additionally receive a fresh access code. The optional
// adminMessage is included in the validation email. Validating an
// account that is not en_attente is an invalid state transition.
func (s *WorkflowService) ValidateUser(ctx context.Context, userID uint, adminMessage string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var notifType models.NotificationType
	var code string
	switch user.Role {
	case models.RoleApprenant:
		notifType = models.NotificationTypeApprenantValide
	case models.RoleFormateur:
		notifType = models.NotificationTypeFormateurValide
		if code, err = GenerateAccessCode(); err != nil {
			return nil, models.NewInternalError(err)
		}
	default:
		return nil, models.NewInvalidStateError("Seuls les comptes formateur et apprenant passent par la validation")
	}

	notif := &models.Notification{
		Type:       notifType,
		Message:    fmt.Sprintf("Compte de %s validé", user.FullName()),
		EntiteType: models.EntiteTypeUser,
		EntiteID:   user.ID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)
		ok, err := users.UpdateStatut(ctx, userID, []models.UserStatut{models.UserStatutEnAttente}, models.UserStatutValide)
		if err != nil {
			return err
		}
		if !ok {
			return models.NewInvalidStateError(
				fmt.Sprintf("Le compte n'est plus en attente (statut actuel: %s)", user.Statut))
		}
		if user.Role == models.RoleFormateur {
			if err := users.SetCodeFormateur(ctx, userID, code); err != nil {
				return err
			}
		}
		return s.notifRepo.WithTx(tx).Create(ctx, notif)
	})
	if err != nil {
		return nil, err
	}

	user.Statut = models.UserStatutValide
	if code != "" {
		user.CodeFormateur = &code
	}

	middleware.StatusTransitions.WithLabelValues("user", string(models.UserStatutValide)).Inc()
	middleware.NotificationsCreated.WithLabelValues(string(notif.Type)).Inc()
	s.publishAdmin(notif)

	if user.Role == models.RoleFormateur {
		s.sendEmailAsync(mailer.Message{
			To:       user.Email,
			ToName:   user.FullName(),
			Subject:  "Votre compte formateur est validé",
			Template: mailer.TemplateFormateurValide,
			Data: map[string]interface{}{
				"Prenom":        user.Prenom,
				"CodeFormateur": code,
				"AdminMessage":  adminMessage,
				"FrontendURL":   s.frontendURL,
			},
		})
	} else {
		s.sendEmailAsync(mailer.Message{
			To:       user.Email,
			ToName:   user.FullName(),
			Subject:  "Votre compte est validé",
			Template: mailer.TemplateApprenantValide,
			Data: map[string]interface{}{
				"Prenom":       user.Prenom,
				"AdminMessage": adminMessage,
				"FrontendURL":  s.frontendURL,
			},
		})
	}

	return user, nil
}

// RejectUser refuses an account from any statut except rejete itself.
// Terminal for login purposes, but SetPending can re-queue the account
// for review.
func (s *WorkflowService) RejectUser(ctx context.Context, userID uint, motif string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	ok, err := s.userRepo.UpdateStatut(ctx, userID,
		[]models.UserStatut{models.UserStatutEnAttente, models.UserStatutActif, models.UserStatutValide, models.UserStatutInactif},
		models.UserStatutRejete)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewInvalidStateError(
			fmt.Sprintf("Transition impossible vers rejete (statut actuel: %s)", user.Statut))
	}

	user.Statut = models.UserStatutRejete
	middleware.StatusTransitions.WithLabelValues("user", string(models.UserStatutRejete)).Inc()

	s.sendEmailAsync(mailer.Message{
		To:       user.Email,
		ToName:   user.FullName(),
		Subject:  "Votre inscription n'a pas été retenue",
		Template: mailer.TemplateCompteRejete,
		Data: map[string]interface{}{
			"Prenom": user.Prenom,
			"Motif":  motif,
		},
	})

	return user, nil
}

// SetPending re-queues an account for review from any statut, undoing
// a validation or rejection. Calling it on an already pending account
// succeeds without effect.
func (s *WorkflowService) SetPending(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	ok, err := s.userRepo.UpdateStatut(ctx, userID,
		[]models.UserStatut{models.UserStatutEnAttente, models.UserStatutActif, models.UserStatutValide, models.UserStatutRejete, models.UserStatutInactif},
		models.UserStatutEnAttente)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewNotFoundError("utilisateur", userID)
	}

	user.Statut = models.UserStatutEnAttente
	middleware.StatusTransitions.WithLabelValues("user", string(models.UserStatutEnAttente)).Inc()
	return user, nil
}

// RegenerateAccessCode rotates the access code of a validated
// formateur. This never re-runs the validation transition.
func (s *WorkflowService) RegenerateAccessCode(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleFormateur {
		return nil, models.NewInvalidStateError("Seuls les formateurs possèdent un code d'accès")
	}
	if user.Statut != models.UserStatutValide {
		return nil, models.NewInvalidStateError("Le compte formateur n'est pas validé")
	}

	code, err := GenerateAccessCode()
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := s.userRepo.SetCodeFormateur(ctx, userID, code); err != nil {
		return nil, err
	}
	user.CodeFormateur = &code

	s.sendEmailAsync(mailer.Message{
		To:       user.Email,
		ToName:   user.FullName(),
		Subject:  "Votre code d'accès a été renouvelé",
		Template: mailer.TemplateCodeRegenere,
		Data: map[string]interface{}{
			"Prenom":        user.Prenom,
			"CodeFormateur": code,
		},
	})

	return user, nil
}

// Stats summarizes the center's workload for the admin dashboard.
type Stats struct {
	UsersByStatut       map[models.UserStatut]int64 `json:"users_by_statut"`
	UsersByRole         map[models.Role]int64       `json:"users_by_role"`
	PendingConges       int64                       `json:"pending_conges"`
	PendingPermissions  int64                       `json:"pending_permissions"`
	PendingInscriptions int64                       `json:"pending_inscriptions"`
	UnreadNotifications int64                       `json:"unread_notifications"`
}

// AdminStats aggregates account and request counters. Counts come from
// the entity tables, never from the notification feed.
func (s *WorkflowService) AdminStats(ctx context.Context) (*Stats, error) {
	byStatut, err := s.userRepo.CountByStatut(ctx)
	if err != nil {
		return nil, err
	}
	byRole, err := s.userRepo.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	pendingConges, err := s.congeRepo.CountPending(ctx)
	if err != nil {
		return nil, err
	}
	pendingPermissions, err := s.permissionRepo.CountPending(ctx)
	if err != nil {
		return nil, err
	}
	pendingInscriptions, err := s.inscriptionRepo.CountPending(ctx)
	if err != nil {
		return nil, err
	}
	unread, err := s.notifRepo.UnreadCount(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		UsersByStatut:       byStatut,
		UsersByRole:         byRole,
		PendingConges:       pendingConges,
		PendingPermissions:  pendingPermissions,
		PendingInscriptions: pendingInscriptions,
		UnreadNotifications: unread,
	}, nil
}

