package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cfp/internal/mailer"
	"cfp/internal/middleware"
	"cfp/internal/models"
	"cfp/internal/notifications"
	"cfp/internal/repository"

	"gorm.io/gorm"
)

// DemandeService handles leave and permission requests: submission by
// formateurs/apprenants, decision by admins.
type DemandeService struct {
	dispatcher
	db             *gorm.DB
	userRepo       repository.UserRepository
	congeRepo      repository.CongeRepository
	permissionRepo repository.PermissionRepository
	notifRepo      repository.NotificationRepository
}

// NewDemandeService wires the request workflow with its dependencies.
func NewDemandeService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	congeRepo repository.CongeRepository,
	permissionRepo repository.PermissionRepository,
	notifRepo repository.NotificationRepository,
	m mailer.Mailer,
	notifier *notifications.Notifier,
) *DemandeService {
	return &DemandeService{
		dispatcher:     dispatcher{mailer: m, notifier: notifier},
		db:             db,
		userRepo:       userRepo,
		congeRepo:      congeRepo,
		permissionRepo: permissionRepo,
		notifRepo:      notifRepo,
	}
}

// SubmitCongeInput carries a new leave request.
type SubmitCongeInput struct {
	UserID         uint
	TypeConge      string
	DateDebut      time.Time
	DateFin        time.Time
	Justification  string
	ContactUrgence string
	Document       string
}

// SubmitConge creates a pending leave request and notifies admins.
func (s *DemandeService) SubmitConge(ctx context.Context, in SubmitCongeInput) (*models.Conge, error) {
	if in.TypeConge == "" {
		return nil, models.NewValidationError("Le type de congé est requis")
	}
	if in.DateFin.Before(in.DateDebut) {
		return nil, models.NewValidationError("La date de fin précède la date de début")
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	conge := &models.Conge{
		UserID:         in.UserID,
		TypeConge:      in.TypeConge,
		DateDebut:      in.DateDebut,
		DateFin:        in.DateFin,
		JoursDemandes:  countDays(in.DateDebut, in.DateFin),
		Justification:  in.Justification,
		ContactUrgence: in.ContactUrgence,
		Document:       in.Document,
		Statut:         models.DemandeStatutEnAttente,
	}

	notif := &models.Notification{
		Type:       models.NotificationTypeCongeDemande,
		EntiteType: models.EntiteTypeConge,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.congeRepo.WithTx(tx).Create(ctx, conge); err != nil {
			return err
		}
		notif.EntiteID = conge.ID
		notif.Message = fmt.Sprintf("Nouvelle demande de congé de %s (%s)", user.FullName(), in.TypeConge)
		return s.notifRepo.WithTx(tx).Create(ctx, notif)
	})
	if err != nil {
		return nil, err
	}

	middleware.NotificationsCreated.WithLabelValues(string(notif.Type)).Inc()
	s.publishAdmin(notif)

	return conge, nil
}

// SubmitPermissionInput carries a new short absence request.
type SubmitPermissionInput struct {
	UserID         uint
	DatePermission time.Time
	HeureDebut     string
	HeureFin       string
	Justification  string
}

// SubmitPermission creates a pending permission request and notifies admins.
func (s *DemandeService) SubmitPermission(ctx context.Context, in SubmitPermissionInput) (*models.Permission, error) {
	if in.HeureDebut == "" || in.HeureFin == "" {
		return nil, models.NewValidationError("Les heures de début et de fin sont requises")
	}
	if strings.Compare(in.HeureFin, in.HeureDebut) <= 0 {
		return nil, models.NewValidationError("L'heure de fin doit suivre l'heure de début")
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	permission := &models.Permission{
		UserID:         in.UserID,
		DatePermission: in.DatePermission,
		HeureDebut:     in.HeureDebut,
		HeureFin:       in.HeureFin,
		Justification:  in.Justification,
		Statut:         models.DemandeStatutEnAttente,
	}

	notif := &models.Notification{
		Type:       models.NotificationTypePermissionDemande,
		EntiteType: models.EntiteTypePermission,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.permissionRepo.WithTx(tx).Create(ctx, permission); err != nil {
			return err
		}
		notif.EntiteID = permission.ID
		notif.Message = fmt.Sprintf("Nouvelle demande de permission de %s", user.FullName())
		return s.notifRepo.WithTx(tx).Create(ctx, notif)
	})
	if err != nil {
		return nil, err
	}

	middleware.NotificationsCreated.WithLabelValues(string(notif.Type)).Inc()
	s.publishAdmin(notif)

	return permission, nil
}

// DecisionInput carries an admin's ruling on a pending request.
type DecisionInput struct {
	Statut         models.DemandeStatut
	ValidateurName string
	MotifRefus     string
}

func (in DecisionInput) validate() error {
	if !in.Statut.ValidDecision() {
		return models.NewValidationError(
			fmt.Sprintf("Décision inconnue %q (attendu: approuve ou refuse)", in.Statut))
	}
	if in.Statut == models.DemandeStatutRefuse && strings.TrimSpace(in.MotifRefus) == "" {
		return models.NewValidationError("Un motif est requis pour refuser une demande")
	}
	return nil
}

func (in DecisionInput) decision() repository.Decision {
	d := repository.Decision{
		Statut:         in.Statut,
		ValidateurName: in.ValidateurName,
	}
	if in.Statut == models.DemandeStatutRefuse {
		motif := in.MotifRefus
		d.MotifRefus = &motif
	}
	return d
}

// DecideConge applies an admin decision to a pending leave request.
// The decision and its feed entry commit in one transaction; a request
// already decided is reported as an invalid state, which also resolves
// two admins racing on the same request.
func (s *DemandeService) DecideConge(ctx context.Context, congeID uint, in DecisionInput) (*models.Conge, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	conge, err := s.congeRepo.GetByID(ctx, congeID)
	if err != nil {
		return nil, err
	}

	notifType := models.NotificationTypeCongeApprouve
	if in.Statut == models.DemandeStatutRefuse {
		notifType = models.NotificationTypeCongeRefuse
	}
	notif := &models.Notification{
		Type:       notifType,
		Message:    fmt.Sprintf("Demande de congé #%d %s par %s", congeID, decisionLabel(in.Statut), in.ValidateurName),
		EntiteType: models.EntiteTypeConge,
		EntiteID:   congeID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.congeRepo.WithTx(tx).Decide(ctx, congeID, in.decision())
		if err != nil {
			return err
		}
		if !ok {
			return models.NewInvalidStateError(
				fmt.Sprintf("La demande est déjà décidée (statut actuel: %s)", conge.Statut))
		}
		return s.notifRepo.WithTx(tx).Create(ctx, notif)
	})
	if err != nil {
		return nil, err
	}

	conge.Statut = in.Statut
	conge.ValidateurName = in.ValidateurName
	if d := in.decision(); d.MotifRefus != nil {
		conge.MotifRefus = d.MotifRefus
	}

	middleware.StatusTransitions.WithLabelValues("conge", string(in.Statut)).Inc()
	middleware.NotificationsCreated.WithLabelValues(string(notif.Type)).Inc()
	s.publishAdmin(notif)

	if conge.User != nil {
		s.sendEmailAsync(mailer.Message{
			To:       conge.User.Email,
			ToName:   conge.User.FullName(),
			Subject:  "Décision sur votre demande de congé",
			Template: mailer.TemplateCongeDecide,
			Data: map[string]interface{}{
				"Prenom":     conge.User.Prenom,
				"DateDebut":  conge.DateDebut.Format("2006-01-02"),
				"DateFin":    conge.DateFin.Format("2006-01-02"),
				"Decision":   decisionLabel(in.Statut),
				"MotifRefus": in.MotifRefus,
			},
		})
	}

	return conge, nil
}

// DecidePermission applies an admin decision to a pending permission request.
func (s *DemandeService) DecidePermission(ctx context.Context, permissionID uint, in DecisionInput) (*models.Permission, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	permission, err := s.permissionRepo.GetByID(ctx, permissionID)
	if err != nil {
		return nil, err
	}

	notifType := models.NotificationTypePermissionApprouve
	if in.Statut == models.DemandeStatutRefuse {
		notifType = models.NotificationTypePermissionRefuse
	}
	notif := &models.Notification{
		Type:       notifType,
		Message:    fmt.Sprintf("Demande de permission #%d %s par %s", permissionID, decisionLabel(in.Statut), in.ValidateurName),
		EntiteType: models.EntiteTypePermission,
		EntiteID:   permissionID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.permissionRepo.WithTx(tx).Decide(ctx, permissionID, in.decision())
		if err != nil {
			return err
		}
		if !ok {
			return models.NewInvalidStateError(
				fmt.Sprintf("La demande est déjà décidée (statut actuel: %s)", permission.Statut))
		}
		return s.notifRepo.WithTx(tx).Create(ctx, notif)
	})
	if err != nil {
		return nil, err
	}

	permission.Statut = in.Statut
	permission.ValidateurName = in.ValidateurName
	if d := in.decision(); d.MotifRefus != nil {
		permission.MotifRefus = d.MotifRefus
	}

	middleware.StatusTransitions.WithLabelValues("permission", string(in.Statut)).Inc()
	middleware.NotificationsCreated.WithLabelValues(string(notif.Type)).Inc()
	s.publishAdmin(notif)

	if permission.User != nil {
		s.sendEmailAsync(mailer.Message{
			To:       permission.User.Email,
			ToName:   permission.User.FullName(),
			Subject:  "Décision sur votre demande de permission",
			Template: mailer.TemplatePermissionDecide,
			Data: map[string]interface{}{
				"Prenom":         permission.User.Prenom,
				"DatePermission": permission.DatePermission.Format("2006-01-02"),
				"Decision":       decisionLabel(in.Statut),
				"MotifRefus":     in.MotifRefus,
			},
		})
	}

	return permission, nil
}

// ListConges returns requests visible to the caller: admins see all,
// others only their own.
func (s *DemandeService) ListConges(ctx context.Context, viewer *models.User, statut models.DemandeStatut, limit, offset int) ([]models.Conge, error) {
	if viewer.IsAdmin() {
		return s.congeRepo.List(ctx, statut, limit, offset)
	}
	return s.congeRepo.ListByUser(ctx, viewer.ID, limit, offset)
}

// ListPermissions returns requests visible to the caller.
func (s *DemandeService) ListPermissions(ctx context.Context, viewer *models.User, statut models.DemandeStatut, limit, offset int) ([]models.Permission, error) {
	if viewer.IsAdmin() {
		return s.permissionRepo.List(ctx, statut, limit, offset)
	}
	return s.permissionRepo.ListByUser(ctx, viewer.ID, limit, offset)
}

func decisionLabel(statut models.DemandeStatut) string {
	if statut == models.DemandeStatutApprouve {
		return "approuvée"
	}
	return "refusée"
}

// countDays computes the inclusive day span of a leave request.
func countDays(debut, fin time.Time) int {
	return int(fin.Sub(debut).Hours()/24) + 1
}
