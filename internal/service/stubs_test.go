package service

import (
	"context"
	"testing"
	"time"

	"cfp/internal/models"
	"cfp/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB returns an in-memory database so services can open real
// transactions around stubbed repositories.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func assertInvalidStateError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_STATE", appErr.Code)
}

type userRepoStub struct {
	getByIDFn          func(ctx context.Context, id uint) (*models.User, error)
	getByEmailFn       func(ctx context.Context, email string) (*models.User, error)
	createFn           func(ctx context.Context, user *models.User) error
	updateFn           func(ctx context.Context, user *models.User) error
	deleteFn           func(ctx context.Context, id uint) error
	listFn             func(ctx context.Context, filter repository.UserFilter, limit, offset int) ([]models.User, error)
	listPendingFn      func(ctx context.Context) ([]models.User, error)
	updateStatutFn     func(ctx context.Context, id uint, from []models.UserStatut, to models.UserStatut) (bool, error)
	setCodeFormateurFn func(ctx context.Context, id uint, code string) error
	countByStatutFn    func(ctx context.Context) (map[models.UserStatut]int64, error)
	countByRoleFn      func(ctx context.Context) (map[models.Role]int64, error)
}

func noopUserRepo() *userRepoStub { return &userRepoStub{} }

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return &models.User{ID: id}, nil
}

func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.getByEmailFn != nil {
		return s.getByEmailFn(ctx, email)
	}
	return nil, nil
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	if s.createFn != nil {
		return s.createFn(ctx, user)
	}
	return nil
}

func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, user)
	}
	return nil
}

func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func (s *userRepoStub) List(ctx context.Context, filter repository.UserFilter, limit, offset int) ([]models.User, error) {
	if s.listFn != nil {
		return s.listFn(ctx, filter, limit, offset)
	}
	return nil, nil
}

func (s *userRepoStub) ListPending(ctx context.Context) ([]models.User, error) {
	if s.listPendingFn != nil {
		return s.listPendingFn(ctx)
	}
	return nil, nil
}

func (s *userRepoStub) UpdateStatut(ctx context.Context, id uint, from []models.UserStatut, to models.UserStatut) (bool, error) {
	if s.updateStatutFn != nil {
		return s.updateStatutFn(ctx, id, from, to)
	}
	return true, nil
}

func (s *userRepoStub) SetCodeFormateur(ctx context.Context, id uint, code string) error {
	if s.setCodeFormateurFn != nil {
		return s.setCodeFormateurFn(ctx, id, code)
	}
	return nil
}

func (s *userRepoStub) CountByStatut(ctx context.Context) (map[models.UserStatut]int64, error) {
	if s.countByStatutFn != nil {
		return s.countByStatutFn(ctx)
	}
	return map[models.UserStatut]int64{}, nil
}

func (s *userRepoStub) CountByRole(ctx context.Context) (map[models.Role]int64, error) {
	if s.countByRoleFn != nil {
		return s.countByRoleFn(ctx)
	}
	return map[models.Role]int64{}, nil
}

func (s *userRepoStub) WithTx(_ *gorm.DB) repository.UserRepository { return s }

type congeRepoStub struct {
	getByIDFn      func(ctx context.Context, id uint) (*models.Conge, error)
	createFn       func(ctx context.Context, conge *models.Conge) error
	listByUserFn   func(ctx context.Context, userID uint, limit, offset int) ([]models.Conge, error)
	listFn         func(ctx context.Context, statut models.DemandeStatut, limit, offset int) ([]models.Conge, error)
	decideFn       func(ctx context.Context, id uint, d repository.Decision) (bool, error)
	countPendingFn func(ctx context.Context) (int64, error)
}

func noopCongeRepo() *congeRepoStub { return &congeRepoStub{} }

func (s *congeRepoStub) GetByID(ctx context.Context, id uint) (*models.Conge, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return &models.Conge{ID: id, Statut: models.DemandeStatutEnAttente}, nil
}

func (s *congeRepoStub) Create(ctx context.Context, conge *models.Conge) error {
	if s.createFn != nil {
		return s.createFn(ctx, conge)
	}
	conge.ID = 1
	return nil
}

func (s *congeRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Conge, error) {
	if s.listByUserFn != nil {
		return s.listByUserFn(ctx, userID, limit, offset)
	}
	return nil, nil
}

func (s *congeRepoStub) List(ctx context.Context, statut models.DemandeStatut, limit, offset int) ([]models.Conge, error) {
	if s.listFn != nil {
		return s.listFn(ctx, statut, limit, offset)
	}
	return nil, nil
}

func (s *congeRepoStub) Decide(ctx context.Context, id uint, d repository.Decision) (bool, error) {
	if s.decideFn != nil {
		return s.decideFn(ctx, id, d)
	}
	return true, nil
}

func (s *congeRepoStub) CountPending(ctx context.Context) (int64, error) {
	if s.countPendingFn != nil {
		return s.countPendingFn(ctx)
	}
	return 0, nil
}

func (s *congeRepoStub) WithTx(_ *gorm.DB) repository.CongeRepository { return s }

type permissionRepoStub struct {
	getByIDFn      func(ctx context.Context, id uint) (*models.Permission, error)
	createFn       func(ctx context.Context, permission *models.Permission) error
	listByUserFn   func(ctx context.Context, userID uint, limit, offset int) ([]models.Permission, error)
	listFn         func(ctx context.Context, statut models.DemandeStatut, limit, offset int) ([]models.Permission, error)
	decideFn       func(ctx context.Context, id uint, d repository.Decision) (bool, error)
	countPendingFn func(ctx context.Context) (int64, error)
}

func noopPermissionRepo() *permissionRepoStub { return &permissionRepoStub{} }

func (s *permissionRepoStub) GetByID(ctx context.Context, id uint) (*models.Permission, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return &models.Permission{ID: id, Statut: models.DemandeStatutEnAttente}, nil
}

func (s *permissionRepoStub) Create(ctx context.Context, permission *models.Permission) error {
	if s.createFn != nil {
		return s.createFn(ctx, permission)
	}
	permission.ID = 1
	return nil
}

func (s *permissionRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Permission, error) {
	if s.listByUserFn != nil {
		return s.listByUserFn(ctx, userID, limit, offset)
	}
	return nil, nil
}

func (s *permissionRepoStub) List(ctx context.Context, statut models.DemandeStatut, limit, offset int) ([]models.Permission, error) {
	if s.listFn != nil {
		return s.listFn(ctx, statut, limit, offset)
	}
	return nil, nil
}

func (s *permissionRepoStub) Decide(ctx context.Context, id uint, d repository.Decision) (bool, error) {
	if s.decideFn != nil {
		return s.decideFn(ctx, id, d)
	}
	return true, nil
}

func (s *permissionRepoStub) CountPending(ctx context.Context) (int64, error) {
	if s.countPendingFn != nil {
		return s.countPendingFn(ctx)
	}
	return 0, nil
}

func (s *permissionRepoStub) WithTx(_ *gorm.DB) repository.PermissionRepository { return s }

type notificationRepoStub struct {
	createFn      func(ctx context.Context, n *models.Notification) error
	listFn        func(ctx context.Context, limit, offset int) ([]models.Notification, error)
	markReadFn    func(ctx context.Context, id uint) error
	markAllReadFn func(ctx context.Context) error
	unreadCountFn func(ctx context.Context) (int64, error)
	purgeReadFn   func(ctx context.Context, olderThan time.Time) (int64, error)
}

func noopNotificationRepo() *notificationRepoStub { return &notificationRepoStub{} }

func (s *notificationRepoStub) Create(ctx context.Context, n *models.Notification) error {
	if s.createFn != nil {
		return s.createFn(ctx, n)
	}
	return nil
}

func (s *notificationRepoStub) List(ctx context.Context, limit, offset int) ([]models.Notification, error) {
	if s.listFn != nil {
		return s.listFn(ctx, limit, offset)
	}
	return nil, nil
}

func (s *notificationRepoStub) MarkRead(ctx context.Context, id uint) error {
	if s.markReadFn != nil {
		return s.markReadFn(ctx, id)
	}
	return nil
}

func (s *notificationRepoStub) MarkAllRead(ctx context.Context) error {
	if s.markAllReadFn != nil {
		return s.markAllReadFn(ctx)
	}
	return nil
}

func (s *notificationRepoStub) UnreadCount(ctx context.Context) (int64, error) {
	if s.unreadCountFn != nil {
		return s.unreadCountFn(ctx)
	}
	return 0, nil
}

func (s *notificationRepoStub) PurgeRead(ctx context.Context, olderThan time.Time) (int64, error) {
	if s.purgeReadFn != nil {
		return s.purgeReadFn(ctx, olderThan)
	}
	return 0, nil
}

func (s *notificationRepoStub) WithTx(_ *gorm.DB) repository.NotificationRepository { return s }

type messageRepoStub struct {
	createFn        func(ctx context.Context, m *models.Message) error
	conversationFn  func(ctx context.Context, viewerID, otherID uint, limit, offset int) ([]models.Message, error)
	conversationsFn func(ctx context.Context, userID uint) ([]repository.ConversationSummary, error)
	unreadCountFn   func(ctx context.Context, userID uint) (int64, error)
}

func noopMessageRepo() *messageRepoStub { return &messageRepoStub{} }

func (s *messageRepoStub) Create(ctx context.Context, m *models.Message) error {
	if s.createFn != nil {
		return s.createFn(ctx, m)
	}
	m.ID = 1
	return nil
}

func (s *messageRepoStub) Conversation(ctx context.Context, viewerID, otherID uint, limit, offset int) ([]models.Message, error) {
	if s.conversationFn != nil {
		return s.conversationFn(ctx, viewerID, otherID, limit, offset)
	}
	return nil, nil
}

func (s *messageRepoStub) Conversations(ctx context.Context, userID uint) ([]repository.ConversationSummary, error) {
	if s.conversationsFn != nil {
		return s.conversationsFn(ctx, userID)
	}
	return nil, nil
}

func (s *messageRepoStub) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	if s.unreadCountFn != nil {
		return s.unreadCountFn(ctx, userID)
	}
	return 0, nil
}

type formationRepoStub struct {
	getByIDFn       func(ctx context.Context, id uint) (*models.Formation, error)
	createFn        func(ctx context.Context, f *models.Formation) error
	updateFn        func(ctx context.Context, f *models.Formation) error
	deleteFn        func(ctx context.Context, id uint) error
	listFn          func(ctx context.Context, limit, offset int) ([]models.Formation, error)
	listAteliersFn  func(ctx context.Context, formationID uint) ([]models.Atelier, error)
	createAtelierFn func(ctx context.Context, a *models.Atelier) error
}

func noopFormationRepo() *formationRepoStub { return &formationRepoStub{} }

func (s *formationRepoStub) GetByID(ctx context.Context, id uint) (*models.Formation, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return &models.Formation{ID: id}, nil
}

func (s *formationRepoStub) Create(ctx context.Context, f *models.Formation) error {
	if s.createFn != nil {
		return s.createFn(ctx, f)
	}
	f.ID = 1
	return nil
}

func (s *formationRepoStub) Update(ctx context.Context, f *models.Formation) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, f)
	}
	return nil
}

func (s *formationRepoStub) Delete(ctx context.Context, id uint) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func (s *formationRepoStub) List(ctx context.Context, limit, offset int) ([]models.Formation, error) {
	if s.listFn != nil {
		return s.listFn(ctx, limit, offset)
	}
	return nil, nil
}

func (s *formationRepoStub) ListAteliers(ctx context.Context, formationID uint) ([]models.Atelier, error) {
	if s.listAteliersFn != nil {
		return s.listAteliersFn(ctx, formationID)
	}
	return nil, nil
}

func (s *formationRepoStub) CreateAtelier(ctx context.Context, a *models.Atelier) error {
	if s.createAtelierFn != nil {
		return s.createAtelierFn(ctx, a)
	}
	return nil
}

type inscriptionRepoStub struct {
	createFn          func(ctx context.Context, i *models.Inscription) error
	getByIDFn         func(ctx context.Context, id uint) (*models.Inscription, error)
	listByFormationFn func(ctx context.Context, formationID uint) ([]models.Inscription, error)
	listByUserFn      func(ctx context.Context, userID uint) ([]models.Inscription, error)
	updateStatutFn    func(ctx context.Context, id uint, statut models.InscriptionStatut) error
	countPendingFn    func(ctx context.Context) (int64, error)
	createPaiementFn  func(ctx context.Context, p *models.Paiement) error
	listPaiementsFn   func(ctx context.Context, inscriptionID uint) ([]models.Paiement, error)
}

func noopInscriptionRepo() *inscriptionRepoStub { return &inscriptionRepoStub{} }

func (s *inscriptionRepoStub) Create(ctx context.Context, i *models.Inscription) error {
	if s.createFn != nil {
		return s.createFn(ctx, i)
	}
	i.ID = 1
	return nil
}

func (s *inscriptionRepoStub) GetByID(ctx context.Context, id uint) (*models.Inscription, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return &models.Inscription{ID: id}, nil
}

func (s *inscriptionRepoStub) ListByFormation(ctx context.Context, formationID uint) ([]models.Inscription, error) {
	if s.listByFormationFn != nil {
		return s.listByFormationFn(ctx, formationID)
	}
	return nil, nil
}

func (s *inscriptionRepoStub) ListByUser(ctx context.Context, userID uint) ([]models.Inscription, error) {
	if s.listByUserFn != nil {
		return s.listByUserFn(ctx, userID)
	}
	return nil, nil
}

func (s *inscriptionRepoStub) UpdateStatut(ctx context.Context, id uint, statut models.InscriptionStatut) error {
	if s.updateStatutFn != nil {
		return s.updateStatutFn(ctx, id, statut)
	}
	return nil
}

func (s *inscriptionRepoStub) CountPending(ctx context.Context) (int64, error) {
	if s.countPendingFn != nil {
		return s.countPendingFn(ctx)
	}
	return 0, nil
}

func (s *inscriptionRepoStub) CreatePaiement(ctx context.Context, p *models.Paiement) error {
	if s.createPaiementFn != nil {
		return s.createPaiementFn(ctx, p)
	}
	return nil
}

func (s *inscriptionRepoStub) ListPaiements(ctx context.Context, inscriptionID uint) ([]models.Paiement, error) {
	if s.listPaiementsFn != nil {
		return s.listPaiementsFn(ctx, inscriptionID)
	}
	return nil, nil
}
