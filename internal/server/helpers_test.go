package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"testing"

	"cfp/internal/config"
	"cfp/internal/database"
	"cfp/internal/featureflags"
	"cfp/internal/mailer"
	"cfp/internal/models"
	"cfp/internal/repository"
	"cfp/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

// newTestServer wires a Server against in-memory sqlite, a console
// mailer and no Redis. Handlers are mounted per-test with the locals
// they need.
func newTestServer(t *testing.T) (*Server, *mailer.ConsoleMailer) {
	t.Helper()

	db := setupTestDB(t)
	cfg := &config.Config{
		JWTSecret:                 "test-secret",
		FeatureFlags:              "messagerie=on,temps_reel=on",
		Env:                       "test",
		NotificationRetentionDays: 30,
	}

	m := mailer.NewConsoleMailer()
	s := &Server{
		config:          cfg,
		db:              db,
		userRepo:        repository.NewUserRepository(db),
		congeRepo:       repository.NewCongeRepository(db),
		permissionRepo:  repository.NewPermissionRepository(db),
		notifRepo:       repository.NewNotificationRepository(db),
		messageRepo:     repository.NewMessageRepository(db),
		formationRepo:   repository.NewFormationRepository(db),
		inscriptionRepo: repository.NewInscriptionRepository(db),
		mailer:          m,
		featureFlags:    featureflags.NewManager(cfg.FeatureFlags),
	}
	s.workflowService = service.NewWorkflowService(
		db, s.userRepo, s.congeRepo, s.permissionRepo, s.inscriptionRepo, s.notifRepo, m, nil, "http://localhost:3000")
	s.demandeService = service.NewDemandeService(
		db, s.userRepo, s.congeRepo, s.permissionRepo, s.notifRepo, m, nil)
	s.notificationService = service.NewNotificationService(s.notifRepo, cfg.NotificationRetentionDays)
	s.messageService = service.NewMessageService(s.messageRepo, s.userRepo)
	s.formationService = service.NewFormationService(s.formationRepo, s.inscriptionRepo, s.userRepo)

	return s, m
}

// asUser wraps a handler so it runs with the given user already
// authenticated, mirroring what AuthRequired sets up.
func asUser(userID uint, handler fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return handler(c)
	}
}

func createTestUser(t *testing.T, db *gorm.DB, role models.Role, statut models.UserStatut) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Formation2026"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Nom:      "Fall",
		Prenom:   "Moussa",
		Email:    uniqueEmail(t),
		Password: string(hash),
		Role:     role,
		Statut:   statut,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

var emailCounter atomic.Uint64

func uniqueEmail(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("user%d@cfp.test", emailCounter.Add(1))
}

func decodeBody(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, dest))
}
