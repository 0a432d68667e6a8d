package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"cfp/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedOptions tune factory behavior.
type SeedOptions struct {
	// DryRun logs what would be created without writing to the database.
	DryRun bool
	// SkipBcrypt stores a plain password. Dev-only speedup.
	SkipBcrypt bool
	// MaxDays bounds the created_at spread of generated rows.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts SeedOptions
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts SeedOptions) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, opts: opts, nextID: 1000}
}

func (f *Factory) spreadCreatedAt() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return time.Now().
		Add(-time.Duration(r.Intn(maxDays)) * 24 * time.Hour).
		Add(-time.Duration(r.Intn(24)) * time.Hour)
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	prenom, nom := generateRandomName()
	user := &models.User{
		Nom:       nom,
		Prenom:    prenom,
		Email:     gofakeit.Email(),
		Role:      models.RoleApprenant,
		Statut:    models.UserStatutActif,
		Telephone: fmt.Sprintf("+221%s", gofakeit.Numerify("7# ### ## ##")),
		CreatedAt: f.spreadCreatedAt(),
	}

	if f.opts.SkipBcrypt {
		user.Password = "Formation2026"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("Formation2026"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s %s (%s/%s)", user.Prenom, user.Nom, user.Role, user.Statut)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateFormateur persists a validated formateur with an access code.
func (f *Factory) CreateFormateur(overrides ...func(*models.User)) (*models.User, error) {
	code := gofakeit.Numerify("FORM####")
	base := func(u *models.User) {
		u.Role = models.RoleFormateur
		u.Statut = models.UserStatutValide
		u.CodeFormateur = &code
	}
	return f.CreateUser(append([]func(*models.User){base}, overrides...)...)
}

// CreateFormation constructs and persists a sample `models.Formation`.
func (f *Factory) CreateFormation(overrides ...func(*models.Formation)) (*models.Formation, error) {
	debut := nextMonthStart()
	formation := &models.Formation{
		Titre:       gofakeit.JobTitle(),
		Description: gofakeit.Sentence(12),
		Prix:        float64(gofakeit.Number(40, 120)) * 1000,
		Places:      gofakeit.Number(10, 30),
		DateDebut:   debut,
		DateFin:     debut.AddDate(0, gofakeit.Number(3, 9), 0),
	}

	for _, override := range overrides {
		override(formation)
	}

	if f.opts.DryRun {
		f.nextID++
		formation.ID = f.nextID
		log.Printf("[dry-run] CreateFormation: %q", formation.Titre)
		return formation, nil
	}

	if err := f.db.Create(formation).Error; err != nil {
		return nil, err
	}
	return formation, nil
}

// CreateConge persists a leave request for the given user.
func (f *Factory) CreateConge(user *models.User, overrides ...func(*models.Conge)) (*models.Conge, error) {
	debut := time.Now().AddDate(0, 0, gofakeit.Number(1, 60))
	jours := gofakeit.Number(1, 12)
	conge := &models.Conge{
		UserID:        user.ID,
		TypeConge:     typesConge[gofakeit.Number(0, len(typesConge)-1)],
		DateDebut:     debut,
		DateFin:       debut.AddDate(0, 0, jours-1),
		JoursDemandes: jours,
		Justification: justificationsConge[gofakeit.Number(0, len(justificationsConge)-1)],
		Statut:        models.DemandeStatutEnAttente,
	}

	for _, override := range overrides {
		override(conge)
	}

	if f.opts.DryRun {
		f.nextID++
		conge.ID = f.nextID
		log.Printf("[dry-run] CreateConge: user=%d type=%s jours=%d", conge.UserID, conge.TypeConge, conge.JoursDemandes)
		return conge, nil
	}

	if err := f.db.Create(conge).Error; err != nil {
		return nil, err
	}
	return conge, nil
}

// CreatePermission persists a short absence request for the given user.
func (f *Factory) CreatePermission(user *models.User, overrides ...func(*models.Permission)) (*models.Permission, error) {
	permission := &models.Permission{
		UserID:         user.ID,
		DatePermission: time.Now().AddDate(0, 0, gofakeit.Number(1, 30)),
		HeureDebut:     fmt.Sprintf("%02d:00", gofakeit.Number(8, 11)),
		HeureFin:       fmt.Sprintf("%02d:00", gofakeit.Number(13, 17)),
		Justification:  justificationsPermission[gofakeit.Number(0, len(justificationsPermission)-1)],
		Statut:         models.DemandeStatutEnAttente,
	}

	for _, override := range overrides {
		override(permission)
	}

	if err := f.db.Create(permission).Error; err != nil {
		return nil, err
	}
	return permission, nil
}

// CreateInscription enrolls the user into the formation.
func (f *Factory) CreateInscription(user *models.User, formation *models.Formation, statut models.InscriptionStatut) (*models.Inscription, error) {
	inscription := &models.Inscription{
		UserID:      user.ID,
		FormationID: formation.ID,
		Statut:      statut,
	}
	if err := f.db.Create(inscription).Error; err != nil {
		return nil, err
	}
	return inscription, nil
}

// CreatePaiement records a settled payment against the enrollment.
func (f *Factory) CreatePaiement(inscription *models.Inscription, montant float64) (*models.Paiement, error) {
	now := time.Now()
	paiement := &models.Paiement{
		InscriptionID: inscription.ID,
		Montant:       montant,
		Methode:       methodesPaiement[gofakeit.Number(0, len(methodesPaiement)-1)],
		Statut:        models.PaiementStatutPaye,
		DatePaiement:  &now,
	}
	if err := f.db.Create(paiement).Error; err != nil {
		return nil, err
	}
	return paiement, nil
}

// CreateMessage persists a direct message between two users.
func (f *Factory) CreateMessage(sender, receiver *models.User, overrides ...func(*models.Message)) (*models.Message, error) {
	message := &models.Message{
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		Content:    gofakeit.Sentence(10),
	}

	for _, override := range overrides {
		override(message)
	}

	if err := f.db.Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

// CreateNotification feeds the admin notification stream.
func (f *Factory) CreateNotification(notifType models.NotificationType, entiteType models.EntiteType, entiteID uint, message string) (*models.Notification, error) {
	notification := &models.Notification{
		Type:       notifType,
		Message:    message,
		EntiteType: entiteType,
		EntiteID:   entiteID,
	}
	if err := f.db.Create(notification).Error; err != nil {
		return nil, err
	}
	return notification, nil
}
