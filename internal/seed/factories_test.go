package seed

import (
	"strings"
	"testing"
	"time"

	"cfp/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openFactoryDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Formation{},
		&models.Conge{},
		&models.Permission{},
		&models.Inscription{},
		&models.Paiement{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestCreateUser_DryRunNeedsNoDatabase(t *testing.T) {
	f := NewFactory(nil, SeedOptions{DryRun: true, SkipBcrypt: true, MaxDays: 30})

	user, err := f.CreateUser(func(u *models.User) {
		u.Role = models.RoleFormateur
		u.Statut = models.UserStatutEnAttente
	})
	if err != nil {
		t.Fatalf("dry-run create: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("expected synthetic ID in dry-run mode")
	}
	if user.Role != models.RoleFormateur || user.Statut != models.UserStatutEnAttente {
		t.Fatalf("overrides not applied: role=%s statut=%s", user.Role, user.Statut)
	}
	if !strings.HasPrefix(user.Telephone, "+221") {
		t.Fatalf("unexpected telephone format: %s", user.Telephone)
	}
	if time.Since(user.CreatedAt) > 31*24*time.Hour {
		t.Fatalf("created_at outside MaxDays spread: %v", user.CreatedAt)
	}
}

func TestCreateFormateur_PersistsAccessCode(t *testing.T) {
	t.Parallel()

	db := openFactoryDB(t)
	f := NewFactory(db, SeedOptions{SkipBcrypt: true})

	formateur, err := f.CreateFormateur()
	if err != nil {
		t.Fatalf("create formateur: %v", err)
	}
	if formateur.CodeFormateur == nil {
		t.Fatal("expected an access code")
	}
	if !strings.HasPrefix(*formateur.CodeFormateur, "FORM") || len(*formateur.CodeFormateur) != 8 {
		t.Fatalf("unexpected code format: %s", *formateur.CodeFormateur)
	}

	var stored models.User
	if err := db.First(&stored, formateur.ID).Error; err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if stored.Statut != models.UserStatutValide {
		t.Fatalf("expected statut valide, got %s", stored.Statut)
	}
}

func TestCreateConge_DatesSpanJoursDemandes(t *testing.T) {
	t.Parallel()

	db := openFactoryDB(t)
	f := NewFactory(db, SeedOptions{SkipBcrypt: true})

	user, err := f.CreateFormateur()
	if err != nil {
		t.Fatalf("create formateur: %v", err)
	}
	conge, err := f.CreateConge(user)
	if err != nil {
		t.Fatalf("create conge: %v", err)
	}

	if conge.Statut != models.DemandeStatutEnAttente {
		t.Fatalf("expected en_attente, got %s", conge.Statut)
	}
	span := int(conge.DateFin.Sub(conge.DateDebut).Hours()/24) + 1
	if span != conge.JoursDemandes {
		t.Fatalf("expected %d jours, dates span %d", conge.JoursDemandes, span)
	}
	if conge.Justification == "" {
		t.Fatal("expected a justification")
	}
}

func TestCreatePaiement_SettlesImmediately(t *testing.T) {
	t.Parallel()

	db := openFactoryDB(t)
	f := NewFactory(db, SeedOptions{SkipBcrypt: true})

	user, err := f.CreateUser()
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	formation, err := f.CreateFormation()
	if err != nil {
		t.Fatalf("create formation: %v", err)
	}
	inscription, err := f.CreateInscription(user, formation, models.InscriptionStatutValide)
	if err != nil {
		t.Fatalf("create inscription: %v", err)
	}
	paiement, err := f.CreatePaiement(inscription, formation.Prix/2)
	if err != nil {
		t.Fatalf("create paiement: %v", err)
	}

	if paiement.Statut != models.PaiementStatutPaye {
		t.Fatalf("expected statut paye, got %s", paiement.Statut)
	}
	if paiement.DatePaiement == nil {
		t.Fatal("expected a payment date")
	}
	found := false
	for _, m := range methodesPaiement {
		if paiement.Methode == m {
			found = true
		}
	}
	if !found {
		t.Fatalf("unknown payment method: %s", paiement.Methode)
	}
}
