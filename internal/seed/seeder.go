package seed

import (
	"fmt"
	"log"

	"cfp/internal/models"

	"gorm.io/gorm"
)

// Seeder orchestrates cleanup and preset application.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, SeedOptions{})}
}

// ClearAll truncates every seeded table.
func (s *Seeder) ClearAll() error {
	return clearData(s.db)
}

// ApplyPreset runs a named scenario. Presets are additive; call ClearAll
// first for a clean slate.
func (s *Seeder) ApplyPreset(name string) error {
	switch name {
	case "DemoCentre":
		return s.demoCentre()
	case "RentreePleine":
		return s.rentreePleine()
	default:
		return fmt.Errorf("unknown preset %q (available: DemoCentre, RentreePleine)", name)
	}
}

// demoCentre is a small, predictable dataset for manual walkthroughs:
// one of each account state, one undecided request of each kind.
func (s *Seeder) demoCentre() error {
	formations, err := Formations(s.db)
	if err != nil {
		return err
	}

	admin, err := s.factory.CreateUser(func(u *models.User) {
		u.Prenom, u.Nom = "CFP", "Admin"
		u.Email = "admin@cfp.test"
		u.Role = models.RoleAdmin
		u.Statut = models.UserStatutActif
	})
	if err != nil {
		return err
	}

	formateur, err := s.factory.CreateFormateur()
	if err != nil {
		return err
	}
	pending, err := s.factory.CreateUser(func(u *models.User) {
		u.Role = models.RoleFormateur
		u.Statut = models.UserStatutEnAttente
	})
	if err != nil {
		return err
	}
	apprenant, err := s.factory.CreateUser()
	if err != nil {
		return err
	}

	if _, err := s.factory.CreateConge(formateur); err != nil {
		return err
	}
	if _, err := s.factory.CreatePermission(formateur); err != nil {
		return err
	}
	inscription, err := s.factory.CreateInscription(apprenant, &formations[0], models.InscriptionStatutValide)
	if err != nil {
		return err
	}
	if _, err := s.factory.CreatePaiement(inscription, formations[0].Prix/2); err != nil {
		return err
	}
	if _, err := s.factory.CreateMessage(admin, formateur); err != nil {
		return err
	}
	if _, err := s.factory.CreateNotification(
		models.NotificationTypeNewFormateur, models.EntiteTypeUser, pending.ID,
		fmt.Sprintf("Nouvelle inscription formateur: %s", pending.FullName())); err != nil {
		return err
	}

	log.Println("✓ preset DemoCentre applied")
	return nil
}

// rentreePleine simulates the start of a school year: a full roster
// with a backlog of pending accounts and requests.
func (s *Seeder) rentreePleine() error {
	return Seed(s.db, Options{
		NumFormateurs:  25,
		NumApprenants:  150,
		NumConges:      40,
		NumPermissions: 30,
		ShouldClean:    false,
	})
}
