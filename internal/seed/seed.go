// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"cfp/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumFormateurs  int
	NumApprenants  int
	NumConges      int
	NumPermissions int
	ShouldClean    bool
}

var (
	prenoms = []string{
		"Moussa", "Awa", "Cheikh", "Fatou", "Ibrahima", "Aminata", "Ousmane", "Mariama",
		"Abdoulaye", "Khady", "Mamadou", "Astou", "Modou", "Ndeye", "Pape", "Sokhna",
		"Serigne", "Adama", "Lamine", "Bineta", "Alioune", "Coumba", "Babacar", "Dieynaba",
		"Samba", "Rama", "Idrissa", "Yacine", "Malick", "Seynabou", "Omar", "Aissatou",
	}

	noms = []string{
		"Fall", "Diop", "Ndiaye", "Sow", "Ba", "Diallo", "Faye", "Gueye",
		"Sarr", "Sy", "Cisse", "Kane", "Thiam", "Mbaye", "Seck", "Wade",
		"Niang", "Toure", "Camara", "Diouf", "Mbodj", "Samb", "Ly", "Dieng",
	}

	typesConge = []string{"annuel", "maladie", "maternite", "familial", "sans_solde"}

	justificationsConge = []string{
		"Congé annuel planifié avec la direction.",
		"Repos médical prescrit par le médecin traitant.",
		"Événement familial nécessitant ma présence.",
		"Déplacement personnel prévu de longue date.",
	}

	justificationsPermission = []string{
		"Rendez-vous médical en ville.",
		"Démarche administrative à la préfecture.",
		"Récupération d'un document officiel.",
		"Urgence familiale de courte durée.",
	}

	methodesPaiement = []string{"especes", "wave", "orange_money", "virement"}
)

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding: %d formateurs, %d apprenants, %d conges, %d permissions...",
		opts.NumFormateurs, opts.NumApprenants, opts.NumConges, opts.NumPermissions)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	users, err := createUsers(db, opts.NumFormateurs, opts.NumApprenants)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d users created", len(users))

	formations, err := Formations(db)
	if err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	log.Printf("✓ %d formations available", len(formations))

	if err := createDemandes(db, users, opts.NumConges, opts.NumPermissions); err != nil {
		return fmt.Errorf("failed to create demandes: %w", err)
	}
	log.Printf("✓ %d conges and %d permissions created", opts.NumConges, opts.NumPermissions)

	if err := createInscriptions(db, users, formations); err != nil {
		return fmt.Errorf("failed to create inscriptions: %w", err)
	}

	log.Println("Database seeding completed.")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE paiements, inscriptions, ateliers, formations, messages,
		notifications, permissions, conges, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func generateRandomName() (string, string) {
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return prenoms[r.Intn(len(prenoms))], noms[r.Intn(len(noms))]
}

func createUsers(db *gorm.DB, numFormateurs, numApprenants int) ([]models.User, error) {
	users := make([]models.User, 0, numFormateurs+numApprenants+1)
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("Formation2026"), bcrypt.DefaultCost)

	// A predictable admin for manual testing.
	admin := models.User{
		Nom:      "Admin",
		Prenom:   "CFP",
		Email:    "admin@cfp.test",
		Password: string(hashedPassword),
		Role:     models.RoleAdmin,
		Statut:   models.UserStatutActif,
	}
	if err := db.Create(&admin).Error; err == nil {
		users = append(users, admin)
	}

	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	statutsFormateur := []models.UserStatut{
		models.UserStatutEnAttente, models.UserStatutValide,
		models.UserStatutValide, models.UserStatutRejete,
	}
	statutsApprenant := []models.UserStatut{
		models.UserStatutEnAttente, models.UserStatutActif,
		models.UserStatutActif, models.UserStatutActif,
	}

	build := func(i int, role models.Role, statut models.UserStatut) models.User {
		prenom, nom := generateRandomName()
		email := fmt.Sprintf("%s.%s%d@cfp.test", strings.ToLower(prenom), strings.ToLower(nom), i)
		user := models.User{
			Nom:       nom,
			Prenom:    prenom,
			Email:     email,
			Password:  string(hashedPassword),
			Role:      role,
			Statut:    statut,
			Telephone: fmt.Sprintf("+2217%d%07d", r.Intn(8)+1, r.Intn(10000000)),
		}
		if role == models.RoleFormateur && statut == models.UserStatutValide {
			code := fmt.Sprintf("SEED%04d", r.Intn(10000))
			user.CodeFormateur = &code
		}
		return user
	}

	for i := 0; i < numFormateurs; i++ {
		user := build(i, models.RoleFormateur, statutsFormateur[r.Intn(len(statutsFormateur))])
		if err := db.Create(&user).Error; err != nil {
			log.Printf("Failed to create formateur %s: %v", user.Email, err)
			continue
		}
		users = append(users, user)
	}
	for i := 0; i < numApprenants; i++ {
		user := build(numFormateurs+i, models.RoleApprenant, statutsApprenant[r.Intn(len(statutsApprenant))])
		if err := db.Create(&user).Error; err != nil {
			log.Printf("Failed to create apprenant %s: %v", user.Email, err)
			continue
		}
		users = append(users, user)
	}

	return users, nil
}

func createDemandes(db *gorm.DB, users []models.User, numConges, numPermissions int) error {
	eligible := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.Role != models.RoleAdmin && u.CanLogin() {
			eligible = append(eligible, u)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for i := 0; i < numConges; i++ {
		user := eligible[r.Intn(len(eligible))]
		debut := time.Now().AddDate(0, 0, r.Intn(60)+1)
		jours := r.Intn(10) + 1
		conge := models.Conge{
			UserID:        user.ID,
			TypeConge:     typesConge[r.Intn(len(typesConge))],
			DateDebut:     debut,
			DateFin:       debut.AddDate(0, 0, jours-1),
			JoursDemandes: jours,
			Justification: justificationsConge[r.Intn(len(justificationsConge))],
			Statut:        models.DemandeStatutEnAttente,
		}
		if r.Intn(3) == 0 {
			decide(&conge.Statut, &conge.MotifRefus, &conge.ValidateurName, r)
		}
		if err := db.Create(&conge).Error; err != nil {
			return err
		}
	}

	for i := 0; i < numPermissions; i++ {
		user := eligible[r.Intn(len(eligible))]
		permission := models.Permission{
			UserID:         user.ID,
			DatePermission: time.Now().AddDate(0, 0, r.Intn(30)+1),
			HeureDebut:     fmt.Sprintf("%02d:00", r.Intn(4)+8),
			HeureFin:       fmt.Sprintf("%02d:00", r.Intn(5)+13),
			Justification:  justificationsPermission[r.Intn(len(justificationsPermission))],
			Statut:         models.DemandeStatutEnAttente,
		}
		if r.Intn(3) == 0 {
			decide(&permission.Statut, &permission.MotifRefus, &permission.ValidateurName, r)
		}
		if err := db.Create(&permission).Error; err != nil {
			return err
		}
	}

	return nil
}

func decide(statut *models.DemandeStatut, motif **string, validateur *string, r *rand.Rand) {
	*validateur = "CFP Admin"
	if r.Intn(2) == 0 {
		*statut = models.DemandeStatutApprouve
		return
	}
	*statut = models.DemandeStatutRefuse
	reason := "Effectif insuffisant sur la période demandée."
	*motif = &reason
}

func createInscriptions(db *gorm.DB, users []models.User, formations []models.Formation) error {
	if len(formations) == 0 {
		return nil
	}

	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	count := 0
	for _, u := range users {
		if u.Role != models.RoleApprenant || u.Statut != models.UserStatutActif {
			continue
		}
		formation := formations[r.Intn(len(formations))]
		statuts := []models.InscriptionStatut{
			models.InscriptionStatutEnAttente,
			models.InscriptionStatutValide,
			models.InscriptionStatutValide,
		}
		inscription := models.Inscription{
			UserID:      u.ID,
			FormationID: formation.ID,
			Statut:      statuts[r.Intn(len(statuts))],
		}
		if err := db.Create(&inscription).Error; err != nil {
			// unique user+formation pairs only
			continue
		}
		count++

		if inscription.Statut == models.InscriptionStatutValide && formation.Prix > 0 && r.Intn(2) == 0 {
			now := time.Now()
			paiement := models.Paiement{
				InscriptionID: inscription.ID,
				Montant:       formation.Prix / 2,
				Methode:       methodesPaiement[r.Intn(len(methodesPaiement))],
				Statut:        models.PaiementStatutPaye,
				DatePaiement:  &now,
			}
			if err := db.Create(&paiement).Error; err != nil {
				return err
			}
		}
	}
	log.Printf("✓ %d inscriptions created", count)
	return nil
}
