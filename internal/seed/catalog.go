package seed

import (
	"errors"
	"fmt"
	"time"

	"cfp/internal/models"

	"gorm.io/gorm"
)

// BuiltInFormation is a permanent catalog entry of the training center.
type BuiltInFormation struct {
	Titre       string
	Description string
	Prix        float64
	Places      int
	DureeMois   int
}

// BuiltInFormations defines the standing course catalog.
var BuiltInFormations = []BuiltInFormation{
	{Titre: "Couture et confection", Description: "Patronage, coupe et confection de vêtements.", Prix: 75000, Places: 20, DureeMois: 6},
	{Titre: "Informatique bureautique", Description: "Traitement de texte, tableur et outils numériques.", Prix: 60000, Places: 25, DureeMois: 4},
	{Titre: "Mécanique automobile", Description: "Diagnostic, entretien et réparation de véhicules.", Prix: 90000, Places: 15, DureeMois: 9},
	{Titre: "Restauration et cuisine", Description: "Techniques culinaires et hygiène alimentaire.", Prix: 70000, Places: 18, DureeMois: 6},
	{Titre: "Électricité bâtiment", Description: "Installation et maintenance électrique domestique.", Prix: 85000, Places: 16, DureeMois: 8},
	{Titre: "Coiffure et esthétique", Description: "Coupe, soins capillaires et esthétique.", Prix: 65000, Places: 20, DureeMois: 6},
	{Titre: "Maçonnerie", Description: "Gros œuvre, finitions et lecture de plans.", Prix: 80000, Places: 14, DureeMois: 9},
	{Titre: "Comptabilité de gestion", Description: "Tenue de comptes et gestion de petite entreprise.", Prix: 95000, Places: 22, DureeMois: 6},
}

// Formations seeds the permanent catalog. Existing entries are matched
// by titre and updated rather than duplicated.
func Formations(db *gorm.DB) ([]models.Formation, error) {
	formations := make([]models.Formation, 0, len(BuiltInFormations))

	for _, item := range BuiltInFormations {
		debut := nextMonthStart()
		formation := models.Formation{
			Titre:       item.Titre,
			Description: item.Description,
			Prix:        item.Prix,
			Places:      item.Places,
			DateDebut:   debut,
			DateFin:     debut.AddDate(0, item.DureeMois, 0),
		}

		var existing models.Formation
		err := db.Where("titre = ?", item.Titre).First(&existing).Error
		switch {
		case err == nil:
			existing.Description = item.Description
			existing.Prix = item.Prix
			existing.Places = item.Places
			if err := db.Save(&existing).Error; err != nil {
				return nil, fmt.Errorf("seed formation %s: %w", item.Titre, err)
			}
			formations = append(formations, existing)
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := db.Create(&formation).Error; err != nil {
				return nil, fmt.Errorf("seed formation %s: %w", item.Titre, err)
			}
			formations = append(formations, formation)
		default:
			return nil, fmt.Errorf("seed formation %s: %w", item.Titre, err)
		}
	}

	return formations, nil
}

func nextMonthStart() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}
