package seed

import (
	"testing"

	"cfp/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestFormations_Idempotent(t *testing.T) {
	t.Parallel()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	err = db.AutoMigrate(&models.Formation{})
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	first, err := Formations(db)
	if err != nil {
		t.Fatalf("first seed: %v", err)
	}
	second, err := Formations(db)
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if len(first) != len(BuiltInFormations) || len(second) != len(BuiltInFormations) {
		t.Fatalf("expected %d formations per pass, got %d then %d", len(BuiltInFormations), len(first), len(second))
	}

	var count int64
	err = db.Model(&models.Formation{}).Count(&count).Error
	if err != nil {
		t.Fatalf("count formations: %v", err)
	}
	if count != int64(len(BuiltInFormations)) {
		t.Fatalf("expected %d formations after reseed, got %d", len(BuiltInFormations), count)
	}

	for _, item := range BuiltInFormations {
		var f models.Formation
		err = db.Where("titre = ?", item.Titre).First(&f).Error
		if err != nil {
			t.Fatalf("missing formation %s: %v", item.Titre, err)
		}
		if f.Prix != item.Prix {
			t.Fatalf("formation %s: expected prix %.0f, got %.0f", item.Titre, item.Prix, f.Prix)
		}
		if f.Places != item.Places {
			t.Fatalf("formation %s: expected %d places, got %d", item.Titre, item.Places, f.Places)
		}
		if !f.DateFin.After(f.DateDebut) {
			t.Fatalf("formation %s: date_fin %v not after date_debut %v", item.Titre, f.DateFin, f.DateDebut)
		}
	}
}

func TestFormations_UpdatesExisting(t *testing.T) {
	t.Parallel()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Formation{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if _, err := Formations(db); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// drift a catalog row, reseed must bring it back
	err = db.Model(&models.Formation{}).
		Where("titre = ?", "Maçonnerie").
		Updates(map[string]interface{}{"prix": 1, "places": 1}).Error
	if err != nil {
		t.Fatalf("drift: %v", err)
	}

	if _, err := Formations(db); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	var f models.Formation
	if err := db.Where("titre = ?", "Maçonnerie").First(&f).Error; err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if f.Prix != 80000 || f.Places != 14 {
		t.Fatalf("expected catalog values restored, got prix=%.0f places=%d", f.Prix, f.Places)
	}
}
