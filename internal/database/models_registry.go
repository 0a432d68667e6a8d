package database

import "cfp/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Conge{},
		&models.Permission{},
		&models.Notification{},
		&models.Message{},
		&models.Formation{},
		&models.Atelier{},
		&models.Inscription{},
		&models.Paiement{},
	}
}
