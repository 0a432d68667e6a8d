package models

import "time"

// Formation is a course offered by the training center.
type Formation struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Titre       string    `gorm:"size:200;not null" json:"titre"`
	Description string    `gorm:"type:text" json:"description"`
	DateDebut   time.Time `gorm:"type:date" json:"date_debut"`
	DateFin     time.Time `gorm:"type:date" json:"date_fin"`
	Prix        float64   `gorm:"not null;default:0" json:"prix"`
	Places      int       `gorm:"not null;default:0" json:"places"`
	FormateurID *uint     `gorm:"index" json:"formateur_id"`
	Formateur   *User     `gorm:"foreignKey:FormateurID" json:"formateur,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Formation) TableName() string {
	return "formations"
}

// Atelier is a one-off workshop, scheduled within or outside a formation.
type Atelier struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Titre       string     `gorm:"size:200;not null" json:"titre"`
	Description string     `gorm:"type:text" json:"description"`
	Date        time.Time  `gorm:"type:date" json:"date"`
	FormationID *uint      `gorm:"index" json:"formation_id"`
	Formation   *Formation `gorm:"foreignKey:FormationID" json:"formation,omitempty"`
	FormateurID *uint      `gorm:"index" json:"formateur_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Atelier) TableName() string {
	return "ateliers"
}
