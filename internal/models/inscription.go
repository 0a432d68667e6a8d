package models

import "time"

// InscriptionStatut is the enrollment review state.
type InscriptionStatut string

const (
	InscriptionStatutEnAttente InscriptionStatut = "en_attente"
	InscriptionStatutValide    InscriptionStatut = "valide"
	InscriptionStatutRejete    InscriptionStatut = "rejete"
)

// Inscription is an enrollment of an apprenant into a formation.
type Inscription struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	UserID      uint              `gorm:"not null;uniqueIndex:idx_inscriptions_user_formation" json:"user_id"`
	FormationID uint              `gorm:"not null;uniqueIndex:idx_inscriptions_user_formation" json:"formation_id"`
	User        *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Formation   *Formation        `gorm:"foreignKey:FormationID" json:"formation,omitempty"`
	Statut      InscriptionStatut `gorm:"type:varchar(20);not null;default:'en_attente';index:idx_inscriptions_statut" json:"statut"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Inscription) TableName() string {
	return "inscriptions"
}

// PaiementStatut is the payment settlement state.
type PaiementStatut string

const (
	PaiementStatutEnAttente PaiementStatut = "en_attente"
	PaiementStatutPaye      PaiementStatut = "paye"
	PaiementStatutAnnule    PaiementStatut = "annule"
)

// Paiement records a payment against an enrollment.
type Paiement struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	InscriptionID uint           `gorm:"not null;index" json:"inscription_id"`
	Inscription   *Inscription   `gorm:"foreignKey:InscriptionID" json:"inscription,omitempty"`
	Montant       float64        `gorm:"not null" json:"montant"`
	Methode       string         `gorm:"size:50" json:"methode"`
	Statut        PaiementStatut `gorm:"type:varchar(20);not null;default:'en_attente'" json:"statut"`
	DatePaiement  *time.Time     `json:"date_paiement,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Paiement) TableName() string {
	return "paiements"
}
