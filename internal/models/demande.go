package models

import "time"

// DemandeStatut is the decision state shared by leave and permission requests.
type DemandeStatut string

const (
	// DemandeStatutEnAttente is the initial state of every request.
	DemandeStatutEnAttente DemandeStatut = "en_attente"
	// DemandeStatutApprouve is terminal; no transition leaves it.
	DemandeStatutApprouve DemandeStatut = "approuve"
	// DemandeStatutRefuse is terminal; refusal always carries a motif.
	DemandeStatutRefuse DemandeStatut = "refuse"
)

// ValidDecision reports whether the statut is an admissible admin decision.
func (s DemandeStatut) ValidDecision() bool {
	return s == DemandeStatutApprouve || s == DemandeStatutRefuse
}

// Conge is a multi-day leave request submitted by a formateur or apprenant.
type Conge struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	UserID         uint          `gorm:"not null;index" json:"user_id"`
	User           *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TypeConge      string        `gorm:"size:50;not null" json:"type_conge"`
	DateDebut      time.Time     `gorm:"type:date;not null" json:"date_debut"`
	DateFin        time.Time     `gorm:"type:date;not null" json:"date_fin"`
	JoursDemandes  int           `gorm:"not null" json:"jours_demandes"`
	Justification  string        `gorm:"type:text" json:"justification"`
	ContactUrgence string        `gorm:"size:255" json:"contact_urgence"`
	Document       string        `gorm:"size:500" json:"document"`
	Statut         DemandeStatut `gorm:"type:varchar(20);not null;default:'en_attente';index:idx_conges_statut" json:"statut"`
	ValidateurName string        `gorm:"size:200" json:"validateur_name"`
	// MotifRefus is set if and only if Statut is refuse.
	MotifRefus *string   `gorm:"type:text" json:"motif_refus,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Conge) TableName() string {
	return "conges"
}

// Permission is a short same-day absence request.
type Permission struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	UserID         uint          `gorm:"not null;index" json:"user_id"`
	User           *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	DatePermission time.Time     `gorm:"type:date;not null" json:"date_permission"`
	HeureDebut     string        `gorm:"size:10;not null" json:"heure_debut"`
	HeureFin       string        `gorm:"size:10;not null" json:"heure_fin"`
	Justification  string        `gorm:"type:text" json:"justification"`
	Statut         DemandeStatut `gorm:"type:varchar(20);not null;default:'en_attente';index:idx_permissions_statut" json:"statut"`
	ValidateurName string        `gorm:"size:200" json:"validateur_name"`
	MotifRefus     *string       `gorm:"type:text" json:"motif_refus,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Permission) TableName() string {
	return "permissions"
}
