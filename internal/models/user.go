package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is the closed set of account roles. Authorization decisions go through
// Role methods instead of inline string comparisons in handlers.
type Role string

const (
	// RoleAdmin manages the training center: validates accounts, decides requests.
	RoleAdmin Role = "admin"
	// RoleFormateur is a trainer/instructor account.
	RoleFormateur Role = "formateur"
	// RoleApprenant is a trainee/student account.
	RoleApprenant Role = "apprenant"
)

// Valid reports whether the role is one of the known variants.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleFormateur, RoleApprenant:
		return true
	}
	return false
}

// UserStatut is the account validation workflow state.
type UserStatut string

const (
	// UserStatutEnAttente is the initial state of self-registered accounts.
	UserStatutEnAttente UserStatut = "en_attente"
	// UserStatutActif is the initial state of admin-created accounts; they bypass the workflow.
	UserStatutActif UserStatut = "actif"
	// UserStatutValide marks an account validated by an admin.
	UserStatutValide UserStatut = "valide"
	// UserStatutRejete marks an account rejected by an admin.
	UserStatutRejete UserStatut = "rejete"
	// UserStatutInactif marks a deactivated account.
	UserStatutInactif UserStatut = "inactif"
)

// User represents an account of the training center.
type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Nom       string     `gorm:"size:100;not null" json:"nom"`
	Prenom    string     `gorm:"size:100;not null" json:"prenom"`
	Email     string     `gorm:"size:255;unique;not null" json:"email"`
	Password  string     `gorm:"not null" json:"-"`
	Role      Role       `gorm:"type:varchar(20);not null;default:'apprenant';index" json:"role"`
	Statut    UserStatut `gorm:"type:varchar(20);not null;default:'en_attente';index:idx_users_statut" json:"statut"`
	Telephone string     `gorm:"size:30" json:"telephone"`
	// CodeFormateur is non-nil only for validated formateur accounts; it is the
	// one-time access code issued on validation and rotated by the explicit
	// regenerate operation.
	CodeFormateur *string        `gorm:"size:32" json:"code_formateur,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the account carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanLogin reports whether the account statut allows authentication.
// Rejected and deactivated accounts are refused at login.
func (u *User) CanLogin() bool {
	return u.Statut != UserStatutRejete && u.Statut != UserStatutInactif
}

// FullName renders "Prenom Nom" for email templates and notifications.
func (u *User) FullName() string {
	return u.Prenom + " " + u.Nom
}
