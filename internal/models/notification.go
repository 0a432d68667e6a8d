package models

import "time"

// NotificationType tags the workflow event a notification describes.
type NotificationType string

const (
	NotificationTypeCongeDemande       NotificationType = "conge_demande"
	NotificationTypePermissionDemande  NotificationType = "permission_demande"
	NotificationTypeNewFormateur       NotificationType = "new_formateur"
	NotificationTypeNewApprenant       NotificationType = "new_apprenant"
	NotificationTypeCongeApprouve      NotificationType = "conge_approuve"
	NotificationTypeCongeRefuse        NotificationType = "conge_refuse"
	NotificationTypePermissionApprouve NotificationType = "permission_approuve"
	NotificationTypePermissionRefuse   NotificationType = "permission_refuse"
	NotificationTypeFormateurValide    NotificationType = "formateur_validated"
	NotificationTypeApprenantValide    NotificationType = "apprenant_validated"
)

// EntiteType identifies the kind of row a notification points at.
type EntiteType string

const (
	EntiteTypeUser       EntiteType = "user"
	EntiteTypeConge      EntiteType = "conge"
	EntiteTypePermission EntiteType = "permission"
)

// Notification is one entry of the admin feed. The feed is append-only except
// for the IsRead flip, which is monotonic false to true. Notifications are a
// feed, not the source of truth for pending counts.
type Notification struct {
	ID      uint             `gorm:"primaryKey" json:"id"`
	Type    NotificationType `gorm:"type:varchar(40);not null;index" json:"type"`
	Message string           `gorm:"type:text;not null" json:"message"`
	// EntiteType + EntiteID form a soft polymorphic reference to the
	// triggering row; there is no FK constraint.
	EntiteType   EntiteType `gorm:"type:varchar(20);not null" json:"entite_type"`
	EntiteID     uint       `gorm:"not null;index:idx_notifications_entite" json:"entite_id"`
	IsRead       bool       `gorm:"not null;default:false;index:idx_notifications_is_read" json:"is_read"`
	DateCreation time.Time  `gorm:"autoCreateTime" json:"date_creation"`
}

// TableName specifies the table name for GORM.
func (Notification) TableName() string {
	return "notifications"
}
