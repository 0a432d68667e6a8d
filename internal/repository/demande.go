package repository

import (
	"context"
	"errors"

	"cfp/internal/models"

	"gorm.io/gorm"
)

// Decision carries the fields written when an admin decides a request.
type Decision struct {
	Statut         models.DemandeStatut
	ValidateurName string
	MotifRefus     *string
}

// CongeRepository defines persistence operations for leave requests.
type CongeRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Conge, error)
	Create(ctx context.Context, conge *models.Conge) error
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Conge, error)
	List(ctx context.Context, statut models.DemandeStatut, limit, offset int) ([]models.Conge, error)
	// Decide applies the decision only while the request is still
	// pending. It reports whether a row was updated.
	Decide(ctx context.Context, id uint, d Decision) (bool, error)
	CountPending(ctx context.Context) (int64, error)
	WithTx(tx *gorm.DB) CongeRepository
}

// PermissionRepository defines persistence operations for short absence requests.
type PermissionRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Permission, error)
	Create(ctx context.Context, permission *models.Permission) error
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Permission, error)
	List(ctx context.Context, statut models.DemandeStatut, limit, offset int) ([]models.Permission, error)
	Decide(ctx context.Context, id uint, d Decision) (bool, error)
	CountPending(ctx context.Context) (int64, error)
	WithTx(tx *gorm.DB) PermissionRepository
}

type congeRepository struct {
	db *gorm.DB
}

// NewCongeRepository returns a new CongeRepository implementation.
func NewCongeRepository(db *gorm.DB) CongeRepository {
	return &congeRepository{db: db}
}

func (r *congeRepository) WithTx(tx *gorm.DB) CongeRepository {
	return &congeRepository{db: tx}
}

func (r *congeRepository) GetByID(ctx context.Context, id uint) (*models.Conge, error) {
	var conge models.Conge
	if err := r.db.WithContext(ctx).Preload("User").First(&conge, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Conge", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &conge, nil
}

func (r *congeRepository) Create(ctx context.Context, conge *models.Conge) error {
	if err := r.db.WithContext(ctx).Create(conge).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *congeRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Conge, error) {
	var conges []models.Conge
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&conges).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return conges, nil
}

func (r *congeRepository) List(ctx context.Context, statut models.DemandeStatut, limit, offset int) ([]models.Conge, error) {
	var conges []models.Conge
	q := r.db.WithContext(ctx).Preload("User")
	if statut != "" {
		q = q.Where("statut = ?", statut)
	}
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&conges).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return conges, nil
}

func (r *congeRepository) Decide(ctx context.Context, id uint, d Decision) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Conge{}).
		Where("id = ? AND statut = ?", id, models.DemandeStatutEnAttente).
		Updates(map[string]interface{}{
			"statut":          d.Statut,
			"validateur_name": d.ValidateurName,
			"motif_refus":     d.MotifRefus,
		})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *congeRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Conge{}).
		Where("statut = ?", models.DemandeStatutEnAttente).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

type permissionRepository struct {
	db *gorm.DB
}

// NewPermissionRepository returns a new PermissionRepository implementation.
func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &permissionRepository{db: db}
}

func (r *permissionRepository) WithTx(tx *gorm.DB) PermissionRepository {
	return &permissionRepository{db: tx}
}

func (r *permissionRepository) GetByID(ctx context.Context, id uint) (*models.Permission, error) {
	var permission models.Permission
	if err := r.db.WithContext(ctx).Preload("User").First(&permission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Permission", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &permission, nil
}

func (r *permissionRepository) Create(ctx context.Context, permission *models.Permission) error {
	if err := r.db.WithContext(ctx).Create(permission).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *permissionRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Permission, error) {
	var permissions []models.Permission
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&permissions).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return permissions, nil
}

func (r *permissionRepository) List(ctx context.Context, statut models.DemandeStatut, limit, offset int) ([]models.Permission, error) {
	var permissions []models.Permission
	q := r.db.WithContext(ctx).Preload("User")
	if statut != "" {
		q = q.Where("statut = ?", statut)
	}
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&permissions).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return permissions, nil
}

func (r *permissionRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Permission{}).
		Where("statut = ?", models.DemandeStatutEnAttente).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *permissionRepository) Decide(ctx context.Context, id uint, d Decision) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Permission{}).
		Where("id = ? AND statut = ?", id, models.DemandeStatutEnAttente).
		Updates(map[string]interface{}{
			"statut":          d.Statut,
			"validateur_name": d.ValidateurName,
			"motif_refus":     d.MotifRefus,
		})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}
