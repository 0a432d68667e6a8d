// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"cfp/internal/cache"
	"cfp/internal/models"

	"gorm.io/gorm"
)

// UserFilter narrows List queries.
type UserFilter struct {
	Role   models.Role
	Statut models.UserStatut
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter UserFilter, limit, offset int) ([]models.User, error)
	ListPending(ctx context.Context) ([]models.User, error)
	// UpdateStatut transitions a user's statut only when the current
	// value is one of `from`. It reports whether a row was updated, so
	// callers can distinguish a lost race from success.
	UpdateStatut(ctx context.Context, id uint, from []models.UserStatut, to models.UserStatut) (bool, error)
	SetCodeFormateur(ctx context.Context, id uint, code string) error
	CountByStatut(ctx context.Context) (map[models.UserStatut]int64, error)
	CountByRole(ctx context.Context) (map[models.Role]int64, error)
	WithTx(tx *gorm.DB) UserRepository
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) WithTx(tx *gorm.DB) UserRepository {
	return &userRepository{db: tx}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Un compte existe déjà avec cet email")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.User{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter, limit, offset int) ([]models.User, error) {
	var users []models.User
	q := r.db.WithContext(ctx)
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.Statut != "" {
		q = q.Where("statut = ?", filter.Statut)
	}
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) ListPending(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Where("statut = ?", models.UserStatutEnAttente).
		Order("created_at ASC").
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) UpdateStatut(ctx context.Context, id uint, from []models.UserStatut, to models.UserStatut) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND statut IN ?", id, from).
		Update("statut", to)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		cache.InvalidateUser(ctx, id)
	}
	return res.RowsAffected > 0, nil
}

func (r *userRepository) SetCodeFormateur(ctx context.Context, id uint, code string) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("code_formateur", code)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) CountByStatut(ctx context.Context) (map[models.UserStatut]int64, error) {
	type row struct {
		Statut models.UserStatut
		N      int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("statut, COUNT(*) AS n").
		Group("statut").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	out := make(map[models.UserStatut]int64, len(rows))
	for _, r := range rows {
		out[r.Statut] = r.N
	}
	return out, nil
}

func (r *userRepository) CountByRole(ctx context.Context) (map[models.Role]int64, error) {
	type row struct {
		Role models.Role
		N    int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("role, COUNT(*) AS n").
		Group("role").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	out := make(map[models.Role]int64, len(rows))
	for _, r := range rows {
		out[r.Role] = r.N
	}
	return out, nil
}
