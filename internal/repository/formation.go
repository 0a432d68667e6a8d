package repository

import (
	"context"
	"errors"

	"cfp/internal/cache"
	"cfp/internal/models"

	"gorm.io/gorm"
)

// FormationRepository defines persistence operations for trainings and workshops.
type FormationRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Formation, error)
	Create(ctx context.Context, f *models.Formation) error
	Update(ctx context.Context, f *models.Formation) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, limit, offset int) ([]models.Formation, error)
	ListAteliers(ctx context.Context, formationID uint) ([]models.Atelier, error)
	CreateAtelier(ctx context.Context, a *models.Atelier) error
}

// InscriptionRepository defines persistence operations for enrollments and payments.
type InscriptionRepository interface {
	Create(ctx context.Context, i *models.Inscription) error
	GetByID(ctx context.Context, id uint) (*models.Inscription, error)
	ListByFormation(ctx context.Context, formationID uint) ([]models.Inscription, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Inscription, error)
	UpdateStatut(ctx context.Context, id uint, statut models.InscriptionStatut) error
	CountPending(ctx context.Context) (int64, error)
	CreatePaiement(ctx context.Context, p *models.Paiement) error
	ListPaiements(ctx context.Context, inscriptionID uint) ([]models.Paiement, error)
}

type formationRepository struct {
	db *gorm.DB
}

// NewFormationRepository returns a new FormationRepository implementation.
func NewFormationRepository(db *gorm.DB) FormationRepository {
	return &formationRepository{db: db}
}

func (r *formationRepository) GetByID(ctx context.Context, id uint) (*models.Formation, error) {
	var formation models.Formation
	key := cache.FormationKey(id)

	err := cache.Aside(ctx, key, &formation, cache.FormationTTL, func() error {
		if err := r.db.WithContext(ctx).First(&formation, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Formation", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &formation, nil
}

func (r *formationRepository) Create(ctx context.Context, f *models.Formation) error {
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *formationRepository) Update(ctx context.Context, f *models.Formation) error {
	if err := r.db.WithContext(ctx).Save(f).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateFormation(ctx, f.ID)
	return nil
}

func (r *formationRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Formation{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateFormation(ctx, id)
	return nil
}

func (r *formationRepository) List(ctx context.Context, limit, offset int) ([]models.Formation, error) {
	var formations []models.Formation
	if err := r.db.WithContext(ctx).
		Order("date_debut DESC").
		Limit(limit).Offset(offset).
		Find(&formations).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return formations, nil
}

func (r *formationRepository) ListAteliers(ctx context.Context, formationID uint) ([]models.Atelier, error) {
	var ateliers []models.Atelier
	if err := r.db.WithContext(ctx).
		Where("formation_id = ?", formationID).
		Order("date ASC").
		Find(&ateliers).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ateliers, nil
}

func (r *formationRepository) CreateAtelier(ctx context.Context, a *models.Atelier) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

type inscriptionRepository struct {
	db *gorm.DB
}

// NewInscriptionRepository returns a new InscriptionRepository implementation.
func NewInscriptionRepository(db *gorm.DB) InscriptionRepository {
	return &inscriptionRepository{db: db}
}

func (r *inscriptionRepository) Create(ctx context.Context, i *models.Inscription) error {
	if err := r.db.WithContext(ctx).Create(i).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Inscription déjà enregistrée pour cette formation")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *inscriptionRepository) GetByID(ctx context.Context, id uint) (*models.Inscription, error) {
	var inscription models.Inscription
	if err := r.db.WithContext(ctx).First(&inscription, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Inscription", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &inscription, nil
}

func (r *inscriptionRepository) ListByFormation(ctx context.Context, formationID uint) ([]models.Inscription, error) {
	var inscriptions []models.Inscription
	if err := r.db.WithContext(ctx).
		Where("formation_id = ?", formationID).
		Find(&inscriptions).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return inscriptions, nil
}

func (r *inscriptionRepository) ListByUser(ctx context.Context, userID uint) ([]models.Inscription, error) {
	var inscriptions []models.Inscription
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&inscriptions).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return inscriptions, nil
}

func (r *inscriptionRepository) UpdateStatut(ctx context.Context, id uint, statut models.InscriptionStatut) error {
	res := r.db.WithContext(ctx).
		Model(&models.Inscription{}).
		Where("id = ?", id).
		Update("statut", statut)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Inscription", id)
	}
	return nil
}

func (r *inscriptionRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Inscription{}).
		Where("statut = ?", models.InscriptionStatutEnAttente).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *inscriptionRepository) CreatePaiement(ctx context.Context, p *models.Paiement) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *inscriptionRepository) ListPaiements(ctx context.Context, inscriptionID uint) ([]models.Paiement, error) {
	var paiements []models.Paiement
	if err := r.db.WithContext(ctx).
		Where("inscription_id = ?", inscriptionID).
		Order("created_at DESC").
		Find(&paiements).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return paiements, nil
}
