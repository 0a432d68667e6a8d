package service

import (
	"context"
	"strings"
	"time"

	"cfp/internal/models"
	"cfp/internal/repository"
)

// FormationService manages the training catalog, enrollments and payments.
type FormationService struct {
	formationRepo   repository.FormationRepository
	inscriptionRepo repository.InscriptionRepository
	userRepo        repository.UserRepository
}

// NewFormationService creates the catalog service.
func NewFormationService(
	formationRepo repository.FormationRepository,
	inscriptionRepo repository.InscriptionRepository,
	userRepo repository.UserRepository,
) *FormationService {
	return &FormationService{
		formationRepo:   formationRepo,
		inscriptionRepo: inscriptionRepo,
		userRepo:        userRepo,
	}
}

// FormationInput carries formation create/update fields.
type FormationInput struct {
	Titre       string
	Description string
	DateDebut   time.Time
	DateFin     time.Time
	Prix        float64
	Places      int
	FormateurID *uint
}

func (in FormationInput) validate() error {
	if strings.TrimSpace(in.Titre) == "" {
		return models.NewValidationError("Le titre est requis")
	}
	if in.Prix < 0 {
		return models.NewValidationError("Le prix ne peut pas être négatif")
	}
	if in.Places < 0 {
		return models.NewValidationError("Le nombre de places ne peut pas être négatif")
	}
	return nil
}

// Create adds a formation to the catalog.
func (s *FormationService) Create(ctx context.Context, in FormationInput) (*models.Formation, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	formation := &models.Formation{
		Titre:       in.Titre,
		Description: in.Description,
		DateDebut:   in.DateDebut,
		DateFin:     in.DateFin,
		Prix:        in.Prix,
		Places:      in.Places,
		FormateurID: in.FormateurID,
	}
	if err := s.formationRepo.Create(ctx, formation); err != nil {
		return nil, err
	}
	return formation, nil
}

// Update overwrites a formation's fields.
func (s *FormationService) Update(ctx context.Context, id uint, in FormationInput) (*models.Formation, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	formation, err := s.formationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	formation.Titre = in.Titre
	formation.Description = in.Description
	formation.DateDebut = in.DateDebut
	formation.DateFin = in.DateFin
	formation.Prix = in.Prix
	formation.Places = in.Places
	formation.FormateurID = in.FormateurID
	if err := s.formationRepo.Update(ctx, formation); err != nil {
		return nil, err
	}
	return formation, nil
}

// Get returns one formation.
func (s *FormationService) Get(ctx context.Context, id uint) (*models.Formation, error) {
	return s.formationRepo.GetByID(ctx, id)
}

// Delete removes a formation from the catalog.
func (s *FormationService) Delete(ctx context.Context, id uint) error {
	if _, err := s.formationRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.formationRepo.Delete(ctx, id)
}

// List pages through the catalog.
func (s *FormationService) List(ctx context.Context, limit, offset int) ([]models.Formation, error) {
	return s.formationRepo.List(ctx, limit, offset)
}

// ListAteliers returns a formation's workshops.
func (s *FormationService) ListAteliers(ctx context.Context, formationID uint) ([]models.Atelier, error) {
	return s.formationRepo.ListAteliers(ctx, formationID)
}

// CreateAtelier attaches a workshop to a formation.
func (s *FormationService) CreateAtelier(ctx context.Context, atelier *models.Atelier) error {
	if strings.TrimSpace(atelier.Titre) == "" {
		return models.NewValidationError("Le titre est requis")
	}
	if atelier.FormationID != nil {
		if _, err := s.formationRepo.GetByID(ctx, *atelier.FormationID); err != nil {
			return err
		}
	}
	return s.formationRepo.CreateAtelier(ctx, atelier)
}

// Enroll registers an apprenant into a formation. Capacity is checked
// against validated enrollments only.
func (s *FormationService) Enroll(ctx context.Context, userID, formationID uint) (*models.Inscription, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleApprenant {
		return nil, models.NewValidationError("Seuls les apprenants s'inscrivent aux formations")
	}

	formation, err := s.formationRepo.GetByID(ctx, formationID)
	if err != nil {
		return nil, err
	}

	if formation.Places > 0 {
		existing, err := s.inscriptionRepo.ListByFormation(ctx, formationID)
		if err != nil {
			return nil, err
		}
		var taken int
		for _, i := range existing {
			if i.Statut == models.InscriptionStatutValide {
				taken++
			}
		}
		if taken >= formation.Places {
			return nil, models.NewValidationError("La formation est complète")
		}
	}

	inscription := &models.Inscription{
		UserID:      userID,
		FormationID: formationID,
		Statut:      models.InscriptionStatutEnAttente,
	}
	if err := s.inscriptionRepo.Create(ctx, inscription); err != nil {
		return nil, err
	}
	return inscription, nil
}

// DecideInscription validates or rejects an enrollment.
func (s *FormationService) DecideInscription(ctx context.Context, id uint, statut models.InscriptionStatut) error {
	if statut != models.InscriptionStatutValide && statut != models.InscriptionStatutRejete {
		return models.NewValidationError("Décision d'inscription inconnue")
	}
	return s.inscriptionRepo.UpdateStatut(ctx, id, statut)
}

// ListInscriptions returns enrollments visible to the caller.
func (s *FormationService) ListInscriptions(ctx context.Context, viewer *models.User, formationID uint) ([]models.Inscription, error) {
	if viewer.IsAdmin() {
		return s.inscriptionRepo.ListByFormation(ctx, formationID)
	}
	return s.inscriptionRepo.ListByUser(ctx, viewer.ID)
}

// RecordPaiement registers a payment against an enrollment.
func (s *FormationService) RecordPaiement(ctx context.Context, inscriptionID uint, montant float64, methode string) (*models.Paiement, error) {
	if montant <= 0 {
		return nil, models.NewValidationError("Le montant doit être positif")
	}
	if _, err := s.inscriptionRepo.GetByID(ctx, inscriptionID); err != nil {
		return nil, err
	}
	now := time.Now()
	paiement := &models.Paiement{
		InscriptionID: inscriptionID,
		Montant:       montant,
		Methode:       methode,
		Statut:        models.PaiementStatutPaye,
		DatePaiement:  &now,
	}
	if err := s.inscriptionRepo.CreatePaiement(ctx, paiement); err != nil {
		return nil, err
	}
	return paiement, nil
}

// ListPaiements returns payments for an enrollment.
func (s *FormationService) ListPaiements(ctx context.Context, inscriptionID uint) ([]models.Paiement, error) {
	return s.inscriptionRepo.ListPaiements(ctx, inscriptionID)
}
