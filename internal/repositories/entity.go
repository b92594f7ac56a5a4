package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"talenthub/matching-engine/internal/models"
)

// EntityRepository is a read-only view over the entity store owned by the
// external profile/CRUD service. Hard filters are pushed into SQL so the
// candidate pool handed to scoring (and the brute-force search fallback)
// stays bounded.
type EntityRepository interface {
	FindByID(id uuid.UUID) (*models.Entity, error)
	FindByType(entityType models.EntityType, filters models.Filters, prefs *models.RecommendationPreferences) ([]models.Entity, error)
	FindWithEmbeddings(entityType models.EntityType) ([]models.Entity, error)
}

type entityRepository struct {
	db *gorm.DB
}

func NewEntityRepository(db *gorm.DB) EntityRepository {
	return &entityRepository{db: db}
}

// FindByID implements EntityRepository.
func (r *entityRepository) FindByID(id uuid.UUID) (*models.Entity, error) {
	var entity models.Entity
	if err := r.db.Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", models.ErrEntityNotFound, id)
		}
		return nil, fmt.Errorf("failed to find entity: %w", err)
	}
	return &entity, nil
}

// FindByType implements EntityRepository.
func (r *entityRepository) FindByType(
	entityType models.EntityType,
	filters models.Filters,
	prefs *models.RecommendationPreferences,
) ([]models.Entity, error) {
	query := r.db.Where("type = ?", entityType)

	// Salary filters match on range overlap: an entity passes when its
	// advertised range intersects the requested one.
	if filters.MinSalary != nil {
		query = query.Where("salary_max >= ?", *filters.MinSalary)
	}
	if filters.MaxSalary != nil {
		query = query.Where("salary_min <= ?", *filters.MaxSalary)
	}
	if len(filters.EmploymentTypes) > 0 {
		query = query.Where("employment_type IN ?", filters.EmploymentTypes)
	}
	if filters.RemoteOnly {
		query = query.Where("location_remote = ?", true)
	}
	if len(filters.Industries) > 0 {
		query = query.Where("industry IN ?", filters.Industries)
	}

	if prefs != nil {
		if len(prefs.ExcludedIndustries) > 0 {
			query = query.Where("industry NOT IN ?", []string(prefs.ExcludedIndustries))
		}
		if len(prefs.ExcludedCompanies) > 0 {
			query = query.Where("company NOT IN ?", []string(prefs.ExcludedCompanies))
		}
	}

	var entities []models.Entity
	if err := query.Order("id ASC").Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("failed to find entities: %w", err)
	}
	return entities, nil
}

// FindWithEmbeddings implements EntityRepository. Used by the index backfill
// script to rebuild the similarity index from persisted embeddings.
func (r *entityRepository) FindWithEmbeddings(entityType models.EntityType) ([]models.Entity, error) {
	var entities []models.Entity
	err := r.db.
		Where("type = ?", entityType).
		Where("embedding IS NOT NULL").
		Order("id ASC").
		Find(&entities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find entities with embeddings: %w", err)
	}

	filtered := entities[:0]
	for _, e := range entities {
		if e.HasEmbedding() {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}
