package repository

import (
	"context"

	"github.com/yukikurage/report-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormDocumentRepository is a GORM implementation of DocumentRepository
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &GormDocumentRepository{db: db}
}

func (r *GormDocumentRepository) CreateChecklist(ctx context.Context, checklist *models.Checklist) error {
	return r.db.WithContext(ctx).Create(checklist).Error
}

func (r *GormDocumentRepository) FindChecklist(ctx context.Context, id uint64) (*models.Checklist, error) {
	var checklist models.Checklist
	if err := r.db.WithContext(ctx).First(&checklist, id).Error; err != nil {
		return nil, err
	}
	return &checklist, nil
}

func (r *GormDocumentRepository) ListChecklists(ctx context.Context, checklistType *models.ChecklistType) ([]models.Checklist, error) {
	query := r.db.WithContext(ctx).Order("uploaded_at DESC, id DESC")
	if checklistType != nil {
		query = query.Where("type = ?", *checklistType)
	}

	var checklists []models.Checklist
	if err := query.Find(&checklists).Error; err != nil {
		return nil, err
	}
	return checklists, nil
}

func (r *GormDocumentRepository) DeleteChecklist(ctx context.Context, id uint64) error {
	return deleteByID(ctx, r.db, &models.Checklist{}, id)
}

func (r *GormDocumentRepository) CreateMaterial(ctx context.Context, material *models.Material) error {
	return r.db.WithContext(ctx).Omit("UploadedBy").Create(material).Error
}

func (r *GormDocumentRepository) FindMaterial(ctx context.Context, id uint64) (*models.Material, error) {
	var material models.Material
	if err := r.db.WithContext(ctx).First(&material, id).Error; err != nil {
		return nil, err
	}
	return &material, nil
}

func (r *GormDocumentRepository) ListMaterials(ctx context.Context, section string) ([]models.Material, error) {
	query := r.db.WithContext(ctx).Order("uploaded_at DESC, id DESC")
	if section != "" {
		query = query.Where("section = ?", section)
	}

	var materials []models.Material
	if err := query.Find(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}

func (r *GormDocumentRepository) DeleteMaterial(ctx context.Context, id uint64) error {
	return deleteByID(ctx, r.db, &models.Material{}, id)
}

func deleteByID(ctx context.Context, db *gorm.DB, model any, id uint64) error {
	result := db.WithContext(ctx).Delete(model, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
