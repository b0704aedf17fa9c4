package services

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/yukikurage/report-tracker-api/internal/models"
	"github.com/yukikurage/report-tracker-api/internal/policy"
	"github.com/yukikurage/report-tracker-api/internal/repository"
	"github.com/yukikurage/report-tracker-api/internal/storage"
	"github.com/yukikurage/report-tracker-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DocumentService manages checklist and material uploads. Everyone signed in
// can read; only admins upload or delete.
type DocumentService struct {
	docRepo repository.DocumentRepository
	store   storage.Store
	log     *zap.Logger
}

func NewDocumentService(docRepo repository.DocumentRepository, store storage.Store, log *zap.Logger) *DocumentService {
	return &DocumentService{docRepo: docRepo, store: store, log: log}
}

// Upload is a file received from a client.
type Upload struct {
	Name string
	Body io.Reader
}

func (s *DocumentService) UploadChecklist(ctx context.Context, actor *policy.Actor, checklistType string, file Upload) (*models.Checklist, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	kind, ok := models.ParseChecklistType(checklistType)
	if !ok {
		return nil, validationError("type must be one of daily, weekly, yearly")
	}
	if file.Body == nil || strings.TrimSpace(file.Name) == "" {
		return nil, validationError("file is required")
	}

	locator, err := s.store.Put(ctx, file.Body, utils.StoredName("checklist", file.Name))
	if err != nil {
		return nil, storageFailure("store checklist", err)
	}

	checklist := &models.Checklist{Type: kind, FileName: file.Name, Path: locator}
	if err := s.docRepo.CreateChecklist(ctx, checklist); err != nil {
		s.discard(ctx, locator)
		return nil, storageFailure("create checklist", err)
	}
	return checklist, nil
}

func (s *DocumentService) ListChecklists(ctx context.Context, actor *policy.Actor, checklistType string) ([]models.Checklist, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	var filter *models.ChecklistType
	if checklistType != "" {
		kind, ok := models.ParseChecklistType(checklistType)
		if !ok {
			return nil, validationError("unknown checklist type %q", checklistType)
		}
		filter = &kind
	}

	checklists, err := s.docRepo.ListChecklists(ctx, filter)
	if err != nil {
		return nil, storageFailure("list checklists", err)
	}
	return checklists, nil
}

func (s *DocumentService) DeleteChecklist(ctx context.Context, actor *policy.Actor, id uint64) error {
	if err := policy.RequireAdmin(actor); err != nil {
		return err
	}

	checklist, err := s.docRepo.FindChecklist(ctx, id)
	if err != nil {
		return notFoundOr(err, "find checklist")
	}
	if err := s.docRepo.DeleteChecklist(ctx, id); err != nil {
		return notFoundOr(err, "delete checklist")
	}
	s.discard(ctx, checklist.Path)
	return nil
}

type UploadMaterialInput struct {
	Section string
	Title   string
	File    Upload
}

func (s *DocumentService) UploadMaterial(ctx context.Context, actor *policy.Actor, input UploadMaterialInput) (*models.Material, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	section := strings.TrimSpace(input.Section)
	title := strings.TrimSpace(input.Title)
	if section == "" || title == "" {
		return nil, validationError("section and title are required")
	}
	if input.File.Body == nil || strings.TrimSpace(input.File.Name) == "" {
		return nil, validationError("file is required")
	}

	locator, err := s.store.Put(ctx, input.File.Body, "materials/"+utils.StoredName("material", input.File.Name))
	if err != nil {
		return nil, storageFailure("store material", err)
	}

	uploader := actor.ID
	material := &models.Material{
		Section:      section,
		Title:        title,
		FileName:     input.File.Name,
		Path:         locator,
		UploadedByID: &uploader,
	}
	if err := s.docRepo.CreateMaterial(ctx, material); err != nil {
		s.discard(ctx, locator)
		return nil, storageFailure("create material", err)
	}
	return material, nil
}

func (s *DocumentService) ListMaterials(ctx context.Context, actor *policy.Actor, section string) ([]models.Material, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	materials, err := s.docRepo.ListMaterials(ctx, strings.TrimSpace(section))
	if err != nil {
		return nil, storageFailure("list materials", err)
	}
	return materials, nil
}

func (s *DocumentService) DeleteMaterial(ctx context.Context, actor *policy.Actor, id uint64) error {
	if err := policy.RequireAdmin(actor); err != nil {
		return err
	}

	material, err := s.docRepo.FindMaterial(ctx, id)
	if err != nil {
		return notFoundOr(err, "find material")
	}
	if err := s.docRepo.DeleteMaterial(ctx, id); err != nil {
		return notFoundOr(err, "delete material")
	}
	s.discard(ctx, material.Path)
	return nil
}

// discard removes stored bytes that no row points at any more. Failures only
// leave an orphaned file, so they are logged and swallowed.
func (s *DocumentService) discard(ctx context.Context, locator string) {
	err := s.store.Delete(ctx, locator)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		s.log.Warn("Stored file already missing", zap.String("locator", locator))
	default:
		s.log.Warn("Failed to delete stored file", zap.String("locator", locator), zap.Error(err))
	}
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return storageFailure(op, err)
}
