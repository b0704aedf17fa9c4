package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/report-tracker-api/internal/models"
	"github.com/yukikurage/report-tracker-api/internal/repository"
	"github.com/yukikurage/report-tracker-api/internal/storage"
	"go.uber.org/zap"
)

type memoryStore struct {
	objects map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string]string{}}
}

func (m *memoryStore) Put(_ context.Context, r io.Reader, name string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	locator := "/uploads/" + name
	m.objects[locator] = string(data)
	return locator, nil
}

func (m *memoryStore) Delete(_ context.Context, locator string) error {
	if _, ok := m.objects[locator]; !ok {
		return storage.ErrNotFound
	}
	delete(m.objects, locator)
	return nil
}

func TestDocumentService_Checklists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := newMemoryStore()
	svc := NewDocumentService(repository.NewDocumentRepository(f.db), store, zap.NewNop())

	_, err := svc.UploadChecklist(ctx, actorOf(f.alice), "harian", Upload{Name: "a.pdf", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.UploadChecklist(ctx, actorOf(f.admin), "monthly", Upload{Name: "a.pdf", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrValidation)

	checklist, err := svc.UploadChecklist(ctx, actorOf(f.admin), "harian", Upload{Name: "daily check.pdf", Body: strings.NewReader("pdf")})
	require.NoError(t, err)
	assert.Equal(t, models.ChecklistDaily, checklist.Type)
	assert.Equal(t, "daily check.pdf", checklist.FileName)
	assert.Equal(t, "pdf", store.objects[checklist.Path])

	listed, err := svc.ListChecklists(ctx, actorOf(f.alice), "daily")
	require.NoError(t, err)
	require.Len(t, listed, 1)

	listed, err = svc.ListChecklists(ctx, actorOf(f.alice), "weekly")
	require.NoError(t, err)
	assert.Empty(t, listed)

	assert.ErrorIs(t, svc.DeleteChecklist(ctx, actorOf(f.alice), checklist.ID), ErrForbidden)
	require.NoError(t, svc.DeleteChecklist(ctx, actorOf(f.admin), checklist.ID))
	assert.Empty(t, store.objects)
	assert.ErrorIs(t, svc.DeleteChecklist(ctx, actorOf(f.admin), checklist.ID), ErrNotFound)
}

func TestDocumentService_Materials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := newMemoryStore()
	svc := NewDocumentService(repository.NewDocumentRepository(f.db), store, zap.NewNop())

	_, err := svc.UploadMaterial(ctx, actorOf(f.admin), UploadMaterialInput{Section: "Boiler", File: Upload{Name: "m.pdf", Body: strings.NewReader("x")}})
	assert.ErrorIs(t, err, ErrValidation, "title is required")

	material, err := svc.UploadMaterial(ctx, actorOf(f.admin), UploadMaterialInput{
		Section: "Boiler",
		Title:   "Startup SOP",
		File:    Upload{Name: "sop.pdf", Body: strings.NewReader("sop")},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(material.Path, "/uploads/materials/material-"))
	require.NotNil(t, material.UploadedByID)
	assert.Equal(t, f.admin.ID, *material.UploadedByID)

	materials, err := svc.ListMaterials(ctx, actorOf(f.bob), "Boiler")
	require.NoError(t, err)
	assert.Len(t, materials, 1)

	require.NoError(t, svc.DeleteMaterial(ctx, actorOf(f.admin), material.ID))
	assert.Empty(t, store.objects)
}

type failingDocumentRepo struct {
	repository.DocumentRepository
}

func (failingDocumentRepo) CreateChecklist(context.Context, *models.Checklist) error {
	return errors.New("disk full")
}

func TestDocumentService_FailedInsertDiscardsFile(t *testing.T) {
	f := newFixture(t)
	store := newMemoryStore()
	svc := NewDocumentService(failingDocumentRepo{repository.NewDocumentRepository(f.db)}, store, zap.NewNop())

	_, err := svc.UploadChecklist(context.Background(), actorOf(f.admin), "weekly", Upload{Name: "w.pdf", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrStorageFailure)
	assert.Empty(t, store.objects)
}
