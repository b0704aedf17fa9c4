package dto

import (
	"time"

	"github.com/yukikurage/report-tracker-api/internal/models"
)

// ChecklistDTO exposes the storage locator as URL.
type ChecklistDTO struct {
	ID         uint64               `json:"id"`
	Type       models.ChecklistType `json:"type"`
	FileName   string               `json:"file_name"`
	URL        string               `json:"url"`
	UploadedAt time.Time            `json:"uploaded_at"`
}

type MaterialDTO struct {
	ID           uint64    `json:"id"`
	Section      string    `json:"section"`
	Title        string    `json:"title"`
	FileName     string    `json:"file_name"`
	URL          string    `json:"url"`
	UploadedByID *uint64   `json:"uploaded_by_id"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

func ToChecklistDTO(c models.Checklist) ChecklistDTO {
	return ChecklistDTO{
		ID:         c.ID,
		Type:       c.Type,
		FileName:   c.FileName,
		URL:        c.Path,
		UploadedAt: c.UploadedAt,
	}
}

func ToChecklistDTOs(checklists []models.Checklist) []ChecklistDTO {
	out := make([]ChecklistDTO, len(checklists))
	for i, c := range checklists {
		out[i] = ToChecklistDTO(c)
	}
	return out
}

func ToMaterialDTO(m models.Material) MaterialDTO {
	return MaterialDTO{
		ID:           m.ID,
		Section:      m.Section,
		Title:        m.Title,
		FileName:     m.FileName,
		URL:          m.Path,
		UploadedByID: m.UploadedByID,
		UploadedAt:   m.UploadedAt,
	}
}

func ToMaterialDTOs(materials []models.Material) []MaterialDTO {
	out := make([]MaterialDTO, len(materials))
	for i, m := range materials {
		out[i] = ToMaterialDTO(m)
	}
	return out
}
