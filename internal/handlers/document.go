package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/report-tracker-api/internal/constants"
	"github.com/yukikurage/report-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/report-tracker-api/internal/errors"
	"github.com/yukikurage/report-tracker-api/internal/middleware"
	"github.com/yukikurage/report-tracker-api/internal/services"
	"go.uber.org/zap"
)

// DocumentHandler serves checklist and utility material uploads.
type DocumentHandler struct {
	documentService *services.DocumentService
	log             *zap.Logger
}

func NewDocumentHandler(documentService *services.DocumentService, log *zap.Logger) *DocumentHandler {
	return &DocumentHandler{documentService: documentService, log: log}
}

func (h *DocumentHandler) ListChecklists(c *gin.Context) {
	checklists, err := h.documentService.ListChecklists(c.Request.Context(), middleware.GetActor(c), c.Query("type"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checklists": dto.ToChecklistDTOs(checklists)})
}

// UploadChecklist expects multipart fields "type" and "file".
func (h *DocumentHandler) UploadChecklist(c *gin.Context) {
	file, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer file.close()

	checklist, err := h.documentService.UploadChecklist(c.Request.Context(), middleware.GetActor(c), c.PostForm("type"), file.upload)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToChecklistDTO(*checklist))
}

func (h *DocumentHandler) DeleteChecklist(c *gin.Context) {
	id, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.documentService.DeleteChecklist(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Checklist deleted successfully"})
}

func (h *DocumentHandler) ListMaterials(c *gin.Context) {
	materials, err := h.documentService.ListMaterials(c.Request.Context(), middleware.GetActor(c), c.Query("section"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"materials": dto.ToMaterialDTOs(materials)})
}

// UploadMaterial expects multipart fields "section", "title" and "file".
func (h *DocumentHandler) UploadMaterial(c *gin.Context) {
	file, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer file.close()

	material, err := h.documentService.UploadMaterial(c.Request.Context(), middleware.GetActor(c), services.UploadMaterialInput{
		Section: c.PostForm("section"),
		Title:   c.PostForm("title"),
		File:    file.upload,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToMaterialDTO(*material))
}

func (h *DocumentHandler) DeleteMaterial(c *gin.Context) {
	id, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.documentService.DeleteMaterial(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Material deleted successfully"})
}

type openedUpload struct {
	upload services.Upload
	file   multipart.File
}

func (u openedUpload) close() {
	u.file.Close()
}

// openUpload enforces the size limit and opens the "file" form field. Admin
// checks happen in the service, after the body has been read.
func (h *DocumentHandler) openUpload(c *gin.Context) (openedUpload, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, constants.MaxUploadSize)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apierrors.RespondWithError(c, http.StatusRequestEntityTooLarge,
				apierrors.NewAPIError(apierrors.ErrCodeInvalidInput, uploadTooLarge()))
			return openedUpload{}, false
		}
		apierrors.BadRequest(c, "A file is required in the \"file\" field")
		return openedUpload{}, false
	}

	file, err := header.Open()
	if err != nil {
		h.log.Error("Failed to open uploaded file", zap.Error(err))
		apierrors.InternalError(c, "")
		return openedUpload{}, false
	}
	return openedUpload{
		upload: services.Upload{Name: header.Filename, Body: file},
		file:   file,
	}, true
}
