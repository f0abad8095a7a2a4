package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/studio-backend/internal/dto"
	"github.com/ignatzorin/studio-backend/internal/http/handlers/common"
	"github.com/ignatzorin/studio-backend/internal/models"
	"github.com/ignatzorin/studio-backend/internal/service"
)

// CatalogHandler предоставляет HTTP слой для услуг и портфолио.
// Чтение публичное, изменения доступны только администратору.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler создаёт хэндлер.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListServices обрабатывает GET /api/services.
func (h *CatalogHandler) ListServices(c *gin.Context) {
	services, err := h.catalog.ListServices(c.Request.Context())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"services": services})
}

// CreateService обрабатывает POST /api/services.
func (h *CatalogHandler) CreateService(c *gin.Context) {
	h.saveService(c, uuid.Nil)
}

// UpdateService обрабатывает PUT /api/services/:id.
func (h *CatalogHandler) UpdateService(c *gin.Context) {
	serviceID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "некорректный идентификатор услуги")
		return
	}
	h.saveService(c, serviceID)
}

// DeleteService обрабатывает DELETE /api/services/:id.
func (h *CatalogHandler) DeleteService(c *gin.Context) {
	subject, err := common.CurrentSubject(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	serviceID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "некорректный идентификатор услуги")
		return
	}

	if err := h.catalog.DeleteService(c.Request.Context(), subject, serviceID); err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListProjects обрабатывает GET /api/projects.
func (h *CatalogHandler) ListProjects(c *gin.Context) {
	projects, err := h.catalog.ListProjects(c.Request.Context())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// CreateProject обрабатывает POST /api/projects.
func (h *CatalogHandler) CreateProject(c *gin.Context) {
	h.saveProject(c, uuid.Nil)
}

// UpdateProject обрабатывает PUT /api/projects/:id.
func (h *CatalogHandler) UpdateProject(c *gin.Context) {
	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "некорректный идентификатор проекта")
		return
	}
	h.saveProject(c, projectID)
}

// DeleteProject обрабатывает DELETE /api/projects/:id.
func (h *CatalogHandler) DeleteProject(c *gin.Context) {
	subject, err := common.CurrentSubject(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "некорректный идентификатор проекта")
		return
	}

	if err := h.catalog.DeleteProject(c.Request.Context(), subject, projectID); err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// saveService общий путь создания и обновления услуги.
func (h *CatalogHandler) saveService(c *gin.Context, id uuid.UUID) {
	subject, err := common.CurrentSubject(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := &models.Service{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Icon:        req.Icon,
		Price:       req.Price,
	}

	if err := h.catalog.SaveService(c.Request.Context(), subject, svc); err != nil {
		common.RespondAppError(c, err)
		return
	}

	status := http.StatusOK
	if id == uuid.Nil {
		status = http.StatusCreated
	}
	c.JSON(status, svc)
}

// saveProject общий путь создания и обновления проекта портфолио.
func (h *CatalogHandler) saveProject(c *gin.Context, id uuid.UUID) {
	subject, err := common.CurrentSubject(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project := &models.Project{
		ID:           id,
		Title:        req.Title,
		Description:  req.Description,
		Technologies: req.Technologies,
		Link:         req.Link,
		GithubURL:    req.GithubURL,
	}

	if req.ImageID != nil {
		imageID, err := uuid.Parse(*req.ImageID)
		if err != nil {
			common.RespondBadRequest(c, "некорректный идентификатор изображения")
			return
		}
		project.ImageID = &imageID
	}

	if err := h.catalog.SaveProject(c.Request.Context(), subject, project); err != nil {
		common.RespondAppError(c, err)
		return
	}

	status := http.StatusOK
	if id == uuid.Nil {
		status = http.StatusCreated
	}
	c.JSON(status, project)
}
