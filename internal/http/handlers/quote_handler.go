package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/studio-backend/internal/dto"
	"github.com/ignatzorin/studio-backend/internal/http/handlers/common"
	"github.com/ignatzorin/studio-backend/internal/models"
	"github.com/ignatzorin/studio-backend/internal/service"
)

// QuoteHandler предоставляет HTTP слой для заявок на расчёт стоимости.
type QuoteHandler struct {
	quotes *service.QuoteService
}

// NewQuoteHandler создаёт хэндлер.
func NewQuoteHandler(quotes *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{quotes: quotes}
}

// Submit обрабатывает POST /api/quotes — подача заявки.
func (h *QuoteHandler) Submit(c *gin.Context) {
	subject, err := common.CurrentSubject(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.SubmitQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quote, err := h.quotes.Submit(c.Request.Context(), subject, service.SubmitQuoteInput{
		ProjectType: req.ProjectType,
		Description: req.Description,
		Budget:      req.Budget,
		Deadline:    req.Deadline,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, quote)
}

// List обрабатывает GET /api/quotes — снимок списка заявок.
// Администратор видит все заявки, клиент — только свои.
// Опциональный query-параметр status фильтрует по статусу.
func (h *QuoteHandler) List(c *gin.Context) {
	subject, err := common.CurrentSubject(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var status *string
	if raw := c.Query("status"); raw != "" {
		status = &raw
	}

	quotes, err := h.quotes.List(c.Request.Context(), subject, status)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"quotes": quotes,
		"total":  len(quotes),
	})
}

// ListMy обрабатывает GET /api/quotes/my — заявки текущего пользователя.
// В отличие от List, и для админа возвращает только его собственные заявки.
func (h *QuoteHandler) ListMy(c *gin.Context) {
	subject, err := common.CurrentSubject(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var status *string
	if raw := c.Query("status"); raw != "" {
		status = &raw
	}

	owner := &service.Subject{ID: subject.ID, Email: subject.Email, Role: models.RoleClient}
	quotes, err := h.quotes.List(c.Request.Context(), owner, status)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"quotes": quotes,
		"total":  len(quotes),
	})
}

// Get обрабатывает GET /api/quotes/:id.
func (h *QuoteHandler) Get(c *gin.Context) {
	subject, err := common.CurrentSubject(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	quoteID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "некорректный идентификатор заявки")
		return
	}

	quote, err := h.quotes.Get(c.Request.Context(), subject, quoteID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

// UpdateStatus обрабатывает PUT /api/quotes/:id/status — смена статуса
// администратором. Повторная установка текущего статуса — успешный no-op.
func (h *QuoteHandler) UpdateStatus(c *gin.Context) {
	subject, err := common.CurrentSubject(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	quoteID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "некорректный идентификатор заявки")
		return
	}

	var req dto.UpdateQuoteStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.quotes.UpdateStatus(c.Request.Context(), subject, quoteID, req.Status); err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "статус заявки обновлён"})
}

// Stats обрабатывает GET /api/quotes/stats — счётчики для админской панели.
func (h *QuoteHandler) Stats(c *gin.Context) {
	subject, err := common.CurrentSubject(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	stats, err := h.quotes.Stats(c.Request.Context(), subject)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
