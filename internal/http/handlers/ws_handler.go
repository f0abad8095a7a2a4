package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ignatzorin/studio-backend/internal/http/handlers/common"
	"github.com/ignatzorin/studio-backend/internal/service"
	"github.com/ignatzorin/studio-backend/internal/ws"
)

// WSHandler отвечает за установку WebSocket соединений фида заявок.
type WSHandler struct {
	quotes       *service.QuoteService
	tokenManager *service.TokenManager
	upgrader     websocket.Upgrader
}

// NewWSHandler создаёт новый хэндлер.
func NewWSHandler(quotes *service.QuoteService, tokens *service.TokenManager) *WSHandler {
	return &WSHandler{
		quotes:       quotes,
		tokenManager: tokens,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handle обслуживает GET /api/ws?token=...
// Токен передаётся в query, потому что браузерный WebSocket API
// не позволяет задавать заголовок Authorization.
func (h *WSHandler) Handle(c *gin.Context) {
	rawToken := c.Query("token")
	if rawToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access токен обязателен"})
		return
	}

	subject, err := h.tokenManager.ParseAccess(rawToken)
	if err != nil || subject.ID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "невалидный access токен"})
		return
	}

	// Подписку открываем до апгрейда: если хранилище недоступно,
	// клиент получает обычный HTTP-ответ с кодом ошибки.
	sub, err := h.quotes.Watch(c.Request.Context(), subject)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		sub.Close()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	client := ws.NewClient(conn, sub)
	client.Run(c.Request.Context())
}
