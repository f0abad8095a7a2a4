package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ignatzorin/studio-backend/internal/feed"
	"github.com/ignatzorin/studio-backend/internal/models"
	"github.com/ignatzorin/studio-backend/internal/pkg/apperror"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client связывает одно WebSocket соединение с подпиской фида.
// Жизненный цикл подписки принадлежит клиенту: закрытие соединения
// всегда освобождает подписку.
type Client struct {
	conn *websocket.Conn
	sub  *feed.Subscription
}

// NewClient создаёт нового клиента поверх открытой подписки.
func NewClient(conn *websocket.Conn, sub *feed.Subscription) *Client {
	return &Client{
		conn: conn,
		sub:  sub,
	}
}

// Run запускает обработку входящих и исходящих сообщений.
// Блокируется до разрыва соединения или завершения подписки.
func (c *Client) Run(ctx context.Context) {
	go c.writePumpSafe()
	c.readPump(ctx)
}

// writePumpSafe запускает writePump с обработкой panic.
func (c *Client) writePumpSafe() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("WebSocket writePump panic recovered: %v\nStack trace:\n%s\n", r, debug.Stack())
			c.Close()
		}
	}()
	c.writePump()
}

// Close закрывает подписку и соединение.
func (c *Client) Close() {
	c.sub.Close()
	c.conn.Close()
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("WebSocket readPump panic recovered: %v\nStack trace:\n%s\n", r, debug.Stack())
		}
		c.Close()
	}()

	c.conn.SetReadLimit(4 * 1024)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			// Клиент только получает эмиссии, входящие сообщения не обрабатываются.
			if _, _, err := c.conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case quotes, ok := <-c.sub.Updates():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Подписка завершена: либо штатно, либо терминальной ошибкой.
				if err := c.sub.Err(); err != nil {
					_ = c.writeError(err)
				}
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.writeQuotes(quotes); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// writeQuotes отправляет полный список заявок одним сообщением.
// Контракт WebSocket API: поле "type" содержит имя события, "data" — полезную нагрузку.
func (c *Client) writeQuotes(quotes []models.Quote) error {
	payload := map[string]any{
		"type": "quotes",
		"data": quotes,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ws: не удалось сериализовать сообщение: %w", err)
	}
	return c.conn.WriteMessage(websocket.TextMessage, raw)
}

// writeError отправляет терминальную ошибку подписки перед закрытием.
func (c *Client) writeError(err error) error {
	payload := map[string]any{
		"type": "error",
		"data": map[string]any{
			"code":  apperror.Code(err),
			"error": err.Error(),
		},
	}
	raw, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		return marshalErr
	}
	return c.conn.WriteMessage(websocket.TextMessage, raw)
}
