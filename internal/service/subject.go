package service

import (
	"github.com/google/uuid"

	"github.com/ignatzorin/studio-backend/internal/models"
)

// Subject — аутентифицированный субъект операции: клиент или администратор.
// Передаётся в каждую операцию явно, глобального состояния сессии нет.
type Subject struct {
	ID    uuid.UUID
	Email string
	Role  string
}

// IsAdmin сообщает, имеет ли субъект права администратора.
func (s *Subject) IsAdmin() bool {
	return s != nil && s.Role == models.RoleAdmin
}
