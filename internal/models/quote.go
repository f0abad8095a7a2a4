package models

import (
	"time"

	"github.com/google/uuid"
)

// Quote описывает заявку клиента на расчёт стоимости проекта.
// UserEmail — снимок email на момент создания; при смене email пользователя
// старые заявки не обновляются.
type Quote struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	UserEmail   string    `db:"user_email" json:"user_email"`
	ProjectType string    `db:"project_type" json:"project_type"`
	Description string    `db:"description" json:"description"`
	Budget      string    `db:"budget" json:"budget"`
	Deadline    time.Time `db:"deadline" json:"deadline"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// QuoteFilter ограничивает выборку заявок. Пустой фильтр — все заявки.
type QuoteFilter struct {
	// OwnerID ограничивает выборку заявками одного пользователя.
	OwnerID *uuid.UUID
	// Status ограничивает выборку заявками с указанным статусом.
	Status *string
}

// QuoteStats содержит счётчики заявок по статусам для админской панели.
type QuoteStats struct {
	Total      int `db:"total" json:"total"`
	Pending    int `db:"pending" json:"pending"`
	InProgress int `db:"in_progress" json:"in_progress"`
	Completed  int `db:"completed" json:"completed"`
	Cancelled  int `db:"cancelled" json:"cancelled"`
}
