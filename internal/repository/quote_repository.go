package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/studio-backend/internal/models"
)

// Ошибки уровня репозитория.
var ErrQuoteNotFound = errors.New("quote not found")

// QuoteRepository отвечает за работу с заявками на расчёт стоимости.
type QuoteRepository struct {
	db *sqlx.DB
}

// NewQuoteRepository создаёт новый экземпляр.
func NewQuoteRepository(db *sqlx.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// Create сохраняет заявку. Идентификатор и created_at назначает база.
func (r *QuoteRepository) Create(ctx context.Context, quote *models.Quote) error {
	query := `
		INSERT INTO quotes (user_id, user_email, project_type, description, budget, deadline, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		quote.UserID,
		quote.UserEmail,
		quote.ProjectType,
		quote.Description,
		quote.Budget,
		quote.Deadline,
		quote.Status,
	).Scan(&quote.ID, &quote.CreatedAt); err != nil {
		return fmt.Errorf("quote repository: create %w", err)
	}

	return nil
}

// GetByID возвращает заявку по идентификатору.
func (r *QuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	query := `
		SELECT id, user_id, user_email, project_type, description, budget, deadline, status, created_at
		FROM quotes
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &quote, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("quote repository: get by id %w", err)
	}
	return &quote, nil
}

// List возвращает заявки по фильтру, отсортированные по created_at по убыванию.
// Порядок является контрактом фида синхронизации: новые заявки всегда первыми.
func (r *QuoteRepository) List(ctx context.Context, filter models.QuoteFilter) ([]models.Quote, error) {
	query := `
		SELECT id, user_id, user_email, project_type, description, budget, deadline, status, created_at
		FROM quotes
	`
	var (
		conditions []string
		args       []interface{}
	)

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	query += " ORDER BY created_at DESC"

	quotes := []models.Quote{}
	if err := r.db.SelectContext(ctx, &quotes, query, args...); err != nil {
		return nil, fmt.Errorf("quote repository: list %w", err)
	}

	return quotes, nil
}

// UpdateStatus меняет статус заявки. Никакого графа переходов нет:
// любой статус может быть перезаписан любым другим, повторная установка
// того же значения — корректный no-op.
func (r *QuoteRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE quotes SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("quote repository: update status %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("quote repository: rows affected %w", err)
	}
	if affected == 0 {
		return ErrQuoteNotFound
	}

	return nil
}

// Stats возвращает счётчики заявок по статусам.
func (r *QuoteRepository) Stats(ctx context.Context) (*models.QuoteStats, error) {
	var stats models.QuoteStats
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE status = 'in_progress') AS in_progress,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed,
			COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled
		FROM quotes
	`
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("quote repository: stats %w", err)
	}
	return &stats, nil
}
