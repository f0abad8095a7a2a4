package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/studio-backend/internal/models"
)

// Ошибки уровня репозитория.
var (
	ErrServiceNotFound = errors.New("service not found")
	ErrProjectNotFound = errors.New("project not found")
)

// CatalogRepository отвечает за маркетинговый каталог: услуги и портфолио.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository создаёт экземпляр репозитория.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListServices возвращает все услуги.
func (r *CatalogRepository) ListServices(ctx context.Context) ([]models.Service, error) {
	services := []models.Service{}
	query := `SELECT * FROM services ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &services, query); err != nil {
		return nil, fmt.Errorf("catalog repository: list services %w", err)
	}
	return services, nil
}

// CreateService сохраняет услугу.
func (r *CatalogRepository) CreateService(ctx context.Context, service *models.Service) error {
	query := `
		INSERT INTO services (title, description, icon, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		service.Title, service.Description, service.Icon, service.Price,
	).Scan(&service.ID, &service.CreatedAt, &service.UpdatedAt); err != nil {
		return fmt.Errorf("catalog repository: create service %w", err)
	}
	return nil
}

// UpdateService обновляет услугу.
func (r *CatalogRepository) UpdateService(ctx context.Context, service *models.Service) error {
	query := `
		UPDATE services
		SET title = $1, description = $2, icon = $3, price = $4, updated_at = NOW()
		WHERE id = $5
	`
	result, err := r.db.ExecContext(ctx, query,
		service.Title, service.Description, service.Icon, service.Price, service.ID)
	if err != nil {
		return fmt.Errorf("catalog repository: update service %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrServiceNotFound
	}
	return nil
}

// DeleteService удаляет услугу.
func (r *CatalogRepository) DeleteService(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("catalog repository: delete service %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrServiceNotFound
	}
	return nil
}

// ListProjects возвращает все проекты портфолио, новые первыми.
func (r *CatalogRepository) ListProjects(ctx context.Context) ([]models.Project, error) {
	projects := []models.Project{}
	query := `SELECT * FROM projects ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &projects, query); err != nil {
		return nil, fmt.Errorf("catalog repository: list projects %w", err)
	}
	return projects, nil
}

// GetProject возвращает проект по идентификатору.
func (r *CatalogRepository) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := r.db.GetContext(ctx, &project, `SELECT * FROM projects WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("catalog repository: get project %w", err)
	}
	return &project, nil
}

// CreateProject сохраняет проект портфолио.
func (r *CatalogRepository) CreateProject(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (title, description, image_id, technologies, link, github_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		project.Title, project.Description, project.ImageID,
		pq.Array(project.Technologies), project.Link, project.GithubURL,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt); err != nil {
		return fmt.Errorf("catalog repository: create project %w", err)
	}
	return nil
}

// UpdateProject обновляет проект портфолио.
func (r *CatalogRepository) UpdateProject(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects
		SET title = $1, description = $2, image_id = $3, technologies = $4, link = $5, github_url = $6, updated_at = NOW()
		WHERE id = $7
	`
	result, err := r.db.ExecContext(ctx, query,
		project.Title, project.Description, project.ImageID,
		pq.Array(project.Technologies), project.Link, project.GithubURL, project.ID)
	if err != nil {
		return fmt.Errorf("catalog repository: update project %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// DeleteProject удаляет проект портфолио.
func (r *CatalogRepository) DeleteProject(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("catalog repository: delete project %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrProjectNotFound
	}
	return nil
}
