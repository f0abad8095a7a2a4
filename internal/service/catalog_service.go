package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/studio-backend/internal/models"
	"github.com/ignatzorin/studio-backend/internal/pkg/apperror"
	"github.com/ignatzorin/studio-backend/internal/repository"
	"github.com/ignatzorin/studio-backend/internal/validation"
)

// CatalogRepository описывает зависимости CatalogService от слоя хранилища.
type CatalogRepository interface {
	ListServices(ctx context.Context) ([]models.Service, error)
	CreateService(ctx context.Context, service *models.Service) error
	UpdateService(ctx context.Context, service *models.Service) error
	DeleteService(ctx context.Context, id uuid.UUID) error
	ListProjects(ctx context.Context) ([]models.Project, error)
	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	CreateProject(ctx context.Context, project *models.Project) error
	UpdateProject(ctx context.Context, project *models.Project) error
	DeleteProject(ctx context.Context, id uuid.UUID) error
}

// CatalogService управляет маркетинговым каталогом: услугами и портфолио.
// Чтение публичное, изменения доступны только администратору.
type CatalogService struct {
	repo CatalogRepository
}

// NewCatalogService создаёт сервис каталога.
func NewCatalogService(repo CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

// ListServices возвращает все услуги.
func (s *CatalogService) ListServices(ctx context.Context) ([]models.Service, error) {
	services, err := s.repo.ListServices(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnavailable, "не удалось загрузить услуги")
	}
	return services, nil
}

// SaveService создаёт или обновляет услугу.
func (s *CatalogService) SaveService(ctx context.Context, subject *Subject, service *models.Service) error {
	if err := requireAdmin(subject); err != nil {
		return err
	}

	if err := validation.ValidateCatalogTitle(service.Title); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateNonEmpty("описание", service.Description); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	if service.ID == uuid.Nil {
		if err := s.repo.CreateService(ctx, service); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeUnavailable, "не удалось сохранить услугу")
		}
		return nil
	}

	if err := s.repo.UpdateService(ctx, service); err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return apperror.New(apperror.ErrCodeNotFound, "услуга не найдена")
		}
		return apperror.Wrap(err, apperror.ErrCodeUnavailable, "не удалось сохранить услугу")
	}
	return nil
}

// DeleteService удаляет услугу.
func (s *CatalogService) DeleteService(ctx context.Context, subject *Subject, id uuid.UUID) error {
	if err := requireAdmin(subject); err != nil {
		return err
	}

	if err := s.repo.DeleteService(ctx, id); err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return apperror.New(apperror.ErrCodeNotFound, "услуга не найдена")
		}
		return apperror.Wrap(err, apperror.ErrCodeUnavailable, "не удалось удалить услугу")
	}
	return nil
}

// ListProjects возвращает портфолио, новые работы первыми.
func (s *CatalogService) ListProjects(ctx context.Context) ([]models.Project, error) {
	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnavailable, "не удалось загрузить портфолио")
	}
	return projects, nil
}

// SaveProject создаёт или обновляет проект портфолио.
func (s *CatalogService) SaveProject(ctx context.Context, subject *Subject, project *models.Project) error {
	if err := requireAdmin(subject); err != nil {
		return err
	}

	if err := validation.ValidateCatalogTitle(project.Title); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateTechnologies(project.Technologies); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateExternalLink(project.Link); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateExternalLink(project.GithubURL); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	if project.ID == uuid.Nil {
		if err := s.repo.CreateProject(ctx, project); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeUnavailable, "не удалось сохранить проект")
		}
		return nil
	}

	if err := s.repo.UpdateProject(ctx, project); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return apperror.New(apperror.ErrCodeNotFound, "проект не найден")
		}
		return apperror.Wrap(err, apperror.ErrCodeUnavailable, "не удалось сохранить проект")
	}
	return nil
}

// DeleteProject удаляет проект портфолио.
func (s *CatalogService) DeleteProject(ctx context.Context, subject *Subject, id uuid.UUID) error {
	if err := requireAdmin(subject); err != nil {
		return err
	}

	if err := s.repo.DeleteProject(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return apperror.New(apperror.ErrCodeNotFound, "проект не найден")
		}
		return apperror.Wrap(err, apperror.ErrCodeUnavailable, "не удалось удалить проект")
	}
	return nil
}

// requireAdmin проверяет, что операцию выполняет администратор.
func requireAdmin(subject *Subject) error {
	if subject == nil || subject.ID == uuid.Nil {
		return apperror.ErrUnauthorized
	}
	if !subject.IsAdmin() {
		return apperror.ErrForbidden
	}
	return nil
}
