package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/studio-backend/internal/feed"
	"github.com/ignatzorin/studio-backend/internal/logger"
	"github.com/ignatzorin/studio-backend/internal/models"
	"github.com/ignatzorin/studio-backend/internal/pkg/apperror"
	"github.com/ignatzorin/studio-backend/internal/repository"
	"github.com/ignatzorin/studio-backend/internal/validation"
)

// QuoteRepository описывает зависимости QuoteService от слоя хранилища.
type QuoteRepository interface {
	Create(ctx context.Context, quote *models.Quote) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	List(ctx context.Context, filter models.QuoteFilter) ([]models.Quote, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Stats(ctx context.Context) (*models.QuoteStats, error)
}

// QuoteFeed описывает зависимости сервиса от фида синхронизации.
type QuoteFeed interface {
	Subscribe(ctx context.Context, filter feed.Filter) (*feed.Subscription, error)
	Notify()
}

// SubmitQuoteInput содержит поля формы заявки.
type SubmitQuoteInput struct {
	ProjectType string
	Description string
	Budget      string
	Deadline    string
}

// QuoteService инкапсулирует жизненный цикл заявок: подача, наблюдение,
// смена статуса администратором.
type QuoteService struct {
	repo QuoteRepository
	feed QuoteFeed
}

// NewQuoteService создаёт сервис заявок.
func NewQuoteService(repo QuoteRepository) *QuoteService {
	return &QuoteService{repo: repo}
}

// SetFeed устанавливает фид синхронизации для оповещения подписчиков.
func (s *QuoteService) SetFeed(f QuoteFeed) {
	s.feed = f
}

// Submit валидирует форму и создаёт заявку со статусом pending.
// Валидационные ошибки не доходят до хранилища; запись создаётся
// одной атомарной вставкой, частичных записей не бывает.
func (s *QuoteService) Submit(ctx context.Context, subject *Subject, in SubmitQuoteInput) (*models.Quote, error) {
	if subject == nil || subject.ID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}

	if err := validation.ValidateProjectType(in.ProjectType); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateQuoteDescription(in.Description); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateBudget(in.Budget); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	deadline, err := validation.ParseDeadline(in.Deadline)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	quote := &models.Quote{
		UserID:      subject.ID,
		UserEmail:   subject.Email,
		ProjectType: in.ProjectType,
		Description: in.Description,
		Budget:      in.Budget,
		Deadline:    deadline,
		Status:      models.QuoteStatusPending,
	}

	if err := s.repo.Create(ctx, quote); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnavailable, "не удалось сохранить заявку, попробуйте позже")
	}

	s.notifyFeed()

	if logger.Log != nil {
		logger.Log.WithFields(map[string]interface{}{
			"quote_id": quote.ID,
			"user_id":  quote.UserID,
		}).Info("quote service: создана заявка")
	}

	return quote, nil
}

// Watch открывает живую подписку на заявки. Администратор наблюдает
// все заявки, клиент — только собственные.
func (s *QuoteService) Watch(ctx context.Context, subject *Subject) (*feed.Subscription, error) {
	if subject == nil || subject.ID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}

	if s.feed == nil {
		return nil, apperror.New(apperror.ErrCodeUnavailable, "фид заявок недоступен")
	}

	filter := feed.Owner(subject.ID)
	if subject.IsAdmin() {
		filter = feed.All()
	}

	return s.feed.Subscribe(ctx, filter)
}

// List возвращает одноразовый снимок заявок. Клиент видит только свои,
// администратор — все, опционально отфильтрованные по статусу.
func (s *QuoteService) List(ctx context.Context, subject *Subject, status *string) ([]models.Quote, error) {
	if subject == nil || subject.ID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}

	if status != nil {
		if err := validation.ValidateQuoteStatus(*status); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}

	filter := models.QuoteFilter{Status: status}
	if !subject.IsAdmin() {
		ownerID := subject.ID
		filter.OwnerID = &ownerID
	}

	quotes, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnavailable, "не удалось загрузить заявки")
	}

	return quotes, nil
}

// Get возвращает заявку по идентификатору. Чужая заявка доступна
// только администратору.
func (s *QuoteService) Get(ctx context.Context, subject *Subject, id uuid.UUID) (*models.Quote, error) {
	if subject == nil || subject.ID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}

	quote, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrQuoteNotFound) {
			return nil, apperror.ErrQuoteNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeUnavailable, "не удалось загрузить заявку")
	}

	if !subject.IsAdmin() && quote.UserID != subject.ID {
		return nil, apperror.ErrForbidden
	}

	return quote, nil
}

// UpdateStatus меняет статус заявки. Операция доступна только
// администратору. Граф переходов не ограничен: любой статус может
// смениться любым, повторная установка текущего значения — успешный no-op.
func (s *QuoteService) UpdateStatus(ctx context.Context, subject *Subject, id uuid.UUID, status string) error {
	if subject == nil || subject.ID == uuid.Nil {
		return apperror.ErrUnauthorized
	}
	if !subject.IsAdmin() {
		return apperror.ErrForbidden
	}

	if err := validation.ValidateQuoteStatus(status); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrQuoteNotFound) {
			return apperror.ErrQuoteNotFound
		}
		return apperror.Wrap(err, apperror.ErrCodeUnavailable, "не удалось обновить статус заявки")
	}

	s.notifyFeed()

	if logger.Log != nil {
		logger.Log.WithFields(map[string]interface{}{
			"quote_id": id,
			"status":   status,
			"admin_id": subject.ID,
		}).Info("quote service: обновлён статус заявки")
	}

	return nil
}

// Stats возвращает счётчики заявок для админской панели.
func (s *QuoteService) Stats(ctx context.Context, subject *Subject) (*models.QuoteStats, error) {
	if subject == nil || subject.ID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}
	if !subject.IsAdmin() {
		return nil, apperror.ErrForbidden
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnavailable, "не удалось загрузить статистику")
	}

	return stats, nil
}

// notifyFeed оповещает фид об изменении набора заявок.
func (s *QuoteService) notifyFeed() {
	if s.feed != nil {
		s.feed.Notify()
	}
}
