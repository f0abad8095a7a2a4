package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/studio-backend/internal/feed"
	"github.com/ignatzorin/studio-backend/internal/models"
	"github.com/ignatzorin/studio-backend/internal/pkg/apperror"
	"github.com/ignatzorin/studio-backend/internal/repository"
)

// mockQuoteRepository реализует QuoteRepository для тестов.
type mockQuoteRepository struct {
	quotes map[uuid.UUID]*models.Quote
}

func newMockQuoteRepository() *mockQuoteRepository {
	return &mockQuoteRepository{quotes: make(map[uuid.UUID]*models.Quote)}
}

func (m *mockQuoteRepository) Create(ctx context.Context, quote *models.Quote) error {
	quote.ID = uuid.New()
	quote.CreatedAt = time.Now()
	copied := *quote
	m.quotes[quote.ID] = &copied
	return nil
}

func (m *mockQuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	if quote, ok := m.quotes[id]; ok {
		copied := *quote
		return &copied, nil
	}
	return nil, repository.ErrQuoteNotFound
}

func (m *mockQuoteRepository) List(ctx context.Context, filter models.QuoteFilter) ([]models.Quote, error) {
	var result []models.Quote
	for _, quote := range m.quotes {
		if filter.OwnerID != nil && quote.UserID != *filter.OwnerID {
			continue
		}
		if filter.Status != nil && quote.Status != *filter.Status {
			continue
		}
		result = append(result, *quote)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *mockQuoteRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	quote, ok := m.quotes[id]
	if !ok {
		return repository.ErrQuoteNotFound
	}
	quote.Status = status
	return nil
}

func (m *mockQuoteRepository) Stats(ctx context.Context) (*models.QuoteStats, error) {
	stats := &models.QuoteStats{}
	for _, quote := range m.quotes {
		stats.Total++
		switch quote.Status {
		case models.QuoteStatusPending:
			stats.Pending++
		case models.QuoteStatusInProgress:
			stats.InProgress++
		case models.QuoteStatusCompleted:
			stats.Completed++
		case models.QuoteStatusCancelled:
			stats.Cancelled++
		}
	}
	return stats, nil
}

// mockQuoteFeed считает оповещения и запоминает фильтр последней подписки.
type mockQuoteFeed struct {
	notifications int
	lastFilter    *feed.Filter
}

func (m *mockQuoteFeed) Subscribe(ctx context.Context, filter feed.Filter) (*feed.Subscription, error) {
	m.lastFilter = &filter
	return nil, nil
}

func (m *mockQuoteFeed) Notify() {
	m.notifications++
}

func clientSubject() *Subject {
	return &Subject{ID: uuid.New(), Email: "client@example.com", Role: models.RoleClient}
}

func adminSubject() *Subject {
	return &Subject{ID: uuid.New(), Email: "admin@example.com", Role: models.RoleAdmin}
}

func validInput() SubmitQuoteInput {
	return SubmitQuoteInput{
		ProjectType: models.ProjectTypeWebsite,
		Description: "Нужен корпоративный сайт для студии",
		Budget:      "R$ 5.000",
		Deadline:    "2026-12-01",
	}
}

func TestQuoteService_Submit(t *testing.T) {
	repo := newMockQuoteRepository()
	notifier := &mockQuoteFeed{}
	service := NewQuoteService(repo)
	service.SetFeed(notifier)

	subject := clientSubject()
	quote, err := service.Submit(context.Background(), subject, validInput())
	if err != nil {
		t.Fatalf("submit вернул ошибку: %v", err)
	}

	if quote.Status != models.QuoteStatusPending {
		t.Fatalf("новая заявка должна быть pending, получили %s", quote.Status)
	}
	if quote.UserEmail != subject.Email {
		t.Fatalf("email должен быть снимком на момент подачи, получили %s", quote.UserEmail)
	}
	if quote.UserID != subject.ID {
		t.Fatalf("заявка должна принадлежать автору")
	}
	if notifier.notifications != 1 {
		t.Fatalf("ожидалось одно оповещение фида, получили %d", notifier.notifications)
	}
}

func TestQuoteService_Submit_Unauthenticated(t *testing.T) {
	service := NewQuoteService(newMockQuoteRepository())

	_, err := service.Submit(context.Background(), nil, validInput())
	if !apperror.IsUnauthorized(err) {
		t.Fatalf("ожидалась ошибка авторизации, получили %v", err)
	}
}

func TestQuoteService_Submit_ValidationError(t *testing.T) {
	repo := newMockQuoteRepository()
	notifier := &mockQuoteFeed{}
	service := NewQuoteService(repo)
	service.SetFeed(notifier)

	in := validInput()
	in.ProjectType = "spaceship"

	_, err := service.Submit(context.Background(), clientSubject(), in)
	if !apperror.IsValidation(err) {
		t.Fatalf("ожидалась ошибка валидации, получили %v", err)
	}
	if len(repo.quotes) != 0 {
		t.Fatalf("невалидная заявка не должна попадать в хранилище")
	}
	if notifier.notifications != 0 {
		t.Fatalf("фид не должен оповещаться при ошибке валидации")
	}
}

func TestQuoteService_Submit_BadDeadline(t *testing.T) {
	service := NewQuoteService(newMockQuoteRepository())

	in := validInput()
	in.Deadline = "01.12.2026"

	_, err := service.Submit(context.Background(), clientSubject(), in)
	if !apperror.IsValidation(err) {
		t.Fatalf("ожидалась ошибка валидации дедлайна, получили %v", err)
	}
}

func TestQuoteService_List_ClientSeesOnlyOwn(t *testing.T) {
	repo := newMockQuoteRepository()
	service := NewQuoteService(repo)

	owner := clientSubject()
	other := clientSubject()

	for _, subj := range []*Subject{owner, other} {
		if _, err := service.Submit(context.Background(), subj, validInput()); err != nil {
			t.Fatalf("submit вернул ошибку: %v", err)
		}
	}

	quotes, err := service.List(context.Background(), owner, nil)
	if err != nil {
		t.Fatalf("list вернул ошибку: %v", err)
	}
	if len(quotes) != 1 {
		t.Fatalf("клиент должен видеть только свои заявки, получили %d", len(quotes))
	}
	if quotes[0].UserID != owner.ID {
		t.Fatalf("в списке чужая заявка")
	}

	all, err := service.List(context.Background(), adminSubject(), nil)
	if err != nil {
		t.Fatalf("list вернул ошибку: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("админ должен видеть все заявки, получили %d", len(all))
	}
}

func TestQuoteService_List_InvalidStatusFilter(t *testing.T) {
	service := NewQuoteService(newMockQuoteRepository())

	bad := "done"
	_, err := service.List(context.Background(), adminSubject(), &bad)
	if !apperror.IsValidation(err) {
		t.Fatalf("ожидалась ошибка валидации статуса, получили %v", err)
	}
}

func TestQuoteService_Get_ForeignQuoteForbidden(t *testing.T) {
	repo := newMockQuoteRepository()
	service := NewQuoteService(repo)

	owner := clientSubject()
	quote, err := service.Submit(context.Background(), owner, validInput())
	if err != nil {
		t.Fatalf("submit вернул ошибку: %v", err)
	}

	_, err = service.Get(context.Background(), clientSubject(), quote.ID)
	if !apperror.IsForbidden(err) {
		t.Fatalf("чужая заявка должна быть запрещена, получили %v", err)
	}

	got, err := service.Get(context.Background(), adminSubject(), quote.ID)
	if err != nil {
		t.Fatalf("админ должен видеть любую заявку: %v", err)
	}
	if got.ID != quote.ID {
		t.Fatalf("получена не та заявка")
	}
}

func TestQuoteService_UpdateStatus_AdminOnly(t *testing.T) {
	repo := newMockQuoteRepository()
	service := NewQuoteService(repo)

	owner := clientSubject()
	quote, err := service.Submit(context.Background(), owner, validInput())
	if err != nil {
		t.Fatalf("submit вернул ошибку: %v", err)
	}

	// Даже автор заявки не может менять статус.
	err = service.UpdateStatus(context.Background(), owner, quote.ID, models.QuoteStatusCompleted)
	if !apperror.IsForbidden(err) {
		t.Fatalf("клиенту смена статуса запрещена, получили %v", err)
	}
	if repo.quotes[quote.ID].Status != models.QuoteStatusPending {
		t.Fatalf("статус не должен был измениться")
	}

	if err := service.UpdateStatus(context.Background(), adminSubject(), quote.ID, models.QuoteStatusInProgress); err != nil {
		t.Fatalf("админ не смог обновить статус: %v", err)
	}
	if repo.quotes[quote.ID].Status != models.QuoteStatusInProgress {
		t.Fatalf("статус не обновился")
	}
}

func TestQuoteService_UpdateStatus_AnyTransitionAllowed(t *testing.T) {
	repo := newMockQuoteRepository()
	notifier := &mockQuoteFeed{}
	service := NewQuoteService(repo)
	service.SetFeed(notifier)

	quote, err := service.Submit(context.Background(), clientSubject(), validInput())
	if err != nil {
		t.Fatalf("submit вернул ошибку: %v", err)
	}

	admin := adminSubject()

	// Переходы не ограничены: completed можно вернуть обратно в pending.
	steps := []string{
		models.QuoteStatusCompleted,
		models.QuoteStatusPending,
		models.QuoteStatusCancelled,
		// Повторная установка текущего статуса — успешный no-op.
		models.QuoteStatusCancelled,
	}
	for _, status := range steps {
		if err := service.UpdateStatus(context.Background(), admin, quote.ID, status); err != nil {
			t.Fatalf("переход в %s вернул ошибку: %v", status, err)
		}
	}

	if repo.quotes[quote.ID].Status != models.QuoteStatusCancelled {
		t.Fatalf("ожидался статус cancelled, получили %s", repo.quotes[quote.ID].Status)
	}

	// Каждое обновление, включая no-op, оповещает фид: submit + 4 смены.
	if notifier.notifications != 5 {
		t.Fatalf("ожидалось 5 оповещений, получили %d", notifier.notifications)
	}
}

func TestQuoteService_UpdateStatus_NotFound(t *testing.T) {
	service := NewQuoteService(newMockQuoteRepository())

	err := service.UpdateStatus(context.Background(), adminSubject(), uuid.New(), models.QuoteStatusCompleted)
	if !apperror.IsNotFound(err) {
		t.Fatalf("ожидалась ошибка not found, получили %v", err)
	}
}

func TestQuoteService_UpdateStatus_InvalidStatus(t *testing.T) {
	repo := newMockQuoteRepository()
	service := NewQuoteService(repo)

	quote, err := service.Submit(context.Background(), clientSubject(), validInput())
	if err != nil {
		t.Fatalf("submit вернул ошибку: %v", err)
	}

	err = service.UpdateStatus(context.Background(), adminSubject(), quote.ID, "archived")
	if !apperror.IsValidation(err) {
		t.Fatalf("ожидалась ошибка валидации статуса, получили %v", err)
	}
}

func TestQuoteService_Watch_FilterByRole(t *testing.T) {
	notifier := &mockQuoteFeed{}
	service := NewQuoteService(newMockQuoteRepository())
	service.SetFeed(notifier)

	owner := clientSubject()
	if _, err := service.Watch(context.Background(), owner); err != nil {
		t.Fatalf("watch вернул ошибку: %v", err)
	}
	if notifier.lastFilter == nil || notifier.lastFilter.OwnerID == nil || *notifier.lastFilter.OwnerID != owner.ID {
		t.Fatalf("клиент должен наблюдать только свои заявки")
	}

	if _, err := service.Watch(context.Background(), adminSubject()); err != nil {
		t.Fatalf("watch вернул ошибку: %v", err)
	}
	if notifier.lastFilter.OwnerID != nil {
		t.Fatalf("админ должен наблюдать все заявки")
	}
}

func TestQuoteService_Watch_Unauthenticated(t *testing.T) {
	service := NewQuoteService(newMockQuoteRepository())
	service.SetFeed(&mockQuoteFeed{})

	_, err := service.Watch(context.Background(), nil)
	if !apperror.IsUnauthorized(err) {
		t.Fatalf("ожидалась ошибка авторизации, получили %v", err)
	}
}

func TestQuoteService_Stats_AdminOnly(t *testing.T) {
	repo := newMockQuoteRepository()
	service := NewQuoteService(repo)

	quote, err := service.Submit(context.Background(), clientSubject(), validInput())
	if err != nil {
		t.Fatalf("submit вернул ошибку: %v", err)
	}

	admin := adminSubject()
	if err := service.UpdateStatus(context.Background(), admin, quote.ID, models.QuoteStatusInProgress); err != nil {
		t.Fatalf("не удалось обновить статус: %v", err)
	}

	_, err = service.Stats(context.Background(), clientSubject())
	if !apperror.IsForbidden(err) {
		t.Fatalf("статистика доступна только админу, получили %v", err)
	}

	stats, err := service.Stats(context.Background(), admin)
	if err != nil {
		t.Fatalf("stats вернул ошибку: %v", err)
	}
	if stats.Total != 1 || stats.InProgress != 1 {
		t.Fatalf("неверные счётчики: %+v", stats)
	}
}
