package feed

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/studio-backend/internal/models"
	"github.com/ignatzorin/studio-backend/internal/pkg/apperror"
)

// fakeLister — управляемое хранилище заявок для тестов хаба.
type fakeLister struct {
	mu     sync.Mutex
	quotes []models.Quote
	err    error
}

func (f *fakeLister) List(ctx context.Context, filter models.QuoteFilter) ([]models.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	var result []models.Quote
	for _, quote := range f.quotes {
		if filter.OwnerID != nil && quote.UserID != *filter.OwnerID {
			continue
		}
		result = append(result, quote)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (f *fakeLister) add(quote models.Quote) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotes = append(f.quotes, quote)
}

func (f *fakeLister) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func newQuote(userID uuid.UUID, createdAt time.Time) models.Quote {
	return models.Quote{
		ID:        uuid.New(),
		UserID:    userID,
		UserEmail: "user@example.com",
		Status:    models.QuoteStatusPending,
		CreatedAt: createdAt,
	}
}

// receive ждёт эмиссию с таймаутом.
func receive(t *testing.T, sub *Subscription) []models.Quote {
	t.Helper()
	select {
	case quotes, ok := <-sub.Updates():
		if !ok {
			t.Fatalf("канал подписки неожиданно закрыт: %v", sub.Err())
		}
		return quotes
	case <-time.After(2 * time.Second):
		t.Fatalf("не дождались эмиссии")
		return nil
	}
}

func TestHub_SubscribeDeliversSnapshot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lister := &fakeLister{}
	userID := uuid.New()
	lister.add(newQuote(userID, time.Now().Add(-time.Hour)))
	lister.add(newQuote(userID, time.Now()))

	hub := NewHub(ctx, lister)
	go hub.Run()

	sub, err := hub.Subscribe(ctx, All())
	if err != nil {
		t.Fatalf("subscribe вернул ошибку: %v", err)
	}
	defer sub.Close()

	quotes := receive(t, sub)
	if len(quotes) != 2 {
		t.Fatalf("первая эмиссия должна содержать весь список, получили %d", len(quotes))
	}

	// Новые заявки первыми.
	if !quotes[0].CreatedAt.After(quotes[1].CreatedAt) {
		t.Fatalf("список должен быть отсортирован по created_at по убыванию")
	}
}

func TestHub_NotifyEmitsFullList(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lister := &fakeLister{}
	hub := NewHub(ctx, lister)
	go hub.Run()

	sub, err := hub.Subscribe(ctx, All())
	if err != nil {
		t.Fatalf("subscribe вернул ошибку: %v", err)
	}
	defer sub.Close()

	if quotes := receive(t, sub); len(quotes) != 0 {
		t.Fatalf("пустое хранилище должно давать пустую эмиссию, получили %d", len(quotes))
	}

	lister.add(newQuote(uuid.New(), time.Now()))
	hub.Notify()

	if quotes := receive(t, sub); len(quotes) != 1 {
		t.Fatalf("после изменения ожидался полный список из 1 заявки, получили %d", len(quotes))
	}
}

func TestHub_OwnerFilterScopesEmissions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lister := &fakeLister{}
	owner := uuid.New()
	lister.add(newQuote(owner, time.Now()))
	lister.add(newQuote(uuid.New(), time.Now()))

	hub := NewHub(ctx, lister)
	go hub.Run()

	sub, err := hub.Subscribe(ctx, Owner(owner))
	if err != nil {
		t.Fatalf("subscribe вернул ошибку: %v", err)
	}
	defer sub.Close()

	quotes := receive(t, sub)
	if len(quotes) != 1 {
		t.Fatalf("владелец должен видеть только свои заявки, получили %d", len(quotes))
	}
	if quotes[0].UserID != owner {
		t.Fatalf("в эмиссии чужая заявка")
	}
}

func TestHub_SlowSubscriberSeesLatestState(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lister := &fakeLister{}
	hub := NewHub(ctx, lister)
	go hub.Run()

	sub, err := hub.Subscribe(ctx, All())
	if err != nil {
		t.Fatalf("subscribe вернул ошибку: %v", err)
	}
	defer sub.Close()

	// Подписчик не читает; серия изменений вытесняет старые эмиссии.
	for i := 0; i < 5; i++ {
		lister.add(newQuote(uuid.New(), time.Now()))
		sub.push(mustList(t, lister), uint64(i+1))
	}

	quotes := receive(t, sub)
	if len(quotes) != 5 {
		t.Fatalf("медленный подписчик должен получить самое свежее состояние, получили %d заявок", len(quotes))
	}
}

func mustList(t *testing.T, lister *fakeLister) []models.Quote {
	t.Helper()
	quotes, err := lister.List(context.Background(), models.QuoteFilter{})
	if err != nil {
		t.Fatalf("list вернул ошибку: %v", err)
	}
	return quotes
}

// gatedLister снимает данные в момент вызова, но первый запрос
// возвращается только после открытия шлюза.
type gatedLister struct {
	*fakeLister
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedLister) List(ctx context.Context, filter models.QuoteFilter) ([]models.Quote, error) {
	quotes, err := g.fakeLister.List(ctx, filter)
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return quotes, err
}

func TestHub_MutationDuringSubscribeIsDelivered(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lister := &gatedLister{
		fakeLister: &fakeLister{},
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	lister.add(newQuote(uuid.New(), time.Now().Add(-time.Minute)))

	hub := NewHub(ctx, lister)
	go hub.Run()

	type result struct {
		sub *Subscription
		err error
	}
	done := make(chan result, 1)
	go func() {
		sub, err := hub.Subscribe(ctx, All())
		done <- result{sub: sub, err: err}
	}()

	// Первоначальный запрос уже снял снимок, но ещё не вернулся.
	// В этот момент фиксируется новая заявка, и сигнал об изменении
	// обрабатывается до регистрации подписки.
	<-lister.entered
	lister.add(newQuote(uuid.New(), time.Now()))
	hub.Notify()
	time.Sleep(50 * time.Millisecond)
	close(lister.release)

	res := <-done
	if res.err != nil {
		t.Fatalf("subscribe вернул ошибку: %v", res.err)
	}
	defer res.sub.Close()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case quotes, ok := <-res.sub.Updates():
			if !ok {
				t.Fatalf("канал подписки неожиданно закрыт: %v", res.sub.Err())
			}
			if len(quotes) == 2 {
				return
			}
		case <-deadline:
			t.Fatalf("заявка, зафиксированная во время открытия подписки, так и не была доставлена")
		}
	}
}

func TestHub_SubscribeFailsWhenStoreDown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lister := &fakeLister{}
	lister.setErr(errors.New("connection refused"))

	hub := NewHub(ctx, lister)
	go hub.Run()

	_, err := hub.Subscribe(ctx, All())
	if !apperror.IsUnavailable(err) {
		t.Fatalf("ожидалась ошибка недоступности хранилища, получили %v", err)
	}
	if hub.SubscriberCount() != 0 {
		t.Fatalf("неудачная подписка не должна регистрироваться")
	}
}

func TestHub_RefreshErrorTerminatesSubscription(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lister := &fakeLister{}
	hub := NewHub(ctx, lister)
	go hub.Run()

	sub, err := hub.Subscribe(ctx, All())
	if err != nil {
		t.Fatalf("subscribe вернул ошибку: %v", err)
	}

	receive(t, sub)

	lister.setErr(errors.New("connection refused"))
	hub.Notify()

	select {
	case _, ok := <-sub.Updates():
		if ok {
			t.Fatalf("после ошибки хранилища канал должен закрыться")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("не дождались закрытия канала")
	}

	if !apperror.IsUnavailable(sub.Err()) {
		t.Fatalf("ожидалась терминальная ошибка недоступности, получили %v", sub.Err())
	}
	if hub.SubscriberCount() != 0 {
		t.Fatalf("упавшая подписка должна сниматься с учёта")
	}
}

func TestHub_CloseIsIdempotent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(ctx, &fakeLister{})
	go hub.Run()

	sub, err := hub.Subscribe(ctx, All())
	if err != nil {
		t.Fatalf("subscribe вернул ошибку: %v", err)
	}

	sub.Close()
	sub.Close()

	if sub.Err() != nil {
		t.Fatalf("штатное закрытие не должно оставлять ошибку: %v", sub.Err())
	}
	if hub.SubscriberCount() != 0 {
		t.Fatalf("закрытая подписка должна сниматься с учёта")
	}
}

func TestHub_ContextCancelClosesAll(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	hub := NewHub(ctx, &fakeLister{})
	go hub.Run()

	sub, err := hub.Subscribe(ctx, All())
	if err != nil {
		t.Fatalf("subscribe вернул ошибку: %v", err)
	}

	receive(t, sub)
	cancel()

	select {
	case _, ok := <-sub.Updates():
		if ok {
			t.Fatalf("после остановки хаба канал должен закрыться")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("не дождались закрытия канала")
	}
}
