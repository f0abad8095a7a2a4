package feed

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ignatzorin/studio-backend/internal/logger"
	"github.com/ignatzorin/studio-backend/internal/models"
	"github.com/ignatzorin/studio-backend/internal/pkg/apperror"
)

// QuoteLister описывает зависимость хаба от хранилища заявок.
type QuoteLister interface {
	List(ctx context.Context, filter models.QuoteFilter) ([]models.Quote, error)
}

// Filter определяет область видимости подписки: все заявки (админ)
// или заявки одного владельца.
type Filter struct {
	OwnerID *uuid.UUID
}

// All возвращает фильтр без ограничений.
func All() Filter {
	return Filter{}
}

// Owner возвращает фильтр по владельцу заявок.
func Owner(userID uuid.UUID) Filter {
	return Filter{OwnerID: &userID}
}

// key используется для группировки подписок с одинаковым фильтром,
// чтобы на одно изменение выполнять один запрос на группу.
func (f Filter) key() string {
	if f.OwnerID == nil {
		return "all"
	}
	return "owner:" + f.OwnerID.String()
}

func (f Filter) toModel() models.QuoteFilter {
	return models.QuoteFilter{OwnerID: f.OwnerID}
}

// Hub управляет живыми подписками на список заявок. После каждого
// изменения в хранилище каждая подписка получает полный актуальный
// список своих заявок, отсортированный по created_at по убыванию.
// Подписчик никогда не опрашивает хранилище сам.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]*Subscription
	gen    uint64
	lister QuoteLister
	notify chan struct{}
	ctx    context.Context
}

// NewHub создаёт новый хаб. Контекст ограничивает время жизни хаба:
// при его отмене все подписки завершаются.
func NewHub(ctx context.Context, lister QuoteLister) *Hub {
	return &Hub{
		subs:   make(map[uuid.UUID]*Subscription),
		lister: lister,
		notify: make(chan struct{}, 1),
		ctx:    ctx,
	}
}

// Run запускает главный цикл хаба.
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			h.closeAll()
			return
		case <-h.notify:
			h.refresh()
		}
	}
}

// Subscribe открывает подписку и сразу доставляет в неё текущий снимок.
// Ошибка первоначального запроса возвращается сразу, подписка при этом
// не регистрируется.
func (h *Hub) Subscribe(ctx context.Context, filter Filter) (*Subscription, error) {
	gen := h.generation()

	quotes, err := h.lister.List(ctx, filter.toModel())
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnavailable, "не удалось открыть подписку на заявки")
	}

	sub := &Subscription{
		id:      uuid.New(),
		filter:  filter,
		updates: make(chan []models.Quote, 1),
		hub:     h,
	}

	h.mu.Lock()
	h.subs[sub.id] = sub
	stale := h.gen != gen
	h.mu.Unlock()

	sub.push(quotes, gen)

	// Изменение могло зафиксироваться, пока выполнялся первоначальный
	// запрос: подписка тогда ещё не была зарегистрирована, и тот сигнал
	// до неё не дошёл. Повторный сигнал дошлёт ей свежий снимок.
	if stale {
		h.signal()
	}

	return sub, nil
}

// Notify сообщает хабу, что набор заявок изменился. Сигналы
// коалесцируются: на серию быстрых изменений достаточно одного
// пересчёта, подписчики всё равно получают полный список.
func (h *Hub) Notify() {
	h.mu.Lock()
	h.gen++
	h.mu.Unlock()
	h.signal()
}

// signal будит главный цикл, не поднимая номер поколения.
func (h *Hub) signal() {
	select {
	case h.notify <- struct{}{}:
	default:
	}
}

// generation возвращает текущий номер поколения набора заявок.
// Номер растёт на каждое изменение; эмиссии помечаются поколением,
// чтобы опоздавший старый снимок не вытеснил более свежий.
func (h *Hub) generation() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.gen
}

// SubscriberCount возвращает число активных подписок.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// refresh выполняет по одному запросу на каждый уникальный фильтр
// и раздаёт результат всем подпискам группы.
func (h *Hub) refresh() {
	h.mu.RLock()
	gen := h.gen
	groups := make(map[string][]*Subscription)
	filters := make(map[string]Filter)
	for _, sub := range h.subs {
		k := sub.filter.key()
		groups[k] = append(groups[k], sub)
		filters[k] = sub.filter
	}
	h.mu.RUnlock()

	for k, members := range groups {
		quotes, err := h.lister.List(h.ctx, filters[k].toModel())
		if err != nil {
			if logger.Log != nil {
				logger.Log.WithError(err).Warn("feed: не удалось обновить подписки")
			}
			// Ошибка запроса терминальна для группы: подписчики должны
			// переоткрыть подписку, а не получать устаревшие данные.
			for _, sub := range members {
				sub.fail(apperror.Wrap(err, apperror.ErrCodeUnavailable, "подписка на заявки прервана"))
			}
			continue
		}

		for _, sub := range members {
			sub.push(quotes, gen)
		}
	}
}

// closeAll завершает все подписки при остановке хаба.
func (h *Hub) closeAll() {
	h.mu.Lock()
	subs := make([]*Subscription, 0, len(h.subs))
	for _, sub := range h.subs {
		subs = append(subs, sub)
	}
	h.subs = make(map[uuid.UUID]*Subscription)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.terminate(nil)
	}
}

// unregister убирает подписку из хаба.
func (h *Hub) unregister(id uuid.UUID) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}
