package feed

import (
	"sync"

	"github.com/google/uuid"

	"github.com/ignatzorin/studio-backend/internal/models"
)

// Subscription — живая подписка на список заявок. Владелец подписки
// обязан вызвать Close, иначе ресурс подписки утечёт.
type Subscription struct {
	id      uuid.UUID
	filter  Filter
	updates chan []models.Quote
	hub     *Hub

	mu      sync.Mutex
	err     error
	closed  bool
	lastGen uint64
}

// Updates возвращает канал эмиссий. Каждая эмиссия — полный актуальный
// список заявок подписки. Канал закрывается после Close или терминальной
// ошибки; после закрытия причину можно узнать через Err.
func (s *Subscription) Updates() <-chan []models.Quote {
	return s.updates
}

// Filter возвращает фильтр подписки.
func (s *Subscription) Filter() Filter {
	return s.filter
}

// Err возвращает терминальную ошибку подписки, если она была.
// После штатного Close возвращает nil.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close завершает подписку. Вызов идемпотентен.
func (s *Subscription) Close() {
	s.hub.unregister(s.id)
	s.terminate(nil)
}

// push доставляет эмиссию. Буфер канала — одна эмиссия, при переполнении
// старая вытесняется: медленный подписчик видит только самое свежее
// состояние, устаревших эмиссий не бывает.
func (s *Subscription) push(quotes []models.Quote, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	// Снимок старее уже доставленного отбрасывается: опоздавший
	// первоначальный снимок не должен вытеснить более свежую эмиссию.
	if gen < s.lastGen {
		return
	}
	s.lastGen = gen

	for {
		select {
		case s.updates <- quotes:
			return
		default:
			select {
			case <-s.updates:
			default:
			}
		}
	}
}

// fail завершает подписку с терминальной ошибкой.
func (s *Subscription) fail(err error) {
	s.hub.unregister(s.id)
	s.terminate(err)
}

// terminate закрывает канал эмиссий ровно один раз.
func (s *Subscription) terminate(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.err = err
	close(s.updates)
}
