// Package tracker хранит отметки монтёров о собранных позициях спецификации
// и раздаёт подписчикам полный актуальный список после каждого изменения.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Spok95/solar-bom/internal/domain/completed"
	"github.com/Spok95/solar-bom/internal/infra/metrics"
)

var ErrInvalidKey = errors.New("tracker: project and material id required")

type Store interface {
	ListByProject(ctx context.Context, projectID string) ([]completed.Item, error)
	Mark(ctx context.Context, it completed.Item) error
	Unmark(ctx context.Context, projectID, materialID string) error
}

// Publisher доставляет сигнал «проект изменился» всем инстансам.
type Publisher interface {
	Publish(ctx context.Context, projectID string) error
}

type Tracker struct {
	store Store
	hub   *Hub
	pub   Publisher
	log   *slog.Logger
	now   func() time.Time
}

// New собирает трекер. При pub == nil уведомления идут только внутри процесса через hub.
func New(store Store, hub *Hub, pub Publisher, log *slog.Logger) *Tracker {
	if pub == nil {
		pub = hub
	}
	return &Tracker{store: store, hub: hub, pub: pub, log: log, now: time.Now}
}

// Subscribe отдаёт fn текущий список отметок проекта, а затем новый полный список
// после каждого изменения. Каждый вызов fn получает полный снимок, не дельту.
// Ошибка первичной загрузки возвращается, подписка при этом не создаётся.
// ctx ограничивает все чтения подписки. fn не должна синхронно вызывать unsubscribe.
// Вызывающий обязан вызвать unsubscribe перед подпиской на другой проект.
func (t *Tracker) Subscribe(ctx context.Context, projectID string, fn func([]completed.Item)) (func(), error) {
	if projectID == "" {
		return nil, ErrInvalidKey
	}

	subCtx, cancel := context.WithCancel(ctx)
	s := &subscription{projectID: projectID, fn: fn}

	reload := func() {
		if err := s.deliver(subCtx, t.store); err != nil && subCtx.Err() == nil {
			t.log.Error("completed items reload failed", "project_id", projectID, "err", err)
		}
	}

	// сначала слушатель, потом снимок: изменение между ними не потеряется
	off := t.hub.Subscribe(projectID, reload)

	if err := s.deliver(subCtx, t.store); err != nil {
		off()
		cancel()
		return nil, fmt.Errorf("load completed items: %w", err)
	}

	return func() {
		off()
		s.close()
		cancel()
	}, nil
}

// Toggle снимает отметку, если она стоит, иначе ставит её от имени userID.
// Одновременные переключения разрешаются по last-writer-wins в хранилище.
func (t *Tracker) Toggle(ctx context.Context, projectID, materialID, userID string, currentlyCompleted bool) error {
	if projectID == "" || materialID == "" {
		return ErrInvalidKey
	}

	var err error
	if currentlyCompleted {
		err = t.store.Unmark(ctx, projectID, materialID)
	} else {
		err = t.store.Mark(ctx, completed.Item{
			ProjectID:  projectID,
			MaterialID: materialID,
			CheckedBy:  userID,
			CheckedAt:  t.now().UTC(),
		})
	}
	if err != nil {
		return err
	}
	metrics.CompletedToggles.WithLabelValues(metrics.ToggleAction(currentlyCompleted)).Inc()

	if err := t.pub.Publish(ctx, projectID); err != nil {
		// запись уже прошла; локальные подписчики получают снимок напрямую
		t.log.Warn("completed items publish failed, notifying locally", "project_id", projectID, "err", err)
		t.hub.Notify(projectID)
	}
	return nil
}

// List: разовое чтение отметок проекта.
func (t *Tracker) List(ctx context.Context, projectID string) ([]completed.Item, error) {
	if projectID == "" {
		return nil, ErrInvalidKey
	}
	return t.store.ListByProject(ctx, projectID)
}

type subscription struct {
	mu        sync.Mutex
	projectID string
	fn        func([]completed.Item)
	closed    bool
}

// deliver читает снимок и отдаёт его под мьютексом подписки,
// чтобы старый снимок не пришёл после нового.
func (s *subscription) deliver(ctx context.Context, store Store) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	items, err := store.ListByProject(ctx, s.projectID)
	if err != nil {
		return err
	}
	s.fn(items)
	return nil
}

func (s *subscription) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
