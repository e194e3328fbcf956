package tracker

import (
	"context"
	"sync"
)

type listener struct {
	id int64
	fn func()
}

// Hub: реестр слушателей изменений внутри процесса, по проектам.
type Hub struct {
	mu        sync.RWMutex
	nextID    int64
	listeners map[string][]listener
}

func NewHub() *Hub {
	return &Hub{listeners: make(map[string][]listener)}
}

// Subscribe регистрирует fn на изменения проекта и возвращает функцию отписки.
// Повторный вызов отписки ничего не делает.
func (h *Hub) Subscribe(projectID string, fn func()) func() {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.listeners[projectID] = append(h.listeners[projectID], listener{id: id, fn: fn})
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { h.remove(projectID, id) })
	}
}

func (h *Hub) remove(projectID string, id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ls := h.listeners[projectID]
	for i, l := range ls {
		if l.id == id {
			ls = append(ls[:i:i], ls[i+1:]...)
			break
		}
	}
	if len(ls) == 0 {
		delete(h.listeners, projectID)
		return
	}
	h.listeners[projectID] = ls
}

// Notify вызывает всех слушателей проекта. Вызовы идут вне блокировки,
// слушатель может отписаться прямо из колбэка.
func (h *Hub) Notify(projectID string) {
	h.mu.RLock()
	ls := make([]listener, len(h.listeners[projectID]))
	copy(ls, h.listeners[projectID])
	h.mu.RUnlock()

	for _, l := range ls {
		l.fn()
	}
}

// Publish реализует Publisher для одиночного инстанса.
func (h *Hub) Publish(_ context.Context, projectID string) error {
	h.Notify(projectID)
	return nil
}

// Count: число слушателей проекта.
func (h *Hub) Count(projectID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners[projectID])
}
