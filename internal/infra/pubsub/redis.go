// Package pubsub разносит уведомления об изменении отметок между инстансами через Redis.
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

// ErrRelayStopped: сигнал ушёл в Redis, но локальный relay не слушает канал,
// и текущий инстанс его не получит.
var ErrRelayStopped = errors.New("pubsub: relay is not running")

// Notifier получает project id из канала; его реализует tracker.Hub.
type Notifier interface {
	Notify(projectID string)
}

type Redis struct {
	rdb     *redis.Client
	prefix  string
	log     *slog.Logger
	running atomic.Bool
}

func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func New(rdb *redis.Client, prefix string, log *slog.Logger) *Redis {
	return &Redis{rdb: rdb, prefix: prefix, log: log}
}

// Publish отправляет сигнал всем инстансам, включая текущий:
// локальный hub получит его через Run. Пока Run не слушает канал,
// возвращается ErrRelayStopped, чтобы вызывающий уведомил своих подписчиков сам.
func (r *Redis) Publish(ctx context.Context, projectID string) error {
	if err := r.rdb.Publish(ctx, r.channel(projectID), projectID).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	if !r.running.Load() {
		return ErrRelayStopped
	}
	return nil
}

// Running сообщает, слушает ли relay канал прямо сейчас.
func (r *Redis) Running() bool { return r.running.Load() }

// Run слушает каналы prefix* и передаёт project id в n до отмены ctx.
func (r *Redis) Run(ctx context.Context, n Notifier) error {
	sub := r.rdb.PSubscribe(ctx, r.prefix+"*")
	defer func() { _ = sub.Close() }()

	// ждём подтверждения подписки, иначе ошибку соединения увидим только по тишине
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis psubscribe: %w", err)
	}
	r.running.Store(true)
	defer r.running.Store(false)
	r.log.Info("redis relay subscribed", "pattern", r.prefix+"*")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			projectID, ok := r.projectID(msg.Channel)
			if !ok {
				r.log.Warn("redis relay: unexpected channel", "channel", msg.Channel)
				continue
			}
			n.Notify(projectID)
		}
	}
}

func (r *Redis) channel(projectID string) string {
	return r.prefix + projectID
}

func (r *Redis) projectID(channel string) (string, bool) {
	id, ok := strings.CutPrefix(channel, r.prefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
