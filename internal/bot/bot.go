// Package bot: Telegram-бот монтёра: выбор проекта, список материалов с отметками, выгрузка.
package bot

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/solar-bom/internal/bom"
	"github.com/Spok95/solar-bom/internal/dialog"
	"github.com/Spok95/solar-bom/internal/domain/completed"
	"github.com/Spok95/solar-bom/internal/domain/users"
)

type UserStore interface {
	GetByTelegramID(ctx context.Context, tgID int64) (*users.User, error)
	UpsertFromTelegram(ctx context.Context, tg users.Telegram, role users.Role) (*users.User, error)
}

type StateStore interface {
	Get(ctx context.Context, chatID int64) (*dialog.Item, error)
	Set(ctx context.Context, chatID int64, state dialog.State, payload dialog.Payload) error
	Reset(ctx context.Context, chatID int64) error
}

type BOMBuilder interface {
	BOM(ctx context.Context, projectID string) (bom.Split, error)
}

type CompletedTracker interface {
	List(ctx context.Context, projectID string) ([]completed.Item, error)
	Toggle(ctx context.Context, projectID, materialID, userID string, currentlyCompleted bool) error
}

type Bot struct {
	api     *tgbotapi.BotAPI
	log     *slog.Logger
	users   UserStore
	states  StateStore
	bom     BOMBuilder
	tracker CompletedTracker
}

func New(api *tgbotapi.BotAPI, log *slog.Logger, usersRepo UserStore, statesRepo StateStore,
	bomBuilder BOMBuilder, tr CompletedTracker) *Bot {

	return &Bot{
		api: api, log: log, users: usersRepo, states: statesRepo,
		bom: bomBuilder, tracker: tr,
	}
}

func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd := <-updates:
			if upd.Message != nil {
				b.onMessage(ctx, upd.Message)
			} else if upd.CallbackQuery != nil {
				b.onCallback(ctx, upd.CallbackQuery)
			}
		}
	}
}

func (b *Bot) onMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	b.handleStateMessage(ctx, msg)
}

func (b *Bot) send(msg tgbotapi.Chattable) (tgbotapi.Message, bool) {
	sent, err := b.api.Send(msg)
	if err != nil {
		b.log.Error("send failed", "err", err)
		return sent, false
	}
	return sent, true
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) answerCallback(cb *tgbotapi.CallbackQuery, text string, alert bool) {
	resp := tgbotapi.NewCallback(cb.ID, text)
	resp.ShowAlert = alert
	if _, err := b.api.Request(resp); err != nil {
		b.log.Warn("answer callback failed", "err", err)
	}
}
