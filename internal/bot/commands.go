package bot

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/solar-bom/internal/bom"
	"github.com/Spok95/solar-bom/internal/dialog"
	"github.com/Spok95/solar-bom/internal/domain/completed"
	"github.com/Spok95/solar-bom/internal/domain/users"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.cmdStart(ctx, msg)
	case "projekt":
		projectID := strings.TrimSpace(msg.CommandArguments())
		if projectID == "" {
			_ = b.states.Set(ctx, chatID, dialog.StateAwaitProject, dialog.Payload{})
			b.reply(chatID, "Projektnummer eingeben:")
			return
		}
		b.selectProject(ctx, chatID, projectID)
	case "stueckliste":
		b.showBOM(ctx, chatID)
	case "export":
		b.sendExport(ctx, chatID)
	case "abbrechen":
		_ = b.states.Reset(ctx, chatID)
		m := tgbotapi.NewMessage(chatID, "Abgebrochen.")
		m.ReplyMarkup = mainReplyKeyboard()
		b.send(m)
	default:
		b.reply(chatID, "Unbekannter Befehl. /projekt, /stueckliste, /export")
	}
}

func (b *Bot) cmdStart(ctx context.Context, msg *tgbotapi.Message) {
	// посты каналов приходят без отправителя
	if msg.From == nil {
		b.log.Debug("start without sender ignored", "chat_id", msg.Chat.ID)
		return
	}
	chatID := msg.Chat.ID
	tg := users.Telegram{
		ID:        msg.From.ID,
		Username:  msg.From.UserName,
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
	}

	// роль office выдаётся в офисе, здесь её не понижаем
	role := users.RoleMonteur
	if existing, _ := b.users.GetByTelegramID(ctx, tg.ID); existing != nil && existing.Role != "" {
		role = existing.Role
	}

	u, err := b.users.UpsertFromTelegram(ctx, tg, role)
	if err != nil {
		b.log.Error("user upsert failed", "tg_id", tg.ID, "err", err)
		b.reply(chatID, "Fehler: Profil konnte nicht gespeichert werden.")
		return
	}
	b.log.Info("user started bot", "tg_id", tg.ID, "role", u.Role)

	_ = b.states.Reset(ctx, chatID)
	m := tgbotapi.NewMessage(chatID,
		fmt.Sprintf("Hallo %s! Wähle ein Projekt mit /projekt <Nummer>, dann öffne die /stueckliste.", u.Name))
	m.ReplyMarkup = mainReplyKeyboard()
	b.send(m)
}

func (b *Bot) handleStateMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch text {
	case btnBOM:
		b.showBOM(ctx, chatID)
		return
	case btnExport:
		b.sendExport(ctx, chatID)
		return
	case btnProject:
		_ = b.states.Set(ctx, chatID, dialog.StateAwaitProject, dialog.Payload{})
		b.reply(chatID, "Projektnummer eingeben:")
		return
	}

	st, err := b.states.Get(ctx, chatID)
	if err != nil {
		b.log.Error("state get failed", "chat_id", chatID, "err", err)
		return
	}
	if st.State == dialog.StateAwaitProject && text != "" {
		b.selectProject(ctx, chatID, text)
		return
	}
	b.reply(chatID, "Bitte Befehl wählen: /projekt, /stueckliste, /export")
}

func (b *Bot) selectProject(ctx context.Context, chatID int64, projectID string) {
	if err := b.states.Set(ctx, chatID, dialog.StateIdle, dialog.Payload{dialog.KeyProject: projectID}); err != nil {
		b.log.Error("state set failed", "chat_id", chatID, "err", err)
		b.reply(chatID, "Fehler beim Speichern des Projekts.")
		return
	}
	m := tgbotapi.NewMessage(chatID, fmt.Sprintf("Projekt %s ausgewählt.", projectID))
	m.ReplyMarkup = mainReplyKeyboard()
	b.send(m)
}

// currentProject: проект из состояния чата; если его нет, просит выбрать.
func (b *Bot) currentProject(ctx context.Context, chatID int64) (*dialog.Item, string, bool) {
	st, err := b.states.Get(ctx, chatID)
	if err != nil {
		b.log.Error("state get failed", "chat_id", chatID, "err", err)
		b.reply(chatID, "Fehler beim Laden des Chat-Status.")
		return nil, "", false
	}
	projectID := st.Project()
	if projectID == "" {
		b.reply(chatID, "Kein Projekt gewählt. /projekt <Nummer>")
		return st, "", false
	}
	return st, projectID, true
}

func (b *Bot) loadBOM(ctx context.Context, projectID string) (bom.Split, map[string]bool, error) {
	split, err := b.bom.BOM(ctx, projectID)
	if err != nil {
		return bom.Split{}, nil, err
	}
	items, err := b.tracker.List(ctx, projectID)
	if err != nil {
		return bom.Split{}, nil, err
	}
	return split, completed.Set(items), nil
}

func (b *Bot) showBOM(ctx context.Context, chatID int64) {
	st, projectID, ok := b.currentProject(ctx, chatID)
	if !ok {
		return
	}

	split, done, err := b.loadBOM(ctx, projectID)
	if err != nil {
		b.log.Error("bom load failed", "project_id", projectID, "err", err)
		b.reply(chatID, "Stückliste konnte nicht geladen werden.")
		return
	}

	// у старого списка убираем кнопки, живым остаётся только новый
	if mid := st.LastMessageID(); mid != 0 {
		b.send(tgbotapi.NewEditMessageReplyMarkup(chatID, mid,
			tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}))
	}

	m := tgbotapi.NewMessage(chatID, renderBOM(projectID, split, done, 0))
	m.ReplyMarkup = bomKeyboard(split, done, 0)
	sent, ok := b.send(m)
	if !ok {
		b.reply(chatID, "Stückliste konnte nicht angezeigt werden. Als Excel: /export")
		return
	}
	_ = b.states.Set(ctx, chatID, dialog.StateBOM, dialog.Payload{
		dialog.KeyProject: projectID,
		dialog.KeyLastMID: float64(sent.MessageID),
	})
}

func (b *Bot) sendExport(ctx context.Context, chatID int64) {
	_, projectID, ok := b.currentProject(ctx, chatID)
	if !ok {
		return
	}

	split, done, err := b.loadBOM(ctx, projectID)
	if err != nil {
		b.log.Error("bom load failed", "project_id", projectID, "err", err)
		b.reply(chatID, "Stückliste konnte nicht geladen werden.")
		return
	}

	var buf bytes.Buffer
	if err := bom.WriteXLSX(&buf, projectID, split, done); err != nil {
		b.log.Error("bom xlsx failed", "project_id", projectID, "err", err)
		b.reply(chatID, "Export fehlgeschlagen.")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("stueckliste-%s.xlsx", projectID),
		Bytes: buf.Bytes(),
	})
	doc.Caption = fmt.Sprintf("Stückliste Projekt %s", projectID)
	b.send(doc)
}
