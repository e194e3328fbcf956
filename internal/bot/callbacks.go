package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/solar-bom/internal/domain/users"
)

// callback data не длиннее 64 байт: в кнопках только номера строк и отпечатки
const (
	cbToggle  = "bom:t:" // bom:t:<номер строки>:<fnv32 id материала>
	cbPage    = "bom:p:" // bom:p:<страница>
	cbRefresh = "bom:r:" // bom:r:<страница>
	cbExport  = "bom:x"
)

func parseToggleData(data string) (idx int, hash uint32, ok bool) {
	rest, found := strings.CutPrefix(data, cbToggle)
	if !found {
		return 0, 0, false
	}
	idxStr, hashStr, found := strings.Cut(rest, ":")
	if !found {
		return 0, 0, false
	}
	idx, err := strconv.Atoi(idxStr)
	if err != nil || idx < 0 {
		return 0, 0, false
	}
	h, err := strconv.ParseUint(hashStr, 16, 32)
	if err != nil {
		return 0, 0, false
	}
	return idx, uint32(h), true
}

func parsePage(data, prefix string) (int, bool) {
	rest, found := strings.CutPrefix(data, prefix)
	if !found {
		return 0, false
	}
	page, err := strconv.Atoi(rest)
	if err != nil || page < 0 {
		return 0, false
	}
	return page, true
}

func (b *Bot) onCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.Message.Chat == nil {
		b.answerCallback(cb, "", false)
		return
	}
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID
	data := cb.Data

	if page, ok := parsePage(data, cbPage); ok {
		b.refreshBOM(ctx, chatID, messageID, page)
		b.answerCallback(cb, "", false)
		return
	}
	if page, ok := parsePage(data, cbRefresh); ok {
		if b.refreshBOM(ctx, chatID, messageID, page) {
			b.answerCallback(cb, "Aktualisiert", false)
		} else {
			b.answerCallback(cb, "Liste konnte nicht aktualisiert werden", true)
		}
		return
	}

	switch {
	case strings.HasPrefix(data, cbToggle):
		idx, hash, ok := parseToggleData(data)
		if !ok {
			b.answerCallback(cb, "Unbekannte Aktion", false)
			return
		}
		b.onToggle(ctx, cb, idx, hash)
	case data == cbExport:
		b.answerCallback(cb, "", false)
		b.sendExport(ctx, chatID)
	default:
		b.answerCallback(cb, "Unbekannte Aktion", false)
	}
}

func (b *Bot) onToggle(ctx context.Context, cb *tgbotapi.CallbackQuery, idx int, hash uint32) {
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID

	_, projectID, ok := b.currentProject(ctx, chatID)
	if !ok {
		b.answerCallback(cb, "Kein Projekt gewählt", true)
		return
	}

	// состояние берём из хранилища, а не из кнопки: список мог устареть
	split, done, err := b.loadBOM(ctx, projectID)
	if err != nil {
		b.log.Error("bom load failed", "project_id", projectID, "err", err)
		b.answerCallback(cb, "Fehler", true)
		return
	}
	m, ok := resolveLine(split, idx, hash)
	if !ok {
		b.refreshBOM(ctx, chatID, messageID, pageOf(idx))
		b.answerCallback(cb, "Liste war veraltet, bitte erneut tippen", true)
		return
	}
	current := done[m.MaterialID]

	userRef := users.User{TelegramID: cb.From.ID}.Ref()
	if err := b.tracker.Toggle(ctx, projectID, m.MaterialID, userRef, current); err != nil {
		b.log.Error("toggle failed", "project_id", projectID, "material_id", m.MaterialID, "err", err)
		b.answerCallback(cb, "Speichern fehlgeschlagen", true)
		return
	}

	b.refreshBOM(ctx, chatID, messageID, pageOf(idx))
	if current {
		b.answerCallback(cb, "Markierung entfernt", false)
	} else {
		b.answerCallback(cb, "Erledigt", false)
	}
}

// refreshBOM перерисовывает сообщение со списком на странице page.
func (b *Bot) refreshBOM(ctx context.Context, chatID int64, messageID, page int) bool {
	_, projectID, ok := b.currentProject(ctx, chatID)
	if !ok {
		return false
	}
	split, done, err := b.loadBOM(ctx, projectID)
	if err != nil {
		b.log.Error("bom load failed", "project_id", projectID, "err", err)
		return false
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID,
		renderBOM(projectID, split, done, page), bomKeyboard(split, done, page))
	if _, err := b.api.Send(edit); err != nil && !isNotModified(err) {
		b.log.Error("bom edit failed", "project_id", projectID, "err", err)
		return false
	}
	return true
}

// Telegram отвечает ошибкой, если текст и кнопки не изменились.
func isNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}
