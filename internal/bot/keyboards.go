package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/solar-bom/internal/bom"
)

const (
	btnProject = "📁 Projekt"
	btnBOM     = "📋 Stückliste"
	btnExport  = "📤 Export"

	maxButtonLabel = 32
)

func mainReplyKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnProject),
			tgbotapi.NewKeyboardButton(btnBOM),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnExport),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// bomKeyboard: по кнопке на строку текущей страницы, листание, внизу обновление и выгрузка.
func bomKeyboard(s bom.Split, done map[string]bool, page int) tgbotapi.InlineKeyboardMarkup {
	lines := flatten(s)
	page = clampPage(page, len(lines))

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, pageSize+2)
	for _, l := range pageLines(lines, page) {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				checkbox(done[l.row.MaterialID])+" "+truncate(buttonLabel(l.row), maxButtonLabel),
				toggleData(l.idx, l.row.MaterialID),
			),
		))
	}

	if pages := pageCount(len(lines)); pages > 1 {
		var nav []tgbotapi.InlineKeyboardButton
		if page > 0 {
			nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("◀️", pageData(page-1)))
		}
		if page < pages-1 {
			nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("▶️", pageData(page+1)))
		}
		rows = append(rows, nav)
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("↻ Aktualisieren", refreshData(page)),
		tgbotapi.NewInlineKeyboardButtonData("📤 Excel", cbExport),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func buttonLabel(m bom.AggregatedMaterial) string {
	if m.Code != "" {
		return m.Code
	}
	return m.MaterialID
}

func toggleData(idx int, materialID string) string {
	return fmt.Sprintf("%s%d:%08x", cbToggle, idx, materialHash(materialID))
}

func pageData(page int) string    { return fmt.Sprintf("%s%d", cbPage, page) }
func refreshData(page int) string { return fmt.Sprintf("%s%d", cbRefresh, page) }
