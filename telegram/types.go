package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/RoyXiang/posterbot/view"
)

// Display reports whether m carries media. Only media messages can have
// their media edited, and only text messages their text.
func Display(m *tgbotapi.Message) view.Display {
	if len(m.Photo) > 0 {
		return view.DisplayMedia
	}
	return view.DisplayText
}

// Ref points the renderer at m.
func Ref(m *tgbotapi.Message) view.Ref {
	ref := view.Ref{MessageID: m.MessageID, Display: Display(m)}
	if m.Chat != nil {
		ref.ChatID = m.Chat.ID
	}
	return ref
}

func markup(kb view.Keyboard) *tgbotapi.InlineKeyboardMarkup {
	if len(kb) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	m := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &m
}
