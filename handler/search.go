package handler

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/RoyXiang/posterbot/search"
)

func (b *Bot) handleText(ctx context.Context, log *slog.Logger, m *tgbotapi.Message) Result {
	text := strings.TrimSpace(m.Text)
	chatID := m.Chat.ID
	log = log.With("chat_id", chatID)

	if strings.HasPrefix(text, "/") {
		return b.handleCommand(ctx, log, chatID, text)
	}
	if b.opts.RequireYear && !strings.ContainsFunc(text, unicode.IsDigit) {
		b.reply(ctx, log, chatID, b.copy().NeedYear)
		return ResultNeedYear
	}

	if err := b.out.SendChatAction(ctx, chatID, tgbotapi.ChatTyping); err != nil {
		log.Debug("failed to send chat action", "error", err)
	}

	sctx, cancel := context.WithTimeout(ctx, b.opts.SearchTimeout)
	rec, err := b.search.Search(sctx, text)
	cancel()
	switch {
	case errors.Is(err, search.ErrNoResult):
		log.Info("search found nothing", "query", text, "error", err)
		b.reply(ctx, log, chatID, fmt.Sprintf(b.copy().NoResult, html.EscapeString(text)))
		return ResultNoResult
	case err != nil:
		log.Warn("search failed", "query", text, "error", err)
		b.reply(ctx, log, chatID, b.copy().SearchError)
		return ResultSearchError
	}

	log = log.With("media_id", rec.ID)
	if err := b.store.Put(ctx, rec.ID, rec, b.opts.TTL); err != nil {
		log.Error("failed to store search result", "error", err)
		b.reply(ctx, log, chatID, b.copy().Failure)
		return ResultFailed
	}

	if _, err := b.render.Deliver(ctx, chatID, b.builder.MainMenu(rec)); err != nil {
		return ResultFailed
	}
	log.Info("search result delivered", "query", text)
	return ResultMenu
}

func (b *Bot) handleCommand(ctx context.Context, log *slog.Logger, chatID int64, text string) Result {
	command := strings.Fields(text)[0]
	if at := strings.IndexByte(command, '@'); at > 0 {
		command = command[:at]
	}

	var reply string
	switch strings.ToLower(command) {
	case commandStart:
		reply = b.copy().Welcome
	case commandHelp:
		reply = b.copy().Help
	case commandAbout:
		reply = b.copy().About
	case commandFAQ:
		reply = b.copy().FAQ
	case commandDisclaimer:
		reply = b.copy().Disclaimer
	default:
		log.Debug("ignoring unknown command", "command", command)
		return ResultIgnored
	}
	b.reply(ctx, log, chatID, reply)
	return ResultCommand
}
