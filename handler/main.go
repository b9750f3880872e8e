// Package handler routes Telegram updates to the search flow and the
// button-press flow, and serves them over a webhook.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/RoyXiang/posterbot/cache"
	"github.com/RoyXiang/posterbot/view"
)

type Bot struct {
	out     Messenger
	search  Searcher
	store   cache.Store
	builder view.Builder
	render  *view.Renderer
	opts    Options
	log     *slog.Logger
}

func NewBot(out Messenger, search Searcher, store cache.Store, opts Options, log *slog.Logger) *Bot {
	if log == nil {
		log = slog.Default()
	}
	return &Bot{
		out:     out,
		search:  search,
		store:   store,
		builder: view.NewBuilder(opts.View),
		render:  view.NewRenderer(out, log.With("component", "render")),
		opts:    opts,
		log:     log,
	}
}

// HandleUpdate classifies an update as a text message or a button press and
// runs it to completion. It never panics.
func (b *Bot) HandleUpdate(ctx context.Context, u tgbotapi.Update) (result Result) {
	log := b.log.With("update_id", u.UpdateID)
	defer func() {
		if p := recover(); p != nil {
			log.Error("panic while handling update", "panic", fmt.Sprint(p), "stack", string(debug.Stack()))
			result = ResultFailed
		}
	}()

	switch {
	case u.CallbackQuery != nil:
		result = b.handlePress(ctx, log, u.CallbackQuery)
	case u.Message != nil && u.Message.Chat != nil && strings.TrimSpace(u.Message.Text) != "":
		result = b.handleText(ctx, log, u.Message)
	default:
		log.Debug("ignoring update")
		return ResultIgnored
	}
	log.Debug("update handled", "result", result)
	return result
}

func (b *Bot) copy() view.Copy {
	return b.opts.View.Copy
}

// reply sends a plain notification. Failures are logged only.
func (b *Bot) reply(ctx context.Context, log *slog.Logger, chatID int64, text string) {
	if _, err := b.out.SendText(ctx, chatID, text, nil); err != nil {
		log.Warn("failed to send reply", "chat_id", chatID, "error", err)
	}
}

// answer acknowledges a press. Failures are logged only.
func (b *Bot) answer(ctx context.Context, log *slog.Logger, id, text string, alert bool) {
	if err := b.out.Answer(ctx, id, text, alert); err != nil {
		log.Debug("failed to answer callback query", "error", err)
	}
}
