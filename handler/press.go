package handler

import (
	"context"
	"errors"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/RoyXiang/posterbot/cache"
	"github.com/RoyXiang/posterbot/callback"
	"github.com/RoyXiang/posterbot/telegram"
	"github.com/RoyXiang/posterbot/view"
)

// handlePress decodes the token, loads the record it points at and renders
// the next screen. The press is acknowledged once rendering is done.
func (b *Bot) handlePress(ctx context.Context, log *slog.Logger, cb *tgbotapi.CallbackQuery) Result {
	log = log.With("callback_id", cb.ID, "data", cb.Data)

	t, err := callback.Decode(cb.Data)
	if err != nil {
		log.Warn("malformed callback token", "error", err)
	}
	if t.Action() == callback.ActionNoop {
		b.answer(ctx, log, cb.ID, "", false)
		return ResultNoop
	}
	if cb.Message == nil || cb.Message.Chat == nil {
		log.Info("pressed message is no longer accessible")
		b.answer(ctx, log, cb.ID, b.copy().Expired, true)
		return ResultExpired
	}

	ref := telegram.Ref(cb.Message)
	log = log.With("chat_id", ref.ChatID, "message_id", ref.MessageID, "media_id", t.Media())

	rec, err := b.store.Get(ctx, t.Media())
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			log.Error("failed to read session", "error", err)
		}
		b.answer(ctx, log, cb.ID, b.copy().Expired, true)
		return ResultExpired
	}

	tr := b.builder.Resolve(t, rec)
	switch tr.Effect {
	case view.EffectShow:
		_, err = b.render.Show(ctx, ref, tr.Screen)
	case view.EffectDeliver:
		_, err = b.render.Deliver(ctx, ref.ChatID, tr.Screen)
	case view.EffectClose:
		_, err = b.render.Close(ctx, ref, b.copy().Closed)
	default:
		b.answer(ctx, log, cb.ID, tr.Notice, tr.Alert)
		return ResultNotice
	}
	if err != nil {
		b.answer(ctx, log, cb.ID, b.copy().Failure, true)
		return ResultFailed
	}
	b.answer(ctx, log, cb.ID, "", false)
	return ResultRendered
}
