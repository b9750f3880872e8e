package handler

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/RoyXiang/posterbot/media"
	"github.com/RoyXiang/posterbot/view"
)

// Result is what handling one update amounted to.
type Result string

const (
	ResultIgnored     Result = "ignored"
	ResultCommand     Result = "command"
	ResultNeedYear    Result = "need_year"
	ResultNoResult    Result = "no_result"
	ResultSearchError Result = "search_error"
	ResultMenu        Result = "menu"
	ResultNoop        Result = "noop"
	ResultExpired     Result = "expired"
	ResultNotice      Result = "notice"
	ResultRendered    Result = "rendered"
	ResultFailed      Result = "failed"
)

// Messenger is the delivery client plus the chat action the search flow
// shows while it waits.
type Messenger interface {
	view.Messenger
	SendChatAction(ctx context.Context, chatID int64, action string) error
}

type Searcher interface {
	Search(ctx context.Context, query string) (*media.Record, error)
}

// UpdateHandler consumes updates accepted by the webhook.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, u tgbotapi.Update) Result
}

type Options struct {
	View          view.Config
	TTL           time.Duration
	SearchTimeout time.Duration
	RequireYear   bool
}
