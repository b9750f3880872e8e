// Package telegram wraps the Bot API client with per-chat rate limiting and
// flood-control retries, and implements view.Messenger on top of it.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/RoyXiang/posterbot/common"
	"github.com/RoyXiang/posterbot/view"
)

const (
	DefaultAPIURL = "https://api.telegram.org"

	// Flood waits longer than this are returned to the caller instead of
	// being slept through.
	maxRetryAfter = 10 * time.Second
	maxAttempts   = 3
	maxBodySize   = 1 << 20
)

// ErrNotModified is view.ErrNotModified; the API reports it when an edit
// would not change the message.
var ErrNotModified = view.ErrNotModified

// APIError is a response with "ok": false.
type APIError struct {
	Method      string
	Code        int
	Description string
	RetryAfter  time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: %d %s", e.Method, e.Code, e.Description)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotModified && strings.Contains(e.Description, "message is not modified")
}

type Client struct {
	api     *tgbotapi.BotAPI
	limiter *common.KeyedLimiter
	log     *slog.Logger
}

// NewClient builds a client for the bot identified by token. perChat is the
// number of outbound calls per second allowed for a single chat. No request
// is made until the first call.
func NewClient(apiURL, token string, perChat float64, log *slog.Logger) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if log == nil {
		log = slog.Default()
	}
	api := &tgbotapi.BotAPI{
		Token:  token,
		Buffer: 100,
		Client: envelopeClient{httpc: &http.Client{Timeout: 30 * time.Second}},
	}
	api.SetAPIEndpoint(strings.TrimRight(apiURL, "/") + "/bot%s/%s")
	return &Client{
		api:     api,
		limiter: common.NewKeyedLimiter(rate.Limit(perChat), 3),
		log:     log.With("component", "telegram"),
	}
}

// Limiter exposes the per-chat limiter so idle chats can be swept.
func (c *Client) Limiter() *common.KeyedLimiter {
	return c.limiter
}

func (c *Client) SendText(ctx context.Context, chatID int64, text string, kb view.Keyboard) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if m := markup(kb); m != nil {
		msg.ReplyMarkup = m
	}
	return c.send(ctx, chatID, "sendMessage", msg)
}

func (c *Client) SendMedia(ctx context.Context, chatID int64, media, caption string, kb view.Keyboard) (int, error) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(media))
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeHTML
	if m := markup(kb); m != nil {
		photo.ReplyMarkup = m
	}
	return c.send(ctx, chatID, "sendPhoto", photo)
}

// EditTextOrCaption edits the text of a text message or the caption of a
// media message, depending on what ref points at.
func (c *Client) EditTextOrCaption(ctx context.Context, ref view.Ref, body string, kb view.Keyboard) error {
	if ref.Display == view.DisplayMedia {
		edit := tgbotapi.NewEditMessageCaption(ref.ChatID, ref.MessageID, body)
		edit.ParseMode = tgbotapi.ModeHTML
		edit.ReplyMarkup = markup(kb)
		_, err := c.request(ctx, ref.ChatID, "editMessageCaption", edit)
		return err
	}
	edit := tgbotapi.NewEditMessageText(ref.ChatID, ref.MessageID, body)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.DisableWebPagePreview = true
	edit.ReplyMarkup = markup(kb)
	_, err := c.request(ctx, ref.ChatID, "editMessageText", edit)
	return err
}

func (c *Client) EditMedia(ctx context.Context, ref view.Ref, media, caption string, kb view.Keyboard) error {
	photo := tgbotapi.NewInputMediaPhoto(tgbotapi.FileURL(media))
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeHTML
	edit := tgbotapi.EditMessageMediaConfig{
		BaseEdit: tgbotapi.BaseEdit{
			ChatID:      ref.ChatID,
			MessageID:   ref.MessageID,
			ReplyMarkup: markup(kb),
		},
		Media: photo,
	}
	_, err := c.request(ctx, ref.ChatID, "editMessageMedia", edit)
	return err
}

func (c *Client) Delete(ctx context.Context, ref view.Ref) error {
	_, err := c.request(ctx, ref.ChatID, "deleteMessage", tgbotapi.NewDeleteMessage(ref.ChatID, ref.MessageID))
	return err
}

func (c *Client) Answer(ctx context.Context, callbackID, text string, alert bool) error {
	answer := tgbotapi.NewCallback(callbackID, text)
	if alert && text != "" {
		answer = tgbotapi.NewCallbackWithAlert(callbackID, text)
	}
	_, err := c.request(ctx, 0, "answerCallbackQuery", answer)
	return err
}

// SendChatAction shows a status such as "typing" in the chat.
func (c *Client) SendChatAction(ctx context.Context, chatID int64, action string) error {
	_, err := c.request(ctx, chatID, "sendChatAction", tgbotapi.NewChatAction(chatID, action))
	return err
}

func (c *Client) send(ctx context.Context, chatID int64, method string, msg tgbotapi.Chattable) (int, error) {
	resp, err := c.request(ctx, chatID, method, msg)
	if err != nil {
		return 0, err
	}
	return int(gjson.GetBytes(resp.Result, "message_id").Int()), nil
}

// request sends msg and returns the API response. Calls for a chat are rate
// limited per chat; flood-control responses are retried after the wait the
// API asks for. The context bounds the limiter and retry waits, while each
// HTTP round trip is bounded by the client timeout.
func (c *Client) request(ctx context.Context, chatID int64, method string, msg tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	var resp *tgbotapi.APIResponse
	err := retry.Do(
		func() error {
			if chatID != 0 {
				if err := c.limiter.Wait(ctx, chatID); err != nil {
					return retry.Unrecoverable(err)
				}
			}
			res, err := c.api.Request(msg)
			if err != nil {
				return apiError(method, err)
			}
			resp = res
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(maxAttempts),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var apiErr *APIError
			return errors.As(err, &apiErr) && apiErr.RetryAfter > 0 && apiErr.RetryAfter <= maxRetryAfter
		}),
		retry.DelayType(func(_ uint, err error, _ *retry.Config) time.Duration {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.RetryAfter
			}
			return 0
		}),
		retry.OnRetry(func(n uint, err error) {
			c.log.Warn("flood control, retrying", "method", method, "chat_id", chatID, "attempt", n+1, "error", err)
		}),
	)
	return resp, err
}

func apiError(method string, err error) error {
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) {
		return &APIError{
			Method:      method,
			Code:        tgErr.Code,
			Description: tgErr.Message,
			RetryAfter:  time.Duration(tgErr.RetryAfter) * time.Second,
		}
	}
	return fmt.Errorf("telegram %s: %w", method, stripURL(err))
}

// envelopeClient guarantees the Bot API client always reads a JSON
// envelope: bodies that are not one, such as a proxy error page, are
// replaced by an error envelope carrying the HTTP status.
type envelopeClient struct {
	httpc *http.Client
}

func (e envelopeClient) Do(req *http.Request) (*http.Response, error) {
	resp, err := e.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) || !gjson.GetBytes(data, "ok").Exists() {
		data, err = json.Marshal(tgbotapi.APIResponse{
			ErrorCode:   resp.StatusCode,
			Description: http.StatusText(resp.StatusCode),
		})
		if err != nil {
			return nil, err
		}
	}
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return resp, nil
}

// stripURL drops the request URL, which contains the bot token, from
// transport errors.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
