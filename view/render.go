package view

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
)

type Outcome int

const (
	OutcomeEdited Outcome = iota + 1
	OutcomeReplaced
	OutcomeSent
	OutcomeDegraded
	OutcomeDeleted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeEdited:
		return "edited"
	case OutcomeReplaced:
		return "replaced"
	case OutcomeSent:
		return "sent"
	case OutcomeDegraded:
		return "degraded"
	case OutcomeDeleted:
		return "deleted"
	}
	return "failed"
}

// Renderer puts screens on the display. Every method walks a fallback
// chain and only returns ErrRenderFailed once every step has failed.
type Renderer struct {
	out Messenger
	log *slog.Logger
}

func NewRenderer(out Messenger, log *slog.Logger) *Renderer {
	if log == nil {
		log = slog.Default()
	}
	return &Renderer{out: out, log: log}
}

// Show turns the message at ref into s: edit in place when the display
// kinds match, otherwise delete and send, and as a last resort send the
// plain text without buttons.
func (r *Renderer) Show(ctx context.Context, ref Ref, s Screen) (Outcome, error) {
	log := r.log.With("state", s.State, "from", ref.Display, "to", s.Display, "chat_id", ref.ChatID, "message_id", ref.MessageID)

	if CanMutate(ref.Display, s.Display) {
		err := r.edit(ctx, ref, s)
		if err == nil || errors.Is(err, ErrNotModified) {
			return OutcomeEdited, nil
		}
		log.Warn("in-place edit failed, replacing message", "error", err)
	}

	if err := r.out.Delete(ctx, ref); err != nil {
		log.Warn("failed to delete message before replacing it", "error", err)
	}
	_, err := r.send(ctx, ref.ChatID, s)
	if err == nil {
		return OutcomeReplaced, nil
	}
	log.Warn("replace failed, sending degraded view", "error", err)

	if err = r.degraded(ctx, ref.ChatID, s); err != nil {
		log.Error("all render attempts failed", "error", err)
		return 0, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	return OutcomeDegraded, nil
}

// Deliver sends s as a new message.
func (r *Renderer) Deliver(ctx context.Context, chatID int64, s Screen) (Outcome, error) {
	log := r.log.With("state", s.State, "to", s.Display, "chat_id", chatID)

	_, err := r.send(ctx, chatID, s)
	if err == nil {
		return OutcomeSent, nil
	}
	log.Warn("send failed, sending degraded view", "error", err)

	if err = r.degraded(ctx, chatID, s); err != nil {
		log.Error("all render attempts failed", "error", err)
		return 0, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	return OutcomeDegraded, nil
}

// Close removes the message at ref. When the transport refuses the delete
// the message is edited down to closedText with no buttons.
func (r *Renderer) Close(ctx context.Context, ref Ref, closedText string) (Outcome, error) {
	err := r.out.Delete(ctx, ref)
	if err == nil {
		return OutcomeDeleted, nil
	}
	r.log.Warn("failed to delete message, stripping it instead", "chat_id", ref.ChatID, "message_id", ref.MessageID, "error", err)

	err = r.out.EditTextOrCaption(ctx, ref, closedText, nil)
	if err == nil || errors.Is(err, ErrNotModified) {
		return OutcomeEdited, nil
	}
	r.log.Error("all close attempts failed", "chat_id", ref.ChatID, "message_id", ref.MessageID, "error", err)
	return 0, fmt.Errorf("%w: %v", ErrRenderFailed, err)
}

func (r *Renderer) edit(ctx context.Context, ref Ref, s Screen) error {
	if s.Display == DisplayMedia {
		return r.out.EditMedia(ctx, ref, s.Media, s.Body, s.Keyboard)
	}
	return r.out.EditTextOrCaption(ctx, ref, s.Body, s.Keyboard)
}

func (r *Renderer) send(ctx context.Context, chatID int64, s Screen) (int, error) {
	if s.Display == DisplayMedia {
		return r.out.SendMedia(ctx, chatID, s.Media, s.Body, s.Keyboard)
	}
	return r.out.SendText(ctx, chatID, s.Body, s.Keyboard)
}

// degraded sends the screen as escaped plain text with no buttons.
func (r *Renderer) degraded(ctx context.Context, chatID int64, s Screen) error {
	text := s.Plain
	if s.Display == DisplayMedia && s.Media != "" {
		text += "\n\n" + s.Media
	}
	_, err := r.out.SendText(ctx, chatID, html.EscapeString(text), nil)
	return err
}
