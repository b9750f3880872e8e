// Package view turns a decoded button press and a cached record into the
// next screen, and puts that screen on the user's display.
package view

import (
	"context"
	"errors"
)

var (
	// ErrNotModified is returned by a Messenger when an edit would leave
	// the message unchanged. The renderer treats it as a successful edit.
	ErrNotModified = errors.New("message is not modified")

	ErrRenderFailed = errors.New("render failed")
)

// Display is the kind of message a screen needs.
type Display int

const (
	DisplayNone Display = iota
	DisplayText
	DisplayMedia
)

func (d Display) String() string {
	switch d {
	case DisplayText:
		return "text"
	case DisplayMedia:
		return "media"
	}
	return "none"
}

// CanMutate reports whether a message of one display kind can be edited in
// place into a message of another. Text and media messages cannot be
// converted into each other.
func CanMutate(from, to Display) bool {
	return from != DisplayNone && from == to
}

type State string

const (
	StateMainMenu       State = "main_menu"
	StateLanguageSelect State = "language_select"
	StateResultsGrid    State = "results_grid"
	StateDetails        State = "details"
	StateImagePreview   State = "image_preview"
	StateClosed         State = "closed"
)

// Displays is the display kind each state renders to. MainMenu falls back to
// text when the record has no poster.
var Displays = map[State]Display{
	StateMainMenu:       DisplayMedia,
	StateLanguageSelect: DisplayText,
	StateResultsGrid:    DisplayMedia,
	StateDetails:        DisplayText,
	StateImagePreview:   DisplayMedia,
	StateClosed:         DisplayNone,
}

type Button struct {
	Text string
	Data string
}

type Keyboard [][]Button

// Screen is a fully computed view, ready to be sent or edited in.
type Screen struct {
	State    State
	Display  Display
	Body     string
	Plain    string
	Media    string
	Keyboard Keyboard
}

// Ref points at a message already on the user's display.
type Ref struct {
	ChatID    int64
	MessageID int
	Display   Display
}

// Messenger is the outbound delivery client.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string, kb Keyboard) (int, error)
	SendMedia(ctx context.Context, chatID int64, media, caption string, kb Keyboard) (int, error)
	EditTextOrCaption(ctx context.Context, ref Ref, body string, kb Keyboard) error
	EditMedia(ctx context.Context, ref Ref, media, caption string, kb Keyboard) error
	Delete(ctx context.Context, ref Ref) error
	Answer(ctx context.Context, callbackID, text string, alert bool) error
}
