// Package callback implements the compact button payload that carries
// navigation state between button presses.
//
// A token is `action:param...:mediaID`. The media id is always the last
// field so it can be extracted without knowing the action.
package callback

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	Delimiter = ":"

	// MaxLength is the largest payload the transport accepts.
	MaxLength = 64

	// BackMain is the only destination of the back action.
	BackMain = "main"
)

var ErrMalformed = errors.New("malformed callback token")

type Action string

const (
	ActionView    Action = "view"
	ActionPage    Action = "page"
	ActionPick    Action = "pick"
	ActionSend    Action = "send"
	ActionLangs   Action = "langs"
	ActionDetails Action = "details"
	ActionBack    Action = "back"
	ActionClose   Action = "close"
	ActionNoop    Action = "noop"
)

// Token is one of View, Page, Pick, Send, Langs, Details, Back, Close or Noop.
type Token interface {
	Action() Action
	Media() string
	fields() []string
}

type View struct {
	Kind, Lang string
	Page       int
	MediaID    string
}

type Page struct {
	Kind, Lang string
	Page       int
	MediaID    string
}

type Pick struct {
	Kind, Lang string
	Index      int
	MediaID    string
}

type Send struct {
	Kind, Lang string
	Index      int
	MediaID    string
}

type Langs struct {
	Kind    string
	MediaID string
}

type Details struct {
	MediaID string
}

type Back struct {
	MediaID string
}

type Close struct {
	MediaID string
}

type Noop struct{}

func (View) Action() Action { return ActionView }
func (Page) Action() Action { return ActionPage }
func (Pick) Action() Action { return ActionPick }
func (Send) Action() Action { return ActionSend }
func (Langs) Action() Action { return ActionLangs }
func (Details) Action() Action { return ActionDetails }
func (Back) Action() Action { return ActionBack }
func (Close) Action() Action { return ActionClose }
func (Noop) Action() Action { return ActionNoop }

func (t View) Media() string { return t.MediaID }
func (t Page) Media() string { return t.MediaID }
func (t Pick) Media() string { return t.MediaID }
func (t Send) Media() string { return t.MediaID }
func (t Langs) Media() string { return t.MediaID }
func (t Details) Media() string { return t.MediaID }
func (t Back) Media() string { return t.MediaID }
func (t Close) Media() string { return t.MediaID }
func (Noop) Media() string { return "" }

func (t View) fields() []string { return []string{t.Kind, t.Lang, strconv.Itoa(t.Page), t.MediaID} }
func (t Page) fields() []string { return []string{t.Kind, t.Lang, strconv.Itoa(t.Page), t.MediaID} }
func (t Pick) fields() []string { return []string{t.Kind, t.Lang, strconv.Itoa(t.Index), t.MediaID} }
func (t Send) fields() []string { return []string{t.Kind, t.Lang, strconv.Itoa(t.Index), t.MediaID} }
func (t Langs) fields() []string { return []string{t.Kind, t.MediaID} }
func (t Details) fields() []string { return []string{t.MediaID} }
func (t Back) fields() []string { return []string{BackMain, t.MediaID} }
func (t Close) fields() []string { return []string{t.MediaID} }
func (Noop) fields() []string { return nil }

// Encode renders a token into its wire form.
func Encode(t Token) string {
	parts := append([]string{string(t.Action())}, t.fields()...)
	return strings.Join(parts, Delimiter)
}

// Valid reports whether an encoded token fits the transport limit and
// decodes cleanly.
func Valid(data string) bool {
	if len(data) > MaxLength {
		return false
	}
	_, err := Decode(data)
	return err == nil
}

// Decode parses a wire token. Anything that is not a well-formed member of
// the closed action set decodes to Noop together with an ErrMalformed
// error describing the problem; callers log the error and carry on with
// the Noop.
func Decode(data string) (Token, error) {
	parts := strings.Split(data, Delimiter)
	action := Action(parts[0])

	arity, ok := arities[action]
	if !ok {
		return Noop{}, fmt.Errorf("%w: unknown action %q", ErrMalformed, parts[0])
	}
	if action == ActionNoop {
		return Noop{}, nil
	}
	if len(parts) != arity+2 {
		return Noop{}, fmt.Errorf("%w: %s expects %d fields, got %d", ErrMalformed, action, arity+2, len(parts))
	}

	mediaID := parts[len(parts)-1]
	if mediaID == "" {
		return Noop{}, fmt.Errorf("%w: %s without media id", ErrMalformed, action)
	}
	params := parts[1 : len(parts)-1]

	switch action {
	case ActionView, ActionPage, ActionPick, ActionSend:
		kind, lang := params[0], params[1]
		if kind == "" || lang == "" {
			return Noop{}, fmt.Errorf("%w: %s with empty kind or language", ErrMalformed, action)
		}
		n, err := strconv.Atoi(params[2])
		if err != nil {
			return Noop{}, fmt.Errorf("%w: %s position %q: %v", ErrMalformed, action, params[2], err)
		}
		switch action {
		case ActionView:
			return View{Kind: kind, Lang: lang, Page: n, MediaID: mediaID}, nil
		case ActionPage:
			return Page{Kind: kind, Lang: lang, Page: n, MediaID: mediaID}, nil
		case ActionPick:
			return Pick{Kind: kind, Lang: lang, Index: n, MediaID: mediaID}, nil
		default:
			return Send{Kind: kind, Lang: lang, Index: n, MediaID: mediaID}, nil
		}
	case ActionLangs:
		if params[0] == "" {
			return Noop{}, fmt.Errorf("%w: langs with empty kind", ErrMalformed)
		}
		return Langs{Kind: params[0], MediaID: mediaID}, nil
	case ActionDetails:
		return Details{MediaID: mediaID}, nil
	case ActionBack:
		if params[0] != BackMain {
			return Noop{}, fmt.Errorf("%w: unknown back destination %q", ErrMalformed, params[0])
		}
		return Back{MediaID: mediaID}, nil
	case ActionClose:
		return Close{MediaID: mediaID}, nil
	}
	return Noop{}, fmt.Errorf("%w: unhandled action %q", ErrMalformed, action)
}

// arities holds the number of positional parameters between the action
// and the media id.
var arities = map[Action]int{
	ActionView:    3,
	ActionPage:    3,
	ActionPick:    3,
	ActionSend:    3,
	ActionLangs:   1,
	ActionDetails: 0,
	ActionBack:    1,
	ActionClose:   0,
	ActionNoop:    0,
}
