package callback

// Visitor handles every member of the closed action set. Adding an action
// adds a method here, so every state machine built on Dispatch stops
// compiling until it handles the new action.
type Visitor[R any] interface {
	View(View) R
	Page(Page) R
	Pick(Pick) R
	Send(Send) R
	Langs(Langs) R
	Details(Details) R
	Back(Back) R
	Close(Close) R
	Noop(Noop) R
}

// Dispatch calls the visitor method matching the token.
func Dispatch[R any](t Token, v Visitor[R]) R {
	switch t := t.(type) {
	case View:
		return v.View(t)
	case Page:
		return v.Page(t)
	case Pick:
		return v.Pick(t)
	case Send:
		return v.Send(t)
	case Langs:
		return v.Langs(t)
	case Details:
		return v.Details(t)
	case Back:
		return v.Back(t)
	case Close:
		return v.Close(t)
	case Noop:
		return v.Noop(t)
	}
	return v.Noop(Noop{})
}
