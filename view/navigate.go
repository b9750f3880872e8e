package view

import (
	"github.com/RoyXiang/posterbot/callback"
	"github.com/RoyXiang/posterbot/media"
)

type Effect int

const (
	// EffectNotice leaves the display alone and only answers the press.
	EffectNotice Effect = iota
	// EffectShow replaces what the pressed message shows.
	EffectShow
	// EffectDeliver sends a new message and leaves the pressed one alone.
	EffectDeliver
	// EffectClose removes the pressed message.
	EffectClose
)

// Transition is the outcome of one press.
type Transition struct {
	Effect Effect
	Screen Screen
	Notice string
	Alert  bool
}

// Resolve computes the transition for a token against a record. It is pure:
// the same token and record always give the same transition. rec may be nil
// only for Noop.
func (b Builder) Resolve(t callback.Token, rec *media.Record) Transition {
	return callback.Dispatch[Transition](t, resolver{b: b, rec: rec})
}

type resolver struct {
	b   Builder
	rec *media.Record
}

func (r resolver) show(s Screen) Transition {
	return Transition{Effect: EffectShow, Screen: s}
}

func (r resolver) empty() Transition {
	return Transition{Effect: EffectNotice, Notice: r.b.cfg.Copy.NoImages}
}

func (r resolver) page(kind, lang string, page int) Transition {
	total := len(r.rec.List(kind, lang))
	if total == 0 {
		return r.empty()
	}
	l := r.b.cfg.Grid.Paginate(total, page)
	return r.show(r.b.ResultsGrid(r.rec, kind, lang, l))
}

func (r resolver) View(t callback.View) Transition {
	return r.page(t.Kind, t.Lang, t.Page)
}

func (r resolver) Page(t callback.Page) Transition {
	return r.page(t.Kind, t.Lang, t.Page)
}

func (r resolver) Pick(t callback.Pick) Transition {
	total := len(r.rec.List(t.Kind, t.Lang))
	if total == 0 {
		return r.empty()
	}
	l := r.b.cfg.Grid.Focus(total, t.Index)
	return r.show(r.b.ResultsGrid(r.rec, t.Kind, t.Lang, l))
}

func (r resolver) Send(t callback.Send) Transition {
	total := len(r.rec.List(t.Kind, t.Lang))
	if total == 0 {
		return r.empty()
	}
	index := r.b.cfg.Grid.Focus(total, t.Index).Active
	return Transition{
		Effect: EffectDeliver,
		Screen: r.b.ImagePreview(r.rec, t.Kind, t.Lang, index),
	}
}

func (r resolver) Langs(t callback.Langs) Transition {
	return r.show(r.b.LanguageSelect(r.rec, t.Kind))
}

func (r resolver) Details(callback.Details) Transition {
	return r.show(r.b.Details(r.rec))
}

func (r resolver) Back(callback.Back) Transition {
	return r.show(r.b.MainMenu(r.rec))
}

func (r resolver) Close(callback.Close) Transition {
	return Transition{Effect: EffectClose, Screen: Screen{State: StateClosed, Display: DisplayNone}}
}

func (r resolver) Noop(callback.Noop) Transition {
	return Transition{Effect: EffectNotice}
}
