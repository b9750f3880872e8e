package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/RoyXiang/posterbot/callback"
	"github.com/RoyXiang/posterbot/grid"
	"github.com/RoyXiang/posterbot/media"
)

const maxCast = 10

var kindIcons = map[string]string{
	media.KindPosters:   "🖼️",
	media.KindBackdrops: "🏞️",
}

// Builder computes screens. It holds no state besides its configuration, so
// the same record and position always produce the same screen.
type Builder struct {
	cfg Config
}

func NewBuilder(cfg Config) Builder {
	return Builder{cfg: cfg}
}

// button binds t to a label. A token too long for the transport becomes an
// inert button.
func button(text string, t callback.Token) Button {
	data := callback.Encode(t)
	if !callback.Valid(data) {
		data = callback.Encode(callback.Noop{})
	}
	return Button{Text: text, Data: data}
}

func screen(state State, d Display, text richText, mediaURL string, kb Keyboard) Screen {
	return Screen{
		State:    state,
		Display:  d,
		Body:     text.HTML(),
		Plain:    text.Plain(),
		Media:    mediaURL,
		Keyboard: kb,
	}
}

func heading(rec *media.Record) *richText {
	t := &richText{}
	t.add("🎬 ").bold(rec.Title)
	if rec.Year != "" {
		t.add(" (" + rec.Year + ")")
	}
	return t
}

func (b Builder) MainMenu(rec *media.Record) Screen {
	text := heading(rec)
	plot := rec.Plot
	if plot == "" {
		plot = "No summary available."
	}
	text.add("\n\n" + truncate(plot, b.cfg.PlotLimit))

	var kb Keyboard
	var row []Button
	for _, kind := range rec.Kinds() {
		icon, ok := kindIcons[kind]
		if !ok {
			icon = "🖼️"
		}
		label := fmt.Sprintf("%s %s (%d)", icon, KindLabel(kind), rec.Count(kind))
		row = append(row, button(label, callback.Langs{Kind: kind, MediaID: rec.ID}))
		if len(row) == 2 {
			kb = append(kb, row)
			row = nil
		}
	}
	if len(row) > 0 {
		kb = append(kb, row)
	}
	kb = append(kb, []Button{
		button("ℹ️ Full Details", callback.Details{MediaID: rec.ID}),
		button("✖️ Close", callback.Close{MediaID: rec.ID}),
	})

	poster := rec.Poster()
	if poster == "" {
		return screen(StateMainMenu, DisplayText, *text, "", kb)
	}
	return screen(StateMainMenu, Displays[StateMainMenu], *text, poster, kb)
}

func (b Builder) LanguageSelect(rec *media.Record, kind string) Screen {
	langs := rec.Languages(kind)
	text := &richText{}
	if len(langs) == 0 {
		text.add("No " + strings.ToLower(KindLabel(kind)) + " available for ").bold(rec.Title).add(".")
	} else {
		text.add("Select a language for ").bold(rec.Title).add(" " + strings.ToLower(KindLabel(kind)) + ":")
	}

	kb := make(Keyboard, 0, len(langs)+1)
	for _, lang := range langs {
		label := fmt.Sprintf("%s (%d)", LanguageLabel(lang), len(rec.List(kind, lang)))
		kb = append(kb, []Button{button(label, callback.View{Kind: kind, Lang: lang, Page: 0, MediaID: rec.ID})})
	}
	kb = append(kb, []Button{button("« Back to Main Menu", callback.Back{MediaID: rec.ID})})

	return screen(StateLanguageSelect, Displays[StateLanguageSelect], *text, "", kb)
}

// ResultsGrid shows the active image of a page with numbered buttons for
// every image on the page. The layout must come from the builder's grid
// configuration and a non-empty list.
func (b Builder) ResultsGrid(rec *media.Record, kind, lang string, l grid.Layout) Screen {
	list := rec.List(kind, lang)

	text := heading(rec)
	text.add(fmt.Sprintf("\n%s · %s\nImage %d of %d", KindLabel(kind), LanguageLabel(lang), l.Active+1, l.Total))

	kb := make(Keyboard, 0, len(l.Rows)+3)
	for _, cells := range l.Rows {
		row := make([]Button, 0, len(cells))
		for _, c := range cells {
			row = append(row, button(c.Label, callback.Pick{Kind: kind, Lang: lang, Index: c.Index, MediaID: rec.ID}))
		}
		kb = append(kb, row)
	}

	nav := make([]Button, 0, 3)
	if l.Nav.Prev {
		nav = append(nav, button("« Prev", callback.Page{Kind: kind, Lang: lang, Page: l.Page - 1, MediaID: rec.ID}))
	}
	nav = append(nav, button(l.Nav.Indicator, callback.Noop{}))
	if l.Nav.Next {
		nav = append(nav, button("Next »", callback.Page{Kind: kind, Lang: lang, Page: l.Page + 1, MediaID: rec.ID}))
	}
	kb = append(kb, nav)

	kb = append(kb, []Button{
		button("⬇️ Send #"+strconv.Itoa(l.Active+1), callback.Send{Kind: kind, Lang: lang, Index: l.Active, MediaID: rec.ID}),
		button("🌐 Languages", callback.Langs{Kind: kind, MediaID: rec.ID}),
	})
	kb = append(kb, []Button{button("« Main Menu", callback.Back{MediaID: rec.ID})})

	return screen(StateResultsGrid, Displays[StateResultsGrid], *text, list[l.Active], kb)
}

func (b Builder) Details(rec *media.Record) Screen {
	text := heading(rec)
	if rec.Tagline != "" {
		text.add("\n\n").italic(rec.Tagline)
	}
	text.add("\n\n📖 ").bold("Plot:").add(" " + orNA(rec.Plot))
	text.add("\n\n⭐ ").bold("Rating:").add(" " + orNA(rec.Rating))
	if rec.Votes != "" {
		text.add(" (" + rec.Votes + " votes)")
	}
	text.add("\n🕒 ").bold("Runtime:").add(" " + orNA(rec.Runtime))
	text.add("\n🎭 ").bold("Genres:").add(" " + orNA(strings.Join(rec.Genres, ", ")))
	if len(rec.Cast) > 0 {
		cast := rec.Cast
		if len(cast) > maxCast {
			cast = cast[:maxCast]
		}
		text.add("\n👥 ").bold("Cast:").add(" " + strings.Join(cast, ", "))
	}
	if rec.URL != "" {
		text.add("\n\n🔗 ").link("View on TMDB", rec.URL)
	}

	kb := Keyboard{{
		button("« Back to Main Menu", callback.Back{MediaID: rec.ID}),
		button("✖️ Close", callback.Close{MediaID: rec.ID}),
	}}
	return screen(StateDetails, Displays[StateDetails], *text, "", kb)
}

// ImagePreview is the single image delivered by a send press.
func (b Builder) ImagePreview(rec *media.Record, kind, lang string, index int) Screen {
	list := rec.List(kind, lang)
	text := &richText{}
	text.bold(rec.Title).add(fmt.Sprintf(" · %s · %s · %d/%d", KindLabel(kind), LanguageLabel(lang), index+1, len(list)))
	return screen(StateImagePreview, Displays[StateImagePreview], *text, list[index], nil)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
