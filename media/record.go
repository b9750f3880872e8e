package media

import (
	"sort"
)

const (
	KindPosters   = "posters"
	KindBackdrops = "backdrops"

	// NoLanguage is the language key for images without text.
	NoLanguage = "none"

	// UnknownTitle stands in for results that come back without a title.
	UnknownTitle = "N/A"
)

// Images maps a media kind to a language code to an ordered list of image
// locators. The order of each list defines the numbering shown to users.
type Images map[string]map[string][]string

// Record is the cached result of a search.
type Record struct {
	ID        string   `json:"media_id" validate:"required,max=24,excludesall=: "`
	Title     string   `json:"title"`
	Year      string   `json:"year,omitempty"`
	Tagline   string   `json:"tagline,omitempty"`
	Plot      string   `json:"plot,omitempty"`
	Rating    string   `json:"rating,omitempty"`
	Votes     string   `json:"votes,omitempty"`
	Runtime   string   `json:"runtime,omitempty"`
	Genres    []string `json:"genres,omitempty"`
	Cast      []string `json:"cast,omitempty"`
	URL       string   `json:"url,omitempty"`
	PosterURL string   `json:"poster_url,omitempty"`
	Images    Images   `json:"images,omitempty"`
}

var kindOrder = map[string]int{
	KindPosters:   0,
	KindBackdrops: 1,
}

// Kinds returns the media kinds that have at least one image. Posters come
// first, then backdrops, then anything else in lexical order.
func (r *Record) Kinds() []string {
	kinds := make([]string, 0, len(r.Images))
	for kind := range r.Images {
		if r.Count(kind) > 0 {
			kinds = append(kinds, kind)
		}
	}
	sort.Slice(kinds, func(i, j int) bool {
		oi, iok := kindOrder[kinds[i]]
		oj, jok := kindOrder[kinds[j]]
		switch {
		case iok && jok:
			return oi < oj
		case iok != jok:
			return iok
		}
		return kinds[i] < kinds[j]
	})
	return kinds
}

// Languages returns the language keys of a kind in lexical order, skipping
// languages with no images.
func (r *Record) Languages(kind string) []string {
	byLang := r.Images[kind]
	langs := make([]string, 0, len(byLang))
	for lang, list := range byLang {
		if len(list) > 0 {
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs)
	return langs
}

// List returns the ordered image locators for a kind and language.
func (r *Record) List(kind, lang string) []string {
	return r.Images[kind][lang]
}

// Count returns the number of images of a kind across all languages.
func (r *Record) Count(kind string) int {
	n := 0
	for _, list := range r.Images[kind] {
		n += len(list)
	}
	return n
}

// Poster returns the locator used for the main menu image, falling back to
// the first poster in the image lists.
func (r *Record) Poster() string {
	if r.PosterURL != "" {
		return r.PosterURL
	}
	for _, lang := range r.Languages(KindPosters) {
		return r.Images[KindPosters][lang][0]
	}
	return ""
}
