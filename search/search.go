// Package search resolves a free-text query to a media record through the
// upstream poster API.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"

	"github.com/RoyXiang/posterbot/media"
)

const maxBodySize = 4 << 20

var (
	// ErrNoResult means the query matched nothing usable. It is shown to
	// the user as a "not found" message.
	ErrNoResult = errors.New("no result")

	// ErrUnavailable means the upstream could not be reached in time.
	ErrUnavailable = errors.New("search service unavailable")
)

type Client struct {
	baseURL  string
	httpc    *http.Client
	validate *validator.Validate
	log      *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL:  baseURL,
		httpc:    &http.Client{Timeout: timeout},
		validate: validator.New(),
		log:      log.With("component", "search"),
	}
}

func (c *Client) Search(ctx context.Context, query string) (*media.Record, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrNoResult
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	q := u.Query()
	q.Set("query", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	c.log.Debug("search finished", "query", query, "status", resp.StatusCode, "duration", time.Since(started))

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: upstream returned %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: upstream returned %d", ErrNoResult, resp.StatusCode)
	}

	rec, err := Parse(body)
	if err != nil {
		return nil, err
	}
	if err := c.validate.Struct(rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoResult, err)
	}
	return rec, nil
}

// Parse reads an upstream response body. Numbers are accepted where strings
// are expected, and language keys that mean "no text" are folded into
// media.NoLanguage.
func Parse(body []byte) (*media.Record, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: response is not JSON", ErrNoResult)
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: response is not an object", ErrNoResult)
	}

	rec := &media.Record{
		ID:        strings.TrimSpace(doc.Get("media_id").String()),
		Title:     strings.TrimSpace(doc.Get("title").String()),
		Year:      doc.Get("year").String(),
		Tagline:   doc.Get("tagline").String(),
		Plot:      doc.Get("plot").String(),
		Rating:    doc.Get("rating").String(),
		Votes:     doc.Get("votes").String(),
		Runtime:   doc.Get("runtime").String(),
		Genres:    names(doc.Get("genres")),
		Cast:      names(doc.Get("cast")),
		URL:       doc.Get("url").String(),
		PosterURL: doc.Get("poster_url").String(),
		Images:    images(doc.Get("images")),
	}
	if rec.ID == "" {
		return nil, fmt.Errorf("%w: result has no media id", ErrNoResult)
	}
	if rec.Title == "" {
		rec.Title = media.UnknownTitle
	}
	return rec, nil
}

// names accepts a list of strings, a list of {"name": ...} objects or a
// comma separated string.
func names(v gjson.Result) []string {
	var out []string
	switch {
	case v.IsArray():
		v.ForEach(func(_, item gjson.Result) bool {
			name := item.String()
			if item.IsObject() {
				name = item.Get("name").String()
			}
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, name)
			}
			return true
		})
	case v.Type == gjson.String:
		for _, name := range strings.Split(v.String(), ",") {
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}

func images(v gjson.Result) media.Images {
	if !v.IsObject() {
		return nil
	}
	out := media.Images{}
	v.ForEach(func(kindKey, langs gjson.Result) bool {
		kind := strings.ToLower(strings.TrimSpace(kindKey.String()))
		if !validKey(kind, 12) || !langs.IsObject() {
			return true
		}
		langs.ForEach(func(langKey, list gjson.Result) bool {
			lang, ok := normalizeLang(langKey.String())
			if !ok {
				return true
			}
			list.ForEach(func(_, item gjson.Result) bool {
				loc := item.String()
				if item.IsObject() {
					loc = item.Get("url").String()
				}
				if loc = strings.TrimSpace(loc); loc != "" {
					if out[kind] == nil {
						out[kind] = map[string][]string{}
					}
					out[kind][lang] = append(out[kind][lang], loc)
				}
				return true
			})
			return true
		})
		return true
	})
	if len(out) == 0 {
		return nil
	}
	return out
}

func normalizeLang(code string) (string, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	switch code {
	case "", "null", "none", "xx", "n/a":
		return media.NoLanguage, true
	}
	return code, validKey(code, 8)
}

// validKey rejects keys that could not be carried in a callback token.
func validKey(key string, limit int) bool {
	return key != "" && len(key) <= limit && !strings.ContainsAny(key, ": ")
}
