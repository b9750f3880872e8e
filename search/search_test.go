package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoyXiang/posterbot/media"
)

const matrixJSON = `{
	"media_id": 603,
	"title": "The Matrix",
	"year": "1999",
	"tagline": "Welcome to the Real World.",
	"plot": "Set in the 22nd century...",
	"rating": 8.2,
	"votes": 25000,
	"runtime": "136 min",
	"genres": "Action, Science Fiction",
	"cast": [{"name": "Keanu Reeves"}, "Carrie-Anne Moss"],
	"url": "https://www.themoviedb.org/movie/603",
	"poster_url": "https://image.tmdb.org/t/p/original/p.jpg",
	"images": {
		"posters": {
			"en": ["https://img/en/1.jpg", "https://img/en/2.jpg"],
			"null": ["https://img/none/1.jpg"],
			"xx": ["https://img/none/2.jpg"],
			"bad:key": ["https://img/bad.jpg"]
		},
		"backdrops": {
			"fr": [{"url": "https://img/fr/1.jpg"}, ""]
		},
		"logos": "not an object"
	}
}`

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParse(t *testing.T) {
	rec, err := Parse([]byte(matrixJSON))
	require.NoError(t, err)

	assert.Equal(t, "603", rec.ID)
	assert.Equal(t, "The Matrix", rec.Title)
	assert.Equal(t, "8.2", rec.Rating)
	assert.Equal(t, "25000", rec.Votes)
	assert.Equal(t, []string{"Action", "Science Fiction"}, rec.Genres)
	assert.Equal(t, []string{"Keanu Reeves", "Carrie-Anne Moss"}, rec.Cast)

	assert.Equal(t, []string{"https://img/en/1.jpg", "https://img/en/2.jpg"}, rec.Images[media.KindPosters]["en"])
	assert.Equal(t, []string{"https://img/none/1.jpg", "https://img/none/2.jpg"}, rec.Images[media.KindPosters][media.NoLanguage])
	assert.NotContains(t, rec.Images[media.KindPosters], "bad:key")
	assert.Equal(t, []string{"https://img/fr/1.jpg"}, rec.Images[media.KindBackdrops]["fr"])
	assert.NotContains(t, rec.Images, "logos")
}

func TestParseRejects(t *testing.T) {
	for _, body := range []string{
		``,
		`not json`,
		`[]`,
		`{"title": "No id"}`,
		`{"media_id": "", "title": "Empty id"}`,
	} {
		_, err := Parse([]byte(body))
		assert.ErrorIs(t, err, ErrNoResult, body)
	}
}

func TestParseUntitled(t *testing.T) {
	rec, err := Parse([]byte(`{"media_id": 603, "title": "  "}`))
	require.NoError(t, err)
	assert.Equal(t, "603", rec.ID)
	assert.Equal(t, media.UnknownTitle, rec.Title)
}

func TestSearch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, matrixJSON)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/api/movie-posters", time.Second, quiet())
	rec, err := c.Search(context.Background(), "  The Matrix 1999 ")
	require.NoError(t, err)
	assert.Equal(t, "The Matrix 1999", gotQuery)
	assert.Equal(t, "603", rec.ID)
}

func TestSearchStatus(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ErrNoResult},
		{http.StatusBadRequest, ErrNoResult},
		{http.StatusBadGateway, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second, quiet()).Search(context.Background(), "x 2000")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSearchFailsValidation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"media_id": "6:03", "title": "x"}`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second, quiet()).Search(context.Background(), "x 2000")
	assert.ErrorIs(t, err, ErrNoResult)

	srv2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"media_id": "a very long identifier that does not fit", "title": "x"}`)
	}))
	defer srv2.Close()

	_, err = NewClient(srv2.URL, time.Second, quiet()).Search(context.Background(), "x 2000")
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestSearchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(srv.URL, 50*time.Millisecond, quiet()).Search(context.Background(), "x 2000")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSearchEmptyQuery(t *testing.T) {
	_, err := NewClient("http://127.0.0.1:1", time.Second, quiet()).Search(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestSearchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second, quiet()).Search(context.Background(), "x 2000")
	assert.ErrorIs(t, err, ErrUnavailable)
}
