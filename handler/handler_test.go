package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoyXiang/posterbot/cache"
	"github.com/RoyXiang/posterbot/media"
	"github.com/RoyXiang/posterbot/search"
	"github.com/RoyXiang/posterbot/view"
)

type sent struct {
	op    string
	chat  int64
	text  string
	alert bool
	kb    view.Keyboard
}

type fakeMessenger struct {
	mu    sync.Mutex
	calls []sent
	fail  map[string]error
}

func (f *fakeMessenger) record(s sent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, s)
	return f.fail[s.op]
}

func (f *fakeMessenger) ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ops := make([]string, len(f.calls))
	for i, c := range f.calls {
		ops[i] = c.op
	}
	return ops
}

func (f *fakeMessenger) find(op string) (sent, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c.op == op {
			return c, true
		}
	}
	return sent{}, false
}

func (f *fakeMessenger) SendText(_ context.Context, chatID int64, text string, kb view.Keyboard) (int, error) {
	return 100, f.record(sent{op: "send_text", chat: chatID, text: text, kb: kb})
}

func (f *fakeMessenger) SendMedia(_ context.Context, chatID int64, media, caption string, kb view.Keyboard) (int, error) {
	return 101, f.record(sent{op: "send_media", chat: chatID, text: media, kb: kb})
}

func (f *fakeMessenger) EditTextOrCaption(_ context.Context, ref view.Ref, body string, kb view.Keyboard) error {
	return f.record(sent{op: "edit_text", chat: ref.ChatID, text: body, kb: kb})
}

func (f *fakeMessenger) EditMedia(_ context.Context, ref view.Ref, media, _ string, kb view.Keyboard) error {
	return f.record(sent{op: "edit_media", chat: ref.ChatID, text: media, kb: kb})
}

func (f *fakeMessenger) Delete(_ context.Context, ref view.Ref) error {
	return f.record(sent{op: "delete", chat: ref.ChatID})
}

func (f *fakeMessenger) Answer(_ context.Context, _, text string, alert bool) error {
	return f.record(sent{op: "answer", text: text, alert: alert})
}

func (f *fakeMessenger) SendChatAction(_ context.Context, chatID int64, action string) error {
	return f.record(sent{op: "chat_action", chat: chatID, text: action})
}

type fakeSearcher struct {
	rec     *media.Record
	err     error
	panics  bool
	queries []string
}

func (f *fakeSearcher) Search(ctx context.Context, query string) (*media.Record, error) {
	f.queries = append(f.queries, query)
	if f.panics {
		panic("search exploded")
	}
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("search called without a deadline")
	}
	return f.rec, f.err
}

// countingStore wraps a store and counts writes.
type countingStore struct {
	cache.Store
	puts   int
	getErr error
}

func (s *countingStore) Put(ctx context.Context, id string, record *media.Record, ttl time.Duration) error {
	s.puts++
	return s.Store.Put(ctx, id, record, ttl)
}

func (s *countingStore) Get(ctx context.Context, id string) (*media.Record, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.Store.Get(ctx, id)
}

func matrix() *media.Record {
	list := func(n int, lang string) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = fmt.Sprintf("https://img/%s/%d.jpg", lang, i)
		}
		return out
	}
	return &media.Record{
		ID:    "603",
		Title: "The Matrix",
		Year:  "1999",
		Plot:  "A hacker learns the truth.",
		Images: media.Images{
			media.KindPosters: {
				"en": list(12, "en"),
				"fr": list(3, "fr"),
			},
		},
	}
}

type fixture struct {
	bot    *Bot
	out    *fakeMessenger
	search *fakeSearcher
	store  *countingStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		out:    &fakeMessenger{},
		search: &fakeSearcher{rec: matrix()},
		store:  &countingStore{Store: cache.NewMemoryStore()},
	}
	f.bot = NewBot(f.out, f.search, f.store, Options{
		View:          view.DefaultConfig(),
		TTL:           time.Hour,
		SearchTimeout: time.Second,
		RequireYear:   true,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return f
}

func textUpdate(text string) tgbotapi.Update {
	return tgbotapi.Update{UpdateID: 1, Message: &tgbotapi.Message{MessageID: 5, Chat: &tgbotapi.Chat{ID: 42}, Text: text}}
}

func pressUpdate(data string, photo bool) tgbotapi.Update {
	m := &tgbotapi.Message{MessageID: 9, Chat: &tgbotapi.Chat{ID: 42}}
	if photo {
		m.Photo = []tgbotapi.PhotoSize{{FileID: "p"}}
	}
	return tgbotapi.Update{UpdateID: 2, CallbackQuery: &tgbotapi.CallbackQuery{ID: "cb", Message: m, Data: data}}
}

func TestSearchDeliversMainMenu(t *testing.T) {
	f := newFixture(t)

	res := f.bot.HandleUpdate(context.Background(), textUpdate("  The Matrix 1999 "))
	assert.Equal(t, ResultMenu, res)
	assert.Equal(t, []string{"The Matrix 1999"}, f.search.queries)
	assert.Equal(t, 1, f.store.puts)
	assert.Equal(t, []string{"chat_action", "send_media"}, f.out.ops())

	rec, err := f.store.Get(context.Background(), "603")
	require.NoError(t, err)
	assert.Equal(t, "The Matrix", rec.Title)
}

func TestSearchNoResultWritesNothing(t *testing.T) {
	f := newFixture(t)
	f.search.rec = nil
	f.search.err = fmt.Errorf("%w: upstream returned 404", search.ErrNoResult)

	res := f.bot.HandleUpdate(context.Background(), textUpdate("Nothing <here> 2001"))
	assert.Equal(t, ResultNoResult, res)
	assert.Zero(t, f.store.puts)

	reply, ok := f.out.find("send_text")
	require.True(t, ok)
	assert.Contains(t, reply.text, "Nothing &lt;here&gt; 2001")
}

func TestSearchFailureWritesNothing(t *testing.T) {
	f := newFixture(t)
	f.search.rec = nil
	f.search.err = fmt.Errorf("%w: timeout", search.ErrUnavailable)

	res := f.bot.HandleUpdate(context.Background(), textUpdate("The Matrix 1999"))
	assert.Equal(t, ResultSearchError, res)
	assert.Zero(t, f.store.puts)

	reply, _ := f.out.find("send_text")
	assert.Equal(t, view.DefaultCopy().SearchError, reply.text)
}

func TestSearchNeedsYear(t *testing.T) {
	f := newFixture(t)

	res := f.bot.HandleUpdate(context.Background(), textUpdate("The Matrix"))
	assert.Equal(t, ResultNeedYear, res)
	assert.Empty(t, f.search.queries)

	f.bot.opts.RequireYear = false
	res = f.bot.HandleUpdate(context.Background(), textUpdate("The Matrix"))
	assert.Equal(t, ResultMenu, res)
}

func TestSearchStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.store.Store = failingStore{}

	res := f.bot.HandleUpdate(context.Background(), textUpdate("The Matrix 1999"))
	assert.Equal(t, ResultFailed, res)
	reply, _ := f.out.find("send_text")
	assert.Equal(t, view.DefaultCopy().Failure, reply.text)
}

type failingStore struct{}

func (failingStore) Put(context.Context, string, *media.Record, time.Duration) error {
	return errors.New("disk full")
}

func (failingStore) Get(context.Context, string) (*media.Record, error) {
	return nil, errors.New("disk gone")
}

func (failingStore) Close() error { return nil }

func TestCommands(t *testing.T) {
	tests := map[string]string{
		"/start":          view.DefaultCopy().Welcome,
		"/help@PosterBot": view.DefaultCopy().Help,
		"/about":          view.DefaultCopy().About,
		"/FAQ":            view.DefaultCopy().FAQ,
		"/disclaimer now": view.DefaultCopy().Disclaimer,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			f := newFixture(t)
			assert.Equal(t, ResultCommand, f.bot.HandleUpdate(context.Background(), textUpdate(in)))
			reply, _ := f.out.find("send_text")
			assert.Equal(t, want, reply.text)
			assert.Empty(t, f.search.queries)
		})
	}

	f := newFixture(t)
	assert.Equal(t, ResultIgnored, f.bot.HandleUpdate(context.Background(), textUpdate("/unknown")))
	assert.Empty(t, f.out.ops())
}

func TestIgnoredUpdates(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, ResultIgnored, f.bot.HandleUpdate(context.Background(), tgbotapi.Update{UpdateID: 3}))
	assert.Equal(t, ResultIgnored, f.bot.HandleUpdate(context.Background(), textUpdate("   ")))
	assert.Empty(t, f.out.ops())
}

func TestPanicIsRecovered(t *testing.T) {
	f := newFixture(t)
	f.search.panics = true
	assert.Equal(t, ResultFailed, f.bot.HandleUpdate(context.Background(), textUpdate("The Matrix 1999")))
}

func seed(t *testing.T, f *fixture) {
	t.Helper()
	require.NoError(t, f.store.Store.Put(context.Background(), "603", matrix(), time.Hour))
}

func TestPressExpiredSession(t *testing.T) {
	f := newFixture(t)

	res := f.bot.HandleUpdate(context.Background(), pressUpdate("langs:posters:603", true))
	assert.Equal(t, ResultExpired, res)
	assert.Equal(t, []string{"answer"}, f.out.ops())

	ack, _ := f.out.find("answer")
	assert.Equal(t, "Sorry, this session has expired. Please search again.", ack.text)
	assert.True(t, ack.alert)
}

func TestPressSendAfterTTL(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	f.store.Store = cache.NewMemoryStoreWithClock(func() time.Time { return now })
	require.NoError(t, f.store.Store.Put(context.Background(), "603", matrix(), time.Hour))

	res := f.bot.HandleUpdate(context.Background(), pressUpdate("send:posters:en:3:603", true))
	require.Equal(t, ResultRendered, res)

	now = now.Add(time.Hour + time.Second)
	f.out.calls = nil

	res = f.bot.HandleUpdate(context.Background(), pressUpdate("send:posters:en:3:603", true))
	assert.Equal(t, ResultExpired, res)
	assert.Equal(t, []string{"answer"}, f.out.ops())

	ack, _ := f.out.find("answer")
	assert.Equal(t, view.DefaultCopy().Expired, ack.text)
	assert.True(t, ack.alert)
}

func TestPressCacheErrorIsExpiry(t *testing.T) {
	f := newFixture(t)
	seed(t, f)
	f.store.getErr = errors.New("connection refused")

	res := f.bot.HandleUpdate(context.Background(), pressUpdate("details:603", true))
	assert.Equal(t, ResultExpired, res)
	assert.Equal(t, []string{"answer"}, f.out.ops())
}

func TestPressInaccessibleMessage(t *testing.T) {
	f := newFixture(t)
	seed(t, f)
	u := pressUpdate("details:603", true)
	u.CallbackQuery.Message = nil

	assert.Equal(t, ResultExpired, f.bot.HandleUpdate(context.Background(), u))
}

func TestPressNoopAndMalformed(t *testing.T) {
	for _, data := range []string{"noop", "", "bogus:1:2", "view:posters:603"} {
		f := newFixture(t)
		assert.Equal(t, ResultNoop, f.bot.HandleUpdate(context.Background(), pressUpdate(data, true)), data)
		assert.Equal(t, []string{"answer"}, f.out.ops(), data)
	}
}

func TestPressReplacesAcrossDisplayKinds(t *testing.T) {
	f := newFixture(t)
	seed(t, f)

	res := f.bot.HandleUpdate(context.Background(), pressUpdate("langs:posters:603", true))
	assert.Equal(t, ResultRendered, res)
	assert.Equal(t, []string{"delete", "send_text", "answer"}, f.out.ops())

	menu, _ := f.out.find("send_text")
	require.Len(t, menu.kb, 3)
	assert.Equal(t, "view:posters:en:0:603", menu.kb[0][0].Data)
	assert.Equal(t, "view:posters:fr:0:603", menu.kb[1][0].Data)
}

func TestPressEditsInPlace(t *testing.T) {
	f := newFixture(t)
	seed(t, f)

	res := f.bot.HandleUpdate(context.Background(), pressUpdate("pick:posters:en:99:603", true))
	assert.Equal(t, ResultRendered, res)
	assert.Equal(t, []string{"edit_media", "answer"}, f.out.ops())

	edit, _ := f.out.find("edit_media")
	assert.Equal(t, "https://img/en/11.jpg", edit.text)

	f = newFixture(t)
	seed(t, f)
	res = f.bot.HandleUpdate(context.Background(), pressUpdate("details:603", false))
	assert.Equal(t, ResultRendered, res)
	assert.Equal(t, []string{"edit_text", "answer"}, f.out.ops())
}

func TestPressSendDeliversNewMessage(t *testing.T) {
	f := newFixture(t)
	seed(t, f)

	res := f.bot.HandleUpdate(context.Background(), pressUpdate("send:posters:fr:1:603", true))
	assert.Equal(t, ResultRendered, res)
	assert.Equal(t, []string{"send_media", "answer"}, f.out.ops())

	img, _ := f.out.find("send_media")
	assert.Equal(t, "https://img/fr/1.jpg", img.text)
	assert.Empty(t, img.kb)
}

func TestPressClose(t *testing.T) {
	f := newFixture(t)
	seed(t, f)

	assert.Equal(t, ResultRendered, f.bot.HandleUpdate(context.Background(), pressUpdate("close:603", true)))
	assert.Equal(t, []string{"delete", "answer"}, f.out.ops())
}

func TestPressEmptySelection(t *testing.T) {
	f := newFixture(t)
	seed(t, f)

	res := f.bot.HandleUpdate(context.Background(), pressUpdate("view:backdrops:en:0:603", true))
	assert.Equal(t, ResultNotice, res)
	assert.Equal(t, []string{"answer"}, f.out.ops())
	ack, _ := f.out.find("answer")
	assert.Equal(t, "No images found for this selection.", ack.text)
}

func TestPressRenderFailure(t *testing.T) {
	f := newFixture(t)
	seed(t, f)
	down := errors.New("down")
	f.out.fail = map[string]error{"edit_text": down, "send_text": down, "delete": down}

	res := f.bot.HandleUpdate(context.Background(), pressUpdate("details:603", false))
	assert.Equal(t, ResultFailed, res)

	ack, ok := f.out.find("answer")
	require.True(t, ok)
	assert.Equal(t, view.DefaultCopy().Failure, ack.text)
	assert.True(t, ack.alert)
}

func TestPressAnswerFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	seed(t, f)
	f.out.fail = map[string]error{"answer": errors.New("query is too old")}

	assert.Equal(t, ResultRendered, f.bot.HandleUpdate(context.Background(), pressUpdate("details:603", false)))
}

func TestPressIsIdempotent(t *testing.T) {
	a, b := newFixture(t), newFixture(t)
	seed(t, a)
	seed(t, b)

	u := pressUpdate("page:posters:en:0:603", true)
	a.bot.HandleUpdate(context.Background(), u)
	b.bot.HandleUpdate(context.Background(), u)
	b.bot.HandleUpdate(context.Background(), u)

	assert.Equal(t, a.out.calls, b.out.calls[:len(a.out.calls)])
	assert.Equal(t, a.out.calls, b.out.calls[len(a.out.calls):])
}
