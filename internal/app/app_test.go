package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/catalogbot/core/config"
	tg "github.com/m3rciful/catalogbot/core/telegram"
	"github.com/m3rciful/catalogbot/internal/catalog"
)

type sentMessage struct {
	text   string
	markup *tele.ReplyMarkup
}

type fakeContext struct {
	tele.Context
	update tele.Update
	user   *tele.User
	store  map[string]any
	sent   []sentMessage
}

func newFakeContext(userID int64, text string) *fakeContext {
	user := &tele.User{ID: userID}
	return &fakeContext{
		update: tele.Update{ID: 1, Message: &tele.Message{Text: text, Sender: user, Chat: &tele.Chat{ID: userID}}},
		user:   user,
		store:  map[string]any{},
	}
}

func (f *fakeContext) Update() tele.Update        { return f.update }
func (f *fakeContext) Sender() *tele.User         { return f.user }
func (f *fakeContext) Chat() *tele.Chat           { return f.update.Message.Chat }
func (f *fakeContext) Text() string               { return f.update.Message.Text }
func (f *fakeContext) Callback() *tele.Callback   { return f.update.Callback }
func (f *fakeContext) Get(key string) interface{} { return f.store[key] }
func (f *fakeContext) Set(key string, v interface{}) {
	f.store[key] = v
}
func (f *fakeContext) Send(what interface{}, opts ...interface{}) error {
	msg := sentMessage{text: fmt.Sprint(what)}
	for _, o := range opts {
		if so, ok := o.(*tele.SendOptions); ok {
			msg.markup = so.ReplyMarkup
		}
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeContext) texts() []string {
	out := make([]string, len(f.sent))
	for i, m := range f.sent {
		out[i] = m.text
	}
	return out
}

// catalogAPI is a minimal /products/ resource holding one product with id 7.
type catalogAPI struct {
	mu      sync.Mutex
	product catalog.Product
	puts    []catalog.ProductInput
	posts   []catalog.ProductInput
}

func (api *catalogAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	api.mu.Lock()
	defer api.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/products/":
		_ = json.NewEncoder(w).Encode([]catalog.Product{api.product})
	case r.Method == http.MethodGet && r.URL.Path == "/products/7":
		_ = json.NewEncoder(w).Encode(api.product)
	case r.Method == http.MethodPut && r.URL.Path == "/products/7":
		var in catalog.ProductInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		api.puts = append(api.puts, in)
		_ = json.NewEncoder(w).Encode(catalog.Product{ID: 7, Name: in.Name, Description: in.Description, Price: in.Price})
	case r.Method == http.MethodPost && r.URL.Path == "/products/":
		var in catalog.ProductInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		api.posts = append(api.posts, in)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(catalog.Product{ID: 8, Name: in.Name, Description: in.Description, Price: in.Price})
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Not found"}`))
	}
}

func newTestApp(t *testing.T) (*App, *catalogAPI) {
	t.Helper()
	desc := "Desk lamp"
	api := &catalogAPI{product: catalog.Product{ID: 7, Name: "Lamp", Description: &desc, Price: 25.5}}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	cfg := &Config{
		Config:  coreconfig.Config{Telegram: coreconfig.TelegramConfig{Token: "123:abc"}},
		Catalog: CatalogConfig{BaseURL: srv.URL + "/products"},
	}
	require.NoError(t, Normalize(cfg))
	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, api
}

func (a *App) command(t *testing.T, c tele.Context, name string) {
	t.Helper()
	_, cmd, ok := a.registry.LookupCommand(name)
	require.True(t, ok, name)
	require.NoError(t, cmd.Handler(c))
}

func (a *App) press(t *testing.T, c tele.Context, unique string) {
	t.Helper()
	h, ok := a.registry.GetCallback(unique)
	require.True(t, ok, unique)
	require.NoError(t, h(c))
}

func buttonUniques(m *tele.ReplyMarkup) []string {
	if m == nil {
		return nil
	}
	var out []string
	for _, row := range m.InlineKeyboard {
		for _, b := range row {
			out = append(out, b.Unique)
		}
	}
	return out
}

func TestRegistryPublishesVisibleCommands(t *testing.T) {
	a, _ := newTestApp(t)
	var names []string
	for _, c := range a.registry.ListCommands(true) {
		names = append(names, c.Text)
	}
	assert.Equal(t, []string{"start", "list", "add", "get", "update", "delete", "cancel"}, names)

	for _, hidden := range []string{"/skip", "/help"} {
		_, _, ok := a.registry.LookupCommand(hidden)
		assert.True(t, ok, hidden)
	}
	assert.ElementsMatch(t, []string{cbSkip, cbCancel}, a.registry.ListCallbacks())
}

func TestListCommand(t *testing.T) {
	a, _ := newTestApp(t)
	c := newFakeContext(1, "/list")
	a.command(t, c, "/list")
	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0].text, "🏷️ Name: Lamp")
	assert.Nil(t, c.sent[0].markup)
}

func TestCreateDialogCancelButton(t *testing.T) {
	a, api := newTestApp(t)
	const user = 42

	c := newFakeContext(user, "/add")
	a.command(t, c, "/add")
	require.Len(t, c.sent, 1)
	assert.Equal(t, []string{cbCancel}, buttonUniques(c.sent[0].markup))
	assert.True(t, a.InProgress(context.Background(), user))

	c = newFakeContext(user, "Widget")
	require.NoError(t, a.HandleText(c))
	assert.Equal(t, []string{cbCancel}, buttonUniques(c.sent[0].markup))

	c = newFakeContext(user, "")
	a.press(t, c, cbCancel)
	assert.Equal(t, []string{"Action cancelled."}, c.texts())
	assert.False(t, a.InProgress(context.Background(), user))
	assert.Empty(t, api.posts)
}

func TestCreateDialogCommits(t *testing.T) {
	a, api := newTestApp(t)
	const user = 43
	a.command(t, newFakeContext(user, "/add"), "/add")
	for _, text := range []string{"Widget", "A nice widget"} {
		require.NoError(t, a.HandleText(newFakeContext(user, text)))
	}
	c := newFakeContext(user, "9,99")
	require.NoError(t, a.HandleText(c))

	assert.Equal(t, []string{"✅ Product added! ID: 8"}, c.texts())
	require.Len(t, api.posts, 1)
	assert.Equal(t, "Widget", api.posts[0].Name)
	assert.Equal(t, 9.99, api.posts[0].Price)
}

func TestUpdateDialogSkipButtons(t *testing.T) {
	a, api := newTestApp(t)
	const user = 44

	c := newFakeContext(user, "/update 7")
	a.command(t, c, "/update")
	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0].text, "Lamp")
	assert.Equal(t, []string{cbSkip, cbCancel}, buttonUniques(c.sent[0].markup))

	a.press(t, newFakeContext(user, ""), cbSkip)
	a.press(t, newFakeContext(user, ""), cbSkip)
	c = newFakeContext(user, "")
	a.press(t, c, cbSkip)

	assert.Equal(t, []string{"Price kept. Saving product...", "✅ Product updated!"}, c.texts())
	assert.Nil(t, c.sent[1].markup)
	require.Len(t, api.puts, 1)
	assert.Equal(t, api.product.Input(), api.puts[0])
	assert.False(t, a.InProgress(context.Background(), user))
}

func TestUnknownTextGetsHint(t *testing.T) {
	a, _ := newTestApp(t)
	c := newFakeContext(1, "hello there")
	require.NoError(t, a.UnknownText()(c))
	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0].text, "/start")

	c = newFakeContext(1, "/frobnicate")
	require.NoError(t, a.UnknownText()(c))
	assert.Contains(t, c.sent[0].text, "Unknown command /frobnicate")
}

func TestFallbackReplies(t *testing.T) {
	a, _ := newTestApp(t)
	cases := map[string]struct {
		h    tele.HandlerFunc
		want string
	}{
		"document": {a.UnknownDocument(), msgUnknownDocument},
		"callback": {a.UnknownCallback(), msgStaleButton},
		"limited":  {a.RateLimited(), msgRateLimited},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c := newFakeContext(1, "")
			require.NoError(t, tc.h(c))
			assert.Equal(t, []string{tc.want}, c.texts())
		})
	}
}

func TestTelegramRunOptions(t *testing.T) {
	a, _ := newTestApp(t)
	a.cfg.RateLimit.IntervalMS = 500

	opts, err := a.TelegramRunOptions()
	require.NoError(t, err)
	assert.Same(t, a.registry, opts.Registry)
	assert.Same(t, a.cfg.CoreConfig(), opts.Config)

	var mws []string
	for _, m := range opts.Middlewares {
		mws = append(mws, m.Name)
	}
	assert.Equal(t, []string{"recover", "rate_limit", "logger", "metrics"}, mws)

	endpoints := map[any]bool{}
	for _, r := range opts.Routes {
		endpoints[r.Endpoint] = true
	}
	for _, want := range []any{"/start", "/list", "/update", "/skip", tele.OnText, tele.OnDocument, tele.OnCallback} {
		assert.True(t, endpoints[want], "missing route %v", want)
	}
}

func TestOpsServerLifecycle(t *testing.T) {
	a, _ := newTestApp(t)
	a.cfg.Ops.Listen = "127.0.0.1:0"
	a.checks["probe"] = func(context.Context) error { return nil }

	require.NoError(t, a.onStart(context.Background(), tg.Runtime{}))
	require.NotNil(t, a.ops)

	resp, err := http.Get("http://" + a.ops.Addr() + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Contains(t, body.Checks, "probe")

	metricsResp, err := http.Get("http://" + a.ops.Addr() + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	assert.Equal(t, http.StatusOK, metricsResp.StatusCode)

	require.NoError(t, a.onStop(context.Background(), tg.Runtime{}))
}

func TestOpsServerDisabled(t *testing.T) {
	a, _ := newTestApp(t)
	require.NoError(t, a.onStart(context.Background(), tg.Runtime{}))
	assert.Nil(t, a.ops)
	require.NoError(t, a.onStop(context.Background(), tg.Runtime{}))
}

func TestBootstrapRejectsForeignConfig(t *testing.T) {
	_, err := Bootstrap(context.Background(), &coreCarrier{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unexpected config type"))
}

type coreCarrier struct{}

func (coreCarrier) CoreConfig() *coreconfig.Config { return &coreconfig.Config{} }
