package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/portfoliobot/core/bootstrap"
	coreconfig "github.com/m3rciful/portfoliobot/core/config"
	tg "github.com/m3rciful/portfoliobot/core/telegram"
	"github.com/m3rciful/portfoliobot/core/telegram/callbacks"
	"github.com/m3rciful/portfoliobot/core/telegram/keyboard"
	"github.com/m3rciful/portfoliobot/core/telegram/state"
	"github.com/m3rciful/portfoliobot/internal/domain"
	"github.com/m3rciful/portfoliobot/internal/portfolio"
)

const adminID int64 = 1000

func newTestApp(t *testing.T) *Application {
	t.Helper()
	cfg := &coreconfig.Config{
		Telegram: coreconfig.TelegramConfig{AdminID: adminID},
		Database: coreconfig.DatabaseConfig{
			Driver:         coreconfig.DriverSQLite,
			Path:           filepath.Join(t.TempDir(), "bot.db"),
			MaxConnections: 1,
		},
		Health: coreconfig.HealthConfig{Listen: "127.0.0.1:0"},
	}
	res, err := bootstrap.Run(context.Background(), bootstrap.Options{
		Config:     cfg,
		Seeders:    Seeders(cfg),
		LoggerInit: func(*coreconfig.Config) error { return nil },
	})
	require.NoError(t, err)
	a := New(cfg, res.DB, state.NewMemoryStore())
	t.Cleanup(func() { _ = a.Close() })
	return a
}

// chat records what the engine shows, in order.
type chat struct {
	mu    sync.Mutex
	texts []string
	next  int
}

func (c *chat) add(text string) portfolio.MessageRef {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.texts = append(c.texts, text)
	c.next++
	return portfolio.MessageRef{ChatID: 1, MessageID: c.next}
}

func (c *chat) last() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.texts) == 0 {
		return ""
	}
	return c.texts[len(c.texts)-1]
}

func (c *chat) SendText(_ context.Context, _ int64, text string, _ keyboard.Markup) (portfolio.MessageRef, error) {
	return c.add(text), nil
}

func (c *chat) EditText(_ context.Context, _ portfolio.MessageRef, text string, _ keyboard.Markup) error {
	c.add(text)
	return nil
}

func (c *chat) SendPhoto(_ context.Context, _ int64, _, caption string, _ keyboard.Markup) (portfolio.MessageRef, error) {
	return c.add(caption), nil
}

func (c *chat) SendDocument(context.Context, int64, string) error { return nil }

func (c *chat) DeleteMessage(context.Context, portfolio.MessageRef) error { return nil }

func (c *chat) AnswerEvent(_ context.Context, _ *portfolio.Event, text string, _ bool) error {
	if text != "" {
		c.add(text)
	}
	return nil
}

func message(principal int64, text string) *portfolio.Event {
	return &portfolio.Event{Kind: portfolio.KindText, Principal: principal, ChatID: principal, Text: text, FullName: "Tester"}
}

func command(principal int64, name string) *portfolio.Event {
	return &portfolio.Event{Kind: portfolio.KindCommand, Principal: principal, ChatID: principal, Command: name, FullName: "Tester"}
}

func button(principal int64, p callbacks.Payload) *portfolio.Event {
	data := p.Encode()
	decoded, err := callbacks.Decode(data)
	return &portfolio.Event{
		Kind: portfolio.KindButton, Principal: principal, ChatID: principal,
		Data: data, Payload: decoded, PayloadErr: err, CallbackID: "cb",
		Source: portfolio.MessageRef{ChatID: principal, MessageID: 1},
	}
}

func TestSeedersArePersistentAndIdempotent(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	cats, err := a.Store.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(domain.DefaultCategories))
	admin, err := a.Store.FindUserByIdentity(ctx, adminID)
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)

	require.NoError(t, bootstrap.Seed(ctx, a.DB, Seeders(a.Config)...))
	cats, err = a.Store.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(domain.DefaultCategories))
}

func TestSubmissionAndModerationOverSQLite(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	c := &chat{}
	engine := a.Engine(c, nil)
	const user int64 = 42

	cats, err := a.Store.ListCategories(ctx)
	require.NoError(t, err)
	category := cats[0]

	steps := []*portfolio.Event{
		command(user, "add_project"),
		button(user, callbacks.Category(category.ID)),
		message(user, "Portfolio bot"),
		message(user, "Collects projects"),
		message(user, "https://example.com"),
		message(user, "no"),
		message(user, "no"),
	}
	for _, ev := range steps {
		_, err := engine.Handle(ctx, ev)
		require.NoError(t, err)
	}
	assert.Contains(t, c.last(), "Portfolio bot")

	n, err := a.Store.CountItems(ctx, domain.Pending())
	require.NoError(t, err)
	require.Equal(t, 1, n)
	item, err := a.Store.FetchItemAt(ctx, domain.Pending(), 0)
	require.NoError(t, err)
	require.NotNil(t, item.Link)
	assert.Equal(t, "https://example.com", *item.Link)

	out, err := engine.Handle(ctx, button(adminID, callbacks.Project(callbacks.ActionApprove, item.ID, 0, callbacks.PendingCategory)))
	require.NoError(t, err)
	assert.Equal(t, portfolio.ResultOK, out.Result)

	n, err = a.Store.CountItems(ctx, domain.ApprovedIn(category.ID))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = engine.Handle(ctx, button(user, callbacks.Category(category.ID)))
	require.NoError(t, err)
	assert.Contains(t, c.last(), "Portfolio bot")
}

func TestRoutesAndRegistry(t *testing.T) {
	a := newTestApp(t)

	canonical, _, ok := a.Registry.LookupCommand("/add")
	require.True(t, ok)
	assert.Equal(t, "add_project", canonical)
	for _, cmd := range a.Registry.ListCommands(true) {
		assert.NotEqual(t, "admin", cmd.Text, "admin command stays out of the public menu")
	}

	b, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)
	routes := a.Routes(tg.Runtime{Bot: b, Registry: a.Registry})
	assert.Len(t, routes, 5)

	opts, err := a.TelegramRunOptions()
	require.NoError(t, err)
	assert.NotEmpty(t, opts.Middlewares)
	assert.Same(t, a.Registry, opts.Registry)
}

func TestReadinessReportsStores(t *testing.T) {
	a := newTestApp(t)
	require.NotNil(t, a.Health)

	rec := httptest.NewRecorder()
	a.Health.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"ok"`)
}
