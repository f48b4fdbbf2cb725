package portfolio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/portfoliobot/core/telegram/callbacks"
	"github.com/m3rciful/portfoliobot/internal/domain"
)

func TestStartCreatesUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	ev := commandEvent(userID, CommandStart)
	ev.Username = "@alice"
	out := h.handle(t, ev)
	assert.Equal(t, "command.start", out.Handler)

	u, err := h.repo.FindUserByIdentity(ctx, userID)
	require.NoError(t, err)
	assert.False(t, u.IsAdmin)
	require.NotNil(t, u.Username)
	assert.Equal(t, "alice", *u.Username)

	greeting := h.tr.last(t, "send")
	assert.Contains(t, greeting.text, "👋 Hi, Test User!")
	assert.Equal(t, []string{callbacks.Menu(MenuSubmit).Encode(), callbacks.Menu(MenuPortfolio).Encode()}, buttonData(greeting.kb))

	h.handle(t, commandEvent(adminID, CommandStart))
	admin, err := h.repo.FindUserByIdentity(ctx, adminID)
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)
}

func TestFallbackAndHelp(t *testing.T) {
	h := newHarness(t)

	out := h.handle(t, textEvent(userID, "hello"))
	assert.Equal(t, "fallback", out.Handler)
	fallback := h.tr.last(t, "send")
	assert.Equal(t, fallbackText, fallback.text)
	assert.Equal(t, []string{callbacks.Menu(MenuStart).Encode()}, buttonData(fallback.kb))

	out = h.handle(t, commandEvent(userID, "unknown"))
	assert.Equal(t, "fallback", out.Handler)

	out = h.handle(t, photoEvent(userID, "p"))
	assert.Equal(t, "fallback", out.Handler)

	out = h.handle(t, commandEvent(userID, CommandHelp))
	assert.Equal(t, "command.help", out.Handler)
	assert.Equal(t, helpText, h.tr.last(t, "send").text)
}

func TestEventsWithoutPrincipalAreIgnored(t *testing.T) {
	h := newHarness(t)
	out := h.handle(t, textEvent(0, "channel post"))
	assert.Equal(t, "ignored", out.Handler)
	assert.Empty(t, h.tr.ops())
}

func TestUpsertFailureSurfaces(t *testing.T) {
	h := newHarness(t)
	h.engine.repo = failingUpsert{h.repo}

	ev := buttonEvent(userID, callbacks.Menu(MenuPortfolio).Encode())
	_, err := h.engine.Handle(context.Background(), ev)
	require.ErrorIs(t, err, errBoom)
	assert.True(t, ev.Answered(), "the press is still acknowledged")
}

type failingUpsert struct {
	*fakeRepo
}

func (failingUpsert) UpsertUser(context.Context, int64, *string, bool) (domain.User, error) {
	return domain.User{}, errBoom
}

func TestSessionsArePerPrincipal(t *testing.T) {
	h := newHarness(t)
	const other int64 = 77

	h.handle(t, commandEvent(userID, CommandAddProject))
	h.handle(t, buttonEvent(userID, catData(1)))

	// another principal is unaffected by the open dialogue
	out := h.handle(t, textEvent(other, "hello"))
	assert.Equal(t, "fallback", out.Handler)
	_, ok := h.session(t, other)
	assert.False(t, ok)

	sess, ok := h.session(t, userID)
	require.True(t, ok)
	assert.Equal(t, StageAwaitTitle, sess.Stage)
}
