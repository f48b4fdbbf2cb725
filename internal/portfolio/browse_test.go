package portfolio

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/portfoliobot/core/telegram/callbacks"
	"github.com/m3rciful/portfoliobot/core/telegram/keyboard"
	"github.com/m3rciful/portfoliobot/internal/domain"
)

// navPayloads decodes the prev/next buttons of a window markup.
func navPayloads(t *testing.T, kb keyboard.Markup) map[callbacks.Action]callbacks.Payload {
	t.Helper()
	out := map[callbacks.Action]callbacks.Payload{}
	for _, data := range buttonData(kb) {
		p, err := callbacks.Decode(data)
		require.NoError(t, err)
		if p.Family == callbacks.FamilyProject && (p.Action == callbacks.ActionPrev || p.Action == callbacks.ActionNext) {
			out[p.Action] = p
		}
	}
	return out
}

func TestWindowNavigationControls(t *testing.T) {
	item := domain.PortfolioItem{ID: 9, Title: "t", Description: "d", CategoryID: 2}
	cases := []struct {
		name       string
		index      int
		total      int
		prev, next bool
	}{
		{"single", 0, 1, false, false},
		{"first of three", 0, 3, false, true},
		{"middle of three", 1, 3, true, true},
		{"last of three", 2, 3, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := Window{Item: item, Index: tc.index, Total: tc.total}
			nav := navPayloads(t, windowMarkup(approvedView(2, false), w))

			p, ok := nav[callbacks.ActionPrev]
			assert.Equal(t, tc.prev, ok)
			if ok {
				assert.Equal(t, tc.index-1, p.Index)
				assert.Equal(t, int64(2), p.CategoryID)
			}
			n, ok := nav[callbacks.ActionNext]
			assert.Equal(t, tc.next, ok)
			if ok {
				assert.Equal(t, tc.index+1, n.Index)
				assert.Equal(t, int64(2), n.CategoryID)
			}
		})
	}
}

func TestWindowExtraControls(t *testing.T) {
	link := "https://example.com"
	doc := "doc-1"
	item := domain.PortfolioItem{ID: 4, Title: "t", Description: "d", Link: &link, DocumentRef: &doc, CategoryID: 1}
	w := Window{Item: item, Index: 0, Total: 1}

	user := windowMarkup(approvedView(1, false), w)
	texts := buttonTexts(user)
	assert.Contains(t, texts, "🔗 Go to Project")
	assert.Contains(t, texts, "📄 Download Document")
	assert.NotContains(t, texts, "🗑️ Delete Project")
	assert.Contains(t, texts, "1/1")

	admin := buttonTexts(windowMarkup(approvedView(1, true), w))
	assert.Contains(t, admin, "🗑️ Delete Project")

	mod := windowMarkup(moderationView(), w)
	assert.Contains(t, buttonTexts(mod), "✅ APPROVE")
	assert.NotContains(t, buttonTexts(mod), "🗑️ Delete Project")
	for _, data := range buttonData(mod) {
		p, err := callbacks.Decode(data)
		require.NoError(t, err)
		if p.Family == callbacks.FamilyProject {
			assert.True(t, p.Pending(), data)
			assert.Equal(t, int64(4), p.ItemID)
		}
	}

	notURL := "github.com/me"
	item.Link = &notURL
	assert.NotContains(t, buttonTexts(windowMarkup(approvedView(1, false), Window{Item: item, Total: 1})), "🔗 Go to Project")
}

func TestWindowClampsIndex(t *testing.T) {
	h := newHarness(t)
	items := h.repo.seed(t, 3, true, 1)
	ctx := context.Background()

	w, err := h.engine.Window(ctx, domain.ApprovedIn(1), 10)
	require.NoError(t, err)
	assert.Equal(t, 2, w.Index)
	assert.Equal(t, items[2].ID, w.Item.ID)
	assert.False(t, w.HasNext())

	w, err = h.engine.Window(ctx, domain.ApprovedIn(1), -4)
	require.NoError(t, err)
	assert.Equal(t, 0, w.Index)
	assert.Equal(t, 1, w.Position())
	assert.False(t, w.HasPrev())

	_, err = h.engine.Window(ctx, domain.ApprovedIn(2), 0)
	assert.ErrorIs(t, err, ErrEmpty)
	_, err = h.engine.Window(ctx, domain.Pending(), 0)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestWindowRefetchesOnceAfterConcurrentDelete(t *testing.T) {
	h := newHarness(t)
	items := h.repo.seed(t, 3, true, 1)
	ctx := context.Background()

	// the last item disappears between count and fetch
	h.repo.beforeFetch = func() {
		require.NoError(t, h.repo.DeleteItem(ctx, items[2].ID))
	}
	w, err := h.engine.Window(ctx, domain.ApprovedIn(1), 2)
	require.NoError(t, err)
	assert.Equal(t, 1, w.Index)
	assert.Equal(t, 2, w.Total)
	assert.Equal(t, items[1].ID, w.Item.ID)
	assert.Equal(t, 2, h.repo.fetches)

	// everything disappears: give up as empty after one retry
	h.repo.fetches = 0
	h.repo.beforeFetch = func() {
		for _, it := range items[:2] {
			require.NoError(t, h.repo.DeleteItem(ctx, it.ID))
		}
	}
	_, err = h.engine.Window(ctx, domain.ApprovedIn(1), 0)
	assert.ErrorIs(t, err, ErrEmpty)
	assert.Equal(t, 1, h.repo.fetches)
}

func TestBrowseAllCategoriesSingleItem(t *testing.T) {
	h := newHarness(t)
	h.repo.seed(t, 1, true, 5)
	h.repo.seed(t, 2, false, 5)

	out := h.handle(t, buttonEvent(userID, catData(domain.AllCategories)))
	assert.Equal(t, "browse.approved", out.Handler)

	edit := h.tr.last(t, "edit")
	assert.Empty(t, navPayloads(t, edit.kb))
	assert.Contains(t, edit.text, "🗂️ Category: All Projects")
	assert.Contains(t, edit.text, "💼 PROJECT (1/1): item-1")
	assert.Equal(t, 1, h.tr.count("answer"), "button press acknowledged once")
}

func TestBrowseEmptyCategoryReturnsToCategories(t *testing.T) {
	h := newHarness(t)
	h.repo.seed(t, 1, false, 4)

	out := h.handle(t, buttonEvent(userID, catData(4)))
	assert.Equal(t, ResultNotice, out.Result)
	assert.Equal(t, emptyCategoryText, h.tr.last(t, "answer").text)
	edit := h.tr.last(t, "edit")
	assert.Equal(t, categoriesText, edit.text)
	assert.Contains(t, buttonData(edit.kb), catData(domain.AllCategories))
}

func TestBrowseRendering(t *testing.T) {
	h := newHarness(t)
	photo := "photo-1"
	_, err := h.repo.InsertItem(context.Background(), domain.PortfolioItem{
		Title: "<b>shiny</b>", Description: "with photo", PhotoRef: &photo, IsApproved: true, CreatorID: userID, CategoryID: 1,
	})
	require.NoError(t, err)
	h.repo.seed(t, 1, true, 1)

	// photo item: the source message is replaced by a photo
	h.handle(t, buttonEvent(userID, catData(1)))
	assert.Equal(t, []string{"answer", "delete", "photo"}, h.tr.ops())
	sent := h.tr.last(t, "photo")
	assert.Equal(t, photo, sent.ref)
	assert.Contains(t, sent.text, "&lt;b&gt;shiny&lt;/b&gt;")

	// text item from a photo message: delete and send
	h.tr.reset()
	next := callbacks.Project(callbacks.ActionNext, 1, 1, 1).Encode()
	h.handle(t, photoButtonEvent(userID, next))
	assert.Equal(t, []string{"answer", "delete", "send"}, h.tr.ops())

	// text item from a text message: edit in place
	h.tr.reset()
	h.handle(t, buttonEvent(userID, next))
	assert.Equal(t, []string{"answer", "edit"}, h.tr.ops())

	// edit refused by the chat: fall back to delete and send
	h.tr.reset()
	h.tr.editErr = ErrEditFailed
	h.handle(t, buttonEvent(userID, next))
	assert.Equal(t, []string{"answer", "delete", "send"}, h.tr.ops())
	assert.True(t, strings.HasPrefix(h.tr.last(t, "send").text, "🗂️ Category: Backend (Python)"))
}

func TestNoopButtonIsAcknowledged(t *testing.T) {
	h := newHarness(t)
	out := h.handle(t, buttonEvent(userID, callbacks.Menu(MenuNoop).Encode()))
	assert.Equal(t, "menu.noop", out.Handler)
	assert.Equal(t, []string{"answer"}, h.tr.ops())

	h.tr.reset()
	out = h.handle(t, buttonEvent(userID, "garbage"))
	assert.Equal(t, "callback.unsupported", out.Handler)
	assert.Equal(t, unsupportedText, h.tr.last(t, "answer").text)
	assert.Equal(t, 1, h.tr.count("answer"))
}
