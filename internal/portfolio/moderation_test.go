package portfolio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/portfoliobot/core/telegram/callbacks"
	"github.com/m3rciful/portfoliobot/internal/domain"
)

func projectData(action callbacks.Action, itemID int64, index int, categoryID int64) string {
	return callbacks.Project(action, itemID, index, categoryID).Encode()
}

func TestApproveReRendersSameIndex(t *testing.T) {
	h := newHarness(t)
	pending := h.repo.seed(t, 5, false, 2)
	ctx := context.Background()

	out := h.handle(t, buttonEvent(adminID, projectData(callbacks.ActionApprove, pending[2].ID, 2, callbacks.PendingCategory)))
	assert.Equal(t, "moderation.approve", out.Handler)
	assert.Equal(t, ResultOK, out.Result)

	got, err := h.repo.FindItem(ctx, pending[2].ID)
	require.NoError(t, err)
	assert.True(t, got.IsApproved)
	n, err := h.repo.CountItems(ctx, domain.Pending())
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	answer := h.tr.last(t, "answer")
	assert.Equal(t, "✅ Project 'item-3' APPROVED!", answer.text)
	assert.True(t, answer.alert)

	window := h.tr.last(t, "edit")
	assert.Contains(t, window.text, "🚨 MODERATION (3/4):")
	assert.Contains(t, window.text, "📝 Title: "+pending[3].Title)
	assert.Contains(t, buttonData(window.kb), projectData(callbacks.ActionApprove, pending[3].ID, 2, callbacks.PendingCategory))

	assert.Equal(t, []string{approvedNotifyTextFor("item-3")}, h.notifier.to(userID))
}

func approvedNotifyTextFor(title string) string {
	return "🎉 Congratulations! Your project '" + title + "' has passed moderation and been added to the portfolio!"
}

func TestApproveIsIdempotent(t *testing.T) {
	h := newHarness(t)
	item := h.repo.seed(t, 1, false, 1)[0]
	data := projectData(callbacks.ActionApprove, item.ID, 0, callbacks.PendingCategory)

	h.handle(t, buttonEvent(adminID, data))
	out := h.handle(t, buttonEvent(adminID, data))
	assert.Equal(t, ResultNotice, out.Result)
	assert.Equal(t, alreadyApprovedText, h.tr.last(t, "answer").text)
	assert.Len(t, h.notifier.to(userID), 1, "submitter is notified once")

	out = h.handle(t, buttonEvent(adminID, projectData(callbacks.ActionApprove, 999, 0, callbacks.PendingCategory)))
	assert.Equal(t, ResultNotice, out.Result)
	assert.Equal(t, approveMissingText, h.tr.last(t, "answer").text)
}

func TestApproveLastPendingGoesToAdminPanel(t *testing.T) {
	h := newHarness(t)
	item := h.repo.seed(t, 1, false, 1)[0]

	h.handle(t, buttonEvent(adminID, projectData(callbacks.ActionApprove, item.ID, 0, callbacks.PendingCategory)))
	// the alert already answered the press, so the empty notice becomes a message
	assert.Equal(t, emptyModerationText, h.tr.last(t, "send").text)
	assert.Equal(t, adminPanelText, h.tr.last(t, "edit").text)
}

func TestRejectDeletesAndNotifies(t *testing.T) {
	h := newHarness(t)
	pending := h.repo.seed(t, 2, false, 1)

	out := h.handle(t, buttonEvent(adminID, projectData(callbacks.ActionReject, pending[0].ID, 0, callbacks.PendingCategory)))
	assert.Equal(t, ResultOK, out.Result)
	_, err := h.repo.FindItem(context.Background(), pending[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, []string{"❌ Unfortunately, your project 'item-1' was rejected by the moderator."}, h.notifier.to(userID))
	assert.Contains(t, h.tr.last(t, "edit").text, "📝 Title: item-2")

	out = h.handle(t, buttonEvent(adminID, projectData(callbacks.ActionReject, pending[0].ID, 0, callbacks.PendingCategory)))
	assert.Equal(t, ResultNotice, out.Result)
	assert.Equal(t, rejectMissingText, h.tr.last(t, "answer").text)
}

func TestNotificationFailureIsSwallowed(t *testing.T) {
	h := newHarness(t)
	h.notifier.err = errBoom
	item := h.repo.seed(t, 1, false, 1)[0]

	out, err := h.engine.Handle(context.Background(), buttonEvent(adminID, projectData(callbacks.ActionApprove, item.ID, 0, callbacks.PendingCategory)))
	require.NoError(t, err)
	assert.Equal(t, ResultOK, out.Result)
	got, err := h.repo.FindItem(context.Background(), item.ID)
	require.NoError(t, err)
	assert.True(t, got.IsApproved)
}

func TestDeleteFromApprovedView(t *testing.T) {
	h := newHarness(t)
	item := h.repo.seed(t, 1, true, 1)[0]
	data := projectData(callbacks.ActionDelete, item.ID, 0, 1)

	out := h.handle(t, buttonEvent(adminID, data))
	assert.Equal(t, "moderation.delete", out.Handler)
	_, err := h.repo.FindItem(context.Background(), item.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "✅ Project 'item-1' deleted.", h.tr.last(t, "answer").text)
	assert.Equal(t, categoriesText, h.tr.last(t, "edit").text)
	assert.Empty(t, h.notifier.to(userID), "direct deletion does not notify")

	h.handle(t, buttonEvent(adminID, data))
	assert.Equal(t, deleteMissingText, h.tr.last(t, "answer").text)
}

func TestModerationRequiresAdmin(t *testing.T) {
	h := newHarness(t)
	item := h.repo.seed(t, 1, false, 1)[0]

	for _, data := range []string{
		projectData(callbacks.ActionApprove, item.ID, 0, callbacks.PendingCategory),
		projectData(callbacks.ActionReject, item.ID, 0, callbacks.PendingCategory),
		projectData(callbacks.ActionDelete, item.ID, 0, 1),
		projectData(callbacks.ActionNext, item.ID, 1, callbacks.PendingCategory),
		callbacks.Menu(MenuModerate).Encode(),
		callbacks.Menu(MenuStats).Encode(),
	} {
		h.tr.reset()
		out := h.handle(t, buttonEvent(userID, data))
		assert.Equal(t, ResultDenied, out.Result, data)
		assert.Equal(t, []string{"answer"}, h.tr.ops(), data)
	}
	got, err := h.repo.FindItem(context.Background(), item.ID)
	require.NoError(t, err)
	assert.False(t, got.IsApproved)

	h.tr.reset()
	out := h.handle(t, commandEvent(userID, CommandAdmin))
	assert.Equal(t, ResultDenied, out.Result)
	assert.Equal(t, deniedText, h.tr.last(t, "send").text)
}

func TestAdminPanelAndStats(t *testing.T) {
	h := newHarness(t)
	h.repo.seed(t, 2, true, 1)
	h.repo.seed(t, 1, false, 1)
	h.handle(t, commandEvent(userID, CommandStart))

	out := h.handle(t, commandEvent(adminID, CommandAdmin))
	assert.Equal(t, "command.admin", out.Handler)
	panel := h.tr.last(t, "send")
	assert.Equal(t, adminPanelText, panel.text)
	assert.Contains(t, buttonData(panel.kb), callbacks.Menu(MenuModerate).Encode())

	h.handle(t, buttonEvent(adminID, callbacks.Menu(MenuUsers).Encode()))
	stats := h.tr.last(t, "edit").text
	for _, want := range []string{"• Total users: 2", "• Total projects (all): 3", "• Approved: 2", "<b>📊 BOT STATISTICS</b>", "• Pending moderation: 1", "<b>LAST 10 USERS:</b>", "ID: <code>42</code>"} {
		assert.Contains(t, stats, want)
	}
}

func TestSendDocument(t *testing.T) {
	h := newHarness(t)
	doc := "doc-7"
	ctx := context.Background()
	approved, err := h.repo.InsertItem(ctx, domain.PortfolioItem{Title: "a", Description: "d", DocumentRef: &doc, IsApproved: true, CreatorID: userID, CategoryID: 1})
	require.NoError(t, err)
	pending, err := h.repo.InsertItem(ctx, domain.PortfolioItem{Title: "p", Description: "d", DocumentRef: &doc, CreatorID: userID, CategoryID: 1})
	require.NoError(t, err)

	h.handle(t, buttonEvent(userID, projectData(callbacks.ActionGetDoc, approved.ID, 0, 1)))
	assert.Equal(t, doc, h.tr.last(t, "document").ref)

	h.tr.reset()
	out := h.handle(t, buttonEvent(userID, projectData(callbacks.ActionGetDoc, pending.ID, 0, callbacks.PendingCategory)))
	assert.Equal(t, ResultNotice, out.Result)
	assert.Equal(t, documentMissingText, h.tr.last(t, "answer").text)
	assert.Zero(t, h.tr.count("document"))

	h.handle(t, buttonEvent(adminID, projectData(callbacks.ActionGetDoc, pending.ID, 0, callbacks.PendingCategory)))
	assert.Equal(t, 1, h.tr.count("document"))
}
