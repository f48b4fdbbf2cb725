package portfolio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/portfoliobot/core/logger"
	"github.com/m3rciful/portfoliobot/core/telegram/callbacks"
	"github.com/m3rciful/portfoliobot/core/telegram/format"
	"github.com/m3rciful/portfoliobot/core/telegram/keyboard"
	"github.com/m3rciful/portfoliobot/internal/domain"
)

// ErrEmpty is returned by Window when the filter matches nothing.
var ErrEmpty = errors.New("portfolio: nothing to show")

const (
	// caption limits leave room for the header lines
	photoDescLimit = 700
	textDescLimit  = 3500
	titleLimit     = 100

	emptyCategoryText   = "There are no approved projects in this category yet 😟"
	emptyModerationText = "✅ No new projects pending moderation."
	allProjectsName     = "All Projects"
)

// Window is one item of a filtered set with its position.
type Window struct {
	Item  domain.PortfolioItem
	Index int
	Total int
}

// Position is the 1-based index shown to users.
func (w Window) Position() int { return w.Index + 1 }

func (w Window) HasPrev() bool { return w.Index > 0 }

func (w Window) HasNext() bool { return w.Index < w.Total-1 }

// Window loads the item at index among those matching f. The index is clamped into
// range; when the item set shrank between count and fetch, the lookup is repeated
// once before giving up with ErrEmpty.
func (e *Engine) Window(ctx context.Context, f domain.Filter, index int) (Window, error) {
	for attempt := 0; attempt < 2; attempt++ {
		total, err := e.repo.CountItems(ctx, f)
		if err != nil {
			return Window{}, err
		}
		if total == 0 {
			return Window{}, ErrEmpty
		}
		idx := min(max(index, 0), total-1)
		item, err := e.repo.FetchItemAt(ctx, f, idx)
		if err == nil {
			return Window{Item: item, Index: idx, Total: total}, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return Window{}, err
		}
		windowRefetches.Inc()
		logger.LogEvent(ctx, logger.SVCPortfolio, slog.LevelDebug, "browse.refetch",
			slog.String("status", "retry"),
			slog.Int("index", idx),
			slog.Int("total", total),
		)
	}
	return Window{}, ErrEmpty
}

// view distinguishes the two browsing instantiations.
type view struct {
	name       string
	filter     domain.Filter
	categoryID int64 // echoed in button payloads
	admin      bool
}

func approvedView(categoryID int64, admin bool) view {
	return view{name: "approved", filter: domain.ApprovedIn(categoryID), categoryID: categoryID, admin: admin}
}

func moderationView() view {
	return view{name: "moderation", filter: domain.Pending(), categoryID: callbacks.PendingCategory, admin: true}
}

func (v view) moderation() bool {
	return v.categoryID == callbacks.PendingCategory
}

// Browse renders the approved items of a category at index.
func (e *Engine) Browse(ctx context.Context, ev *Event, categoryID int64, index int) (Outcome, error) {
	return e.render(ctx, ev, approvedView(categoryID, e.gate.IsAdmin(ev.Principal)), index)
}

// Moderate renders the moderation queue at index.
func (e *Engine) Moderate(ctx context.Context, ev *Event, index int) (Outcome, error) {
	return e.render(ctx, ev, moderationView(), index)
}

func (e *Engine) render(ctx context.Context, ev *Event, v view, index int) (Outcome, error) {
	name := "browse." + v.name
	w, err := e.Window(ctx, v.filter, index)
	if errors.Is(err, ErrEmpty) {
		windowsRendered.WithLabelValues(v.name, "empty").Inc()
		if v.moderation() {
			if err := e.notice(ctx, ev, emptyModerationText, true); err != nil {
				return Outcome{}, err
			}
			return handled(name, ResultNotice), e.showAdminPanel(ctx, ev)
		}
		if err := e.notice(ctx, ev, emptyCategoryText, false); err != nil {
			return Outcome{}, err
		}
		return handled(name, ResultNotice), e.showCategories(ctx, ev)
	}
	if err != nil {
		return Outcome{}, err
	}

	caption, err := e.caption(ctx, v, w)
	if err != nil {
		return Outcome{}, err
	}
	kb := windowMarkup(v, w)
	windowsRendered.WithLabelValues(v.name, "rendered").Inc()
	logger.LogEvent(ctx, logger.SVCPortfolio, slog.LevelDebug, "browse.window",
		slog.String("status", "ok"),
		slog.String("view", v.name),
		slog.Int64("item_id", w.Item.ID),
		slog.Int("position", w.Position()),
		slog.Int("total", w.Total),
	)
	if w.Item.HasPhoto() {
		return handled(name, ResultOK), e.showPhoto(ctx, ev, *w.Item.PhotoRef, caption, kb)
	}
	return handled(name, ResultOK), e.show(ctx, ev, caption, kb)
}

func (e *Engine) categoryName(ctx context.Context, id int64) (string, error) {
	if id == domain.AllCategories {
		return allProjectsName, nil
	}
	c, err := e.repo.FindCategory(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Sprintf("#%d", id), nil
	}
	if err != nil {
		return "", err
	}
	return c.Name, nil
}

func (e *Engine) caption(ctx context.Context, v view, w Window) (string, error) {
	limit := textDescLimit
	if w.Item.HasPhoto() {
		limit = photoDescLimit
	}
	desc := format.Italic(format.Truncate(w.Item.Description, limit))

	var b strings.Builder
	if v.moderation() {
		cat, err := e.categoryName(ctx, w.Item.CategoryID)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "🚨 MODERATION (%d/%d):\n", w.Position(), w.Total)
		fmt.Fprintf(&b, "🗂️ Category: %s\n", format.Escape(cat))
		fmt.Fprintf(&b, "📝 Title: %s\n", displayTitle(w.Item.Title))
		fmt.Fprintf(&b, "👤 Added by: <code>%d</code>\n", w.Item.CreatorID)
	} else {
		cat, err := e.categoryName(ctx, v.categoryID)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "🗂️ Category: %s\n", format.Escape(cat))
		fmt.Fprintf(&b, "💼 PROJECT (%d/%d): %s\n", w.Position(), w.Total, displayTitle(w.Item.Title))
	}
	b.WriteString(separator + "\n" + desc)
	return b.String(), nil
}

// displayTitle escapes a title for HTML, shortened to fit captions and alerts.
func displayTitle(title string) string {
	return format.Escape(format.Truncate(title, titleLimit))
}

// windowMarkup builds the controls of a window. Navigation buttons carry the index
// they lead to and the filter, so the next round trip needs no server-side cursor.
func windowMarkup(v view, w Window) keyboard.Markup {
	item := w.Item
	btn := func(text string, action callbacks.Action, index int) keyboard.Button {
		return keyboard.Data(text, callbacks.Project(action, item.ID, index, v.categoryID).Encode())
	}

	var prev, next keyboard.Button
	if w.HasPrev() {
		prev = btn("⬅️ Back", callbacks.ActionPrev, w.Index-1)
	}
	if w.HasNext() {
		next = btn("Next ➡️", callbacks.ActionNext, w.Index+1)
	}
	nav := keyboard.Row(prev, menuButton(fmt.Sprintf("%d/%d", w.Position(), w.Total), MenuNoop), next)

	var link, doc, del keyboard.Button
	if url, ok := item.WebLink(); ok {
		link = keyboard.URL("🔗 Go to Project", url)
	}
	if item.HasDocument() {
		doc = btn("📄 Download Document", callbacks.ActionGetDoc, w.Index)
	}
	if v.admin && !v.moderation() {
		del = btn("🗑️ Delete Project", callbacks.ActionDelete, w.Index)
	}
	actions := keyboard.Row(link, doc, del)

	if v.moderation() {
		return keyboard.Rows(nav, actions,
			keyboard.Row(btn("✅ APPROVE", callbacks.ActionApprove, w.Index), btn("❌ REJECT", callbacks.ActionReject, w.Index)),
			keyboard.Row(menuButton("🔙 Back to Moderation Menu", MenuAdmin)),
		)
	}
	return keyboard.Rows(nav, actions,
		keyboard.Row(menuButton("🗂️ To Categories", MenuCategories)),
		keyboard.Row(menuButton("🔙 Back to Main Menu", MenuStart)),
	)
}
