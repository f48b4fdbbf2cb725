package portfolio

import (
	"context"
	"fmt"
	"strings"

	"github.com/m3rciful/portfoliobot/core/telegram/callbacks"
	"github.com/m3rciful/portfoliobot/core/telegram/format"
	"github.com/m3rciful/portfoliobot/core/telegram/keyboard"
	"github.com/m3rciful/portfoliobot/internal/domain"
)

// Static menu payload names.
const (
	MenuStart      = "start"
	MenuSubmit     = "submit"
	MenuPortfolio  = "portfolio"
	MenuCategories = "categories"
	MenuAdmin      = "admin"
	MenuAdminAdd   = "admin_add"
	MenuModerate   = "moderate"
	MenuStats      = "stats"
	MenuUsers      = "users"
	// MenuNoop backs the position label between the navigation buttons.
	MenuNoop = "noop"
)

const (
	separator = "➖➖➖➖➖➖➖➖➖➖"

	startText = "👋 Hi, %s! I am a portfolio bot.\n" +
		"How can I help you? Use /help to see all commands."
	backToMenuText = "👋 Hi, %s! How can I help you?"
	helpText       = "I can execute the following commands:\n" +
		"• /start — Start communication\n" +
		"• /help — Show this menu\n" +
		"• /add_project — Suggest your project\n" +
		"• /cancel — Cancel the current submission\n" +
		"\nUse the buttons for quick access:"
	categoriesText   = "🗂️ PORTFOLIO: Select a category to view projects:"
	adminPanelText   = "🔐 <b>Admin Panel:</b> Select an action."
	fallbackText     = "Sorry, I don't understand this command. 😕\nTry /help for a list of commands."
	unsupportedText  = "Unsupported action."
	busyText         = "Please finish the current submission first, or go back to the main menu."
	alreadyStartText = "You already have a submission in progress."
	cancelledText    = "Submission cancelled."
)

func menuButton(text, name string) keyboard.Button {
	return keyboard.Data(text, callbacks.Menu(name).Encode())
}

func mainMenuMarkup() keyboard.Markup {
	return keyboard.Rows(
		keyboard.Row(menuButton("➕ Suggest a Project", MenuSubmit)),
		keyboard.Row(menuButton("💼 My Portfolio", MenuPortfolio)),
	)
}

// fallbackMarkup offers a way back when the input was not understood.
func fallbackMarkup() keyboard.Markup {
	return keyboard.Single(menuButton("🏠 Main Menu", MenuStart))
}

func adminMenuMarkup() keyboard.Markup {
	return keyboard.Rows(
		keyboard.Row(menuButton("🚨 Project Moderation", MenuModerate)),
		keyboard.Row(menuButton("➕ Add Project (as Admin)", MenuAdminAdd)),
		keyboard.Row(menuButton("📊 User Statistics", MenuStats)),
		keyboard.Row(menuButton("👤 User List", MenuUsers)),
		keyboard.Row(menuButton("💼 View Portfolio", MenuPortfolio)),
	)
}

// categoryMarkup lists the "all" sentinel first, then categories two per row.
func categoryMarkup(cats []domain.Category) keyboard.Markup {
	buttons := make([]keyboard.Button, 0, len(cats))
	for _, c := range cats {
		buttons = append(buttons, keyboard.Data(c.Name, callbacks.Category(c.ID).Encode()))
	}
	m := keyboard.Rows(keyboard.Row(keyboard.Data("⭐️ ALL PROJECTS", callbacks.Category(domain.AllCategories).Encode())))
	m = append(m, keyboard.Chunk(buttons, 2)...)
	return append(m, keyboard.Row(menuButton("🔙 Back to Main Menu", MenuStart)))
}

func (e *Engine) categoryPicker(ctx context.Context) (keyboard.Markup, error) {
	cats, err := e.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return categoryMarkup(cats), nil
}

func (e *Engine) showMainMenu(ctx context.Context, ev *Event, text string) error {
	return e.show(ctx, ev, fmt.Sprintf(text, format.Escape(ev.DisplayName())), mainMenuMarkup())
}

func (e *Engine) showAdminPanel(ctx context.Context, ev *Event) error {
	return e.show(ctx, ev, adminPanelText, adminMenuMarkup())
}

func (e *Engine) showCategories(ctx context.Context, ev *Event) error {
	kb, err := e.categoryPicker(ctx)
	if err != nil {
		return err
	}
	return e.show(ctx, ev, categoriesText, kb)
}

func (e *Engine) showStats(ctx context.Context, ev *Event, withUsers bool) error {
	st, err := e.repo.Stats(ctx)
	if err != nil {
		return err
	}
	var b strings.Builder
	b.WriteString(format.Bold("📊 BOT STATISTICS") + "\n" + separator + "\n")
	fmt.Fprintf(&b, "• Total users: %d\n", st.Users)
	fmt.Fprintf(&b, "• Total projects (all): %d\n", st.Items)
	fmt.Fprintf(&b, "• Approved: %d\n", st.Approved)
	fmt.Fprintf(&b, "• Pending moderation: %d", st.Pending)
	if withUsers {
		users, err := e.repo.RecentUsers(ctx, 10)
		if err != nil {
			return err
		}
		b.WriteString("\n" + separator + "\n" + format.Bold("LAST 10 USERS:"))
		for _, u := range users {
			if u.Username != nil && *u.Username != "" {
				fmt.Fprintf(&b, "\n• %s (ID: <code>%d</code>)", format.Code("@"+*u.Username), u.TelegramID)
			} else {
				fmt.Fprintf(&b, "\n• ID: <code>%d</code>", u.TelegramID)
			}
		}
	}
	return e.show(ctx, ev, b.String(), adminMenuMarkup())
}
