package portfolio

import (
	"context"
	"errors"

	"github.com/m3rciful/portfoliobot/core/telegram/keyboard"
	"github.com/m3rciful/portfoliobot/internal/domain"
)

// ErrEditFailed is returned by Transport.EditText when the message cannot be edited as text.
var ErrEditFailed = errors.New("portfolio: message cannot be edited as text")

// Transport is the chat surface the engine talks through.
type Transport interface {
	SendText(ctx context.Context, chatID int64, text string, kb keyboard.Markup) (MessageRef, error)
	// EditText fails with ErrEditFailed when msg is not a text message.
	EditText(ctx context.Context, msg MessageRef, text string, kb keyboard.Markup) error
	SendPhoto(ctx context.Context, chatID int64, photoRef, caption string, kb keyboard.Markup) (MessageRef, error)
	SendDocument(ctx context.Context, chatID int64, documentRef string) error
	// DeleteMessage is best-effort.
	DeleteMessage(ctx context.Context, msg MessageRef) error
	// AnswerEvent acknowledges a button press, optionally with a notice or alert.
	AnswerEvent(ctx context.Context, ev *Event, text string, alert bool) error
}

// Notifier delivers messages to principals outside the current conversation.
// Callers log and discard its error.
type Notifier interface {
	Notify(ctx context.Context, principal int64, text string) error
}

// Repository is the entity store used by the engine.
type Repository interface {
	UpsertUser(ctx context.Context, telegramID int64, username *string, isAdmin bool) (domain.User, error)
	FindUserByIdentity(ctx context.Context, telegramID int64) (domain.User, error)
	RecentUsers(ctx context.Context, limit int) ([]domain.User, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	FindCategory(ctx context.Context, id int64) (domain.Category, error)
	InsertItem(ctx context.Context, item domain.PortfolioItem) (domain.PortfolioItem, error)
	FindItem(ctx context.Context, id int64) (domain.PortfolioItem, error)
	ApproveItem(ctx context.Context, id int64) error
	DeleteItem(ctx context.Context, id int64) error
	CountItems(ctx context.Context, f domain.Filter) (int, error)
	FetchItemAt(ctx context.Context, f domain.Filter, offset int) (domain.PortfolioItem, error)
	Stats(ctx context.Context) (domain.Stats, error)
}
