// Package store persists users, categories and portfolio items on sqlx.
// Queries are written with ? placeholders and rebound for the connected driver.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/portfoliobot/internal/domain"
)

// Store implements the portfolio repository.
type Store struct {
	db *sqlx.DB
}

// New wraps an open connection.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Ping reports whether the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) q(query string) string {
	return s.db.Rebind(query)
}

const itemColumns = `id, title, description, link, photo_ref, document_ref, is_approved, creator_id, category_id`

// UpsertUser inserts the principal or refreshes its username. The admin flag is only ever raised.
func (s *Store) UpsertUser(ctx context.Context, telegramID int64, username *string, isAdmin bool) (domain.User, error) {
	var u domain.User
	err := s.db.GetContext(ctx, &u, s.q(`
		INSERT INTO users (telegram_id, username, is_admin) VALUES (?, ?, ?)
		ON CONFLICT (telegram_id) DO UPDATE
		SET username = excluded.username, is_admin = users.is_admin OR excluded.is_admin
		RETURNING id, telegram_id, username, is_admin`),
		telegramID, username, isAdmin)
	if err != nil {
		return domain.User{}, fmt.Errorf("upsert user %d: %w", telegramID, err)
	}
	return u, nil
}

// FindUserByIdentity looks a user up by chat identity.
func (s *Store) FindUserByIdentity(ctx context.Context, telegramID int64) (domain.User, error) {
	var u domain.User
	err := s.db.GetContext(ctx, &u, s.q(`SELECT id, telegram_id, username, is_admin FROM users WHERE telegram_id = ?`), telegramID)
	if err != nil {
		return domain.User{}, notFound(err, "find user %d", telegramID)
	}
	return u, nil
}

// RecentUsers returns the most recently registered users, newest first.
func (s *Store) RecentUsers(ctx context.Context, limit int) ([]domain.User, error) {
	var users []domain.User
	err := s.db.SelectContext(ctx, &users, s.q(`SELECT id, telegram_id, username, is_admin FROM users ORDER BY id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("recent users: %w", err)
	}
	return users, nil
}

// UpsertDefaultCategories inserts the names that do not exist yet and reports how many were added.
func (s *Store) UpsertDefaultCategories(ctx context.Context, names []string) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt := tx.Rebind(`INSERT INTO categories (name) VALUES (?) ON CONFLICT (name) DO NOTHING`)
	added := 0
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		res, err := tx.ExecContext(ctx, stmt, name)
		if err != nil {
			return 0, fmt.Errorf("insert category %q: %w", name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return added, nil
}

// ListCategories returns all categories ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var cats []domain.Category
	if err := s.db.SelectContext(ctx, &cats, `SELECT id, name FROM categories ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// FindCategory looks a category up by id.
func (s *Store) FindCategory(ctx context.Context, id int64) (domain.Category, error) {
	var c domain.Category
	if err := s.db.GetContext(ctx, &c, s.q(`SELECT id, name FROM categories WHERE id = ?`), id); err != nil {
		return domain.Category{}, notFound(err, "find category %d", id)
	}
	return c, nil
}

// InsertItem validates and stores a new item, returning it with its id.
func (s *Store) InsertItem(ctx context.Context, item domain.PortfolioItem) (domain.PortfolioItem, error) {
	if err := item.Validate(); err != nil {
		return domain.PortfolioItem{}, err
	}
	var id int64
	err := s.db.GetContext(ctx, &id, s.q(`
		INSERT INTO portfolio_items (title, description, link, photo_ref, document_ref, is_approved, creator_id, category_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		item.Title, item.Description, item.Link, item.PhotoRef, item.DocumentRef, item.IsApproved, item.CreatorID, item.CategoryID)
	if err != nil {
		return domain.PortfolioItem{}, fmt.Errorf("insert item: %w", err)
	}
	item.ID = id
	return item, nil
}

// FindItem loads an item by id.
func (s *Store) FindItem(ctx context.Context, id int64) (domain.PortfolioItem, error) {
	var it domain.PortfolioItem
	if err := s.db.GetContext(ctx, &it, s.q(`SELECT `+itemColumns+` FROM portfolio_items WHERE id = ?`), id); err != nil {
		return domain.PortfolioItem{}, notFound(err, "find item %d", id)
	}
	return it, nil
}

// ApproveItem flips a pending item to approved. A second approval yields ErrAlreadyApproved.
func (s *Store) ApproveItem(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE portfolio_items SET is_approved = ? WHERE id = ? AND is_approved = ?`), true, id, false)
	if err != nil {
		return fmt.Errorf("approve item %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil || n > 0 {
		return err
	}
	it, err := s.FindItem(ctx, id)
	if err != nil {
		return err
	}
	if it.IsApproved {
		return domain.ErrAlreadyApproved
	}
	return fmt.Errorf("approve item %d: no row updated", id)
}

// DeleteItem removes an item.
func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM portfolio_items WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}
	return affected(res, "delete item %d", id)
}

// CountItems counts the items matching f.
func (s *Store) CountItems(ctx context.Context, f domain.Filter) (int, error) {
	where, args := filterClause(f)
	var n int
	if err := s.db.GetContext(ctx, &n, s.q(`SELECT COUNT(*) FROM portfolio_items WHERE `+where), args...); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

// FetchItemAt returns the item at a zero-based offset in creation order.
func (s *Store) FetchItemAt(ctx context.Context, f domain.Filter, offset int) (domain.PortfolioItem, error) {
	if offset < 0 {
		return domain.PortfolioItem{}, domain.ErrNotFound
	}
	where, args := filterClause(f)
	args = append(args, offset)
	var it domain.PortfolioItem
	err := s.db.GetContext(ctx, &it, s.q(`SELECT `+itemColumns+` FROM portfolio_items WHERE `+where+` ORDER BY id LIMIT 1 OFFSET ?`), args...)
	if err != nil {
		return domain.PortfolioItem{}, notFound(err, "fetch item at %d", offset)
	}
	return it, nil
}

// Stats aggregates user and item counters.
func (s *Store) Stats(ctx context.Context) (domain.Stats, error) {
	var st domain.Stats
	err := s.db.GetContext(ctx, &st, s.q(`
		SELECT
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(*) FROM portfolio_items) AS items,
			(SELECT COUNT(*) FROM portfolio_items WHERE is_approved = ?) AS approved,
			(SELECT COUNT(*) FROM portfolio_items WHERE is_approved = ?) AS pending`), true, false)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}

func filterClause(f domain.Filter) (string, []any) {
	where := "is_approved = ?"
	args := []any{f.Approved}
	if f.CategoryID != domain.AllCategories {
		where += " AND category_id = ?"
		args = append(args, f.CategoryID)
	}
	return where, args
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

func affected(res sql.Result, format string, args ...any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf(format+": %w", append(args, err)...)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
