package portfolio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/portfoliobot/core/logger"
	"github.com/m3rciful/portfoliobot/internal/domain"
)

const (
	approveMissingText  = "⛔️ Project not found (perhaps deleted)."
	alreadyApprovedText = "✅ This project has already been approved."
	approvedText        = "✅ Project '%s' APPROVED!"
	approvedNotifyText  = "🎉 Congratulations! Your project '%s' has passed moderation and been added to the portfolio!"
	rejectMissingText   = "⛔️ Project not found (perhaps already deleted)."
	rejectedText        = "❌ Project '%s' REJECTED and DELETED."
	rejectedNotifyText  = "❌ Unfortunately, your project '%s' was rejected by the moderator."
	deleteMissingText   = "⛔️ Project already deleted."
	deletedText         = "✅ Project '%s' deleted."
	documentMissingText = "⛔️ Document not found or was deleted."
)

// Approve publishes a pending item, notifies its submitter and re-renders the
// moderation queue at the same index, which now holds the next pending item.
func (e *Engine) Approve(ctx context.Context, ev *Event, itemID int64, index int) (Outcome, error) {
	const name = "moderation.approve"
	item, err := e.repo.FindItem(ctx, itemID)
	if errors.Is(err, domain.ErrNotFound) {
		return e.moderationNotice(ctx, ev, "approve", itemID, "missing", approveMissingText)
	}
	if err != nil {
		return Outcome{}, err
	}
	if item.IsApproved {
		return e.moderationNotice(ctx, ev, "approve", itemID, "already_approved", alreadyApprovedText)
	}

	switch err := e.repo.ApproveItem(ctx, itemID); {
	case errors.Is(err, domain.ErrAlreadyApproved):
		return e.moderationNotice(ctx, ev, "approve", itemID, "already_approved", alreadyApprovedText)
	case errors.Is(err, domain.ErrNotFound):
		return e.moderationNotice(ctx, ev, "approve", itemID, "missing", approveMissingText)
	case err != nil:
		return Outcome{}, err
	}

	moderationActions.WithLabelValues("approve", "ok").Inc()
	logger.LogEvent(ctx, logger.SVCModeration, slog.LevelInfo, name,
		slog.String("status", "ok"),
		slog.Int64("item_id", itemID),
		slog.Int64("creator_id", item.CreatorID),
	)
	title := displayTitle(item.Title)
	if err := e.notice(ctx, ev, fmt.Sprintf(approvedText, title), true); err != nil {
		return Outcome{}, err
	}
	e.notifyBestEffort(ctx, item.CreatorID, fmt.Sprintf(approvedNotifyText, title), "approved")

	if _, err := e.Moderate(ctx, ev, index); err != nil {
		return Outcome{}, err
	}
	return handled(name, ResultOK), nil
}

// Reject deletes a pending item, notifies its submitter and re-renders the queue.
func (e *Engine) Reject(ctx context.Context, ev *Event, itemID int64, index int) (Outcome, error) {
	const name = "moderation.reject"
	item, err := e.repo.FindItem(ctx, itemID)
	if errors.Is(err, domain.ErrNotFound) {
		return e.moderationNotice(ctx, ev, "reject", itemID, "missing", rejectMissingText)
	}
	if err != nil {
		return Outcome{}, err
	}
	if err := e.repo.DeleteItem(ctx, itemID); errors.Is(err, domain.ErrNotFound) {
		return e.moderationNotice(ctx, ev, "reject", itemID, "missing", rejectMissingText)
	} else if err != nil {
		return Outcome{}, err
	}

	moderationActions.WithLabelValues("reject", "ok").Inc()
	logger.LogEvent(ctx, logger.SVCModeration, slog.LevelInfo, name,
		slog.String("status", "ok"),
		slog.Int64("item_id", itemID),
		slog.Int64("creator_id", item.CreatorID),
	)
	title := displayTitle(item.Title)
	if err := e.notice(ctx, ev, fmt.Sprintf(rejectedText, title), true); err != nil {
		return Outcome{}, err
	}
	e.notifyBestEffort(ctx, item.CreatorID, fmt.Sprintf(rejectedNotifyText, title), "rejected")

	if _, err := e.Moderate(ctx, ev, index); err != nil {
		return Outcome{}, err
	}
	return handled(name, ResultOK), nil
}

// Delete removes an item from the approved browsing view without notifying anyone,
// then returns to the category selection.
func (e *Engine) Delete(ctx context.Context, ev *Event, itemID int64) (Outcome, error) {
	const name = "moderation.delete"
	item, err := e.repo.FindItem(ctx, itemID)
	if errors.Is(err, domain.ErrNotFound) {
		return e.moderationNotice(ctx, ev, "delete", itemID, "missing", deleteMissingText)
	}
	if err != nil {
		return Outcome{}, err
	}
	if err := e.repo.DeleteItem(ctx, itemID); errors.Is(err, domain.ErrNotFound) {
		return e.moderationNotice(ctx, ev, "delete", itemID, "missing", deleteMissingText)
	} else if err != nil {
		return Outcome{}, err
	}

	moderationActions.WithLabelValues("delete", "ok").Inc()
	logger.LogEvent(ctx, logger.SVCModeration, slog.LevelInfo, name,
		slog.String("status", "ok"),
		slog.Int64("item_id", itemID),
	)
	if err := e.notice(ctx, ev, fmt.Sprintf(deletedText, displayTitle(item.Title)), true); err != nil {
		return Outcome{}, err
	}
	return handled(name, ResultOK), e.showCategories(ctx, ev)
}

// SendDocument sends the document attached to an item. Documents of pending items
// are only handed to the administrator.
func (e *Engine) SendDocument(ctx context.Context, ev *Event, itemID int64) (Outcome, error) {
	const name = "browse.get_doc"
	item, err := e.repo.FindItem(ctx, itemID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return Outcome{}, err
	}
	visible := err == nil && (item.IsApproved || e.gate.IsAdmin(ev.Principal))
	if !visible || !item.HasDocument() {
		return handled(name, ResultNotice), e.notice(ctx, ev, documentMissingText, true)
	}
	if err := e.notice(ctx, ev, "Loading document...", false); err != nil {
		return Outcome{}, err
	}
	if err := e.tr.SendDocument(ctx, ev.ChatID, *item.DocumentRef); err != nil {
		return Outcome{}, fmt.Errorf("send document of item %d: %w", itemID, err)
	}
	return handled(name, ResultOK), nil
}

func (e *Engine) moderationNotice(ctx context.Context, ev *Event, action string, itemID int64, result, text string) (Outcome, error) {
	name := "moderation." + action
	moderationActions.WithLabelValues(action, result).Inc()
	logger.LogEvent(ctx, logger.SVCModeration, slog.LevelInfo, name,
		slog.String("status", "skip"),
		slog.String("reason", result),
		slog.Int64("item_id", itemID),
	)
	return handled(name, ResultNotice), e.notice(ctx, ev, text, true)
}

// notifyBestEffort delivers text to principal. A failure is logged and dropped;
// it never fails the action that triggered it.
func (e *Engine) notifyBestEffort(ctx context.Context, principal int64, text, reason string) {
	err := e.notifier.Notify(ctx, principal, text)
	if err == nil {
		notificationsTotal.WithLabelValues("ok").Inc()
		return
	}
	notificationsTotal.WithLabelValues("fail").Inc()
	logger.LogEvent(ctx, logger.SVCModeration, slog.LevelWarn, "notify.failed",
		slog.String("status", "fail"),
		slog.String("reason", reason),
		slog.Int64("target_id", principal),
		slog.String("err", logger.ErrAttr(err)),
	)
}
