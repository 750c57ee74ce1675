// Package notify publishes notifications, editing the previous one for a key
// instead of posting a duplicate.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"garden_bot/internal/model"
	"garden_bot/internal/storage"
)

// ErrNotFound is returned by Sink.Edit when the target notification is gone.
var ErrNotFound = errors.New("notification not found")

// Message is rendered notification content.
type Message struct {
	Text string
	// Mention is prepended to the text when set.
	Mention string
}

// Sink creates and edits notifications in a chat.
type Sink interface {
	Create(ctx context.Context, chatID int64, msg Message) (messageID int, err error)
	Edit(ctx context.Context, ref model.NotificationRef, msg Message) error
}

// Publisher is the dedup layer in front of a Sink.
type Publisher struct {
	sink    Sink
	records storage.Notifications
	log     *slog.Logger
}

// NewPublisher creates a Publisher recording notification refs in records.
func NewPublisher(sink Sink, records storage.Notifications, log *slog.Logger) *Publisher {
	return &Publisher{sink: sink, records: records, log: log}
}

// Publish edits the notification stored under key, or creates one when there
// is none, it was deleted, or it lives in another chat. The stored ref is
// replaced after every create.
func (p *Publisher) Publish(ctx context.Context, key string, chatID int64, msg Message) error {
	ref, err := p.records.NotificationRef(ctx, key)
	switch {
	case err == nil && ref.ChatID == chatID:
		err := p.sink.Edit(ctx, ref, msg)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("edit %s: %w", key, err)
		}
		p.log.WarnContext(ctx, "notification gone, sending a new one",
			"key", key, "chat_id", ref.ChatID, "message_id", ref.MessageID)
	case err == nil:
		p.log.InfoContext(ctx, "channel changed, sending a new notification",
			"key", key, "old_chat_id", ref.ChatID, "chat_id", chatID)
	case !errors.Is(err, storage.ErrNotFound):
		// The ref is unreadable; a fresh notification is preferable to none.
		p.log.ErrorContext(ctx, "load notification ref", "key", key, "error", err)
	}

	id, err := p.sink.Create(ctx, chatID, msg)
	if err != nil {
		return fmt.Errorf("create %s: %w", key, err)
	}
	newRef := model.NotificationRef{ChatID: chatID, MessageID: id}
	if err := p.records.SetNotificationRef(ctx, key, newRef); err != nil {
		return fmt.Errorf("record %s: %w", key, err)
	}
	return nil
}

// Announce sends a one-shot notification that is never edited.
func (p *Publisher) Announce(ctx context.Context, chatID int64, msg Message) error {
	if _, err := p.sink.Create(ctx, chatID, msg); err != nil {
		return fmt.Errorf("announce: %w", err)
	}
	return nil
}
