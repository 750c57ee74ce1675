// Package bot is the Telegram side of the service: it delivers notifications
// and answers operator commands.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"

	"garden_bot/internal/config"
	"garden_bot/internal/model"
	"garden_bot/internal/monitor"
	"garden_bot/internal/notify"
	"garden_bot/internal/render"
	"garden_bot/internal/storage"
)

const (
	sendsPerSecond = 20
	sendBurst      = 5
	maxRetries     = 3
	retryDelay     = time.Second

	errNotModified  = "message is not modified"
	errEditNotFound = "message to edit not found"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// StatusReporter reports the state of the running monitors.
type StatusReporter interface {
	Statuses() []monitor.Status
}

// Bot is the Telegram bot that sends notifications and handles operator commands.
type Bot struct {
	api        telegramAPI
	cfg        *config.Config
	snapshots  storage.Snapshots
	render     *render.Formatter
	status     StatusReporter
	limiter    *rate.Limiter
	retryDelay time.Duration
	log        *slog.Logger
}

// New creates a Bot with the given Telegram token.
func New(token string, cfg *config.Config, snapshots storage.Snapshots, f *render.Formatter, status StatusReporter, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return newBot(api, cfg, snapshots, f, status, log), nil
}

func newBot(api telegramAPI, cfg *config.Config, snapshots storage.Snapshots, f *render.Formatter, status StatusReporter, log *slog.Logger) *Bot {
	return &Bot{
		api:        api,
		cfg:        cfg,
		snapshots:  snapshots,
		render:     f,
		status:     status,
		limiter:    rate.NewLimiter(sendsPerSecond, sendBurst),
		retryDelay: retryDelay,
		log:        log,
	}
}

// Run starts the bot's long-polling loop, blocking until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		if !b.cfg.IsUserAllowed(update.CallbackQuery.From.ID) {
			return
		}
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}
	if update.Message.From == nil || !b.cfg.IsUserAllowed(update.Message.From.ID) {
		b.reply(ctx, update.Message.Chat.ID, "Access denied.")
		return
	}
	b.handleCommand(ctx, update.Message)
}

// Create sends a new message and returns its ID.
func (b *Bot) Create(ctx context.Context, chatID int64, msg notify.Message) (int, error) {
	out := tgbotapi.NewMessage(chatID, messageText(msg))
	out.DisableWebPagePreview = true
	sent, err := b.send(ctx, out)
	if err != nil {
		return 0, fmt.Errorf("send to chat %d: %w", chatID, err)
	}
	return sent.MessageID, nil
}

// Edit replaces the text of a previously sent message.
// It returns notify.ErrNotFound when the message no longer exists.
func (b *Bot) Edit(ctx context.Context, ref model.NotificationRef, msg notify.Message) error {
	out := tgbotapi.NewEditMessageText(ref.ChatID, ref.MessageID, messageText(msg))
	out.DisableWebPagePreview = true
	_, err := b.send(ctx, out)
	switch {
	case err == nil, isAPIError(err, errNotModified):
		return nil
	case isAPIError(err, errEditNotFound):
		return notify.ErrNotFound
	default:
		return fmt.Errorf("edit message %d in chat %d: %w", ref.MessageID, ref.ChatID, err)
	}
}

// send throttles outgoing requests and retries the ones Telegram rejects
// with 429 Too Many Requests.
func (b *Bot) send(ctx context.Context, c tgbotapi.Chattable) (tgbotapi.Message, error) {
	var sent tgbotapi.Message
	backoff := retry.WithMaxRetries(maxRetries, retry.NewConstant(b.retryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := b.limiter.Wait(ctx); err != nil {
			return err
		}
		m, err := b.api.Send(c)
		if err == nil {
			sent = m
			return nil
		}
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
			b.log.WarnContext(ctx, "telegram rate limit hit", "retry_after", apiErr.RetryAfter)
			if err := pause(ctx, time.Duration(apiErr.RetryAfter)*time.Second); err != nil {
				return err
			}
			return retry.RetryableError(err)
		}
		return err
	})
	return sent, err
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func isAPIError(err error, substr string) bool {
	var apiErr *tgbotapi.Error
	return errors.As(err, &apiErr) && strings.Contains(apiErr.Message, substr)
}

func messageText(msg notify.Message) string {
	if msg.Mention == "" {
		return msg.Text
	}
	return msg.Mention + "\n\n" + msg.Text
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if _, err := b.Create(ctx, chatID, notify.Message{Text: text}); err != nil {
		b.log.ErrorContext(ctx, "send reply", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())
	chatID := msg.Chat.ID

	b.log.DebugContext(ctx, "command", "cmd", cmd, "args", args, "chat_id", chatID)

	switch cmd {
	case "start":
		b.handleStart(ctx, chatID)
	case "help":
		b.handleHelp(ctx, chatID)
	case cmdStatus:
		b.handleStatus(ctx, chatID)
	case cmdStock:
		b.handleStock(ctx, chatID, args)
	default:
		b.reply(ctx, chatID, "Unknown command. Use /help for a list of commands.")
	}
}
