package logger

import (
	"context"
	"fmt"
	"log/slog"
)

// AdminNotifier is the subset of the Telegram bot used for forwarding
// log records to the administrators.
type AdminNotifier interface {
	SendMessageWithLevel(msg string, level slog.Level)
}

// telegramHandler duplicates records at or above minLevel to the admin
// chat while delegating everything to the wrapped handler.
type telegramHandler struct {
	inner    slog.Handler
	notifier AdminNotifier
	minLevel slog.Level
}

// SetupTelegramHandler wraps an existing logger so that records at or
// above minLevel are also sent to the bot administrators.
func SetupTelegramHandler(log *slog.Logger, notifier AdminNotifier, minLevel slog.Level) *slog.Logger {
	return slog.New(&telegramHandler{
		inner:    log.Handler(),
		notifier: notifier,
		minLevel: minLevel,
	})
}

func (h *telegramHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level) || level >= h.minLevel
}

func (h *telegramHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level >= h.minLevel {
		msg := fmt.Sprintf("%s: %s", record.Level.String(), record.Message)
		record.Attrs(func(attr slog.Attr) bool {
			msg += fmt.Sprintf("\n%s: %v", attr.Key, attr.Value)
			return true
		})
		h.notifier.SendMessageWithLevel(msg, record.Level)
	}
	return h.inner.Handle(ctx, record)
}

func (h *telegramHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &telegramHandler{
		inner:    h.inner.WithAttrs(attrs),
		notifier: h.notifier,
		minLevel: h.minLevel,
	}
}

func (h *telegramHandler) WithGroup(name string) slog.Handler {
	return &telegramHandler{
		inner:    h.inner.WithGroup(name),
		notifier: h.notifier,
		minLevel: h.minLevel,
	}
}
