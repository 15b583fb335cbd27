// Package notification provides implementations for various notification services
package notification

import (
	"fmt"
	"time"

	tb "gopkg.in/tucnak/telebot.v2"

	"github.com/quantado/backplot/pkg/core"
)

// Telegram sends run summaries to a set of telegram chats. It
// implements core.Notifier.
type Telegram struct {
	client *tb.Bot
	chats  []int64
}

// TelegramOption configures the telegram notifier.
type TelegramOption func(*Telegram)

// WithClient replaces the telebot client, used in tests.
func WithClient(client *tb.Bot) TelegramOption {
	return func(t *Telegram) {
		t.client = client
	}
}

// NewTelegram creates a telegram notifier for the given bot token and
// recipient chat IDs.
func NewTelegram(token string, chats []int64, options ...TelegramOption) (*Telegram, error) {
	notifier := &Telegram{chats: chats}

	for _, option := range options {
		option(notifier)
	}

	if notifier.client == nil {
		client, err := tb.NewBot(tb.Settings{
			Token:  token,
			Poller: &tb.LongPoller{Timeout: 10 * time.Second},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create telegram bot: %w", err)
		}
		notifier.client = client
	}

	return notifier, nil
}

// Notify sends the message to every configured chat. Summaries are
// wrapped in a code block so table alignment survives.
func (t *Telegram) Notify(message string) error {
	text := fmt.Sprintf("```\n%s\n```", message)

	for _, chat := range t.chats {
		_, err := t.client.Send(&tb.Chat{ID: chat}, text, &tb.SendOptions{
			ParseMode: tb.ModeMarkdown,
		})
		if err != nil {
			return fmt.Errorf("failed to notify chat %d: %w", chat, err)
		}
	}
	return nil
}

var _ core.Notifier = (*Telegram)(nil)
