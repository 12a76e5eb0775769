package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"inet-marketplace/internal/domain/model"
)

var _ AdminAlerter = (*TelegramAlerter)(nil)

// TelegramAlerter posts order activity into the operators' Telegram chat.
type TelegramAlerter struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramAlerter(token string, chatID int64) (*TelegramAlerter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &TelegramAlerter{bot: bot, chatID: chatID}, nil
}

func (t *TelegramAlerter) Alert(_ context.Context, n *model.Notification) error {
	text := fmt.Sprintf("%s\nuser: %s\nitem: %s (%s)\namount: %s\nintent: %s",
		n.Title, n.UserID, n.Metadata["item_name"], n.Metadata["item_kind"], n.Metadata["amount"], n.IntentID)
	msg := tgbotapi.NewMessage(t.chatID, text)
	_, err := t.bot.Send(msg)
	return err
}
