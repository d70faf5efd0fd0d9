package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sepsiscan/sepsiscan/internal/alerts"
	"github.com/sepsiscan/sepsiscan/internal/config"
	apperrors "github.com/sepsiscan/sepsiscan/internal/errors"
)

// Channel delivers caregiver alerts to a Telegram chat.
type Channel struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// New connects the bot API using the configured token.
func New(cfg config.TelegramConfig) (*Channel, error) {
	if cfg.BotToken == "" || cfg.ChatID == 0 {
		return nil, apperrors.ErrChannelNotConfigured
	}
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, apperrors.Wrap(err, "ALERT_002", "telegram connection failed")
	}
	return &Channel{bot: bot, chatID: cfg.ChatID}, nil
}

func (c *Channel) Name() string { return "telegram" }

// Send posts the alert to the configured chat.
func (c *Channel) Send(_ context.Context, alert alerts.Alert) error {
	msg := tgbotapi.NewMessage(c.chatID, formatAlert(alert))
	if _, err := c.bot.Send(msg); err != nil {
		return apperrors.Wrap(err, "ALERT_002", "telegram send failed")
	}
	return nil
}

func formatAlert(alert alerts.Alert) string {
	header := "⚠️ SepsiScan alert"
	if alert.Bypass {
		header = "🚨 SepsiScan EMERGENCY (no response to check-ins)"
	}
	return fmt.Sprintf("%s\n%s — risk %s (%s)\n%s",
		header, alert.ProfileName, alert.Level, alert.AlertLevel, alert.Message)
}
