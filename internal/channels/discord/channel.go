package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/sepsiscan/sepsiscan/internal/alerts"
	"github.com/sepsiscan/sepsiscan/internal/config"
	apperrors "github.com/sepsiscan/sepsiscan/internal/errors"
)

// Channel delivers caregiver alerts to a Discord channel.
type Channel struct {
	session   *discordgo.Session
	channelID string
}

// New creates a REST-only session; no gateway connection is needed to post.
func New(cfg config.DiscordConfig) (*Channel, error) {
	if cfg.Token == "" || cfg.ChannelID == "" {
		return nil, apperrors.ErrChannelNotConfigured
	}
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, apperrors.Wrap(err, "ALERT_002", "discord session failed")
	}
	return &Channel{session: session, channelID: cfg.ChannelID}, nil
}

func (c *Channel) Name() string { return "discord" }

// Send posts the alert to the configured channel.
func (c *Channel) Send(_ context.Context, alert alerts.Alert) error {
	header := "⚠️ SepsiScan alert"
	if alert.Bypass {
		header = "🚨 SepsiScan EMERGENCY (no response to check-ins)"
	}
	content := fmt.Sprintf("%s\n**%s** — risk %s (%s)\n%s",
		header, alert.ProfileName, alert.Level, alert.AlertLevel, alert.Message)

	if _, err := c.session.ChannelMessageSend(c.channelID, content); err != nil {
		return apperrors.Wrap(err, "ALERT_002", "discord send failed")
	}
	return nil
}
