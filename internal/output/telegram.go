package output

import (
	"context"
	"fmt"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/spangle/simplebackup/internal/config"
)

// telegramFileLimitMB is the bot API's document size ceiling; larger
// artifacts fall back to a notification.
const telegramFileLimitMB = 50

// Telegram delivers artifacts as chat documents, or a notification for
// artifacts too large to send.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegram(cfg *config.OutputConfig) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	var chatID int64
	fmt.Sscanf(cfg.ChatID, "%d", &chatID)

	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) Type() string { return "telegram" }

func (t *Telegram) Send(ctx context.Context, artifactPath string) error {
	info, err := os.Stat(artifactPath)
	if err != nil {
		return fmt.Errorf("failed to stat artifact: %w", err)
	}
	sizeMB := float64(info.Size()) / (1024 * 1024)

	if sizeMB > telegramFileLimitMB {
		message := fmt.Sprintf("Backup created: %s (%.2f MB, too large to attach)",
			artifactPath, sizeMB)
		if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, message)); err != nil {
			return fmt.Errorf("failed to send telegram notification: %w", err)
		}
		return nil
	}

	document := tgbotapi.NewDocument(t.chatID, tgbotapi.FilePath(artifactPath))
	document.Caption = fmt.Sprintf("Backup: %s (%.2f MB)", artifactPath, sizeMB)
	if _, err := t.bot.Send(document); err != nil {
		return fmt.Errorf("failed to send telegram file: %w", err)
	}

	return nil
}
