package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"smart-grocery/internal/app"
	"smart-grocery/internal/config"
	"smart-grocery/internal/logging"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const commandTimeout = 30 * time.Second

// Bot serves grocery commands over a Telegram webhook.
type Bot struct {
	api    *tgbotapi.BotAPI
	app    *app.App
	cfg    *config.Config
	logger *logrus.Logger
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, a *app.App) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	logger := a.Logger()
	logger.Infof("Authorized on account %s", bot.Self.UserName)

	webhookURL := cfg.TelegramWebhookURL
	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", webhookURL, err)
	}
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", webhookURL, err)
	}
	logger.Infof("Webhook set response: %s", resp.Description)

	return &Bot{
		api:    bot,
		app:    a,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// RegisterHandlers registers the webhook and health handlers on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		logging.LogError(b.logger, "telegram", "handleWebhook", "parse update", nil, err)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		return
	}

	if !b.allowed(update.Message.From.ID) {
		b.logger.WithFields(logrus.Fields{
			"userID":   update.Message.From.ID,
			"userName": update.Message.From.UserName,
		}).Warn("unauthorized telegram access attempt")
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) allowed(userID int64) bool {
	return b.cfg.TelegramAllowUserID != 0 && userID == b.cfg.TelegramAllowUserID
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	text := newCommands(b.app).handle(ctx, msg.Text)

	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(reply); err != nil {
		logging.LogError(b.logger, "telegram", "processMessage", "send reply", map[string]int64{"chatID": msg.Chat.ID}, err)
	}
}
