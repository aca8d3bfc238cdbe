// Package bots_monitor is the Telegram front end. It routes commands,
// free-text filter input and inline keyboard callbacks to the discovery
// and sentiment services and renders the replies.
package bots_monitor

import (
	"context"
	"strings"

	"memescout/internal/features/discovery"
	"memescout/internal/features/sentiment"
	"memescout/internal/features/tg_charts"
	"memescout/internal/infra/log"
	"memescout/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const defaultPageSize = 15

// Sender is the slice of the Telegram API the handlers use. *tgbotapi.BotAPI
// satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Options wires the bot's dependencies. Filters may be nil, which disables
// the saved-filter features.
type Options struct {
	API       *tgbotapi.BotAPI
	Discovery *discovery.Service
	Sentiment *sentiment.Service
	Filters   storage.UserFilterStore
	PageSize  int
	ChartsDir string
}

type Bot struct {
	tg        *tgbotapi.BotAPI
	api       Sender
	discovery *discovery.Service
	sentiment *sentiment.Service
	filters   storage.UserFilterStore
	sessions  *SessionManager
	pageSize  int
	chartsDir string
}

func NewBot(opts Options) *Bot {
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.ChartsDir == "" {
		opts.ChartsDir = tg_charts.DefaultChartsDir
	}
	return &Bot{
		tg:        opts.API,
		api:       opts.API,
		discovery: opts.Discovery,
		sentiment: opts.Sentiment,
		filters:   opts.Filters,
		sessions:  NewSessionManager(),
		pageSize:  opts.PageSize,
		chartsDir: opts.ChartsDir,
	}
}

// Run consumes long-poll updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.tg.GetUpdatesChan(u)

	log.LogSuccess("Bot update loop started", zap.String("bot", b.tg.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.tg.StopReceivingUpdates()
			log.LogInfo("Bot update loop stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var err error
	var chatID int64

	switch {
	case update.CallbackQuery != nil:
		chatID = update.CallbackQuery.Message.Chat.ID
		err = b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		chatID = update.Message.Chat.ID
		err = b.handleCommand(ctx, update.Message)
	case update.Message != nil && update.Message.Text != "":
		chatID = update.Message.Chat.ID
		err = b.handleText(ctx, update.Message)
	default:
		return
	}

	if err != nil {
		log.LogError("Update handling failed",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendText(chatID, errorText)
	}
}

// sendHTML sends a new HTML-formatted message with an optional keyboard.
func (b *Bot) sendHTML(chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	_, err := b.api.Send(msg)
	return err
}

// sendText sends a plain message, for errors and short notices.
func (b *Bot) sendText(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.LogError("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// editOrSend edits the message a callback came from, falling back to a fresh
// message when the edit is rejected. An unchanged-content rejection is fine
// and swallowed.
func (b *Bot) editOrSend(chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) error {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.DisableWebPagePreview = true

	_, err := b.api.Send(edit)
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "message is not modified") {
		return nil
	}

	log.LogWarn("Edit failed, sending new message",
		zap.Int64("chat_id", chatID),
		zap.Int("message_id", messageID),
		zap.Error(err))
	return b.sendHTML(chatID, text, &markup)
}

// answerCallback acks a callback query so the button stops spinning.
func (b *Bot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		log.LogWarn("Failed to answer callback", zap.Error(err))
	}
}

// alertCallback pops a modal alert on the user's screen.
func (b *Bot) alertCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallbackWithAlert(id, text)); err != nil {
		log.LogWarn("Failed to answer callback", zap.Error(err))
	}
}
