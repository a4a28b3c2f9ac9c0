// Package bot connects the quiz engine to Telegram.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/example/sayingsbot/internal/quiz"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// sender is the part of the Telegram API the bot writes through
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// quizEngine applies chat actions
type quizEngine interface {
	Handle(ctx context.Context, chatID int64, action quiz.Action) (quiz.Response, error)
	ParseCallback(data string) quiz.Action
}

// Bot represents the Telegram bot application
type Bot struct {
	api    sender
	client *tgbotapi.BotAPI
	engine quizEngine
	config *BotConfig
	logger *slog.Logger
}

// New authorizes against Telegram and creates a bot instance
func New(token string, engine quizEngine, config *BotConfig, logger *slog.Logger) (*Bot, error) {
	if token == "" {
		return nil, errors.New("telegram bot token is empty")
	}
	if config == nil {
		config = DefaultConfig()
	}
	client, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %v", err)
	}
	client.Debug = config.Debug
	logger.Info("Authorized on account", slog.String("username", client.Self.UserName))

	b := newBot(client, engine, config, logger)
	b.client = client
	return b, nil
}

func newBot(api sender, engine quizEngine, config *BotConfig, logger *slog.Logger) *Bot {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	return &Bot{
		api:    api,
		engine: engine,
		config: config,
		logger: logger,
	}
}

// Start registers the command menu and processes updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	if b.client == nil {
		return errors.New("bot is not connected to Telegram")
	}
	if err := b.registerCommands(); err != nil {
		b.logger.Warn("Failed to register bot commands", slog.Any("error", err))
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.config.UpdateTimeout
	updates := b.client.GetUpdatesChan(updateConfig)

	go func() {
		<-ctx.Done()
		b.client.StopReceivingUpdates()
	}()

	b.logger.Info("Bot started", slog.Int("workers", b.config.Workers))
	newDispatcher(b.config.Workers, b.config.QueueSize, b.HandleUpdate).Run(ctx, updates)
	b.logger.Info("Bot stopped")
	return ctx.Err()
}

// registerCommands publishes the command menu shown by Telegram clients
func (b *Bot) registerCommands() error {
	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Начать тест"},
		tgbotapi.BotCommand{Command: "end", Description: "Завершить тест"},
	)
	if _, err := b.api.Request(commands); err != nil {
		return fmt.Errorf("failed to set commands: %v", err)
	}
	return nil
}

// HandleUpdate turns one Telegram update into a quiz action and delivers the replies
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	chatID, action, ok := b.actionFor(update)
	if !ok {
		return
	}
	logger := b.logger.With(slog.Int64("chat_id", chatID), slog.String("action", action.String()))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic while handling update", slog.Any("panic", r))
			b.deliver(ctx, chatID, []quiz.Reply{quiz.ErrorReply(fmt.Errorf("panic: %v", r))}, logger)
		}
	}()

	resp, err := b.engine.Handle(ctx, chatID, action)
	if err != nil {
		if errors.Is(err, quiz.ErrInvalidStateTransition) {
			logger.Warn("Action rejected", slog.Any("error", err))
		} else {
			logger.Error("Failed to handle action", slog.Any("error", err))
		}
		resp = quiz.Response{Replies: []quiz.Reply{quiz.ErrorReply(err)}}
	}
	b.deliver(ctx, chatID, resp.Replies, logger)
}

// deliver sends replies in order. A failed send is logged and does not stop the rest.
func (b *Bot) deliver(ctx context.Context, chatID int64, replies []quiz.Reply, logger *slog.Logger) {
	for _, reply := range replies {
		if ctx.Err() != nil {
			return
		}

		var msg tgbotapi.Chattable
		if reply.Media != "" {
			if _, err := os.Stat(reply.Media); err != nil {
				logger.Warn("Closing image is not available", slog.String("path", reply.Media), slog.Any("error", err))
				continue
			}
			msg = tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(reply.Media))
		} else {
			text := tgbotapi.NewMessage(chatID, reply.Text)
			if len(reply.Choices) > 0 {
				text.ReplyMarkup = createKeyboard(choiceRows(reply.Choices))
			}
			msg = text
		}

		if _, err := b.api.Send(msg); err != nil {
			logger.Error("Failed to send message", slog.Any("error", err))
		}
	}
}

// choiceRows lays out one button per row
func choiceRows(choices []quiz.Choice) [][]MenuButton {
	rows := make([][]MenuButton, 0, len(choices))
	for _, c := range choices {
		rows = append(rows, []MenuButton{{Text: c.Text, CallbackData: c.Data}})
	}
	return rows
}
