package bot

import (
	"log/slog"

	"github.com/example/sayingsbot/internal/quiz"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// chatOf returns the chat an update belongs to
func chatOf(update tgbotapi.Update) (int64, bool) {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		return update.Message.Chat.ID, true
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
		return update.CallbackQuery.Message.Chat.ID, true
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		return update.CallbackQuery.From.ID, true
	}
	return 0, false
}

// actionFor maps an update to the chat and action it carries. Updates that are
// neither messages nor button presses are ignored.
func (b *Bot) actionFor(update tgbotapi.Update) (int64, quiz.Action, bool) {
	chatID, ok := chatOf(update)
	if !ok {
		return 0, quiz.Action{}, false
	}

	if update.Message != nil {
		return chatID, commandAction(update.Message), true
	}

	callback := update.CallbackQuery
	// Always send an answer to the callback query to remove the loading state
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.logger.Warn("Failed to answer callback", slog.Int64("chat_id", chatID), slog.Any("error", err))
	}
	return chatID, b.engine.ParseCallback(callback.Data), true
}

// commandAction handles bot commands; any other text is not understood
func commandAction(message *tgbotapi.Message) quiz.Action {
	if !message.IsCommand() {
		return quiz.Unrecognized()
	}
	switch message.Command() {
	case "start":
		return quiz.Start()
	case "end":
		return quiz.End()
	default:
		return quiz.Unrecognized()
	}
}
