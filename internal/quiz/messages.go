package quiz

import (
	"errors"
	"fmt"
)

const (
	textChooseDifficulty = "Выберите уровень сложности:"
	textChooseAction     = "Выберите действие:"
	textNotStarted       = "Вы еще не начали тест."
	textNotUnderstood    = "Я вас не понимаю"
	textSomethingWrong   = "Что-то пошло не так. Начните тест заново: /start"
	textRepeatButton     = "Повторить тест"
	textEndButton        = "Завершить"
)

// Choice is an inline button: its label and the callback data it sends back
type Choice struct {
	Text string
	Data string
}

// Reply is one outgoing message. Media, when set, is a path to an image
// sent instead of text.
type Reply struct {
	Text    string
	Choices []Choice
	Media   string
}

// Response is everything the transport should deliver for one action, in order
type Response struct {
	Replies []Reply
}

func textReply(text string) Reply {
	return Reply{Text: text}
}

func scoreText(score, total int) string {
	return fmt.Sprintf("Ваш счет: %d из %d", score, total)
}

func finalScoreText(score, total int) string {
	return fmt.Sprintf("Ваш окончательный счет: %d из %d", score, total)
}

func feedbackText(correct bool, translation string, score, total int) string {
	verdict := "Неправильно."
	if correct {
		verdict = "Правильно!"
	}
	return fmt.Sprintf("%s\nПравильный перевод: %s\n%s", verdict, translation, scoreText(score, total))
}

// ErrorReply converts an engine error into the message shown to the user.
// State violations read as "not understood"; everything else is a generic failure.
func ErrorReply(err error) Reply {
	if errors.Is(err, ErrInvalidStateTransition) {
		return textReply(textNotUnderstood)
	}
	return textReply(textSomethingWrong)
}
