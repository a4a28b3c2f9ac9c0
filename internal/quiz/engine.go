// Package quiz implements the per-chat quiz state machine.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/example/sayingsbot/internal/bank"
	"github.com/example/sayingsbot/pkg/models"
	"github.com/google/uuid"
)

// ErrInvalidStateTransition is returned for an action the chat's current state does not define.
var ErrInvalidStateTransition = errors.New("invalid state transition")

// StatsRecorder persists answer counters per saying
type StatsRecorder interface {
	LookupIDBySourceText(ctx context.Context, text string) (int64, error)
	RecordAttempt(ctx context.Context, id int64, wasCorrect bool) error
}

// Config configures the engine
type Config struct {
	Difficulties []Difficulty
	// ClosingAsset is an image path sent when a chat ends the quiz; empty disables it.
	ClosingAsset string
	// Rand shuffles answer options; seeded from the clock when nil.
	Rand *rand.Rand
}

// Engine turns chat actions into state transitions and replies. It never
// delivers anything itself.
type Engine struct {
	catalog      *bank.Catalog
	stats        StatsRecorder
	sessions     *SessionStore
	difficulties []Difficulty
	closingAsset string
	logger       *slog.Logger

	rndMu sync.Mutex
	rnd   *rand.Rand
}

// NewEngine creates an engine over a loaded catalog
func NewEngine(catalog *bank.Catalog, stats StatsRecorder, config Config, logger *slog.Logger) *Engine {
	if len(config.Difficulties) == 0 {
		config.Difficulties = DefaultDifficulties()
	}
	rnd := config.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		catalog:      catalog,
		stats:        stats,
		sessions:     NewSessionStore(),
		difficulties: config.Difficulties,
		closingAsset: config.ClosingAsset,
		logger:       logger,
		rnd:          rnd,
	}
}

// Sessions exposes the session store, e.g. for idle eviction
func (e *Engine) Sessions() *SessionStore {
	return e.sessions
}

// ParseCallback maps inline button data to an action using the engine's tiers
func (e *Engine) ParseCallback(data string) Action {
	return ParseCallback(data, e.difficulties)
}

// Handle applies one action to a chat. Actions for the same chat are
// serialized; a failed action leaves the session untouched.
func (e *Engine) Handle(ctx context.Context, chatID int64, action Action) (Response, error) {
	entry := e.sessions.acquire(chatID)
	defer e.sessions.release(chatID, entry)

	switch action.Kind {
	case ActionStart:
		return e.start(entry, chatID), nil
	case ActionEnd:
		return e.end(entry), nil
	case ActionSelectDifficulty:
		if !entry.active || entry.state.State != StateAwaitingDifficulty {
			return Response{}, invalidTransition(entry, action)
		}
		return e.selectDifficulty(entry, action.Difficulty)
	case ActionAnswer:
		if !entry.active || entry.state.State != StateAwaitingAnswer || !entry.state.HasDifficulty {
			return Response{}, invalidTransition(entry, action)
		}
		return e.answer(ctx, entry, action.Correct)
	case ActionRepeat:
		if !entry.active || entry.state.State != StateRunComplete || !entry.state.HasDifficulty {
			return Response{}, invalidTransition(entry, action)
		}
		return e.repeat(entry)
	case ActionEndRun:
		if !entry.active || entry.state.State != StateRunComplete {
			return Response{}, invalidTransition(entry, action)
		}
		return e.end(entry), nil
	default:
		return Response{Replies: []Reply{textReply(textNotUnderstood)}}, nil
	}
}

func invalidTransition(entry *chatSession, action Action) error {
	state := StateIdle
	if entry.active {
		state = entry.state.State
	}
	return fmt.Errorf("%w: %s in state %s", ErrInvalidStateTransition, action, state)
}

func (e *Engine) start(entry *chatSession, chatID int64) Response {
	entry.state = SessionState{
		ChatID: chatID,
		State:  StateAwaitingDifficulty,
	}
	entry.active = true

	choices := make([]Choice, 0, len(e.difficulties))
	for _, d := range e.difficulties {
		choices = append(choices, Choice{Text: d.Label, Data: d.Callback})
	}
	return Response{Replies: []Reply{{Text: textChooseDifficulty, Choices: choices}}}
}

func (e *Engine) selectDifficulty(entry *chatSession, tier int) (Response, error) {
	question, err := e.question(tier, 0)
	if err != nil {
		return Response{}, err
	}

	st := &entry.state
	st.Difficulty = tier
	st.HasDifficulty = true
	st.QuestionIndex = 0
	st.Score = 0
	st.TotalAnswered = 0
	st.RunID = uuid.New()
	st.State = StateAwaitingAnswer

	e.logger.Info("Run started",
		slog.Int64("chat_id", st.ChatID),
		slog.String("run_id", st.RunID.String()),
		slog.Int("difficulty", tier),
		slog.Int("questions", e.catalog.Len(tier)),
	)
	return Response{Replies: []Reply{question}}, nil
}

func (e *Engine) answer(ctx context.Context, entry *chatSession, correct bool) (Response, error) {
	st := &entry.state

	item, err := e.catalog.ItemAt(st.Difficulty, st.QuestionIndex)
	if err != nil {
		return Response{}, fmt.Errorf("failed to resolve current saying: %w", err)
	}
	id, err := e.stats.LookupIDBySourceText(ctx, item.SourceText)
	if err != nil {
		return Response{}, fmt.Errorf("failed to resolve saying id: %w", err)
	}
	if err := e.stats.RecordAttempt(ctx, id, correct); err != nil {
		return Response{}, fmt.Errorf("failed to record attempt: %w", err)
	}

	st.TotalAnswered++
	if correct {
		st.Score++
	}
	st.QuestionIndex++

	e.logger.Debug("Answer recorded",
		slog.Int64("chat_id", st.ChatID),
		slog.String("run_id", st.RunID.String()),
		slog.Int64("saying_id", id),
		slog.Bool("correct", correct),
	)

	if st.QuestionIndex >= e.catalog.Len(st.Difficulty) {
		st.State = StateRunComplete
		e.logger.Info("Run completed",
			slog.Int64("chat_id", st.ChatID),
			slog.String("run_id", st.RunID.String()),
			slog.Int("score", st.Score),
			slog.Int("total", st.TotalAnswered),
		)
		return Response{Replies: []Reply{
			textReply(scoreText(st.Score, st.TotalAnswered)),
			{
				Text: textChooseAction,
				Choices: []Choice{
					{Text: textRepeatButton, Data: CallbackRepeat},
					{Text: textEndButton, Data: CallbackEnd},
				},
			},
		}}, nil
	}

	next, err := e.question(st.Difficulty, st.QuestionIndex)
	if err != nil {
		return Response{}, err
	}
	return Response{Replies: []Reply{
		textReply(feedbackText(correct, item.CorrectTranslation, st.Score, st.TotalAnswered)),
		next,
	}}, nil
}

func (e *Engine) repeat(entry *chatSession) (Response, error) {
	st := &entry.state
	question, err := e.question(st.Difficulty, 0)
	if err != nil {
		return Response{}, err
	}

	st.QuestionIndex = 0
	st.Score = 0
	st.TotalAnswered = 0
	st.RunID = uuid.New()
	st.State = StateAwaitingAnswer

	e.logger.Info("Run repeated",
		slog.Int64("chat_id", st.ChatID),
		slog.String("run_id", st.RunID.String()),
		slog.Int("difficulty", st.Difficulty),
	)
	return Response{Replies: []Reply{question}}, nil
}

func (e *Engine) end(entry *chatSession) Response {
	var replies []Reply
	if entry.active {
		replies = append(replies, textReply(finalScoreText(entry.state.Score, entry.state.TotalAnswered)))
	} else {
		replies = append(replies, textReply(textNotStarted))
	}
	if e.closingAsset != "" {
		replies = append(replies, Reply{Media: e.closingAsset})
	}

	entry.active = false
	entry.state = SessionState{ChatID: entry.state.ChatID}
	return Response{Replies: replies}
}

// question renders the saying at index of a tier with its options in random order
func (e *Engine) question(tier, index int) (Reply, error) {
	item, err := e.catalog.ItemAt(tier, index)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to load question: %w", err)
	}

	options := e.shuffleOptions(item)
	choices := make([]Choice, len(options))
	for i, opt := range options {
		data := CallbackIncorrect
		if opt.correct {
			data = CallbackCorrect
		}
		choices[i] = Choice{Text: opt.text, Data: data}
	}
	return Reply{Text: item.SourceText, Choices: choices}, nil
}

type option struct {
	text    string
	correct bool
}

// shuffleOptions returns both translations in random order, each still
// tagged with whether it is the correct one.
func (e *Engine) shuffleOptions(item models.Saying) [2]option {
	options := [2]option{
		{text: item.CorrectTranslation, correct: true},
		{text: item.IncorrectTranslation, correct: false},
	}

	e.rndMu.Lock()
	e.rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	e.rndMu.Unlock()

	return options
}
