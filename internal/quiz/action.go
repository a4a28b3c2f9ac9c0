package quiz

import "fmt"

// ActionKind enumerates the user actions the engine understands
type ActionKind int

// Action kinds
const (
	ActionUnrecognized ActionKind = iota
	ActionStart
	ActionEnd
	ActionSelectDifficulty
	ActionAnswer
	ActionRepeat
	ActionEndRun
)

func (k ActionKind) String() string {
	switch k {
	case ActionStart:
		return "start"
	case ActionEnd:
		return "end"
	case ActionSelectDifficulty:
		return "select_difficulty"
	case ActionAnswer:
		return "answer"
	case ActionRepeat:
		return "repeat"
	case ActionEndRun:
		return "end_run"
	default:
		return "unrecognized"
	}
}

// Callback data carried by inline buttons
const (
	CallbackCorrect   = "correct"
	CallbackIncorrect = "incorrect"
	CallbackRepeat    = "repeat"
	CallbackEnd       = "end"
)

// Action is one inbound user action for a chat
type Action struct {
	Kind       ActionKind
	Difficulty int  // set for ActionSelectDifficulty
	Correct    bool // set for ActionAnswer
}

func (a Action) String() string {
	switch a.Kind {
	case ActionSelectDifficulty:
		return fmt.Sprintf("%s(%d)", a.Kind, a.Difficulty)
	case ActionAnswer:
		if a.Correct {
			return fmt.Sprintf("%s(%s)", a.Kind, CallbackCorrect)
		}
		return fmt.Sprintf("%s(%s)", a.Kind, CallbackIncorrect)
	}
	return a.Kind.String()
}

// Start begins a new quiz for the chat, discarding any previous progress.
func Start() Action { return Action{Kind: ActionStart} }

// End finishes the quiz from any state, as the /end command does.
func End() Action { return Action{Kind: ActionEnd} }

// SelectDifficulty picks the tier of the run.
func SelectDifficulty(tier int) Action {
	return Action{Kind: ActionSelectDifficulty, Difficulty: tier}
}

// Answer reports which of the two translations was chosen.
func Answer(correct bool) Action { return Action{Kind: ActionAnswer, Correct: correct} }

// Repeat restarts a completed run on the same tier.
func Repeat() Action { return Action{Kind: ActionRepeat} }

// EndRun finishes the quiz from the run-complete menu.
func EndRun() Action { return Action{Kind: ActionEndRun} }

// Unrecognized stands for any input the quiz does not understand.
func Unrecognized() Action { return Action{Kind: ActionUnrecognized} }

// Difficulty ties a tier of the catalog to its button
type Difficulty struct {
	Level    int
	Callback string
	Label    string
}

// DefaultDifficulties returns the two tiers offered after /start
func DefaultDifficulties() []Difficulty {
	return []Difficulty{
		{Level: 0, Callback: "easy", Label: "Боюсь волков, иду в рощу"},
		{Level: 1, Callback: "medium", Label: "Не боюсь волков, иду в лес"},
	}
}

// ParseCallback maps inline button data to an action
func ParseCallback(data string, difficulties []Difficulty) Action {
	switch data {
	case CallbackCorrect:
		return Answer(true)
	case CallbackIncorrect:
		return Answer(false)
	case CallbackRepeat:
		return Repeat()
	case CallbackEnd:
		return EndRun()
	}
	for _, d := range difficulties {
		if d.Callback == data {
			return SelectDifficulty(d.Level)
		}
	}
	return Unrecognized()
}
