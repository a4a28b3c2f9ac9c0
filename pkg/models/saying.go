package models

// Saying is one translation quiz item: a Russian saying with one correct
// and one decoy English translation.
type Saying struct {
	ID                   int64  `json:"id" db:"id"`
	SourceText           string `json:"source_text" db:"source_text"`
	CorrectTranslation   string `json:"correct_translation" db:"correct_translation"`
	IncorrectTranslation string `json:"incorrect_translation" db:"incorrect_translation"`
	DifficultyLevel      int    `json:"difficulty_level" db:"difficulty_level"` // 0 = easy, 1 = medium
}
