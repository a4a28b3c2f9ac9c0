package models

// SayingStats is the persisted row of the sayings table: the saying itself
// plus its answer counters.
type SayingStats struct {
	Saying
	Attempts        int `json:"attempts" db:"attempts"`
	CorrectAttempts int `json:"correct_attempts" db:"correct_attempts"`
}

// Accuracy returns the share of correct attempts in percent.
func (s SayingStats) Accuracy() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.CorrectAttempts) / float64(s.Attempts) * 100
}
