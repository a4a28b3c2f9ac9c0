package bot

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Number of goroutines processing updates; one chat always lands on the same worker
	Workers int
	// Pending updates buffered per worker
	QueueSize int
	// Long polling timeout in seconds
	UpdateTimeout int
	// Log Telegram API requests
	Debug bool
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		Workers:       8,
		QueueSize:     64,
		UpdateTimeout: 60,
	}
}
