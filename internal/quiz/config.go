package quiz

import "time"

// Config holds the fixed parameters of a play-through.
type Config struct {
	QuestionCount   int
	TimerSeconds    int
	TickInterval    time.Duration
	RevealDelay     time.Duration
	HintWindow      time.Duration
	EliminateChance float64
	WarningAt       []int
}

// DefaultConfig is seven questions, a 60 second countdown and a 2 second reveal.
func DefaultConfig() Config {
	return Config{
		QuestionCount:   7,
		TimerSeconds:    60,
		TickInterval:    time.Second,
		RevealDelay:     2 * time.Second,
		HintWindow:      2 * time.Second,
		EliminateChance: 0.8,
		WarningAt:       []int{10, 5, 3, 2, 1},
	}
}

func (c Config) isWarning(left int) bool {
	for _, w := range c.WarningAt {
		if w == left {
			return true
		}
	}
	return false
}
