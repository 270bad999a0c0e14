package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Counter for play-throughs that reached the quiz screen
	gamesStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_games_started_total",
			Help: "Total number of quiz play-throughs started",
		},
		[]string{"attempt"}, // attempt: first/retry
	)

	// Counter for locked questions
	answers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_answers_total",
			Help: "Total number of locked questions by outcome",
		},
		[]string{"outcome"}, // outcome: correct/wrong/timeout
	)

	// Counter for hint activations
	hints = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_hints_total",
			Help: "Total number of hint activations",
		},
		[]string{"kind"}, // kind: eliminate/glow
	)

	// Counter for result writes
	writes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_result_writes_total",
			Help: "Total number of result writes by target and status",
		},
		[]string{"target", "status"}, // target: leaderboard/attempt
	)

	// Gauge for games currently held in memory
	activeGames = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quiz_active_games_current",
			Help: "Current number of open games",
		},
	)
)

// GameStarted counts a new play-through.
func GameStarted(attemptNumber int) {
	label := "retry"
	if attemptNumber <= 1 {
		label = "first"
	}
	gamesStarted.WithLabelValues(label).Inc()
}

// AnswerLocked counts a locked question.
func AnswerLocked(correct, timedOut bool) {
	switch {
	case timedOut:
		answers.WithLabelValues("timeout").Inc()
	case correct:
		answers.WithLabelValues("correct").Inc()
	default:
		answers.WithLabelValues("wrong").Inc()
	}
}

func HintUsed(kind string) {
	hints.WithLabelValues(kind).Inc()
}

// ResultWrite counts one of the two writes made when a game finishes.
func ResultWrite(target, status string) {
	writes.WithLabelValues(target, status).Inc()
}

func GameOpened() { activeGames.Inc() }

func GameClosed() { activeGames.Dec() }

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
