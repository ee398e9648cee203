package intimate

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var transitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "socialnet",
	Subsystem: "intimate",
	Name:      "transitions_total",
	Help:      "Intimate request operations by operation and outcome.",
}, []string{"op", "outcome"})

func observe(op string, err error) {
	transitions.WithLabelValues(op, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrAlreadyRequested):
		return "already_requested"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAmbiguousState):
		return "ambiguous"
	case errors.Is(err, ErrSelfRequest), errors.Is(err, ErrUserNotFound):
		return "invalid"
	}
	return "error"
}
