package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(dialogTransitionsTotal, dialogCompletionsTotal)
}

var (
	dialogTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialog_transitions_total",
			Help: "Dialog state transitions by flow and target state.",
		},
		[]string{"flow", "state"},
	)

	dialogCompletionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialog_completions_total",
			Help: "Finished dialogs by flow and outcome (committed, failed, cancelled).",
		},
		[]string{"flow", "outcome"},
	)
)

// IncDialogTransition counts a move of a dialog into state.
func IncDialogTransition(flow, state string) {
	dialogTransitionsTotal.WithLabelValues(norm(flow), norm(state)).Inc()
}

// IncDialogCompletion counts a dialog that ended.
func IncDialogCompletion(flow, outcome string) {
	dialogCompletionsTotal.WithLabelValues(norm(flow), norm(outcome)).Inc()
}
