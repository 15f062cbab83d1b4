package v1

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics with bounded cardinality: labels come from fixed enums, never
// from request payloads.
var (
	charactersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "progression_characters_created_total",
		Help: "Characters created",
	})

	experienceCredited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "progression_experience_credited_total",
		Help: "Experience credit requests by ledger kind",
	}, []string{"kind"}) // Bounded: "character", "mastery", "trait"

	checkpointsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "progression_checkpoints_saved_total",
		Help: "Checkpoints saved",
	})

	checkpointsRestored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "progression_checkpoints_restored_total",
		Help: "Checkpoints restored",
	})

	requestErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "progression_request_errors_total",
		Help: "Requests that ended in an error, by mapped HTTP status",
	}, []string{"status"})
)
