package models

// Outcome classifies how processing of a single question ended.
type Outcome string

const (
	OutcomeSkipped  Outcome = "skipped"
	OutcomeAnswered Outcome = "answered"
	OutcomeVoted    Outcome = "voted"
	OutcomeFailed   Outcome = "failed"
)
