// Package report renders operator-facing output: the profile banner, each
// question as it is processed, answers, polls and the end-of-run summary.
// Diagnostics belong in the logger, not here.
package report

import "github.com/dmitrijs2005/otvetbot/internal/models"

type Reporter interface {
	Profile(p models.Profile)
	Question(q models.Question)
	Skipped(q models.Question, reason string)
	Answer(q models.Question, text string)
	// Poll shows the numbered options of a poll before voting.
	Poll(q models.Question)
	Voted(q models.Question, chosen []models.PollOption)
	Failure(err error)
	Summary(s models.Stats)
	Notice(msg string)
}
