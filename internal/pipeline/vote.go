package pipeline

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/dmitrijs2005/otvetbot/internal/logging"
	"github.com/dmitrijs2005/otvetbot/internal/models"
	"github.com/dmitrijs2005/otvetbot/internal/report"
	"github.com/dmitrijs2005/otvetbot/internal/session"
)

// Voter votes in polls with a random non-empty subset of the options.
type Voter struct {
	rng      *rand.Rand
	reporter report.Reporter
	logger   logging.Logger
}

// NewVoter returns a Voter drawing from rng. A nil rng uses a randomly
// seeded source.
func NewVoter(rng *rand.Rand, reporter report.Reporter, logger logging.Logger) *Voter {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Voter{rng: rng, reporter: reporter, logger: logger}
}

// Choose picks k options, k uniform in [1, len(options)], without
// replacement. It returns nil for an empty poll.
func (v *Voter) Choose(options []models.PollOption) []models.PollOption {
	n := len(options)
	if n == 0 {
		return nil
	}
	k := 1 + v.rng.IntN(n)
	chosen := make([]models.PollOption, 0, k)
	for _, i := range v.rng.Perm(n)[:k] {
		chosen = append(chosen, options[i])
	}
	return chosen
}

// Vote shows the poll, submits a random choice and reports the result.
// Only ctx cancellation is returned as an error.
func (v *Voter) Vote(ctx context.Context, sess *session.Session, q models.Question) (models.Outcome, error) {
	v.reporter.Poll(q)

	var options []models.PollOption
	if q.Poll != nil {
		options = q.Poll.Options
	}
	chosen := v.Choose(options)
	if len(chosen) == 0 {
		v.reporter.Failure(fmt.Errorf("%w: poll %d has no options", ErrVoteSubmissionFailed, q.ID))
		return models.OutcomeFailed, nil
	}

	if err := sess.Client.VoteInPoll(ctx, q, chosen); err != nil {
		if ctx.Err() != nil {
			return models.OutcomeFailed, ctx.Err()
		}
		v.logger.Warn(ctx, "vote failed", "question_id", q.ID, "error", err)
		v.reporter.Failure(fmt.Errorf("%w: poll %d: %w", ErrVoteSubmissionFailed, q.ID, err))
		return models.OutcomeFailed, nil
	}

	v.logger.Info(ctx, "vote posted", "question_id", q.ID, "options", len(chosen))
	v.reporter.Voted(q, chosen)
	return models.OutcomeVoted, nil
}
