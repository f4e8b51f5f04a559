package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/otvetbot/internal/backend"
	"github.com/dmitrijs2005/otvetbot/internal/logging"
	"github.com/dmitrijs2005/otvetbot/internal/models"
	"github.com/dmitrijs2005/otvetbot/internal/report"
	"github.com/dmitrijs2005/otvetbot/internal/session"
)

type Loop struct {
	dispatcher *Dispatcher
	voter      *Voter
	reporter   report.Reporter
	logger     logging.Logger

	stats models.Stats
}

func NewLoop(dispatcher *Dispatcher, voter *Voter, reporter report.Reporter, logger logging.Logger) *Loop {
	return &Loop{dispatcher: dispatcher, voter: voter, reporter: reporter, logger: logger}
}

// Stats returns the outcome counters of the current run.
func (l *Loop) Stats() models.Stats {
	return l.stats
}

// Run processes new questions until the stream ends, ctx is canceled or a
// quota is exhausted. Only the quota case returns an error.
func (l *Loop) Run(ctx context.Context, sess *session.Session) error {
	for ids, err := range sess.Client.NewQuestions(ctx) {
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			l.logger.Warn(ctx, "polling new questions failed", "error", err)
			l.reporter.Failure(fmt.Errorf("poll new questions: %w", err))
			continue
		}

		l.logger.Debug(ctx, "new questions", "count", len(ids))
		for _, id := range ids {
			outcome, err := l.process(ctx, sess, id)
			if ctx.Err() != nil {
				return nil
			}
			l.stats.Add(outcome)
			if errors.Is(err, backend.ErrQuotaExhausted) {
				l.logger.Error(ctx, "quota exhausted, stopping", "question_id", id, "error", err)
				return err
			}
		}
	}
	return nil
}

func (l *Loop) process(ctx context.Context, sess *session.Session, id int64) (models.Outcome, error) {
	q, err := sess.Client.GetQuestion(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			return models.OutcomeFailed, ctx.Err()
		}
		l.logger.Warn(ctx, "fetching question failed", "question_id", id, "error", err)
		l.reporter.Failure(fmt.Errorf("fetch question %d: %w", id, err))
		return models.OutcomeFailed, nil
	}

	if reason := SkipReason(q); reason != "" {
		l.logger.Debug(ctx, "question skipped", "question_id", id, "reason", reason)
		l.reporter.Skipped(q, reason)
		return models.OutcomeSkipped, nil
	}

	l.reporter.Question(q)
	if q.HasPoll() {
		return l.voter.Vote(ctx, sess, q)
	}
	return l.dispatcher.Answer(ctx, sess, q)
}
