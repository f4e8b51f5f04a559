package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/otvetbot/internal/backend"
	"github.com/dmitrijs2005/otvetbot/internal/logging"
	"github.com/dmitrijs2005/otvetbot/internal/models"
	"github.com/dmitrijs2005/otvetbot/internal/report"
	"github.com/dmitrijs2005/otvetbot/internal/session"
)

const systemPromptTemplate = "You are a qualified expert who always gives detailed and accurate answers. " +
	"Answer as thoroughly as possible while staying concise, back every claim with reasoning, " +
	"and reply in %s. Use plain text only, without Markdown or other markup."

// AnswerConfig selects the model and shapes the prompt.
type AnswerConfig struct {
	Model    string
	Provider string
	// Language is the one language answers are written in.
	Language  string
	WebSearch bool
	// Timeout bounds a single completion request; zero means no extra bound.
	Timeout time.Duration
}

// Dispatcher answers ordinary (non-poll) questions.
type Dispatcher struct {
	completer backend.Completer
	cfg       AnswerConfig
	reporter  report.Reporter
	logger    logging.Logger
}

func NewDispatcher(completer backend.Completer, cfg AnswerConfig, reporter report.Reporter, logger logging.Logger) *Dispatcher {
	if cfg.Language == "" {
		cfg.Language = "Russian"
	}
	return &Dispatcher{completer: completer, cfg: cfg, reporter: reporter, logger: logger}
}

func (d *Dispatcher) request(q models.Question) backend.Request {
	return backend.Request{
		Model:    d.cfg.Model,
		Provider: d.cfg.Provider,
		Messages: []backend.Message{
			{Role: backend.RoleSystem, Content: fmt.Sprintf(systemPromptTemplate, d.cfg.Language)},
			{Role: backend.RoleUser, Content: "TITLE: " + q.Title + "\nQUESTION: " + q.Text},
		},
		WebSearch: d.cfg.WebSearch,
	}
}

// Answer requests one completion for q and posts it. Only a quota error or
// ctx cancellation is returned; every other failure is reported and yields
// OutcomeFailed. A question is never retried.
func (d *Dispatcher) Answer(ctx context.Context, sess *session.Session, q models.Question) (models.Outcome, error) {
	log := d.logger.With("question_id", q.ID)

	cctx := ctx
	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := d.completer.Complete(cctx, d.request(q))
	if err == nil && strings.TrimSpace(resp.Text) == "" {
		err = fmt.Errorf("%w: empty answer", backend.ErrBackendMalformedResponse)
	}
	if err != nil {
		if ctx.Err() != nil {
			return models.OutcomeFailed, ctx.Err()
		}
		classified := backend.Classify(err)
		log.Warn(ctx, "completion failed", "error", classified, "elapsed", time.Since(start))
		if errors.Is(classified, backend.ErrQuotaExhausted) {
			return models.OutcomeFailed, classified
		}
		d.reporter.Failure(fmt.Errorf("question %d: %w", q.ID, classified))
		return models.OutcomeFailed, nil
	}

	text := strings.TrimSpace(resp.Text)
	log.Debug(ctx, "completion received", "model", resp.Model, "chars", len(text), "elapsed", time.Since(start))
	d.reporter.Answer(q, text)

	if err := sess.Client.AddAnswer(ctx, q, text); err != nil {
		if ctx.Err() != nil {
			return models.OutcomeFailed, ctx.Err()
		}
		if c := backend.Classify(err); errors.Is(c, backend.ErrQuotaExhausted) {
			return models.OutcomeFailed, c
		}
		log.Warn(ctx, "answer submission failed", "error", err)
		d.reporter.Failure(fmt.Errorf("submit answer to %d: %w", q.ID, err))
		return models.OutcomeFailed, nil
	}

	log.Info(ctx, "answer posted")
	return models.OutcomeAnswered, nil
}
