package pipeline

import (
	"context"
	"math/rand/v2"

	"github.com/dmitrijs2005/otvetbot/internal/backend"
	"github.com/dmitrijs2005/otvetbot/internal/logging"
	"github.com/dmitrijs2005/otvetbot/internal/models"
	"github.com/dmitrijs2005/otvetbot/internal/platform/platformtest"
	"github.com/dmitrijs2005/otvetbot/internal/report"
	"github.com/dmitrijs2005/otvetbot/internal/session"
)

type fakeCompleter struct {
	text  string
	err   error
	calls int

	LastRequest backend.Request
}

func (f *fakeCompleter) Complete(_ context.Context, req backend.Request) (backend.Response, error) {
	f.calls++
	f.LastRequest = req
	if f.err != nil {
		return backend.Response{}, f.err
	}
	return backend.Response{Text: f.text, Model: req.Model}, nil
}

type env struct {
	client    *platformtest.Client
	sess      *session.Session
	completer *fakeCompleter
	reporter  *report.Recorder
	loop      *Loop
}

func newEnv(seed uint64) *env {
	client := &platformtest.Client{Questions: map[int64]models.Question{}}
	e := &env{
		client:    client,
		sess:      &session.Session{Client: client, Account: models.Account{Identifier: "a@mail.ru"}},
		completer: &fakeCompleter{text: "  42  "},
		reporter:  &report.Recorder{},
	}
	log := logging.Discard()
	d := NewDispatcher(e.completer, AnswerConfig{Model: "llama-3.3-70b", Provider: "Blackbox"}, e.reporter, log)
	v := NewVoter(rand.New(rand.NewPCG(seed, seed)), e.reporter, log)
	e.loop = NewLoop(d, v, e.reporter, log)
	return e
}

func question(id int64, title, text string) models.Question {
	return models.Question{ID: id, Title: title, Text: text, CanAnswer: true}
}

func poll(id int64, n int) models.Question {
	q := question(id, "Poll", "pick")
	q.Poll = &models.Poll{}
	for i := range n {
		q.Poll.Options = append(q.Poll.Options, models.PollOption{ID: int64(i + 1), Text: string(rune('A' + i))})
	}
	return q
}
