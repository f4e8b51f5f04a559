package cli

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/otvetbot/internal/backend"
	"github.com/dmitrijs2005/otvetbot/internal/config"
	"github.com/dmitrijs2005/otvetbot/internal/credentials"
	"github.com/dmitrijs2005/otvetbot/internal/logging"
	"github.com/dmitrijs2005/otvetbot/internal/models"
	"github.com/dmitrijs2005/otvetbot/internal/platform/platformtest"
	"github.com/dmitrijs2005/otvetbot/internal/report"
	"github.com/dmitrijs2005/otvetbot/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	text string
	err  error
}

func (s stubCompleter) Complete(context.Context, backend.Request) (backend.Response, error) {
	return backend.Response{Text: s.text}, s.err
}

type scriptedPrompter struct {
	id, pw string
}

func (p scriptedPrompter) ChooseAction(context.Context, []string) (session.Action, error) {
	return session.Action{Kind: session.ActionSelect, Index: 0}, nil
}

func (p scriptedPrompter) Credentials(context.Context) (string, []byte, error) {
	return p.id, []byte(p.pw), nil
}

func (p scriptedPrompter) Password(context.Context, string) ([]byte, error) {
	return []byte(p.pw), nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.StorePath = filepath.Join(t.TempDir(), "accounts.json")
	cfg.RequestTimeout = time.Second
	return cfg
}

func newTestPlatform() *platformtest.Platform {
	p := platformtest.NewPlatform()
	p.Register("a@mail.ru", "pw")
	p.Setup = func(c *platformtest.Client) {
		c.Profile = models.Profile{ID: 42, Name: "Bot"}
		c.Questions = map[int64]models.Question{
			1: {ID: 1, Title: "Why?", Text: "Because", CanAnswer: true},
			2: {ID: 2, Title: "Poll", CanAnswer: true, Poll: &models.Poll{Options: []models.PollOption{{ID: 1, Text: "x"}}}},
		}
		c.Batches = []platformtest.Batch{{IDs: []int64{1, 2}}}
	}
	return p
}

func appWith(cfg *config.Config, p *platformtest.Platform, store credentials.Store, completer backend.Completer) (*App, *report.Recorder) {
	rec := &report.Recorder{}
	app := newApp(cfg, deps{
		logger:    logging.Discard(),
		reporter:  rec,
		store:     store,
		factory:   p.Factory(),
		completer: completer,
		prompter:  scriptedPrompter{id: "a@mail.ru", pw: "pw"},
	})
	return app, rec
}

func newTestApp(t *testing.T, completer backend.Completer) (*App, *platformtest.Platform, *report.Recorder, credentials.Store) {
	t.Helper()
	cfg := testConfig(t)
	p := newTestPlatform()
	store := credentials.NewFileStore(cfg.StorePath)
	app, rec := appWith(cfg, p, store, completer)
	return app, p, rec, store
}

func TestApp_RunEndToEnd(t *testing.T) {
	app, p, rec, store := newTestApp(t, stubCompleter{text: "Answer"})

	require.NoError(t, app.Run(context.Background()))

	assert.Equal(t, int64(42), rec.LastProfile.ID)
	assert.Equal(t, models.Stats{Answered: 1, Voted: 1}, rec.LastStats)

	saved, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "a@mail.ru", saved[0].Identifier)

	require.NotEmpty(t, p.Clients)
	last := p.Clients[len(p.Clients)-1]
	assert.Equal(t, []platformtest.Answer{{QuestionID: 1, Text: "Answer"}}, last.Answers)
	assert.Len(t, last.Votes, 1)
}

func TestApp_SecondRunReusesSession(t *testing.T) {
	cfg := testConfig(t)
	p := newTestPlatform()
	store := credentials.NewFileStore(cfg.StorePath)

	first, _ := appWith(cfg, p, store, stubCompleter{text: "Answer"})
	require.NoError(t, first.Run(context.Background()))
	require.Equal(t, 1, p.AuthCalls)

	second, rec := appWith(cfg, p, store, stubCompleter{text: "Answer"})
	require.NoError(t, second.Run(context.Background()))
	assert.Equal(t, 1, p.AuthCalls, "a valid stored session needs no login")
	assert.Equal(t, int64(42), rec.LastProfile.ID)
}

func TestApp_QuotaIsReturned(t *testing.T) {
	app, _, rec, _ := newTestApp(t, stubCompleter{err: errors.New("limits exceeded: AAQ")})

	err := app.Run(context.Background())
	require.ErrorIs(t, err, backend.ErrQuotaExhausted)
	assert.Equal(t, 1, rec.LastStats.Failed)
	errs := rec.Errors()
	require.NotEmpty(t, errs)
	assert.ErrorIs(t, errs[len(errs)-1], backend.ErrQuotaExhausted)
}

func TestApp_CanceledBeforeStartIsClean(t *testing.T) {
	app, _, _, _ := newTestApp(t, stubCompleter{text: "x"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, app.Run(ctx))
}

// promptedWriter closes prompted on the first prompt written to it.
type promptedWriter struct {
	once     sync.Once
	prompted chan struct{}
}

func (w *promptedWriter) Write(b []byte) (int, error) {
	w.once.Do(func() { close(w.prompted) })
	return len(b), nil
}

func TestApp_InterruptDuringPromptIsClean(t *testing.T) {
	cfg := testConfig(t)
	p := newTestPlatform()

	stdin, feed := io.Pipe()
	t.Cleanup(func() { feed.Close() })
	out := &promptedWriter{prompted: make(chan struct{})}

	app := newApp(cfg, deps{
		logger:    logging.Discard(),
		reporter:  &report.Recorder{},
		store:     credentials.NewFileStore(cfg.StorePath),
		factory:   p.Factory(),
		completer: stubCompleter{text: "x"},
		prompter:  NewPrompter(stdin, out),
	})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- app.Run(ctx) }()

	select {
	case <-out.prompted:
	case <-time.After(2 * time.Second):
		t.Fatal("no login prompt")
	}
	cancel()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run kept waiting for input after cancellation")
	}
	assert.Zero(t, p.AuthCalls)
}

func TestNewStoreAndCompleter(t *testing.T) {
	cfg := testConfig(t)

	s, err := newStore(cfg)
	require.NoError(t, err)
	assert.IsType(t, &credentials.FileStore{}, s)

	cfg.StoreKind = config.StoreSQLite
	cfg.StorePassphrase = "secret"
	s, err = newStore(cfg)
	require.NoError(t, err)
	assert.IsType(t, &credentials.SQLiteStore{}, s)

	cfg.StoreKind = "csv"
	_, err = newStore(cfg)
	assert.Error(t, err)

	c, err := newCompleter(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	assert.IsType(t, &backend.OpenAICompleter{}, c)

	cfg.Backend = config.BackendGemini
	_, err = newCompleter(context.Background(), cfg, logging.Discard())
	assert.Error(t, err, "gemini needs an API key")
}
