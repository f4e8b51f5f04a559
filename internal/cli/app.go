package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/otvetbot/internal/backend"
	"github.com/dmitrijs2005/otvetbot/internal/config"
	"github.com/dmitrijs2005/otvetbot/internal/credentials"
	"github.com/dmitrijs2005/otvetbot/internal/cryptox"
	"github.com/dmitrijs2005/otvetbot/internal/logging"
	"github.com/dmitrijs2005/otvetbot/internal/pipeline"
	"github.com/dmitrijs2005/otvetbot/internal/platform"
	"github.com/dmitrijs2005/otvetbot/internal/report"
	"github.com/dmitrijs2005/otvetbot/internal/session"
	"github.com/google/uuid"
)

// App wires the credential store, session manager and processing loop.
type App struct {
	logger   logging.Logger
	reporter report.Reporter
	manager  *session.Manager
	loop     *pipeline.Loop
	closers  []io.Closer
}

// NewApp builds an App from cfg. Prompts read from stdin; reports go to
// stdout and logs to stderr.
func NewApp(ctx context.Context, cfg *config.Config, stdin io.Reader, stdout, stderr io.Writer) (*App, error) {
	logger := logging.New(stderr, cfg.Verbose).With("run_id", uuid.NewString())

	store, err := newStore(cfg)
	if err != nil {
		return nil, err
	}

	completer, err := newCompleter(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	factory := platform.NewFactory(platform.HTTPConfig{
		BaseURL:           cfg.PlatformURL,
		Timeout:           cfg.RequestTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		PollInterval:      cfg.PollInterval,
	}, logger)

	app := newApp(cfg, deps{
		logger:    logger,
		reporter:  report.NewConsole(stdout),
		store:     store,
		factory:   factory,
		completer: completer,
		prompter:  NewPrompter(stdin, stdout),
	})
	if c, ok := store.(io.Closer); ok {
		app.closers = append(app.closers, c)
	}
	return app, nil
}

type deps struct {
	logger    logging.Logger
	reporter  report.Reporter
	store     credentials.Store
	factory   platform.Factory
	completer backend.Completer
	prompter  session.Prompter
}

func newApp(cfg *config.Config, d deps) *App {
	manager := session.NewManager(d.store, d.factory, d.prompter, d.reporter, d.logger,
		session.WithMaxAttempts(cfg.EnrollMaxAttempts))

	dispatcher := pipeline.NewDispatcher(d.completer, pipeline.AnswerConfig{
		Model:     cfg.Model,
		Provider:  cfg.BackendProvider,
		Language:  cfg.Language,
		WebSearch: cfg.WebSearch,
		Timeout:   cfg.RequestTimeout,
	}, d.reporter, d.logger)
	voter := pipeline.NewVoter(nil, d.reporter, d.logger)

	return &App{
		logger:   d.logger,
		reporter: d.reporter,
		manager:  manager,
		loop:     pipeline.NewLoop(dispatcher, voter, d.reporter, d.logger),
	}
}

func newStore(cfg *config.Config) (credentials.Store, error) {
	var opts []credentials.Option
	if cfg.StorePassphrase != "" {
		opts = append(opts, credentials.WithCodec(cryptox.NewSealer([]byte(cfg.StorePassphrase))))
	}

	switch cfg.StoreKind {
	case config.StoreJSON:
		return credentials.NewFileStore(cfg.StorePath, opts...), nil
	case config.StoreSQLite:
		return credentials.NewSQLiteStore(cfg.StorePath, opts...), nil
	}
	return nil, fmt.Errorf("unknown store kind %q", cfg.StoreKind)
}

func newCompleter(ctx context.Context, cfg *config.Config, logger logging.Logger) (backend.Completer, error) {
	switch cfg.Backend {
	case config.BackendOpenAI:
		return backend.NewOpenAICompleter(backend.OpenAIConfig{
			BaseURL: cfg.BackendURL,
			APIKey:  cfg.APIKey,
			Timeout: cfg.RequestTimeout,
		}, logger), nil
	case config.BackendGemini:
		return backend.NewGeminiCompleter(ctx, backend.GeminiConfig{APIKey: cfg.APIKey}, logger)
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// Run acquires a session and processes questions until the stream ends,
// ctx is canceled or a quota runs out. Cancellation is not an error.
func (a *App) Run(ctx context.Context) error {
	defer a.close(ctx)

	sess, err := a.manager.Acquire(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("acquire session: %w", err)
	}
	a.logger.Info(ctx, "session acquired", "account", sess.Account.Identifier)

	if profile, err := sess.Client.GetUser(ctx); err != nil {
		a.reporter.Failure(fmt.Errorf("load profile: %w", err))
	} else {
		a.reporter.Profile(profile)
	}

	a.reporter.Notice("Waiting for new questions...")
	err = a.loop.Run(ctx, sess)
	a.reporter.Summary(a.loop.Stats())

	if err != nil {
		a.reporter.Failure(err)
	}
	return err
}

func (a *App) close(ctx context.Context) {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn(ctx, "close failed", "error", err)
		}
	}
}
