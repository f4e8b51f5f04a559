package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/otvetbot/internal/common"
	"github.com/dmitrijs2005/otvetbot/internal/credentials"
	"github.com/dmitrijs2005/otvetbot/internal/logging"
	"github.com/dmitrijs2005/otvetbot/internal/models"
	"github.com/dmitrijs2005/otvetbot/internal/platform"
	"github.com/dmitrijs2005/otvetbot/internal/report"
)

// Session is a verified platform client and the account it belongs to.
type Session struct {
	Client  platform.Client
	Account models.Account
}

type Manager struct {
	store     credentials.Store
	newClient platform.Factory
	prompter  Prompter
	reporter  report.Reporter
	logger    logging.Logger

	// maxAttempts bounds enrollment; zero means unbounded.
	maxAttempts int
}

type Option func(*Manager)

// WithMaxAttempts bounds the number of enrollment attempts. After n
// failures Acquire returns ErrTooManyAttempts. Zero means unbounded.
func WithMaxAttempts(n int) Option {
	return func(m *Manager) { m.maxAttempts = n }
}

func NewManager(store credentials.Store, newClient platform.Factory, prompter Prompter,
	reporter report.Reporter, logger logging.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		newClient: newClient,
		prompter:  prompter,
		reporter:  reporter,
		logger:    logger,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Acquire returns an authenticated session, prompting as needed. It returns
// an error when the store is locked (see credentials.ErrStorageLocked),
// prompting fails, ctx ends, enrollment runs out of attempts or a platform
// client cannot be built. A store that merely fails to decode is reported
// and treated as empty.
func (m *Manager) Acquire(ctx context.Context) (*Session, error) {
	accounts, err := m.store.Load(ctx)
	if errors.Is(err, credentials.ErrStorageLocked) {
		return nil, fmt.Errorf("load accounts (check the store passphrase): %w", err)
	}
	if err != nil {
		m.logger.Warn(ctx, "credential store unreadable, continuing with no accounts", "error", err)
		m.reporter.Failure(err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(accounts) == 0 {
			return m.enroll(ctx, accounts)
		}

		action, err := m.prompter.ChooseAction(ctx, accounts.Identifiers())
		if err != nil {
			return nil, err
		}

		switch action.Kind {
		case ActionAdd:
			return m.enroll(ctx, accounts)

		case ActionRemove:
			next, err := accounts.Remove(action.Index)
			if err != nil {
				m.reporter.Failure(err)
				continue
			}
			removed := accounts[action.Index].Identifier
			accounts = next
			m.save(ctx, accounts)
			m.reporter.Notice(fmt.Sprintf("removed %s", removed))

		case ActionSelect:
			acc, err := accounts.At(action.Index)
			if err != nil {
				m.reporter.Failure(err)
				continue
			}
			var sess *Session
			sess, accounts, err = m.resume(ctx, accounts, acc)
			if err != nil {
				return nil, err
			}
			if sess != nil {
				return sess, nil
			}

		default:
			m.reporter.Failure(fmt.Errorf("%w: %q", credentials.ErrInvalidIndex, action.Input))
		}
	}
}

// resume verifies acc's stored session, re-authenticating with a prompted
// password when the platform rejects it. A nil session with a nil error
// sends the operator back to the menu.
func (m *Manager) resume(ctx context.Context, accounts credentials.Accounts, acc models.Account) (*Session, credentials.Accounts, error) {
	log := m.logger.With("account", acc.Identifier)

	client, err := m.newClient(acc.SessionToken)
	if errors.Is(err, platform.ErrBadToken) {
		log.Warn(ctx, "stored session token is unusable", "error", err)
		client, err = m.newClient("")
	}
	if err != nil {
		return nil, accounts, fmt.Errorf("create platform client: %w", err)
	}

	ok, err := client.CheckAuthentication(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, accounts, ctx.Err()
		}
		m.reporter.Failure(fmt.Errorf("check session of %s: %w", acc.Identifier, err))
		return nil, accounts, nil
	}
	if ok {
		log.Debug(ctx, "stored session accepted")
		return &Session{Client: client, Account: acc}, accounts, nil
	}

	log.Info(ctx, "stored session expired, re-authenticating")
	pw, err := m.prompter.Password(ctx, acc.Identifier)
	if err != nil {
		return nil, accounts, err
	}
	defer common.WipeByteArray(pw)

	if err := client.Authenticate(ctx, acc.Identifier, pw); err != nil {
		if ctx.Err() != nil {
			return nil, accounts, ctx.Err()
		}
		m.reporter.Failure(fmt.Errorf("%w: %s: %v", ErrAuthenticationFailed, acc.Identifier, err))
		return nil, accounts, nil
	}

	acc.SessionToken = client.AuthInfo()
	accounts = accounts.Add(acc)
	m.save(ctx, accounts)
	return &Session{Client: client, Account: acc}, accounts, nil
}

// enroll authenticates a new account and adds it to the store.
func (m *Manager) enroll(ctx context.Context, accounts credentials.Accounts) (*Session, error) {
	for attempt := 1; ; attempt++ {
		if m.maxAttempts > 0 && attempt > m.maxAttempts {
			return nil, ErrTooManyAttempts
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		identifier, secret, err := m.prompter.Credentials(ctx)
		if err != nil {
			return nil, err
		}
		sess, err := m.login(ctx, strings.TrimSpace(identifier), secret)
		common.WipeByteArray(secret)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !errors.Is(err, ErrAuthenticationFailed) {
				return nil, err
			}
			m.logger.Info(ctx, "enrollment attempt failed", "attempt", attempt)
			m.reporter.Failure(err)
			continue
		}

		accounts = accounts.Add(sess.Account)
		m.save(ctx, accounts)
		return sess, nil
	}
}

func (m *Manager) login(ctx context.Context, identifier string, secret []byte) (*Session, error) {
	if identifier == "" {
		return nil, fmt.Errorf("%w: empty identifier", ErrAuthenticationFailed)
	}
	client, err := m.newClient("")
	if err != nil {
		return nil, fmt.Errorf("create platform client: %w", err)
	}
	if err := client.Authenticate(ctx, identifier, secret); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrAuthenticationFailed, identifier, err)
	}
	return &Session{
		Client:  client,
		Account: models.Account{Identifier: identifier, SessionToken: client.AuthInfo()},
	}, nil
}

// save persists accounts. A failed save is reported but does not invalidate
// the session in hand.
func (m *Manager) save(ctx context.Context, accounts credentials.Accounts) {
	if err := m.store.Save(ctx, accounts); err != nil {
		m.logger.Error(ctx, "saving accounts failed", "error", err)
		m.reporter.Failure(fmt.Errorf("save accounts: %w", err))
	}
}
