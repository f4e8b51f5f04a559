package credentials

import (
	"context"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/otvetbot/internal/models"
)

// Store loads and saves the complete account list.
type Store interface {
	// Load returns the stored accounts in insertion order. A missing store
	// yields an empty list and no error.
	Load(ctx context.Context) (Accounts, error)
	// Save overwrites the store with accounts.
	Save(ctx context.Context, accounts Accounts) error
}

// TokenCodec transforms session tokens on their way to and from disk.
type TokenCodec interface {
	Seal(token string) (string, error)
	Open(stored string) (string, error)
}

type plainCodec struct{}

func (plainCodec) Seal(token string) (string, error) { return token, nil }
func (plainCodec) Open(stored string) (string, error) { return stored, nil }

// Option configures a store.
type Option func(*options)

type options struct {
	codec TokenCodec
}

// WithCodec encrypts tokens at rest using c.
func WithCodec(c TokenCodec) Option {
	return func(o *options) { o.codec = c }
}

func buildOptions(opts []Option) options {
	o := options{codec: plainCodec{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Accounts is an ordered account list with unique identifiers.
type Accounts []models.Account

// Index returns the position of identifier or -1.
func (a Accounts) Index(identifier string) int {
	return slices.IndexFunc(a, func(acc models.Account) bool { return acc.Identifier == identifier })
}

// Identifiers lists identifiers in order, for selection menus.
func (a Accounts) Identifiers() []string {
	ids := make([]string, len(a))
	for i, acc := range a {
		ids[i] = acc.Identifier
	}
	return ids
}

// Add appends acc, or replaces the token of the record that already has
// acc's identifier. The list never holds two records with one identifier.
func (a Accounts) Add(acc models.Account) Accounts {
	out := slices.Clone(a)
	if i := out.Index(acc.Identifier); i >= 0 {
		out[i].SessionToken = acc.SessionToken
		return out
	}
	return append(out, acc)
}

// Remove deletes the record at zero-based index i.
func (a Accounts) Remove(i int) (Accounts, error) {
	if i < 0 || i >= len(a) {
		return a, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidIndex, i, len(a))
	}
	out := slices.Clone(a)
	return slices.Delete(out, i, i+1), nil
}

// At returns the record at zero-based index i.
func (a Accounts) At(i int) (models.Account, error) {
	if i < 0 || i >= len(a) {
		return models.Account{}, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidIndex, i, len(a))
	}
	return a[i], nil
}

func sealAll(c TokenCodec, accounts Accounts) (Accounts, error) {
	out := make(Accounts, len(accounts))
	for i, acc := range accounts {
		token, err := c.Seal(acc.SessionToken)
		if err != nil {
			return nil, fmt.Errorf("seal token for %s: %w", acc.Identifier, err)
		}
		out[i] = models.Account{Identifier: acc.Identifier, SessionToken: token}
	}
	return out, nil
}

// openAll decodes tokens and folds duplicate identifiers, which can only
// appear in hand-edited files.
func openAll(c TokenCodec, stored Accounts) (Accounts, error) {
	out := make(Accounts, 0, len(stored))
	for _, acc := range stored {
		token, err := c.Open(acc.SessionToken)
		if err != nil {
			return Accounts{}, fmt.Errorf("%w: %w: token for %s: %v", ErrStorageUnreadable, ErrStorageLocked, acc.Identifier, err)
		}
		out = out.Add(models.Account{Identifier: acc.Identifier, SessionToken: token})
	}
	return out, nil
}
