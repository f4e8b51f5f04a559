package session

import "context"

type ActionKind int

const (
	// ActionInvalid is input the prompter could not parse.
	ActionInvalid ActionKind = iota
	ActionSelect
	ActionAdd
	ActionRemove
)

// Action is the operator's choice on the account menu. Index is zero-based
// and meaningful for ActionSelect and ActionRemove.
type Action struct {
	Kind  ActionKind
	Index int
	Input string
}

// Prompter is the interactive side of account selection. Any error it
// returns (typically io.EOF) aborts Acquire.
type Prompter interface {
	// ChooseAction shows identifiers and reads one menu action.
	ChooseAction(ctx context.Context, identifiers []string) (Action, error)
	// Credentials asks for a new account's identifier and secret.
	Credentials(ctx context.Context) (identifier string, secret []byte, err error)
	// Password asks for the secret of an existing account.
	Password(ctx context.Context, identifier string) ([]byte, error)
}
