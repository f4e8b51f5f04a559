package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/otvetbot/internal/session"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// Prompter implements session.Prompter on a line-oriented terminal.
//
// The account menu accepts:
//
//	<n>       use account n
//	a         add an account
//	d <n>     delete account n
//
// Numbers are one-based on screen and zero-based in session.Action.
type Prompter struct {
	reader *bufio.Reader
	w      io.Writer
}

func NewPrompter(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{reader: bufio.NewReader(r), w: w}
}

var _ session.Prompter = (*Prompter)(nil)

func (p *Prompter) ChooseAction(ctx context.Context, identifiers []string) (session.Action, error) {
	fmt.Fprintln(p.w, "Accounts:")
	for i, id := range identifiers {
		fmt.Fprintf(p.w, "  %d. %s\n", i+1, id)
	}

	line, err := await(ctx, func() (string, error) {
		return getSimpleText(p.reader, "Number to log in, 'a' to add, 'd <number>' to delete", p.w)
	})
	if err != nil {
		return session.Action{}, err
	}
	return parseAction(line), nil
}

func parseAction(line string) session.Action {
	fields := strings.Fields(strings.ToLower(line))
	invalid := session.Action{Kind: session.ActionInvalid, Input: line}

	switch {
	case len(fields) == 1 && (fields[0] == "a" || fields[0] == "add"):
		return session.Action{Kind: session.ActionAdd, Input: line}

	case len(fields) == 2 && (fields[0] == "d" || fields[0] == "del" || fields[0] == "delete"):
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return invalid
		}
		return session.Action{Kind: session.ActionRemove, Index: n - 1, Input: line}

	case len(fields) == 1:
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return invalid
		}
		return session.Action{Kind: session.ActionSelect, Index: n - 1, Input: line}
	}
	return invalid
}

func (p *Prompter) Credentials(ctx context.Context) (string, []byte, error) {
	id, err := await(ctx, func() (string, error) {
		return getSimpleText(p.reader, "Email", p.w)
	})
	if err != nil {
		return "", nil, err
	}
	pw, err := await(ctx, func() ([]byte, error) {
		return getPassword(p.reader, "Password", p.w)
	})
	if err != nil {
		return "", nil, err
	}
	return id, pw, nil
}

func (p *Prompter) Password(ctx context.Context, identifier string) ([]byte, error) {
	fmt.Fprintf(p.w, "Session for %s has expired.\n", identifier)
	return await(ctx, func() ([]byte, error) {
		return getPassword(p.reader, "Password", p.w)
	})
}

// await runs a blocking terminal read and gives up when ctx is done. Reads on
// stdin cannot be interrupted, so an abandoned read keeps its goroutine until
// the process exits; the Prompter must not be used after ctx is canceled.
func await[T any](ctx context.Context, read func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := read()
		done <- result{v, err}
	}()

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-done:
		return r.v, r.err
	}
}
