// Package platform talks to the question-and-answer platform.
//
// Client is the capability the rest of the program depends on; HTTPClient
// implements it over the platform's JSON API with a cookie jar whose
// serialized contents are the account's session token.
package platform

import (
	"context"
	"iter"

	"github.com/dmitrijs2005/otvetbot/internal/models"
)

// Client is an authenticated (or not yet authenticated) platform session.
// All methods honor context cancellation.
type Client interface {
	// Authenticate logs in with identifier and secret; on success AuthInfo
	// returns the new session token.
	Authenticate(ctx context.Context, identifier string, secret []byte) error
	// CheckAuthentication reports whether the current session is accepted.
	CheckAuthentication(ctx context.Context) (bool, error)
	GetUser(ctx context.Context) (models.Profile, error)
	// NewQuestions yields batches of ids of questions not seen before. It
	// polls until ctx is done or the consumer stops ranging.
	NewQuestions(ctx context.Context) iter.Seq2[[]int64, error]
	GetQuestion(ctx context.Context, id int64) (models.Question, error)
	AddAnswer(ctx context.Context, q models.Question, text string) error
	VoteInPoll(ctx context.Context, q models.Question, options []models.PollOption) error
	// AuthInfo serializes the session for the credential store.
	AuthInfo() string
}

// Factory builds a client restored from a stored token; an empty token
// gives an unauthenticated client.
type Factory func(token string) (Client, error)
