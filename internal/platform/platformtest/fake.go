// Package platformtest provides an in-memory platform for tests of code
// that depends on platform.Client.
package platformtest

import (
	"context"
	"fmt"
	"iter"
	"sync"

	"github.com/dmitrijs2005/otvetbot/internal/models"
	"github.com/dmitrijs2005/otvetbot/internal/platform"
)

// Platform holds the accounts and session tokens shared by the clients
// its Factory builds.
type Platform struct {
	mu        sync.Mutex
	passwords map[string]string
	tokens    map[string]string
	issued    int

	// FactoryErr, when set, is returned by the factory.
	FactoryErr error
	// Setup, when set, scripts each client the factory builds.
	Setup func(c *Client)
	// AuthCalls counts Authenticate calls across all clients.
	AuthCalls int
	// Clients lists every client built by the factory.
	Clients []*Client
}

func NewPlatform() *Platform {
	return &Platform{passwords: map[string]string{}, tokens: map[string]string{}}
}

// Register creates an account.
func (p *Platform) Register(identifier, password string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.passwords[identifier] = password
}

// Issue returns a fresh valid session token for identifier.
func (p *Platform) Issue(identifier string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.issueLocked(identifier)
}

func (p *Platform) issueLocked(identifier string) string {
	p.issued++
	tok := fmt.Sprintf("token-%d-%s", p.issued, identifier)
	p.tokens[tok] = identifier
	return tok
}

// Revoke makes token invalid.
func (p *Platform) Revoke(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.tokens, token)
}

func (p *Platform) Factory() platform.Factory {
	return func(token string) (platform.Client, error) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.FactoryErr != nil {
			return nil, p.FactoryErr
		}
		c := &Client{platform: p, Token: token}
		if p.Setup != nil {
			p.Setup(c)
		}
		p.Clients = append(p.Clients, c)
		return c, nil
	}
}

// Batch is one element of the new-questions stream.
type Batch struct {
	IDs []int64
	Err error
}

type Answer struct {
	QuestionID int64
	Text       string
}

type Vote struct {
	QuestionID int64
	Options    []models.PollOption
}

// Client is a scripted platform.Client. Without a Platform it is always
// authenticated.
type Client struct {
	platform *Platform

	mu    sync.Mutex
	Token string

	Profile   models.Profile
	Questions map[int64]models.Question
	Batches   []Batch
	CheckErr  error
	GetErr    map[int64]error
	AnswerErr error
	VoteErr   error

	Answers    []Answer
	Votes      []Vote
	GetCalls   int
	CheckCalls int
}

var _ platform.Client = (*Client)(nil)

func (c *Client) Authenticate(ctx context.Context, identifier string, secret []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := c.platform
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.AuthCalls++
	want, ok := p.passwords[identifier]
	if !ok || want != string(secret) {
		return platform.ErrUnauthorized
	}
	c.mu.Lock()
	c.Token = p.issueLocked(identifier)
	c.mu.Unlock()
	return nil
}

func (c *Client) CheckAuthentication(ctx context.Context) (bool, error) {
	c.mu.Lock()
	c.CheckCalls++
	tok, checkErr := c.Token, c.CheckErr
	c.mu.Unlock()

	if checkErr != nil {
		return false, checkErr
	}
	if c.platform == nil {
		return true, nil
	}
	c.platform.mu.Lock()
	defer c.platform.mu.Unlock()
	_, ok := c.platform.tokens[tok]
	return ok, nil
}

func (c *Client) GetUser(context.Context) (models.Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Profile, nil
}

func (c *Client) NewQuestions(ctx context.Context) iter.Seq2[[]int64, error] {
	return func(yield func([]int64, error) bool) {
		c.mu.Lock()
		batches := c.Batches
		c.mu.Unlock()
		for _, b := range batches {
			if ctx.Err() != nil {
				return
			}
			if !yield(b.IDs, b.Err) {
				return
			}
		}
	}
}

func (c *Client) GetQuestion(_ context.Context, id int64) (models.Question, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.GetCalls++
	if err := c.GetErr[id]; err != nil {
		return models.Question{}, err
	}
	q, ok := c.Questions[id]
	if !ok {
		return models.Question{}, &platform.APIError{Status: 404, Code: "not_found", Message: "no such question"}
	}
	return q, nil
}

func (c *Client) AddAnswer(_ context.Context, q models.Question, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.AnswerErr != nil {
		return c.AnswerErr
	}
	c.Answers = append(c.Answers, Answer{QuestionID: q.ID, Text: text})
	return nil
}

func (c *Client) VoteInPoll(_ context.Context, q models.Question, options []models.PollOption) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.VoteErr != nil {
		return c.VoteErr
	}
	c.Votes = append(c.Votes, Vote{QuestionID: q.ID, Options: append([]models.PollOption(nil), options...)})
	return nil
}

func (c *Client) AuthInfo() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Token
}
