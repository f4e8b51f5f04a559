package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/otvetbot/internal/logging"
	"github.com/dmitrijs2005/otvetbot/internal/models"
	"golang.org/x/time/rate"
)

// API paths, relative to HTTPConfig.BaseURL.
const (
	pathUser         = "/api/v2/user"
	pathNewQuestions = "/api/v2/questions/new"
	pathQuestion     = "/api/v2/question"
	pathAnswer       = "/api/v2/answer"
	pathVote         = "/api/v2/vote"
)

// HTTPConfig configures HTTPClient.
type HTTPConfig struct {
	BaseURL string
	// AuthURL receives the login form; defaults to the mail.ru auth endpoint.
	AuthURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	PollInterval      time.Duration
	// PollLimit is the page size requested from the new-questions endpoint.
	PollLimit int
	// Transport overrides the HTTP transport, mainly for tests.
	Transport http.RoundTripper
}

func (c *HTTPConfig) setDefaults() {
	if c.AuthURL == "" {
		c.AuthURL = "https://auth.mail.ru/cgi-bin/auth"
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = 2
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 10 * time.Second
	}
	if c.PollLimit <= 0 {
		c.PollLimit = 20
	}
}

// HTTPClient implements Client over the platform's JSON API.
type HTTPClient struct {
	cfg     HTTPConfig
	base    *url.URL
	http    *http.Client
	jar     http.CookieJar
	limiter *rate.Limiter
	logger  logging.Logger
}

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type authInfo struct {
	Cookies []storedCookie `json:"cookies"`
}

// NewHTTPClient restores a session from token; an empty token starts an
// anonymous session.
func NewHTTPClient(cfg HTTPConfig, token string, logger logging.Logger) (*HTTPClient, error) {
	cfg.setDefaults()

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid platform url %q", cfg.BaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &HTTPClient{
		cfg:     cfg,
		base:    base,
		jar:     jar,
		http:    &http.Client{Timeout: cfg.Timeout, Jar: jar, Transport: cfg.Transport},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:  logger,
	}

	if token != "" {
		var info authInfo
		if err := json.Unmarshal([]byte(token), &info); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadToken, err)
		}
		cookies := make([]*http.Cookie, 0, len(info.Cookies))
		for _, sc := range info.Cookies {
			cookies = append(cookies, &http.Cookie{Name: sc.Name, Value: sc.Value})
		}
		jar.SetCookies(base, cookies)
	}
	return c, nil
}

// NewFactory returns a Factory producing HTTPClients that share cfg.
func NewFactory(cfg HTTPConfig, logger logging.Logger) Factory {
	return func(token string) (Client, error) {
		return NewHTTPClient(cfg, token, logger)
	}
}

func (c *HTTPClient) AuthInfo() string {
	info := authInfo{Cookies: []storedCookie{}}
	for _, ck := range c.jar.Cookies(c.base) {
		info.Cookies = append(info.Cookies, storedCookie{Name: ck.Name, Value: ck.Value})
	}
	b, _ := json.Marshal(info)
	return string(b)
}

func (c *HTTPClient) Authenticate(ctx context.Context, identifier string, secret []byte) error {
	form := url.Values{
		"Login":    {identifier},
		"Password": {string(secret)},
		"saveauth": {"1"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	ok, err := c.CheckAuthentication(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnauthorized
	}
	return nil
}

func (c *HTTPClient) CheckAuthentication(ctx context.Context) (bool, error) {
	_, err := c.GetUser(ctx)
	if errors.Is(err, ErrUnauthorized) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type userDTO struct {
	ID   int64  `json:"id"`
	Nick string `json:"nick"`
	Rate struct {
		Name string `json:"name"`
	} `json:"rate"`
}

func (c *HTTPClient) GetUser(ctx context.Context) (models.Profile, error) {
	var u userDTO
	if err := c.getJSON(ctx, pathUser, nil, &u); err != nil {
		return models.Profile{}, err
	}
	return models.Profile{
		ID:   u.ID,
		Name: u.Nick,
		Rate: u.Rate.Name,
		URL:  c.base.String() + "/profile/id" + strconv.FormatInt(u.ID, 10),
	}, nil
}

type questionDTO struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Text   string `json:"text"`
	Author struct {
		Name string `json:"name"`
	} `json:"author"`
	Category struct {
		Name string `json:"name"`
	} `json:"category"`
	CanAnswer bool `json:"can_answer"`
	Poll      *struct {
		Options []struct {
			ID   int64  `json:"id"`
			Text string `json:"text"`
		} `json:"options"`
	} `json:"poll"`
}

func (c *HTTPClient) GetQuestion(ctx context.Context, id int64) (models.Question, error) {
	var dto questionDTO
	params := url.Values{"qid": {strconv.FormatInt(id, 10)}}
	if err := c.getJSON(ctx, pathQuestion, params, &dto); err != nil {
		return models.Question{}, err
	}

	q := models.Question{
		ID:        dto.ID,
		Title:     dto.Title,
		Text:      dto.Text,
		Author:    dto.Author.Name,
		Category:  dto.Category.Name,
		URL:       c.base.String() + "/question/" + strconv.FormatInt(dto.ID, 10),
		CanAnswer: dto.CanAnswer,
	}
	if dto.Poll != nil {
		q.Poll = &models.Poll{Options: make([]models.PollOption, 0, len(dto.Poll.Options))}
		for _, o := range dto.Poll.Options {
			q.Poll.Options = append(q.Poll.Options, models.PollOption{ID: o.ID, Text: o.Text})
		}
	}
	return q, nil
}

func (c *HTTPClient) AddAnswer(ctx context.Context, q models.Question, text string) error {
	return c.postForm(ctx, pathAnswer, url.Values{
		"qid":  {strconv.FormatInt(q.ID, 10)},
		"text": {text},
	})
}

func (c *HTTPClient) VoteInPoll(ctx context.Context, q models.Question, options []models.PollOption) error {
	form := url.Values{"qid": {strconv.FormatInt(q.ID, 10)}}
	for _, o := range options {
		form.Add("vote", strconv.FormatInt(o.ID, 10))
	}
	return c.postForm(ctx, pathVote, form)
}

type newQuestionsDTO struct {
	Questions []struct {
		ID int64 `json:"id"`
	} `json:"questions"`
}

func (c *HTTPClient) fetchNewIDs(ctx context.Context) ([]int64, error) {
	var dto newQuestionsDTO
	params := url.Values{"limit": {strconv.Itoa(c.cfg.PollLimit)}}
	if err := c.getJSON(ctx, pathNewQuestions, params, &dto); err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(dto.Questions))
	for _, q := range dto.Questions {
		ids = append(ids, q.ID)
	}
	return ids, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	u := c.base.String() + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, out)
}

func (c *HTTPClient) postForm(ctx context.Context, path string, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base.String()+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	return c.do(req, nil)
}

type errorEnvelope struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// do waits for the rate limiter, sends req and decodes a JSON body into out
// when out is non-nil.
func (c *HTTPClient) do(req *http.Request, out any) error {
	ctx := req.Context()
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	c.logger.Debug(ctx, "platform request", "method", req.Method, "path", req.URL.Path,
		"status", resp.StatusCode, "elapsed", time.Since(start))

	if err := mapError(resp.StatusCode, body); err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

// mapError turns a response into one of the package's errors, or nil.
// A 200 response can still carry an application error envelope.
func mapError(status int, body []byte) error {
	var env errorEnvelope
	_ = json.Unmarshal(body, &env)

	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrUnauthorized
	case status >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, status)
	case env.Error != nil:
		return &APIError{Status: status, Code: env.Error.Code, Message: env.Error.Message}
	case status >= 400:
		return &APIError{Status: status, Message: strings.TrimSpace(string(body))}
	}
	return nil
}
