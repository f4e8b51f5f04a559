package platform

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/otvetbot/internal/logging"
	"github.com/dmitrijs2005/otvetbot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionCookie = "Mpop"

// fakePlatform is a minimal in-process platform: one account, one question
// and a cookie-based session.
type fakePlatform struct {
	mu       sync.Mutex
	answers  []string
	votes    [][]string
	newCalls atomic.Int32
}

func (f *fakePlatform) authorized(r *http.Request) bool {
	c, err := r.Cookie(sessionCookie)
	return err == nil && c.Value == "ok"
}

func (f *fakePlatform) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.Form.Get("Login") == "a@mail.ru" && r.Form.Get("Password") == "pw" {
			http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "ok", Path: "/"})
		}
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("GET "+pathUser, func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"id":42,"nick":"Bot","rate":{"name":"Ученик"}}`))
	})

	mux.HandleFunc("GET "+pathQuestion, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("qid") {
		case "7":
			_, _ = w.Write([]byte(`{"id":7,"title":"Why?","text":"Because","author":{"name":"Ann"},
				"category":{"name":"Other"},"can_answer":true,
				"poll":{"options":[{"id":1,"text":"yes"},{"id":2,"text":"no"}]}}`))
		case "8":
			_, _ = w.Write([]byte(`{"id":8,"title":"Plain","text":"","can_answer":false}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":"not_found","message":"no such question"}}`))
		}
	})

	mux.HandleFunc("POST "+pathAnswer, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.Form.Get("text") == "quota" {
			_, _ = w.Write([]byte(`{"error":{"code":"limit","message":"limits exceeded: AAQ"}}`))
			return
		}
		f.mu.Lock()
		f.answers = append(f.answers, r.Form.Get("qid")+":"+r.Form.Get("text"))
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{}`))
	})

	mux.HandleFunc("POST "+pathVote, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		f.mu.Lock()
		f.votes = append(f.votes, r.Form["vote"])
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{}`))
	})

	mux.HandleFunc("GET "+pathNewQuestions, func(w http.ResponseWriter, r *http.Request) {
		n := f.newCalls.Add(1)
		if n == 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"questions":[{"id":1},{"id":2},{"id":3}]}`))
	})

	return mux
}

func newTestClient(t *testing.T, token string) (*HTTPClient, *fakePlatform) {
	t.Helper()
	fp := &fakePlatform{}
	srv := httptest.NewServer(fp.handler())
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(HTTPConfig{
		BaseURL:           srv.URL,
		AuthURL:           srv.URL + "/auth",
		RequestsPerSecond: 1000,
		PollInterval:      5 * time.Millisecond,
	}, token, logging.Discard())
	require.NoError(t, err)
	return c, fp
}

func TestHTTPClient_AuthenticateAndRestore(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t, "")

	ok, err := c.CheckAuthentication(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	err = c.Authenticate(ctx, "a@mail.ru", []byte("wrong"))
	require.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, c.Authenticate(ctx, "a@mail.ru", []byte("pw")))

	token := c.AuthInfo()
	var info authInfo
	require.NoError(t, json.Unmarshal([]byte(token), &info))
	assert.Contains(t, info.Cookies, storedCookie{Name: sessionCookie, Value: "ok"})

	restored, err := NewHTTPClient(c.cfg, token, logging.Discard())
	require.NoError(t, err)
	ok, err = restored.CheckAuthentication(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	p, err := restored.GetUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.ID)
	assert.Equal(t, "Bot", p.Name)
	assert.Equal(t, "Ученик", p.Rate)
	assert.Contains(t, p.URL, "/profile/id42")
}

func TestNewHTTPClient_BadToken(t *testing.T) {
	_, err := NewHTTPClient(HTTPConfig{BaseURL: "http://localhost"}, "not json", logging.Discard())
	require.ErrorIs(t, err, ErrBadToken)

	_, err = NewHTTPClient(HTTPConfig{BaseURL: "::"}, "", logging.Discard())
	require.Error(t, err)
}

func TestHTTPClient_GetQuestion(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t, "")

	q, err := c.GetQuestion(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Why?", q.Title)
	assert.Equal(t, "Ann", q.Author)
	assert.True(t, q.CanAnswer)
	require.True(t, q.HasPoll())
	assert.Equal(t, []models.PollOption{{ID: 1, Text: "yes"}, {ID: 2, Text: "no"}}, q.Poll.Options)

	q, err = c.GetQuestion(ctx, 8)
	require.NoError(t, err)
	assert.False(t, q.CanAnswer)
	assert.False(t, q.HasPoll())

	_, err = c.GetQuestion(ctx, 9)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "not_found", apiErr.Code)
}

func TestHTTPClient_AddAnswerAndVote(t *testing.T) {
	ctx := context.Background()
	c, fp := newTestClient(t, "")
	q := models.Question{ID: 7}

	require.NoError(t, c.AddAnswer(ctx, q, "forty two"))
	fp.mu.Lock()
	assert.Equal(t, []string{"7:forty two"}, fp.answers)
	fp.mu.Unlock()

	err := c.AddAnswer(ctx, q, "quota")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "limits exceeded")

	require.NoError(t, c.VoteInPoll(ctx, q, []models.PollOption{{ID: 2}, {ID: 1}}))
	fp.mu.Lock()
	assert.Equal(t, [][]string{{"2", "1"}}, fp.votes)
	fp.mu.Unlock()
}

func TestHTTPClient_NewQuestionsDedupsAndSurvivesErrors(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, _ := newTestClient(t, "")

	var batches [][]int64
	var errs []error
	for ids, err := range c.NewQuestions(ctx) {
		if err != nil {
			errs = append(errs, err)
		} else {
			batches = append(batches, ids)
		}
		if len(errs) == 1 {
			break
		}
	}

	assert.Equal(t, [][]int64{{1, 2, 3}}, batches)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrUnavailable)
}

func TestPoll_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	fetch := func(context.Context) ([]int64, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return []int64{int64(calls)}, nil
	}

	var got [][]int64
	for ids, err := range poll(ctx, time.Millisecond, fetch) {
		require.NoError(t, err)
		got = append(got, ids)
	}
	assert.Equal(t, [][]int64{{1}}, got)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "ok", status: 200, body: `{}`, want: nil},
		{name: "unauthorized", status: 401, want: ErrUnauthorized},
		{name: "forbidden", status: 403, want: ErrUnauthorized},
		{name: "server", status: 503, want: ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapError(tt.status, []byte(tt.body))
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	err := mapError(200, []byte(`{"error":{"code":"x","message":"limits exceeded: AAQ"}}`))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "limits exceeded: AAQ", apiErr.Message)

	err = mapError(400, []byte("bad"))
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "bad", apiErr.Message)
}
