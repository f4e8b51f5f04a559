package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/otvetbot/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGeminiTestServer(t *testing.T, status int, body string, captured *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, ":generateContent"), r.URL.Path)
		if captured != nil {
			_ = json.NewDecoder(r.Body).Decode(captured)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGeminiCompleter_Complete(t *testing.T) {
	var sent map[string]any
	srv := newGeminiTestServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"Ответ"}]}}],"modelVersion":"gemini-2.5-flash"}`, &sent)

	ctx := context.Background()
	c, err := NewGeminiCompleter(ctx, GeminiConfig{APIKey: "k", BaseURL: srv.URL}, logging.Discard())
	require.NoError(t, err)

	resp, err := c.Complete(ctx, Request{
		Model: "gemini-2.5-flash",
		Messages: []Message{
			{Role: RoleSystem, Content: "be an expert"},
			{Role: RoleUser, Content: "TITLE: t\nQUESTION: q"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ответ", resp.Text)
	assert.Contains(t, sent, "systemInstruction")
	assert.Contains(t, sent, "contents")
}

func TestGeminiCompleter_ResourceExhausted(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{
			name: "daily quota stops",
			body: `{"error":{"code":429,"message":"You exceeded your current quota: requests per day","status":"RESOURCE_EXHAUSTED",` +
				`"details":[{"@type":"type.googleapis.com/google.rpc.QuotaFailure","violations":[{"quotaId":"GenerateRequestsPerDayPerProjectPerModel-FreeTier"}]}]}}`,
			want: ErrQuotaExhausted,
		},
		{
			name: "per-minute limit is a single failure",
			body: `{"error":{"code":429,"message":"You exceeded your current quota","status":"RESOURCE_EXHAUSTED",` +
				`"details":[{"@type":"type.googleapis.com/google.rpc.QuotaFailure","violations":[{"quotaId":"GenerateRequestsPerMinutePerProjectPerModel-FreeTier"}]}]}}`,
			want: ErrBackendOtherFailure,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newGeminiTestServer(t, http.StatusTooManyRequests, tt.body, nil)

			ctx := context.Background()
			c, err := NewGeminiCompleter(ctx, GeminiConfig{APIKey: "k", BaseURL: srv.URL}, logging.Discard())
			require.NoError(t, err)

			_, err = c.Complete(ctx, Request{Model: "m", Messages: []Message{{Role: RoleUser, Content: "q"}}})
			require.Error(t, err)
			assert.ErrorIs(t, Classify(err), tt.want)
		})
	}
}

func TestQuotaIDs(t *testing.T) {
	details := []map[string]any{
		{"@type": "type.googleapis.com/google.rpc.Help"},
		{
			"@type": "type.googleapis.com/google.rpc.QuotaFailure",
			"violations": []any{
				map[string]any{"quotaId": "GenerateRequestsPerDayPerProjectPerModel-FreeTier"},
				map[string]any{"quotaMetric": "no id"},
			},
		},
	}

	assert.Equal(t, []string{"GenerateRequestsPerDayPerProjectPerModel-FreeTier"}, quotaIDs(details))
	assert.Empty(t, quotaIDs(nil))
}

func TestNewGeminiCompleter_RequiresKey(t *testing.T) {
	_, err := NewGeminiCompleter(context.Background(), GeminiConfig{}, logging.Discard())
	assert.Error(t, err)
}

func TestSplit(t *testing.T) {
	sys, rest := split([]Message{
		{Role: RoleSystem, Content: "a"},
		{Role: RoleUser, Content: "u"},
		{Role: RoleSystem, Content: "b"},
	})
	assert.Equal(t, "a\n\nb", sys)
	assert.Equal(t, []Message{{Role: RoleUser, Content: "u"}}, rest)
}
