package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zenithlist/internal/models"
)

func completionBody(content string) string {
	return `{"choices":[{"message":{"role":"assistant","content":` + content + `}}]}`
}

func TestSuggestTasks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody(`"[{\"title\":\"Book flights\",\"description\":\"compare prices\",\"priority\":\"High\"},{\"title\":\"Pack bags\",\"priority\":\"whenever\"}]"`)))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	suggestions, err := client.SuggestTasks(context.Background(), "plan a trip")
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, "Book flights", suggestions[0].Title)
	assert.Equal(t, models.PriorityHigh, suggestions[0].Priority)
	// Unknown priorities normalize to Medium.
	assert.Equal(t, models.PriorityMedium, suggestions[1].Priority)
}

func TestSuggestTasksRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(completionBody(`"[{\"title\":\"Stretch\",\"priority\":\"Low\"}]"`)))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	suggestions, err := client.SuggestTasks(context.Background(), "morning routine")
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSuggestTasksAPIErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"model overloaded with nonsense","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	_, err := client.SuggestTasks(context.Background(), "goal")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
	assert.Equal(t, int32(1), calls.Load())
}

func TestSuggestTasksRequiresKeyAndGoal(t *testing.T) {
	client := NewClient("", "")
	_, err := client.SuggestTasks(context.Background(), "goal")
	assert.Error(t, err)
	assert.False(t, client.Enabled())

	client = NewClient("key", "")
	_, err = client.SuggestTasks(context.Background(), "   ")
	assert.Error(t, err)
}

func TestParseSuggestionsCodeFence(t *testing.T) {
	fenced := "```json\n[{\"title\":\"Run\",\"priority\":\"Low\"}]\n```"
	suggestions, err := parseSuggestions(fenced)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Run", suggestions[0].Title)
}
