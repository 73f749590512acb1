package stream

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentalmate/mindbot/backend/internal/model/persona"
	"github.com/mentalmate/mindbot/backend/internal/model/resource"
	"github.com/mentalmate/mindbot/backend/internal/service/ai"
	chatservice "github.com/mentalmate/mindbot/backend/internal/service/chat"
	"github.com/mentalmate/mindbot/backend/internal/service/pipeline"
)

func setup(t *testing.T) (*chi.Mux, string) {
	t.Helper()
	catalog, err := resource.Default()
	require.NoError(t, err)

	personas := persona.NewMemoryStore(persona.Seed())
	chatSvc := chatservice.NewService(personas, nil)
	pipe := pipeline.New(pipeline.Deps{
		Sessions:  chatSvc,
		Completer: ai.ScriptedCompleter{},
		Personas:  personas,
		Resources: catalog,
	}, pipeline.Config{}, nil)

	session, err := pipe.StartSession(t.Context(), "user-1", "Amani", "", "en")
	require.NoError(t, err)

	r := chi.NewRouter()
	New(pipe, nil).RegisterRoutes(r)
	return r, session.ID
}

func readEvents(t *testing.T, body string) []StreamResponse {
	t.Helper()
	var events []StreamResponse
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev StreamResponse
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
		events = append(events, ev)
	}
	return events
}

func eventNames(events []StreamResponse) []string {
	names := make([]string, 0, len(events))
	for _, ev := range events {
		names = append(names, ev.Event)
	}
	return names
}

func TestStreamReply(t *testing.T) {
	r, sessionID := setup(t)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream/"+sessionID+"?message="+url.QueryEscape("I feel anxious"), nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "text/event-stream", resp.Header().Get("Content-Type"))

	events := readEvents(t, resp.Body.String())
	assert.Equal(t, []string{"start", "delta", "message", "suggestions", "end"}, eventNames(events))
	assert.Equal(t, events[1].Content, events[2].Content)
	assert.True(t, events[len(events)-1].Finished)
}

func TestStreamCrisis(t *testing.T) {
	r, sessionID := setup(t)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream/"+sessionID+"?message="+url.QueryEscape("I want to die"), nil))
	require.Equal(t, http.StatusOK, resp.Code)

	names := eventNames(readEvents(t, resp.Body.String()))
	assert.Contains(t, names, "crisis")
	assert.Equal(t, "end", names[len(names)-1])
}

func TestStreamErrorsBeforeOpening(t *testing.T) {
	r, _ := setup(t)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream/missing?message=hi", nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream/missing", nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
