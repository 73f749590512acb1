package chat

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	modelchat "github.com/mentalmate/mindbot/backend/internal/model/chat"
	"github.com/mentalmate/mindbot/backend/internal/model/persona"
	"github.com/mentalmate/mindbot/backend/internal/model/resource"
	"github.com/mentalmate/mindbot/backend/internal/service/admin"
	"github.com/mentalmate/mindbot/backend/internal/service/ai"
	chatservice "github.com/mentalmate/mindbot/backend/internal/service/chat"
	"github.com/mentalmate/mindbot/backend/internal/service/pipeline"
)

func setupRouter(t *testing.T) (*chi.Mux, *chatservice.Service) {
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
	handler := New(chatSvc, pipe, admin.NewController(chatSvc, pipe, nil))

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, chatSvc
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func createSession(t *testing.T, r http.Handler) modelchat.Session {
	t.Helper()
	resp := do(t, r, http.MethodPost, "/sessions", map[string]string{"userId": "user-1", "userName": "Amani"})
	require.Equal(t, http.StatusCreated, resp.Code)

	var session modelchat.Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	return session
}

func TestCreateSession(t *testing.T) {
	r, _ := setupRouter(t)
	session := createSession(t, r)

	assert.Equal(t, "user-1", session.UserID)
	require.Len(t, session.Messages, 1)
	assert.Equal(t, modelchat.RoleBot, session.Messages[0].Role)

	resp := do(t, r, http.MethodGet, "/sessions/current?userId=user-1", nil)
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestCreateSessionInvalidPersona(t *testing.T) {
	r, _ := setupRouter(t)

	resp := do(t, r, http.MethodPost, "/sessions", map[string]string{"userId": "user-1", "personaId": "non-existent"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateSessionMissingUser(t *testing.T) {
	r, _ := setupRouter(t)

	resp := do(t, r, http.MethodPost, "/sessions", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendMessage(t *testing.T) {
	r, _ := setupRouter(t)
	session := createSession(t, r)

	resp := do(t, r, http.MethodPost, "/sessions/"+session.ID+"/messages", map[string]string{"content": "I've been so lonely lately"})
	require.Equal(t, http.StatusOK, resp.Code)

	var result pipeline.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.Len(t, result.Replies, 1)
	assert.Equal(t, "sad", result.Replies[0].Emotion)
	assert.Equal(t, "emotional_support", result.Replies[0].Intent)
	assert.NotEmpty(t, result.Suggestions)

	resp = do(t, r, http.MethodGet, "/sessions/"+session.ID+"/messages", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var messages []modelchat.Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&messages))
	assert.Len(t, messages, 3)
}

func TestSendCrisisMessage(t *testing.T) {
	r, _ := setupRouter(t)
	session := createSession(t, r)

	resp := do(t, r, http.MethodPost, "/sessions/"+session.ID+"/messages", map[string]string{"content": "I want to end my life"})
	require.Equal(t, http.StatusOK, resp.Code)

	var result pipeline.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Crisis)
	assert.NotEmpty(t, result.Hotlines)
	assert.True(t, result.Session.Flagged)
}

func TestSendMessageErrors(t *testing.T) {
	r, _ := setupRouter(t)
	session := createSession(t, r)

	resp := do(t, r, http.MethodPost, "/sessions/"+session.ID+"/messages", map[string]string{"content": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = do(t, r, http.MethodPost, "/sessions/missing/messages", map[string]string{"content": "hi"})
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = do(t, r, http.MethodGet, "/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestEndSession(t *testing.T) {
	r, _ := setupRouter(t)
	session := createSession(t, r)

	resp := do(t, r, http.MethodPost, "/sessions/"+session.ID+"/end", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var ended modelchat.Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ended))
	assert.Equal(t, modelchat.StatusEnded, ended.Status)
	assert.Equal(t, chatservice.FarewellMessage, ended.Messages[len(ended.Messages)-1].Content)

	resp = do(t, r, http.MethodPost, "/sessions/"+session.ID+"/messages", map[string]string{"content": "hello?"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestRequestSpecialist(t *testing.T) {
	r, chatSvc := setupRouter(t)
	session := createSession(t, r)

	resp := do(t, r, http.MethodPost, "/sessions/"+session.ID+"/specialist", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	got, err := chatSvc.GetSession(t.Context(), session.ID)
	require.NoError(t, err)
	assert.True(t, got.HumanDriven())
	assert.Equal(t, admin.CrisisSupportName, got.AdminName)

	resp = do(t, r, http.MethodPost, "/sessions/"+session.ID+"/messages", map[string]string{"content": "thank you"})
	require.Equal(t, http.StatusOK, resp.Code)
	var result pipeline.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Suppressed)
}
