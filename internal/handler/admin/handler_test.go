package admin

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
	adminservice "github.com/mentalmate/mindbot/backend/internal/service/admin"
	chatservice "github.com/mentalmate/mindbot/backend/internal/service/chat"
)

func setup(t *testing.T) (*chi.Mux, modelchat.Session) {
	t.Helper()
	chatSvc := chatservice.NewService(persona.NewMemoryStore(persona.Seed()), nil)
	session, err := chatSvc.CreateSession(t.Context(), "user-1", "Amani", "", "en")
	require.NoError(t, err)

	r := chi.NewRouter()
	New(adminservice.NewController(chatSvc, nil, nil)).RegisterRoutes(r)
	return r, session
}

func post(t *testing.T, r http.Handler, method, path string, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(method, path, bytes.NewReader(payload)))
	return resp
}

func TestTakeoverFlow(t *testing.T) {
	r, session := setup(t)
	base := "/sessions/" + session.ID

	resp := post(t, r, http.MethodPost, base+"/messages", map[string]string{"adminName": "Dr. Sarah", "content": "hello"})
	assert.Equal(t, http.StatusConflict, resp.Code)

	resp = post(t, r, http.MethodPost, base+"/join", map[string]string{"adminName": "Dr. Sarah"})
	require.Equal(t, http.StatusOK, resp.Code)
	var joined modelchat.Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&joined))
	assert.Equal(t, modelchat.ModeHuman, joined.Mode)

	resp = post(t, r, http.MethodPost, base+"/messages", map[string]string{"adminName": "Dr. Sarah", "content": "hello"})
	assert.Equal(t, http.StatusCreated, resp.Code)

	resp = post(t, r, http.MethodPut, base+"/notes", map[string]string{"notes": "calm after intervention"})
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = post(t, r, http.MethodPost, base+"/leave", map[string]string{"adminName": "Dr. Sarah"})
	require.Equal(t, http.StatusOK, resp.Code)
	var left modelchat.Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&left))
	assert.Equal(t, modelchat.ModeBot, left.Mode)
	assert.Equal(t, "calm after intervention", left.Notes)
}

func TestFlagAndList(t *testing.T) {
	r, session := setup(t)

	resp := post(t, r, http.MethodPost, "/sessions/"+session.ID+"/flag", map[string]string{"reason": "manual review"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/sessions/flagged", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	var flagged []modelchat.Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&flagged))
	require.Len(t, flagged, 1)
	assert.Equal(t, "manual review", flagged[0].FlagReason)
}

func TestJoinValidation(t *testing.T) {
	r, session := setup(t)

	resp := post(t, r, http.MethodPost, "/sessions/"+session.ID+"/join", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = post(t, r, http.MethodPost, "/sessions/missing/join", map[string]string{"adminName": "Dr. Sarah"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
