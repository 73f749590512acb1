package profile_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	modelchat "github.com/mentalmate/mindbot/backend/internal/model/chat"
	"github.com/mentalmate/mindbot/backend/internal/model/persona"
	modelprofile "github.com/mentalmate/mindbot/backend/internal/model/profile"
	"github.com/mentalmate/mindbot/backend/internal/model/resource"
	chatsvc "github.com/mentalmate/mindbot/backend/internal/service/chat"
	"github.com/mentalmate/mindbot/backend/internal/service/profile"
	"github.com/mentalmate/mindbot/backend/pkg/apperrors"
)

func newServices(t *testing.T) (*profile.Service, *chatsvc.Service) {
	t.Helper()
	catalog, err := resource.Default()
	require.NoError(t, err)
	sessions := chatsvc.NewService(persona.NewMemoryStore(persona.Seed()), nil)
	return profile.NewService(sessions, catalog, nil), sessions
}

func TestRecordMoodBuckets(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()

	want := map[int]string{
		1: "sad", 3: "sad", 4: "anxious", 5: "neutral", 6: "neutral",
		7: "happy", 8: "happy", 9: "excited", 10: "excited",
	}
	for mood, emotion := range want {
		res, err := svc.RecordMood(ctx, "user-1", mood)
		require.NoError(t, err)
		assert.Equal(t, emotion, res.Entry.Emotion, "mood %d", mood)
		assert.Nil(t, res.Session)
	}

	p, err := svc.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, p.MoodHistory, len(want))
}

func TestRecordMoodRejectsOutOfRange(t *testing.T) {
	svc, _ := newServices(t)

	for _, mood := range []int{0, 11, -3} {
		_, err := svc.RecordMood(context.Background(), "user-1", mood)
		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	}

	_, err := svc.GetProfile(context.Background(), "user-1")
	require.ErrorIs(t, err, profile.ErrProfileNotFound)
}

func TestRecordMoodUpdatesCurrentSession(t *testing.T) {
	svc, sessions := newServices(t)
	ctx := context.Background()

	session, err := sessions.CreateSession(ctx, "user-1", "Amani", "", "en")
	require.NoError(t, err)

	res, err := svc.RecordMood(ctx, "user-1", 2)
	require.NoError(t, err)
	require.NotNil(t, res.Session)
	assert.Equal(t, session.ID, res.Session.ID)
	assert.Equal(t, "sad", res.Session.CurrentEmotion)

	last := res.Session.Messages[len(res.Session.Messages)-1]
	assert.Equal(t, modelchat.RoleSystem, last.Role)
	assert.Equal(t, "You've updated your mood to sad (2/10).", last.Content)
	assert.Equal(t, res.Entry, res.Session.MoodHistory[len(res.Session.MoodHistory)-1])
	assert.Equal(t, res.Entry, res.Profile.MoodHistory[0])
}

func TestRecordMoodAfterSessionEnded(t *testing.T) {
	svc, sessions := newServices(t)
	ctx := context.Background()

	session, err := sessions.CreateSession(ctx, "user-1", "Amani", "", "en")
	require.NoError(t, err)
	_, err = sessions.Dispatch(ctx, session.ID, chatsvc.EndSession())
	require.NoError(t, err)

	res, err := svc.RecordMood(ctx, "user-1", 7)
	require.NoError(t, err)
	assert.Nil(t, res.Session)
	assert.Len(t, res.Profile.MoodHistory, 1)
}

func TestToggleSavedResource(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()

	p, err := svc.ToggleSavedResource(ctx, "user-1", "res_2")
	require.NoError(t, err)
	assert.True(t, p.HasSavedResource("res_2"))

	p, err = svc.ToggleSavedResource(ctx, "user-1", "res_2")
	require.NoError(t, err)
	assert.False(t, p.HasSavedResource("res_2"))

	_, err = svc.ToggleSavedResource(ctx, "user-1", "res_404")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGoals(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()

	_, err := svc.AddGoal(ctx, "user-1", "  ")
	require.ErrorIs(t, err, profile.ErrGoalRequired)

	goal, err := svc.AddGoal(ctx, "user-1", "Walk 10 minutes a day")
	require.NoError(t, err)
	assert.NotEmpty(t, goal.ID)
	assert.False(t, goal.Completed)

	toggled, err := svc.ToggleGoal(ctx, "user-1", goal.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	_, err = svc.ToggleGoal(ctx, "user-1", "missing")
	require.ErrorIs(t, err, profile.ErrGoalNotFound)
}

func TestEmergencyContacts(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()

	_, err := svc.AddEmergencyContact(ctx, "user-1", modelprofile.EmergencyContact{Name: "Mum"})
	require.ErrorIs(t, err, profile.ErrContactInvalid)

	p, err := svc.AddEmergencyContact(ctx, "user-1", modelprofile.EmergencyContact{Name: "Mum", Relationship: "mother", Phone: "+254700000000"})
	require.NoError(t, err)
	require.Len(t, p.EmergencyContacts, 1)
	assert.Equal(t, "mother", p.EmergencyContacts[0].Relationship)
}

func TestSummary(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()

	assert.Empty(t, svc.Summary(ctx, "user-1"))

	_, err := svc.EnsureProfile(ctx, "user-1", "Amani", "gentle")
	require.NoError(t, err)
	_, err = svc.RecordMood(ctx, "user-1", 3)
	require.NoError(t, err)
	done, err := svc.AddGoal(ctx, "user-1", "Journal")
	require.NoError(t, err)
	_, err = svc.AddGoal(ctx, "user-1", "Sleep by 11")
	require.NoError(t, err)
	_, err = svc.ToggleGoal(ctx, "user-1", done.ID)
	require.NoError(t, err)

	summary := svc.Summary(ctx, "user-1")
	assert.Contains(t, summary, "Name: Amani")
	assert.Contains(t, summary, "3/10 (sad)")
	assert.Contains(t, summary, "Current goals: Sleep by 11")
	assert.NotContains(t, summary, "Journal")
}

func TestAttachSessionIsIdempotent(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()

	require.NoError(t, svc.AttachSession(ctx, "user-1", "s-1"))
	require.NoError(t, svc.AttachSession(ctx, "user-1", "s-1"))

	p, err := svc.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"s-1"}, p.Sessions)
}
