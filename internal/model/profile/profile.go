package profile

import (
	"time"

	"github.com/mentalmate/mindbot/backend/internal/model/chat"
)

// Goal is a self-set wellbeing goal.
type Goal struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// EmergencyContact is a person the user wants reachable in a crisis.
type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
}

// UserProfile aggregates per-user tracking data.
type UserProfile struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	JoinDate          time.Time          `json:"joinDate"`
	PreferredPersona  string             `json:"preferredPersona"`
	Sessions          []string           `json:"sessions"`
	MoodHistory       []chat.MoodEntry   `json:"moodHistory"`
	SavedResources    []string           `json:"savedResources"`
	Goals             []Goal             `json:"goals"`
	EmergencyContacts []EmergencyContact `json:"emergencyContacts"`
}

// Clone returns a deep copy of the profile.
func (p UserProfile) Clone() UserProfile {
	out := p
	out.Sessions = append([]string(nil), p.Sessions...)
	out.MoodHistory = append([]chat.MoodEntry(nil), p.MoodHistory...)
	out.SavedResources = append([]string(nil), p.SavedResources...)
	out.Goals = append([]Goal(nil), p.Goals...)
	out.EmergencyContacts = append([]EmergencyContact(nil), p.EmergencyContacts...)
	return out
}

// HasSavedResource reports whether resourceID is in the saved set.
func (p UserProfile) HasSavedResource(resourceID string) bool {
	for _, id := range p.SavedResources {
		if id == resourceID {
			return true
		}
	}
	return false
}
