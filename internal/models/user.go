package models

import "time"

type HourStatus string

const (
	HourPending       HourStatus = "Pending"
	HourApproved      HourStatus = "Approved"
	HourSelfCertified HourStatus = "Self-Certified"
)

// LoggedHour snapshots the opportunity title, organization and category at log time.
type LoggedHour struct {
	ID               string     `json:"id" yaml:"id"`
	UserID           string     `json:"userId" yaml:"user_id"`
	OpportunityID    string     `json:"opportunityId" yaml:"opportunity_id"`
	OpportunityTitle string     `json:"opportunityTitle" yaml:"opportunity_title"`
	OrganizationName string     `json:"organizationName" yaml:"organization_name"`
	Category         Category   `json:"category,omitempty" yaml:"category"`
	Date             string     `json:"date" yaml:"date"` // YYYY-MM-DD
	Hours            float64    `json:"hours" yaml:"hours"`
	Notes            string     `json:"notes,omitempty" yaml:"notes"`
	Status           HourStatus `json:"status" yaml:"status"`
	LoggedAt         time.Time  `json:"loggedAt" yaml:"logged_at"`
}

type ImpactStory struct {
	ID               string    `json:"id" yaml:"id"`
	UserID           string    `json:"userId" yaml:"user_id"`
	UserName         string    `json:"userName" yaml:"user_name"`
	OpportunityTitle string    `json:"opportunityTitle" yaml:"opportunity_title"`
	Story            string    `json:"story" yaml:"story"`
	ImageURL         string    `json:"imageUrl,omitempty" yaml:"image_url"`
	SubmittedAt      time.Time `json:"submittedAt" yaml:"submitted_at"`
}

type EmailPreferences struct {
	NewOpportunities bool `json:"newOpportunities" yaml:"new_opportunities"`
	EventReminders   bool `json:"eventReminders" yaml:"event_reminders"`
}

type PhonePreferences struct {
	EventReminders bool `json:"eventReminders" yaml:"event_reminders"`
}

type NotificationPreferences struct {
	Email EmailPreferences `json:"email" yaml:"email"`
	Phone PhonePreferences `json:"phone" yaml:"phone"`
}

type UserProfile struct {
	ID                      string                  `json:"id" yaml:"id"`
	Name                    string                  `json:"name" yaml:"name"`
	Email                   string                  `json:"email" yaml:"email"`
	Phone                   string                  `json:"phone,omitempty" yaml:"phone"`
	PasswordHash            string                  `json:"passwordHash,omitempty" yaml:"-"`
	Interests               []Category              `json:"interests" yaml:"interests"`
	Availability            string                  `json:"availability,omitempty" yaml:"availability"`
	SavedOpportunityIDs     []string                `json:"savedOpportunityIds" yaml:"saved_opportunity_ids"`
	Location                string                  `json:"location,omitempty" yaml:"location"`
	NotificationPreferences NotificationPreferences `json:"notificationPreferences" yaml:"notification_preferences"`
	ImpactStories           []ImpactStory           `json:"impactStories" yaml:"impact_stories"`
}

// Public returns a copy safe to send to clients.
func (u UserProfile) Public() UserProfile {
	u.PasswordHash = ""
	return u
}
