package models

import (
	"strings"
	"time"
)

type Category string

const (
	CategoryEnvironment Category = "Environment"
	CategoryEducation   Category = "Education"
	CategoryHealth      Category = "Health"
	CategoryCommunity   Category = "Community Development"
	CategoryAnimals     Category = "Animal Welfare"
	CategorySeniors     Category = "Seniors"
	CategoryChildren    Category = "Children"
	CategoryArtsCulture Category = "Arts & Culture"
	CategoryHomeless    Category = "Homelessness"
	CategoryTechnology  Category = "Technology"
	CategoryCaregiving  Category = "Caregiving"
	CategoryLeadership  Category = "Organizational Leadership"
	CategoryEvents      Category = "PR, Fundraising, Events"
	CategoryOther       Category = "Other"
)

// AllCategories lists every category in display order.
var AllCategories = []Category{
	CategoryEnvironment,
	CategoryEducation,
	CategoryHealth,
	CategoryCommunity,
	CategoryAnimals,
	CategorySeniors,
	CategoryChildren,
	CategoryArtsCulture,
	CategoryHomeless,
	CategoryTechnology,
	CategoryCaregiving,
	CategoryLeadership,
	CategoryEvents,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, v := range AllCategories {
		if v == c {
			return true
		}
	}
	return false
}

type TimeCommitment string

const (
	TimeLessThanTwoHours TimeCommitment = "Less than 2 hours"
	TimeTwoToFourHours   TimeCommitment = "2-4 hours"
	TimeFullDay          TimeCommitment = "Full day"
	TimeOngoingWeekly    TimeCommitment = "Ongoing weekly"
	TimeOngoingMonthly   TimeCommitment = "Ongoing monthly"
	TimeOneTimeEvent     TimeCommitment = "One-time event"
	TimeFlexible         TimeCommitment = "Flexible"
)

var AllTimeCommitments = []TimeCommitment{
	TimeLessThanTwoHours,
	TimeTwoToFourHours,
	TimeFullDay,
	TimeOngoingWeekly,
	TimeOngoingMonthly,
	TimeOneTimeEvent,
	TimeFlexible,
}

func (t TimeCommitment) Valid() bool {
	for _, v := range AllTimeCommitments {
		if v == t {
			return true
		}
	}
	return false
}

type Organization struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Website      string `json:"website,omitempty" yaml:"website"`
	ContactEmail string `json:"contactEmail,omitempty" yaml:"contact_email"`
	Description  string `json:"description,omitempty" yaml:"description"`
	Logo         string `json:"logo,omitempty" yaml:"logo"`
}

type Opportunity struct {
	ID             string         `json:"id" yaml:"id"`
	Title          string         `json:"title" yaml:"title"`
	OrganizationID string         `json:"organizationId" yaml:"organization_id"`
	Organization   Organization   `json:"organization" yaml:"-"`
	Description    string         `json:"description" yaml:"description"`
	Dates          string         `json:"dates" yaml:"dates"`
	Location       string         `json:"location" yaml:"location"`
	SkillsRequired []string       `json:"skillsRequired" yaml:"skills_required"`
	AgeRequirement string         `json:"ageRequirement,omitempty" yaml:"age_requirement"`
	ContactPerson  string         `json:"contactPerson,omitempty" yaml:"contact_person"`
	ContactEmail   string         `json:"contactEmail,omitempty" yaml:"contact_email"`
	ApplicationURL string         `json:"applicationLink,omitempty" yaml:"application_link"`
	Category       Category       `json:"category" yaml:"category"`
	TimeCommitment TimeCommitment `json:"timeCommitment" yaml:"time_commitment"`
	ImageURL       string         `json:"imageUrl,omitempty" yaml:"image_url"`
	PublishedDate  time.Time      `json:"publishedDate" yaml:"published_date"`
	RemoteOrOnline bool           `json:"remoteOrOnline" yaml:"remote_or_online"`
}

// Query is the search configuration a caller hands to ingestion. It is passed by value.
type Query struct {
	SearchTerm     string         `json:"searchTerm"`
	Category       Category       `json:"category"`
	TimeCommitment TimeCommitment `json:"timeCommitment"`
	OrganizationID string         `json:"organizationId"`
	DateRange      string         `json:"dateRange"`
	Location       string         `json:"location"`
	Skills         string         `json:"skills"`
	Age            string         `json:"age"`
}

// IsZero reports whether no field of the query is set.
func (q Query) IsZero() bool {
	return strings.TrimSpace(q.SearchTerm) == "" && q.Category == "" && q.TimeCommitment == "" &&
		q.OrganizationID == "" && (q.DateRange == "" || q.DateRange == "any") &&
		strings.TrimSpace(q.Location) == "" && strings.TrimSpace(q.Skills) == "" && strings.TrimSpace(q.Age) == ""
}
