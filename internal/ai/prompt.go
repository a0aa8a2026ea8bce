package ai

import (
	"fmt"
	"strings"

	"github.com/david/voluntrack/internal/models"
)

// BuildOpportunityPrompt turns a search query into the generation request.
// The model is asked for a JSON array and a search query per record instead
// of a direct URL.
func BuildOpportunityPrompt(q models.Query, year int) string {
	location := "in my local area"
	if v := strings.TrimSpace(q.Location); v != "" {
		location = "in or near " + v
	}

	var filters []string
	if v := strings.TrimSpace(q.SearchTerm); v != "" {
		filters = append(filters, "related to "+v)
	}
	if q.Category != "" {
		filters = append(filters, "specifically for the category: "+string(q.Category))
	}
	if q.TimeCommitment != "" {
		filters = append(filters, fmt.Sprintf("with a time commitment of '%s'", q.TimeCommitment))
	}
	if v := strings.TrimSpace(q.Skills); v != "" {
		filters = append(filters, "requiring skills like "+v)
	}
	if v := strings.TrimSpace(q.Age); v != "" {
		filters = append(filters, fmt.Sprintf("with age requirements suitable for '%s'", v))
	}

	categories := make([]string, len(models.AllCategories))
	for i, c := range models.AllCategories {
		categories[i] = string(c)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You help students find volunteer work. Find 10-15 realistic volunteer opportunities %s", location)
	for _, f := range filters {
		b.WriteString(" ")
		b.WriteString(f)
	}
	b.WriteString(".\n\n")
	fmt.Fprintf(&b, `Do not invent URLs. For every opportunity give a precise Google search query that would find it,
using the site: operator when the organization's website is well known, and include the year %d.

Respond with ONLY a JSON array of objects with these fields:
- "id": string
- "title": string
- "organizationName": string
- "description": string, 1-3 sentences
- "location": string
- "dates": string, e.g. "Ongoing", "Every Saturday 9am-12pm", "October 26, %d"
- "searchQuery": string
- "category": one of: %s
- "timeCommitment": string, e.g. "2-4 hours/week", "One-time event", "Flexible", "Full-day"
- "remoteOrOnline": boolean
- "skillsRequired": array of 0-3 strings
- "ageRequirement": string, e.g. "18 and over"
`, year, year, strings.Join(categories, ", "))

	return b.String()
}

// StoryInput carries what the story prompt needs about one logged session.
type StoryInput struct {
	UserName         string
	OpportunityTitle string
	OrganizationName string
	Date             string
	Hours            float64
	Notes            string
}

func BuildStoryPrompt(in StoryInput) string {
	notes := strings.TrimSpace(in.Notes)
	if notes == "" {
		notes = "(none)"
	}
	return fmt.Sprintf(`Write a short, warm first-person impact story (about 120 words) for a student volunteer.

Volunteer: %s
Opportunity: %s
Organization: %s
Date: %s
Hours: %g
Personal notes: %s

Return only the story text, no title and no markdown.`,
		in.UserName, in.OpportunityTitle, in.OrganizationName, in.Date, in.Hours, notes)
}
