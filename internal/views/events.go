package views

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/david/voluntrack/internal/models"
)

var undatedMarkers = []string{"ongoing", "flexible", "varies", "to be confirmed"}

const monthNames = `January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec`

var (
	isoDate = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	usDate  = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	// "June 10, 2025", "June 10-12, 2025", "Sat, June 10 2025"
	monthDayYear = regexp.MustCompile(`(?i)\b(` + monthNames + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:\s*-\s*\d{1,2})?,?\s+(\d{4})\b`)
	// "10 June 2025"
	dayMonthYear = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(` + monthNames + `)\.?,?\s+(\d{4})\b`)
)

// ParseEventDate makes a best-effort guess at the start date described by a
// free-text dates field. Descriptors such as "Ongoing" or "Varies" have no
// date, and only years between 1991 and 2049 are accepted.
func ParseEventDate(dates string) (time.Time, bool) {
	lower := strings.ToLower(dates)
	for _, m := range undatedMarkers {
		if strings.Contains(lower, m) {
			return time.Time{}, false
		}
	}

	t, ok := parseFirstDate(dates)
	if !ok || t.Year() <= 1990 || t.Year() >= 2050 {
		return time.Time{}, false
	}
	return t, true
}

func parseFirstDate(text string) (time.Time, bool) {
	if m := isoDate.FindStringSubmatch(text); m != nil {
		if t, err := time.Parse("2006-01-02", m[0]); err == nil {
			return t, true
		}
	}
	if m := usDate.FindStringSubmatch(text); m != nil {
		if t, err := time.Parse("1/2/2006", fmt.Sprintf("%s/%s/%s", m[1], m[2], m[3])); err == nil {
			return t, true
		}
	}
	if m := monthDayYear.FindStringSubmatch(text); m != nil {
		if t, ok := parseMonthDay(m[1], m[2], m[3]); ok {
			return t, true
		}
	}
	if m := dayMonthYear.FindStringSubmatch(text); m != nil {
		if t, ok := parseMonthDay(m[2], m[1], m[3]); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseMonthDay(month, day, year string) (time.Time, bool) {
	month = strings.ToLower(month)
	if month == "sept" {
		month = "sep"
	}
	s := fmt.Sprintf("%s %s %s", month, day, year)
	for _, layout := range []string{"January 2 2006", "Jan 2 2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type Event struct {
	Opportunity models.Opportunity `json:"opportunity"`
	Date        time.Time          `json:"date"`
}

type EventGroup struct {
	Month  string  `json:"month"` // e.g. "September 2025"
	Events []Event `json:"events"`
}

// UpcomingEvents lists dated opportunities from the day before now onwards,
// soonest first, grouped by month.
func UpcomingEvents(opps []models.Opportunity, now time.Time) []EventGroup {
	cutoff := now.AddDate(0, 0, -1)

	var events []Event
	for _, opp := range opps {
		d, ok := ParseEventDate(opp.Dates)
		if !ok || d.Before(cutoff) {
			continue
		}
		events = append(events, Event{Opportunity: opp, Date: d})
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })

	var groups []EventGroup
	for _, ev := range events {
		month := ev.Date.Format("January 2006")
		if n := len(groups); n > 0 && groups[n-1].Month == month {
			groups[n-1].Events = append(groups[n-1].Events, ev)
			continue
		}
		groups = append(groups, EventGroup{Month: month, Events: []Event{ev}})
	}
	return groups
}
