package ingest

import (
	"testing"

	"github.com/david/voluntrack/internal/models"
)

func TestClassifyCategory(t *testing.T) {
	tests := []struct {
		label string
		want  models.Category
	}{
		{"Environment", models.CategoryEnvironment},
		{"  arts & culture ", models.CategoryArtsCulture},
		{"pr, fundraising, events", models.CategoryEvents},
		{"Animal Rescue Night", models.CategoryAnimals},
		{"Museum docent", models.CategoryArtsCulture},
		{"Youth soccer coach", models.CategoryChildren},
		{"Civic engagement", models.CategoryCommunity},
		{"After-school tutoring", models.CategoryEducation},
		{"Nature trail cleanup", models.CategoryEnvironment},
		{"Hospital greeter", models.CategoryHealth},
		{"Food Bank shift", models.CategoryHomeless},
		{"Elderly companionship", models.CategorySeniors},
		{"Digital inclusion", models.CategoryTechnology},
		{"Family support line", models.CategoryCaregiving},
		{"Board member", models.CategoryLeadership},
		{"Festival crew", models.CategoryEvents},
		{"", models.CategoryOther},
		{"Something else entirely", models.CategoryOther},
		// Earlier rules win: "animal" precedes "community".
		{"Community animal clinic", models.CategoryAnimals},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := ClassifyCategory(tt.label); got != tt.want {
				t.Errorf("ClassifyCategory(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestClassifyTimeCommitment(t *testing.T) {
	tests := []struct {
		label string
		want  models.TimeCommitment
	}{
		{"", models.TimeFlexible},
		{"   ", models.TimeFlexible},
		{"ONGOING WEEKLY", models.TimeOngoingWeekly},
		{"Less than 2 hours", models.TimeLessThanTwoHours},
		{"1-2 hours", models.TimeLessThanTwoHours},
		{"2-4 hours/week", models.TimeTwoToFourHours},
		{"3-4 hours", models.TimeTwoToFourHours},
		{"Full-day", models.TimeFullDay},
		{"all day saturday", models.TimeFullDay},
		{"Twice weekly", models.TimeOngoingWeekly},
		{"monthly meetup", models.TimeOngoingMonthly},
		{"One-time event", models.TimeOneTimeEvent},
		{"a single event", models.TimeOneTimeEvent},
		{"whenever", models.TimeFlexible},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := ClassifyTimeCommitment(tt.label); got != tt.want {
				t.Errorf("ClassifyTimeCommitment(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}
