package ingest

import (
	"strings"

	"github.com/david/voluntrack/internal/models"
)

type categoryRule struct {
	keywords []string
	category models.Category
}

// Evaluated top to bottom; the first rule with a matching keyword wins.
var categoryRules = []categoryRule{
	{[]string{"animal"}, models.CategoryAnimals},
	{[]string{"art", "culture", "museum"}, models.CategoryArtsCulture},
	{[]string{"child", "youth", "mentor"}, models.CategoryChildren},
	{[]string{"community", "civic"}, models.CategoryCommunity},
	{[]string{"education", "tutor", "school"}, models.CategoryEducation},
	{[]string{"environment", "nature", "park", "conservation"}, models.CategoryEnvironment},
	{[]string{"health", "medical", "hospital", "wellness"}, models.CategoryHealth},
	{[]string{"homeless", "housing", "food bank", "hunger"}, models.CategoryHomeless},
	{[]string{"senior", "elderly"}, models.CategorySeniors},
	{[]string{"tech", "digital"}, models.CategoryTechnology},
	{[]string{"caregiving", "support"}, models.CategoryCaregiving},
	{[]string{"board", "leader", "admin"}, models.CategoryLeadership},
	{[]string{"event", "festival"}, models.CategoryEvents},
}

type timeRule struct {
	keywords []string
	value    models.TimeCommitment
}

var timeCommitmentRules = []timeRule{
	{[]string{"less than 2", "1-2 hour"}, models.TimeLessThanTwoHours},
	{[]string{"2-4 hour", "3-4 hour"}, models.TimeTwoToFourHours},
	{[]string{"full day", "full-day", "all day"}, models.TimeFullDay},
	{[]string{"weekly"}, models.TimeOngoingWeekly},
	{[]string{"monthly"}, models.TimeOngoingMonthly},
	{[]string{"one-time", "single event"}, models.TimeOneTimeEvent},
}

// ClassifyCategory maps a free-text label to a category. It never fails:
// unmatched labels, including the empty string, classify as Other.
func ClassifyCategory(label string) models.Category {
	label = strings.TrimSpace(label)
	for _, c := range models.AllCategories {
		if strings.EqualFold(label, string(c)) {
			return c
		}
	}

	lower := strings.ToLower(label)
	for _, rule := range categoryRules {
		if containsAny(lower, rule.keywords) {
			return rule.category
		}
	}
	return models.CategoryOther
}

// ClassifyTimeCommitment maps a free-text label to a time commitment, defaulting to Flexible.
func ClassifyTimeCommitment(label string) models.TimeCommitment {
	label = strings.TrimSpace(label)
	if label == "" {
		return models.TimeFlexible
	}
	for _, tc := range models.AllTimeCommitments {
		if strings.EqualFold(label, string(tc)) {
			return tc
		}
	}

	lower := strings.ToLower(label)
	for _, rule := range timeCommitmentRules {
		if containsAny(lower, rule.keywords) {
			return rule.value
		}
	}
	return models.TimeFlexible
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
