package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/david/voluntrack/internal/models"
)

var batchTime = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func TestNormalizeDefaults(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	reg := NewOrgRegistry(nil)

	opp := n.Normalize(RawRecord{Title: ptr("Beach Cleanup")}, reg, batchTime)

	assert.True(t, strings.HasPrefix(opp.ID, "ai-1741944600000-"), opp.ID)
	assert.Len(t, opp.ID, len("ai-1741944600000-")+9)
	assert.Equal(t, "Beach Cleanup", opp.Title)
	assert.Equal(t, defaultDescription, opp.Description)
	assert.Equal(t, defaultDates, opp.Dates)
	assert.Equal(t, defaultLocation, opp.Location)
	assert.Equal(t, defaultAge, opp.AgeRequirement)
	assert.Equal(t, []string{}, opp.SkillsRequired)
	assert.False(t, opp.RemoteOrOnline)
	assert.Equal(t, models.TimeFlexible, opp.TimeCommitment)
	assert.Equal(t, "", opp.ApplicationURL)
	assert.Equal(t, batchTime, opp.PublishedDate)
	assert.Equal(t, unknownOrgID, opp.OrganizationID)

	org, ok := reg.Lookup(opp.OrganizationID)
	require.True(t, ok)
	assert.Equal(t, org, opp.Organization)
}

func TestNormalizeCategoryFromTitleWhenMissing(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	reg := NewOrgRegistry(nil)

	assert.Equal(t, models.CategoryAnimals,
		n.Normalize(RawRecord{Title: ptr("Animal Rescue Night")}, reg, batchTime).Category)
	assert.Equal(t, models.CategoryOther,
		n.Normalize(RawRecord{Title: ptr("Saturday Morning Shift")}, reg, batchTime).Category)
	assert.Equal(t, models.CategoryHealth,
		n.Normalize(RawRecord{Title: ptr("Animal Rescue Night"), Category: ptr("Health")}, reg, batchTime).Category)
}

func TestNormalizeApplicationLink(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	opp := n.Normalize(RawRecord{
		Title:       ptr("Disaster Action Team"),
		SearchQuery: ptr("site:redcross.org volunteer 2024"),
	}, NewOrgRegistry(nil), batchTime)

	assert.Equal(t, "https://www.google.com/search?q=site%3Aredcross.org%20volunteer%202024", opp.ApplicationURL)
}

func TestSearchLinkEncodesLikeURIComponent(t *testing.T) {
	assert.Equal(t, "https://www.google.com/search?q=kids'%20(ages%208-12)%20%26%20parents!",
		SearchLink("kids' (ages 8-12) & parents!"))
	assert.Equal(t, "https://www.google.com/search?q=c%2B%2B%20mentor", SearchLink("c++ mentor"))
	assert.Equal(t, "", SearchLink("   "))
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	reg := NewOrgRegistry(testSeedOrgs)

	raw := RawRecord{
		Title:            ptr("Food Pantry Helper"),
		OrganizationName: ptr("Community Food Bank"),
		Description:      ptr("Sort donations."),
		Category:         ptr("hunger relief"),
		TimeCommitment:   ptr("2-4 hours"),
		SkillsRequired:   []string{"Lifting", "lifting", " Teamwork "},
		RemoteOrOnline:   ptr(false),
		SearchQuery:      ptr("community food bank volunteer"),
	}

	first := n.Normalize(raw, reg, batchTime)
	second := n.Normalize(raw, reg, batchTime)
	assert.True(t, strings.HasPrefix(first.ID, "ai-"))
	assert.NotEqual(t, first.ID, second.ID)
	second.ID = first.ID
	assert.Equal(t, first, second)

	raw.ID = ptr("gen-1")
	assert.Equal(t, n.Normalize(raw, reg, batchTime), n.Normalize(raw, reg, batchTime))

	assert.Equal(t, "org2", first.OrganizationID)
	assert.Equal(t, []string{"Lifting", "Teamwork"}, first.SkillsRequired)
	assert.Equal(t, models.CategoryHomeless, first.Category)
	assert.Equal(t, models.TimeTwoToFourHours, first.TimeCommitment)
}

func TestNormalizeMissingTitleGetsPlaceholder(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	opp := n.Normalize(RawRecord{ID: ptr("x1"), Title: ptr("   ")}, NewOrgRegistry(nil), batchTime)
	assert.Equal(t, "x1", opp.ID)
	assert.Equal(t, untitledTitle, opp.Title)
}

func TestNormalizeStripsMarkup(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	opp := n.Normalize(RawRecord{
		Title:       ptr("Reading <b>Buddies</b>"),
		Description: ptr("<p>Help <b>kids</b> read &amp; write</p>"),
	}, NewOrgRegistry(nil), batchTime)

	assert.Equal(t, "Reading Buddies", opp.Title)
	assert.Equal(t, "Help kids read & write", opp.Description)
}

func TestDecodeRawRecordIgnoresWrongTypes(t *testing.T) {
	raw := decodeRawRecord(map[string]any{
		"id":             float64(7),
		"title":          "Park Ranger Aide",
		"remoteOrOnline": "yes",
		"skillsRequired": []any{"Hiking", 3, nil, "First aid"},
		"category":       []any{"Environment"},
	})

	assert.Nil(t, raw.ID)
	assert.Nil(t, raw.RemoteOrOnline)
	assert.Nil(t, raw.Category)
	require.NotNil(t, raw.Title)
	assert.Equal(t, []string{"Hiking", "First aid"}, raw.SkillsRequired)

	opp := NewNormalizer(nil).Normalize(raw, NewOrgRegistry(nil), batchTime)
	assert.Equal(t, models.CategoryEnvironment, opp.Category, "classified from the title")
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", TruncateText("short", 10))
	assert.Equal(t, "abcdefg...", TruncateText("abcdefghijklmnop", 10))
	assert.Equal(t, "héllo", TruncateText("héllo", 5))
}
