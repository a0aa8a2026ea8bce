package views

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/david/voluntrack/internal/models"
	"github.com/david/voluntrack/internal/seed"
)

func seedOpportunities(t *testing.T) []models.Opportunity {
	t.Helper()
	ds, err := seed.Load("")
	require.NoError(t, err)
	return ds.Opportunities
}

func TestFilterSearchTermOnSeed(t *testing.T) {
	got := Filter(seedOpportunities(t), Predicate{SearchTerm: "dog"})
	require.Len(t, got, 1)
	assert.Equal(t, "Weekend Dog Walker", got[0].Title)
}

func TestFilterMatchesOrganizationAndLocation(t *testing.T) {
	opps := seedOpportunities(t)

	byOrg := Filter(opps, Predicate{SearchTerm: "green earth"})
	assert.Equal(t, []string{"opp1", "opp6"}, idsOf(byOrg))

	byLocation := Filter(opps, Predicate{SearchTerm: "CITY HISTORY"})
	assert.Equal(t, []string{"opp7"}, idsOf(byLocation))
}

func TestFilterCategoryPreservesOrder(t *testing.T) {
	opps := seedOpportunities(t)

	got := Filter(opps, Predicate{Category: models.CategoryHomeless})
	assert.Equal(t, []string{"opp2", "opp8"}, idsOf(got))

	got = Filter(opps, Predicate{SearchTerm: "food", Category: models.CategoryHomeless})
	assert.Equal(t, []string{"opp2", "opp8"}, idsOf(got))

	assert.Len(t, Filter(opps, Predicate{}), len(opps))
	assert.Empty(t, Filter(opps, Predicate{SearchTerm: "dog", Category: models.CategoryHealth}))
}

func TestPaginate(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i + 1
	}

	p := Paginate(items, 3, 9)
	assert.Len(t, p.Items, 7)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 19, p.Items[0])
	assert.Equal(t, 25, p.TotalItems)

	p = Paginate(items, 1, 9)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, p.Items)

	for _, page := range []int{0, -1, 4, 100} {
		p = Paginate(items, page, 9)
		assert.Empty(t, p.Items, "page %d", page)
		assert.Equal(t, page, p.Page, "no clamping")
		assert.Equal(t, 3, p.TotalPages)
	}

	empty := Paginate([]int{}, 1, 9)
	assert.Empty(t, empty.Items)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 1, ClampPage(0, 25, 9))
	assert.Equal(t, 3, ClampPage(7, 25, 9))
	assert.Equal(t, 2, ClampPage(2, 25, 9))
	assert.Equal(t, 1, ClampPage(5, 0, 9))
}

func logsFixture() []models.LoggedHour {
	return []models.LoggedHour{
		{UserID: "u1", OpportunityID: "o1", OrganizationName: "Green Earth", Category: models.CategoryEnvironment, Hours: 2, Date: "2024-09-01"},
		{UserID: "u2", OpportunityID: "o2", OrganizationName: "Food Bank", Category: models.CategoryHomeless, Hours: 3, Date: "2024-09-03"},
		{UserID: "u1", OpportunityID: "o3", OrganizationName: "Shelter", Category: models.CategoryAnimals, Hours: 1, Date: "2024-09-02"},
		{UserID: "u3", OpportunityID: "o1", OrganizationName: "Green Earth", Category: models.CategoryEnvironment, Hours: 1, Date: "2024-09-05"},
		{UserID: "u2", OpportunityID: "o4", OrganizationName: "Library", Category: models.CategoryEducation, Hours: 0, Date: "2024-09-04"},
	}
}

func TestSumHoursByCategoryStableTies(t *testing.T) {
	got := SumHoursByCategory(logsFixture())
	// Environment and Homelessness tie at 3; Environment was seen first.
	assert.Equal(t, []CategoryTotal{
		{models.CategoryEnvironment, 3},
		{models.CategoryHomeless, 3},
		{models.CategoryAnimals, 1},
	}, got)
}

func TestSumHoursByOrganization(t *testing.T) {
	logs := logsFixture()
	assert.Equal(t, []OrganizationTotal{
		{"Green Earth", 3},
		{"Food Bank", 3},
		{"Shelter", 1},
	}, SumHoursByOrganization(logs, 0))

	assert.Equal(t, []OrganizationTotal{{"Green Earth", 3}, {"Food Bank", 3}}, SumHoursByOrganization(logs, 2))

	var many []models.LoggedHour
	for i := 0; i < 15; i++ {
		many = append(many, models.LoggedHour{OrganizationName: fmt.Sprintf("Org %02d", i), Hours: float64(i + 1)})
	}
	top := SumHoursByOrganization(many, DefaultTopOrganizations)
	require.Len(t, top, 10)
	assert.Equal(t, "Org 14", top[0].Name)
	assert.Equal(t, "Org 05", top[9].Name)
}

func TestCountsAndTotals(t *testing.T) {
	logs := logsFixture()
	assert.Equal(t, 7.0, TotalHours(logs))
	assert.Equal(t, 3, CountDistinctUsers(logs))
	assert.Equal(t, 4, CountDistinctOpportunities(logs))
	assert.Zero(t, CountDistinctUsers(nil))
}

func TestGoalProgress(t *testing.T) {
	assert.Equal(t, 12.5, GoalProgress(1250, 10000))
	assert.Equal(t, 100.0, GoalProgress(20000, 10000))
	assert.Equal(t, 0.0, GoalProgress(5, 0))
}

func TestBuildImpactSummaries(t *testing.T) {
	logs := logsFixture()

	c := BuildCollectiveImpact(logs, 10000)
	assert.Equal(t, 7.0, c.TotalHours)
	assert.Equal(t, 3, c.Volunteers)
	assert.Equal(t, 5, c.Activities)
	assert.InDelta(t, 0.07, c.GoalProgress, 1e-9)

	ind := BuildIndividualImpact(logs[:3])
	assert.Equal(t, 6.0, ind.TotalHours)
	assert.Equal(t, 3, ind.Opportunities)
	require.Len(t, ind.Recent, 3)
	assert.Equal(t, "2024-09-03", ind.Recent[0].Date)
	assert.Equal(t, "2024-09-01", logs[0].Date, "input order untouched")
}

func TestParseEventDate(t *testing.T) {
	tests := []struct {
		in   string
		want string // YYYY-MM-DD, empty for no date
	}{
		{"2024-09-15, 9:00 AM - 1:00 PM", "2024-09-15"},
		{"October 26, 2025", "2025-10-26"},
		{"June 10-12, 2025", "2025-06-10"},
		{"Sat, Sept 6 2025, 8am", "2025-09-06"},
		{"14 February 2026", "2026-02-14"},
		{"3/7/2025", "2025-03-07"},
		{"Ongoing, Mon-Fri", ""},
		{"Flexible shifts in 2025-01-01", ""},
		{"Varies", ""},
		{"To be confirmed", ""},
		{"Every Wednesday, 2:00 PM - 4:00 PM", ""},
		{"1985-05-05", ""},
		{"2050-01-01", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseEventDate(tt.in)
			if tt.want == "" {
				assert.False(t, ok, "got %v", got)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
		})
	}
}

func TestUpcomingEvents(t *testing.T) {
	now := time.Date(2025, 9, 10, 15, 0, 0, 0, time.UTC)
	opps := []models.Opportunity{
		{ID: "late", Dates: "October 2, 2025"},
		{ID: "past", Dates: "2025-09-01"},
		{ID: "undated", Dates: "Ongoing"},
		{ID: "today", Dates: "2025-09-10, 9am"},
		{ID: "soon", Dates: "September 20, 2025"},
	}

	groups := UpcomingEvents(opps, now)
	require.Len(t, groups, 2)
	assert.Equal(t, "September 2025", groups[0].Month)
	require.Len(t, groups[0].Events, 2)
	assert.Equal(t, "today", groups[0].Events[0].Opportunity.ID)
	assert.Equal(t, "soon", groups[0].Events[1].Opportunity.ID)
	assert.Equal(t, "October 2025", groups[1].Month)
	assert.Equal(t, "late", groups[1].Events[0].Opportunity.ID)
}

func idsOf(opps []models.Opportunity) []string {
	out := make([]string, len(opps))
	for i, o := range opps {
		out[i] = o.ID
	}
	return out
}
