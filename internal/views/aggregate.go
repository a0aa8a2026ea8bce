package views

import (
	"sort"

	"github.com/david/voluntrack/internal/models"
)

// DefaultTopOrganizations is how many organizations the collective dashboard ranks.
const DefaultTopOrganizations = 10

type CategoryTotal struct {
	Category models.Category `json:"name"`
	Hours    float64         `json:"value"`
}

type OrganizationTotal struct {
	Name  string  `json:"name"`
	Hours float64 `json:"value"`
}

func TotalHours(logs []models.LoggedHour) float64 {
	var sum float64
	for _, l := range logs {
		sum += l.Hours
	}
	return sum
}

// SumHoursByCategory totals hours per category, largest first. Categories
// with equal sums keep the order in which they were first seen; zero sums are
// dropped. Logs without a category count as Other.
func SumHoursByCategory(logs []models.LoggedHour) []CategoryTotal {
	keys, sums := sumBy(logs, func(l models.LoggedHour) string {
		if l.Category == "" {
			return string(models.CategoryOther)
		}
		return string(l.Category)
	})

	out := make([]CategoryTotal, 0, len(keys))
	for _, k := range keys {
		if sums[k] > 0 {
			out = append(out, CategoryTotal{Category: models.Category(k), Hours: sums[k]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Hours > out[j].Hours })
	return out
}

// SumHoursByOrganization totals hours per organization name, largest first,
// keeping at most topN entries (all of them when topN <= 0).
func SumHoursByOrganization(logs []models.LoggedHour, topN int) []OrganizationTotal {
	keys, sums := sumBy(logs, func(l models.LoggedHour) string { return l.OrganizationName })

	out := make([]OrganizationTotal, 0, len(keys))
	for _, k := range keys {
		if sums[k] > 0 {
			out = append(out, OrganizationTotal{Name: k, Hours: sums[k]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Hours > out[j].Hours })
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// sumBy returns keys in first-seen order alongside their sums.
func sumBy(logs []models.LoggedHour, key func(models.LoggedHour) string) ([]string, map[string]float64) {
	var keys []string
	sums := make(map[string]float64)
	for _, l := range logs {
		k := key(l)
		if _, ok := sums[k]; !ok {
			keys = append(keys, k)
		}
		sums[k] += l.Hours
	}
	return keys, sums
}

func CountDistinctUsers(logs []models.LoggedHour) int {
	return countDistinct(logs, func(l models.LoggedHour) string { return l.UserID })
}

func CountDistinctOpportunities(logs []models.LoggedHour) int {
	return countDistinct(logs, func(l models.LoggedHour) string { return l.OpportunityID })
}

func countDistinct(logs []models.LoggedHour, key func(models.LoggedHour) string) int {
	seen := make(map[string]struct{}, len(logs))
	for _, l := range logs {
		seen[key(l)] = struct{}{}
	}
	return len(seen)
}

// GoalProgress is total as a percentage of goal, capped at 100.
func GoalProgress(total, goal float64) float64 {
	if goal <= 0 {
		return 0
	}
	return min(total/goal*100, 100)
}

// SortByDateDesc orders logs newest first by date, then by log time.
func SortByDateDesc(logs []models.LoggedHour) {
	sort.SliceStable(logs, func(i, j int) bool {
		if logs[i].Date != logs[j].Date {
			return logs[i].Date > logs[j].Date
		}
		return logs[i].LoggedAt.After(logs[j].LoggedAt)
	})
}

// RecentActivity returns up to n logs, newest first, without reordering logs.
func RecentActivity(logs []models.LoggedHour, n int) []models.LoggedHour {
	out := make([]models.LoggedHour, len(logs))
	copy(out, logs)
	SortByDateDesc(out)
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

type CollectiveImpact struct {
	TotalHours       float64             `json:"totalHours"`
	Volunteers       int                 `json:"volunteers"`
	Opportunities    int                 `json:"opportunities"`
	Activities       int                 `json:"activities"`
	GoalHours        float64             `json:"goalHours"`
	GoalProgress     float64             `json:"goalProgress"`
	ByCategory       []CategoryTotal     `json:"byCategory"`
	TopOrganizations []OrganizationTotal `json:"topOrganizations"`
}

func BuildCollectiveImpact(logs []models.LoggedHour, goal float64) CollectiveImpact {
	total := TotalHours(logs)
	return CollectiveImpact{
		TotalHours:       total,
		Volunteers:       CountDistinctUsers(logs),
		Opportunities:    CountDistinctOpportunities(logs),
		Activities:       len(logs),
		GoalHours:        goal,
		GoalProgress:     GoalProgress(total, goal),
		ByCategory:       SumHoursByCategory(logs),
		TopOrganizations: SumHoursByOrganization(logs, DefaultTopOrganizations),
	}
}

type IndividualImpact struct {
	TotalHours     float64             `json:"totalHours"`
	Activities     int                 `json:"activities"`
	Opportunities  int                 `json:"opportunities"`
	ByCategory     []CategoryTotal     `json:"byCategory"`
	ByOrganization []OrganizationTotal `json:"byOrganization"`
	Recent         []models.LoggedHour `json:"recent"`
}

// RecentActivityLimit is how many logs the personal dashboard lists.
const RecentActivityLimit = 5

// BuildIndividualImpact summarizes one user's logs.
func BuildIndividualImpact(logs []models.LoggedHour) IndividualImpact {
	return IndividualImpact{
		TotalHours:     TotalHours(logs),
		Activities:     len(logs),
		Opportunities:  CountDistinctOpportunities(logs),
		ByCategory:     SumHoursByCategory(logs),
		ByOrganization: SumHoursByOrganization(logs, 0),
		Recent:         RecentActivity(logs, RecentActivityLimit),
	}
}
