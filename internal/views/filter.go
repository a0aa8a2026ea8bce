package views

import (
	"strings"

	"github.com/david/voluntrack/internal/models"
)

// Predicate is the local filter applied over the current collection.
// Zero values match everything.
type Predicate struct {
	SearchTerm string
	Category   models.Category
}

// Filter returns the opportunities matching p, preserving input order.
func Filter(opps []models.Opportunity, p Predicate) []models.Opportunity {
	term := strings.ToLower(strings.TrimSpace(p.SearchTerm))

	out := make([]models.Opportunity, 0, len(opps))
	for _, opp := range opps {
		if p.Category != "" && opp.Category != p.Category {
			continue
		}
		if term != "" && !matchesTerm(opp, term) {
			continue
		}
		out = append(out, opp)
	}
	return out
}

func matchesTerm(opp models.Opportunity, term string) bool {
	for _, field := range []string{opp.Title, opp.Description, opp.Organization.Name, opp.Location} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
