package ingest

import (
	"regexp"
	"strings"

	"github.com/david/voluntrack/internal/models"
)

const (
	unknownOrgID   = "unknown-organization"
	unknownOrgName = "Unknown Organization"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonSlugChars  = regexp.MustCompile(`[^\w-]+`)
)

// Slugify derives the registry key for an organization name: lowercased,
// whitespace runs replaced by a hyphen, everything but word characters and
// hyphens removed.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = whitespaceRun.ReplaceAllString(s, "-")
	return nonSlugChars.ReplaceAllString(s, "")
}

// OrgRegistry deduplicates organizations by normalized name for one ingestion
// batch. It is not safe for concurrent use; each batch owns its own registry.
type OrgRegistry struct {
	index map[string]int
	orgs  []models.Organization
}

// NewOrgRegistry returns a registry preloaded with the bundled organizations.
// Seed records are reachable both by their id and by the slug of their name.
func NewOrgRegistry(seed []models.Organization) *OrgRegistry {
	r := &OrgRegistry{index: make(map[string]int, len(seed)*2)}
	for _, org := range seed {
		r.insert(org, org.ID, Slugify(org.Name))
	}
	return r
}

func (r *OrgRegistry) insert(org models.Organization, keys ...string) models.Organization {
	if i, ok := r.index[org.ID]; ok {
		return r.orgs[i]
	}
	r.orgs = append(r.orgs, org)
	i := len(r.orgs) - 1
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, taken := r.index[k]; !taken {
			r.index[k] = i
		}
	}
	return org
}

// Resolve returns the organization whose normalized name matches rawName,
// creating it on first reference. Names that normalize to nothing resolve to
// a shared "Unknown Organization" record.
func (r *OrgRegistry) Resolve(rawName string) models.Organization {
	name := normalizeSpace(rawName)
	key := Slugify(name)
	if key == "" {
		key = unknownOrgID
		if name == "" {
			name = unknownOrgName
		}
	}
	if i, ok := r.index[key]; ok {
		return r.orgs[i]
	}
	return r.insert(models.Organization{ID: key, Name: name}, key)
}

// Lookup finds an organization by id (or by the slug of a seed organization's name).
func (r *OrgRegistry) Lookup(id string) (models.Organization, bool) {
	i, ok := r.index[id]
	if !ok {
		return models.Organization{}, false
	}
	return r.orgs[i], true
}

// Snapshot returns every organization in insertion order.
func (r *OrgRegistry) Snapshot() []models.Organization {
	out := make([]models.Organization, len(r.orgs))
	copy(out, r.orgs)
	return out
}

func (r *OrgRegistry) Len() int { return len(r.orgs) }
