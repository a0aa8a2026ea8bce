package seed

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/david/voluntrack/internal/models"
)

//go:embed data/seed.yaml
var seedYAML embed.FS

// User is a seed account. Password is hashed when the user table is first written.
type User struct {
	models.UserProfile `yaml:",inline"`
	Password           string `yaml:"password"`
}

// Dataset is the bundled static data: the fallback opportunity catalogue plus
// the initial contents of the user, logged-hour and impact-story tables.
type Dataset struct {
	Organizations []models.Organization `yaml:"organizations"`
	Opportunities []models.Opportunity  `yaml:"opportunities"`
	Users         []User                `yaml:"users"`
	LoggedHours   []models.LoggedHour   `yaml:"logged_hours"`
	ImpactStories []models.ImpactStory  `yaml:"impact_stories"`
}

// Load reads the embedded seed.yaml. path is only consulted when the embedded
// copy is unreadable, which happens in local development builds.
func Load(path string) (*Dataset, error) {
	data, err := seedYAML.ReadFile("data/seed.yaml")
	if err != nil {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}

	// Expand environment variables within the YAML content (e.g. ${SEED_USER_PASSWORD})
	expanded := os.ExpandEnv(string(data))

	var ds Dataset
	if err := yaml.Unmarshal([]byte(expanded), &ds); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}
	if err := ds.link(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// link attaches each opportunity's organization and rejects dangling references.
func (d *Dataset) link() error {
	orgs := make(map[string]models.Organization, len(d.Organizations))
	for _, o := range d.Organizations {
		if _, dup := orgs[o.ID]; dup {
			return fmt.Errorf("seed: duplicate organization id %q", o.ID)
		}
		orgs[o.ID] = o
	}
	for i := range d.Opportunities {
		opp := &d.Opportunities[i]
		org, ok := orgs[opp.OrganizationID]
		if !ok {
			return fmt.Errorf("seed: opportunity %s references unknown organization %q", opp.ID, opp.OrganizationID)
		}
		opp.Organization = org
		if opp.SkillsRequired == nil {
			opp.SkillsRequired = []string{}
		}
	}
	return nil
}

// Organization looks up a bundled organization by id.
func (d *Dataset) Organization(id string) (models.Organization, bool) {
	for _, o := range d.Organizations {
		if o.ID == id {
			return o, true
		}
	}
	return models.Organization{}, false
}

// Profiles returns the seed users without their plaintext passwords.
func (d *Dataset) Profiles() []models.UserProfile {
	out := make([]models.UserProfile, 0, len(d.Users))
	for _, u := range d.Users {
		p := u.UserProfile
		if p.SavedOpportunityIDs == nil {
			p.SavedOpportunityIDs = []string{}
		}
		if p.ImpactStories == nil {
			p.ImpactStories = []models.ImpactStory{}
		}
		out = append(out, p)
	}
	return out
}
