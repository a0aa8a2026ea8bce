package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/david/voluntrack/internal/models"
)

func TestLoadLinksOrganizations(t *testing.T) {
	ds, err := Load("")
	require.NoError(t, err)

	assert.Len(t, ds.Organizations, 5)
	assert.Len(t, ds.Opportunities, 9)
	for _, opp := range ds.Opportunities {
		assert.Equal(t, opp.OrganizationID, opp.Organization.ID, "opportunity %s", opp.ID)
		assert.True(t, opp.Category.Valid(), "opportunity %s category %q", opp.ID, opp.Category)
		assert.True(t, opp.TimeCommitment.Valid(), "opportunity %s time commitment %q", opp.ID, opp.TimeCommitment)
		assert.False(t, opp.PublishedDate.IsZero(), "opportunity %s", opp.ID)
	}
}

func TestLoadExpandsPassword(t *testing.T) {
	t.Setenv("SEED_USER_PASSWORD", "s3cret-pass")

	ds, err := Load("")
	require.NoError(t, err)
	require.NotEmpty(t, ds.Users)
	for _, u := range ds.Users {
		assert.Equal(t, "s3cret-pass", u.Password)
	}
	assert.Equal(t, "alice@example.com", ds.Profiles()[0].Email)
	assert.Empty(t, ds.Profiles()[0].PasswordHash)
}

func TestDatasetLinkRejectsDanglingOrganization(t *testing.T) {
	ds := &Dataset{
		Organizations: []models.Organization{{ID: "org1", Name: "Green Earth Initiative"}},
		Opportunities: []models.Opportunity{{ID: "opp-x", Title: "Orphan", OrganizationID: "missing"}},
	}
	assert.Error(t, ds.link())

	ds.Opportunities[0].OrganizationID = "org1"
	require.NoError(t, ds.link())
	assert.Equal(t, "Green Earth Initiative", ds.Opportunities[0].Organization.Name)
	assert.NotNil(t, ds.Opportunities[0].SkillsRequired)
}
