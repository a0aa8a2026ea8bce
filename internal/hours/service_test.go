package hours

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/david/voluntrack/internal/ai"
	"github.com/david/voluntrack/internal/auth"
	"github.com/david/voluntrack/internal/db"
	"github.com/david/voluntrack/internal/models"
	"github.com/david/voluntrack/internal/seed"
	"github.com/david/voluntrack/internal/validation"
)

var errNoSuchOpportunity = errors.New("no such opportunity")

type opportunityMap map[string]models.Opportunity

func (m opportunityMap) Opportunity(id string) (models.Opportunity, error) {
	opp, ok := m[id]
	if !ok {
		return models.Opportunity{}, errNoSuchOpportunity
	}
	return opp, nil
}

func newTestService(t *testing.T, gen ai.Generator) *Service {
	t.Helper()
	// Seed accounts without passwords so no bcrypt work is done.
	t.Setenv("SEED_USER_PASSWORD", "")
	ds, err := seed.Load("")
	require.NoError(t, err)

	ctx := context.Background()
	kv := db.NewMemoryStore()
	users := auth.NewService(kv, zap.NewNop())
	require.NoError(t, users.Seed(ctx, ds.Users))

	opps := opportunityMap{}
	for _, opp := range ds.Opportunities {
		opps[opp.ID] = opp
	}

	s := NewService(kv, opps, users, gen, zap.NewNop())
	s.now = func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) }
	require.NoError(t, s.Seed(ctx, ds.LoggedHours, ds.ImpactStories))
	return s
}

func TestAllSortedNewestFirst(t *testing.T) {
	s := newTestService(t, nil)

	logs, err := s.All(context.Background())
	require.NoError(t, err)
	var ids []string
	for _, l := range logs {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []string{"log4", "log2", "log3", "log1"}, ids)

	mine, err := s.ForUser(context.Background(), "user2")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "log3", mine[0].ID)
}

func TestAddSnapshotsOpportunity(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	entry, err := s.Add(ctx, "user2", LogInput{OpportunityID: "opp4", Date: "2025-03-01", Hours: 2.5, Notes: " fun "})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(entry.ID, "log-"))
	assert.Equal(t, "Weekend Dog Walker", entry.OpportunityTitle)
	assert.Equal(t, "Animal Friends Shelter", entry.OrganizationName)
	assert.Equal(t, models.CategoryAnimals, entry.Category)
	assert.Equal(t, models.HourSelfCertified, entry.Status)
	assert.Equal(t, "fun", entry.Notes)
	assert.Equal(t, s.now().UTC(), entry.LoggedAt)

	mine, err := s.ForUser(ctx, "user2")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, entry.ID, mine[0].ID)
}

func TestAddRejectsInvalidInput(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    LogInput
		field string
	}{
		{"zero hours", LogInput{OpportunityID: "opp1", Date: "2025-03-01", Hours: 0}, "hours"},
		{"too many hours", LogInput{OpportunityID: "opp1", Date: "2025-03-01", Hours: 25}, "hours"},
		{"bad date", LogInput{OpportunityID: "opp1", Date: "03/01/2025", Hours: 1}, "date"},
		{"no opportunity", LogInput{Date: "2025-03-01", Hours: 1}, "opportunityId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Add(ctx, "user1", tt.in)
			require.Error(t, err)
			assert.Contains(t, validation.Fields(err), tt.field)
		})
	}

	_, err := s.Add(ctx, "user1", LogInput{OpportunityID: "opp-gone", Date: "2025-03-01", Hours: 1})
	assert.ErrorIs(t, err, errNoSuchOpportunity)
}

func TestGenerateStory(t *testing.T) {
	var prompt string
	gen := ai.GeneratorFunc(func(_ context.Context, p string) (string, error) {
		prompt = p
		return "```\nI planted trees and loved it.\n```", nil
	})
	s := newTestService(t, gen)
	ctx := context.Background()

	story, err := s.GenerateStory(ctx, "user1", StoryRequest{LogID: "log1"})
	require.NoError(t, err)
	assert.Equal(t, "I planted trees and loved it.", story)
	assert.Contains(t, prompt, "Alice Wonderland")
	assert.Contains(t, prompt, "Planted 10 saplings")

	_, err = s.GenerateStory(ctx, "user2", StoryRequest{LogID: "log1"})
	assert.ErrorIs(t, err, ErrLogNotFound)
}

func TestGenerateStoryDisabled(t *testing.T) {
	s := newTestService(t, nil)
	_, err := s.GenerateStory(context.Background(), "user1", StoryRequest{LogID: "log1"})
	assert.ErrorIs(t, err, ErrGenerationDisabled)
}

func TestSaveStory(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	story, err := s.SaveStory(ctx, "user2", StoryInput{OpportunityTitle: "Weekend Dog Walker", Story: "  Dogs!  "})
	require.NoError(t, err)
	assert.Equal(t, "Bob The Builder", story.UserName)
	assert.Equal(t, "Dogs!", story.Story)

	stories, err := s.Stories(ctx)
	require.NoError(t, err)
	require.Len(t, stories, 3)
	assert.Equal(t, story.ID, stories[0].ID)

	profile, err := s.users.Profile(ctx, "user2")
	require.NoError(t, err)
	require.Len(t, profile.ImpactStories, 1)
	assert.Equal(t, story.ID, profile.ImpactStories[0].ID)

	_, err = s.SaveStory(ctx, "user2", StoryInput{OpportunityTitle: "x"})
	assert.Contains(t, validation.Fields(err), "story")
}
