// Package hours records volunteering sessions and the impact stories written about them.
package hours

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/david/voluntrack/internal/ai"
	"github.com/david/voluntrack/internal/auth"
	"github.com/david/voluntrack/internal/db"
	"github.com/david/voluntrack/internal/metrics"
	"github.com/david/voluntrack/internal/models"
	"github.com/david/voluntrack/internal/validation"
	"github.com/david/voluntrack/internal/views"
)

const (
	LoggedHoursKey   = "voluntrack_loggedHours"
	ImpactStoriesKey = "voluntrack_impactStories"
)

var (
	ErrLogNotFound        = errors.New("logged hour not found")
	ErrGenerationDisabled = errors.New("story generation is not configured")
)

// OpportunityLookup resolves an opportunity in the current collection.
type OpportunityLookup interface {
	Opportunity(id string) (models.Opportunity, error)
}

type LogInput struct {
	OpportunityID string  `json:"opportunityId" validate:"required"`
	Date          string  `json:"date" validate:"required,datetime=2006-01-02"`
	Hours         float64 `json:"hours" validate:"gt=0,lte=24"`
	Notes         string  `json:"notes" validate:"max=2000"`
}

type StoryRequest struct {
	LogID string `json:"logId" validate:"required"`
	Notes string `json:"notes" validate:"max=2000"`
}

type StoryInput struct {
	OpportunityTitle string `json:"opportunityTitle" validate:"required,max=200"`
	Story            string `json:"story" validate:"required,max=5000"`
	ImageURL         string `json:"imageUrl" validate:"omitempty,http_url"`
}

type Service struct {
	kv     db.KV
	opps   OpportunityLookup
	users  *auth.Service
	gen    ai.Generator
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the hour log. gen may be nil, in which case story
// generation reports ErrGenerationDisabled.
func NewService(kv db.KV, opps OpportunityLookup, users *auth.Service, gen ai.Generator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{kv: kv, opps: opps, users: users, gen: gen, logger: logger, now: time.Now}
}

// Seed writes the bundled logs and stories on first run.
func (s *Service) Seed(ctx context.Context, logs []models.LoggedHour, stories []models.ImpactStory) error {
	if logs == nil {
		logs = []models.LoggedHour{}
	}
	if stories == nil {
		stories = []models.ImpactStory{}
	}
	if _, err := db.SeedJSON(ctx, s.kv, LoggedHoursKey, logs); err != nil {
		return err
	}
	_, err := db.SeedJSON(ctx, s.kv, ImpactStoriesKey, stories)
	return err
}

// Add logs a self-certified session against an opportunity in the current
// collection. Title, organization and category are copied so the log survives
// the opportunity being replaced by a later batch.
func (s *Service) Add(ctx context.Context, userID string, in LogInput) (models.LoggedHour, error) {
	in.OpportunityID = strings.TrimSpace(in.OpportunityID)
	in.Notes = strings.TrimSpace(in.Notes)
	if err := validation.Struct(in); err != nil {
		return models.LoggedHour{}, err
	}

	opp, err := s.opps.Opportunity(in.OpportunityID)
	if err != nil {
		return models.LoggedHour{}, err
	}

	entry := models.LoggedHour{
		ID:               "log-" + uuid.NewString(),
		UserID:           userID,
		OpportunityID:    opp.ID,
		OpportunityTitle: opp.Title,
		OrganizationName: opp.Organization.Name,
		Category:         opp.Category,
		Date:             in.Date,
		Hours:            in.Hours,
		Notes:            in.Notes,
		Status:           models.HourSelfCertified,
		LoggedAt:         s.now().UTC(),
	}

	err = db.UpdateJSON(ctx, s.kv, LoggedHoursKey, func(logs *[]models.LoggedHour, _ bool) error {
		*logs = append(*logs, entry)
		return nil
	})
	if err != nil {
		return models.LoggedHour{}, err
	}

	metrics.HoursLoggedTotal.Add(entry.Hours)
	s.logger.Info("hours logged",
		zap.String("user_id", userID),
		zap.String("opportunity_id", opp.ID),
		zap.Float64("hours", entry.Hours))
	return entry, nil
}

// All returns every log, newest first.
func (s *Service) All(ctx context.Context) ([]models.LoggedHour, error) {
	var logs []models.LoggedHour
	if _, err := db.GetJSON(ctx, s.kv, LoggedHoursKey, &logs); err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []models.LoggedHour{}
	}
	views.SortByDateDesc(logs)
	return logs, nil
}

func (s *Service) ForUser(ctx context.Context, userID string) ([]models.LoggedHour, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	mine := make([]models.LoggedHour, 0)
	for _, l := range all {
		if l.UserID == userID {
			mine = append(mine, l)
		}
	}
	return mine, nil
}

// GenerateStory drafts an impact story for one of the user's logs. The draft
// is not saved.
func (s *Service) GenerateStory(ctx context.Context, userID string, req StoryRequest) (string, error) {
	if err := validation.Struct(req); err != nil {
		return "", err
	}
	if s.gen == nil {
		return "", ErrGenerationDisabled
	}

	mine, err := s.ForUser(ctx, userID)
	if err != nil {
		return "", err
	}
	var entry *models.LoggedHour
	for i := range mine {
		if mine[i].ID == req.LogID {
			entry = &mine[i]
			break
		}
	}
	if entry == nil {
		return "", ErrLogNotFound
	}

	user, err := s.users.Profile(ctx, userID)
	if err != nil {
		return "", err
	}

	notes := strings.TrimSpace(req.Notes)
	if notes == "" {
		notes = entry.Notes
	}
	return ai.GenerateImpactStory(ctx, s.gen, ai.StoryInput{
		UserName:         user.Name,
		OpportunityTitle: entry.OpportunityTitle,
		OrganizationName: entry.OrganizationName,
		Date:             entry.Date,
		Hours:            entry.Hours,
		Notes:            notes,
	})
}

// SaveStory publishes a story to the collective list and the author's profile.
func (s *Service) SaveStory(ctx context.Context, userID string, in StoryInput) (models.ImpactStory, error) {
	in.OpportunityTitle = strings.TrimSpace(in.OpportunityTitle)
	in.Story = strings.TrimSpace(in.Story)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if err := validation.Struct(in); err != nil {
		return models.ImpactStory{}, err
	}

	user, err := s.users.Profile(ctx, userID)
	if err != nil {
		return models.ImpactStory{}, err
	}

	story := models.ImpactStory{
		ID:               "story-" + uuid.NewString(),
		UserID:           userID,
		UserName:         user.Name,
		OpportunityTitle: in.OpportunityTitle,
		Story:            in.Story,
		ImageURL:         in.ImageURL,
		SubmittedAt:      s.now().UTC(),
	}

	err = db.UpdateJSON(ctx, s.kv, ImpactStoriesKey, func(stories *[]models.ImpactStory, _ bool) error {
		*stories = append(*stories, story)
		return nil
	})
	if err != nil {
		return models.ImpactStory{}, err
	}
	if err := s.users.AddImpactStory(ctx, userID, story); err != nil {
		return models.ImpactStory{}, fmt.Errorf("attach story to profile: %w", err)
	}
	return story, nil
}

// Stories returns the collective story list, newest first.
func (s *Service) Stories(ctx context.Context) ([]models.ImpactStory, error) {
	var stories []models.ImpactStory
	if _, err := db.GetJSON(ctx, s.kv, ImpactStoriesKey, &stories); err != nil {
		return nil, err
	}
	if stories == nil {
		stories = []models.ImpactStory{}
	}
	sort.SliceStable(stories, func(i, j int) bool {
		return stories[i].SubmittedAt.After(stories[j].SubmittedAt)
	})
	return stories, nil
}
