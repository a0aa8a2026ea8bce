package ingest

import (
	"context"
	"errors"
	"html"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/david/voluntrack/internal/models"
	"github.com/david/voluntrack/internal/validation"
)

// SubmitInput is a user-submitted opportunity. OrganizationRef is either the
// id of a known organization or the display name of a new one.
type SubmitInput struct {
	Title           string `json:"title" validate:"required,max=200"`
	OrganizationRef string `json:"organizationId" validate:"required,max=200"`
	Description     string `json:"description" validate:"required,max=5000"`
	Dates           string `json:"dates" validate:"max=200"`
	Location        string `json:"location" validate:"max=300"`
	Skills          string `json:"skills" validate:"max=1000"`
	AgeRequirement  string `json:"ageRequirement" validate:"max=100"`
	ContactPerson   string `json:"contactPerson" validate:"max=200"`
	ContactEmail    string `json:"contactEmail" validate:"omitempty,email"`
	ApplicationLink string `json:"applicationLink" validate:"omitempty,http_url"`
	Category        string `json:"category" validate:"required"`
	TimeCommitment  string `json:"timeCommitment"`
	RemoteOrOnline  bool   `json:"remoteOrOnline"`
}

var textPolicy = bluemonday.StrictPolicy()

// cleanSubmitted strips markup from user text and collapses whitespace.
func cleanSubmitted(s string) string {
	return normalizeSpace(html.UnescapeString(textPolicy.Sanitize(sanitizeUTF8(s))))
}

// SubmitOpportunity adds a user-submitted opportunity to the front of the
// current collection without going through generation. The organization is
// resolved by id, or created from the reference used as a name. It is replaced
// along with everything else by the next committed batch.
func (o *Orchestrator) SubmitOpportunity(ctx context.Context, in SubmitInput) (models.Opportunity, error) {
	if err := ctx.Err(); err != nil {
		return models.Opportunity{}, err
	}

	in.Title = cleanSubmitted(in.Title)
	in.OrganizationRef = cleanSubmitted(in.OrganizationRef)
	in.Description = cleanSubmitted(in.Description)
	if err := validation.Struct(in); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			return models.Opportunity{}, &Error{Kind: KindValidation, Message: "invalid opportunity", Err: verr}
		}
		return models.Opportunity{}, err
	}
	if Slugify(in.OrganizationRef) == "" {
		return models.Opportunity{}, validationErrorf("organization %q cannot be resolved", in.OrganizationRef)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	org, known := o.findOrgLocked(in.OrganizationRef)
	if !known {
		reg := NewOrgRegistry(o.orgs)
		org = reg.Resolve(in.OrganizationRef)
		if reg.Len() > len(o.orgs) {
			o.orgs = append(o.orgs, org)
			o.logger.Info("created organization from submission",
				zap.String("id", org.ID),
				zap.String("name", org.Name))
		}
	}

	now := o.opts.Now().UTC()
	opp := models.Opportunity{
		ID:             "opp-" + uuid.NewString(),
		Title:          in.Title,
		OrganizationID: org.ID,
		Organization:   org,
		Description:    in.Description,
		Dates:          orDefaultText(cleanSubmitted(in.Dates), defaultDates),
		Location:       orDefaultText(cleanSubmitted(in.Location), defaultLocation),
		SkillsRequired: splitAndCleanList(cleanSubmitted(in.Skills)),
		AgeRequirement: cleanSubmitted(in.AgeRequirement),
		ContactPerson:  cleanSubmitted(in.ContactPerson),
		ContactEmail:   strings.TrimSpace(in.ContactEmail),
		ApplicationURL: strings.TrimSpace(in.ApplicationLink),
		Category:       ClassifyCategory(in.Category),
		TimeCommitment: ClassifyTimeCommitment(in.TimeCommitment),
		PublishedDate:  now,
		RemoteOrOnline: in.RemoteOrOnline,
	}
	if opp.SkillsRequired == nil {
		opp.SkillsRequired = []string{}
	}

	o.opps = append([]models.Opportunity{opp}, o.opps...)
	o.updatedAt = now
	return opp, nil
}

func (o *Orchestrator) findOrgLocked(id string) (models.Organization, bool) {
	for _, org := range o.orgs {
		if org.ID == id {
			return org, true
		}
	}
	return models.Organization{}, false
}

func orDefaultText(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
