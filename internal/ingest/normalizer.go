package ingest

import (
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/david/voluntrack/internal/metrics"
	"github.com/david/voluntrack/internal/models"
)

const (
	defaultDescription = "No description provided by AI."
	defaultDates       = "Varies"
	defaultLocation    = "To be confirmed"
	defaultAge         = "Not specified"
	untitledTitle      = "Untitled opportunity"

	searchURLPrefix   = "https://www.google.com/search?q="
	maxDescriptionLen = 2000
)

// TruncateText cuts a string to max runes, appending ellipsis if truncated.
func TruncateText(text string, maxLen int) string {
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	runes := []rune(text)
	if maxLen > 3 {
		return string(runes[:maxLen-3]) + "..."
	}
	return string(runes[:maxLen])
}

// HTMLToText converts HTML to plain text, collapsing whitespace.
func HTMLToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html // Fallback to original if parsing fails
	}
	return normalizeSpace(doc.Text())
}

func plainText(s string) string {
	if strings.Contains(s, "<") || strings.Contains(s, "&") {
		return HTMLToText(s)
	}
	return s
}

var uriComponentUnescape = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// SearchLink builds the search-engine URL for an AI-supplied query. The query
// is percent-encoded like a URI component, so spaces become %20.
func SearchLink(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return ""
	}
	return searchURLPrefix + uriComponentUnescape.Replace(url.QueryEscape(query))
}

// GenerateID returns an identifier for records that arrive without one.
func GenerateID(at time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return "ai-" + strconv.FormatInt(at.UnixMilli(), 10) + "-" + suffix
}

// Normalizer converts raw provider records into opportunities.
type Normalizer struct {
	logger *zap.Logger
	newID  func(time.Time) string
}

func NewNormalizer(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger, newID: GenerateID}
}

// Normalize never fails. Missing or mistyped fields get defaults; a missing
// title gets a placeholder and a warning. batchTime becomes the published date.
func (n *Normalizer) Normalize(raw RawRecord, reg *OrgRegistry, batchTime time.Time) models.Opportunity {
	metrics.RecordsNormalizedTotal.Inc()

	id, ok := str(raw.ID)
	if !ok {
		id = n.newID(batchTime)
	}

	title, hasTitle := str(raw.Title)
	if hasTitle {
		title = plainText(title)
		hasTitle = title != ""
	}
	if !hasTitle {
		metrics.PlaceholdersTotal.WithLabelValues("title").Inc()
		n.logger.Warn("raw record has no title, using placeholder",
			zap.String("id", id),
			zap.Error(validationErrorf("record %s: missing title", id)))
		title = untitledTitle
	}

	orgName, _ := str(raw.OrganizationName)
	org := reg.Resolve(orgName)

	opp := models.Opportunity{
		ID:             id,
		Title:          title,
		OrganizationID: org.ID,
		Organization:   org,
		Description:    orDefault(raw.Description, defaultDescription),
		Dates:          orDefault(raw.Dates, defaultDates),
		Location:       orDefault(raw.Location, defaultLocation),
		SkillsRequired: mergeUniqueFold([]string{}, cleanSkills(raw.SkillsRequired)),
		AgeRequirement: orDefault(raw.AgeRequirement, defaultAge),
		PublishedDate:  batchTime.UTC(),
	}
	opp.Description = TruncateText(opp.Description, maxDescriptionLen)

	if label, ok := str(raw.Category); ok {
		opp.Category = ClassifyCategory(label)
	} else {
		opp.Category = ClassifyCategory(title)
	}
	tc, _ := str(raw.TimeCommitment)
	opp.TimeCommitment = ClassifyTimeCommitment(tc)

	if raw.RemoteOrOnline != nil {
		opp.RemoteOrOnline = *raw.RemoteOrOnline
	}
	if q, ok := str(raw.SearchQuery); ok {
		opp.ApplicationURL = SearchLink(q)
	}

	return opp
}

func orDefault(p *string, def string) string {
	s, ok := str(p)
	if !ok {
		return def
	}
	if s = plainText(s); s == "" {
		return def
	}
	return s
}

func cleanSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		out = append(out, plainText(normalizeSpace(sanitizeUTF8(s))))
	}
	return out
}
