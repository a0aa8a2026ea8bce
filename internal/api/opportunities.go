package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/david/voluntrack/internal/auth"
	"github.com/david/voluntrack/internal/ingest"
	"github.com/david/voluntrack/internal/models"
	"github.com/david/voluntrack/internal/views"
)

// opportunityList is one page of the filtered collection plus the ingestion
// status the UI shows above it.
type opportunityList struct {
	Results   views.Page[models.Opportunity] `json:"results"`
	State     ingest.State                   `json:"state"`
	Loading   bool                           `json:"isLoading"`
	Error     string                         `json:"error,omitempty"`
	ErrorKind ingest.ErrorKind               `json:"errorKind,omitempty"`
	UpdatedAt time.Time                      `json:"updatedAt"`
}

func (s *Server) handleListOpportunities(c echo.Context) error {
	snap := s.Ingest.Snapshot()
	filtered := views.Filter(snap.Opportunities, views.Predicate{
		SearchTerm: c.QueryParam("q"),
		Category:   models.Category(c.QueryParam("category")),
	})

	page := views.ClampPage(queryInt(c, "page", 1), len(filtered), s.opts.PageSize)
	return c.JSON(http.StatusOK, opportunityList{
		Results:   views.Paginate(filtered, page, s.opts.PageSize),
		State:     snap.State,
		Loading:   snap.Loading,
		Error:     snap.Error,
		ErrorKind: snap.ErrorKind,
		UpdatedAt: snap.UpdatedAt,
	})
}

// handleSearch starts an ingestion batch and returns its sequence number
// without waiting for it.
func (s *Server) handleSearch(c echo.Context) error {
	var q models.Query
	if err := c.Bind(&q); err != nil {
		return badRequest(c)
	}
	if q.Category != "" && !q.Category.Valid() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unknown category"})
	}
	if q.TimeCommitment != "" && !q.TimeCommitment.Valid() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unknown time commitment"})
	}

	seq := s.Ingest.Request(c.Request().Context(), q)
	return c.JSON(http.StatusAccepted, map[string]uint64{"seq": seq})
}

func (s *Server) handleState(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Ingest.Snapshot())
}

func (s *Server) handleGetOpportunity(c echo.Context) error {
	opp, err := s.Ingest.Opportunity(c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, opp)
}

func (s *Server) handleSubmitOpportunity(c echo.Context) error {
	var in ingest.SubmitInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c)
	}
	opp, err := s.Ingest.SubmitOpportunity(c.Request().Context(), in)
	if err != nil {
		return s.fail(c, err)
	}
	if userID, err := auth.GetUserIDFromContext(c); err == nil {
		s.logger.Info("opportunity submitted",
			zap.String("user_id", userID),
			zap.String("opportunity_id", opp.ID))
	}
	return c.JSON(http.StatusCreated, opp)
}

func (s *Server) handleListOrganizations(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Ingest.Snapshot().Organizations)
}

func (s *Server) handleGetOrganization(c echo.Context) error {
	org, err := s.Ingest.Organization(c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}

	opps := []models.Opportunity{}
	for _, opp := range s.Ingest.Snapshot().Opportunities {
		if opp.OrganizationID == org.ID {
			opps = append(opps, opp)
		}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"organization":  org,
		"opportunities": opps,
	})
}

func (s *Server) handleEvents(c echo.Context) error {
	groups := views.UpcomingEvents(s.Ingest.Snapshot().Opportunities, s.now())
	if groups == nil {
		groups = []views.EventGroup{}
	}
	return c.JSON(http.StatusOK, groups)
}
