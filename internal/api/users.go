package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/david/voluntrack/internal/auth"
	"github.com/david/voluntrack/internal/hours"
	"github.com/david/voluntrack/internal/models"
	"github.com/david/voluntrack/internal/views"
)

func (s *Server) handleSignup(c echo.Context) error {
	var req auth.SignupRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}

	resp, err := s.AuthService.Signup(c.Request().Context(), req)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleLogin(c echo.Context) error {
	var req auth.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}

	resp, err := s.AuthService.Login(c.Request().Context(), req)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func userID(c echo.Context) (string, error) {
	id, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	return id, nil
}

func (s *Server) handleGetProfile(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	profile, err := s.AuthService.Profile(c.Request().Context(), id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (s *Server) handleUpdateProfile(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	var patch auth.ProfilePatch
	if err := c.Bind(&patch); err != nil {
		return badRequest(c)
	}
	profile, err := s.AuthService.UpdateProfile(c.Request().Context(), id, patch)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (s *Server) handleSaveOpportunity(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	opp, err := s.Ingest.Opportunity(c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}
	profile, err := s.AuthService.SaveOpportunity(c.Request().Context(), id, opp.ID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string][]string{"savedOpportunityIds": profile.SavedOpportunityIDs})
}

func (s *Server) handleUnsaveOpportunity(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	profile, err := s.AuthService.UnsaveOpportunity(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string][]string{"savedOpportunityIds": profile.SavedOpportunityIDs})
}

// handleGetSavedOpportunities resolves saved ids against the current
// collection. Ids that a later batch replaced are reported separately.
func (s *Server) handleGetSavedOpportunities(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	ids, err := s.AuthService.SavedOpportunityIDs(c.Request().Context(), id)
	if err != nil {
		return s.fail(c, err)
	}

	byID := make(map[string]models.Opportunity)
	for _, opp := range s.Ingest.Snapshot().Opportunities {
		byID[opp.ID] = opp
	}
	opps := []models.Opportunity{}
	missing := []string{}
	for _, savedID := range ids {
		if opp, ok := byID[savedID]; ok {
			opps = append(opps, opp)
		} else {
			missing = append(missing, savedID)
		}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"opportunities": opps,
		"missingIds":    missing,
	})
}

func (s *Server) handleLogHours(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	var in hours.LogInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c)
	}
	entry, err := s.Hours.Add(c.Request().Context(), id, in)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, entry)
}

func (s *Server) handleMyHours(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	logs, err := s.Hours.ForUser(c.Request().Context(), id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

func (s *Server) handleCollectiveImpact(c echo.Context) error {
	logs, err := s.Hours.All(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, views.BuildCollectiveImpact(logs, s.opts.CommunityHourGoal))
}

func (s *Server) handleMyImpact(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	logs, err := s.Hours.ForUser(c.Request().Context(), id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, views.BuildIndividualImpact(logs))
}

func (s *Server) handleListStories(c echo.Context) error {
	stories, err := s.Hours.Stories(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, stories)
}

func (s *Server) handleGenerateStory(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	var req hours.StoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	story, err := s.Hours.GenerateStory(c.Request().Context(), id, req)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"story": story})
}

func (s *Server) handleSaveStory(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	var in hours.StoryInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c)
	}
	story, err := s.Hours.SaveStory(c.Request().Context(), id, in)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, story)
}
