package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/david/voluntrack/internal/ai"
	"github.com/david/voluntrack/internal/auth"
	"github.com/david/voluntrack/internal/hours"
	"github.com/david/voluntrack/internal/ingest"
	"github.com/david/voluntrack/internal/models"
	"github.com/david/voluntrack/internal/validation"
	"github.com/david/voluntrack/internal/views"
)

type Options struct {
	PageSize          int
	CommunityHourGoal float64
	CORSOrigins       []string
	AISearchEnabled   bool
}

type Server struct {
	Echo        *echo.Echo
	Ingest      *ingest.Orchestrator
	AuthService *auth.Service
	Hours       *hours.Service

	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

func NewServer(orch *ingest.Orchestrator, authService *auth.Service, hoursService *hours.Service, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = views.DefaultPageSize
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"http://localhost:5173"}
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: opts.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	s := &Server{
		Echo:        e,
		Ingest:      orch,
		AuthService: authService,
		Hours:       hoursService,
		opts:        opts,
		logger:      logger,
		now:         time.Now,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	s.Echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.Echo.Group("/api/v1")
	api.GET("/meta", s.handleMeta)

	api.GET("/opportunities", s.handleListOpportunities)
	api.POST("/opportunities/search", s.handleSearch)
	api.GET("/opportunities/state", s.handleState)
	api.GET("/opportunities/:id", s.handleGetOpportunity)
	api.POST("/opportunities", s.handleSubmitOpportunity, auth.Middleware)

	api.GET("/organizations", s.handleListOrganizations)
	api.GET("/organizations/:id", s.handleGetOrganization)
	api.GET("/events", s.handleEvents)

	// Auth Routes
	api.POST("/auth/signup", s.handleSignup)
	api.POST("/auth/login", s.handleLogin)

	me := api.Group("/me", auth.Middleware)
	me.GET("", s.handleGetProfile)
	me.PATCH("", s.handleUpdateProfile)

	// Protected Routes (Saved Opportunities)
	saved := api.Group("/saved")
	saved.Use(auth.Middleware)
	saved.POST("/:id", s.handleSaveOpportunity)
	saved.DELETE("/:id", s.handleUnsaveOpportunity)
	saved.GET("", s.handleGetSavedOpportunities)

	logged := api.Group("/hours", auth.Middleware)
	logged.POST("", s.handleLogHours)
	logged.GET("", s.handleMyHours)

	impact := api.Group("/impact")
	impact.GET("/collective", s.handleCollectiveImpact)
	impact.GET("/stories", s.handleListStories)
	impact.GET("/me", s.handleMyImpact, auth.Middleware)
	impact.POST("/stories/generate", s.handleGenerateStory, auth.Middleware)
	impact.POST("/stories", s.handleSaveStory, auth.Middleware)
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleMeta(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"categories":      models.AllCategories,
		"timeCommitments": models.AllTimeCommitments,
		"pageSize":        s.opts.PageSize,
		"aiSearchEnabled": s.opts.AISearchEnabled,
	})
}

// fail maps service errors onto HTTP responses.
func (s *Server) fail(c echo.Context, err error) error {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, map[string]any{"error": verr.Message, "fields": verr.Fields})
	case ingest.KindOf(err) == ingest.KindValidation,
		errors.Is(err, auth.ErrInvalidInterest):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, ingest.ErrNotFound),
		errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, hours.ErrLogNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, ingest.ErrLoading):
		return c.JSON(http.StatusServiceUnavailable, map[string]any{"error": err.Error(), "isLoading": true})
	case errors.Is(err, auth.ErrUserExists):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, auth.ErrInvalidCreds):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	case errors.Is(err, hours.ErrGenerationDisabled),
		errors.Is(err, ai.ErrCircuitOpen):
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	case errors.Is(err, ai.ErrEmptyStory):
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	s.logger.Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err))
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
}

func badRequest(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
}

func queryInt(c echo.Context, name string, def int) int {
	if v, err := strconv.Atoi(c.QueryParam(name)); err == nil {
		return v
	}
	return def
}
