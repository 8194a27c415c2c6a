package api

import (
	"context"
	"os"
	"time"

	apperrors "hr-backoffice/internal/common/errors"
	"hr-backoffice/internal/common/logger"
	"hr-backoffice/internal/common/observability"
	"hr-backoffice/internal/models"
	jobcatalog "hr-backoffice/internal/services/catalog/job-catalog"
	adminlogin "hr-backoffice/internal/services/auth/admin-login"
	adminlogout "hr-backoffice/internal/services/auth/admin-logout"
	submitapplication "hr-backoffice/internal/services/intake/submit-application"
	exportapplications "hr-backoffice/internal/services/review/export-applications"
	listapplications "hr-backoffice/internal/services/review/list-applications"
	searchapplications "hr-backoffice/internal/services/review/search-applications"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
)

type JobService interface {
	CreateJob(ctx context.Context, input *jobcatalog.Input) (*models.Job, error)
	ListJobs(ctx context.Context) ([]models.Job, error)
	GetJob(ctx context.Context, id int64) (*models.Job, error)
	UpdateJob(ctx context.Context, id int64, input *jobcatalog.Input) (*models.Job, error)
	DeleteJob(ctx context.Context, id int64) (*jobcatalog.DeleteOutput, error)
}

type SubmissionService interface {
	Execute(ctx context.Context, input *submitapplication.Input) (*submitapplication.Output, error)
}

type ListingService interface {
	Execute(ctx context.Context, input *listapplications.Input) (*listapplications.Output, error)
}

type ExportService interface {
	Execute(ctx context.Context, input *exportapplications.Input) (*exportapplications.Output, error)
	OpenArtifact(name string) (*exportapplications.Artifact, error)
}

type SearchService interface {
	Execute(ctx context.Context, input *searchapplications.Input) (*searchapplications.Output, error)
}

type ResumeReader interface {
	Open(locator string) (afero.File, os.FileInfo, error)
}

type LoginService interface {
	Execute(ctx context.Context, input *adminlogin.Input) (*adminlogin.Output, error)
}

type LogoutService interface {
	Execute(ctx context.Context, input *adminlogout.Input) (*adminlogout.Output, error)
}

type StatsService interface {
	Execute(ctx context.Context) (*models.DashboardStats, error)
}

type SessionLookup interface {
	Lookup(ctx context.Context, token string) (*models.Session, error)
}

type BodyValidator interface {
	ValidateJSON(id string, body []byte) error
}

// Services are the operations exposed over HTTP. Search may be nil, in which
// case its route is not registered.
type Services struct {
	Jobs        JobService
	Submissions SubmissionService
	Listing     ListingService
	Export      ExportService
	Search      SearchService
	Resumes     ResumeReader
	Login       LoginService
	Logout      LogoutService
	Stats       StatsService
	Sessions    SessionLookup
	Validator   BodyValidator
}

type Config struct {
	AllowedOrigins []string
	CookieName     string
	CookieSecure   bool
	SessionTTL     time.Duration
	// MaxBodyBytes bounds every request body, multipart uploads included.
	MaxBodyBytes int64
}

func DefaultConfig() *Config {
	return &Config{
		CookieName:   "hr_session",
		SessionTTL:   8 * time.Hour,
		MaxBodyBytes: 12 << 20,
	}
}

type handlers struct {
	cfg    *Config
	svc    Services
	errs   *apperrors.ErrorHandler
	logger logger.Logger
}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(cfg *Config, svc Services, obs *observability.Observability, log logger.Logger) *gin.Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	log = log.WithFields(map[string]interface{}{"component": "http"})
	h := &handlers{cfg: cfg, svc: svc, errs: apperrors.NewErrorHandler(log), logger: log}

	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.Use(
		gin.Recovery(),
		tracing(obs),
		requestMetrics(),
		requestLogger(log),
		limitBody(cfg.MaxBodyBytes),
	)
	if len(cfg.AllowedOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.AllowedOrigins
		corsCfg.AllowCredentials = true
		corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
		corsCfg.ExposeHeaders = []string{"Content-Disposition", headerApplicationID}
		r.Use(cors.New(corsCfg))
	}
	r.NoRoute(func(c *gin.Context) {
		h.errs.Respond(c, apperrors.NewNotFoundError("route", c.Request.URL.Path))
	})

	// public
	r.POST("/apply/:jobId", h.submitApplication)
	r.POST("/login", h.login)

	staff := r.Group("/", h.requireStaff)
	{
		staff.GET("/jobs", h.listJobs)
		staff.POST("/jobs", h.createJob)
		staff.GET("/jobs/:id", h.getJob)
		staff.POST("/jobs/:id", h.updateJob)
		staff.PUT("/jobs/:id", h.updateJob)
		staff.GET("/jobs/:id/delete", h.deleteJob)
		staff.POST("/jobs/:id/delete", h.deleteJob)
		staff.DELETE("/jobs/:id", h.deleteJob)

		staff.GET("/applications", h.listApplications)
		if svc.Search != nil {
			staff.GET("/applications/search", h.searchApplications)
		}
		staff.GET("/export-applications", h.exportApplications)
		staff.GET("/export-applications/:jobId", h.exportApplications)

		staff.GET("/resume/:locator", h.serveResume(dispositionInline))
		staff.GET("/download/:locator", h.serveResume(dispositionAttachment))

		staff.GET("/dashboard", h.dashboard)
		staff.POST("/logout", h.logout)
		staff.GET("/logout", h.logout)
	}

	return r
}
