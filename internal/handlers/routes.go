package handlers

import (
	"net/http"

	"stichting-asha/internal/middleware"

	"github.com/gin-gonic/gin"
)

// API bundles the handlers mounted under /api. Nil handlers are skipped,
// which lets tests mount a single resource.
type API struct {
	Auth       *AuthHandler
	Events     *EventHandler
	Series     *SeriesHandler
	Agenda     *AgendaHandler
	Projects   *ProjectHandler
	Volunteers *VolunteerHandler
	Notices    *NoticeHandler
	Newsletter *NewsletterHandler
	Upload     *UploadHandler
	Activities *ActivityHandler
	Site       *SiteHandler

	// Limiter guards the public write endpoints. Nil disables limiting.
	Limiter *middleware.RateLimiter
}

func (a *API) limit() gin.HandlerFunc {
	if a.Limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return a.Limiter.RateLimit()
}

// Register mounts every route on api. Session middleware must already
// run on the group.
func (a *API) Register(api *gin.RouterGroup) {
	if a.Auth != nil {
		g := api.Group("/auth")
		g.POST("/login", a.limit(), a.Auth.Login)
		g.GET("/me", middleware.RequireLogin(), a.Auth.Me)
		g.POST("/forgot-password", a.limit(), a.Auth.ForgotPassword)
		g.POST("/reset-password", a.limit(), a.Auth.ResetPassword)
	}

	if a.Events != nil {
		g := api.Group("/events")
		g.GET("", a.Events.GetEvents)
		g.POST("", middleware.RequireEventCreator(), a.Events.CreateEvent)
		g.GET("/:id", a.Events.GetEvent)
		g.PUT("/:id", middleware.RequireEventManager(), a.Events.UpdateEvent)
		g.DELETE("/:id", middleware.RequireEventManager(), a.Events.DeleteEvent)
	}

	if a.Series != nil {
		g := api.Group("/series")
		g.POST("", middleware.RequireEventCreator(), a.Series.CreateSeries)
		g.GET("/:id", a.Series.GetSeries)
		g.PUT("/:id", middleware.RequireEventManager(), a.Series.UpdateSeries)
		g.DELETE("/:id", middleware.RequireEventManager(), a.Series.DeleteSeries)
	}

	if a.Agenda != nil {
		api.GET("/agenda", a.Agenda.GetAgenda)
		api.GET("/agenda.ics", a.Agenda.ExportICS)
	}

	if a.Projects != nil {
		g := api.Group("/projects")
		g.GET("", a.Projects.GetProjects)
		g.GET("/:id", a.Projects.GetProject)
		g.POST("", middleware.RequireAdmin(middleware.MsgProjectsCreate), a.Projects.CreateProject)
		g.PUT("/:id", middleware.RequireAdmin(middleware.MsgProjectsUpdate), a.Projects.UpdateProject)
		g.DELETE("/:id", middleware.RequireAdmin(middleware.MsgProjectsDelete), a.Projects.DeleteProject)
	}

	if a.Volunteers != nil {
		api.POST("/volunteers/apply", a.limit(), a.Volunteers.Apply)

		g := api.Group("/volunteers", middleware.RequireAdmin(middleware.MsgVolunteersDenied))
		g.GET("", a.Volunteers.GetVolunteers)
		g.GET("/:id", a.Volunteers.GetVolunteer)
		g.GET("/:id/file", a.Volunteers.GetFile)
		g.PUT("/:id", a.Volunteers.Decide)
		g.DELETE("/:id", a.Volunteers.DeleteVolunteer)
	}

	if a.Notices != nil {
		api.GET("/notices/latest", a.Notices.GetLatest)

		g := api.Group("/notices", middleware.RequireAdmin(middleware.MsgContentDenied))
		g.GET("", a.Notices.GetNotices)
		g.POST("", a.Notices.CreateNotice)
		g.PUT("/:id", a.Notices.UpdateNotice)
		g.DELETE("/:id", a.Notices.DeleteNotice)
	}

	if a.Newsletter != nil {
		g := api.Group("/newsletter")
		g.GET("", a.Newsletter.GetPosts)
		g.GET("/:id", a.Newsletter.GetPost)
		g.POST("", middleware.RequireAdmin(middleware.MsgContentDenied), a.Newsletter.CreatePost)
		g.PUT("/:id", middleware.RequireAdmin(middleware.MsgContentDenied), a.Newsletter.UpdatePost)
		g.DELETE("/:id", middleware.RequireAdmin(middleware.MsgContentDenied), a.Newsletter.DeletePost)
	}

	if a.Upload != nil {
		api.POST("/upload", middleware.RequireSession(http.StatusForbidden, middleware.MsgAuthRequired), a.Upload.Upload)
	}

	if a.Activities != nil {
		g := api.Group("/activities", middleware.RequireStaff())
		g.GET("", a.Activities.GetActivities)
		g.GET("/ws", a.Activities.Live)
	}

	if a.Site != nil {
		api.GET("/site", a.Site.GetSite)
	}
}

// RegisterProbes mounts the health endpoints at the root.
func (a *API) RegisterProbes(r gin.IRoutes) {
	if a.Site == nil {
		return
	}
	r.GET("/health", a.Site.Health)
	r.GET("/ready", a.Site.Ready)
}
