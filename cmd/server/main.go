// cmd/server/main.go - Stichting Asha API server
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"stichting-asha/internal/agenda"
	"stichting-asha/internal/config"
	"stichting-asha/internal/database"
	"stichting-asha/internal/handlers"
	"stichting-asha/internal/middleware"
	"stichting-asha/internal/services"
	"stichting-asha/internal/store"
	"stichting-asha/internal/websocket"
	"stichting-asha/pkg/auth"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var (
	appVersion = "1.0.0"
	buildTime  = "unknown"
	gitCommit  = "unknown"
)

// maxBodySize leaves room for two base64 encoded attachments.
const maxBodySize = 32 << 20

func main() {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	setupLogging(log, cfg)

	log.WithFields(logrus.Fields{
		"version": appVersion,
		"build":   buildTime,
		"commit":  gitCommit,
		"env":     cfg.Env,
	}).Info("starting Stichting Asha API")

	site, err := config.LoadSite(cfg.SiteConfig)
	if err != nil {
		log.WithError(err).Fatal("failed to load site config")
	}

	db, err := database.NewMongoDB(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.WithError(err).Warn("error disconnecting from MongoDB")
		}
	}()

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.CreateIndexes(indexCtx); err != nil {
		log.WithError(err).Warn("failed to create some indexes")
	}
	cancelIndexes()

	blobs, err := newBlobStore(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to set up attachment storage")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub(cfg.AllowedOrigins, log.WithField("component", "live"))
	go hub.Run(ctx)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateWindow())
	defer limiter.Stop()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL())
	api := buildAPI(cfg, site, db, jwtManager, blobs, hub, limiter, log)
	router := setupRouter(cfg, api, jwtManager, log)

	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:        router,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server forced to shut down")
	} else {
		log.Info("server stopped")
	}
}

func setupLogging(log *logrus.Logger, cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	logrus.SetLevel(level)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		gin.SetMode(gin.DebugMode)
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func newBlobStore(cfg *config.Config) (services.BlobStore, error) {
	if cfg.BlobBackend == config.BlobCloudinary {
		cld, err := services.NewCloudinaryStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		if err != nil {
			return nil, err
		}
		return cld, nil
	}
	return services.NewInlineStore(), nil
}

func buildAPI(
	cfg *config.Config,
	site *config.Site,
	db *database.MongoDB,
	jwtManager *auth.JWTManager,
	blobs services.BlobStore,
	hub *websocket.Hub,
	limiter *middleware.RateLimiter,
	log *logrus.Logger,
) *handlers.API {
	events := store.NewEventStore(db.Collection(database.CollectionEvents))
	series := store.NewSeriesStore(db.Collection(database.CollectionSeries))
	projects := store.NewProjectStore(db.Collection(database.CollectionProjects))
	volunteers := store.NewVolunteerStore(db.Collection(database.CollectionVolunteers))
	notices := store.NewNoticeStore(db.Collection(database.CollectionNotices))
	newsletter := store.NewNewsletterStore(db.Collection(database.CollectionNewsletter))
	activities := store.NewActivityStore(db.Collection(database.CollectionActivities))
	users := store.NewUserStore(db.Collection(database.CollectionUsers))
	resets := store.NewResetStore(db.Collection(database.CollectionPasswordResets))

	mailer := services.NewMailer(services.MailerConfig{
		APIURL:    cfg.MailAPIURL,
		APIKey:    cfg.MailAPIKey,
		From:      cfg.MailFrom,
		PublicURL: cfg.PublicURL,
	}, log.WithField("component", "mail"))
	if !mailer.Enabled() {
		log.Warn("MAIL_API_URL not set, outgoing mail is disabled")
	}

	recorder := services.NewActivityRecorder(activities, hub, log.WithField("component", "activity"))
	loc := agenda.Location(cfg.Timezone)
	handlerLog := log.WithField("component", "api")

	return &handlers.API{
		Auth:       handlers.NewAuthHandler(users, resets, jwtManager, mailer, recorder, handlerLog),
		Events:     handlers.NewEventHandler(events, site, loc, recorder, handlerLog),
		Series:     handlers.NewSeriesHandler(series, events, site, loc, recorder, handlerLog),
		Agenda:     handlers.NewAgendaHandler(events, loc, handlerLog),
		Projects:   handlers.NewProjectHandler(projects, blobs, recorder, handlerLog),
		Volunteers: handlers.NewVolunteerHandler(volunteers, blobs, mailer, recorder, handlerLog),
		Notices:    handlers.NewNoticeHandler(notices, recorder, handlerLog),
		Newsletter: handlers.NewNewsletterHandler(newsletter, blobs, recorder, handlerLog),
		Upload:     handlers.NewUploadHandler(blobs, handlerLog),
		Activities: handlers.NewActivityHandler(activities, hub, handlerLog),
		Site:       handlers.NewSiteHandler(site, db, appVersion, hub.ConnectionCount, handlerLog),
		Limiter:    limiter,
	}
}

func setupRouter(cfg *config.Config, api *handlers.API, jwtManager *auth.JWTManager, log *logrus.Logger) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.BodyLimit(maxBodySize))

	api.RegisterProbes(router)

	group := router.Group("/api", middleware.Authenticate(jwtManager, log))
	api.Register(group)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Niet gevonden"})
	})

	return router
}
