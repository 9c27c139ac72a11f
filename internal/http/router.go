package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pcelinjak/hivelog/internal/cache"
	"github.com/pcelinjak/hivelog/internal/config"
	"github.com/pcelinjak/hivelog/internal/domain/user"
	"github.com/pcelinjak/hivelog/internal/http/handlers"
	"github.com/pcelinjak/hivelog/internal/http/middlewares"
	"github.com/pcelinjak/hivelog/internal/observability"
	"github.com/pcelinjak/hivelog/internal/reminders"
	"github.com/pcelinjak/hivelog/internal/security"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20

// Users is what the router needs from the users store.
type Users interface {
	handlers.UserStore
	cache.UserGetter
	handlers.RecipientLister
}

type Hives interface {
	handlers.HiveStore
	handlers.Counter
}

type Activities interface {
	handlers.ActivityStore
	handlers.HiveActivityLister
	handlers.Counter
	reminders.ActivitySource
}

type Comments interface {
	handlers.CommentStore
	handlers.HiveCommentLister
}

type Notifications interface {
	handlers.NotificationStore
	handlers.UnseenLister
	reminders.ReminderStore
}

type Deps struct {
	Config        config.Config
	Users         Users
	Hives         Hives
	Activities    Activities
	Comments      Comments
	Notifications Notifications
	Tokens        interface {
		handlers.TokenIssuer
		middlewares.TokenVerifier
	}
	Hasher *security.PasswordHasher

	// optional
	Locker    reminders.Locker
	Prom      *observability.Prom
	Gatherer  prometheus.Gatherer
	Readiness map[string]handlers.Pinger
}

func NewRouter(log *slog.Logger, d Deps) *gin.Engine {
	if d.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	idm := middlewares.NewIdentityMiddleware(d.Tokens, d.Config.CookieName, d.Config.Protected, log, d.Prom)

	// middleware

	r.Use(otelgin.Middleware("hivelog"))
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders(d.Config.IsProd()))
	r.Use(middlewares.CORSMiddleware(d.Config.CORSOrigins))

	// identity runs before any body gate: no token on a protected path is always 401
	r.Use(idm.Authenticate())
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())

	health := handlers.NewHealthHandler(d.Readiness)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	summaries := cache.NewUserSummaries(d.Users, time.Minute)

	authHandler := handlers.NewAuthHandler(d.Users, summaries, d.Hasher, d.Tokens, idm, handlers.CookieConfig{
		Name:   d.Config.CookieName,
		Secure: d.Config.IsProd(),
	})

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/me", authHandler.Me)
	}

	hiveHandler := handlers.NewHiveHandler(d.Hives, d.Activities, d.Comments, idm)

	hives := r.Group("/hives")
	{
		hives.GET("", hiveHandler.List)
		hives.POST("", hiveHandler.Create)
		hives.GET("/:id", hiveHandler.Get)
		hives.PUT("/:id", hiveHandler.Update)
		hives.DELETE("/:id", hiveHandler.Delete)
		hives.GET("/:id/comments", hiveHandler.Comments)
	}

	activityHandler := handlers.NewActivityHandler(d.Activities, d.Hives, idm, d.Config.TimeZone)

	activities := r.Group("/activities")
	{
		activities.GET("", activityHandler.List)
		activities.GET("/stats", activityHandler.Stats)
		activities.POST("", activityHandler.Create)
		activities.GET("/:id", activityHandler.Get)
		activities.PUT("/:id", activityHandler.Update)
		activities.DELETE("/:id", activityHandler.Delete)
	}

	commentHandler := handlers.NewCommentHandler(d.Comments, d.Hives, idm)

	comments := r.Group("/comments")
	{
		comments.POST("", commentHandler.Create)
		comments.DELETE("/:id", commentHandler.Delete)
	}

	// notifications and profile are not under a protected prefix;
	// their handlers verify the token themselves.
	notificationHandler := handlers.NewNotificationHandler(d.Notifications, d.Users, idm, d.Prom)

	notifications := r.Group("/notifications")
	{
		notifications.GET("", notificationHandler.List)
		notifications.POST("", idm.RequireRole(user.RoleManager), notificationHandler.Broadcast)
		notifications.PATCH("", notificationHandler.MarkSeen)
	}

	generator := reminders.NewGenerator(d.Activities, d.Notifications,
		reminders.WithLocker(d.Locker),
		reminders.WithLocation(d.Config.TimeZone),
		reminders.WithLogger(log),
		reminders.WithMetrics(d.Prom),
	)
	profileHandler := handlers.NewProfileHandler(generator, summaries, d.Hives, d.Activities, d.Notifications, idm)
	r.GET("/profile", profileHandler.Get)

	return r
}
