package routers

import (
	"time"

	"github.com/notehive/collab-note-service/internal/app"
	"github.com/notehive/collab-note-service/internal/middleware"
	"github.com/notehive/collab-note-service/internal/routers/api_router"
	"github.com/notehive/collab-note-service/internal/routers/websocket_router"
	"github.com/notehive/collab-note-service/internal/service"
	pkgapp "github.com/notehive/collab-note-service/pkg/app"
	"github.com/notehive/collab-note-service/pkg/limiter"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"github.com/lxzan/gws"
)

var methodLimiters = limiter.NewMethodLimiter().AddBuckets(
	limiter.BucketRule{
		Key:          "/user/login",
		FillInterval: time.Second,
		Capacity:     10,
		Quantum:      10,
	},
	limiter.BucketRule{
		Key:          "/user/register",
		FillInterval: time.Second,
		Capacity:     5,
		Quantum:      5,
	},
)

// NewRouter 创建对外 HTTP 路由
func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {

	cfg := appContainer.Config()

	var wss = pkgapp.NewWebsocketServer(pkgapp.WSConfig{
		GWSOption: gws.ServerOption{
			CheckUtf8Enabled:  true,
			ParallelEnabled:   true,
			Recovery:          gws.Recovery,
			PermessageDeflate: gws.PermessageDeflate{Enabled: true},
			ParallelGolimit:   8,
		},
	}, appContainer.TokenManager)

	// 创建 WebSocket Handlers（注入 App Container）
	noteWSHandler := websocket_router.NewNoteWSHandler(appContainer, wss)

	// 笔记通知订阅
	wss.Use("NoteWatch", noteWSHandler.NoteWatch)
	wss.Use("NoteUnwatch", noteWSHandler.NoteUnwatch)
	wss.UseUserVerify(noteWSHandler.UserInfo)

	// WebSocket Hub 就绪后注入真实通知器
	appContainer.SetNotifier(service.NewWebsocketNotifier(wss, appContainer.WorkerPool()))

	r := gin.New()

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfoWithConfig(app.Name, appContainer.Version().Version))
		api.Use(middleware.TraceMiddlewareWithConfig(cfg.Tracer.Enabled, cfg.Tracer.Header))
		api.Use(middleware.RateLimiter(methodLimiters))
		api.Use(middleware.ContextTimeout(time.Duration(cfg.App.DefaultContextTimeout) * time.Second))
		api.Use(middleware.Cors())
		api.Use(middleware.LangWithTranslator(uni))
		api.Use(middleware.Metrics())
		api.Use(middleware.AccessLogWithLogger(appContainer.Logger()))
		api.Use(middleware.RecoveryWithLogger(appContainer.Logger()))

		// 创建 Handlers（注入 App Container）
		userHandler := api_router.NewUserHandler(appContainer)
		noteHandler := api_router.NewNoteHandler(appContainer, wss)
		versionHandler := api_router.NewVersionHandler(appContainer)
		healthHandler := api_router.NewHealthHandler(appContainer)

		// 无需认证的接口
		api.POST("/user/register", userHandler.Register)
		api.POST("/user/login", userHandler.Login)
		api.GET("/version", versionHandler.ServerVersion)
		api.GET("/health", healthHandler.Check)

		// WebSocket 通知通道（连接后通过 Authorization 消息认证）
		api.GET("/notify", wss.Run())

		auth := api.Group("", middleware.UserAuthTokenWithManager(appContainer.TokenManager))
		auth.GET("/user/info", userHandler.UserInfo)
		auth.POST("/user/change_password", userHandler.UserChangePassword)

		auth.GET("/notes", noteHandler.List)
		auth.POST("/notes", noteHandler.Create)
		auth.GET("/notes/:id", noteHandler.Get)
		auth.PATCH("/notes/:id", noteHandler.Update)
		auth.DELETE("/notes/:id", noteHandler.Delete)
		auth.POST("/notes/:id/share", noteHandler.Share)
		auth.PUT("/notes/:id/archive", noteHandler.Archive)
	}

	r.Use(middleware.Cors())
	r.NoRoute(middleware.NotFound())

	return r
}
