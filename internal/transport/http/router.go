package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quiz-progress-service/internal/app"
)

// DefaultStreamInterval is the leaderboard feed period when none is configured.
const DefaultStreamInterval = 10 * time.Second

// Handler serves the REST surface over the core services.
type Handler struct {
	sessions  *app.SessionManager
	progress  *app.ProgressReader
	analytics *app.Analytics
	tokens    TokenParser
	metrics   *Metrics
	log       *zap.Logger

	streamInterval time.Duration
	upgrader       websocket.Upgrader
}

type Options struct {
	Sessions       *app.SessionManager
	Progress       *app.ProgressReader
	Analytics      *app.Analytics
	Tokens         TokenParser
	Metrics        *Metrics
	Log            *zap.Logger
	AllowOrigins   []string
	StreamInterval time.Duration
}

func NewHandler(opts Options) *Handler {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}
	interval := opts.StreamInterval
	if interval <= 0 {
		interval = DefaultStreamInterval
	}
	return &Handler{
		sessions:       opts.Sessions,
		progress:       opts.Progress,
		analytics:      opts.Analytics,
		tokens:         opts.Tokens,
		metrics:        metrics,
		log:            log.Named("http"),
		streamInterval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// NewRouter wires middleware and every route onto a gin engine.
func NewRouter(opts Options) *gin.Engine {
	h := NewHandler(opts)

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.log), h.metrics.Middleware())
	if len(opts.AllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", h.metrics.Handler())

	authed := r.Group("/", h.authenticate())

	quiz := authed.Group("/quiz")
	quiz.GET("/practice", h.practice)
	quiz.POST("/session/start", h.startSession)
	quiz.POST("/session/:id/submit", h.submitSession)
	quiz.POST("/session/:id/abandon", h.abandonSession)

	progress := authed.Group("/progress/me")
	progress.GET("", h.myOverview)
	progress.GET("/levels", h.myLevels)
	progress.GET("/history", h.myHistory)

	admin := authed.Group("/admin/analytics")
	admin.GET("", h.usersOverview)
	admin.GET("/leaderboard", h.leaderboard)
	admin.GET("/leaderboard/ws", h.leaderboardFeed)
	admin.GET("/user/:id", h.userDetail)
	admin.GET("/quiz-stats", h.quizStats)

	return r
}
