// Package api exposes the reconciliation engine over HTTP: ingestion of
// expenses and transactions, run triggering, the review workflow and
// the summary report.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/expensetrace/reconciler/internal/application/reconcile"
	"github.com/expensetrace/reconciler/internal/infrastructure/storage"
)

// Server wires the application services into a gin router
type Server struct {
	repo         storage.Repository
	orchestrator *reconcile.Orchestrator
	review       *reconcile.ReviewService
	summary      *reconcile.SummaryService
	logger       *slog.Logger
}

// NewServer creates an API server
func NewServer(
	repo storage.Repository,
	orchestrator *reconcile.Orchestrator,
	review *reconcile.ReviewService,
	summary *reconcile.SummaryService,
	logger *slog.Logger,
) *Server {
	return &Server{
		repo:         repo,
		orchestrator: orchestrator,
		review:       review,
		summary:      summary,
		logger:       logger,
	}
}

// Router builds the gin engine with all routes registered
func (s *Server) Router(allowedOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := router.Group("/api")
	{
		api.POST("/expenses", s.createExpense)
		api.POST("/transactions", s.createTransaction)
		api.POST("/reconcile", s.runReconciliation)
		api.GET("/matches/pending", s.listPendingMatches)
		api.POST("/matches/:id/confirm", s.confirmMatch)
		api.POST("/matches/:id/reject", s.rejectMatch)
		api.GET("/summary", s.getSummary)
		api.GET("/sessions", s.listSessions)
	}

	return router
}
