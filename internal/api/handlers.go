package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/expensetrace/reconciler/internal/application/reconcile"
	"github.com/expensetrace/reconciler/internal/domain/ledger"
	"github.com/expensetrace/reconciler/internal/infrastructure/storage"
)

func (s *Server) createExpense(c *gin.Context) {
	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	expense, err := req.ToExpense()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if expense.ID == "" {
		expense.ID = uuid.NewString()
	}

	if err := s.repo.InsertExpense(c.Request.Context(), expense); err != nil {
		s.logger.Error("Failed to insert expense", "expense_id", expense.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store expense"})
		return
	}

	c.JSON(http.StatusCreated, expense)
}

func (s *Server) createTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	transaction, err := req.ToTransaction()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if transaction.ID == "" {
		transaction.ID = uuid.NewString()
	}

	if err := s.repo.InsertTransaction(c.Request.Context(), transaction); err != nil {
		s.logger.Error("Failed to insert transaction", "transaction_id", transaction.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store transaction"})
		return
	}

	c.JSON(http.StatusCreated, transaction)
}

func (s *Server) runReconciliation(c *gin.Context) {
	var req ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	periodStart, err := time.Parse(dateLayout, req.PeriodStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period_start must be formatted as YYYY-MM-DD"})
		return
	}
	periodEnd, err := time.Parse(dateLayout, req.PeriodEnd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period_end must be formatted as YYYY-MM-DD"})
		return
	}

	result, err := s.orchestrator.Run(c.Request.Context(), reconcile.Options{
		UserID:      req.UserID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Strategy:    ledger.Strategy(req.Strategy),
		AutoAccept:  req.AutoAccept,
	})
	if err != nil {
		s.logger.Error("Reconciliation failed", "user_id", req.UserID, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) listPendingMatches(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	pending, err := s.review.ListPending(c.Request.Context(), userID, limit)
	if err != nil {
		s.logger.Error("Failed to list pending matches", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list pending matches"})
		return
	}
	if pending == nil {
		pending = []storage.PendingMatch{}
	}

	c.JSON(http.StatusOK, pending)
}

func (s *Server) confirmMatch(c *gin.Context) {
	s.decideMatch(c, true)
}

func (s *Server) rejectMatch(c *gin.Context) {
	s.decideMatch(c, false)
}

func (s *Server) decideMatch(c *gin.Context, confirm bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "match id must be an integer"})
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var m *ledger.Match
	if confirm {
		m, err = s.review.Confirm(c.Request.Context(), id, req.UserID)
	} else {
		m, err = s.review.Reject(c.Request.Context(), id, req.UserID)
	}

	switch {
	case errors.Is(err, ledger.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Match not found"})
	case errors.Is(err, ledger.ErrAlreadyFinalized):
		c.JSON(http.StatusConflict, gin.H{"error": "Match already confirmed or rejected"})
	case err != nil:
		s.logger.Error("Failed to finalize match", "match_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to finalize match"})
	default:
		c.JSON(http.StatusOK, m)
	}
}

func (s *Server) getSummary(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	summary, err := s.summary.Summarize(c.Request.Context(), userID)
	if err != nil {
		s.logger.Error("Failed to build summary", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build summary"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (s *Server) listSessions(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if limit <= 0 {
		limit = 5
	}

	sessions, err := s.repo.ListRecentSessions(c.Request.Context(), userID, limit)
	if err != nil {
		s.logger.Error("Failed to list sessions", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sessions"})
		return
	}
	if sessions == nil {
		sessions = []ledger.Session{}
	}

	c.JSON(http.StatusOK, sessions)
}
