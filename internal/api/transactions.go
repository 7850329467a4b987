package api

import (
	"budget_tracker/internal/domain"     // Importing domain models
	"budget_tracker/internal/ledger"     // Ledger core
	"budget_tracker/internal/middleware" // Authenticated user lookup
	"net/http"                           // HTTP status codes
	"time"                               // Optional transaction date

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Exact decimal arithmetic
)

// TransactionRequest is the body of POST /api/user/transactions
type TransactionRequest struct {
	Type     domain.TransactionType `json:"type" binding:"required,oneof=INCOME EXPENSE"`
	Amount   decimal.Decimal        `json:"amount" binding:"required,gt=0"`
	Category string                 `json:"category" binding:"required,notblank,max=100"`
	Detail   string                 `json:"detail" binding:"required,notblank,max=255"`
	Name     string                 `json:"name" binding:"required,notblank,max=100"`
	Date     *time.Time             `json:"date"` // Optional, defaults to now
}

// ListTransactionsHandler returns the caller's transactions, newest first, capped at limit (0 for all)
func ListTransactionsHandler(svc *ledger.Service, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		txs, err := svc.ListTransactions(c.Request.Context(), userID, limit)
		if err != nil {
			respondError(c, err, msgUserNotFound)
			return
		}
		c.JSON(http.StatusOK, gin.H{"transactions": txs})
	}
}

// CreateTransactionHandler records a transaction and returns it with the new balance
func CreateTransactionHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		var req TransactionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": validationErrors(err)})
			return
		}
		// Balances are stored with cent precision
		if !req.Amount.Equal(req.Amount.Round(2)) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []FieldError{
				{Field: "Amount", Message: "Amount must have at most 2 decimal places"},
			}})
			return
		}
		if req.Amount.GreaterThan(domain.MaxAmount) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []FieldError{
				{Field: "Amount", Message: "Amount must be at most " + domain.MaxAmount.StringFixed(2)},
			}})
			return
		}

		in := ledger.NewTransaction{
			Type:     req.Type,
			Amount:   req.Amount,
			Category: req.Category,
			Detail:   req.Detail,
			Name:     req.Name,
		}
		if req.Date != nil {
			in.Date = *req.Date
		}

		tx, balance, err := svc.ApplyTransaction(c.Request.Context(), userID, in)
		if err != nil {
			respondError(c, err, msgUserNotFound)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message":     "Transaction created successfully",
			"transaction": tx,
			"balance":     balance,
		})
	}
}

// DeleteTransactionHandler removes one of the caller's transactions and returns the new balance
func DeleteTransactionHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		balance, err := svc.ReverseTransaction(c.Request.Context(), userID, c.Param("transactionId"))
		if err != nil {
			respondError(c, err, msgTransactionNotFound)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Transaction deleted successfully",
			"balance": balance,
		})
	}
}

// ResetHandler deletes all of the caller's transactions and zeroes the balance
func ResetHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		balance, err := svc.ResetLedger(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err, msgUserNotFound)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "All transactions cleared successfully",
			"balance": balance,
		})
	}
}

// LedgerCheckHandler reports whether the stored balance matches the caller's transactions
func LedgerCheckHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		report, err := svc.Reconcile(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err, msgUserNotFound)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}
