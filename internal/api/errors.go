package api

import (
	"budget_tracker/internal/ledger" // Ledger error values
	"errors"                         // Error inspection
	"net/http"                       // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

const (
	msgInternal            = "Internal Server Error"
	msgUserNotFound        = "User not found"
	msgTransactionNotFound = "Transaction not found or unauthorized"
)

// respondError maps ledger errors onto HTTP responses. Missing and foreign
// resources share one 404 so clients cannot tell them apart. Details of
// unexpected failures are logged by the ledger and never sent to the client.
func respondError(c *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, ledger.ErrNotFound), errors.Is(err, ledger.ErrForbidden):
		c.JSON(http.StatusNotFound, gin.H{"message": notFound})
	case errors.Is(err, ledger.ErrInvalidTransaction):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid transaction"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgInternal})
	}
}
