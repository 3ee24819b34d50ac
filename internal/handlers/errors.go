package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shop_manager/internal/services"
)

// respondError maps the service error taxonomy onto HTTP statuses: validation
// and rule-configuration faults are client-facing, persistence failures are
// retryable server errors.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	var rerr *services.RuleEvaluationError
	var perr *services.PersistenceError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": verr.Fields})
	case errors.As(err, &rerr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": rerr.Error(), "hint": "fix the commission rule configuration"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	case errors.As(err, &perr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure, retry the request"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
