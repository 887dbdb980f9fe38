package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"checkout-service/errs"
)

// respondError maps a service error onto the HTTP response. This is the
// one place internal errors are logged; services carry the cause inside
// the error instead of logging it themselves. Validation and business-rule
// errors are not logged (the client message is the whole story).
func respondError(c *gin.Context, log *zap.Logger, err *errs.Error) {
	if err.IsInternal() {
		log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.JSON(err.Code, gin.H{"error": err.Message})
}

// parsePaginationParams extracts and validates pagination parameters
func parsePaginationParams(c *gin.Context) (int, int) {
	const maxLimit = 100

	page, limit := 1, 10

	if p, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(c.DefaultQuery("limit", "10")); err == nil && l > 0 {
		limit = l
		if limit > maxLimit {
			limit = maxLimit
		}
	}

	return page, limit
}
