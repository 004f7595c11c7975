package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"launchpad/internal/services"
)

// respondError writes the JSON error body for err with the status its kind maps to.
func respondError(c *gin.Context, err error) {
	var (
		notFound *services.NotFoundError
		conflict *services.ConflictError
		state    *services.InvalidStateError
		invalid  *services.ValidationError
		upstream *services.UpstreamError
	)

	c.Error(err)
	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": err.Error(),
			"details": gin.H{"entity": notFound.Entity, "id": notFound.ID},
		})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "conflict",
			"message": err.Error(),
			"details": gin.H{"entity": conflict.Entity, "id": conflict.ID},
		})
	case errors.As(err, &state):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "invalid_state",
			"message": err.Error(),
			"details": gin.H{"entity": state.Entity, "id": state.ID, "state": state.State, "reason": state.Reason},
		})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": err.Error(),
			"details": gin.H{"field": invalid.Field, "reason": invalid.Reason},
		})
	case errors.As(err, &upstream):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "upstream_error",
			"message": err.Error(),
			"details": gin.H{"service": upstream.Service},
		})
	default:
		log.Errorf("> unhandled error on %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "internal server error",
			"details": gin.H{},
		})
	}
}

// badRequest reports malformed input that never reached a service.
func badRequest(c *gin.Context, field, reason string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "validation_error",
		"message": "invalid " + field + ": " + reason,
		"details": gin.H{"field": field, "reason": reason},
	})
}
