package handlers

import (
	"errors"
	"net/http"

	"github.com/andresuchdata/uniform-ledger/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// writeError maps domain errors to status codes. Anything unrecognized is
// logged and returned as a generic 500.
func writeError(c *gin.Context, err error) {
	var (
		amb      *domain.AmbiguityError
		verr     *domain.ValidationError
		notFound *domain.NotFoundError
	)

	switch {
	case errors.As(err, &amb):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      amb.Error(),
			"code":       amb.Code(),
			"field":      "size",
			"candidates": amb.Candidates,
		})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": verr.Error(),
			"code":  verr.Code(),
			"field": verr.Field,
		})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": notFound.Error(),
			"code":  notFound.Code(),
		})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, field, message string) {
	writeError(c, domain.NewValidationError(field, message))
}
