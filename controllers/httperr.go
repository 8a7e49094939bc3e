package controllers

import (
	"errors"
	"net/http"

	"schoolgear/db"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// internalError logs the raw datastore error and answers with an opaque
// message; driver error text never reaches the client.
func internalError(c *gin.Context, log zerolog.Logger, err error) {
	log.Error().Err(err).Str("path", c.FullPath()).Msg("internal error")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// repoStatus provides the default failure-class mapping. Lending endpoints
// override individual classes where the API contract differs.
func repoStatus(err error) (int, string) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, db.ErrValidation):
		return http.StatusBadRequest, "invalid input"
	case errors.Is(err, db.ErrInsufficientInventory):
		return http.StatusBadRequest, "insufficient quantity available"
	case errors.Is(err, db.ErrInvalidState):
		return http.StatusBadRequest, "request not in required state"
	case errors.Is(err, db.ErrConflict):
		return http.StatusConflict, "already exists"
	}
	return 0, ""
}

func writeRepoError(c *gin.Context, log zerolog.Logger, err error) {
	if code, msg := repoStatus(err); code != 0 {
		c.JSON(code, gin.H{"error": msg})
		return
	}
	internalError(c, log, err)
}
