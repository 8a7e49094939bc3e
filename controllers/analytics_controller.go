package controllers

import (
	"net/http"

	"schoolgear/app"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct{ *Srv }

func NewAnalyticsController(s *Srv) *AnalyticsController { return &AnalyticsController{Srv: s} }

// TopRequested reports the five most requested equipment types by total
// quantity borrowed.
func (ac *AnalyticsController) TopRequested(c *gin.Context) {
	rows, err := ac.Repo.TopRequested(c.Request.Context(), 5)
	if err != nil {
		internalError(c, ac.Log, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": rows})
}

// AverageDuration reports mean loan duration in days per equipment type.
func (ac *AnalyticsController) AverageDuration(c *gin.Context) {
	rows, err := ac.Repo.AverageLoanDuration(c.Request.Context())
	if err != nil {
		internalError(c, ac.Log, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": rows})
}
