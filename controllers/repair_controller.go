package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"schoolgear/app"
	"schoolgear/db"
	"schoolgear/models"

	"github.com/gin-gonic/gin"
)

type RepairController struct{ *Srv }

func NewRepairController(s *Srv) *RepairController { return &RepairController{Srv: s} }

type RepairReportInput struct {
	EquipmentID       uint   `json:"equipmentId" binding:"required"`
	DamageDescription string `json:"damageDescription" binding:"required,max=1000"`
}

// Report logs a damage report. Any authenticated user can file one.
func (rc *RepairController) Report(c *gin.Context) {
	uid, _, ok := app.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	var in RepairReportInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	lg := &models.RepairLog{
		EquipmentID:       in.EquipmentID,
		DamageDescription: in.DamageDescription,
		ReportedBy:        uid,
	}
	if err := rc.Repo.CreateRepairLog(c.Request.Context(), lg); err != nil {
		writeRepoError(c, rc.Log, err)
		return
	}
	c.JSON(http.StatusCreated, lg)
}

func (rc *RepairController) List(c *gin.Context) {
	q := db.RepairLogQuery{OpenOnly: c.Query("open") == "true"}
	if v := c.Query("equipmentId"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, app.H{"error": "invalid equipmentId"})
			return
		}
		q.EquipmentID = uint(id)
	}

	logs, err := rc.Repo.ListRepairLogs(c.Request.Context(), q)
	if err != nil {
		internalError(c, rc.Log, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": logs})
}

type RepairCompleteInput struct {
	RepairCost float64 `json:"repairCost" binding:"required,gt=0"`
	RepairedBy string  `json:"repairedBy" binding:"required,max=100"`
}

// Complete fills in cost and repairer exactly once; completed logs are
// immutable.
func (rc *RepairController) Complete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid repair log id"})
		return
	}
	var in RepairCompleteInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	if err := rc.Repo.CompleteRepairLog(c.Request.Context(), uint(id), in.RepairCost, in.RepairedBy); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "repair log not found or already completed"})
			return
		}
		writeRepoError(c, rc.Log, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"message": "repair log marked as completed"})
}
