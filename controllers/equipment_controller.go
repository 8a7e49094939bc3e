package controllers

import (
	"net/http"
	"strconv"

	"schoolgear/app"
	"schoolgear/db"
	"schoolgear/models"

	"github.com/gin-gonic/gin"
)

type EquipmentController struct{ *Srv }

func NewEquipmentController(s *Srv) *EquipmentController { return &EquipmentController{Srv: s} }

// EquipmentInput is the validated create/update body. Unknown-shape input is
// rejected at binding instead of trusted.
type EquipmentInput struct {
	Name          string `json:"name" binding:"required,max=255"`
	CategoryID    uint   `json:"categoryId" binding:"required"`
	TotalQuantity *int   `json:"totalQuantity" binding:"required"`
}

func (ec *EquipmentController) Create(c *gin.Context) {
	var in EquipmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if *in.TotalQuantity < 0 {
		c.JSON(http.StatusBadRequest, app.H{"error": "totalQuantity must be >= 0"})
		return
	}

	// New stock starts fully available.
	e := &models.Equipment{
		Name:              in.Name,
		CategoryID:        in.CategoryID,
		TotalQuantity:     *in.TotalQuantity,
		AvailableQuantity: *in.TotalQuantity,
	}
	if err := ec.Repo.CreateEquipment(c.Request.Context(), e); err != nil {
		writeRepoError(c, ec.Log, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (ec *EquipmentController) List(c *gin.Context) {
	q := db.EquipmentQuery{Search: c.Query("search")}
	if v := c.Query("categoryId"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, app.H{"error": "invalid categoryId"})
			return
		}
		q.CategoryID = uint(id)
	}
	q.OnlyAvailable = c.Query("onlyAvailable") == "true"

	items, err := ec.Repo.ListEquipment(c.Request.Context(), q)
	if err != nil {
		internalError(c, ec.Log, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": items})
}

func (ec *EquipmentController) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid equipment id"})
		return
	}
	e, err := ec.Repo.FindEquipmentByID(c.Request.Context(), uint(id))
	if err != nil {
		writeRepoError(c, ec.Log, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

type EquipmentUpdateInput struct {
	Name              string `json:"name" binding:"required,max=255"`
	CategoryID        uint   `json:"categoryId" binding:"required"`
	TotalQuantity     *int   `json:"totalQuantity" binding:"required"`
	AvailableQuantity *int   `json:"availableQuantity" binding:"required"`
}

func (ec *EquipmentController) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid equipment id"})
		return
	}
	var in EquipmentUpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if err := ec.Repo.UpdateEquipment(c.Request.Context(), uint(id), in.Name, in.CategoryID, *in.TotalQuantity, *in.AvailableQuantity); err != nil {
		writeRepoError(c, ec.Log, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"message": "equipment updated"})
}

func (ec *EquipmentController) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid equipment id"})
		return
	}
	if err := ec.Repo.DeleteEquipment(c.Request.Context(), uint(id)); err != nil {
		writeRepoError(c, ec.Log, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"message": "equipment deleted"})
}
