package controllers

import (
	"net/http"
	"strconv"

	"schoolgear/app"
	"schoolgear/models"

	"github.com/gin-gonic/gin"
)

type CategoryController struct{ *Srv }

func NewCategoryController(s *Srv) *CategoryController { return &CategoryController{Srv: s} }

type CategoryInput struct {
	CategoryName string `json:"categoryName" binding:"required,max=100"`
	Description  string `json:"description" binding:"omitempty,max=500"`
}

func (cc *CategoryController) Create(c *gin.Context) {
	var in CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	cat := &models.EquipmentCategory{Name: in.CategoryName, Description: in.Description}
	if err := cc.Repo.CreateCategory(c.Request.Context(), cat); err != nil {
		writeRepoError(c, cc.Log, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (cc *CategoryController) List(c *gin.Context) {
	cats, err := cc.Repo.ListCategories(c.Request.Context())
	if err != nil {
		internalError(c, cc.Log, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": cats})
}

func (cc *CategoryController) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid category id"})
		return
	}
	var in CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if err := cc.Repo.UpdateCategory(c.Request.Context(), uint(id), in.CategoryName, in.Description); err != nil {
		writeRepoError(c, cc.Log, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"message": "category updated"})
}

func (cc *CategoryController) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid category id"})
		return
	}
	if err := cc.Repo.DeleteCategory(c.Request.Context(), uint(id)); err != nil {
		writeRepoError(c, cc.Log, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"message": "category deleted"})
}
