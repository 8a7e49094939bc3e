package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"schoolgear/app"
	"schoolgear/db"
	"schoolgear/models"

	"github.com/gin-gonic/gin"
)

type LendingController struct{ *Srv }

func NewLendingController(s *Srv) *LendingController { return &LendingController{Srv: s} }

const dateLayout = "2006-01-02"

type LendingRequestInput struct {
	EquipmentID        uint   `json:"equipmentId" binding:"required"`
	Quantity           int    `json:"quantity" binding:"required,min=1"`
	ExpectedReturnDate string `json:"expectedReturnDate" binding:"required"`
}

// Create files a Pending request for the authenticated student/staff member.
func (lc *LendingController) Create(c *gin.Context) {
	uid, _, ok := app.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}

	var in LendingRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	due, err := time.Parse(dateLayout, in.ExpectedReturnDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "expectedReturnDate must be YYYY-MM-DD"})
		return
	}

	req := &models.LendingRequest{
		EquipmentID:        in.EquipmentID,
		RequesterID:        uid,
		Quantity:           in.Quantity,
		ExpectedReturnDate: due,
	}
	if err := lc.Repo.CreateRequest(c.Request.Context(), req); err != nil {
		// Unknown equipment answers 400 here, same as an oversized request.
		switch {
		case errors.Is(err, db.ErrNotFound),
			errors.Is(err, db.ErrInsufficientInventory):
			c.JSON(http.StatusBadRequest, app.H{"error": "insufficient quantity available"})
		case errors.Is(err, db.ErrValidation):
			c.JSON(http.StatusBadRequest, app.H{"error": "quantity must be >= 1"})
		default:
			internalError(c, lc.Log, err)
		}
		return
	}
	c.JSON(http.StatusCreated, req)
}

// Approve issues a pending request and reserves its quantity.
func (lc *LendingController) Approve(c *gin.Context) {
	requestID, approverID, ok := lc.requestAndPrincipal(c)
	if !ok {
		return
	}

	req, err := lc.Repo.ApproveRequest(c.Request.Context(), requestID, approverID)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound), errors.Is(err, db.ErrInvalidState):
			c.JSON(http.StatusNotFound, app.H{"error": "request not found or not in 'Pending' status"})
		case errors.Is(err, db.ErrInsufficientInventory):
			c.JSON(http.StatusBadRequest, app.H{"error": "insufficient quantity available"})
		default:
			internalError(c, lc.Log, err)
		}
		return
	}
	c.JSON(http.StatusOK, app.H{
		"message": fmt.Sprintf("request %d approved and item issued", requestID),
		"request": req,
	})
}

type RejectInput struct {
	Reason string `json:"reason" binding:"omitempty,max=1000"`
}

// Reject terminates a pending request; inventory is untouched.
func (lc *LendingController) Reject(c *gin.Context) {
	requestID, approverID, ok := lc.requestAndPrincipal(c)
	if !ok {
		return
	}

	// An absent body means no reason; a malformed body is still rejected.
	var in RejectInput
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	req, err := lc.Repo.RejectRequest(c.Request.Context(), requestID, approverID, in.Reason)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			c.JSON(http.StatusNotFound, app.H{"error": "request not found"})
		case errors.Is(err, db.ErrInvalidState):
			c.JSON(http.StatusBadRequest, app.H{"error": "request not in 'Pending' status"})
		default:
			internalError(c, lc.Log, err)
		}
		return
	}
	resp := app.H{"message": fmt.Sprintf("request %d rejected", requestID)}
	if req.RejectionReason != nil {
		resp["reason"] = *req.RejectionReason
	}
	c.JSON(http.StatusOK, resp)
}

// Return closes an issued request and releases its quantity.
func (lc *LendingController) Return(c *gin.Context) {
	requestID, approverID, ok := lc.requestAndPrincipal(c)
	if !ok {
		return
	}

	_, err := lc.Repo.ReturnRequest(c.Request.Context(), requestID, approverID)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound), errors.Is(err, db.ErrInvalidState):
			c.JSON(http.StatusNotFound, app.H{"error": "request not found or not in 'Issued' status"})
		default:
			internalError(c, lc.Log, err)
		}
		return
	}
	c.JSON(http.StatusOK, app.H{
		"message": fmt.Sprintf("item from request %d returned successfully", requestID),
	})
}

// Overdue lists issued requests past their due date for the notification
// report.
func (lc *LendingController) Overdue(c *gin.Context) {
	rows, err := lc.Repo.ListOverdue(c.Request.Context(), time.Now().UTC())
	if err != nil {
		internalError(c, lc.Log, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": rows})
}

// List returns requests newest first, optionally filtered by ?status=.
func (lc *LendingController) List(c *gin.Context) {
	reqs, err := lc.Repo.ListRequests(c.Request.Context(), c.Query("status"))
	if err != nil {
		if errors.Is(err, db.ErrValidation) {
			c.JSON(http.StatusBadRequest, app.H{"error": "unknown status"})
			return
		}
		internalError(c, lc.Log, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": reqs})
}

// Mine returns the authenticated user's own requests.
func (lc *LendingController) Mine(c *gin.Context) {
	uid, _, ok := app.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	reqs, err := lc.Repo.ListRequestsByRequester(c.Request.Context(), uid)
	if err != nil {
		internalError(c, lc.Log, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": reqs})
}

func (lc *LendingController) requestAndPrincipal(c *gin.Context) (requestID, userID uint, ok bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid request id"})
		return 0, 0, false
	}
	uid, _, has := app.Principal(c)
	if !has {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return 0, 0, false
	}
	return uint(id), uid, true
}
