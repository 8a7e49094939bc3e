package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"schoolgear/app"
	"schoolgear/auth"
	"schoolgear/db"
	"schoolgear/models"

	"github.com/gin-gonic/gin"
)

type UserController struct{ *Srv }

func NewUserController(s *Srv) *UserController { return &UserController{Srv: s} }

type SignupInput struct {
	Username    string `json:"username" binding:"required,max=100"`
	Password    string `json:"password" binding:"required,min=8"`
	FullName    string `json:"fullName" binding:"required,max=255"`
	Email       string `json:"email" binding:"required,email,max=150"`
	PhoneNumber string `json:"phoneNumber" binding:"omitempty,max=15"`
	Role        string `json:"role" binding:"required"`
}

// Signup creates an account. Admin-only, enforced in the route chain.
func (uc *UserController) Signup(c *gin.Context) {
	var in SignupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if !models.ValidRole(in.Role) {
		c.JSON(http.StatusBadRequest, app.H{"error": "role must be Student, Staff or Admin"})
		return
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		internalError(c, uc.Log, err)
		return
	}

	u := &models.User{
		Username:     in.Username,
		PasswordHash: hash,
		FullName:     in.FullName,
		Role:         in.Role,
		Email:        in.Email,
		PhoneNumber:  in.PhoneNumber,
	}
	if err := uc.Repo.CreateUser(c.Request.Context(), u); err != nil {
		if errors.Is(err, db.ErrConflict) {
			c.JSON(http.StatusConflict, app.H{"error": "username or email already registered"})
			return
		}
		internalError(c, uc.Log, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (uc *UserController) Login(c *gin.Context) {
	var in LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	u, err := uc.Repo.FindUserByUsername(c.Request.Context(), in.Username)
	if err != nil || !auth.VerifyPassword(in.Password, u.PasswordHash) {
		c.JSON(http.StatusUnauthorized, app.H{"error": "incorrect username or password"})
		return
	}

	token, claims, err := uc.Issuer.Issue(u.ID, u.Role)
	if err != nil {
		internalError(c, uc.Log, err)
		return
	}
	if err := uc.Tokens.Track(c.Request.Context(), claims.ID, u.ID, auth.TokenTTL); err != nil {
		uc.Log.Warn().Err(err).Uint("user_id", u.ID).Msg("token tracking failed")
	}

	c.JSON(http.StatusOK, app.H{
		"accessToken": token,
		"tokenType":   "bearer",
		"userId":      u.ID,
		"role":        u.Role,
		"fullName":    u.FullName,
	})
}

// Logout denylists the presented token for its remaining lifetime.
func (uc *UserController) Logout(c *gin.Context) {
	v, ok := c.Get(app.CtxClaims)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	claims := v.(*auth.Claims)
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := uc.Tokens.Revoke(c.Request.Context(), claims.ID, claims.UserID, ttl); err != nil {
		internalError(c, uc.Log, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (uc *UserController) Me(c *gin.Context) {
	uid, _, ok := app.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	u, err := uc.Repo.FindUserByID(c.Request.Context(), uid)
	if err != nil {
		writeRepoError(c, uc.Log, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (uc *UserController) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := uc.Repo.ListUsers(c.Request.Context(), c.Query("q"), page, size)
	if err != nil {
		internalError(c, uc.Log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// DeleteUser removes the account and revokes every outstanding token for it.
func (uc *UserController) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid user id"})
		return
	}
	if err := uc.Repo.DeleteUserByID(c.Request.Context(), uint(id)); err != nil {
		writeRepoError(c, uc.Log, err)
		return
	}
	if err := uc.Tokens.RevokeAllForUser(c.Request.Context(), uint(id), auth.TokenTTL); err != nil {
		uc.Log.Warn().Err(err).Uint64("user_id", id).Msg("token revocation failed")
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
