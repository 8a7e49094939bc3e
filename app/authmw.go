package app

import (
	"net/http"
	"strings"

	"schoolgear/auth"
	"schoolgear/db"
	"schoolgear/session"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthRequired.
const (
	CtxUserID = "userID"
	CtxRole   = "role"
	CtxClaims = "claims"
)

// AuthRequired parses the bearer token, rejects revoked tokens, confirms the
// user still exists, and puts the principal into the gin context.
func AuthRequired(issuer *auth.TokenIssuer, tokens *session.TokenStore, repo *db.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}

		claims, err := issuer.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid credentials or expired token"})
			return
		}

		if revoked, err := tokens.IsRevoked(c.Request.Context(), claims.ID); err != nil || revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid credentials or expired token"})
			return
		}

		u, err := repo.FindUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}

		c.Set(CtxUserID, u.ID)
		c.Set(CtxRole, u.Role)
		c.Set(CtxClaims, claims)
		c.Next()
	}
}

// RequireRoles is the single authorization gate: it admits the request only
// when the authenticated principal holds one of the allowed roles.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxRole)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		role, _ := v.(string)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, H{
			"error": "access forbidden, required role(s): " + strings.Join(roles, ", "),
		})
	}
}

// Principal pulls the authenticated user id and role out of the context.
func Principal(c *gin.Context) (uint, string, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return 0, "", false
	}
	id, _ := v.(uint)
	r, _ := c.Get(CtxRole)
	role, _ := r.(string)
	return id, role, id != 0
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
