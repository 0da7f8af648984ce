// internal/handlers/middleware.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/newambition/convince/internal/models"
)

// userContextKey is where RequireUser stores the resolved identity.
const userContextKey = "convince.user"

// RequireUser guards an endpoint behind bearer authentication. The
// credential is resolved by the identity provider; any failure aborts
// the request with 401 before the handler runs.
func (h *Handler) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c)
			return
		}

		user, err := h.auth.ResolveUser(c.Request.Context(), token)
		if err != nil {
			log.WithError(err).Debug("Bearer token rejected")
			unauthorized(c)
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// currentUser returns the identity RequireUser stored. Only valid on
// routes mounted behind RequireUser.
func currentUser(c *gin.Context) models.User {
	v, _ := c.Get(userContextKey)
	user, _ := v.(models.User)
	return user
}

// bearerToken extracts the credential from an Authorization header.
func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Detail: "Could not validate credentials"})
}
