package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/wallsetting-api/internal/middleware"
	"github.com/noah-isme/wallsetting-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// pagingFromQuery reads page and limit, leaving zero for anything missing or
// unparsable so the service applies its defaults.
func pagingFromQuery(c *gin.Context) (int, int) {
	var page, limit int
	if v, err := strconv.Atoi(strings.TrimSpace(c.Query("page"))); err == nil {
		page = v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(c.Query("limit"))); err == nil {
		limit = v
	}
	return page, limit
}
