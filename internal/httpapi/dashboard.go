package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) dashboardStats(c *gin.Context) {
	stats, err := a.stats.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgFetchFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
