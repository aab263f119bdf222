package api

import (
	"github.com/gin-gonic/gin"
)

// runScan is a placeholder; the scan flow was never built out.
func (m ApiHandler) runScan(c *gin.Context) {
	c.JSON(200, gin.H{"message": "scan endpoint not implemented yet"})
}
