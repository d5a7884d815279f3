package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookswap-api/environment"
)

// Test is the plain liveness probe
func Test(c *gin.Context) {

	c.JSON(http.StatusOK, gin.H{"status": "running"})
}

// request registry introspection (admin only, guarded by the routes)

func CountRequests(c *gin.Context) {

	c.JSON(http.StatusOK, environment.Env.Requests.Count())
}

func DumpRequests(c *gin.Context) {

	c.JSON(http.StatusOK, environment.Env.Requests.Dump(50))
}

func FlushRequests(c *gin.Context) {

	environment.Env.Requests.Flush()

	c.Status(http.StatusOK)
}
