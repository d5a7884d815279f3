package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookswap-api/database"
)

// ListLookups returns the code definitions for the client's dropdowns
func ListLookups(c *gin.Context) {
	lookups, err := database.GetLookups()
	if err != nil {
		fmt.Println(err)
		c.JSON(http.StatusNoContent, nil)
		return
	}

	c.JSON(http.StatusOK, lookups)
}
