package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bookswap-api/apperror"
	"bookswap-api/environment"
)

// startDate reads the startDT query parameter, defaulting to 7 days back
// (starting at 00:00:00)
func startDate(c *gin.Context) (time.Time, error) {

	startStr := c.Query("startDT")
	if startStr == "" {
		startDT := time.Now().AddDate(0, 0, -7)
		return time.Date(startDT.Year(), startDT.Month(), startDT.Day(), 0, 0, 0, 0, startDT.UTC().Location()), nil
	}

	return time.Parse("2006-01-02", startStr)
}

// GetVisits counts the visits of a book profile (admin only, guarded by the route)
// format => http://localhost:3000/stats/visits?id=604b6859f09f3aeecc9215c5&startDT=2021-03-20
func GetVisits(c *gin.Context) {

	var apiError ErrorResponse

	id := c.Query("id")
	if id == "" {
		apiError.Code = InvalidRequest
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	startDT, err := startDate(c)
	if err != nil {
		apiError.Code = InvalidRequest
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	visits, err := environment.Env.Tracker.GetVisits("book", id, startDT)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	// wrap response into an object
	res := struct {
		Visits int64 `json:"visits"`
	}{visits}

	c.JSON(http.StatusOK, res)
}

// ListVisitors returns the most recent visitors of a book profile
// (admin only, guarded by the route)
func ListVisitors(c *gin.Context) {

	var apiError ErrorResponse

	id := c.Query("id")
	if id == "" {
		apiError.Code = InvalidRequest
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	startDT, err := startDate(c)
	if err != nil {
		apiError.Code = InvalidRequest
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	visitors, err := environment.Env.Tracker.ListVisitors(id, startDT)
	if err != nil {
		if err == apperror.ErrNoData {
			c.Status(http.StatusNoContent)
			return
		}
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	if visitors == nil {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, visitors)
}

// PurgeVisits drops visit data older than the given date
// (admin only, guarded by the route)
// format => http://localhost:3000/stats/visits?before=2021-03-20
func PurgeVisits(c *gin.Context) {

	var apiError ErrorResponse

	before, err := time.Parse("2006-01-02", c.Query("before"))
	if err != nil {
		apiError.Code = InvalidRequest
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	err = environment.Env.Tracker.PurgeVisits(before)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.Status(http.StatusOK)
}
