package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/besttroy123/websubiekt-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// parseIntervalParam reads the ?interval= query parameter in milliseconds.
// Absent, non-numeric or non-positive values answer 400 and return ok=false;
// the scheduler is left untouched in that case.
func parseIntervalParam(c *gin.Context) (time.Duration, bool) {
	raw := c.Query("interval")
	ms, err := strconv.ParseInt(raw, 10, 64)
	if raw == "" || err != nil || ms <= 0 {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid interval value. Please provide a valid number in milliseconds."))
		return 0, false
	}
	return time.Duration(ms) * time.Millisecond, true
}
