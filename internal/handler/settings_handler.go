package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/besttroy123/websubiekt-backend/internal/scheduler"
	"github.com/besttroy123/websubiekt-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// SettingsHandler exposes the shared polling configuration: a read endpoint
// and a set-interval that reconfigures every registered sync job at once.
type SettingsHandler struct {
	scheduler *scheduler.Scheduler
	jobNames  []string
}

func NewSettingsHandler(sched *scheduler.Scheduler, jobNames []string) *SettingsHandler {
	return &SettingsHandler{scheduler: sched, jobNames: jobNames}
}

func (h *SettingsHandler) RegisterRoutes(router *gin.RouterGroup) {
	settings := router.Group("/api-settings")
	{
		settings.GET("", h.GetSettings)
		settings.GET("/set-interval", h.SetInterval)
	}
}

// GetSettings reports the current update interval. Jobs share a default and
// are reported individually in case per-job overrides made them diverge.
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	intervals := make(map[string]int64, len(h.jobNames))
	var first int64
	for i, name := range h.jobNames {
		every, ok := h.scheduler.Interval(name)
		if !ok {
			continue
		}
		ms := every.Milliseconds()
		intervals[name] = ms
		if i == 0 {
			first = ms
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"update_interval":          strconv.FormatInt(first, 10),
		"update_interval_readable": readableInterval(first),
		"job_intervals":            intervals,
	})
}

// SetInterval applies a new period to every sync job.
func (h *SettingsHandler) SetInterval(c *gin.Context) {
	every, ok := parseIntervalParam(c)
	if !ok {
		return
	}
	for _, name := range h.jobNames {
		if err := h.scheduler.SetInterval(name, every); err != nil {
			c.JSON(http.StatusInternalServerError, response.Fail("Failed to change API update interval"))
			return
		}
	}
	c.JSON(http.StatusOK, response.OK(fmt.Sprintf("Update interval for all APIs changed to %s ms. Will take effect immediately on next execution.", c.Query("interval"))))
}

func readableInterval(ms int64) string {
	seconds := float64(ms%60000) / 1000
	return fmt.Sprintf("%d minutes %s seconds", ms/60000, strconv.FormatFloat(seconds, 'f', -1, 64))
}
