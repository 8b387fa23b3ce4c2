package handler

import (
	"context"
	"net/http"

	"github.com/besttroy123/websubiekt-backend/internal/scheduler"
	"github.com/besttroy123/websubiekt-backend/internal/service"
	"github.com/besttroy123/websubiekt-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type SalesReportHandler struct {
	salesService service.SalesService
	scheduler    *scheduler.Scheduler
}

func NewSalesReportHandler(salesService service.SalesService, sched *scheduler.Scheduler) *SalesReportHandler {
	return &SalesReportHandler{salesService: salesService, scheduler: sched}
}

func (h *SalesReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	sales := router.Group("/sales-report")
	{
		sales.GET("", h.GetSalesReport)
		sales.GET("/refresh", h.RefreshSalesReport)
		sales.GET("/set-interval", h.SetInterval)
	}
}

func salesQueryFromRequest(c *gin.Context) service.SalesQuery {
	return service.SalesQuery{
		StartDate:   c.Query("startDate"),
		EndDate:     c.Query("endDate"),
		ProductName: c.Query("productName"),
		Reference:   c.Query("reference"),
	}
}

// GetSalesReport returns the persisted sales rows with optional filters,
// without triggering a sync.
func (h *SalesReportHandler) GetSalesReport(c *gin.Context) {
	res, err := h.salesService.List(c.Request.Context(), salesQueryFromRequest(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Err("Failed to fetch sales report data", err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// RefreshSalesReport forces one synchronous sales sync cycle before
// answering. It runs under the job's lock so a scheduled tick never overlaps
// with it.
func (h *SalesReportHandler) RefreshSalesReport(c *gin.Context) {
	var res service.SalesReportResponse
	err := h.scheduler.RunNow(c.Request.Context(), scheduler.JobSalesReport, func(ctx context.Context) error {
		var runErr error
		res, runErr = h.salesService.Sync(ctx, salesQueryFromRequest(c))
		return runErr
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Err("Failed to refresh sales report data", err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// SetInterval reconfigures the sales report sync job's period at runtime.
func (h *SalesReportHandler) SetInterval(c *gin.Context) {
	every, ok := parseIntervalParam(c)
	if !ok {
		return
	}
	if err := h.scheduler.SetInterval(scheduler.JobSalesReport, every); err != nil {
		c.JSON(http.StatusInternalServerError, response.Fail("Failed to change sales report update interval"))
		return
	}
	c.JSON(http.StatusOK, response.OK("Sales report update interval changed to "+c.Query("interval")+" ms. Will take effect on next execution."))
}
