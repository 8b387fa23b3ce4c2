package handler

import (
	"net/http"

	"github.com/besttroy123/websubiekt-backend/internal/scheduler"
	"github.com/besttroy123/websubiekt-backend/internal/service"
	"github.com/besttroy123/websubiekt-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	inventoryService service.InventoryService
	scheduler        *scheduler.Scheduler
}

func NewInventoryHandler(inventoryService service.InventoryService, sched *scheduler.Scheduler) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService, scheduler: sched}
}

func (h *InventoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	inventory := router.Group("/inventory")
	{
		inventory.GET("", h.GetInventory)
		inventory.GET("/set-interval", h.SetInterval)
	}
}

// GetInventory returns the inventory rows persisted by the last completed
// sync cycle. It never triggers a new cycle.
func (h *InventoryHandler) GetInventory(c *gin.Context) {
	rows, err := h.inventoryService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Err("Failed to fetch inventory data", err))
		return
	}
	c.JSON(http.StatusOK, rows)
}

// SetInterval reconfigures the inventory sync job's period at runtime.
func (h *InventoryHandler) SetInterval(c *gin.Context) {
	every, ok := parseIntervalParam(c)
	if !ok {
		return
	}
	if err := h.scheduler.SetInterval(scheduler.JobInventory, every); err != nil {
		c.JSON(http.StatusInternalServerError, response.Fail("Failed to change inventory update interval"))
		return
	}
	c.JSON(http.StatusOK, response.OK("Inventory update interval changed to "+c.Query("interval")+" ms. Will take effect on next execution."))
}
