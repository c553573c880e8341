package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      Live sensor snapshot
// @Description  Latest value per channel plus the confirmed switch state. Values are 0 until the first message arrives.
// @Tags         live
// @Produce      json
// @Success      200  {object}  models.Snapshot
// @Router       /api/sensor-data [get]
func (h *Handler) getSensorData(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.GetSnapshot())
}

// @Summary      Switch status
// @Description  Last state reported by the switch, and the queued command if one has not fired yet.
// @Tags         live
// @Produce      json
// @Success      200  {object}  service.SwitchStatus
// @Router       /api/switch-status [get]
func (h *Handler) getSwitchStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.GetSwitchStatus())
}
