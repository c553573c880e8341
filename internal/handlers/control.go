package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"power_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK = "ok"

	errInvalidControlValue = "Value must be 0 or 1"
	errSwitchUnavailable   = "switch control is shutting down"
	errInternal            = "Internal server error"
	msgNoData              = "No data found"
	errNoPredictionData    = "No historical data available for prediction."
)

// ControlRequest is the body of POST /api/control.
type ControlRequest struct {
	// Desired switch state. Allowed: 0, 1
	Value *int `json:"value" example:"1"`
	// Optional device label, recorded in the command log
	Device string `json:"device,omitempty" example:"sw01"`
}

// ControlResponse acknowledges a queued command.
type ControlResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Control value 1 sent to ESP32 switch"`
	Status  int    `json:"status" example:"1"`
	// Operator the command is attributed to, when operator auth is on
	Operator string `json:"operator,omitempty" example:"shift-lead"`
}

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Drive the switch
// @Description  Queues a command for the switch. Requests inside the quiet period replace each other; only the last one is published.
// @Tags         control
// @Accept       json
// @Produce      json
// @Param        body  body      ControlRequest  true  "Control payload"
// @Success      200   {object}  ControlResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/control [post]
// @Security     BearerAuth
func (h *Handler) control(c *gin.Context) {
	var req ControlRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Value == nil {
		h.log.Infow("control_bad_request_body", "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidControlValue})
		return
	}

	value := *req.Value
	creq := service.ControlRequest{Value: value, Device: req.Device}
	if op, ok := operatorFrom(c); ok {
		creq.OperatorID = op.ID
		creq.Operator = op.Username
	}
	_, err := h.services.SwitchControl.Request(c.Request.Context(), creq)
	switch {
	case errors.Is(err, service.ErrInvalidSwitchValue):
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidControlValue})
		return
	case errors.Is(err, service.ErrSwitchClosed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errSwitchUnavailable})
		return
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "control_request_failed", err, "value", value)
		return
	}

	c.JSON(http.StatusOK, ControlResponse{
		Success:  true,
		Message:  fmt.Sprintf("Control value %d sent to ESP32 switch", value),
		Status:   value,
		Operator: creq.Operator,
	})
}
