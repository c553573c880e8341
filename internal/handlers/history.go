package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"power_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errStartInvalid = "invalid 'start' time; use RFC3339 or YYYY-MM-DD"
	errEndInvalid   = "invalid 'end' time; use RFC3339 or YYYY-MM-DD"
	errLimitInvalid = "invalid 'limit'; use a positive integer"
)

// @Summary      Sensor history
// @Description  Persisted readings, oldest first, at most one per minute. A date-only 'end' covers the whole day.
// @Tags         history
// @Produce      json
// @Param        start  query     string  false  "Start of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"  example(2025-08-01)
// @Param        end    query     string  false  "End of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"  example(2025-08-31)
// @Param        limit  query     int     false  "Maximum rows (default 1000)"
// @Success      200    {array}   models.Reading
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /get-sensor-history [get]
func (h *Handler) getSensorHistory(c *gin.Context) {
	var (
		params service.HistoryParams
		err    error
	)
	if qs := c.Query("start"); qs != "" {
		if params.Start, err = parseQueryTime(qs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errStartInvalid})
			return
		}
	}
	if qs := c.Query("end"); qs != "" {
		if params.End, err = parseQueryTime(qs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errEndInvalid})
			return
		}
		if isDateOnly(qs) {
			params.End = endOfDay(params.End)
		}
	}
	if qs := c.Query("limit"); qs != "" {
		n, convErr := strconv.Atoi(qs)
		if convErr != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": errLimitInvalid})
			return
		}
		params.Limit = n
	}

	rows, err := h.services.History(c.Request.Context(), params)
	if errors.Is(err, service.ErrInvalidTimeRange) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'start' must be <= 'end'"})
		return
	}
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "sensor_history_failed", err,
			"start", params.Start, "end", params.End, "limit", params.Limit)
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": msgNoData})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// @Summary      Latest persisted reading
// @Description  Newest stored reading with power > 0.
// @Tags         history
// @Produce      json
// @Success      200  {object}  models.Reading
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /get-latest-sensor-data [get]
func (h *Handler) getLatestSensorData(c *gin.Context) {
	rd, err := h.services.Latest(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "latest_reading_failed", err)
		return
	}
	if rd == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": msgNoData})
		return
	}
	c.JSON(http.StatusOK, rd)
}

// @Summary      Days with data
// @Description  Distinct days (YYYY-MM-DD) in the forecast time zone that have readings with power > 0, newest first.
// @Tags         history
// @Produce      json
// @Success      200  {array}   string
// @Failure      500  {object}  map[string]string
// @Router       /get-available-dates [get]
func (h *Handler) getAvailableDates(c *gin.Context) {
	dates, err := h.services.AvailableDates(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "available_dates_failed", err)
		return
	}
	if dates == nil {
		dates = []string{}
	}
	c.JSON(http.StatusOK, dates)
}

// @Summary      Monthly forecast
// @Description  Estimated monthly energy (kWh) and cost from history with power > 0.
// @Tags         forecast
// @Produce      json
// @Success      200  {object}  service.ForecastResult
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /predict-power [get]
// @Router       /predict-power [post]
func (h *Handler) predictPower(c *gin.Context) {
	res, err := h.services.Predict(c.Request.Context())
	if errors.Is(err, service.ErrNoData) {
		c.JSON(http.StatusNotFound, gin.H{"error": errNoPredictionData})
		return
	}
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "forecast_failed", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func endOfDay(t time.Time) time.Time {
	return t.Add(24*time.Hour - time.Nanosecond).UTC()
}
