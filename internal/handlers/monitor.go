package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const statusOK = "ok"

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

// @Summary      Peak monitor view
// @Description  Latest rendered convolver peak log, most recent first, filtered by the watermark.
// @Tags         monitor
// @Produce      json
// @Success      200  {object}  models.MonitorSnapshot
// @Router       /api/v1/monitor [get]
func (h *Handler) getMonitor(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.PeakMonitor.Snapshot())
}

// @Summary      Clear old peaks
// @Description  Hides every peak stamped at or before the current local time. The daemon's log is untouched.
// @Tags         monitor
// @Produce      json
// @Success      200  {object}  models.MonitorSnapshot
// @Router       /api/v1/monitor/clear [post]
func (h *Handler) clearPeaks(c *gin.Context) {
	snap := h.services.PeakMonitor.ResetWatermark()
	if h.log != nil {
		h.log.Infow("peaks_cleared", "watermark", snap.Watermark)
	}
	c.JSON(http.StatusOK, snap)
}

// @Summary      Show all peaks
// @Description  Removes the watermark so the whole daily log is shown again.
// @Tags         monitor
// @Produce      json
// @Success      200  {object}  models.MonitorSnapshot
// @Router       /api/v1/monitor/watermark [delete]
func (h *Handler) showAllPeaks(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.PeakMonitor.ShowAll())
}
