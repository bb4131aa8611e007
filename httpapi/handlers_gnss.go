package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// gnssStatus godoc
// @Summary Whether the modem currently has a GNSS fix
// @Tags GNSS
// @Produce json
// @Success 200 {object} gnssStatusResponse
// @Router /gnss/status [get]
func (h *Handler) gnssStatus(c *gin.Context) {
	fix, _ := h.modem.GNSSFix()
	c.JSON(http.StatusOK, gnssStatusResponse{Fixed: fix.Fixed, Satellites: fix.Satellites})
}

// gnssLocation godoc
// @Summary Last known GNSS fix
// @Description Returns the most recent +CGNSINF/+UGNSINF report cached by the modem driver; fixed=false if none has arrived yet
// @Tags GNSS
// @Produce json
// @Success 200 {object} gnssLocationResponse
// @Router /gnss/location [get]
func (h *Handler) gnssLocation(c *gin.Context) {
	fix, _ := h.modem.GNSSFix()
	c.JSON(http.StatusOK, gnssLocationResponse{
		Fixed:          fix.Fixed,
		Latitude:       fix.Latitude,
		Longitude:      fix.Longitude,
		AltitudeMeters: fix.AltitudeMeters,
		SpeedKmh:       fix.SpeedKmh,
		CourseDegrees:  fix.CourseDegrees,
		Timestamp:      fix.Timestamp.Unix(),
	})
}
