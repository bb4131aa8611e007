package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// sendSMS godoc
// @Summary Send an SMS
// @Description Encodes and submits one or more SMS-SUBMIT PDUs to the modem
// @Tags SMS
// @Accept json
// @Produce json
// @Param body body sendSmsRequest true "destination and content"
// @Success 200 {array} sendSmsResponse
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /sms/send [post]
func (h *Handler) sendSMS(c *gin.Context) {
	var req sendSmsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}

	results, err := h.modem.SendMessage(c.Request.Context(), req.To, req.Content, req.Flash)
	if err != nil {
		abortWithError(c, err)
		return
	}

	out := make([]sendSmsResponse, len(results))
	for i, r := range results {
		out[i] = sendSmsResponse{
			MessageID:    r.MessageID,
			ReferenceID:  r.Reference,
			SegmentIndex: r.SegmentIndex,
			Segments:     r.Segments,
		}
	}
	c.JSON(http.StatusOK, out)
}

// networkStatus godoc
// @Summary Circuit-switched registration status
// @Tags SMS
// @Produce json
// @Success 200 {object} networkStatusResponse
// @Router /sms/network-status [get]
func (h *Handler) networkStatus(c *gin.Context) {
	status, err := h.modem.NetworkStatus(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, networkStatusResponse{Registered: status.Registered, Roaming: status.Roaming, Raw: status.Raw})
}

// signalStrength godoc
// @Summary Current RSSI/BER
// @Tags SMS
// @Produce json
// @Success 200 {object} signalStrengthResponse
// @Router /sms/signal-strength [get]
func (h *Handler) signalStrength(c *gin.Context) {
	sig, err := h.modem.SignalQuality(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, signalStrengthResponse{RSSI: sig.RSSI, BER: sig.BER})
}

// networkOperator godoc
// @Summary Registered network operator name
// @Tags SMS
// @Produce json
// @Success 200 {object} networkOperatorResponse
// @Router /sms/network-operator [get]
func (h *Handler) networkOperator(c *gin.Context) {
	op, err := h.modem.NetworkOperator(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, networkOperatorResponse{Operator: op})
}

// serviceProvider godoc
// @Summary SIM-stored service provider name
// @Tags SMS
// @Produce json
// @Success 200 {object} serviceProviderResponse
// @Router /sms/service-provider [get]
func (h *Handler) serviceProvider(c *gin.Context) {
	sp, err := h.modem.ServiceProvider(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, serviceProviderResponse{ServiceProvider: sp})
}

// batteryLevel godoc
// @Summary Battery charge state and percentage
// @Tags SMS
// @Produce json
// @Success 200 {object} batteryLevelResponse
// @Router /sms/battery-level [get]
func (h *Handler) batteryLevel(c *gin.Context) {
	level, err := h.modem.BatteryLevel(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, batteryLevelResponse{Charging: level.Charging, Percentage: level.Percentage})
}

// deviceInfo godoc
// @Summary Modem manufacturer/model/firmware/serial
// @Tags SMS
// @Produce json
// @Success 200 {object} deviceInfoResponse
// @Router /sms/device-info [get]
func (h *Handler) deviceInfo(c *gin.Context) {
	info, err := h.modem.DeviceInfo(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, deviceInfoResponse{
		Version:          Version,
		Manufacturer:     info.Manufacturer,
		Model:            info.Model,
		FirmwareRevision: info.FirmwareRevision,
		SerialNumber:     info.SerialNumber,
	})
}
