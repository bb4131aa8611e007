package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"i4.energy/sms-gateway/eventbus"
	"i4.energy/sms-gateway/modem"
)

// sysVersion godoc
// @Summary Build version
// @Description Always exempt from bearer authorization
// @Tags Sys
// @Produce json
// @Success 200 {string} string
// @Router /sys/version [get]
func (h *Handler) sysVersion(c *gin.Context) {
	c.JSON(http.StatusOK, Version)
}

// sysPhoneNumber godoc
// @Summary The SIM's own subscriber number, if provisioned
// @Tags Sys
// @Produce json
// @Success 200 {object} map[string]string
// @Router /sys/phone-number [get]
func (h *Handler) sysPhoneNumber(c *gin.Context) {
	number, err := h.modem.PhoneNumber(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"phone_number": number})
}

// sysHealthz godoc
// @Summary Readiness probe reporting modem link state
// @Description Exempt from bearer authorization
// @Tags Sys
// @Produce json
// @Success 200 {object} healthzResponse
// @Router /sys/healthz [get]
func (h *Handler) sysHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, healthzResponse{Online: h.online.Load()})
}

// setLogLevel godoc
// @Summary Adjust the runtime log level
// @Description Backed by a slog.LevelVar shared with every package's logger
// @Tags Sys
// @Accept json
// @Produce json
// @Param body body setLogLevelRequest true "one of debug, info, warn, error"
// @Success 200
// @Failure 400 {object} errorResponse
// @Router /sys/set-log-level [post]
func (h *Handler) setLogLevel(c *gin.Context) {
	var req setLogLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(req.Level)); err != nil {
		sendError(c, http.StatusBadRequest, "unrecognized log level: "+req.Level)
		return
	}
	h.logLevel.Set(level)
	h.logger.Info("log level changed via API", "level", req.Level)
	c.Status(http.StatusOK)
}

// watchLinkState keeps h.online current by subscribing to
// eventbus.KindModemLinkState until linkSub is closed by Shutdown.
func (h *Handler) watchLinkState() {
	sub := h.bus.Subscribe([]eventbus.Kind{eventbus.KindModemLinkState}, eventbus.LagDrop, 8)
	h.linkSub = sub
	go func() {
		for ev := range sub.C() {
			if state, ok := ev.Payload.(modem.LinkState); ok {
				h.online.Store(state.Online)
			}
		}
	}()
}
