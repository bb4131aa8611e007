// Package httpapi is the gateway's HTTP adapter: a gin router
// exposing the SMS/GNSS/DB/friendly-name/sys surface over the modem
// driver and message store, plus a WebSocket event feed.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "i4.energy/sms-gateway/docs"
	"i4.energy/sms-gateway/eventbus"
	"i4.energy/sms-gateway/modem"
	"i4.energy/sms-gateway/store"
)

// Version is stamped by the build; exposed unauthenticated at
// /sys/version.
var Version = "dev"

// Config bundles everything the HTTP adapter needs to wire its
// routes; supplied once by main.go after the modem, store and
// eventbus are already running.
type Config struct {
	Addr      string
	AuthToken string
	Modem     *modem.Modem
	Store     *store.Store
	Bus       *eventbus.Bus
	LogLevel  *slog.LevelVar
	Logger    *slog.Logger
}

// Handler owns the gin router and the underlying *http.Server,
// mirroring the teacher's Handler{server *http.Server} shape.
type Handler struct {
	modem    *modem.Modem
	store    *store.Store
	bus      *eventbus.Bus
	logLevel *slog.LevelVar
	logger   *slog.Logger

	online  atomic.Bool
	linkSub *eventbus.Subscription

	server *http.Server
}

// @title SMS Gateway API
// @version 1.0
// @description HTTP adapter for a serial-attached GSM/GNSS modem gateway
// @BasePath /
func NewHandler(cfg Config) *Handler {
	h := &Handler{
		modem:    cfg.Modem,
		store:    cfg.Store,
		bus:      cfg.Bus,
		logLevel: cfg.LogLevel,
		logger:   cfg.Logger.With("component", "httpapi"),
	}

	h.watchLinkState()

	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger())
	router.Use(bearerAuth(cfg.AuthToken))

	router.POST("/sms/send", h.sendSMS)
	router.GET("/sms/network-status", h.networkStatus)
	router.GET("/sms/signal-strength", h.signalStrength)
	router.GET("/sms/network-operator", h.networkOperator)
	router.GET("/sms/service-provider", h.serviceProvider)
	router.GET("/sms/battery-level", h.batteryLevel)
	router.GET("/sms/device-info", h.deviceInfo)

	router.GET("/gnss/status", h.gnssStatus)
	router.GET("/gnss/location", h.gnssLocation)

	router.POST("/db/sms", h.dbMessages)
	router.POST("/db/latest-numbers", h.dbLatestNumbers)
	router.POST("/db/delivery-reports", h.dbDeliveryReports)

	router.POST("/friendly-names", h.setFriendlyName)
	router.GET("/friendly-names/:phone_number", h.getFriendlyName)

	router.GET("/sys/version", h.sysVersion)
	router.GET("/sys/phone-number", h.sysPhoneNumber)
	router.GET("/sys/healthz", h.sysHealthz)
	router.POST("/sys/set-log-level", h.setLogLevel)

	router.GET("/ws", h.serveWebSocket)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	h.server = &http.Server{
		Addr:    cfg.Addr,
		Handler: router.Handler(),
	}
	return h
}

// requestLogger emits one structured log line per request, in place
// of gin's default text logger, matching the rest of the repository's
// slog usage.
func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		h.logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
		)
	}
}

// Run starts serving and blocks until the server is shut down.
func (h *Handler) Run() error {
	err := h.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully drains in-flight requests.
func (h *Handler) Shutdown(ctx context.Context) error {
	if h.linkSub != nil {
		h.linkSub.Close()
	}
	return h.server.Shutdown(ctx)
}
