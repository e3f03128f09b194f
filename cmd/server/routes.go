package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/MarkoPoloResearchLab/booking_widget/internal/httpapi"
)

const (
	healthRoute            = "/healthz"
	metricsRoute           = "/metrics"
	shopWidgetRoute        = "/shops/:id/widget.js"
	shopBookingPageRoute   = "/shops/:id/book"
	apiRoutePrefix         = "/api"
	apiRouteShops          = "/shops"
	apiRouteWidgets        = "/widgets"
	apiRouteTemplate       = "/template"
	corsOriginWildcard     = "*"
	corsHeaderContentType  = "Content-Type"
	corsHeaderIfNoneMatch  = "If-None-Match"
	corsHeaderETag         = "ETag"
	corsHeaderArtifactHash = "X-Artifact-Digest"
	corsMaxAge             = 12 * time.Hour
)

var (
	corsAllowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	corsAllowedHeaders = []string{corsHeaderContentType, corsHeaderIfNoneMatch, httpapi.RequestIDHeader}
	corsExposedHeaders = []string{corsHeaderContentType, corsHeaderETag, corsHeaderArtifactHash, httpapi.RequestIDHeader}
)

func publicCORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     []string{corsOriginWildcard},
		AllowMethods:     corsAllowedMethods,
		AllowHeaders:     corsAllowedHeaders,
		ExposeHeaders:    corsExposedHeaders,
		AllowCredentials: false,
		MaxAge:           corsMaxAge,
	})
}

func registerFrontendRoutes(
	router *gin.Engine,
	widgetHandlers *httpapi.WidgetHandlers,
	bookingPageHandlers *httpapi.BookingPageHandlers,
) {
	router.GET(shopWidgetRoute, widgetHandlers.ShopWidgetJS)
	router.GET(shopBookingPageRoute, bookingPageHandlers.RenderBookingPage)
}

func registerBackendRoutes(
	router *gin.Engine,
	widgetHandlers *httpapi.WidgetHandlers,
	gatherer prometheus.Gatherer,
) {
	apiGroup := router.Group(apiRoutePrefix)
	apiGroup.GET(apiRouteShops, widgetHandlers.ListShops)
	apiGroup.POST(apiRouteWidgets, widgetHandlers.InstantiateWidget)
	apiGroup.GET(apiRouteTemplate, widgetHandlers.TemplateReport)

	router.GET(metricsRoute, httpapi.MetricsHandler(gatherer))
}
