package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/MarkoPoloResearchLab/booking_widget/internal/httpapi"
	"github.com/MarkoPoloResearchLab/booking_widget/internal/shop"
	"github.com/MarkoPoloResearchLab/booking_widget/internal/testutil"
	"github.com/MarkoPoloResearchLab/booking_widget/internal/widget"
)

const testPublicBaseURL = "https://widgets.example/"

type apiHarness struct {
	router   *gin.Engine
	catalog  *shop.Catalog
	metrics  *httpapi.WidgetMetrics
	registry *prometheus.Registry
}

func buildAPIHarness(testingT *testing.T, configurations ...shop.Configuration) apiHarness {
	testingT.Helper()
	return buildAPIHarnessWithTemplate(testingT, widget.DefaultTemplate(), configurations...)
}

func buildAPIHarnessWithTemplate(testingT *testing.T, widgetTemplate *widget.Template, configurations ...shop.Configuration) apiHarness {
	testingT.Helper()
	gin.SetMode(gin.TestMode)

	if len(configurations) == 0 {
		configurations = []shop.Configuration{testutil.StudioConfiguration()}
	}
	catalog, catalogErr := shop.NewCatalog(configurations...)
	require.NoError(testingT, catalogErr)

	logger := testutil.NewTestLogger(testingT)
	registry := prometheus.NewRegistry()
	metrics := httpapi.NewWidgetMetrics(registry)
	widgetHandlers := httpapi.NewWidgetHandlers(catalog, widgetTemplate, logger, metrics, testPublicBaseURL)
	bookingPageHandlers := httpapi.NewBookingPageHandlers(catalog, logger, testPublicBaseURL)

	router := gin.New()
	router.Use(httpapi.RequestID(), httpapi.RequestLogger(logger))
	router.GET("/shops/:id/widget.js", widgetHandlers.ShopWidgetJS)
	router.GET("/shops/:id/book", bookingPageHandlers.RenderBookingPage)
	router.GET("/api/shops", widgetHandlers.ListShops)
	router.POST("/api/widgets", widgetHandlers.InstantiateWidget)
	router.GET("/api/template", widgetHandlers.TemplateReport)
	router.GET("/healthz", widgetHandlers.Health)
	router.GET("/metrics", httpapi.MetricsHandler(registry))

	return apiHarness{
		router:   router,
		catalog:  catalog,
		metrics:  metrics,
		registry: registry,
	}
}

func performJSONRequest(testingT *testing.T, router http.Handler, method string, path string, payload any, headers map[string]string) *httptest.ResponseRecorder {
	testingT.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(testingT, json.NewEncoder(&body).Encode(payload))
	}
	request := httptest.NewRequest(method, path, &body)
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	for headerName, headerValue := range headers {
		request.Header.Set(headerName, headerValue)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func decodeJSONBody(testingT *testing.T, recorder *httptest.ResponseRecorder, destination any) {
	testingT.Helper()
	require.NoError(testingT, json.Unmarshal(recorder.Body.Bytes(), destination))
}

func instantiationCount(testingT *testing.T, harness apiHarness, source string, result string) float64 {
	testingT.Helper()

	metricFamilies, gatherErr := harness.registry.Gather()
	require.NoError(testingT, gatherErr)
	for _, metricFamily := range metricFamilies {
		if metricFamily.GetName() != instantiationsKey {
			continue
		}
		for _, metric := range metricFamily.GetMetric() {
			labels := make(map[string]string, len(metric.GetLabel()))
			for _, label := range metric.GetLabel() {
				labels[label.GetName()] = label.GetValue()
			}
			if labels["source"] == source && labels["result"] == result {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}
