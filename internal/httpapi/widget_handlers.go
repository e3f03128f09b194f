package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/booking_widget/internal/shop"
	"github.com/MarkoPoloResearchLab/booking_widget/internal/widget"
)

const (
	contentTypeJavaScript = "application/javascript; charset=utf-8"

	headerETag            = "ETag"
	headerIfNoneMatch     = "If-None-Match"
	headerCacheControl    = "Cache-Control"
	headerArtifactDigest  = "X-Artifact-Digest"
	widgetCacheControl    = "public, max-age=300, must-revalidate"
	shopWidgetPathFormat  = "/shops/%s/widget.js"
	shopBookingPathFormat = "/shops/%s/book"

	errorCodeUnknownShop          = "unknown_shop"
	errorCodeInvalidJSON          = "invalid_json"
	errorCodeInvalidConfiguration = "invalid_configuration"
	errorCodeTemplateDefect       = "template_defect"

	logEventInstantiateWidget = "instantiate_widget"
)

type shopSummary struct {
	ID             string `json:"id"`
	ShopName       string `json:"shop_name"`
	AccentColor    string `json:"accent_color"`
	ChatBaseURL    string `json:"chat_base_url"`
	StaffCount     int    `json:"staff_count"`
	ScriptURL      string `json:"script_url"`
	BookingPageURL string `json:"booking_page_url"`
}

type templateReportResponse struct {
	Name         string                   `json:"name"`
	Valid        bool                     `json:"valid"`
	Placeholders widget.PlaceholderReport `json:"placeholders"`
}

// WidgetHandlers serves instantiated booking widgets for the shop catalog.
type WidgetHandlers struct {
	catalog        *shop.Catalog
	widgetTemplate *widget.Template
	logger         *zap.Logger
	metrics        *WidgetMetrics
	publicBaseURL  string
}

func NewWidgetHandlers(catalog *shop.Catalog, widgetTemplate *widget.Template, logger *zap.Logger, metrics *WidgetMetrics, publicBaseURL string) *WidgetHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	if widgetTemplate == nil {
		widgetTemplate = widget.DefaultTemplate()
	}
	return &WidgetHandlers{
		catalog:        catalog,
		widgetTemplate: widgetTemplate,
		logger:         logger,
		metrics:        metrics,
		publicBaseURL:  normalizeBaseURL(publicBaseURL),
	}
}

func (handlers *WidgetHandlers) ShopWidgetJS(context *gin.Context) {
	shopID := strings.TrimSpace(context.Param("id"))
	configuration, found := handlers.catalog.Lookup(shopID)
	if !found {
		context.JSON(http.StatusNotFound, gin.H{"error": errorCodeUnknownShop})
		return
	}

	artifact, instantiateErr := handlers.widgetTemplate.Instantiate(configuration)
	if instantiateErr != nil {
		handlers.respondInstantiationError(context, InstantiationSourceCatalog, shopID, instantiateErr)
		return
	}

	context.Header(headerETag, artifact.ETag())
	context.Header(headerCacheControl, widgetCacheControl)
	if context.GetHeader(headerIfNoneMatch) == artifact.ETag() {
		handlers.metrics.ObserveInstantiation(InstantiationSourceCatalog, instantiationResultNotModified)
		context.Status(http.StatusNotModified)
		return
	}

	handlers.writeArtifact(context, InstantiationSourceCatalog, artifact)
}

// InstantiateWidget binds a configuration posted as JSON and returns its artifact.
func (handlers *WidgetHandlers) InstantiateWidget(context *gin.Context) {
	var configuration shop.Configuration
	if bindErr := context.ShouldBindJSON(&configuration); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{"error": errorCodeInvalidJSON})
		return
	}

	artifact, instantiateErr := handlers.widgetTemplate.Instantiate(configuration)
	if instantiateErr != nil {
		handlers.respondInstantiationError(context, InstantiationSourceRequest, configuration.ID, instantiateErr)
		return
	}

	context.Header(headerETag, artifact.ETag())
	handlers.writeArtifact(context, InstantiationSourceRequest, artifact)
}

func (handlers *WidgetHandlers) ListShops(context *gin.Context) {
	configurations := handlers.catalog.List()
	summaries := make([]shopSummary, 0, len(configurations))
	for _, configuration := range configurations {
		summaries = append(summaries, shopSummary{
			ID:             configuration.ID,
			ShopName:       configuration.ShopName,
			AccentColor:    configuration.AccentColor,
			ChatBaseURL:    configuration.ChatBaseURL(),
			StaffCount:     len(configuration.Staff),
			ScriptURL:      handlers.shopURL(shopWidgetPathFormat, configuration.ID),
			BookingPageURL: handlers.shopURL(shopBookingPathFormat, configuration.ID),
		})
	}
	context.JSON(http.StatusOK, gin.H{"shops": summaries})
}

func (handlers *WidgetHandlers) TemplateReport(context *gin.Context) {
	report := widget.AuditTemplate(handlers.widgetTemplate.Source())
	context.JSON(http.StatusOK, templateReportResponse{
		Name:         handlers.widgetTemplate.Name(),
		Valid:        report.Err() == nil,
		Placeholders: report,
	})
}

func (handlers *WidgetHandlers) Health(context *gin.Context) {
	context.JSON(http.StatusOK, gin.H{"status": "ok", "shops": handlers.catalog.Len()})
}

func (handlers *WidgetHandlers) shopURL(pathFormat string, shopID string) string {
	return joinBaseURL(handlers.publicBaseURL, shopPath(pathFormat, shopID))
}

func (handlers *WidgetHandlers) writeArtifact(context *gin.Context, source string, artifact widget.Artifact) {
	handlers.metrics.ObserveInstantiation(source, instantiationResultOK)
	handlers.metrics.ObserveArtifactSize(source, len(artifact.Body))
	context.Header(headerArtifactDigest, artifact.Digest)
	context.Data(http.StatusOK, contentTypeJavaScript, artifact.Body)
}

func (handlers *WidgetHandlers) respondInstantiationError(context *gin.Context, source string, shopID string, instantiateErr error) {
	switch {
	case errors.Is(instantiateErr, shop.ErrInvalidConfiguration):
		handlers.metrics.ObserveInstantiation(source, instantiationResultInvalidConfiguration)
		handlers.logger.Warn(logEventInstantiateWidget, zap.String("source", source), zap.String("shop_id", shopID), zap.Error(instantiateErr))
		context.JSON(http.StatusUnprocessableEntity, gin.H{"error": errorCodeInvalidConfiguration, "details": instantiateErr.Error()})
	default:
		handlers.metrics.ObserveInstantiation(source, instantiationResultTemplateDefect)
		handlers.logger.Error(logEventInstantiateWidget, zap.String("source", source), zap.String("shop_id", shopID), zap.Error(instantiateErr))
		context.JSON(http.StatusInternalServerError, gin.H{"error": errorCodeTemplateDefect})
	}
}
