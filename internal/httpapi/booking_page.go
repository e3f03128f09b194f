package httpapi

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/booking_widget/internal/shop"
)

const (
	bookingPageTemplateName  = "booking_page"
	bookingPageContentType   = "text/html; charset=utf-8"
	bookingPageRenderFailure = "booking_page_render_failed"
	embedSnippetFormat       = `<script src="%s" async></script>`
)

// BookingPageHandlers renders a script-free booking page per shop.
type BookingPageHandlers struct {
	catalog       *shop.Catalog
	template      *template.Template
	logger        *zap.Logger
	publicBaseURL string
}

type bookingPageStaffRow struct {
	Name       string
	Specialty  string
	PhotoURL   string
	HandoffURL string
}

type bookingPageTemplateData struct {
	ShopName     string
	AccentColor  string
	ChatBaseURL  string
	Staff        []bookingPageStaffRow
	EmbedSnippet string
	FooterHTML   template.HTML
}

func NewBookingPageHandlers(catalog *shop.Catalog, logger *zap.Logger, publicBaseURL string) *BookingPageHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	compiledTemplate := template.Must(template.New(bookingPageTemplateName).Parse(bookingPageTemplateHTML))
	return &BookingPageHandlers{
		catalog:       catalog,
		template:      compiledTemplate,
		logger:        logger,
		publicBaseURL: normalizeBaseURL(publicBaseURL),
	}
}

func (handlers *BookingPageHandlers) RenderBookingPage(context *gin.Context) {
	shopID := strings.TrimSpace(context.Param("id"))
	configuration, found := handlers.catalog.Lookup(shopID)
	if !found {
		context.JSON(http.StatusNotFound, gin.H{"error": errorCodeUnknownShop})
		return
	}

	chatBaseURL := configuration.ChatBaseURL()
	footerHTML, footerErr := renderBookingFooterHTML(configuration.ShopName, chatBaseURL)
	if footerErr != nil {
		handlers.logger.Warn("render_booking_footer", zap.String("shop_id", shopID), zap.Error(footerErr))
		footerHTML = template.HTML("")
	}

	rows := make([]bookingPageStaffRow, 0, len(configuration.Staff))
	for _, member := range configuration.Staff {
		rows = append(rows, bookingPageStaffRow{
			Name:       member.Name,
			Specialty:  member.Specialty,
			PhotoURL:   member.PhotoURL,
			HandoffURL: configuration.HandoffURL(member),
		})
	}

	payload := bookingPageTemplateData{
		ShopName:     configuration.ShopName,
		AccentColor:  configuration.AccentColor,
		ChatBaseURL:  chatBaseURL,
		Staff:        rows,
		EmbedSnippet: fmt.Sprintf(embedSnippetFormat, joinBaseURL(handlers.publicBaseURL, shopPath(shopWidgetPathFormat, configuration.ID))),
		FooterHTML:   footerHTML,
	}

	var buffer bytes.Buffer
	if err := handlers.template.Execute(&buffer, payload); err != nil {
		handlers.logger.Error("render_booking_page", zap.String("shop_id", shopID), zap.Error(err))
		context.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": bookingPageRenderFailure})
		return
	}
	context.Data(http.StatusOK, bookingPageContentType, buffer.Bytes())
}
