package httpapi

import (
	"html/template"

	"github.com/MarkoPoloResearchLab/booking_widget/pkg/footer"
)

const (
	bookingFooterElementID   = "booking-page-footer"
	bookingFooterBaseClass   = "bp-footer"
	bookingFooterInnerClass  = "bp-footer__inner"
	bookingFooterPrefixClass = "bp-footer__prefix"
	bookingFooterLinkClass   = "bp-footer__link"
	bookingFooterChatLabel   = "Open chat"
)

func bookingFooterConfig(shopName string, chatBaseURL string) footer.Config {
	return footer.Config{
		ElementID:   bookingFooterElementID,
		BaseClass:   bookingFooterBaseClass,
		InnerClass:  bookingFooterInnerClass,
		PrefixClass: bookingFooterPrefixClass,
		PrefixText:  shopName,
		LinkClass:   bookingFooterLinkClass,
		Links: []footer.Link{
			{Label: bookingFooterChatLabel, URL: chatBaseURL},
		},
	}
}

func renderBookingFooterHTML(shopName string, chatBaseURL string) (template.HTML, error) {
	return footer.Render(bookingFooterConfig(shopName, chatBaseURL))
}
