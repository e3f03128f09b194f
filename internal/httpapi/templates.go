package httpapi

import _ "embed"

//go:embed templates/booking_page.tmpl
var bookingPageTemplateHTML string
