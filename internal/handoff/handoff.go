// Package handoff builds the deep links that move a visitor from the booking
// widget into the shop's external chat.
package handoff

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	// StartParameterName is the query parameter that carries the pre-filled intent message.
	StartParameterName = "start"
	// DefaultChatHostURL prefixes bare chat handles.
	DefaultChatHostURL = "https://t.me/"

	intentMessagePrefix = "I would like to book with "
	upperHexDigits      = "0123456789ABCDEF"
	schemeHTTP          = "http"
	schemeHTTPS         = "https"
	schemeSeparator     = "://"
	hostPathSeparator   = "/"
	hostLabelSeparator  = "."
	whitespaceSet       = " \t\r\n"
)

var chatHandlePattern = regexp.MustCompile(`^@?[A-Za-z0-9_]{3,64}$`)

// IntentMessage returns the message announcing the visitor's choice of staff member.
// Empty values are kept as empty segments.
func IntentMessage(staffName string, staffHandle string) string {
	return intentMessagePrefix + staffName + " (" + staffHandle + ")"
}

// BuildURL appends the percent-encoded message to the chat base URL.
// An empty message yields the base URL unmodified.
func BuildURL(chatBaseURL string, message string) string {
	if message == "" {
		return chatBaseURL
	}
	separator := "?"
	if strings.Contains(chatBaseURL, "?") {
		separator = "&"
	}
	return chatBaseURL + separator + StartParameterName + "=" + EncodeURIComponent(message)
}

// ResolveChatBaseURL turns a configured chat address into an absolute URL.
// Absolute http(s) URLs are returned trimmed, host paths such as
// "t.me/shop_bot" gain an https scheme, and handles such as "@shop_bot" are
// placed under DefaultChatHostURL.
func ResolveChatBaseURL(chatAddress string) string {
	trimmedAddress := strings.TrimSpace(chatAddress)
	if isAbsoluteWebURL(trimmedAddress) {
		return trimmedAddress
	}
	if isSchemelessWebAddress(trimmedAddress) {
		return schemeHTTPS + schemeSeparator + trimmedAddress
	}
	return DefaultChatHostURL + strings.TrimPrefix(trimmedAddress, "@")
}

// IsChatAddress reports whether the value is an absolute http(s) URL or a chat handle.
func IsChatAddress(chatAddress string) bool {
	trimmedAddress := strings.TrimSpace(chatAddress)
	if trimmedAddress == "" {
		return false
	}
	return isAbsoluteWebURL(trimmedAddress) || isSchemelessWebAddress(trimmedAddress) || chatHandlePattern.MatchString(trimmedAddress)
}

// EncodeURIComponent percent-encodes the value the same way the browser's
// encodeURIComponent does, so server-built links match the widget's.
func EncodeURIComponent(value string) string {
	var builder strings.Builder
	builder.Grow(len(value) * 3)
	for index := 0; index < len(value); index++ {
		character := value[index]
		if isUnreservedURIComponentByte(character) {
			builder.WriteByte(character)
			continue
		}
		builder.WriteByte('%')
		builder.WriteByte(upperHexDigits[character>>4])
		builder.WriteByte(upperHexDigits[character&0x0F])
	}
	return builder.String()
}

func isUnreservedURIComponentByte(character byte) bool {
	switch {
	case character >= 'A' && character <= 'Z':
		return true
	case character >= 'a' && character <= 'z':
		return true
	case character >= '0' && character <= '9':
		return true
	}
	switch character {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

func isAbsoluteWebURL(value string) bool {
	parsedURL, parseErr := url.Parse(value)
	if parseErr != nil {
		return false
	}
	if parsedURL.Scheme != schemeHTTP && parsedURL.Scheme != schemeHTTPS {
		return false
	}
	return parsedURL.Host != ""
}

// isSchemelessWebAddress accepts "host.tld/path" addresses written without a scheme.
func isSchemelessWebAddress(value string) bool {
	if strings.Contains(value, schemeSeparator) || strings.ContainsAny(value, whitespaceSet) {
		return false
	}
	hostName, _, _ := strings.Cut(value, hostPathSeparator)
	if !strings.Contains(hostName, hostLabelSeparator) || strings.HasPrefix(hostName, hostLabelSeparator) || strings.HasSuffix(hostName, hostLabelSeparator) {
		return false
	}
	return isAbsoluteWebURL(schemeHTTPS + schemeSeparator + value)
}
