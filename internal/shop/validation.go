package shop

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/MarkoPoloResearchLab/booking_widget/internal/handoff"
)

const (
	validationTagNoControl   = "nocontrol"
	validationTagCSSColor    = "csscolor"
	validationTagChatAddress = "chataddress"
	validationTagShopID      = "shopid"
	jsonTagName              = "json"
	cssDeclarationBreakers   = ";{}<>\"'\\`"
	cssCommentOpener         = "/*"
	hexColorPrefix           = "#"
)

var (
	hexColorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	shopIDPattern   = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

	configurationValidator = newConfigurationValidator()
)

func newConfigurationValidator() *validator.Validate {
	configuredValidator := validator.New(validator.WithRequiredStructEnabled())
	configuredValidator.RegisterTagNameFunc(jsonFieldName)
	mustRegisterValidation(configuredValidator, validationTagNoControl, validateNoControlCharacters)
	mustRegisterValidation(configuredValidator, validationTagCSSColor, validateCSSColor)
	mustRegisterValidation(configuredValidator, validationTagChatAddress, validateChatAddress)
	mustRegisterValidation(configuredValidator, validationTagShopID, validateShopID)
	return configuredValidator
}

func mustRegisterValidation(configuredValidator *validator.Validate, tag string, validationFunc validator.Func) {
	if registerErr := configuredValidator.RegisterValidation(tag, validationFunc); registerErr != nil {
		panic(fmt.Sprintf("shop: register %s validation: %v", tag, registerErr))
	}
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get(jsonTagName), ",")
	if name == "-" {
		return ""
	}
	return name
}

// Roster values end up inside a script literal, so anything that is not
// printable text is rejected before escaping.
func validateNoControlCharacters(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()
	if !utf8.ValidString(value) {
		return false
	}
	for _, character := range value {
		if unicode.IsControl(character) {
			return false
		}
	}
	return true
}

// Any color expression is accepted as long as it stays inside a single CSS
// declaration value; hex literals must have a valid length.
func validateCSSColor(fieldLevel validator.FieldLevel) bool {
	value := strings.TrimSpace(fieldLevel.Field().String())
	if value == "" || strings.ContainsAny(value, cssDeclarationBreakers) || strings.Contains(value, cssCommentOpener) {
		return false
	}
	for _, character := range value {
		if unicode.IsControl(character) {
			return false
		}
	}
	if strings.HasPrefix(value, hexColorPrefix) {
		return hexColorPattern.MatchString(value)
	}
	return true
}

func validateChatAddress(fieldLevel validator.FieldLevel) bool {
	return handoff.IsChatAddress(fieldLevel.Field().String())
}

func validateShopID(fieldLevel validator.FieldLevel) bool {
	return shopIDPattern.MatchString(fieldLevel.Field().String())
}
