// Package shop holds the per-client configuration bound into booking widgets.
package shop

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/MarkoPoloResearchLab/booking_widget/internal/handoff"
)

const (
	errorMessageInvalidConfiguration = "shop: invalid configuration"
	fieldErrorSeparator              = "; "
	rootNamespacePrefix              = "Configuration."
)

// ErrInvalidConfiguration indicates a configuration that cannot be bound into a widget.
var ErrInvalidConfiguration = errors.New(errorMessageInvalidConfiguration)

// StaffMember is one selectable row of the roster. Name and Handle may be
// empty; the widget then hands off with empty segments.
type StaffMember struct {
	Name      string `json:"name" yaml:"name" validate:"nocontrol"`
	Handle    string `json:"handle" yaml:"handle" validate:"nocontrol"`
	PhotoURL  string `json:"photoUrl" yaml:"photoUrl" validate:"nocontrol"`
	Specialty string `json:"specialty" yaml:"specialty" validate:"nocontrol"`
}

// Configuration is the flat record bound into a widget template.
// Staff order is display order.
type Configuration struct {
	ID          string        `json:"id,omitempty" yaml:"id" validate:"omitempty,shopid"`
	ShopName    string        `json:"shopName" yaml:"shopName" validate:"required,nocontrol"`
	AccentColor string        `json:"accentColor" yaml:"accentColor" validate:"required,csscolor"`
	ChatAddress string        `json:"chatAddress" yaml:"chatAddress" validate:"required,chataddress"`
	Staff       []StaffMember `json:"staff" yaml:"staff" validate:"dive"`
}

// Validate reports configuration defects wrapped in ErrInvalidConfiguration.
func (configuration Configuration) Validate() error {
	validationErr := configurationValidator.Struct(configuration)
	if validationErr == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if errors.As(validationErr, &fieldErrors) {
		return fmt.Errorf("%w: %s", ErrInvalidConfiguration, describeFieldErrors(fieldErrors))
	}
	return fmt.Errorf("%w: %v", ErrInvalidConfiguration, validationErr)
}

// ChatBaseURL resolves ChatAddress into the absolute URL the widget hands off to.
func (configuration Configuration) ChatBaseURL() string {
	return handoff.ResolveChatBaseURL(configuration.ChatAddress)
}

// HandoffURL returns the deep link issued when the staff member is selected.
func (configuration Configuration) HandoffURL(member StaffMember) string {
	return handoff.BuildURL(configuration.ChatBaseURL(), handoff.IntentMessage(member.Name, member.Handle))
}

func describeFieldErrors(fieldErrors validator.ValidationErrors) string {
	descriptions := make([]string, 0, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		fieldPath := strings.TrimPrefix(fieldError.Namespace(), rootNamespacePrefix)
		descriptions = append(descriptions, fmt.Sprintf("%s failed %s", fieldPath, fieldError.Tag()))
	}
	return strings.Join(descriptions, fieldErrorSeparator)
}
